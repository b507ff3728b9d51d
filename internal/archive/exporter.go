package archive

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/sadopc/curlcap/internal/capture"
	"github.com/sadopc/curlcap/internal/history"
)

// ErrNotFound is returned when exporting a request the ledger does not hold.
var ErrNotFound = errors.New("request not found")

// Recorder logs completed exports. *history.Store implements it.
type Recorder interface {
	Add(e history.Entry) (int64, error)
}

// Exporter builds and saves the bundle for a captured request.
type Exporter struct {
	Ledger   *capture.Ledger
	Sink     Sink
	Recorder Recorder
	Logger   *slog.Logger
}

// Export saves the bundle for requestID and returns where it was written.
// A missing record produces ErrNotFound and no archive.
func (e *Exporter) Export(requestID string) (string, error) {
	rec, ok := e.Ledger.Get(requestID)
	if !ok {
		return "", fmt.Errorf("exporting %s: %w", requestID, ErrNotFound)
	}

	bundle := Build(rec)
	path, err := e.Sink.Save(bundle)
	if err != nil {
		return "", fmt.Errorf("exporting %s: %w", requestID, err)
	}

	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("request exported", "request", requestID, "url", rec.URL, "path", path)

	if e.Recorder != nil {
		_, err := e.Recorder.Add(history.Entry{
			RequestID: rec.ID,
			URL:       rec.URL,
			Status:    rec.Status.String(),
			MimeType:  rec.Mime(),
			Path:      path,
			Size:      bundle.Size(),
		})
		if err != nil {
			// The archive is on disk; only the log entry is lost.
			logger.Warn("recording export failed", "request", requestID, "err", err)
		}
	}
	return path, nil
}
