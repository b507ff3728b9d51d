package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/curlcap/internal/capture"
	"github.com/sadopc/curlcap/internal/cdp"
	"github.com/sadopc/curlcap/internal/config"
	"github.com/sadopc/curlcap/internal/dispatch"
	"github.com/sadopc/curlcap/internal/history"
)

var (
	// errDisconnected ends a capture when the browser goes away.
	errDisconnected = errors.New("browser connection closed")
	// errQuit ends a capture when the user leaves the UI.
	errQuit = errors.New("quit")
)

func isCleanExit(err error) bool {
	return errors.Is(err, errQuit) ||
		errors.Is(err, errDisconnected) ||
		errors.Is(err, context.Canceled)
}

// session is one tab attached for capture.
type session struct {
	label      string
	target     cdp.TargetInfo
	client     *cdp.Client
	ledger     *capture.Ledger
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
}

// openSession connects to the browser at cfg.BrowserAddr, attaches to the
// chosen tab and enables network capture on it.
func openSession(ctx context.Context, cfg config.Config, targetID string, logger *slog.Logger) (*session, error) {
	label := uuid.NewString()[:8]
	logger = logger.With("capture", label)

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout(cfg))
	defer cancel()

	targets, err := cdp.Targets(dialCtx, cfg.BrowserAddr)
	if err != nil {
		return nil, fmt.Errorf("listing targets: %w", err)
	}
	target, err := pickTarget(targets, targetID)
	if err != nil {
		return nil, err
	}

	wsURL, err := cdp.BrowserURL(dialCtx, cfg.BrowserAddr)
	if err != nil {
		return nil, fmt.Errorf("locating browser endpoint: %w", err)
	}
	client, err := cdp.Dial(dialCtx, wsURL, cdp.Options{Logger: logger, Retries: 5})
	if err != nil {
		return nil, err
	}

	sessionID, err := client.AttachToTarget(dialCtx, target.ID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("attaching to %s: %w", target.ID, err)
	}
	logger = logger.With("target", target.ID)
	logger.Info("attached", "title", target.Title, "url", target.URL, "session", sessionID)

	ledger := capture.NewLedger()
	d := dispatch.New(ledger, client, sessionID, logger)
	// On failure the dispatcher is inert and has logged why.
	_ = d.Attach(dialCtx)

	return &session{
		label:      label,
		target:     target,
		client:     client,
		ledger:     ledger,
		dispatcher: d,
		logger:     logger,
	}, nil
}

func dialTimeout(cfg config.Config) time.Duration {
	if cfg.DialTimeout <= 0 {
		return config.DefaultConfig().DialTimeout
	}
	return cfg.DialTimeout
}

// pickTarget returns the page with id, or the first page when id is empty.
func pickTarget(targets []cdp.TargetInfo, id string) (cdp.TargetInfo, error) {
	pages := cdp.Pages(targets)
	if id == "" {
		if len(pages) == 0 {
			return cdp.TargetInfo{}, errors.New("no page targets; open a tab first")
		}
		return pages[0], nil
	}
	for _, t := range targets {
		if t.ID == id {
			return t, nil
		}
	}
	return cdp.TargetInfo{}, fmt.Errorf("target %q not found", id)
}

// Title is the label shown for the captured tab.
func (s *session) Title() string {
	if s.target.Title != "" {
		return s.target.Title
	}
	return s.target.URL
}

// Run dispatches events until ctx is done or the browser disconnects.
func (s *session) Run(ctx context.Context) error {
	err := s.dispatcher.Run(ctx, s.client.Events())
	if err == nil {
		if cerr := s.client.Err(); cerr != nil {
			return fmt.Errorf("%w: %v", errDisconnected, cerr)
		}
		return errDisconnected
	}
	return err
}

// Close detaches from the browser and logs what the capture saw.
func (s *session) Close() error {
	st := s.dispatcher.Stats()
	s.logger.Info("capture finished",
		"records", s.ledger.Len(),
		"handled", st.Handled,
		"ignored", st.Ignored,
		"malformed", st.Malformed,
		"bodies", st.BodiesFetched,
		"bodies_missing", st.BodiesMissing,
	)
	return s.client.Close()
}

// openHistory opens the export log, creating its directory.
func openHistory(cfg config.Config) (*history.Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.HistoryDB), 0755); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}
	return history.NewStore(cfg.HistoryDB)
}
