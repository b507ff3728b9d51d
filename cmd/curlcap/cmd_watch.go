package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sadopc/curlcap/internal/archive"
	"github.com/sadopc/curlcap/internal/capture"
	"github.com/sadopc/curlcap/internal/config"
	"github.com/sadopc/curlcap/internal/export/har"
)

const (
	watchInterval = 250 * time.Millisecond
	// watchGrace is how long a completed record may wait for its body
	// before it is printed without one.
	watchGrace = time.Second
)

func watchCmd(args []string) int {
	cfg := config.Load()
	var target, harPath string
	var save bool
	fs := newFlagSet("watch", &cfg, &target)
	fs.StringVar(&harPath, "har", "", "Write all captured requests to this HAR file on exit")
	fs.StringVar(&cfg.ExportDir, "export-dir", cfg.ExportDir, "Directory for saved archives")
	fs.BoolVarP(&save, "save", "s", false, "Save an archive for every completed request")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: curlcap watch [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Print \"status - url\" for each request of a tab as it completes.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  curlcap watch\n")
		fmt.Fprintf(os.Stderr, "  curlcap watch --target 6A1F... --har session.har\n")
		fmt.Fprintf(os.Stderr, "  curlcap watch --save --export-dir ./captures\n")
	}
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	logger := cfg.NewLogger(os.Stderr)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	sess, err := openSession(ctx, cfg, target, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer sess.Close()
	fmt.Fprintf(os.Stderr, "Capturing %s (%s). Press Ctrl+C to stop.\n", sess.Title(), sess.target.URL)

	w := newWatcher(sess.ledger, os.Stdout, sess.logger)
	if save {
		exporter := &archive.Exporter{
			Ledger: sess.ledger,
			Sink:   archive.DirSink{Dir: cfg.ExportDir},
			Logger: sess.logger,
		}
		if store, err := openHistory(cfg); err != nil {
			logger.Warn("export history unavailable", "err", err)
		} else {
			defer store.Close()
			exporter.Recorder = store
		}
		w.exporter = exporter
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sess.Run(gctx) })
	g.Go(func() error { return w.Run(gctx) })
	runErr := g.Wait()

	code := 0
	if runErr != nil && !isCleanExit(runErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		code = 1
	}

	if harPath != "" {
		records := capture.Sorted(sess.ledger.Snapshot())
		if err := har.WriteFile(harPath, records); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stderr, "Wrote %d requests to %s\n", len(records), harPath)
	}
	return code
}

// watcher prints records once they settle: failed, or completed with a
// body, or completed for longer than the grace period.
type watcher struct {
	ledger   *capture.Ledger
	out      io.Writer
	exporter *archive.Exporter
	logger   *slog.Logger

	interval time.Duration
	grace    time.Duration
	now      func() time.Time

	printed map[uint64]bool
	settled map[uint64]time.Time // first poll that saw a terminal status
}

func newWatcher(ledger *capture.Ledger, out io.Writer, logger *slog.Logger) *watcher {
	return &watcher{
		ledger:   ledger,
		out:      out,
		logger:   logger,
		interval: watchInterval,
		grace:    watchGrace,
		now:      time.Now,
		printed:  make(map[uint64]bool),
		settled:  make(map[uint64]time.Time),
	}
}

// Run polls the ledger until ctx is done, then prints what remains.
func (w *watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.flush()
			return ctx.Err()
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *watcher) poll() {
	now := w.now()
	for _, rec := range capture.Sorted(w.ledger.Snapshot()) {
		if w.printed[rec.Seq] || !rec.Status.Terminal() {
			continue
		}
		first, ok := w.settled[rec.Seq]
		if !ok {
			first = now
			w.settled[rec.Seq] = now
		}
		if !rec.HasBody() && !rec.Status.IsFailed() && now.Sub(first) < w.grace {
			continue
		}
		w.emit(rec)
	}
}

// flush prints every terminal record not yet printed.
func (w *watcher) flush() {
	for _, rec := range capture.Sorted(w.ledger.Snapshot()) {
		if !w.printed[rec.Seq] && rec.Status.Terminal() {
			w.emit(rec)
		}
	}
}

func (w *watcher) emit(rec capture.Record) {
	w.printed[rec.Seq] = true
	delete(w.settled, rec.Seq)

	line := rec.Status.String() + " - " + rec.URL
	if w.exporter != nil {
		path, err := w.exporter.Export(rec.ID)
		if err != nil {
			w.logger.Warn("saving archive failed", "request", rec.ID, "err", err)
		} else {
			line += "  " + path
		}
	}
	fmt.Fprintln(w.out, line)
}
