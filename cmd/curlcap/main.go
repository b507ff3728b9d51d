package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/sadopc/curlcap/internal/app"
	"github.com/sadopc/curlcap/internal/archive"
	"github.com/sadopc/curlcap/internal/config"
	"github.com/sadopc/curlcap/internal/version"
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "tui":
			os.Exit(tuiCmd(args[1:]))
		case "watch":
			os.Exit(watchCmd(args[1:]))
		case "targets":
			os.Exit(targetsCmd(args[1:]))
		case "history":
			os.Exit(historyCmd(args[1:]))
		case "completion":
			os.Exit(completionCmd(args[1:]))
		case "version", "--version":
			fmt.Println(versionString())
			return
		case "help", "-h", "--help":
			printHelp()
			return
		}
	}
	os.Exit(tuiCmd(args))
}

func versionString() string {
	return fmt.Sprintf("curlcap %s (%s) built %s", version.Version, version.Commit, version.Date)
}

func printHelp() {
	fmt.Fprintf(os.Stderr, `curlcap - capture a browser tab's requests as curl commands

Usage:
  curlcap [flags]                    Launch the TUI on a tab
  curlcap <command> [args] [flags]   Run a subcommand

Commands:
  tui         Interactive request list (default)
  watch       Print requests as they complete, optionally saving archives and a HAR
  targets     List the browser's page targets
  history     Show archives saved so far
  completion  Generate shell completion scripts (bash, zsh, fish)
  version     Print version information
  help        Show this help message

The browser must be started with --remote-debugging-port, e.g.
  chromium --remote-debugging-port=9222

Run 'curlcap <command> --help' for more information about a command.
`)
}

// newFlagSet builds a flag set with the flags shared by commands that attach
// to a tab.
func newFlagSet(name string, cfg *config.Config, target *string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVar(&cfg.BrowserAddr, "addr", cfg.BrowserAddr, "DevTools host:port of the browser")
	fs.DurationVar(&cfg.DialTimeout, "dial-timeout", cfg.DialTimeout, "How long to wait for the browser")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	if target != nil {
		fs.StringVarP(target, "target", "t", "", "Target id to capture (default: first page)")
	}
	return fs
}

// parseFlags parses args and returns an exit code when the command should
// stop, or -1 to continue.
func parseFlags(fs *pflag.FlagSet, args []string) int {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	return -1
}

func tuiCmd(args []string) int {
	cfg := config.Load()
	var target string
	fs := newFlagSet("tui", &cfg, &target)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: curlcap [tui] [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Capture one tab and browse its requests.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys: j/k move, / filter, tab switch panel, s save, y copy, H write HAR, c clear, q quit\n")
	}
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	logFile, err := cfg.OpenLogFile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		return 1
	}
	defer logFile.Close()
	logger := cfg.NewLogger(logFile)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	sess, err := openSession(ctx, cfg, target, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer sess.Close()

	store, err := openHistory(cfg)
	if err != nil {
		logger.Warn("export history unavailable", "err", err)
	} else {
		defer store.Close()
	}

	exporter := &archive.Exporter{
		Ledger: sess.ledger,
		Sink:   archive.DirSink{Dir: cfg.ExportDir},
		Logger: sess.logger,
	}
	if store != nil {
		exporter.Recorder = store
	}

	model := app.New(sess.ledger, exporter, cfg)
	model.SetTarget(sess.Title())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sess.Run(gctx)
	})
	g.Go(func() error {
		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(gctx))
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return err
		}
		// Quitting the UI ends the capture.
		return errQuit
	})

	if err := g.Wait(); err != nil && !isCleanExit(err) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
