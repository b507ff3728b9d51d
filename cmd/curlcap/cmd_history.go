package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/sadopc/curlcap/internal/config"
	"github.com/sadopc/curlcap/internal/history"
)

func historyCmd(args []string) int {
	cfg := config.Load()
	var opts historyOptions
	fs := newHistoryFlagSet(&cfg, &opts)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: curlcap history [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Show archives saved from earlier captures.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	store, err := openHistory(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer store.Close()

	if opts.clearAll {
		if err := store.Clear(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintln(os.Stderr, "History cleared.")
		return 0
	}

	if err := printHistory(os.Stdout, store, opts.limit, opts.search); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

type historyOptions struct {
	limit    int
	search   string
	clearAll bool
}

// newHistoryFlagSet builds the history flags. History never talks to the
// browser, so the attach flags are not registered.
func newHistoryFlagSet(cfg *config.Config, opts *historyOptions) *pflag.FlagSet {
	fs := pflag.NewFlagSet("history", pflag.ContinueOnError)
	fs.StringVar(&cfg.HistoryDB, "db", cfg.HistoryDB, "Path to the export history database")
	fs.IntVarP(&opts.limit, "limit", "n", 20, "Number of entries to show")
	fs.StringVar(&opts.search, "search", "", "Only show exports whose URL contains this text")
	fs.BoolVar(&opts.clearAll, "clear", false, "Delete all history entries")
	return fs
}

func printHistory(out io.Writer, store *history.Store, limit int, search string) error {
	var entries []history.Entry
	var err error
	if search != "" {
		entries, err = store.Search(search)
		if len(entries) > limit && limit > 0 {
			entries = entries[:limit]
		}
	} else {
		entries, err = store.List(limit, 0)
	}
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No exports yet.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tSTATUS\tSIZE\tURL\tARCHIVE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			humanize.Time(e.Timestamp),
			e.Status,
			humanize.Bytes(uint64(e.Size)),
			truncate(e.URL, 60),
			e.Path,
		)
	}
	return tw.Flush()
}
