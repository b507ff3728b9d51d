package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sadopc/curlcap/internal/cdp"
	"github.com/sadopc/curlcap/internal/config"
)

func targetsCmd(args []string) int {
	cfg := config.Load()
	fs := newFlagSet("targets", &cfg, nil)
	var all bool
	fs.BoolVarP(&all, "all", "a", false, "Include workers and other non-page targets")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: curlcap targets [flags]\n\n")
		fmt.Fprintf(os.Stderr, "List the tabs of the browser; pass an id to --target.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout(cfg))
	defer cancel()

	if err := listTargets(ctx, os.Stdout, cfg.BrowserAddr, all); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func listTargets(ctx context.Context, out io.Writer, addr string, all bool) error {
	targets, err := cdp.Targets(ctx, addr)
	if err != nil {
		return err
	}
	if !all {
		targets = cdp.Pages(targets)
	}
	if len(targets) == 0 {
		fmt.Fprintln(out, "No targets.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tTITLE\tURL")
	for _, t := range targets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Type, truncate(t.Title, 40), t.URL)
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

