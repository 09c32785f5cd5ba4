package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/brensch/nssfetch/internal/downloader"
	"github.com/brensch/nssfetch/internal/processor"
	"github.com/brensch/nssfetch/internal/progress"
)

// signalContext is cancelled on SIGINT/SIGTERM; the pipelines notice at the
// next item boundary.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// lineReporter prints one status line per processed item.
func lineReporter(w io.Writer, quiet bool) progress.Reporter {
	if quiet {
		return nil
	}
	return func(u progress.Update) {
		fmt.Fprintf(w, "[%d/%d] %-10s %s\n", u.Position, u.Total, u.Outcome, u.Item)
	}
}

func printDownloadSummary(w io.Writer, s downloader.Summary) {
	c := s.Counts()
	fmt.Fprintln(w, "Download summary:")
	fmt.Fprintf(w, "  new:      %d\n", c.New)
	fmt.Fprintf(w, "  skipped:  %d\n", c.Skipped)
	fmt.Fprintf(w, "  replaced: %d\n", c.Replaced)
	fmt.Fprintf(w, "  failed:   %d\n", c.Failed)
	for _, f := range s.Failed {
		fmt.Fprintf(w, "    %s\n", f)
	}
}

func printConvertSummary(w io.Writer, s processor.Summary) {
	c := s.Counts()
	fmt.Fprintln(w, "Conversion summary:")
	fmt.Fprintf(w, "  converted: %d\n", c.Converted)
	fmt.Fprintf(w, "  skipped:   %d\n", c.Skipped)
	fmt.Fprintf(w, "  failed:    %d\n", c.Failed)
	for _, f := range s.Failed {
		fmt.Fprintf(w, "    %s\n", f)
	}
}
