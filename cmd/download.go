package cmd

import (
	"fmt"

	"github.com/brensch/nssfetch/internal/orchestrator"
	"github.com/brensch/nssfetch/internal/progress"

	"github.com/spf13/cobra"
)

var quietDownload bool

// downloadCmd fetches the selected decisions into <dest>/pdf.
var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the decisions selected from the index",
	Long: `Reads the index, keeps rows matching --start-date, --end-date, --category and
--visible-only, and downloads each referenced PDF into <dest>/pdf.

Existing non-empty files are skipped. Zero-byte files are fetched again and
reported as replaced. Ctrl-C stops after the item in flight.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := getLogger()
		cfg := getConfig()

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		rc := progress.NewRunContext()
		logger = logger.With("run_id", rc.ID.String())
		opts := orchestrator.Options{Hooks: progress.Hooks{
			Progress: lineReporter(cmd.OutOrStdout(), quietDownload),
			Stop:     rc.StopFunc(),
		}}

		sum, err := orchestrator.RunDownloadPhase(ctx, cfg, logger, opts)
		if err != nil {
			return fmt.Errorf("download failed: %w", err)
		}
		printDownloadSummary(cmd.OutOrStdout(), sum)
		return nil
	},
}

func init() {
	downloadCmd.Flags().BoolVarP(&quietDownload, "quiet", "q", false, "Only print the final summary")
}
