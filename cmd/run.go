package cmd

import (
	"fmt"

	"github.com/brensch/nssfetch/internal/orchestrator"
	"github.com/brensch/nssfetch/internal/progress"

	"github.com/spf13/cobra"
)

var quietRun bool

// runCmd represents the combined download and convert command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full download and convert workflow",
	Long: `Performs the complete pipeline:
1. Reads the index and selects rows by date, type and visibility.
2. Sequentially downloads missing or empty PDFs into <dest>/pdf.
3. Extracts text from every PDF into <dest>/txt.
If the run is interrupted during downloading, conversion is skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := getLogger()
		cfg := getConfig()

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		rc := progress.NewRunContext()
		logger = logger.With("run_id", rc.ID.String())
		logger.Info("Starting combined run workflow...")

		res, err := orchestrator.RunCombinedWorkflow(ctx, cfg, logger, orchestrator.Options{
			Hooks: progress.Hooks{
				Progress: lineReporter(cmd.OutOrStdout(), quietRun),
				Stop:     rc.StopFunc(),
			},
		})
		out := cmd.OutOrStdout()
		if res.Download != nil {
			printDownloadSummary(out, *res.Download)
		}
		if res.Convert != nil {
			printConvertSummary(out, *res.Convert)
		}
		if err != nil {
			logger.Error("Combined workflow completed with errors", "error", err)
			return fmt.Errorf("run workflow failed: %w", err)
		}
		if res.Stopped {
			fmt.Fprintln(out, "Stopped before completion; re-run to continue.")
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVarP(&quietRun, "quiet", "q", false, "Only print the final summaries")
}
