package cmd

import (
	"fmt"

	"github.com/brensch/nssfetch/internal/orchestrator"
	"github.com/brensch/nssfetch/internal/progress"

	"github.com/spf13/cobra"
)

var quietConvert bool

// convertCmd extracts text from <dest>/pdf into <dest>/txt.
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Extract plain text from every downloaded PDF",
	Long: `Converts each *.pdf in <dest>/pdf into a UTF-8 text file of the same name in
<dest>/txt, overwriting earlier output. Zero-byte PDFs are skipped. Documents
that cannot be parsed are reported and the run continues.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := getLogger()
		cfg := getConfig()

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		rc := progress.NewRunContext()
		logger = logger.With("run_id", rc.ID.String())
		opts := orchestrator.Options{Hooks: progress.Hooks{
			Progress: lineReporter(cmd.OutOrStdout(), quietConvert),
			Stop:     rc.StopFunc(),
		}}

		sum, err := orchestrator.RunConvertPhase(ctx, cfg, logger, opts)
		if err != nil {
			return fmt.Errorf("conversion failed: %w", err)
		}
		printConvertSummary(cmd.OutOrStdout(), sum)
		return nil
	},
}

func init() {
	convertCmd.Flags().BoolVarP(&quietConvert, "quiet", "q", false, "Only print the final summary")
}
