package cmd

import (
	"fmt"

	"github.com/brensch/nssfetch/internal/inspector"

	"github.com/spf13/cobra"
)

var statusLimit int

// statusCmd reports what is on disk under the destination root.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show downloaded, placeholder and converted files",
	Long: `Inspects <dest>/pdf and <dest>/txt without changing anything. Lists zero-byte
placeholders, which the next download run fetches again, and PDFs that have
no text file yet.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		if err := cfg.ValidateConvert(); err != nil {
			return err
		}
		report, err := inspector.Inspect(cfg.DestDir)
		if err != nil {
			return fmt.Errorf("inspection failed: %w", err)
		}
		report.Print(cmd.OutOrStdout(), statusLimit)
		return nil
	},
}

func init() {
	statusCmd.Flags().IntVarP(&statusLimit, "limit", "n", 20, "Maximum number of file names listed per section (0 hides lists)")
}
