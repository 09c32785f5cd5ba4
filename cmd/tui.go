package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/brensch/nssfetch/internal/app"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var tuiLogFile string

// tuiCmd starts the interactive terminal interface.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive terminal interface",
	Long: `Opens a menu to download decisions, convert them to text and inspect the
destination directory. While a task runs, 's' stops it after the current file.

Logging to the terminal would corrupt the display, so unless --log-output names
a file, logs go to --tui-log.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		logger := getLogger()

		if out := strings.ToLower(logOutput); out == "" || out == "stderr" || out == "stdout" {
			f, err := os.OpenFile(tuiLogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
			if err != nil {
				return fmt.Errorf("failed to open log file %s: %w", tuiLogFile, err)
			}
			defer f.Close()
			logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
		}

		model := app.NewAppModel(cfg, logger)
		if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("terminal interface failed: %w", err)
		}
		return nil
	},
}

func init() {
	tuiCmd.Flags().StringVar(&tuiLogFile, "tui-log", "nssfetch-tui.log", "Log file used while the interface is open")
}
