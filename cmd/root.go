package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/brensch/nssfetch/internal/config"

	"github.com/spf13/cobra"
)

var (
	// Config flags - bound in init()
	cfgFile       string
	envFile       string
	indexPath     string
	sheetName     string
	destDir       string
	startDate     string
	endDate       string
	category      string
	visibleOnly   bool
	normalizeText bool
	dateColumn    string
	catColumn     string
	refColumn     string
	logFormat     string
	logLevel      string
	logOutput     string

	// Global instances populated in PersistentPreRunE
	rootLogger *slog.Logger
	appConfig  config.Config
	logFile    *os.File
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nssfetch",
	Short: "Download Supreme Administrative Court decisions and convert them to text.",
	Long: `nssfetch reads the decision index exported by the Czech Supreme Administrative
Court (an .xlsx or .csv file with one row per decision), selects rows by
decision date, decision type and spreadsheet visibility, and downloads the
referenced PDFs into <dest>/pdf. A second stage extracts plain text from every
downloaded PDF into <dest>/txt.

Both stages are idempotent: files already on disk are skipped, and zero-byte
placeholders left by earlier failures are fetched again.

Use 'run' for both stages, 'download' or 'convert' for one, 'status' to look
at what is on disk and 'tui' for the interactive interface.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// --- 1. Initialize Logger ---
		var level slog.Level
		switch strings.ToLower(logLevel) {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		var logWriter io.Writer = os.Stderr
		if logOutput != "" && strings.ToLower(logOutput) != "stderr" {
			if strings.ToLower(logOutput) == "stdout" {
				logWriter = os.Stdout
			} else {
				f, err := os.OpenFile(logOutput, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
				if err != nil {
					return fmt.Errorf("failed to open log file %s: %w", logOutput, err)
				}
				logFile = f
				logWriter = f
			}
		}

		opts := &slog.HandlerOptions{Level: level}
		var handler slog.Handler
		if logFormat == "json" {
			handler = slog.NewJSONHandler(logWriter, opts)
		} else {
			handler = slog.NewTextHandler(logWriter, opts)
		}
		rootLogger = slog.New(handler)
		slog.SetDefault(rootLogger)
		rootLogger.Debug("Logger initialized", "level", level.String(), "format", logFormat, "output", logOutput)

		// --- 2. Load Config: defaults < YAML file < .env/environment < explicit flags ---
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		appConfig = cfg
		rootLogger.Debug("Configuration loaded", slog.Any("config", appConfig))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logFile != nil {
			if err := logFile.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
			}
		}
		return nil
	},
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if rootLogger != nil {
			rootLogger.Error("Command execution failed", "error", err)
		} else {
			fmt.Fprintf(os.Stderr, "Command execution failed: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(tuiCmd)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "YAML config file")
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file with NSSFETCH_* overrides (ignored if missing)")
	pf.StringVarP(&indexPath, "index", "x", "", "Decision index file (.xlsx or .csv)")
	pf.StringVar(&sheetName, "sheet", "", "Worksheet to read (default: List1 if present, else the active sheet)")
	pf.StringVarP(&destDir, "dest", "d", "", "Destination root; PDFs go to <dest>/pdf, text to <dest>/txt")
	pf.StringVar(&startDate, "start-date", "", "Keep decisions dated on or after this day (YYYY-MM-DD)")
	pf.StringVar(&endDate, "end-date", "", "Keep decisions dated on or before this day (YYYY-MM-DD)")
	pf.StringVar(&category, "category", "", "Keep only decisions of this type, e.g. Rozsudek")
	pf.BoolVar(&visibleOnly, "visible-only", true, "Skip rows hidden in the spreadsheet (xlsx only)")
	pf.BoolVar(&normalizeText, "normalize-text", true, "NFC-normalize extracted text")
	pf.StringVar(&dateColumn, "date-column", config.DefaultDateColumn, "Header of the decision date column")
	pf.StringVar(&catColumn, "category-column", config.DefaultCategoryColumn, "Header of the decision type column")
	pf.StringVar(&refColumn, "reference-column", config.DefaultReferenceColumn, "Header of the ECLI reference column")
	pf.StringVar(&logFormat, "log-format", "text", "Log output format (text or json)")
	pf.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&logOutput, "log-output", "stderr", "Log output destination (stderr, stdout, or file path)")

	rootCmd.Version = "0.3.0"
}

// loadConfig layers the configuration sources. Flags only win when set explicitly,
// so their defaults never mask values from the file or environment.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		if err := config.LoadFile(&cfg, cfgFile); err != nil {
			return cfg, err
		}
	}
	if err := config.LoadEnv(&cfg, envFile); err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	setStr := func(name string, src string, dst *string) {
		if flags.Changed(name) {
			*dst = src
		}
	}
	setStr("index", indexPath, &cfg.IndexPath)
	setStr("sheet", sheetName, &cfg.Sheet)
	setStr("dest", destDir, &cfg.DestDir)
	setStr("start-date", startDate, &cfg.StartDate)
	setStr("end-date", endDate, &cfg.EndDate)
	setStr("category", category, &cfg.Category)
	setStr("date-column", dateColumn, &cfg.Columns.Date)
	setStr("category-column", catColumn, &cfg.Columns.Category)
	setStr("reference-column", refColumn, &cfg.Columns.Reference)
	if flags.Changed("visible-only") {
		cfg.VisibleOnly = visibleOnly
	}
	if flags.Changed("normalize-text") {
		cfg.NormalizeText = normalizeText
	}
	return cfg, nil
}

// Helper to get logger (could use context propagation instead)
func getLogger() *slog.Logger {
	if rootLogger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return rootLogger
}

// Helper to get Config (could use context propagation instead)
func getConfig() config.Config {
	return appConfig
}
