package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default column headers of the NSS open-data export ("Otevřená data k soudní činnosti").
const (
	DefaultDateColumn      = "Datum rozhodnutí"
	DefaultCategoryColumn  = "Typ rozhodnutí"
	DefaultReferenceColumn = "Odkaz ECLI"

	// DefaultSheet is the data sheet of the export; read when no sheet is
	// configured and the workbook has one by that name.
	DefaultSheet = "List1"
)

const (
	// Subdirectories of the destination root.
	PDFSubdir  = "pdf"
	TextSubdir = "txt"

	// EnvPrefix prefixes every environment override, e.g. NSSFETCH_INDEX.
	EnvPrefix = "NSSFETCH_"
)

// Columns maps the canonical fields to the actual spreadsheet headers.
type Columns struct {
	Date      string `yaml:"date"`
	Category  string `yaml:"category"`
	Reference string `yaml:"reference"`
}

// DefaultColumns returns the header mapping of the stock NSS export.
func DefaultColumns() Columns {
	return Columns{
		Date:      DefaultDateColumn,
		Category:  DefaultCategoryColumn,
		Reference: DefaultReferenceColumn,
	}
}

// Config holds application settings
type Config struct {
	IndexPath     string  `yaml:"index"`
	Sheet         string  `yaml:"sheet"` // empty means the workbook's active sheet
	DestDir       string  `yaml:"dest"`
	Columns       Columns `yaml:"columns"`
	StartDate     string  `yaml:"start_date"` // YYYY-MM-DD, optional
	EndDate       string  `yaml:"end_date"`   // YYYY-MM-DD, optional
	Category      string  `yaml:"category"`
	VisibleOnly   bool    `yaml:"visible_only"`
	NormalizeText bool    `yaml:"normalize_text"`
}

// Default returns the configuration used when nothing else is supplied.
// Visible-only mode is on, as in the desktop tool this replaces.
func Default() Config {
	return Config{
		Columns:       DefaultColumns(),
		VisibleOnly:   true,
		NormalizeText: true,
	}
}

// LoadFile overlays settings from a YAML file onto cfg. Keys absent from the
// file keep their current values.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// LoadEnv loads a .env file (if present) into the process environment and then
// applies NSSFETCH_* variables onto cfg.
func LoadEnv(cfg *Config, dotenvPath string) error {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}

	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	str("INDEX", &cfg.IndexPath)
	str("SHEET", &cfg.Sheet)
	str("DEST", &cfg.DestDir)
	str("START_DATE", &cfg.StartDate)
	str("END_DATE", &cfg.EndDate)
	str("CATEGORY", &cfg.Category)
	str("COLUMN_DATE", &cfg.Columns.Date)
	str("COLUMN_CATEGORY", &cfg.Columns.Category)
	str("COLUMN_REFERENCE", &cfg.Columns.Reference)

	boolean := func(key string, dst *bool) error {
		v, ok := os.LookupEnv(EnvPrefix + key)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return &Error{Field: EnvPrefix + key, Reason: fmt.Sprintf("invalid bool %q", v)}
		}
		*dst = b
		return nil
	}
	return errors.Join(
		boolean("VISIBLE_ONLY", &cfg.VisibleOnly),
		boolean("NORMALIZE_TEXT", &cfg.NormalizeText),
	)
}

// ValidateDownload checks the inputs the fetch pipeline needs before any work starts.
func (c Config) ValidateDownload() error {
	var errs []error
	if strings.TrimSpace(c.IndexPath) == "" {
		errs = append(errs, &Error{Field: "index", Reason: "no index file selected"})
	} else if _, err := os.Stat(c.IndexPath); err != nil {
		errs = append(errs, &Error{Field: "index", Reason: err.Error()})
	}
	if strings.TrimSpace(c.DestDir) == "" {
		errs = append(errs, &Error{Field: "dest", Reason: "no destination directory selected"})
	}
	if c.Columns.Date == "" || c.Columns.Reference == "" {
		errs = append(errs, &Error{Field: "columns", Reason: "date and reference column headers must be set"})
	}
	return errors.Join(errs...)
}

// ValidateConvert checks the inputs the extraction pipeline needs.
func (c Config) ValidateConvert() error {
	if strings.TrimSpace(c.DestDir) == "" {
		return &Error{Field: "dest", Reason: "no destination directory selected"}
	}
	return nil
}
