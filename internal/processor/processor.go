package processor

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brensch/nssfetch/internal/config"
	"github.com/brensch/nssfetch/internal/ident"
	"github.com/brensch/nssfetch/internal/progress"

	"golang.org/x/text/unicode/norm"
)

// Summary buckets the artifacts of one conversion run by outcome.
type Summary struct {
	Converted []string
	Skipped   []string
	Failed    []string
}

// Counts is the size of each bucket.
type Counts struct {
	Converted, Skipped, Failed int
}

func (s Summary) Counts() Counts {
	return Counts{Converted: len(s.Converted), Skipped: len(s.Skipped), Failed: len(s.Failed)}
}

// Processed is the number of artifacts that reached an outcome.
func (c Counts) Processed() int { return c.Converted + c.Skipped + c.Failed }

// Processor turns downloaded PDFs into sibling text files.
type Processor struct {
	PDFDir    string
	TextDir   string
	Extractor TextExtractor
	Normalize bool // NFC-normalize extracted text before writing
	Logger    *slog.Logger
	Hooks     progress.Hooks
}

// New prepares a Processor reading <destRoot>/pdf and writing <destRoot>/txt,
// creating the text directory if needed.
func New(destRoot string, extractor TextExtractor, logger *slog.Logger) (*Processor, error) {
	if destRoot == "" {
		return nil, &config.Error{Field: "dest", Reason: "no destination directory selected"}
	}
	textDir := filepath.Join(destRoot, config.TextSubdir)
	if err := os.MkdirAll(textDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", textDir, err)
	}
	if extractor == nil {
		extractor = PDFExtractor{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Processor{
		PDFDir:    filepath.Join(destRoot, config.PDFSubdir),
		TextDir:   textDir,
		Extractor: extractor,
		Logger:    logger,
	}, nil
}

// listPDFs returns the *.pdf names directly inside dir, in lexical order.
func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ident.PDFExt) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Run converts every PDF present when the run starts. Only a failure to list
// the pdf directory is returned as an error; per-file failures are recorded
// in the summary and the run carries on.
func (p *Processor) Run() (Summary, error) {
	var sum Summary
	files, err := listPDFs(p.PDFDir)
	if err != nil {
		return sum, fmt.Errorf("failed to list PDFs in %s: %w", p.PDFDir, err)
	}
	total := len(files)
	p.Logger.Info("Starting PDF to text conversion.", slog.Int("count", total), slog.String("pdf_dir", p.PDFDir))

	for i, name := range files {
		if p.Hooks.ShouldStop() {
			p.Logger.Warn("Conversion stopped.", slog.Int("processed", i), slog.Int("total", total))
			break
		}

		l := p.Logger.With(slog.String("file", name), slog.Int("item", i+1), slog.Int("total", total))
		outcome := p.convert(l, name)
		switch outcome {
		case progress.Converted:
			sum.Converted = append(sum.Converted, name)
		case progress.Skipped:
			sum.Skipped = append(sum.Skipped, name)
		default:
			sum.Failed = append(sum.Failed, name)
		}
		p.Hooks.Report(progress.Update{Position: i + 1, Total: total, Item: name, Outcome: outcome})
	}

	c := sum.Counts()
	p.Logger.Info("Conversion run finished.",
		slog.Int("converted", c.Converted), slog.Int("skipped", c.Skipped), slog.Int("failed", c.Failed))
	return sum, nil
}

func (p *Processor) convert(logger *slog.Logger, name string) progress.Outcome {
	pdfPath := filepath.Join(p.PDFDir, name)
	info, err := os.Stat(pdfPath)
	if err != nil {
		logger.Error("Failed to convert.", "error", err)
		return progress.Failed
	}
	if info.Size() == 0 {
		logger.Debug("Empty placeholder, skipping.")
		return progress.Skipped
	}

	startTime := time.Now()
	pages, err := p.Extractor.ExtractPages(pdfPath)
	if err != nil {
		logger.Error("Failed to convert.", "error", err)
		return progress.Failed
	}
	text := strings.ToValidUTF8(joinPages(pages), "\uFFFD")
	if p.Normalize {
		text = norm.NFC.String(text)
	}

	txtPath := filepath.Join(p.TextDir, ident.TextName(name))
	if err := os.WriteFile(txtPath, []byte(text), 0o644); err != nil {
		logger.Error("Failed to write text.", "error", err, slog.String("txt_path", txtPath))
		return progress.Failed
	}
	logger.Debug("Converted.", slog.Int("pages", len(pages)), slog.Duration("duration", time.Since(startTime).Round(time.Millisecond)))
	return progress.Converted
}

// joinPages concatenates page texts, starting each page on a new line.
func joinPages(pages []string) string {
	var b strings.Builder
	for i, page := range pages {
		if i > 0 && !strings.HasSuffix(pages[i-1], "\n") {
			b.WriteByte('\n')
		}
		b.WriteString(page)
	}
	return b.String()
}
