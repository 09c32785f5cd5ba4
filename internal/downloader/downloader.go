package downloader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/brensch/nssfetch/internal/config"
	"github.com/brensch/nssfetch/internal/ident"
	"github.com/brensch/nssfetch/internal/progress"
	"github.com/brensch/nssfetch/internal/util"
)

// Summary buckets the items of one fetch run by outcome.
type Summary struct {
	New      []string
	Skipped  []string
	Replaced []string
	Failed   []string // derived filename, or the raw reference when derivation failed
}

// Counts is the size of each bucket.
type Counts struct {
	New, Skipped, Replaced, Failed int
}

func (s Summary) Counts() Counts {
	return Counts{New: len(s.New), Skipped: len(s.Skipped), Replaced: len(s.Replaced), Failed: len(s.Failed)}
}

// Processed is the number of items that reached an outcome.
func (c Counts) Processed() int { return c.New + c.Skipped + c.Replaced + c.Failed }

// Downloader reconciles decision references against the local pdf directory.
type Downloader struct {
	PDFDir string
	Getter util.Getter
	Logger *slog.Logger
	Hooks  progress.Hooks
}

// New prepares a Downloader writing into <destRoot>/pdf, creating it if needed.
func New(destRoot string, getter util.Getter, logger *slog.Logger) (*Downloader, error) {
	if destRoot == "" {
		return nil, &config.Error{Field: "dest", Reason: "no destination directory selected"}
	}
	pdfDir := filepath.Join(destRoot, config.PDFSubdir)
	if err := os.MkdirAll(pdfDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", pdfDir, err)
	}
	if getter == nil {
		getter = util.NewHTTPGetter()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Downloader{PDFDir: pdfDir, Getter: getter, Logger: logger}, nil
}

// artifactState is what the reconciler sees on disk for one name.
type artifactState int

const (
	absent artifactState = iota
	placeholder
	populated
)

func (d *Downloader) stat(path string) (artifactState, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return absent, nil
	}
	if err != nil {
		return absent, err
	}
	if info.Size() == 0 {
		return placeholder, nil
	}
	return populated, nil
}

// Run processes refs strictly in order. The stop predicate is polled before
// each item; every processed item gets exactly one progress report. Per-item
// failures end up in Summary.Failed and never abort the run.
func (d *Downloader) Run(refs []string) Summary {
	var sum Summary
	total := len(refs)
	d.Logger.Info("Starting sequential decision download.", slog.Int("count", total), slog.String("pdf_dir", d.PDFDir))

	for i, ref := range refs {
		if d.Hooks.ShouldStop() {
			d.Logger.Warn("Download stopped.", slog.Int("processed", i), slog.Int("total", total))
			break
		}

		l := d.Logger.With(slog.Int("item", i+1), slog.Int("total", total))
		item, outcome := d.reconcile(l, ref)
		switch outcome {
		case progress.Downloaded:
			sum.New = append(sum.New, item)
		case progress.Skipped:
			sum.Skipped = append(sum.Skipped, item)
		case progress.Replaced:
			sum.Replaced = append(sum.Replaced, item)
		default:
			sum.Failed = append(sum.Failed, item)
		}
		d.Hooks.Report(progress.Update{Position: i + 1, Total: total, Item: item, Outcome: outcome})
	}

	c := sum.Counts()
	d.Logger.Info("Download run finished.",
		slog.Int("new", c.New), slog.Int("skipped", c.Skipped),
		slog.Int("replaced", c.Replaced), slog.Int("failed", c.Failed))
	return sum
}

// reconcile resolves one reference to (reported item, outcome).
func (d *Downloader) reconcile(logger *slog.Logger, ref string) (string, progress.Outcome) {
	name, err := ident.Derive(ref)
	if err != nil {
		logger.Warn("Skip: cannot derive filename.", slog.String("reference", ref), "error", err)
		return ref, progress.Failed
	}

	path := filepath.Join(d.PDFDir, name)
	l := logger.With(slog.String("file", name))

	state, err := d.stat(path)
	if err != nil {
		l.Error("Cannot stat local artifact.", "error", err)
		return name, progress.Failed
	}
	if state == populated {
		l.Debug("Already downloaded, skipping.")
		return name, progress.Skipped
	}

	startTime := time.Now()
	data, err := util.DownloadFile(d.Getter, ref)
	if err != nil {
		l.Error("Download failed.", "error", err, slog.Duration("duration", time.Since(startTime).Round(time.Millisecond)))
		return name, progress.Failed
	}
	// WriteFile truncates, which is what heals zero-byte placeholders.
	if err := os.WriteFile(path, data, 0o644); err != nil {
		l.Error("Failed saving downloaded decision.", "error", err)
		return name, progress.Failed
	}
	l.Debug("Saved decision.", slog.Int("bytes", len(data)), slog.Duration("duration", time.Since(startTime).Round(time.Millisecond)))

	if state == placeholder {
		return name, progress.Replaced
	}
	return name, progress.Downloaded
}
