package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brensch/nssfetch/internal/config"
	"github.com/brensch/nssfetch/internal/downloader"
	"github.com/brensch/nssfetch/internal/index"
	"github.com/brensch/nssfetch/internal/processor"
	"github.com/brensch/nssfetch/internal/progress"
	"github.com/brensch/nssfetch/internal/util"
)

// Options carries the collaborators and callbacks shared by the phases.
// Zero values mean production collaborators and a silent run.
type Options struct {
	Getter    util.Getter
	Extractor processor.TextExtractor
	Hooks     progress.Hooks
}

// Result is what a combined run produced. A phase that did not run is nil.
type Result struct {
	Download *downloader.Summary
	Convert  *processor.Summary
	Stopped  bool
}

// withContext makes the stop predicate also fire on context cancellation.
func (o Options) withContext(ctx context.Context) Options {
	o.Hooks.Stop = progress.AnyStop(progress.StopOnContext(ctx), o.Hooks.Stop)
	return o
}

// RunDownloadPhase selects references from the index and reconciles them
// against <dest>/pdf. Configuration and index errors are returned before
// any network activity.
func RunDownloadPhase(ctx context.Context, cfg config.Config, logger *slog.Logger, opts Options) (downloader.Summary, error) {
	opts = opts.withContext(ctx)
	if err := cfg.ValidateDownload(); err != nil {
		return downloader.Summary{}, err
	}
	criteria, err := index.CriteriaFromConfig(cfg)
	if err != nil {
		return downloader.Summary{}, err
	}

	startTime := time.Now()
	refs, err := index.LoadReferences(cfg.IndexPath, cfg.Sheet, cfg.Columns, criteria)
	if err != nil {
		return downloader.Summary{}, err
	}
	logger.Info("Index loaded.",
		slog.String("index", cfg.IndexPath),
		slog.Int("selected", len(refs)),
		slog.Duration("duration", time.Since(startTime).Round(time.Millisecond)),
	)

	d, err := downloader.New(cfg.DestDir, opts.Getter, logger)
	if err != nil {
		return downloader.Summary{}, err
	}
	d.Hooks = opts.Hooks
	return d.Run(refs), nil
}

// RunConvertPhase extracts text from every PDF under <dest>/pdf.
func RunConvertPhase(ctx context.Context, cfg config.Config, logger *slog.Logger, opts Options) (processor.Summary, error) {
	opts = opts.withContext(ctx)
	if err := cfg.ValidateConvert(); err != nil {
		return processor.Summary{}, err
	}
	p, err := processor.New(cfg.DestDir, opts.Extractor, logger)
	if err != nil {
		return processor.Summary{}, err
	}
	p.Normalize = cfg.NormalizeText
	p.Hooks = opts.Hooks
	return p.Run()
}

// RunCombinedWorkflow orchestrates the download and convert sequence. The
// convert phase is skipped when the run was stopped during download.
func RunCombinedWorkflow(ctx context.Context, cfg config.Config, logger *slog.Logger, opts Options) (Result, error) {
	var res Result
	opts = opts.withContext(ctx)

	logger.Info("Phase 1: Downloading decisions...")
	dsum, err := RunDownloadPhase(ctx, cfg, logger, opts)
	if err != nil {
		return res, err
	}
	res.Download = &dsum
	if opts.Hooks.ShouldStop() {
		logger.Warn("Workflow stopped after download phase.")
		res.Stopped = true
		return res, nil
	}

	logger.Info("Phase 2: Converting PDFs to text...")
	csum, err := RunConvertPhase(ctx, cfg, logger, opts)
	if err != nil {
		return res, fmt.Errorf("convert phase: %w", err)
	}
	res.Convert = &csum
	res.Stopped = opts.Hooks.ShouldStop()
	logger.Info("Combined workflow finished.", slog.Bool("stopped", res.Stopped))
	return res, nil
}
