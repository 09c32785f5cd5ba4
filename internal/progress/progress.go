// Package progress defines the control contract shared by the fetch and
// extraction pipelines: a synchronous per-item progress report and a stop
// predicate polled before each item.
package progress

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// Outcome is the label reported for a finished item.
type Outcome string

const (
	Downloaded Outcome = "downloaded"
	Skipped    Outcome = "skipped"
	Replaced   Outcome = "replaced"
	Failed     Outcome = "failed"
	Converted  Outcome = "converted"
)

// Update is emitted once per processed item.
type Update struct {
	Position int // 1-based
	Total    int
	Item     string // derived filename, or the original reference when derivation failed
	Outcome  Outcome
}

// Reporter receives an Update after each item.
type Reporter func(Update)

// StopFunc is polled before each item; returning true halts the run.
type StopFunc func() bool

// Hooks bundles the optional collaborators of a run. The zero value is a
// silent, uninterruptible run.
type Hooks struct {
	Progress Reporter
	Stop     StopFunc
}

// Report invokes the progress reporter if one is set.
func (h Hooks) Report(u Update) {
	if h.Progress != nil {
		h.Progress(u)
	}
}

// ShouldStop polls the stop predicate if one is set.
func (h Hooks) ShouldStop() bool {
	return h.Stop != nil && h.Stop()
}

// RunContext is the explicit handle for one pipeline run. Front ends hold it
// and call Stop; the pipeline only sees StopFunc.
type RunContext struct {
	ID      uuid.UUID
	stopped atomic.Bool
}

// NewRunContext returns a RunContext with a fresh run ID.
func NewRunContext() *RunContext {
	return &RunContext{ID: uuid.New()}
}

// Stop requests cancellation at the next item boundary.
func (r *RunContext) Stop() { r.stopped.Store(true) }

// Stopped reports whether Stop has been called.
func (r *RunContext) Stopped() bool { return r.stopped.Load() }

// StopFunc returns a predicate over this run context.
func (r *RunContext) StopFunc() StopFunc { return r.Stopped }

// StopOnContext turns context cancellation into a stop predicate.
func StopOnContext(ctx context.Context) StopFunc {
	return func() bool { return ctx.Err() != nil }
}

// AnyStop stops when any of the given predicates does. Nil entries are ignored.
func AnyStop(fns ...StopFunc) StopFunc {
	return func() bool {
		for _, fn := range fns {
			if fn != nil && fn() {
				return true
			}
		}
		return false
	}
}
