package app

import (
	"fmt"
	"time"

	"github.com/brensch/nssfetch/internal/inspector"
	"github.com/brensch/nssfetch/internal/progress"
)

// --- Progress Messages ---

// ProgressMsg carries one per-item update from a running pipeline.
type ProgressMsg struct {
	Tag    string // "Download" or "Convert"
	Update progress.Update
	At     time.Time
}

// TaskFinishedMsg signals the completion of a pipeline run.
type TaskFinishedMsg struct {
	Tag       string
	Err       error
	StartTime time.Time
	EndTime   time.Time
	Stopped   bool
	Lines     []string // summary lines shown on the summary screen
}

// StatusReportMsg delivers an inspector report.
type StatusReportMsg struct {
	Report inspector.Report
}

// GeneralErrorMsg signals an error that is not tied to a specific task.
type GeneralErrorMsg struct {
	Err error
}

func NewProgress(tag string, u progress.Update) ProgressMsg {
	return ProgressMsg{Tag: tag, Update: u, At: time.Now()}
}

func NewTaskFinished(tag string, start time.Time, err error, stopped bool, lines []string) TaskFinishedMsg {
	return TaskFinishedMsg{
		Tag:       tag,
		StartTime: start,
		EndTime:   time.Now(),
		Err:       err,
		Stopped:   stopped,
		Lines:     lines,
	}
}

func NewError(err error) GeneralErrorMsg {
	return GeneralErrorMsg{Err: err}
}

func (e GeneralErrorMsg) Error() string {
	return e.Err.Error()
}

func (p ProgressMsg) String() string {
	return fmt.Sprintf("Progress %s: %d/%d %s %s", p.Tag, p.Update.Position, p.Update.Total, p.Update.Outcome, p.Update.Item)
}
func (tf TaskFinishedMsg) String() string { return fmt.Sprintf("TaskFinished %s", tf.Tag) }
func (ge GeneralErrorMsg) String() string { return fmt.Sprintf("GeneralError: %s", ge.Err) }
