package progress

import (
	"context"
	"time"

	"github.com/specialistvlad/pbrtgo/internal/ctxlog"
)

// Event names emitted by the batch loop.
const (
	EventFileStarted  = "file_started"
	EventFileFinished = "file_finished"
	EventBatchDone    = "batch_done"
)

// Event is the payload of a progress notification.
type Event struct {
	File     string  `json:"file,omitempty"`
	Index    int     `json:"index"`
	Total    int     `json:"total"`
	Error    string  `json:"error,omitempty"`
	Failures int     `json:"failures,omitempty"`
	Seconds  float64 `json:"seconds,omitempty"`
}

// Reporter receives batch progress. Implementations must not block the
// batch for long and must tolerate calls after Close.
type Reporter interface {
	Report(ctx context.Context, name string, ev Event)
	Close()
}

// Log reports progress as debug records on the context logger.
type Log struct{}

// Report implements Reporter.
func (Log) Report(ctx context.Context, name string, ev Event) {
	logger := ctxlog.FromContext(ctx)
	attrs := []any{"event", name, "index", ev.Index, "total", ev.Total}
	if ev.File != "" {
		attrs = append(attrs, "file", ev.File)
	}
	if ev.Error != "" {
		attrs = append(attrs, "error", ev.Error)
	}
	if name == EventBatchDone {
		attrs = append(attrs, "failures", ev.Failures)
	}
	if ev.Seconds > 0 {
		attrs = append(attrs, "duration", time.Duration(ev.Seconds*float64(time.Second)))
	}
	logger.Debug("Progress.", attrs...)
}

// Close implements Reporter.
func (Log) Close() {}

// Multi fans every event out to several reporters.
type Multi []Reporter

// Report implements Reporter.
func (m Multi) Report(ctx context.Context, name string, ev Event) {
	for _, r := range m {
		r.Report(ctx, name, ev)
	}
}

// Close implements Reporter.
func (m Multi) Close() {
	for _, r := range m {
		r.Close()
	}
}
