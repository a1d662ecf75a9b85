package app

import (
	"context"
	"time"

	"github.com/specialistvlad/pbrtgo/internal/config"
	"github.com/specialistvlad/pbrtgo/internal/ctxlog"
	"github.com/specialistvlad/pbrtgo/internal/progress"
)

// processInputs parses every input in order, standard input when there are
// none, and returns how many failed. A failure is logged and the batch
// continues with the next input.
func (a *App) processInputs(ctx context.Context, session Session, reporter progress.Reporter, files []string) int {
	logger := ctxlog.FromContext(ctx)
	if len(files) == 0 {
		logger.Debug("No scene files given, reading standard input.")
		files = []string{config.StdinName}
	}

	failures := 0
	for i, name := range files {
		a.current.Store(name)
		reporter.Report(ctx, progress.EventFileStarted, progress.Event{File: name, Index: i, Total: len(files)})

		start := time.Now()
		err := session.ParseFile(ctx, name)
		ev := progress.Event{File: name, Index: i, Total: len(files), Seconds: time.Since(start).Seconds()}
		if err != nil {
			failures++
			ev.Error = err.Error()
			logger.Error("Couldn't open scene file", "file", name, "error", err)
		}
		a.processed.Add(1)
		reporter.Report(ctx, progress.EventFileFinished, ev)
	}
	a.current.Store("")

	reporter.Report(ctx, progress.EventBatchDone, progress.Event{Total: len(files), Failures: failures})
	return failures
}
