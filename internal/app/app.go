package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/specialistvlad/pbrtgo/internal/config"
	"github.com/specialistvlad/pbrtgo/internal/ctxlog"
	"github.com/specialistvlad/pbrtgo/internal/engine"
	"github.com/specialistvlad/pbrtgo/internal/parallel"
	"github.com/specialistvlad/pbrtgo/internal/progress"
)

// Session is the rendering subsystem as seen by the batch loop.
type Session interface {
	ParseFile(ctx context.Context, name string) error
	Release()
}

// AcquireFunc initializes the rendering subsystem for one run.
type AcquireFunc func(ctx context.Context, opts *config.Options) (Session, error)

// Deps are the collaborators of an App. Zero values select the process
// streams, the engine, the host core count and the logging reporter.
type Deps struct {
	Stdout   io.Writer
	Stderr   io.Writer
	Stdin    io.Reader
	Acquire  AcquireFunc
	Cores    func() int
	Reporter progress.Reporter
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	opts   *config.Options
	deps   Deps
	logger *slog.Logger

	httpServer *http.Server
	current    atomic.Value
	processed  atomic.Int64
}

// NewApp is the constructor for the main application. opts must not change
// after this call.
func NewApp(opts *config.Options, deps Deps) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Cores == nil {
		deps.Cores = parallel.NumSystemCores
	}
	if deps.Acquire == nil {
		deps.Acquire = engineAcquire(deps.Stdout, deps.Stdin)
	}

	logger := newLogger(opts.EffectiveLogLevel(), opts.LogFormat, deps.Stderr)
	logger.Debug("Logger configured successfully.")

	a := &App{opts: opts, deps: deps, logger: logger}
	a.current.Store("")
	return a
}

// engineAcquire adapts engine.Acquire to AcquireFunc.
func engineAcquire(stdout io.Writer, stdin io.Reader) AcquireFunc {
	return func(ctx context.Context, opts *config.Options) (Session, error) {
		s, err := engine.Acquire(ctx, opts, engine.Deps{Stdout: stdout, Stdin: stdin})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Run prints the banner, acquires the rendering subsystem, processes every
// input file and releases the subsystem. Per-file failures are logged and do
// not make Run fail; only a failed acquire does.
func (a *App) Run(ctx context.Context, files []string) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "files", len(files))

	PresentBanner(a.deps.Stdout, a.opts, CurrentBuildInfo(a.deps.Cores()))

	if a.opts.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx, a.opts.HealthcheckPort)
		defer a.closeHealthcheckServer(ctx)
	}

	reporter := a.newReporter(ctx)
	defer reporter.Close()

	session, err := a.deps.Acquire(ctx, a.opts)
	if err != nil {
		return fmt.Errorf("failed to initialize rendering subsystem: %w", err)
	}
	defer session.Release()

	total := max(1, len(files))
	if failures := a.processInputs(ctx, session, reporter, files); failures > 0 {
		a.logger.Warn("Some scene files could not be processed.", "failed", failures, "total", total)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// newReporter returns the configured progress reporter. A socket.io endpoint
// that cannot be reached is logged and replaced by the log reporter.
func (a *App) newReporter(ctx context.Context) progress.Reporter {
	if a.deps.Reporter != nil {
		return a.deps.Reporter
	}
	if a.opts.Progress == nil {
		return progress.Log{}
	}
	sio, err := progress.DialSocketIO(ctx, a.opts.Progress)
	if err != nil {
		a.logger.Warn("Progress reporting disabled.", "url", a.opts.Progress.URL, "error", err)
		return progress.Log{}
	}
	return progress.Multi{progress.Log{}, sio}
}
