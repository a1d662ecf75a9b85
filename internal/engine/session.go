package engine

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/pbrtgo/internal/config"
	"github.com/specialistvlad/pbrtgo/internal/ctxlog"
	"github.com/specialistvlad/pbrtgo/internal/fsutil"
	"github.com/specialistvlad/pbrtgo/internal/parallel"
	"github.com/specialistvlad/pbrtgo/internal/render"
	"github.com/specialistvlad/pbrtgo/internal/scene"
)

// active is the process-wide session slot.
var active atomic.Pointer[Session]

// Deps are the collaborators of a session. Zero values select os.Stdout,
// os.Stdin and the bundled report renderer.
type Deps struct {
	Stdout   io.Writer
	Stdin    io.Reader
	Renderer render.Renderer
}

// Session is the live rendering subsystem. It is not safe for concurrent
// use; the batch loop feeds it one file at a time.
type Session struct {
	opts     config.Options
	logger   *slog.Logger
	pool     *parallel.Pool
	stdin    io.Reader
	renderer render.Renderer

	// formatter is set in cat and toply modes.
	formatter *scene.Formatter
	plyCount  int

	api       *apiState
	searchDir string

	releaseOnce sync.Once
	released    atomic.Bool
}

// Acquire initializes the rendering subsystem and publishes the session as
// the active one. Callers should defer Release immediately.
func Acquire(ctx context.Context, opts *config.Options, deps Deps) (*Session, error) {
	logger := ctxlog.FromContext(ctx)
	if opts == nil {
		d := config.Defaults()
		opts = &d
	}

	s := &Session{
		opts:   *opts,
		logger: logger,
		pool:   parallel.NewPool(opts.NThreads),
		stdin:  deps.Stdin,
	}
	if s.stdin == nil {
		s.stdin = os.Stdin
	}
	if s.opts.Reformatting() {
		out := deps.Stdout
		if out == nil {
			out = os.Stdout
		}
		s.formatter = scene.NewFormatter(out)
	}
	s.renderer = deps.Renderer
	if s.renderer == nil {
		s.renderer = render.NewReportRenderer(s.pool, render.Settings{
			ImageFile:   s.opts.ImageFile,
			QuickRender: s.opts.QuickRender,
		})
	}
	s.api = newAPIState()

	if !active.CompareAndSwap(nil, s) {
		s.pool.Close()
		return nil, ErrAlreadyActive
	}
	logger.Debug("Rendering subsystem initialized.", "mode", s.Mode(), "threads", s.pool.Workers())
	return s, nil
}

// Active returns the live session, or nil.
func Active() *Session {
	return active.Load()
}

// Mode names the operating mode: render, cat or toply.
func (s *Session) Mode() string {
	switch {
	case s.opts.ToPly:
		return "toply"
	case s.opts.Cat:
		return "cat"
	default:
		return "render"
	}
}

// Threads returns the worker pool size.
func (s *Session) Threads() int {
	return s.pool.Workers()
}

// ParseFile parses one scene description, "-" meaning standard input, and
// applies its directives to the session.
func (s *Session) ParseFile(ctx context.Context, name string) error {
	if s.released.Load() {
		return ErrReleased
	}
	s.searchDir = fsutil.SearchDirectory(name)
	return scene.NewParser(s, s.stdin).ParseFile(ctx, name)
}

// Release tears the subsystem down. It is safe to call more than once.
func (s *Session) Release() {
	s.releaseOnce.Do(func() {
		if s.api.block == blockWorld {
			s.logger.Error("Rendering subsystem released while inside world block.")
		}
		s.api = newAPIState()
		s.api.block = blockUninitialized
		s.pool.Close()
		s.released.Store(true)
		active.CompareAndSwap(s, nil)
		s.logger.Debug("Rendering subsystem released.")
	})
}
