package directbuf

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for directbuf and the renderers of every
// live Context. By default, directbuf produces no log output.
//
// SetLogger is safe for concurrent use. Pass nil to restore the default
// silent behavior.
//
// Log levels used by directbuf:
//   - [slog.LevelDebug]: allocation sizes, per-submit batch counts
//   - [slog.LevelInfo]: registration replacement
//   - [slog.LevelWarn]: memory release failures
//
// Example:
//
//	directbuf.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	renderersMu.Lock()
	defer renderersMu.Unlock()
	for t := range renderers {
		propagateLogger(t.ls, l)
	}
}

// Logger returns the current logger used by directbuf.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by renderers that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// trackedRenderer is one Context's claim on a renderer. Entries are keyed
// by pointer, so renderers of any dynamic type can be tracked and a
// renderer shared by several Contexts stays tracked until the last one
// closes.
type trackedRenderer struct {
	ls loggerSetter
}

// renderers tracks the renderers installed by live Contexts so SetLogger
// reaches renderers created before it was called.
var (
	renderersMu sync.Mutex
	renderers   = make(map[*trackedRenderer]struct{})
)

// trackRenderer hands the current logger to r and keeps it for later
// SetLogger calls. It returns nil for renderers without SetLogger.
func trackRenderer(r any) *trackedRenderer {
	ls, ok := r.(loggerSetter)
	if !ok {
		return nil
	}
	ls.SetLogger(Logger())
	t := &trackedRenderer{ls: ls}
	renderersMu.Lock()
	renderers[t] = struct{}{}
	renderersMu.Unlock()
	return t
}

func untrackRenderer(t *trackedRenderer) {
	if t == nil {
		return
	}
	renderersMu.Lock()
	delete(renderers, t)
	renderersMu.Unlock()
}

func propagateLogger(ls loggerSetter, l *slog.Logger) {
	ls.SetLogger(l)
}
