// Package logx provides the shared logging facade for the engine and all of
// its sub-packages. By default nothing is logged; call SetLogger to enable
// output. Sub-packages call Logger() so they share one configuration without
// import cycles.
package logx

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely, making
// disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// loggerPtr stores the active logger. Accessed atomically so SetLogger can be
// called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := slog.New(nopHandler{})
	loggerPtr.Store(l)
}

// SetLogger configures the logger used by the engine and all sub-packages.
// Pass nil to disable logging (restore the default silent behavior).
//
// Log levels used:
//   - slog.LevelDebug: per-frame diagnostics (skipped ticks, resize coalescing)
//   - slog.LevelInfo: lifecycle events (adapter selected, surface configured)
//   - slog.LevelWarn: recoverable conditions (surface lost, pipeline rebuild)
//   - slog.LevelError: fatal classifications prior to shutdown
//
// Parameters:
//   - l: the slog.Logger to install, or nil to silence all output
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the currently installed logger. Safe for concurrent use.
//
// Returns:
//   - *slog.Logger: the active logger (never nil)
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
