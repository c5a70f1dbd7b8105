package dxtex

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that discards every record. Enabled returns
// false so callers skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for dxtex. By default nothing is logged.
// Pass nil to restore the silent default. SetLogger is safe for concurrent
// use and also updates the process-wide compression device if it has been
// created.
//
// Log levels used by dxtex:
//   - [slog.LevelDebug]: pipeline decisions (accelerated or software
//     compression, arena sizes, codec selection)
//   - [slog.LevelInfo]: lifecycle events (compression device created)
//   - [slog.LevelWarn]: non-fatal issues (device creation failed, close
//     errors after a successful save)
//
// Example:
//
//	dxtex.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	if d := createdHWDevice(); d != nil {
		d.SetLogger(l)
	}
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
