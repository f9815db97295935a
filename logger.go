package accel3d

import (
	"log/slog"
	"sync/atomic"
)

var silent = slog.New(slog.DiscardHandler)

// pkgLogger is read by NewContext and may be replaced at any time.
var pkgLogger atomic.Pointer[slog.Logger]

// SetLogger sets the logger that contexts created afterwards use, unless
// they are given one through WithLogger. Each context passes its logger on
// to its texture manager and command sink. Nil restores the default, which
// discards everything.
//
// accel3d logs per-batch diagnostics at Debug (selections, tessellation,
// evictions), context creation and memory invalidation at Info, and
// fallbacks such as rejected classes, failed binds and device wait timeouts
// at Warn.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	pkgLogger.Store(l)
}

// Logger returns the logger set by SetLogger.
func Logger() *slog.Logger {
	if l := pkgLogger.Load(); l != nil {
		return l
	}
	return silent
}
