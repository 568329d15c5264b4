package event

import (
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/steelcast/internal/logging"
)

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(logging.Nop())
}

// slogger returns the current package logger.
func slogger() *slog.Logger { return loggerPtr.Load() }

// SetLogger sets the logger used by the dispatcher.
// Passing nil restores the silent default.
func SetLogger(l *slog.Logger) {
	loggerPtr.Store(logging.OrNop(l))
}
