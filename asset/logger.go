package asset

import (
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/steelcast/internal/logging"
)

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(logging.Nop())
}

func slogger() *slog.Logger { return loggerPtr.Load() }

// SetLogger sets the logger for the asset package.
// Passing nil restores the silent default.
func SetLogger(l *slog.Logger) {
	loggerPtr.Store(logging.OrNop(l))
}
