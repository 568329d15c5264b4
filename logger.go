package steelcast

import (
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/steelcast/asset"
	"github.com/gogpu/steelcast/event"
	"github.com/gogpu/steelcast/internal/logging"
	"github.com/gogpu/steelcast/platform"
	"github.com/gogpu/steelcast/render/webgpu"
)

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(logging.Nop())
}

// SetLogger configures the logger for steelcast and all its sub-packages.
// By default, steelcast produces no log output. Pass nil to restore the
// silent default.
//
// Log levels used by steelcast:
//   - [slog.LevelDebug]: pipeline, buffer and dispatcher diagnostics
//   - [slog.LevelInfo]: adapter selection and application lifecycle
//   - [slog.LevelWarn]: dropped events and recovered callback panics
//   - [slog.LevelError]: GPU failures and API misuse
//
// Example:
//
//	steelcast.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	l = logging.OrNop(l)
	loggerPtr.Store(l)

	event.SetLogger(l)
	asset.SetLogger(l)
	webgpu.SetLogger(l)
	platform.SetLogger(l)
}

// Logger returns the current logger used by steelcast.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
