// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

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

// SetLogger sets the logger for the webgpu renderer.
// Passing nil disables logging.
func SetLogger(l *slog.Logger) {
	loggerPtr.Store(logging.OrNop(l))
}
