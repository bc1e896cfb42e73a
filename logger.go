package htmlview

import (
	"log/slog"

	"github.com/gogpu/htmlview/internal/logging"
)

// SetLogger configures the logger for htmlview and all its sub-packages.
// By default, htmlview produces no log output. Call SetLogger to enable
// logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by htmlview:
//   - [slog.LevelDebug]: layout and paint passes, extracted asset entries
//   - [slog.LevelInfo]: lifecycle events (assets provisioned, controller ready)
//   - [slog.LevelWarn]: failures that put a controller into the failed state
//
// Example:
//
//	htmlview.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger used by htmlview.
// Sub-packages share the same logger through internal/logging.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.Logger()
}
