package internal

import (
	"context"
	"log/slog"
)

// LevelTrace is used for per-frame and per-register logging. It is below debug
// so enabling debug output does not flood the log from the poll loop.
const LevelTrace slog.Level = slog.LevelDebug - 2

func LogEnabled(l *slog.Logger, lvl slog.Level) bool {
	return l != nil && l.Handler().Enabled(context.Background(), lvl)
}

// LogAttrs is a helper function used by all package loggers. It is a no-op
// when l is nil so drivers may be used without a logger configured.
func LogAttrs(l *slog.Logger, level slog.Level, msg string, attrs ...slog.Attr) {
	if l != nil {
		l.LogAttrs(context.Background(), level, msg, attrs...)
	}
}
