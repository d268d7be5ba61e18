package edmac

import (
	"log/slog"

	"github.com/soypat/etherc/internal"
)

func (d *Driver) info(msg string, attrs ...slog.Attr) {
	internal.LogAttrs(d.log, slog.LevelInfo, msg, attrs...)
}

func (d *Driver) debug(msg string, attrs ...slog.Attr) {
	internal.LogAttrs(d.log, slog.LevelDebug, msg, attrs...)
}

func (d *Driver) trace(msg string, attrs ...slog.Attr) {
	internal.LogAttrs(d.log, internal.LevelTrace, msg, attrs...)
}

func (d *Driver) logerr(msg string, attrs ...slog.Attr) {
	internal.LogAttrs(d.log, slog.LevelError, msg, attrs...)
}
