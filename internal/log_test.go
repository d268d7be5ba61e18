package internal

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLogAttrs(t *testing.T) {
	// Nil logger must not panic.
	LogAttrs(nil, slog.LevelError, "nothing")
	if LogEnabled(nil, slog.LevelError) {
		t.Fatal("nil logger reported enabled")
	}
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: LevelTrace}))
	if !LogEnabled(l, LevelTrace) {
		t.Fatal("trace level not enabled")
	}
	hw := [6]byte{0x02, 0, 0, 0, 0, 0x01}
	LogAttrs(l, slog.LevelInfo, "link", SlogAddr6("mac", &hw))
	const want = "mac=2199023255553"
	if !strings.Contains(buf.String(), want) {
		t.Errorf("log output %q missing %q", buf.String(), want)
	}
}
