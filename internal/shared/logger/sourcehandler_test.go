package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestSourceHandlerLevels(t *testing.T) {
	tests := []struct {
		name       string
		level      slog.Level
		minSource  slog.Level
		wantSource bool
	}{
		{"info below threshold", slog.LevelInfo, slog.LevelWarn, false},
		{"warn at threshold", slog.LevelWarn, slog.LevelWarn, true},
		{"error above threshold", slog.LevelError, slog.LevelWarn, true},
		{"debug mode shows all", slog.LevelInfo, slog.LevelDebug, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			base := slog.NewTextHandler(&buf, &slog.HandlerOptions{AddSource: false})
			l := slog.New(newSourceHandler(base, tt.minSource))

			l.Log(context.Background(), tt.level, "test message")

			hasSource := strings.Contains(buf.String(), "source=")
			if hasSource != tt.wantSource {
				t.Errorf("source=%v, want %v, output: %s", hasSource, tt.wantSource, buf.String())
			}
		})
	}
}

func TestSourceHandlerPreservesAttrs(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewTextHandler(&buf, &slog.HandlerOptions{AddSource: false})
	l := slog.New(newSourceHandler(base, slog.LevelError)).With("correlation_id", "abc")

	l.Info("test message")

	out := buf.String()
	if strings.Contains(out, "source=") {
		t.Errorf("unexpected source for info record: %s", out)
	}
	if !strings.Contains(out, "correlation_id=abc") {
		t.Errorf("missing attribute in output: %s", out)
	}
}

func TestSourceHandlerEnabled(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	h := newSourceHandler(base, slog.LevelError)

	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be disabled by the base handler")
	}
	if !h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be enabled")
	}
}
