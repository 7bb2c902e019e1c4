package logger

import (
	"context"
	"log/slog"
	"runtime"
)

// sourceHandler attaches source locations to records at or above a minimum
// level. The wrapped handler must be built with AddSource disabled; the
// location is resolved here so it points at the logging call site rather
// than this wrapper.
type sourceHandler struct {
	handler        slog.Handler
	minSourceLevel slog.Level
}

func newSourceHandler(handler slog.Handler, minSourceLevel slog.Level) slog.Handler {
	return &sourceHandler{handler: handler, minSourceLevel: minSourceLevel}
}

func (h *sourceHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.minSourceLevel {
		// Skip runtime.Callers, this frame, and the slog frontend frame.
		var pcs [1]uintptr
		runtime.Callers(3, pcs[:])
		frames := runtime.CallersFrames(pcs[:])
		f, _ := frames.Next()

		r.AddAttrs(slog.Attr{
			Key: slog.SourceKey,
			Value: slog.AnyValue(&slog.Source{
				Function: f.Function,
				File:     f.File,
				Line:     f.Line,
			}),
		})
	}
	return h.handler.Handle(ctx, r)
}

func (h *sourceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sourceHandler{handler: h.handler.WithAttrs(attrs), minSourceLevel: h.minSourceLevel}
}

func (h *sourceHandler) WithGroup(name string) slog.Handler {
	return &sourceHandler{handler: h.handler.WithGroup(name), minSourceLevel: h.minSourceLevel}
}

func (h *sourceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}
