package spanloom

import (
	"context"
	"log/slog"
)

// NewSlogDiagnosticsHandler returns an Engine.Observe-compatible callback
// that forwards every diagnostic signal to logger at Debug level, mirroring
// the teacher's slog/OTLP bridge (logs.go) but targeting plain slog instead
// of OTLP directly.
func NewSlogDiagnosticsHandler(logger *slog.Logger) func(context.Context, string, map[string]string) {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, signal string, fields map[string]string) {
		attrs := make([]any, 0, len(fields)*2+2)
		attrs = append(attrs, "spanloom.signal", signal)
		for k, v := range fields {
			attrs = append(attrs, k, v)
		}
		logger.DebugContext(ctx, "spanloom diagnostic", attrs...)
	}
}
