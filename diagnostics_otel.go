package spanloom

import (
	"context"

	"go.opentelemetry.io/otel/log"
)

// NewOTELDiagnosticsHandler returns an Engine.Observe-compatible callback
// that forwards every diagnostic signal to an OTEL log.Logger at Debug
// severity, mirroring the teacher's internalObserver.handleEvent (which
// writes capitan diagnostic events directly to OTEL without field
// transformation, to avoid recursion through the main log pipeline).
func NewOTELDiagnosticsHandler(logger log.Logger) func(context.Context, string, map[string]string) {
	return func(ctx context.Context, signal string, fields map[string]string) {
		var record log.Record
		record.SetSeverity(log.SeverityDebug)
		record.SetSeverityText("DEBUG")
		record.SetBody(log.StringValue(signal))
		record.AddAttributes(log.String("spanloom.signal", signal))
		for k, v := range fields {
			record.AddAttributes(log.String(k, v))
		}
		logger.Emit(ctx, record)
	}
}
