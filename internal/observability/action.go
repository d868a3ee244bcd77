// File: internal/observability/action.go
package observability

import (
	"time"

	"go.uber.org/zap"
)

// StartAction records the start of a named browser operation and returns a
// completion func. Calling the completion func emits exactly one structured
// record carrying the operation name, the human message, the elapsed wall time
// in seconds, and any extra fields the caller supplies (usually the outcome).
//
// The timing uses a monotonic start so the elapsed figure is immune to clock
// adjustments mid-operation.
func StartAction(logger *zap.Logger, operation, message string) func(fields ...zap.Field) {
	start := time.Now()
	return func(fields ...zap.Field) {
		elapsed := time.Since(start)
		all := make([]zap.Field, 0, len(fields)+3)
		all = append(all,
			zap.String("operation", operation),
			zap.String("message", message),
			zap.Float64("elapsed_seconds", elapsed.Seconds()),
		)
		all = append(all, fields...)
		logger.Info("action completed", all...)
	}
}

// CapturePanic logs a panic with full context and re-raises it. Intended for
// use at the top of the CLI when exception logging is enabled:
//
//	defer observability.CapturePanic(logger)
func CapturePanic(logger *zap.Logger) {
	if r := recover(); r != nil {
		logger.Error("unhandled panic", zap.Any("panic", r), zap.Stack("stacktrace"))
		Sync()
		panic(r)
	}
}
