package schemareg

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/reglet-dev/reglet-schema-registry/validation"
)

// Middleware is a function that wraps a ByteHandler to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion model).
//
// Example usage:
//
//	timing := func(next ByteHandler) ByteHandler {
//	    return func(ctx context.Context, payload []byte) ([]byte, error) {
//	        start := time.Now()
//	        defer func() { fmt.Println(OperationName(ctx), time.Since(start)) }()
//	        return next(ctx, payload)
//	    }
//	}
type Middleware func(next ByteHandler) ByteHandler

// OperationRecorder observes completed operations. metrics.Metrics implements it.
type OperationRecorder interface {
	RecordOperation(operation string, err error, durationSeconds float64)
}

// PanicRecoveryMiddleware returns a middleware that catches panics and converts
// them to an ErrorResponse instead of crashing the server.
func PanicRecoveryMiddleware() Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) (resp []byte, err error) {
			defer func() {
				if r := recover(); r != nil {
					resp = nil
					err = NewPanicError(r)
				}
			}()
			return next(ctx, payload)
		}
	}
}

// LoggingMiddleware returns a middleware that logs operation invocations.
func LoggingMiddleware(logger zerolog.Logger) Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			name := OperationName(ctx)
			start := time.Now()

			logger.Debug().Str("operation", name).Int("payloadBytes", len(payload)).Msg("Invoking operation")
			resp, err := next(ctx, payload)
			if err != nil {
				logger.Error().Err(err).Str("operation", name).Dur("duration", time.Since(start)).Msg("Operation failed")
			} else {
				logger.Debug().Str("operation", name).Dur("duration", time.Since(start)).Msg("Operation completed")
			}
			return resp, err
		}
	}
}

// MetricsMiddleware returns a middleware that records count and latency per operation.
func MetricsMiddleware(rec OperationRecorder) Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			start := time.Now()
			resp, err := next(ctx, payload)
			rec.RecordOperation(OperationName(ctx), err, time.Since(start).Seconds())
			return resp, err
		}
	}
}

// ValidationMiddleware returns a middleware that rejects payloads that do not
// match the operation's input schema.
func ValidationMiddleware(v validation.PayloadValidator) Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			name := OperationName(ctx)
			result, err := v.Validate(name, payload)
			if err != nil {
				return nil, err
			}
			if !result.Valid {
				return nil, NewInvalidPayloadError(name, result.Errors)
			}
			return next(ctx, payload)
		}
	}
}
