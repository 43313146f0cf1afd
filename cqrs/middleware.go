package cqrs

import (
	"context"
	"log/slog"
	"reflect"
	"time"
)

// Next continues the dispatch pipeline. The innermost Next performs handler
// lookup, resolution and invocation.
type Next func(ctx context.Context) (any, error)

// Middleware wraps dispatch with a cross-cutting behavior. Middleware added
// earlier runs first on the way in and last on the way out.
type Middleware interface {
	Execute(ctx context.Context, msg any, next Next) (any, error)
}

// LoggingMiddleware records the start, duration and outcome of every dispatch.
// It never swallows an error.
type LoggingMiddleware struct {
	logger *slog.Logger
}

func NewLoggingMiddleware(logger *slog.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger}
}

func (m *LoggingMiddleware) Execute(ctx context.Context, msg any, next Next) (any, error) {
	name := messageName(msg)
	m.logger.DebugContext(ctx, "dispatching message", "message", name)

	start := time.Now()
	result, err := next(ctx)
	elapsed := time.Since(start)

	if err != nil {
		m.logger.ErrorContext(ctx, "dispatch failed", "message", name, "elapsed", elapsed, "error", err)
		return nil, err
	}
	m.logger.DebugContext(ctx, "dispatch completed", "message", name, "elapsed", elapsed)
	return result, nil
}

// ValidationMiddleware rejects a nil message outright, then gives the message
// a chance to self-validate before the pipeline continues.
type ValidationMiddleware struct{}

func NewValidationMiddleware() ValidationMiddleware { return ValidationMiddleware{} }

func (ValidationMiddleware) Execute(ctx context.Context, msg any, next Next) (any, error) {
	if isNilMessage(msg) {
		return nil, &ValidationError{Reason: "message is nil"}
	}
	if v, ok := msg.(Validatable); ok {
		if err := v.Validate(); err != nil {
			return nil, &ValidationError{Reason: messageName(msg), Cause: err}
		}
	}
	return next(ctx)
}

func isNilMessage(msg any) bool {
	if msg == nil {
		return true
	}
	v := reflect.ValueOf(msg)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}
