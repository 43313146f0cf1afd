package cqrs

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/awslabs/open-hostfactory-plugin-sub000/di"
)

// bus carries the machinery shared by both mediators: the container that
// constructs handlers, the registry that locates them, and the middleware
// chain wrapped around every dispatch. Buses hold no business state and are
// resolved once, as singletons, through the container.
type bus struct {
	container  *di.Container
	registry   *HandlerRegistry
	logger     *slog.Logger
	middleware []Middleware
}

// dispatch folds the middleware list right-to-left into nested continuations
// around innermost, then runs the resulting pipeline. Each dispatch builds its
// own closures from the shared middleware slice, so concurrent in-flight
// dispatches never share mutable state.
func (b *bus) dispatch(ctx context.Context, msg any, innermost Next) (any, error) {
	next := innermost
	for i := len(b.middleware) - 1; i >= 0; i-- {
		m, inner := b.middleware[i], next
		next = func(ctx context.Context) (any, error) {
			return m.Execute(ctx, msg, inner)
		}
	}
	return next(ctx)
}

// CommandBus routes commands to their single bound handler.
type CommandBus struct {
	bus
}

// NewCommandBus creates a command bus with the default middleware chain:
// logging first, then validation.
func NewCommandBus(container *di.Container, registry *HandlerRegistry, logger *slog.Logger) *CommandBus {
	b := &CommandBus{bus: bus{
		container: container,
		registry:  registry,
		logger:    logger.With("component", "command-bus"),
	}}
	b.Use(NewLoggingMiddleware(b.logger))
	b.Use(NewValidationMiddleware())
	return b
}

// Use appends a middleware; earlier-added middleware executes first on the
// way in and last on the way out.
func (b *CommandBus) Use(m Middleware) {
	b.middleware = append(b.middleware, m)
	b.logger.Debug("middleware added", "middleware", fmt.Sprintf("%T", m))
}

// Execute routes a command through the middleware pipeline to its handler and
// returns the handler's result. Failures are logged by the pipeline and
// propagated, never swallowed, and never retried; repeated calls with
// identical input are dispatched independently.
func (b *CommandBus) Execute(ctx context.Context, cmd Command) (any, error) {
	return b.dispatch(ctx, cmd, func(ctx context.Context) (any, error) {
		handlerType, err := b.registry.CommandHandlerFor(reflect.TypeOf(cmd))
		if err != nil {
			return nil, err
		}
		handler, err := b.resolveHandler(handlerType)
		if err != nil {
			return nil, err
		}
		commandHandler, ok := handler.(CommandHandler)
		if !ok {
			return nil, fmt.Errorf("%s does not implement CommandHandler", handlerType)
		}
		return commandHandler.HandleCommand(ctx, cmd)
	})
}

// QueryBus routes queries to their single bound handler.
type QueryBus struct {
	bus
}

// NewQueryBus creates a query bus with the default middleware chain: logging
// first, then validation.
func NewQueryBus(container *di.Container, registry *HandlerRegistry, logger *slog.Logger) *QueryBus {
	b := &QueryBus{bus: bus{
		container: container,
		registry:  registry,
		logger:    logger.With("component", "query-bus"),
	}}
	b.Use(NewLoggingMiddleware(b.logger))
	b.Use(NewValidationMiddleware())
	return b
}

// Use appends a middleware to the query pipeline.
func (b *QueryBus) Use(m Middleware) {
	b.middleware = append(b.middleware, m)
	b.logger.Debug("middleware added", "middleware", fmt.Sprintf("%T", m))
}

// Execute routes a query through the middleware pipeline to its handler and
// returns the handler's data.
func (b *QueryBus) Execute(ctx context.Context, q Query) (any, error) {
	return b.dispatch(ctx, q, func(ctx context.Context) (any, error) {
		handlerType, err := b.registry.QueryHandlerFor(reflect.TypeOf(q))
		if err != nil {
			return nil, err
		}
		handler, err := b.resolveHandler(handlerType)
		if err != nil {
			return nil, err
		}
		queryHandler, ok := handler.(QueryHandler)
		if !ok {
			return nil, fmt.Errorf("%s does not implement QueryHandler", handlerType)
		}
		return queryHandler.HandleQuery(ctx, q)
	})
}

func (b *bus) resolveHandler(handlerType reflect.Type) (any, error) {
	handler, err := b.container.Get(handlerType)
	if err != nil {
		return nil, fmt.Errorf("resolve handler %s: %w", handlerType, err)
	}
	return handler, nil
}
