package bootstrap

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awslabs/open-hostfactory-plugin-sub000/cqrs"
	"github.com/awslabs/open-hostfactory-plugin-sub000/di"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type pingCommand struct{}

func (pingCommand) CommandName() string { return "Ping" }

type pingHandler struct {
	logger *slog.Logger
}

func newPingHandler(logger *slog.Logger) *pingHandler {
	return &pingHandler{logger: logger}
}

func (h *pingHandler) HandleCommand(context.Context, cqrs.Command) (any, error) {
	return "pong", nil
}

type echoQuery struct {
	Text string
}

func (echoQuery) QueryName() string { return "Echo" }

type echoHandler struct{}

func newEchoHandler() *echoHandler { return &echoHandler{} }

func (h *echoHandler) HandleQuery(_ context.Context, q cqrs.Query) (any, error) {
	return q.(echoQuery).Text, nil
}

func pingModule() Module {
	return Module{
		Name: "ping",
		Register: func(r *cqrs.HandlerRegistry) error {
			return cqrs.RegisterCommand[pingCommand, *pingHandler](r, newPingHandler)
		},
	}
}

func echoModule() Module {
	return Module{
		Name: "echo",
		Register: func(r *cqrs.HandlerRegistry) error {
			return cqrs.RegisterQuery[echoQuery, *echoHandler](r, newEchoHandler)
		},
	}
}

func TestDiscoverRegistersHandlers(t *testing.T) {
	logger := testLogger()
	container := di.New(logger)
	container.RegisterInstance(di.For[*slog.Logger](), logger)
	registry := cqrs.NewHandlerRegistry()

	stats, err := Discover(container, registry, logger, pingModule(), echoModule())
	require.NoError(t, err)
	assert.Equal(t, DiscoveryStats{Modules: 2, CommandHandlers: 1, QueryHandlers: 1}, stats)

	handler, err := di.Resolve[*pingHandler](container)
	require.NoError(t, err)
	assert.NotNil(t, handler.logger)
}

func TestDiscoverSkipsFailingModule(t *testing.T) {
	logger := testLogger()
	container := di.New(logger)
	container.RegisterInstance(di.For[*slog.Logger](), logger)
	registry := cqrs.NewHandlerRegistry()

	broken := Module{
		Name:     "broken",
		Register: func(*cqrs.HandlerRegistry) error { return errors.New("boom") },
	}

	stats, err := Discover(container, registry, logger, broken, pingModule())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.CommandHandlers)

	// The surviving module is still dispatchable.
	assert.True(t, container.IsRegistered(di.For[*pingHandler]()))
}

func TestDiscoverHandlersAreSingletons(t *testing.T) {
	logger := testLogger()
	container := di.New(logger)
	container.RegisterInstance(di.For[*slog.Logger](), logger)
	registry := cqrs.NewHandlerRegistry()

	_, err := Discover(container, registry, logger, pingModule())
	require.NoError(t, err)

	first, err := di.Resolve[*pingHandler](container)
	require.NoError(t, err)
	second, err := di.Resolve[*pingHandler](container)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestRuntimeDispatch(t *testing.T) {
	runtime, err := New(Options{
		Logger:  testLogger(),
		Modules: []Module{pingModule(), echoModule()},
	})
	require.NoError(t, err)

	result, err := runtime.Commands.Execute(context.Background(), pingCommand{})
	require.NoError(t, err)
	assert.Equal(t, "pong", result)

	result, err = runtime.Queries.Execute(context.Background(), echoQuery{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", result)
}

func TestRuntimeUnknownScheduler(t *testing.T) {
	_, err := New(Options{Logger: testLogger(), Scheduler: "mesos"})
	require.Error(t, err)
	assert.ErrorContains(t, err, `"mesos" is not registered`)
}
