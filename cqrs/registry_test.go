package cqrs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awslabs/open-hostfactory-plugin-sub000/di"
)

func TestDuplicateCommandBindingRejected(t *testing.T) {
	registry := NewHandlerRegistry()
	require.NoError(t, RegisterCommand[createThingCommand, *createThingHandler](registry, newCreateThingHandler))

	err := RegisterCommand[createThingCommand, *failingHandler](registry, newFailingHandler)

	var duplicate *DuplicateHandlerError
	require.ErrorAs(t, err, &duplicate)
	assert.Equal(t, di.For[*createThingHandler](), duplicate.Existing)

	// The original binding is untouched.
	handlerType, lookupErr := registry.CommandHandlerFor(di.For[createThingCommand]())
	require.NoError(t, lookupErr)
	assert.Equal(t, di.For[*createThingHandler](), handlerType)
}

func TestCommandAndQueryTablesAreSeparate(t *testing.T) {
	registry := NewHandlerRegistry()
	require.NoError(t, RegisterCommand[createThingCommand, *createThingHandler](registry, newCreateThingHandler))

	_, err := registry.QueryHandlerFor(di.For[createThingCommand]())
	var notRegistered *HandlerNotRegisteredError
	require.ErrorAs(t, err, &notRegistered)
	assert.Equal(t, KindQuery, notRegistered.Kind)
}

func TestStatsAndReset(t *testing.T) {
	registry := NewHandlerRegistry()
	require.NoError(t, RegisterCommand[createThingCommand, *createThingHandler](registry, newCreateThingHandler))
	require.NoError(t, RegisterQuery[countThingsQuery, *countThingsHandler](registry, newCountThingsHandler))

	stats := registry.Stats()
	assert.Equal(t, 1, stats.CommandHandlers)
	assert.Equal(t, 1, stats.QueryHandlers)
	assert.Len(t, registry.Bindings(), 2)

	registry.Reset()
	assert.Equal(t, Stats{}, registry.Stats())
	assert.Empty(t, registry.Bindings())
}
