package cqrs

import (
	"reflect"
	"sync"

	"github.com/samber/lo"

	"github.com/awslabs/open-hostfactory-plugin-sub000/di"
)

// HandlerBinding associates a message type with the handler type responsible
// for it, plus the constructor the container uses to build that handler.
type HandlerBinding struct {
	Kind        MessageKind
	MessageType reflect.Type
	HandlerType reflect.Type
	Constructor any
}

// HandlerRegistry is the process-wide table mapping each command and query
// type to its handler. It is owned by the bootstrap routine and injected where
// needed, never global. Duplicate bindings for a message type are rejected.
type HandlerRegistry struct {
	mu       sync.RWMutex
	commands map[reflect.Type]HandlerBinding
	queries  map[reflect.Type]HandlerBinding
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		commands: make(map[reflect.Type]HandlerBinding),
		queries:  make(map[reflect.Type]HandlerBinding),
	}
}

// RegisterCommandHandler binds a command type to its handler. The constructor
// is what discovery later registers with the container.
func (r *HandlerRegistry) RegisterCommandHandler(messageType, handlerType reflect.Type, ctor any) error {
	return r.register(KindCommand, r.commands, messageType, handlerType, ctor)
}

// RegisterQueryHandler binds a query type to its handler.
func (r *HandlerRegistry) RegisterQueryHandler(messageType, handlerType reflect.Type, ctor any) error {
	return r.register(KindQuery, r.queries, messageType, handlerType, ctor)
}

func (r *HandlerRegistry) register(kind MessageKind, table map[reflect.Type]HandlerBinding, messageType, handlerType reflect.Type, ctor any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := table[messageType]; ok {
		return &DuplicateHandlerError{MessageType: messageType, Kind: kind, Existing: existing.HandlerType}
	}
	table[messageType] = HandlerBinding{
		Kind:        kind,
		MessageType: messageType,
		HandlerType: handlerType,
		Constructor: ctor,
	}
	return nil
}

// CommandHandlerFor returns the handler type bound to a command type.
func (r *HandlerRegistry) CommandHandlerFor(messageType reflect.Type) (reflect.Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	binding, ok := r.commands[messageType]
	if !ok {
		return nil, &HandlerNotRegisteredError{MessageType: messageType, Kind: KindCommand}
	}
	return binding.HandlerType, nil
}

// QueryHandlerFor returns the handler type bound to a query type.
func (r *HandlerRegistry) QueryHandlerFor(messageType reflect.Type) (reflect.Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	binding, ok := r.queries[messageType]
	if !ok {
		return nil, &HandlerNotRegisteredError{MessageType: messageType, Kind: KindQuery}
	}
	return binding.HandlerType, nil
}

// Bindings returns every registered binding, commands first.
func (r *HandlerRegistry) Bindings() []HandlerBinding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append(lo.Values(r.commands), lo.Values(r.queries)...)
}

// Stats reports the number of registered handlers, for start-up diagnostics.
type Stats struct {
	CommandHandlers int
	QueryHandlers   int
}

func (r *HandlerRegistry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Stats{CommandHandlers: len(r.commands), QueryHandlers: len(r.queries)}
}

// Reset drops every binding. Used between test runs.
func (r *HandlerRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = make(map[reflect.Type]HandlerBinding)
	r.queries = make(map[reflect.Type]HandlerBinding)
}

// RegisterCommand binds command type C to handler type H, built by ctor.
// Handler modules call this from their Register function.
func RegisterCommand[C Command, H CommandHandler](r *HandlerRegistry, ctor any) error {
	return r.RegisterCommandHandler(di.For[C](), di.For[H](), ctor)
}

// RegisterQuery binds query type Q to handler type H, built by ctor.
func RegisterQuery[Q Query, H QueryHandler](r *HandlerRegistry, ctor any) error {
	return r.RegisterQueryHandler(di.For[Q](), di.For[H](), ctor)
}
