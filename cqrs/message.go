// Package cqrs provides the command/query mediation layer: a registry binding
// each message type to its handler, and two buses that resolve handlers
// through the dependency container and invoke them through an ordered
// middleware pipeline.
package cqrs

import (
	"context"
	"reflect"
)

// Command expresses an intent to change state. Handlers may return a simple
// result (such as an identifier) or nothing.
type Command interface {
	CommandName() string
}

// Query is a read-only request for data. Handlers must return data and must
// not cause observable state change.
type Query interface {
	QueryName() string
}

// Validatable messages are given a chance to self-validate before dispatch;
// the validation middleware rejects the dispatch if Validate returns an error.
type Validatable interface {
	Validate() error
}

// CommandHandler processes a single command type, asserted from the generic
// message inside Handle.
type CommandHandler interface {
	HandleCommand(ctx context.Context, cmd Command) (any, error)
}

// QueryHandler processes a single query type.
type QueryHandler interface {
	HandleQuery(ctx context.Context, q Query) (any, error)
}

// messageName labels a message for logs without relying on reflection when it
// carries its own name. Nil messages (including typed nil pointers) are
// labeled rather than dereferenced, since they still travel through the
// logging middleware before validation rejects them.
func messageName(msg any) string {
	if isNilMessage(msg) {
		return "<nil>"
	}
	switch m := msg.(type) {
	case Command:
		return m.CommandName()
	case Query:
		return m.QueryName()
	default:
		return reflect.TypeOf(msg).String()
	}
}
