package cqrs

import (
	"fmt"
	"reflect"
)

// MessageKind distinguishes the two halves of the handler registry.
type MessageKind string

const (
	KindCommand MessageKind = "command"
	KindQuery   MessageKind = "query"
)

// HandlerNotRegisteredError is returned when a dispatched message type has no
// bound handler.
type HandlerNotRegisteredError struct {
	MessageType reflect.Type
	Kind        MessageKind
}

func (e *HandlerNotRegisteredError) Error() string {
	return fmt.Sprintf("no %s handler registered for %s", e.Kind, e.MessageType)
}

// DuplicateHandlerError is returned when a second handler is registered for a
// message type that already has one. Bindings never silently replace each
// other; the registry shares the strict policy of the domain registries.
type DuplicateHandlerError struct {
	MessageType reflect.Type
	Kind        MessageKind
	Existing    reflect.Type
}

func (e *DuplicateHandlerError) Error() string {
	return fmt.Sprintf("%s %s already handled by %s", e.Kind, e.MessageType, e.Existing)
}

// ValidationError is returned by the validation middleware when a message is
// nil or fails its own Validate check.
type ValidationError struct {
	Reason string
	Cause  error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("message validation failed: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("message validation failed: %s", e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Cause }
