package di

import (
	"fmt"
	"reflect"
	"strings"
)

// CircularDependencyError is returned when a type under construction is
// requested again deeper in the same resolution call. Chain holds every type
// on the active resolution path, in order, ending with the repeated type.
type CircularDependencyError struct {
	Chain []reflect.Type
}

func (e *CircularDependencyError) Error() string {
	names := make([]string, len(e.Chain))
	for i, t := range e.Chain {
		names[i] = typeName(t)
	}
	return fmt.Sprintf("circular dependency detected: %s", strings.Join(names, " -> "))
}

// UnregisteredDependencyError is returned when a requested type has no binding
// and cannot be built by introspection. Parent and Parameter locate the exact
// constructor edge that failed; Parent is nil for a top-level Get.
type UnregisteredDependencyError struct {
	Type      reflect.Type
	Parent    reflect.Type
	Parameter int
}

func (e *UnregisteredDependencyError) Error() string {
	msg := fmt.Sprintf("no binding registered for %s", typeName(e.Type))
	if e.Parent != nil {
		msg += fmt.Sprintf(" (parameter #%d of %s)", e.Parameter+1, typeName(e.Parent))
	}
	return msg
}

// UntypedParameterError is returned when a constructor declares a parameter
// that carries no resolvable type information (the empty interface).
type UntypedParameterError struct {
	Type      reflect.Type
	Parameter int
}

func (e *UntypedParameterError) Error() string {
	return fmt.Sprintf("constructor for %s declares untyped parameter #%d; parameters must have a concrete or interface type", typeName(e.Type), e.Parameter+1)
}

// InstantiationError is returned when a constructor fails after all of its
// dependencies resolved, either by returning an error or by panicking.
type InstantiationError struct {
	Type  reflect.Type
	Cause error
}

func (e *InstantiationError) Error() string {
	return fmt.Sprintf("constructor for %s failed: %v", typeName(e.Type), e.Cause)
}

func (e *InstantiationError) Unwrap() error { return e.Cause }

// FactoryError is returned when a registered factory function fails.
type FactoryError struct {
	Type  reflect.Type
	Cause error
}

func (e *FactoryError) Error() string {
	return fmt.Sprintf("factory for %s failed: %v", typeName(e.Type), e.Cause)
}

func (e *FactoryError) Unwrap() error { return e.Cause }

// InvalidBindingError is returned by registration when the producer cannot
// serve as a binding (not a function, bad signature, nil constructor).
type InvalidBindingError struct {
	Type   reflect.Type
	Reason string
}

func (e *InvalidBindingError) Error() string {
	return fmt.Sprintf("invalid binding for %s: %s", typeName(e.Type), e.Reason)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
