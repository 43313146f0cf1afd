package di

import (
	"fmt"
	"reflect"
	"slices"
)

var (
	anyType   = reflect.TypeOf((*any)(nil)).Elem()
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

// constructorInfo is the introspected shape of a self-describing component: a
// constructor function whose parameter list declares its dependencies.
type constructorInfo struct {
	fn           reflect.Value
	params       []reflect.Type
	returnsError bool
}

// parseConstructor validates and introspects a constructor function.
// Accepted signatures are func(deps...) T and func(deps...) (T, error).
func parseConstructor(key reflect.Type, ctor any) (*constructorInfo, error) {
	if ctor == nil {
		return nil, &InvalidBindingError{Type: key, Reason: "constructor is nil"}
	}

	fn := reflect.ValueOf(ctor)
	ft := fn.Type()
	if ft.Kind() != reflect.Func {
		return nil, &InvalidBindingError{Type: key, Reason: fmt.Sprintf("constructor must be a function, got %s", ft)}
	}

	switch ft.NumOut() {
	case 1:
		// func(...) T
	case 2:
		if !ft.Out(1).Implements(errorType) {
			return nil, &InvalidBindingError{Type: key, Reason: "second return value must be error"}
		}
	default:
		return nil, &InvalidBindingError{Type: key, Reason: "constructor must return T or (T, error)"}
	}

	if !ft.Out(0).AssignableTo(key) {
		return nil, &InvalidBindingError{Type: key, Reason: fmt.Sprintf("constructor returns %s, not assignable to %s", ft.Out(0), key)}
	}

	params := make([]reflect.Type, ft.NumIn())
	for i := range params {
		params[i] = ft.In(i)
	}

	return &constructorInfo{
		fn:           fn,
		params:       params,
		returnsError: ft.NumOut() == 2,
	}, nil
}

// build invokes a constructor, recursively resolving each parameter in
// declaration order. The chain already contains key, so any parameter that
// leads back to it surfaces as a cycle rather than infinite recursion.
func (c *Container) build(key reflect.Type, info *constructorInfo, chain []reflect.Type) (out any, err error) {
	args := make([]reflect.Value, len(info.params))
	for i, param := range info.params {
		if param == anyType {
			return nil, &UntypedParameterError{Type: key, Parameter: i}
		}
		dep, err := c.get(param, key, i, chain)
		if err != nil {
			return nil, err
		}
		if dep == nil {
			args[i] = reflect.Zero(param)
		} else {
			args[i] = reflect.ValueOf(dep)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, &InstantiationError{Type: key, Cause: fmt.Errorf("constructor panicked: %v", r)}
		}
	}()

	results := info.fn.Call(args)
	if info.returnsError && !results[1].IsNil() {
		return nil, &InstantiationError{Type: key, Cause: results[1].Interface().(error)}
	}
	return results[0].Interface(), nil
}

// buildStruct constructs an unregistered pointer-to-struct key by resolving
// every field carrying an `inject` tag. Fields without the tag are left zero.
func (c *Container) buildStruct(key reflect.Type, chain []reflect.Type) (any, error) {
	elem := key.Elem()
	value := reflect.New(elem)

	for i := 0; i < elem.NumField(); i++ {
		field := elem.Field(i)
		tag, ok := field.Tag.Lookup("inject")
		if !ok || tag == "-" {
			continue
		}
		if !value.Elem().Field(i).CanSet() {
			return nil, &InvalidBindingError{Type: key, Reason: fmt.Sprintf("inject field %s is unexported", field.Name)}
		}
		if field.Type == anyType {
			return nil, &UntypedParameterError{Type: key, Parameter: i}
		}

		dep, err := c.get(field.Type, key, i, chain)
		if err != nil {
			if tag == "optional" {
				continue
			}
			return nil, err
		}
		value.Elem().Field(i).Set(reflect.ValueOf(dep))
	}

	return value.Interface(), nil
}

// injectable reports whether a key can be built without an explicit binding:
// a pointer to struct with at least one inject-tagged field, or with none at
// all (a plain leaf component).
func injectable(key reflect.Type) bool {
	return key.Kind() == reflect.Pointer && key.Elem().Kind() == reflect.Struct
}

func extendChain(chain []reflect.Type, key reflect.Type) []reflect.Type {
	// Fresh backing array: sibling parameters must not observe each other's
	// chain entries.
	next := make([]reflect.Type, len(chain), len(chain)+1)
	copy(next, chain)
	return append(next, key)
}

func chainContains(chain []reflect.Type, key reflect.Type) bool {
	return slices.Contains(chain, key)
}
