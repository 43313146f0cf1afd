// Package registry holds the domain-specific registries surrounding the core:
// providers and scheduler output formats. Unlike the handler registry's
// message-type keys, these are keyed by configuration names, but they share
// the same strict policy: duplicate registrations fail, lookups of unknown
// names fail.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
)

// DuplicateEntryError is returned when a name is registered twice.
type DuplicateEntryError struct {
	Kind string
	Name string
}

func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("%s %q is already registered", e.Kind, e.Name)
}

// NotRegisteredError is returned when a name has no registration.
type NotRegisteredError struct {
	Kind string
	Name string
}

func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("%s %q is not registered", e.Kind, e.Name)
}

// Registry is a strict name-keyed table.
type Registry[T any] struct {
	kind    string
	mu      sync.RWMutex
	entries map[string]T
}

func New[T any](kind string) *Registry[T] {
	return &Registry[T]{kind: kind, entries: make(map[string]T)}
}

func (r *Registry[T]) Register(name string, value T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return &DuplicateEntryError{Kind: r.kind, Name: name}
	}
	r.entries[name] = value
	return nil
}

func (r *Registry[T]) Get(name string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.entries[name]
	if !ok {
		var zero T
		return zero, &NotRegisteredError{Kind: r.kind, Name: name}
	}
	return value, nil
}

func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := lo.Keys(r.entries)
	sort.Strings(names)
	return names
}
