// Package di implements the dependency-resolution container the plugin is
// built on. Components register under their reflect.Type with one of three
// lifetimes (instance, singleton, transient) and are resolved on demand by
// walking constructor parameter lists, with explicit-chain cycle detection.
package di

import (
	"log/slog"
	"reflect"
	"sync"
)

// Factory builds an instance on demand, receiving the container to resolve
// its own dependencies. Factory results are never cached unless the factory
// was registered as a singleton producer.
type Factory func(*Container) (any, error)

type scope int

const (
	scopeInstance scope = iota
	scopeSingleton
	scopeTransient
)

// binding records how to produce an instance for a key. Exactly one of
// instance, factory or ctor is set; a singleton binding with none of them
// means the key itself is introspectable.
type binding struct {
	scope    scope
	instance any
	factory  Factory
	ctor     *constructorInfo
}

// Container combines the dependency registry and the resolver. It is safe for
// concurrent use: registration happens under a write lock, and singleton
// construction is serialized per key so an instance is built at most once.
type Container struct {
	mu         sync.RWMutex
	bindings   map[reflect.Type]*binding
	singletons map[reflect.Type]any
	building   map[reflect.Type]*sync.Mutex

	logger *slog.Logger
}

// New creates an empty container. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Container {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		bindings:   make(map[reflect.Type]*binding),
		singletons: make(map[reflect.Type]any),
		building:   make(map[reflect.Type]*sync.Mutex),
		logger:     logger.With("component", "container"),
	}
	// The container can resolve itself, so factories and components may
	// declare it as a dependency.
	c.RegisterInstance(For[*Container](), c)
	return c
}

// RegisterInstance binds key to a fixed value; every resolution returns that
// exact value. Re-registration replaces any previous binding for the key.
func (c *Container) RegisterInstance(key reflect.Type, value any) {
	c.register(key, &binding{scope: scopeInstance, instance: value})
}

// RegisterFactory binds key to a function invoked on every resolution; its
// results are never cached.
func (c *Container) RegisterFactory(key reflect.Type, factory Factory) {
	c.register(key, &binding{scope: scopeTransient, factory: factory})
}

// RegisterSingleton binds key to a producer built once on first resolution and
// reused thereafter. The producer may be a Factory, a constructor function
// whose parameters are resolved from the container, or nil when the key is
// itself a self-describing component.
func (c *Container) RegisterSingleton(key reflect.Type, producer any) error {
	b := &binding{scope: scopeSingleton}
	switch p := producer.(type) {
	case nil:
		if !injectable(key) {
			return &InvalidBindingError{Type: key, Reason: "key is not introspectable and no producer was given"}
		}
	case Factory:
		b.factory = p
	case func(*Container) (any, error):
		b.factory = p
	default:
		info, err := parseConstructor(key, producer)
		if err != nil {
			return err
		}
		b.ctor = info
	}
	c.register(key, b)
	return nil
}

// RegisterConstructor binds key to a constructor invoked on every resolution,
// with its parameters resolved from the container each time.
func (c *Container) RegisterConstructor(key reflect.Type, ctor any) error {
	info, err := parseConstructor(key, ctor)
	if err != nil {
		return err
	}
	c.register(key, &binding{scope: scopeTransient, ctor: info})
	return nil
}

func (c *Container) register(key reflect.Type, b *binding) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, replaced := c.bindings[key]; replaced {
		c.logger.Debug("replacing binding", "type", key.String())
	}
	c.bindings[key] = b
	// A stale singleton must not outlive the binding that produced it.
	delete(c.singletons, key)
}

// IsRegistered reports whether key has an active binding.
func (c *Container) IsRegistered(key reflect.Type) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.bindings[key]
	return ok
}

// Get resolves an instance for key, constructing its full dependency graph on
// demand. Precedence: fixed instance, cached singleton, singleton awaiting
// construction, factory, transient constructor, introspectable key.
func (c *Container) Get(key reflect.Type) (any, error) {
	return c.get(key, nil, 0, nil)
}

// GetOptional resolves key like Get but reports failure as (nil, false)
// instead of an error.
func (c *Container) GetOptional(key reflect.Type) (any, bool) {
	value, err := c.Get(key)
	if err != nil {
		return nil, false
	}
	return value, true
}

// Reset drops every binding and cached singleton. Intended for test isolation;
// the container re-registers itself so it stays resolvable.
func (c *Container) Reset() {
	c.mu.Lock()
	c.bindings = make(map[reflect.Type]*binding)
	c.singletons = make(map[reflect.Type]any)
	c.building = make(map[reflect.Type]*sync.Mutex)
	c.mu.Unlock()
	c.RegisterInstance(For[*Container](), c)
}

// get is the resolver core. parent and param identify the constructor edge
// being resolved (for error context); chain is the ordered set of types under
// construction on this call, used for cycle detection.
func (c *Container) get(key reflect.Type, parent reflect.Type, param int, chain []reflect.Type) (any, error) {
	if chainContains(chain, key) {
		return nil, &CircularDependencyError{Chain: extendChain(chain, key)}
	}
	chain = extendChain(chain, key)

	c.mu.RLock()
	b, bound := c.bindings[key]
	if bound && b.scope == scopeInstance {
		c.mu.RUnlock()
		return b.instance, nil
	}
	if bound && b.scope == scopeSingleton {
		if cached, ok := c.singletons[key]; ok {
			c.mu.RUnlock()
			return cached, nil
		}
	}
	c.mu.RUnlock()

	if bound {
		switch b.scope {
		case scopeSingleton:
			return c.buildSingleton(key, b, chain)
		case scopeTransient:
			if b.factory != nil {
				value, err := b.factory(c)
				if err != nil {
					return nil, &FactoryError{Type: key, Cause: err}
				}
				return value, nil
			}
			return c.build(key, b.ctor, chain)
		}
	}

	// No binding: a pointer-to-struct key is self-describing and can be built
	// by introspection.
	if injectable(key) {
		c.logger.Debug("building unregistered injectable", "type", key.String())
		return c.buildStruct(key, chain)
	}

	return nil, &UnregisteredDependencyError{Type: key, Parent: parent, Parameter: param}
}

// buildSingleton constructs a singleton under a per-key lock so concurrent
// first resolutions produce exactly one instance.
func (c *Container) buildSingleton(key reflect.Type, b *binding, chain []reflect.Type) (any, error) {
	c.mu.Lock()
	lock, ok := c.building[key]
	if !ok {
		lock = &sync.Mutex{}
		c.building[key] = lock
	}
	c.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()

	// Another caller may have finished the build while we waited.
	c.mu.RLock()
	cached, done := c.singletons[key]
	c.mu.RUnlock()
	if done {
		return cached, nil
	}

	var value any
	var err error
	switch {
	case b.factory != nil:
		value, err = b.factory(c)
		if err != nil {
			return nil, &FactoryError{Type: key, Cause: err}
		}
	case b.ctor != nil:
		value, err = c.build(key, b.ctor, chain)
	default:
		value, err = c.buildStruct(key, chain)
	}
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.singletons[key] = value
	c.mu.Unlock()
	c.logger.Debug("singleton constructed", "type", key.String())
	return value, nil
}

// For returns the registry key for T.
func For[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Resolve is the typed counterpart of Container.Get.
func Resolve[T any](c *Container) (T, error) {
	value, err := c.Get(For[T]())
	if err != nil {
		var zero T
		return zero, err
	}
	return value.(T), nil
}

// MustResolve resolves T or panics. Reserved for wiring code where a missing
// binding is a programming error.
func MustResolve[T any](c *Container) T {
	value, err := Resolve[T](c)
	if err != nil {
		panic(err)
	}
	return value
}

// ResolveOptional is the typed counterpart of Container.GetOptional.
func ResolveOptional[T any](c *Container) (T, bool) {
	value, ok := c.GetOptional(For[T]())
	if !ok {
		var zero T
		return zero, false
	}
	return value.(T), true
}
