package registry

import (
	"sync"

	"github.com/awslabs/open-hostfactory-plugin-sub000/provider"
)

// StrategyFactory builds a provider strategy on first use.
type StrategyFactory func() (provider.Strategy, error)

// ProviderRegistry maps provider type names to strategy factories. Strategies
// are constructed lazily and cached, one instance per name.
type ProviderRegistry struct {
	factories *Registry[StrategyFactory]

	mu        sync.Mutex
	instances map[string]provider.Strategy
}

func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		factories: New[StrategyFactory]("provider"),
		instances: make(map[string]provider.Strategy),
	}
}

// Register binds a provider type name to its factory. A duplicate name fails.
func (r *ProviderRegistry) Register(name string, factory StrategyFactory) error {
	return r.factories.Register(name, factory)
}

// Strategy returns the strategy for a provider type name, constructing it on
// first use.
func (r *ProviderRegistry) Strategy(name string) (provider.Strategy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if strategy, ok := r.instances[name]; ok {
		return strategy, nil
	}

	factory, err := r.factories.Get(name)
	if err != nil {
		return nil, err
	}
	strategy, err := factory()
	if err != nil {
		return nil, err
	}
	r.instances[name] = strategy
	return strategy, nil
}

// Names lists registered provider types, sorted.
func (r *ProviderRegistry) Names() []string {
	return r.factories.Names()
}
