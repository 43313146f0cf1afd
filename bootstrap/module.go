// Package bootstrap assembles the plugin's object graph. Handler packages
// export a Module describing their bindings; discovery walks the modules,
// fills the handler registry, and registers every handler with the container.
package bootstrap

import (
	"log/slog"

	"github.com/awslabs/open-hostfactory-plugin-sub000/cqrs"
	"github.com/awslabs/open-hostfactory-plugin-sub000/di"
)

// Module is one handler package's contribution to the registry. Register is
// called exactly once, during discovery.
type Module struct {
	Name     string
	Register func(*cqrs.HandlerRegistry) error
}

// DiscoveryStats summarizes a discovery run.
type DiscoveryStats struct {
	Modules         int
	Failed          int
	CommandHandlers int
	QueryHandlers   int
}

// Discover runs every module's Register against the registry, then registers
// each bound handler type with the container as a singleton built by the
// binding's constructor. A module that fails to register is logged and
// skipped; its bindings that landed before the failure remain.
func Discover(container *di.Container, registry *cqrs.HandlerRegistry, logger *slog.Logger, modules ...Module) (DiscoveryStats, error) {
	logger = logger.With("component", "discovery")

	stats := DiscoveryStats{Modules: len(modules)}
	for _, module := range modules {
		if err := module.Register(registry); err != nil {
			logger.Error("module registration failed", "module", module.Name, "error", err)
			stats.Failed++
			continue
		}
		logger.Debug("module registered", "module", module.Name)
	}

	for _, binding := range registry.Bindings() {
		if err := container.RegisterSingleton(binding.HandlerType, binding.Constructor); err != nil {
			return stats, err
		}
	}

	counts := registry.Stats()
	stats.CommandHandlers = counts.CommandHandlers
	stats.QueryHandlers = counts.QueryHandlers
	logger.Info("handler discovery complete",
		"modules", stats.Modules,
		"failed", stats.Failed,
		"commands", stats.CommandHandlers,
		"queries", stats.QueryHandlers)
	return stats, nil
}
