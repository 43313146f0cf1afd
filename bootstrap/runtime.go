package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/awslabs/open-hostfactory-plugin-sub000/cqrs"
	"github.com/awslabs/open-hostfactory-plugin-sub000/di"
	"github.com/awslabs/open-hostfactory-plugin-sub000/domain"
	"github.com/awslabs/open-hostfactory-plugin-sub000/provider"
	"github.com/awslabs/open-hostfactory-plugin-sub000/provider/direct"
	"github.com/awslabs/open-hostfactory-plugin-sub000/registry"
	"github.com/awslabs/open-hostfactory-plugin-sub000/template"
)

// Scheduler formatter names selectable at start-up.
const (
	SchedulerHostFactory = "hostfactory"
	SchedulerPlain       = "plain"
)

// Options configures a Runtime.
type Options struct {
	Logger        *slog.Logger
	TemplatesPath string
	// Scheduler selects the output formatter. Empty means hostfactory.
	Scheduler string
	// Modules are the handler packages to discover. Tests may pass a subset.
	Modules []Module
}

// Runtime is the fully wired plugin: container, registries, and buses. The
// CLI builds one Runtime per invocation.
type Runtime struct {
	Container  *di.Container
	Registry   *cqrs.HandlerRegistry
	Commands   *cqrs.CommandBus
	Queries    *cqrs.QueryBus
	Formatter  registry.RequestFormatter
	Discovered DiscoveryStats
}

// New wires the object graph: shared repositories and registries as fixed
// instances, handlers as singletons via discovery, buses as singletons on
// top. Everything resolvable through the container is also reachable from
// the returned Runtime.
func New(opts Options) (*Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	container := di.New(logger)
	container.RegisterInstance(di.For[*slog.Logger](), logger)

	container.RegisterInstance(di.For[*domain.RequestRepository](), domain.NewRequestRepository())
	container.RegisterInstance(di.For[*domain.MachineRepository](), domain.NewMachineRepository())

	providers := registry.NewProviderRegistry()
	if err := providers.Register(direct.Name, func() (provider.Strategy, error) {
		return direct.New(logger), nil
	}); err != nil {
		return nil, fmt.Errorf("register providers: %w", err)
	}
	container.RegisterInstance(di.For[*registry.ProviderRegistry](), providers)

	schedulers := registry.NewSchedulerRegistry()
	if err := schedulers.Register(SchedulerHostFactory, registry.HostFactoryFormatter{}); err != nil {
		return nil, fmt.Errorf("register schedulers: %w", err)
	}
	if err := schedulers.Register(SchedulerPlain, registry.PlainFormatter{}); err != nil {
		return nil, fmt.Errorf("register schedulers: %w", err)
	}
	container.RegisterInstance(di.For[*registry.SchedulerRegistry](), schedulers)

	scheduler := opts.Scheduler
	if scheduler == "" {
		scheduler = SchedulerHostFactory
	}
	formatter, err := schedulers.Get(scheduler)
	if err != nil {
		return nil, fmt.Errorf("select scheduler: %w", err)
	}
	container.RegisterInstance(di.For[registry.RequestFormatter](), formatter)

	if opts.TemplatesPath != "" {
		container.RegisterInstance(di.For[*template.Store](), template.NewStore(opts.TemplatesPath, logger))
	}

	handlers := cqrs.NewHandlerRegistry()
	container.RegisterInstance(di.For[*cqrs.HandlerRegistry](), handlers)

	discovered, err := Discover(container, handlers, logger, opts.Modules...)
	if err != nil {
		return nil, fmt.Errorf("handler discovery: %w", err)
	}

	if err := container.RegisterSingleton(di.For[*cqrs.CommandBus](), cqrs.NewCommandBus); err != nil {
		return nil, fmt.Errorf("register command bus: %w", err)
	}
	if err := container.RegisterSingleton(di.For[*cqrs.QueryBus](), cqrs.NewQueryBus); err != nil {
		return nil, fmt.Errorf("register query bus: %w", err)
	}

	commands, err := di.Resolve[*cqrs.CommandBus](container)
	if err != nil {
		return nil, err
	}
	queries, err := di.Resolve[*cqrs.QueryBus](container)
	if err != nil {
		return nil, err
	}

	return &Runtime{
		Container:  container,
		Registry:   handlers,
		Commands:   commands,
		Queries:    queries,
		Formatter:  formatter,
		Discovered: discovered,
	}, nil
}
