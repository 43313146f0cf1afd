// Package provider defines the strategy abstraction through which the plugin
// acquires and releases compute capacity. Cloud-backed strategies plug in
// behind this interface; the core never inspects their behavior.
package provider

import (
	"context"
	"fmt"

	"github.com/awslabs/open-hostfactory-plugin-sub000/domain"
)

// Strategy is one capacity backend. Implementations own all side effects
// beyond the object graph, including any blocking I/O and its timeout policy.
type Strategy interface {
	Name() string
	// AcquireMachines launches count machines described by the template.
	AcquireMachines(ctx context.Context, template domain.Template, count int) ([]domain.Machine, error)
	// ReleaseMachines terminates previously acquired machines.
	ReleaseMachines(ctx context.Context, ids []domain.MachineID) error
}

// CapacityError reports a request exceeding a template's in-flight limit.
type CapacityError struct {
	Template  string
	Requested int
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("template %q: requested %d machines, %d available", e.Template, e.Requested, e.Available)
}
