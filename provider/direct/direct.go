// Package direct is the in-process reference strategy: machines are plain
// records, launched and terminated without leaving the process. It gives the
// runtime a complete provider to route against when no cloud backend is
// configured, and stands in for one in tests.
package direct

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/awslabs/open-hostfactory-plugin-sub000/domain"
	"github.com/awslabs/open-hostfactory-plugin-sub000/namegen"
	"github.com/awslabs/open-hostfactory-plugin-sub000/provider"
	"github.com/awslabs/open-hostfactory-plugin-sub000/provider/internal"
)

const Name = "direct"

type Strategy struct {
	logger *slog.Logger

	mu     sync.Mutex
	active map[domain.MachineID]domain.Machine
}

func New(logger *slog.Logger) *Strategy {
	return &Strategy{
		logger: logger.With("component", "provider", "provider", Name),
		active: make(map[domain.MachineID]domain.Machine),
	}
}

func (s *Strategy) Name() string { return Name }

// AcquireMachines launches count machines for the template, enforcing its
// in-flight limit across all requests.
func (s *Strategy) AcquireMachines(ctx context.Context, template domain.Template, count int) ([]domain.Machine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inFlight := 0
	for _, machine := range s.active {
		if machine.TemplateID == template.ID {
			inFlight++
		}
	}
	if available := template.MaxNumber - inFlight; count > available {
		return nil, &provider.CapacityError{Template: template.ID, Requested: count, Available: available}
	}

	machines := make([]domain.Machine, 0, count)
	for i := 0; i < count; i++ {
		// Generated names are random dictionary pairs; retry the rare
		// collision with the active fleet.
		id, err := internal.RetryResult(ctx, 5, func() (domain.MachineID, error) {
			candidate := domain.MachineID(namegen.Machine())
			if _, taken := s.active[candidate]; taken {
				return "", fmt.Errorf("machine name %q already in use", candidate)
			}
			return candidate, nil
		})
		if err != nil {
			return nil, fmt.Errorf("allocate machine name: %w", err)
		}

		machine := domain.Machine{
			ID:         id,
			Name:       id.String(),
			TemplateID: template.ID,
			Provider:   Name,
			Status:     domain.MachineStatusRunning,
			LaunchedAt: time.Now(),
		}
		s.active[id] = machine
		machines = append(machines, machine)
		s.logger.Debug("machine launched", "machine", id, "template", template.ID)
	}

	return machines, nil
}

// ReleaseMachines terminates machines by ID. Unknown IDs are ignored so a
// release retried after partial failure stays safe.
func (s *Strategy) ReleaseMachines(_ context.Context, ids []domain.MachineID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if _, ok := s.active[id]; !ok {
			s.logger.Warn("release of unknown machine ignored", "machine", id)
			continue
		}
		delete(s.active, id)
		s.logger.Debug("machine terminated", "machine", id)
	}
	return nil
}

// ActiveCount reports the number of in-flight machines, for diagnostics.
func (s *Strategy) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}
