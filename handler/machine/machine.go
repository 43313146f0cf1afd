// Package machine implements the machine-side handlers: status updates pushed
// by providers and machine listings.
package machine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/samber/lo"

	"github.com/awslabs/open-hostfactory-plugin-sub000/bootstrap"
	"github.com/awslabs/open-hostfactory-plugin-sub000/cqrs"
	"github.com/awslabs/open-hostfactory-plugin-sub000/domain"
)

// UpdateMachineStatusCommand records a status transition for one machine.
type UpdateMachineStatusCommand struct {
	MachineID domain.MachineID
	Status    domain.MachineStatus
}

func (UpdateMachineStatusCommand) CommandName() string { return "UpdateMachineStatus" }

var validStatuses = []domain.MachineStatus{
	domain.MachineStatusLaunching,
	domain.MachineStatusRunning,
	domain.MachineStatusTerminated,
	domain.MachineStatusFailed,
}

func (c UpdateMachineStatusCommand) Validate() error {
	if c.MachineID == "" {
		return fmt.Errorf("machine id is required")
	}
	if !lo.Contains(validStatuses, c.Status) {
		return fmt.Errorf("unknown machine status %q", c.Status)
	}
	return nil
}

type UpdateMachineStatusHandler struct {
	machines *domain.MachineRepository
	logger   *slog.Logger
}

func NewUpdateMachineStatusHandler(machines *domain.MachineRepository, logger *slog.Logger) *UpdateMachineStatusHandler {
	return &UpdateMachineStatusHandler{
		machines: machines,
		logger:   logger.With("component", "update-machine-status"),
	}
}

func (h *UpdateMachineStatusHandler) HandleCommand(_ context.Context, cmd cqrs.Command) (any, error) {
	command := cmd.(UpdateMachineStatusCommand)

	machine, err := h.machines.Find(command.MachineID)
	if err != nil {
		return nil, err
	}
	previous := machine.Status
	machine.Status = command.Status
	h.machines.Save(machine)

	h.logger.Info("machine status updated",
		"machine", machine.ID, "from", previous, "to", machine.Status)
	return machine.ID, nil
}

// ListMachinesQuery lists machines, optionally scoped to one request.
type ListMachinesQuery struct {
	RequestID domain.RequestID
}

func (ListMachinesQuery) QueryName() string { return "ListMachines" }

type ListMachinesHandler struct {
	machines *domain.MachineRepository
}

func NewListMachinesHandler(machines *domain.MachineRepository) *ListMachinesHandler {
	return &ListMachinesHandler{machines: machines}
}

func (h *ListMachinesHandler) HandleQuery(_ context.Context, q cqrs.Query) (any, error) {
	query := q.(ListMachinesQuery)

	var machines []domain.Machine
	if query.RequestID != "" {
		machines = h.machines.ByRequest(query.RequestID)
	} else {
		machines = h.machines.All()
	}
	sort.Slice(machines, func(i, j int) bool { return machines[i].ID < machines[j].ID })
	return machines, nil
}

// Module exports this package's handler bindings for bootstrap discovery.
func Module() bootstrap.Module {
	return bootstrap.Module{
		Name: "machine",
		Register: func(r *cqrs.HandlerRegistry) error {
			if err := cqrs.RegisterCommand[UpdateMachineStatusCommand, *UpdateMachineStatusHandler](r, NewUpdateMachineStatusHandler); err != nil {
				return err
			}
			return cqrs.RegisterQuery[ListMachinesQuery, *ListMachinesHandler](r, NewListMachinesHandler)
		},
	}
}
