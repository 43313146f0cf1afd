package domain

import (
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
)

type MachineID string

func (id MachineID) String() string { return string(id) }

type MachineStatus string

const (
	MachineStatusLaunching  MachineStatus = "launching"
	MachineStatusRunning    MachineStatus = "running"
	MachineStatusTerminated MachineStatus = "terminated"
	MachineStatusFailed     MachineStatus = "failed"
)

// Machine is one unit of compute capacity acquired through a provider.
type Machine struct {
	ID         MachineID
	Name       string
	RequestID  RequestID
	TemplateID string
	Provider   string
	Status     MachineStatus
	LaunchedAt time.Time
}

// MachineRepository is an in-memory store of machines.
type MachineRepository struct {
	mu       sync.RWMutex
	machines map[MachineID]Machine
}

func NewMachineRepository() *MachineRepository {
	return &MachineRepository{machines: make(map[MachineID]Machine)}
}

func (r *MachineRepository) Save(machine Machine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.machines[machine.ID] = machine
}

func (r *MachineRepository) Find(id MachineID) (Machine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	machine, ok := r.machines[id]
	if !ok {
		return Machine{}, fmt.Errorf("machine %q not found", id)
	}
	return machine, nil
}

// ByRequest returns every machine launched for a request.
func (r *MachineRepository) ByRequest(id RequestID) []Machine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Filter(lo.Values(r.machines), func(machine Machine, _ int) bool {
		return machine.RequestID == id
	})
}

func (r *MachineRepository) All() []Machine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Values(r.machines)
}
