package machine_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awslabs/open-hostfactory-plugin-sub000/bootstrap"
	"github.com/awslabs/open-hostfactory-plugin-sub000/cqrs"
	"github.com/awslabs/open-hostfactory-plugin-sub000/di"
	"github.com/awslabs/open-hostfactory-plugin-sub000/domain"
	"github.com/awslabs/open-hostfactory-plugin-sub000/handler/machine"
)

func newRuntime(t *testing.T) *bootstrap.Runtime {
	t.Helper()
	runtime, err := bootstrap.New(bootstrap.Options{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Modules: []bootstrap.Module{machine.Module()},
	})
	require.NoError(t, err)
	return runtime
}

func seedMachines(t *testing.T, runtime *bootstrap.Runtime) *domain.MachineRepository {
	t.Helper()
	machines := di.MustResolve[*domain.MachineRepository](runtime.Container)
	machines.Save(domain.Machine{ID: "host-a", RequestID: "req-1", Status: domain.MachineStatusLaunching})
	machines.Save(domain.Machine{ID: "host-b", RequestID: "req-1", Status: domain.MachineStatusRunning})
	machines.Save(domain.Machine{ID: "host-c", RequestID: "req-2", Status: domain.MachineStatusRunning})
	return machines
}

func TestUpdateMachineStatus(t *testing.T) {
	runtime := newRuntime(t)
	machines := seedMachines(t, runtime)

	_, err := runtime.Commands.Execute(context.Background(), machine.UpdateMachineStatusCommand{
		MachineID: "host-a",
		Status:    domain.MachineStatusRunning,
	})
	require.NoError(t, err)

	stored, err := machines.Find("host-a")
	require.NoError(t, err)
	assert.Equal(t, domain.MachineStatusRunning, stored.Status)
}

func TestUpdateMachineStatusRejectsUnknownStatus(t *testing.T) {
	runtime := newRuntime(t)
	seedMachines(t, runtime)

	_, err := runtime.Commands.Execute(context.Background(), machine.UpdateMachineStatusCommand{
		MachineID: "host-a",
		Status:    "hibernating",
	})
	var validation *cqrs.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.ErrorContains(t, err, `unknown machine status "hibernating"`)
}

func TestUpdateUnknownMachine(t *testing.T) {
	runtime := newRuntime(t)

	_, err := runtime.Commands.Execute(context.Background(), machine.UpdateMachineStatusCommand{
		MachineID: "host-ghost",
		Status:    domain.MachineStatusRunning,
	})
	assert.ErrorContains(t, err, `machine "host-ghost" not found`)
}

func TestListMachines(t *testing.T) {
	runtime := newRuntime(t)
	seedMachines(t, runtime)

	result, err := runtime.Queries.Execute(context.Background(), machine.ListMachinesQuery{})
	require.NoError(t, err)
	all := result.([]domain.Machine)
	require.Len(t, all, 3)
	assert.Equal(t, domain.MachineID("host-a"), all[0].ID)
	assert.Equal(t, domain.MachineID("host-c"), all[2].ID)
}

func TestListMachinesByRequest(t *testing.T) {
	runtime := newRuntime(t)
	seedMachines(t, runtime)

	result, err := runtime.Queries.Execute(context.Background(), machine.ListMachinesQuery{RequestID: "req-1"})
	require.NoError(t, err)
	scoped := result.([]domain.Machine)
	require.Len(t, scoped, 2)
	for _, m := range scoped {
		assert.Equal(t, domain.RequestID("req-1"), m.RequestID)
	}
}
