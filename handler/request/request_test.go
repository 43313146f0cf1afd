package request_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awslabs/open-hostfactory-plugin-sub000/bootstrap"
	"github.com/awslabs/open-hostfactory-plugin-sub000/cqrs"
	"github.com/awslabs/open-hostfactory-plugin-sub000/di"
	"github.com/awslabs/open-hostfactory-plugin-sub000/domain"
	"github.com/awslabs/open-hostfactory-plugin-sub000/handler/request"
)

const testTemplates = `
templates:
  - id: small
    provider: direct
    image: ubuntu-24.04
    flavor: t2.micro
    max-number: 4
`

func newRuntime(t *testing.T) *bootstrap.Runtime {
	t.Helper()
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testTemplates), 0o644))

	runtime, err := bootstrap.New(bootstrap.Options{
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		TemplatesPath: path,
		Modules:       []bootstrap.Module{request.Module()},
	})
	require.NoError(t, err)
	return runtime
}

func submit(t *testing.T, runtime *bootstrap.Runtime, count int) domain.RequestID {
	t.Helper()
	result, err := runtime.Commands.Execute(context.Background(), request.SubmitRequestCommand{
		TemplateID: "small",
		Count:      count,
	})
	require.NoError(t, err)
	return result.(domain.RequestID)
}

func TestSubmitRequest(t *testing.T) {
	runtime := newRuntime(t)
	id := submit(t, runtime, 3)

	result, err := runtime.Queries.Execute(context.Background(), request.GetRequestQuery{RequestID: id})
	require.NoError(t, err)
	details := result.(request.RequestDetails)

	assert.Equal(t, domain.RequestTypeAcquire, details.Request.Type)
	assert.Equal(t, domain.RequestStatusComplete, details.Request.Status)
	assert.Equal(t, 3, details.Request.Requested)
	assert.Len(t, details.Machines, 3)
	for _, machine := range details.Machines {
		assert.Equal(t, id, machine.RequestID)
		assert.Equal(t, "small", machine.TemplateID)
	}
}

func TestSubmitRequestValidation(t *testing.T) {
	runtime := newRuntime(t)

	_, err := runtime.Commands.Execute(context.Background(), request.SubmitRequestCommand{TemplateID: "small"})
	var validation *cqrs.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestSubmitRequestUnknownTemplate(t *testing.T) {
	runtime := newRuntime(t)

	_, err := runtime.Commands.Execute(context.Background(), request.SubmitRequestCommand{
		TemplateID: "huge",
		Count:      1,
	})
	assert.ErrorContains(t, err, `template "huge" not found`)
}

func TestSubmitRequestOverCapacity(t *testing.T) {
	runtime := newRuntime(t)

	_, err := runtime.Commands.Execute(context.Background(), request.SubmitRequestCommand{
		TemplateID: "small",
		Count:      9,
	})
	require.Error(t, err)

	// The failed attempt is recorded as a terminal request.
	requests := di.MustResolve[*domain.RequestRepository](runtime.Container)
	all := requests.All()
	require.Len(t, all, 1)
	assert.Equal(t, domain.RequestStatusFailed, all[0].Status)
	assert.Empty(t, requests.Active())
}

func TestCancelRequest(t *testing.T) {
	runtime := newRuntime(t)
	requests := di.MustResolve[*domain.RequestRepository](runtime.Container)
	requests.Save(domain.Request{
		ID:        "req-pending",
		Type:      domain.RequestTypeAcquire,
		Provider:  "direct",
		Status:    domain.RequestStatusRunning,
		CreatedAt: time.Now(),
	})

	_, err := runtime.Commands.Execute(context.Background(), request.CancelRequestCommand{RequestID: "req-pending"})
	require.NoError(t, err)

	stored, err := requests.Find("req-pending")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusCanceled, stored.Status)
}

func TestCancelTerminalRequestFails(t *testing.T) {
	runtime := newRuntime(t)
	id := submit(t, runtime, 1)

	_, err := runtime.Commands.Execute(context.Background(), request.CancelRequestCommand{RequestID: id})
	assert.ErrorContains(t, err, "already complete")
}

func TestCompleteRequest(t *testing.T) {
	runtime := newRuntime(t)
	requests := di.MustResolve[*domain.RequestRepository](runtime.Container)
	requests.Save(domain.Request{ID: "req-open", Status: domain.RequestStatusRunning})

	_, err := runtime.Commands.Execute(context.Background(), request.CompleteRequestCommand{
		RequestID: "req-open",
		Message:   "2 of 3 machines failed",
	})
	require.NoError(t, err)

	stored, err := requests.Find("req-open")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusCompleteWithError, stored.Status)
	assert.Equal(t, "2 of 3 machines failed", stored.Message)
}

func TestReturnMachines(t *testing.T) {
	runtime := newRuntime(t)
	id := submit(t, runtime, 2)

	result, err := runtime.Queries.Execute(context.Background(), request.GetRequestQuery{RequestID: id})
	require.NoError(t, err)
	details := result.(request.RequestDetails)

	ids := make([]domain.MachineID, 0, len(details.Machines))
	for _, machine := range details.Machines {
		ids = append(ids, machine.ID)
	}

	returned, err := runtime.Commands.Execute(context.Background(), request.ReturnMachinesCommand{MachineIDs: ids})
	require.NoError(t, err)

	result, err = runtime.Queries.Execute(context.Background(), request.GetRequestQuery{
		RequestID: returned.(domain.RequestID),
	})
	require.NoError(t, err)
	returnDetails := result.(request.RequestDetails)
	assert.Equal(t, domain.RequestTypeReturn, returnDetails.Request.Type)
	assert.Equal(t, domain.RequestStatusComplete, returnDetails.Request.Status)

	machines := di.MustResolve[*domain.MachineRepository](runtime.Container)
	for _, machineID := range ids {
		machine, err := machines.Find(machineID)
		require.NoError(t, err)
		assert.Equal(t, domain.MachineStatusTerminated, machine.Status)
	}
}

func TestReturnUnknownMachine(t *testing.T) {
	runtime := newRuntime(t)

	_, err := runtime.Commands.Execute(context.Background(), request.ReturnMachinesCommand{
		MachineIDs: []domain.MachineID{"host-ghost"},
	})
	assert.ErrorContains(t, err, `machine "host-ghost" not found`)
}

func TestGetRequestStatusUsesFormatter(t *testing.T) {
	runtime := newRuntime(t)
	id := submit(t, runtime, 1)

	result, err := runtime.Queries.Execute(context.Background(), request.GetRequestStatusQuery{RequestID: id})
	require.NoError(t, err)
	rendered := result.(string)
	assert.Contains(t, rendered, `"requestId"`)
	assert.Contains(t, rendered, id.String())
}

func TestListActiveRequestsOrdering(t *testing.T) {
	runtime := newRuntime(t)
	requests := di.MustResolve[*domain.RequestRepository](runtime.Container)
	base := time.Now()
	requests.Save(domain.Request{ID: "req-b", Status: domain.RequestStatusRunning, CreatedAt: base.Add(time.Second)})
	requests.Save(domain.Request{ID: "req-a", Status: domain.RequestStatusRunning, CreatedAt: base})
	requests.Save(domain.Request{ID: "req-done", Status: domain.RequestStatusComplete, CreatedAt: base})

	result, err := runtime.Queries.Execute(context.Background(), request.ListActiveRequestsQuery{})
	require.NoError(t, err)
	active := result.([]domain.Request)
	require.Len(t, active, 2)
	assert.Equal(t, domain.RequestID("req-a"), active[0].ID)
	assert.Equal(t, domain.RequestID("req-b"), active[1].ID)
}
