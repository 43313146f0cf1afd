// Package request implements the command and query handlers for capacity
// requests: submitting, canceling, completing, and returning machines, plus
// the request-side queries.
package request

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"github.com/awslabs/open-hostfactory-plugin-sub000/cqrs"
	"github.com/awslabs/open-hostfactory-plugin-sub000/domain"
	"github.com/awslabs/open-hostfactory-plugin-sub000/namegen"
	"github.com/awslabs/open-hostfactory-plugin-sub000/registry"
	"github.com/awslabs/open-hostfactory-plugin-sub000/template"
)

// SubmitRequestCommand asks a provider for Count machines of a template.
type SubmitRequestCommand struct {
	TemplateID string
	Count      int
}

func (SubmitRequestCommand) CommandName() string { return "SubmitRequest" }

func (c SubmitRequestCommand) Validate() error {
	if c.TemplateID == "" {
		return fmt.Errorf("template id is required")
	}
	if c.Count <= 0 {
		return fmt.Errorf("count must be positive, got %d", c.Count)
	}
	return nil
}

// SubmitRequestHandler launches machines through the template's provider and
// records the resulting request. It returns the new domain.RequestID.
type SubmitRequestHandler struct {
	templates *template.Store
	providers *registry.ProviderRegistry
	requests  *domain.RequestRepository
	machines  *domain.MachineRepository
	logger    *slog.Logger
}

func NewSubmitRequestHandler(
	templates *template.Store,
	providers *registry.ProviderRegistry,
	requests *domain.RequestRepository,
	machines *domain.MachineRepository,
	logger *slog.Logger,
) *SubmitRequestHandler {
	return &SubmitRequestHandler{
		templates: templates,
		providers: providers,
		requests:  requests,
		machines:  machines,
		logger:    logger.With("component", "submit-request"),
	}
}

func (h *SubmitRequestHandler) HandleCommand(ctx context.Context, cmd cqrs.Command) (any, error) {
	command := cmd.(SubmitRequestCommand)

	tpl, err := h.templates.Get(command.TemplateID)
	if err != nil {
		return nil, err
	}
	strategy, err := h.providers.Strategy(tpl.Provider)
	if err != nil {
		return nil, err
	}

	request := domain.Request{
		ID:         domain.RequestID(namegen.Request().String()),
		Type:       domain.RequestTypeAcquire,
		TemplateID: tpl.ID,
		Provider:   tpl.Provider,
		Requested:  command.Count,
		Status:     domain.RequestStatusRunning,
		CreatedAt:  time.Now(),
	}

	launched, err := strategy.AcquireMachines(ctx, tpl, command.Count)
	if err != nil {
		request.Status = domain.RequestStatusFailed
		request.Message = err.Error()
		h.requests.Save(request)
		h.logger.Error("acquisition failed", "request", request.ID, "template", tpl.ID, "error", err)
		return nil, fmt.Errorf("acquire machines for %q: %w", tpl.ID, err)
	}

	for _, machine := range launched {
		machine.RequestID = request.ID
		machine.TemplateID = tpl.ID
		machine.Provider = tpl.Provider
		h.machines.Save(machine)
		request.MachineIDs = append(request.MachineIDs, machine.ID)
	}
	request.Status = domain.RequestStatusComplete
	h.requests.Save(request)

	h.logger.Info("request submitted", "request", request.ID, "template", tpl.ID, "machines", len(launched))
	return request.ID, nil
}

// CancelRequestCommand cancels a running request and releases its machines.
type CancelRequestCommand struct {
	RequestID domain.RequestID
}

func (CancelRequestCommand) CommandName() string { return "CancelRequest" }

func (c CancelRequestCommand) Validate() error {
	if c.RequestID == "" {
		return fmt.Errorf("request id is required")
	}
	return nil
}

type CancelRequestHandler struct {
	providers *registry.ProviderRegistry
	requests  *domain.RequestRepository
	machines  *domain.MachineRepository
	logger    *slog.Logger
}

func NewCancelRequestHandler(
	providers *registry.ProviderRegistry,
	requests *domain.RequestRepository,
	machines *domain.MachineRepository,
	logger *slog.Logger,
) *CancelRequestHandler {
	return &CancelRequestHandler{
		providers: providers,
		requests:  requests,
		machines:  machines,
		logger:    logger.With("component", "cancel-request"),
	}
}

func (h *CancelRequestHandler) HandleCommand(ctx context.Context, cmd cqrs.Command) (any, error) {
	command := cmd.(CancelRequestCommand)

	request, err := h.requests.Find(command.RequestID)
	if err != nil {
		return nil, err
	}
	if request.Status.Terminal() {
		return nil, fmt.Errorf("request %q is already %s", request.ID, request.Status)
	}

	if len(request.MachineIDs) > 0 {
		strategy, err := h.providers.Strategy(request.Provider)
		if err != nil {
			return nil, err
		}
		if err := strategy.ReleaseMachines(ctx, request.MachineIDs); err != nil {
			return nil, fmt.Errorf("release machines for %q: %w", request.ID, err)
		}
		for _, id := range request.MachineIDs {
			if machine, err := h.machines.Find(id); err == nil {
				machine.Status = domain.MachineStatusTerminated
				h.machines.Save(machine)
			}
		}
	}

	request.Status = domain.RequestStatusCanceled
	h.requests.Save(request)
	h.logger.Info("request canceled", "request", request.ID)
	return request.ID, nil
}

// CompleteRequestCommand moves a running request to a terminal status,
// optionally recording a message for partial failures.
type CompleteRequestCommand struct {
	RequestID domain.RequestID
	Message   string
}

func (CompleteRequestCommand) CommandName() string { return "CompleteRequest" }

func (c CompleteRequestCommand) Validate() error {
	if c.RequestID == "" {
		return fmt.Errorf("request id is required")
	}
	return nil
}

type CompleteRequestHandler struct {
	requests *domain.RequestRepository
	logger   *slog.Logger
}

func NewCompleteRequestHandler(requests *domain.RequestRepository, logger *slog.Logger) *CompleteRequestHandler {
	return &CompleteRequestHandler{
		requests: requests,
		logger:   logger.With("component", "complete-request"),
	}
}

func (h *CompleteRequestHandler) HandleCommand(_ context.Context, cmd cqrs.Command) (any, error) {
	command := cmd.(CompleteRequestCommand)

	request, err := h.requests.Find(command.RequestID)
	if err != nil {
		return nil, err
	}
	if request.Status.Terminal() {
		return nil, fmt.Errorf("request %q is already %s", request.ID, request.Status)
	}

	request.Status = domain.RequestStatusComplete
	if command.Message != "" {
		request.Status = domain.RequestStatusCompleteWithError
		request.Message = command.Message
	}
	h.requests.Save(request)
	h.logger.Info("request completed", "request", request.ID, "status", request.Status)
	return request.ID, nil
}

// ReturnMachinesCommand hands machines back to their provider, tracked as a
// return-type request.
type ReturnMachinesCommand struct {
	MachineIDs []domain.MachineID
}

func (ReturnMachinesCommand) CommandName() string { return "ReturnMachines" }

func (c ReturnMachinesCommand) Validate() error {
	if len(c.MachineIDs) == 0 {
		return fmt.Errorf("at least one machine id is required")
	}
	return nil
}

type ReturnMachinesHandler struct {
	providers *registry.ProviderRegistry
	requests  *domain.RequestRepository
	machines  *domain.MachineRepository
	logger    *slog.Logger
}

func NewReturnMachinesHandler(
	providers *registry.ProviderRegistry,
	requests *domain.RequestRepository,
	machines *domain.MachineRepository,
	logger *slog.Logger,
) *ReturnMachinesHandler {
	return &ReturnMachinesHandler{
		providers: providers,
		requests:  requests,
		machines:  machines,
		logger:    logger.With("component", "return-machines"),
	}
}

func (h *ReturnMachinesHandler) HandleCommand(ctx context.Context, cmd cqrs.Command) (any, error) {
	command := cmd.(ReturnMachinesCommand)

	// Machines may span providers; group so each strategy sees only its own.
	byProvider := make(map[string][]domain.Machine)
	for _, id := range command.MachineIDs {
		machine, err := h.machines.Find(id)
		if err != nil {
			return nil, err
		}
		byProvider[machine.Provider] = append(byProvider[machine.Provider], machine)
	}

	request := domain.Request{
		ID:         domain.RequestID(namegen.Request().String()),
		Type:       domain.RequestTypeReturn,
		Requested:  len(command.MachineIDs),
		MachineIDs: command.MachineIDs,
		Status:     domain.RequestStatusRunning,
		CreatedAt:  time.Now(),
	}

	for providerName, machines := range byProvider {
		strategy, err := h.providers.Strategy(providerName)
		if err != nil {
			return nil, err
		}
		ids := lo.Map(machines, func(m domain.Machine, _ int) domain.MachineID { return m.ID })
		if err := strategy.ReleaseMachines(ctx, ids); err != nil {
			request.Status = domain.RequestStatusFailed
			request.Message = err.Error()
			h.requests.Save(request)
			return nil, fmt.Errorf("release machines on %q: %w", providerName, err)
		}
		for _, machine := range machines {
			machine.Status = domain.MachineStatusTerminated
			h.machines.Save(machine)
		}
	}

	request.Status = domain.RequestStatusComplete
	h.requests.Save(request)
	h.logger.Info("machines returned", "request", request.ID, "machines", len(command.MachineIDs))
	return request.ID, nil
}
