package request

import (
	"context"
	"fmt"
	"sort"

	"github.com/awslabs/open-hostfactory-plugin-sub000/cqrs"
	"github.com/awslabs/open-hostfactory-plugin-sub000/domain"
	"github.com/awslabs/open-hostfactory-plugin-sub000/registry"
)

// GetRequestQuery fetches a request and the machines it produced.
type GetRequestQuery struct {
	RequestID domain.RequestID
}

func (GetRequestQuery) QueryName() string { return "GetRequest" }

func (q GetRequestQuery) Validate() error {
	if q.RequestID == "" {
		return fmt.Errorf("request id is required")
	}
	return nil
}

// RequestDetails is the result of GetRequestQuery.
type RequestDetails struct {
	Request  domain.Request
	Machines []domain.Machine
}

type GetRequestHandler struct {
	requests *domain.RequestRepository
	machines *domain.MachineRepository
}

func NewGetRequestHandler(requests *domain.RequestRepository, machines *domain.MachineRepository) *GetRequestHandler {
	return &GetRequestHandler{requests: requests, machines: machines}
}

func (h *GetRequestHandler) HandleQuery(_ context.Context, q cqrs.Query) (any, error) {
	query := q.(GetRequestQuery)

	request, err := h.requests.Find(query.RequestID)
	if err != nil {
		return nil, err
	}
	return RequestDetails{
		Request:  request,
		Machines: h.machines.ByRequest(request.ID),
	}, nil
}

// GetRequestStatusQuery renders a request's state through the configured
// scheduler formatter.
type GetRequestStatusQuery struct {
	RequestID domain.RequestID
}

func (GetRequestStatusQuery) QueryName() string { return "GetRequestStatus" }

func (q GetRequestStatusQuery) Validate() error {
	if q.RequestID == "" {
		return fmt.Errorf("request id is required")
	}
	return nil
}

type GetRequestStatusHandler struct {
	requests  *domain.RequestRepository
	machines  *domain.MachineRepository
	formatter registry.RequestFormatter
}

func NewGetRequestStatusHandler(
	requests *domain.RequestRepository,
	machines *domain.MachineRepository,
	formatter registry.RequestFormatter,
) *GetRequestStatusHandler {
	return &GetRequestStatusHandler{requests: requests, machines: machines, formatter: formatter}
}

func (h *GetRequestStatusHandler) HandleQuery(_ context.Context, q cqrs.Query) (any, error) {
	query := q.(GetRequestStatusQuery)

	request, err := h.requests.Find(query.RequestID)
	if err != nil {
		return nil, err
	}
	return h.formatter.FormatRequest(request, h.machines.ByRequest(request.ID))
}

// ListActiveRequestsQuery returns every request not yet terminal, oldest
// first.
type ListActiveRequestsQuery struct{}

func (ListActiveRequestsQuery) QueryName() string { return "ListActiveRequests" }

type ListActiveRequestsHandler struct {
	requests *domain.RequestRepository
}

func NewListActiveRequestsHandler(requests *domain.RequestRepository) *ListActiveRequestsHandler {
	return &ListActiveRequestsHandler{requests: requests}
}

func (h *ListActiveRequestsHandler) HandleQuery(context.Context, cqrs.Query) (any, error) {
	active := h.requests.Active()
	sort.Slice(active, func(i, j int) bool { return active[i].CreatedAt.Before(active[j].CreatedAt) })
	return active, nil
}
