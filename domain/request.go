// Package domain holds the value types the provisioning plugin trades in:
// requests for capacity, the machines they produce, and the templates that
// describe what to launch. Repositories are process-local; durable storage is
// out of scope for this plugin.
package domain

import (
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
)

type RequestID string

func (id RequestID) String() string { return string(id) }

// RequestType distinguishes acquisition from return of capacity.
type RequestType string

const (
	RequestTypeAcquire RequestType = "acquire"
	RequestTypeReturn  RequestType = "return"
)

type RequestStatus string

const (
	RequestStatusRunning           RequestStatus = "running"
	RequestStatusComplete          RequestStatus = "complete"
	RequestStatusCompleteWithError RequestStatus = "complete_with_error"
	RequestStatusCanceled          RequestStatus = "canceled"
	RequestStatusFailed            RequestStatus = "failed"
)

// Terminal reports whether a request can no longer change state.
func (s RequestStatus) Terminal() bool {
	return s != RequestStatusRunning
}

// Request tracks one acquire or return operation against a provider.
type Request struct {
	ID         RequestID
	Type       RequestType
	TemplateID string
	Provider   string
	Requested  int
	MachineIDs []MachineID
	Status     RequestStatus
	Message    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RequestRepository is an in-memory store of requests, safe for concurrent
// dispatches.
type RequestRepository struct {
	mu       sync.RWMutex
	requests map[RequestID]Request
}

func NewRequestRepository() *RequestRepository {
	return &RequestRepository{requests: make(map[RequestID]Request)}
}

// Save inserts or replaces a request, stamping UpdatedAt.
func (r *RequestRepository) Save(request Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request.UpdatedAt = time.Now()
	r.requests[request.ID] = request
}

// Find returns the request with the given ID.
func (r *RequestRepository) Find(id RequestID) (Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	request, ok := r.requests[id]
	if !ok {
		return Request{}, fmt.Errorf("request %q not found", id)
	}
	return request, nil
}

// Active returns every request not yet in a terminal status.
func (r *RequestRepository) Active() []Request {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Filter(lo.Values(r.requests), func(request Request, _ int) bool {
		return !request.Status.Terminal()
	})
}

// All returns every stored request.
func (r *RequestRepository) All() []Request {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Values(r.requests)
}
