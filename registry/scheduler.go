package registry

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/awslabs/open-hostfactory-plugin-sub000/domain"
)

// RequestFormatter renders plugin output in the shape a particular scheduler
// expects. The scheduler integration only ever sees these rendered strings.
type RequestFormatter interface {
	FormatRequest(request domain.Request, machines []domain.Machine) (string, error)
	FormatTemplates(templates []domain.Template) (string, error)
}

// SchedulerRegistry maps scheduler names to their output formatter.
type SchedulerRegistry struct {
	*Registry[RequestFormatter]
}

func NewSchedulerRegistry() *SchedulerRegistry {
	return &SchedulerRegistry{Registry: New[RequestFormatter]("scheduler")}
}

// HostFactoryFormatter renders the JSON payloads the Host Factory requestor
// API consumes.
type HostFactoryFormatter struct{}

type hostFactoryMachine struct {
	MachineID  string `json:"machineId"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	LaunchTime int64  `json:"launchtime"`
}

type hostFactoryRequest struct {
	RequestID string               `json:"requestId"`
	Status    string               `json:"status"`
	Message   string               `json:"message,omitempty"`
	Machines  []hostFactoryMachine `json:"machines"`
}

func (HostFactoryFormatter) FormatRequest(request domain.Request, machines []domain.Machine) (string, error) {
	payload := hostFactoryRequest{
		RequestID: request.ID.String(),
		Status:    string(request.Status),
		Message:   request.Message,
		Machines: lo.Map(machines, func(machine domain.Machine, _ int) hostFactoryMachine {
			return hostFactoryMachine{
				MachineID:  machine.ID.String(),
				Name:       machine.Name,
				Status:     string(machine.Status),
				LaunchTime: machine.LaunchedAt.Unix(),
			}
		}),
	}
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal request payload: %w", err)
	}
	return string(out), nil
}

type hostFactoryTemplate struct {
	TemplateID string            `json:"templateId"`
	MaxNumber  int               `json:"maxNumber"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

func (HostFactoryFormatter) FormatTemplates(templates []domain.Template) (string, error) {
	payload := map[string]any{
		"templates": lo.Map(templates, func(template domain.Template, _ int) hostFactoryTemplate {
			return hostFactoryTemplate{
				TemplateID: template.ID,
				MaxNumber:  template.MaxNumber,
				Attributes: template.Attributes,
			}
		}),
	}
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal templates payload: %w", err)
	}
	return string(out), nil
}

// PlainFormatter renders terse human-readable text for interactive use.
type PlainFormatter struct{}

func (PlainFormatter) FormatRequest(request domain.Request, machines []domain.Machine) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  %s  template=%s\n", request.ID, request.Type, request.Status, request.TemplateID)
	for _, machine := range machines {
		fmt.Fprintf(&b, "  %s  %-10s  %s\n", machine.ID, machine.Status, machine.LaunchedAt.Truncate(time.Second))
	}
	return b.String(), nil
}

func (PlainFormatter) FormatTemplates(templates []domain.Template) (string, error) {
	var b strings.Builder
	for _, template := range templates {
		fmt.Fprintf(&b, "%-20s  provider=%-10s  max=%d\n", template.ID, template.Provider, template.MaxNumber)
	}
	return b.String(), nil
}
