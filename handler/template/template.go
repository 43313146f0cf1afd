// Package template implements the template-side query handlers backed by the
// YAML template store.
package template

import (
	"context"
	"fmt"

	"github.com/awslabs/open-hostfactory-plugin-sub000/bootstrap"
	"github.com/awslabs/open-hostfactory-plugin-sub000/cqrs"
	"github.com/awslabs/open-hostfactory-plugin-sub000/registry"
	"github.com/awslabs/open-hostfactory-plugin-sub000/template"
)

// ListTemplatesQuery returns every template in the store.
type ListTemplatesQuery struct{}

func (ListTemplatesQuery) QueryName() string { return "ListTemplates" }

type ListTemplatesHandler struct {
	templates *template.Store
}

func NewListTemplatesHandler(templates *template.Store) *ListTemplatesHandler {
	return &ListTemplatesHandler{templates: templates}
}

func (h *ListTemplatesHandler) HandleQuery(context.Context, cqrs.Query) (any, error) {
	return h.templates.List()
}

// GetTemplateQuery fetches one template by ID.
type GetTemplateQuery struct {
	TemplateID string
}

func (GetTemplateQuery) QueryName() string { return "GetTemplate" }

func (q GetTemplateQuery) Validate() error {
	if q.TemplateID == "" {
		return fmt.Errorf("template id is required")
	}
	return nil
}

type GetTemplateHandler struct {
	templates *template.Store
}

func NewGetTemplateHandler(templates *template.Store) *GetTemplateHandler {
	return &GetTemplateHandler{templates: templates}
}

func (h *GetTemplateHandler) HandleQuery(_ context.Context, q cqrs.Query) (any, error) {
	return h.templates.Get(q.(GetTemplateQuery).TemplateID)
}

// ValidateTemplateQuery checks one template against the store's rules and the
// provider registry.
type ValidateTemplateQuery struct {
	TemplateID string
}

func (ValidateTemplateQuery) QueryName() string { return "ValidateTemplate" }

func (q ValidateTemplateQuery) Validate() error {
	if q.TemplateID == "" {
		return fmt.Errorf("template id is required")
	}
	return nil
}

// ValidationResult is the outcome of ValidateTemplateQuery. Valid is false
// only for template problems; a missing template is an error instead.
type ValidationResult struct {
	TemplateID string
	Valid      bool
	Reason     string
}

type ValidateTemplateHandler struct {
	templates *template.Store
	providers *registry.ProviderRegistry
}

func NewValidateTemplateHandler(templates *template.Store, providers *registry.ProviderRegistry) *ValidateTemplateHandler {
	return &ValidateTemplateHandler{templates: templates, providers: providers}
}

func (h *ValidateTemplateHandler) HandleQuery(_ context.Context, q cqrs.Query) (any, error) {
	query := q.(ValidateTemplateQuery)

	tpl, err := h.templates.Get(query.TemplateID)
	if err != nil {
		return nil, err
	}

	result := ValidationResult{TemplateID: tpl.ID, Valid: true}
	if err := tpl.Validate(); err != nil {
		result.Valid = false
		result.Reason = err.Error()
		return result, nil
	}
	if _, err := h.providers.Strategy(tpl.Provider); err != nil {
		result.Valid = false
		result.Reason = fmt.Sprintf("provider %q is not available", tpl.Provider)
	}
	return result, nil
}

// Module exports this package's handler bindings for bootstrap discovery.
func Module() bootstrap.Module {
	return bootstrap.Module{
		Name: "template",
		Register: func(r *cqrs.HandlerRegistry) error {
			if err := cqrs.RegisterQuery[ListTemplatesQuery, *ListTemplatesHandler](r, NewListTemplatesHandler); err != nil {
				return err
			}
			if err := cqrs.RegisterQuery[GetTemplateQuery, *GetTemplateHandler](r, NewGetTemplateHandler); err != nil {
				return err
			}
			return cqrs.RegisterQuery[ValidateTemplateQuery, *ValidateTemplateHandler](r, NewValidateTemplateHandler)
		},
	}
}
