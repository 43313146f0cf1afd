package template_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awslabs/open-hostfactory-plugin-sub000/bootstrap"
	"github.com/awslabs/open-hostfactory-plugin-sub000/cqrs"
	"github.com/awslabs/open-hostfactory-plugin-sub000/domain"
	handler "github.com/awslabs/open-hostfactory-plugin-sub000/handler/template"
)

const testTemplates = `
templates:
  - id: small
    provider: direct
    image: ubuntu-24.04
    flavor: t2.micro
    max-number: 4
  - id: orphan
    provider: moonbase
    max-number: 1
`

func newRuntime(t *testing.T) *bootstrap.Runtime {
	t.Helper()
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testTemplates), 0o644))

	runtime, err := bootstrap.New(bootstrap.Options{
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		TemplatesPath: path,
		Modules:       []bootstrap.Module{handler.Module()},
	})
	require.NoError(t, err)
	return runtime
}

func TestListTemplates(t *testing.T) {
	runtime := newRuntime(t)

	result, err := runtime.Queries.Execute(context.Background(), handler.ListTemplatesQuery{})
	require.NoError(t, err)
	templates := result.([]domain.Template)
	require.Len(t, templates, 2)
	assert.Equal(t, "small", templates[0].ID)
}

func TestGetTemplate(t *testing.T) {
	runtime := newRuntime(t)

	result, err := runtime.Queries.Execute(context.Background(), handler.GetTemplateQuery{TemplateID: "small"})
	require.NoError(t, err)
	assert.Equal(t, "t2.micro", result.(domain.Template).Flavor)
}

func TestGetTemplateValidation(t *testing.T) {
	runtime := newRuntime(t)

	_, err := runtime.Queries.Execute(context.Background(), handler.GetTemplateQuery{})
	var validation *cqrs.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestValidateTemplate(t *testing.T) {
	runtime := newRuntime(t)

	result, err := runtime.Queries.Execute(context.Background(), handler.ValidateTemplateQuery{TemplateID: "small"})
	require.NoError(t, err)
	assert.True(t, result.(handler.ValidationResult).Valid)
}

func TestValidateTemplateUnknownProvider(t *testing.T) {
	runtime := newRuntime(t)

	result, err := runtime.Queries.Execute(context.Background(), handler.ValidateTemplateQuery{TemplateID: "orphan"})
	require.NoError(t, err)
	validation := result.(handler.ValidationResult)
	assert.False(t, validation.Valid)
	assert.Contains(t, validation.Reason, `provider "moonbase" is not available`)
}

func TestValidateMissingTemplate(t *testing.T) {
	runtime := newRuntime(t)

	_, err := runtime.Queries.Execute(context.Background(), handler.ValidateTemplateQuery{TemplateID: "ghost"})
	assert.ErrorContains(t, err, `template "ghost" not found`)
}
