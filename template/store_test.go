package template

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTemplates(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const basicTemplates = `
templates:
  - id: small
    provider: direct
    image: ubuntu-24.04
    flavor: t2.micro
    max-number: 4
  - id: large
    provider: direct
    image: ubuntu-24.04
    flavor: m5.xlarge
    max-number: 2
    attributes:
      ncpus: "4"
`

func TestStoreList(t *testing.T) {
	store := NewStore(writeTemplates(t, basicTemplates), testLogger())

	templates, err := store.List()
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "small", templates[0].ID)
	assert.Equal(t, 2, templates[1].MaxNumber)
	assert.Equal(t, "4", templates[1].Attributes["ncpus"])
}

func TestStoreGet(t *testing.T) {
	store := NewStore(writeTemplates(t, basicTemplates), testLogger())

	tpl, err := store.Get("large")
	require.NoError(t, err)
	assert.Equal(t, "m5.xlarge", tpl.Flavor)

	_, err = store.Get("unknown")
	assert.ErrorContains(t, err, `template "unknown" not found`)
}

func TestStoreEvaluatesExpressions(t *testing.T) {
	t.Setenv("STORE_TEST_FLAVOR", "c5.large")

	store := NewStore(writeTemplates(t, `
templates:
  - id: env-sized
    provider: direct
    image: ubuntu-24.04
    flavor: {{ .Env.STORE_TEST_FLAVOR }}
    max-number: {{ add 1 2 }}
`), testLogger())

	tpl, err := store.Get("env-sized")
	require.NoError(t, err)
	assert.Equal(t, "c5.large", tpl.Flavor)
	assert.Equal(t, 3, tpl.MaxNumber)
}

func TestStoreRejectsInvalidTemplate(t *testing.T) {
	store := NewStore(writeTemplates(t, `
templates:
  - id: broken
    provider: direct
    max-number: 0
`), testLogger())

	_, err := store.List()
	assert.ErrorContains(t, err, "invalid template")
}

func TestStoreRejectsDuplicateIDs(t *testing.T) {
	store := NewStore(writeTemplates(t, `
templates:
  - id: twin
    provider: direct
    max-number: 1
  - id: twin
    provider: direct
    max-number: 1
`), testLogger())

	_, err := store.List()
	assert.ErrorContains(t, err, `duplicate template id "twin"`)
}

func TestStoreReloadsOnChange(t *testing.T) {
	path := writeTemplates(t, basicTemplates)
	store := NewStore(path, testLogger())

	templates, err := store.List()
	require.NoError(t, err)
	require.Len(t, templates, 2)

	// Push the mtime forward explicitly so the change is visible even on
	// coarse filesystem clocks.
	require.NoError(t, os.WriteFile(path, []byte(`
templates:
  - id: only
    provider: direct
    max-number: 1
`), 0o644))
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	templates, err = store.List()
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "only", templates[0].ID)
}

func TestStoreMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope.yaml"), testLogger())

	_, err := store.List()
	assert.ErrorContains(t, err, "stat templates file")
}
