// Package template loads and caches the machine templates the plugin can
// launch from. Template files are YAML, evaluated through text/template with
// the sprig function set before unmarshaling, so operators can splice in
// environment values.
package template

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"text/template"
	"time"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/awslabs/open-hostfactory-plugin-sub000/domain"
)

// file is the on-disk shape of a templates file.
type file struct {
	Templates []domain.Template `yaml:"templates"`
}

// templateData is what template expressions can reference.
type templateData struct {
	Env map[string]string
}

// Store reads templates from a single YAML file and caches them until the
// file's mtime changes.
type Store struct {
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	cached []domain.Template
	mtime  time.Time
}

func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger.With("component", "template-store"),
	}
}

// List returns every template in the file, reloading if the file changed.
func (s *Store) List() ([]domain.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(); err != nil {
		return nil, err
	}
	return s.cached, nil
}

// Get returns the template with the given ID.
func (s *Store) Get(id string) (domain.Template, error) {
	templates, err := s.List()
	if err != nil {
		return domain.Template{}, err
	}
	tpl, ok := lo.Find(templates, func(t domain.Template) bool { return t.ID == id })
	if !ok {
		return domain.Template{}, fmt.Errorf("template %q not found in %s", id, s.path)
	}
	return tpl, nil
}

// refresh reloads the file when its mtime moved past the cached one.
// Caller holds mu.
func (s *Store) refresh() (err error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("stat templates file: %w", err)
	}
	if s.cached != nil && !info.ModTime().After(s.mtime) {
		return nil
	}

	buf, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read templates file: %w", err)
	}

	source, err := evaluate(string(buf))
	if err != nil {
		return fmt.Errorf("evaluate templates file: %w", err)
	}

	var parsed file
	if err = yaml.Unmarshal([]byte(source), &parsed); err != nil {
		return fmt.Errorf("unmarshal templates file: %w", err)
	}

	seen := make(map[string]bool, len(parsed.Templates))
	for _, tpl := range parsed.Templates {
		if err = tpl.Validate(); err != nil {
			return fmt.Errorf("invalid template: %w", err)
		}
		if seen[tpl.ID] {
			return fmt.Errorf("duplicate template id %q", tpl.ID)
		}
		seen[tpl.ID] = true
	}

	s.cached = parsed.Templates
	s.mtime = info.ModTime()
	s.logger.Debug("templates loaded", "path", s.path, "count", len(s.cached))
	return nil
}

// evaluate runs the raw file through text/template with the sprig funcs.
func evaluate(source string) (string, error) {
	tmpl, err := template.New("templates").Funcs(sprig.FuncMap()).Parse(source)
	if err != nil {
		return "", fmt.Errorf("parse: %w", err)
	}

	data := templateData{
		Env: lo.SliceToMap(os.Environ(), func(env string) (key, val string) {
			key, val, _ = strings.Cut(env, "=")
			return
		}),
	}

	var output strings.Builder
	if err := tmpl.Execute(&output, data); err != nil {
		return "", fmt.Errorf("execute: %w", err)
	}
	return output.String(), nil
}
