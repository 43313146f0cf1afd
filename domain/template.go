package domain

import "fmt"

// Template describes what a provider should launch: the machine shape, the
// provider responsible, and how many instances the template may have in
// flight at once.
type Template struct {
	ID         string            `yaml:"id"`
	Provider   string            `yaml:"provider"`
	Image      string            `yaml:"image"`
	Flavor     string            `yaml:"flavor"`
	MaxNumber  int               `yaml:"max-number"`
	Attributes map[string]string `yaml:"attributes"`
	Tags       map[string]string `yaml:"tags"`
}

// Validate checks the fields every template must carry regardless of
// provider.
func (t Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("template id is required")
	}
	if t.Provider == "" {
		return fmt.Errorf("template %q: provider is required", t.ID)
	}
	if t.MaxNumber <= 0 {
		return fmt.Errorf("template %q: max-number must be positive", t.ID)
	}
	return nil
}
