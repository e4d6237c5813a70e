// Package catalog supplies the static intent catalog and doctor registry for
// HealthDesk.
//
// Both tables ship with built-in defaults and can be replaced from a YAML file
// at startup. Once loaded they are immutable.
package catalog

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/healthdesk/healthdesk/internal/models"
)

// DefaultIntentTag is the tag of the fallback intent returned when no catalog
// trigger matches the input.
const DefaultIntentTag = "default"

// GreetingIntentTag is the tag of the greeting intent. Greetings never
// contribute symptom tags.
const GreetingIntentTag = "greeting"

// Catalog bundles the intent catalog and doctor registry loaded at startup.
type Catalog struct {
	Intents []models.Intent `yaml:"intents"`
	Doctors []models.Doctor `yaml:"doctors"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{
		Intents: defaultIntents(),
		Doctors: defaultDoctors(),
	}
}

// LoadFile reads a catalog from a YAML file and validates it. Either section
// may be omitted, in which case the built-in table is kept. An invalid file is
// rejected as a whole; no partial load.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	if len(c.Intents) == 0 {
		c.Intents = defaultIntents()
	}
	if len(c.Doctors) == 0 {
		c.Doctors = defaultDoctors()
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("catalog file %s is invalid: %w", path, err)
	}

	slog.Info("Catalog loaded from file", "path", path, "intents", len(c.Intents), "doctors", len(c.Doctors))
	return &c, nil
}

// Validate checks the invariants of both tables: unique intent tags, at least
// one response per intent, unique doctor ids, rating and match score bounds.
func (c *Catalog) Validate() error {
	tags := make(map[string]bool, len(c.Intents))
	for i := range c.Intents {
		intent := &c.Intents[i]
		if err := intent.Validate(); err != nil {
			return fmt.Errorf("intent %d: %w", i, err)
		}
		if tags[intent.Tag] {
			return fmt.Errorf("intent %q: %w", intent.Tag, models.ErrDuplicateIntentTag)
		}
		tags[intent.Tag] = true
	}

	ids := make(map[string]bool, len(c.Doctors))
	for i := range c.Doctors {
		doctor := &c.Doctors[i]
		if err := doctor.Validate(); err != nil {
			return fmt.Errorf("doctor %d: %w", i, err)
		}
		if ids[doctor.ID] {
			return fmt.Errorf("doctor %q: %w", doctor.ID, models.ErrDuplicateDoctorID)
		}
		ids[doctor.ID] = true
	}
	return nil
}

// DoctorByID looks up a doctor record by id.
func (c *Catalog) DoctorByID(id string) (*models.Doctor, bool) {
	for i := range c.Doctors {
		if c.Doctors[i].ID == id {
			return &c.Doctors[i], true
		}
	}
	return nil, false
}

// DefaultIntent returns the built-in fallback intent used when no catalog
// trigger matches.
func DefaultIntent() models.Intent {
	return models.Intent{
		Tag: DefaultIntentTag,
		Responses: []string{
			"I understand you're experiencing some discomfort. Can you tell me more about your symptoms?",
			"I'm here to help. Could you describe what you're feeling in more detail?",
			"To better assist you, could you provide more specific information about your symptoms?",
		},
	}
}
