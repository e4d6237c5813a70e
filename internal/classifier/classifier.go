// Package classifier maps free-text user input to the best-matching intent.
//
// The catalog is scanned in declaration order and the first intent whose any
// trigger pattern is a case-insensitive substring of the input wins. There is
// no scoring or ranking; earlier catalog position takes precedence.
package classifier

import (
	"strings"

	"github.com/healthdesk/healthdesk/internal/catalog"
	"github.com/healthdesk/healthdesk/internal/models"
)

// Classifier resolves user input against a fixed intent catalog.
type Classifier struct {
	intents  []models.Intent
	fallback models.Intent
}

// New creates a Classifier over the given catalog.
func New(c *catalog.Catalog) *Classifier {
	return &Classifier{
		intents:  c.Intents,
		fallback: catalog.DefaultIntent(),
	}
}

// Classify returns the first intent with a trigger substring of the input, or
// the default intent when nothing matches. Pure function of the input and the
// static catalog.
func (c *Classifier) Classify(input string) models.Intent {
	lower := strings.ToLower(input)
	for _, intent := range c.intents {
		for _, pattern := range intent.Patterns {
			if strings.Contains(lower, strings.ToLower(pattern)) {
				return intent
			}
		}
	}
	return c.fallback
}
