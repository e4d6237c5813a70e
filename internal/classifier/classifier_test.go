package classifier

import (
	"testing"

	"github.com/healthdesk/healthdesk/internal/catalog"
)

func TestClassifyMatchesTriggerSubstring(t *testing.T) {
	c := New(catalog.Default())

	cases := []struct {
		input string
		tag   string
	}{
		{"I have a headache", "headache"},
		{"my head hurts so much", "headache"},
		{"HELLO there", "greeting"},
		{"My chest hurts", "chest_pain"},
		{"i'm burning up tonight", "fever"},
		{"persistent cough for a week", "cough"},
		{"the room spinning won't stop", "dizziness"},
	}

	for _, tc := range cases {
		got := c.Classify(tc.input)
		if got.Tag != tc.tag {
			t.Errorf("Classify(%q) = %q, want %q", tc.input, got.Tag, tc.tag)
		}
	}
}

func TestClassifyFallsBackToDefault(t *testing.T) {
	c := New(catalog.Default())
	got := c.Classify("my elbow itches")
	if got.Tag != catalog.DefaultIntentTag {
		t.Errorf("expected default intent, got %q", got.Tag)
	}
	if len(got.Responses) == 0 {
		t.Error("default intent must carry responses")
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	// "Hi" (greeting, earlier in the catalog) appears before any symptom
	// trigger, so greeting takes precedence.
	c := New(catalog.Default())
	got := c.Classify("Hi, I have a headache")
	if got.Tag != catalog.GreetingIntentTag {
		t.Errorf("expected greeting to win by catalog order, got %q", got.Tag)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := New(catalog.Default())
	first := c.Classify("I feel nauseous")
	for i := 0; i < 10; i++ {
		if got := c.Classify("I feel nauseous"); got.Tag != first.Tag {
			t.Fatalf("classification changed between runs: %q vs %q", got.Tag, first.Tag)
		}
	}
}
