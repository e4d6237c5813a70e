// Package recommend maps accumulated symptom tags to doctor recommendations.
package recommend

import (
	"sort"

	"github.com/healthdesk/healthdesk/internal/models"
)

// GeneralMedicine is the catch-all specialty: its doctors qualify for every
// mapped symptom.
const GeneralMedicine = "General Medicine"

// specialtyMap is the fixed symptom-tag to specialty mapping.
var specialtyMap = map[string]string{
	"headache":     "Neurology",
	"chest_pain":   "Cardiology",
	"back_pain":    "Orthopedics",
	"stomach_pain": "Gastroenterology",
	"fever":        GeneralMedicine,
	"cough":        GeneralMedicine,
	"sore_throat":  GeneralMedicine,
	"nausea":       "Gastroenterology",
	"dizziness":    "Neurology",
}

// SpecialtyFor returns the specialty mapped to a symptom tag, if any.
func SpecialtyFor(tag string) (string, bool) {
	s, ok := specialtyMap[tag]
	return s, ok
}

// Engine ranks a fixed doctor registry against accumulated symptom tags.
type Engine struct {
	doctors []models.Doctor
}

// NewEngine creates an Engine over the given registry. Registry order is the
// tie-break order and the fallback order.
func NewEngine(doctors []models.Doctor) *Engine {
	return &Engine{doctors: doctors}
}

// Recommend returns at most three doctors for the accumulated symptoms.
//
// A doctor qualifies if, for any symptom, the tag has no specialty mapping,
// the doctor's specialty equals the mapped specialty, or the doctor practises
// General Medicine. Qualifiers are sorted by descending match score with a
// stable sort, so equal scores keep registry order. If nothing qualifies the
// first three registered doctors are returned. Pure function; no side effects.
func (e *Engine) Recommend(symptoms []string) []models.Doctor {
	var qualified []models.Doctor
	for _, doctor := range e.doctors {
		if qualifies(doctor, symptoms) {
			qualified = append(qualified, doctor)
		}
	}

	if len(qualified) == 0 {
		// Registry-order fallback, unsorted.
		n := len(e.doctors)
		if n > models.RecommendationLimit {
			n = models.RecommendationLimit
		}
		return append([]models.Doctor(nil), e.doctors[:n]...)
	}

	sort.SliceStable(qualified, func(i, j int) bool {
		return qualified[i].MatchScore > qualified[j].MatchScore
	})

	if len(qualified) > models.RecommendationLimit {
		qualified = qualified[:models.RecommendationLimit]
	}
	return qualified
}

func qualifies(doctor models.Doctor, symptoms []string) bool {
	for _, symptom := range symptoms {
		specialty, mapped := specialtyMap[symptom]
		if !mapped || doctor.Specialty == specialty || doctor.Specialty == GeneralMedicine {
			return true
		}
	}
	return false
}
