package recommend

import (
	"testing"

	"github.com/healthdesk/healthdesk/internal/catalog"
	"github.com/healthdesk/healthdesk/internal/models"
)

func defaultEngine() *Engine {
	return NewEngine(catalog.Default().Doctors)
}

func TestRecommendNeverExceedsLimit(t *testing.T) {
	e := defaultEngine()
	got := e.Recommend([]string{"fever", "cough", "headache", "nausea"})
	if len(got) > models.RecommendationLimit {
		t.Fatalf("expected at most %d doctors, got %d", models.RecommendationLimit, len(got))
	}
}

func TestRecommendHeadacheRanksNeurologyFirst(t *testing.T) {
	e := defaultEngine()
	got := e.Recommend([]string{"headache"})
	if len(got) == 0 {
		t.Fatal("expected recommendations")
	}
	// Dr. Sarah Johnson (General Medicine, 95) outranks Dr. Emily Rodriguez
	// (Neurology, 92), but Rodriguez must be ahead of every other doctor.
	if got[0].Name != "Dr. Sarah Johnson" {
		t.Errorf("expected highest match score first, got %s", got[0].Name)
	}
	if got[1].Name != "Dr. Emily Rodriguez" {
		t.Errorf("expected Neurology doctor second, got %s", got[1].Name)
	}
}

func TestRecommendChestPainSelectsCardiology(t *testing.T) {
	e := defaultEngine()
	got := e.Recommend([]string{"chest_pain"})
	found := false
	for _, d := range got {
		if d.Specialty == "Cardiology" {
			found = true
		}
		if d.Specialty != "Cardiology" && d.Specialty != GeneralMedicine {
			t.Errorf("unexpected specialty %q for chest_pain", d.Specialty)
		}
	}
	if !found {
		t.Error("expected a Cardiology doctor for chest_pain")
	}
}

func TestRecommendSortedByDescendingScore(t *testing.T) {
	e := defaultEngine()
	got := e.Recommend([]string{"fever"})
	for i := 1; i < len(got); i++ {
		if got[i-1].MatchScore < got[i].MatchScore {
			t.Errorf("not sorted by descending score: %d before %d", got[i-1].MatchScore, got[i].MatchScore)
		}
	}
}

func TestRecommendStableUnderEqualScores(t *testing.T) {
	doctors := []models.Doctor{
		{ID: "a", Name: "A", Specialty: GeneralMedicine, MatchScore: 80},
		{ID: "b", Name: "B", Specialty: GeneralMedicine, MatchScore: 80},
		{ID: "c", Name: "C", Specialty: GeneralMedicine, MatchScore: 80},
	}
	e := NewEngine(doctors)
	got := e.Recommend([]string{"fever"})
	if got[0].ID != "a" || got[1].ID != "b" || got[2].ID != "c" {
		t.Errorf("equal scores must keep registry order, got %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestRecommendFallbackIsRegistryOrder(t *testing.T) {
	doctors := []models.Doctor{
		{ID: "a", Specialty: "Dermatology", MatchScore: 10},
		{ID: "b", Specialty: "Dermatology", MatchScore: 99},
		{ID: "c", Specialty: "Dermatology", MatchScore: 50},
		{ID: "d", Specialty: "Dermatology", MatchScore: 70},
	}
	e := NewEngine(doctors)
	got := e.Recommend([]string{"headache"}) // Neurology mapped, nobody qualifies
	if len(got) != 3 {
		t.Fatalf("expected exactly 3 fallback doctors, got %d", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "b" || got[2].ID != "c" {
		t.Errorf("fallback must be first 3 in registry order, got %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestRecommendUnmappedSymptomQualifiesEveryone(t *testing.T) {
	doctors := []models.Doctor{
		{ID: "a", Specialty: "Dermatology", MatchScore: 10},
	}
	e := NewEngine(doctors)
	got := e.Recommend([]string{"insomnia"})
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("unmapped symptom should qualify every doctor, got %v", got)
	}
}

func TestSpecialtyFor(t *testing.T) {
	if s, ok := SpecialtyFor("headache"); !ok || s != "Neurology" {
		t.Errorf("headache should map to Neurology, got %q %v", s, ok)
	}
	if _, ok := SpecialtyFor("insomnia"); ok {
		t.Error("insomnia should be unmapped")
	}
}
