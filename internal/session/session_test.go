package session

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/healthdesk/healthdesk/internal/catalog"
	"github.com/healthdesk/healthdesk/internal/classifier"
	"github.com/healthdesk/healthdesk/internal/models"
	"github.com/healthdesk/healthdesk/internal/recommend"
)

// fakeTimer records scheduled functions and releases them on Advance.
type fakeTimer struct {
	nextID  int
	entries []fakeEntry
}

type fakeEntry struct {
	id    string
	due   time.Duration
	fn    func()
	fired bool
}

func (t *fakeTimer) ScheduleAfter(delay time.Duration, fn func()) (string, error) {
	t.nextID++
	id := fmt.Sprintf("fake_%d", t.nextID)
	t.entries = append(t.entries, fakeEntry{id: id, due: delay, fn: fn})
	return id, nil
}

func (t *fakeTimer) Cancel(id string) error {
	for i := range t.entries {
		if t.entries[i].id == id {
			t.entries[i].fired = true
		}
	}
	return nil
}

func (t *fakeTimer) Stop() {}

// Advance fires all entries due within d, in due order.
func (t *fakeTimer) Advance(d time.Duration) {
	sort.SliceStable(t.entries, func(i, j int) bool { return t.entries[i].due < t.entries[j].due })
	for i := range t.entries {
		if !t.entries[i].fired && t.entries[i].due <= d {
			t.entries[i].fired = true
			t.entries[i].fn()
		}
	}
}

type recorder struct {
	messages []models.ChatMessage
	doctors  [][]models.Doctor
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnMessage:              func(m models.ChatMessage) { r.messages = append(r.messages, m) },
		OnDoctorRecommendation: func(d []models.Doctor) { r.doctors = append(r.doctors, d) },
	}
}

func newTestSession(cb Callbacks, opts ...Option) *Session {
	c := catalog.Default()
	base := []Option{
		WithDelays(0, 0, 0),
		WithRandIndex(func(n int) int { return 0 }),
	}
	return New("s1", classifier.New(c), recommend.NewEngine(c.Doctors), cb, append(base, opts...)...)
}

func TestSessionStartsWithGreeting(t *testing.T) {
	s := newTestSession(Callbacks{})
	history := s.History()
	if len(history) != 1 {
		t.Fatalf("expected 1 seeded message, got %d", len(history))
	}
	if history[0].Sender != models.SenderBot || history[0].Text != GreetingMessage {
		t.Errorf("unexpected greeting message: %+v", history[0])
	}
}

func TestGreetingContributesNoTag(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(rec.callbacks())
	if err := s.HandleMessage("Hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Symptoms()) != 0 {
		t.Errorf("greeting must not record a symptom, got %v", s.Symptoms())
	}
	if len(rec.doctors) != 0 {
		t.Errorf("no recommendation expected without symptoms, got %d", len(rec.doctors))
	}
}

func TestHeadacheScenario(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(rec.callbacks())
	if err := s.HandleMessage("I have a headache"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := s.Symptoms(); !reflect.DeepEqual(got, []string{"headache"}) {
		t.Errorf("expected symptoms {headache}, got %v", got)
	}
	if len(rec.doctors) != 1 {
		t.Fatalf("expected one recommendation payload, got %d", len(rec.doctors))
	}
	var neuro bool
	for _, d := range rec.doctors[0] {
		if d.Name == "Dr. Emily Rodriguez" && d.Specialty == "Neurology" && d.MatchScore == 92 {
			neuro = true
		}
	}
	if !neuro {
		t.Errorf("expected Dr. Emily Rodriguez in recommendations, got %v", rec.doctors[0])
	}

	// user message, reply, follow-up, recommendation message
	if len(rec.messages) != 4 {
		t.Fatalf("expected 4 delivered messages, got %d", len(rec.messages))
	}
	if rec.messages[0].Sender != models.SenderUser {
		t.Errorf("first delivery must be the user message")
	}
	for _, m := range rec.messages[1:] {
		if m.Sender != models.SenderBot {
			t.Errorf("expected bot sender, got %s", m.Sender)
		}
	}
}

func TestGreetingThenChestPainScenario(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(rec.callbacks())
	if err := s.HandleMessage("Hello"); err != nil {
		t.Fatal(err)
	}
	if err := s.HandleMessage("My chest hurts"); err != nil {
		t.Fatal(err)
	}

	if got := s.Symptoms(); !reflect.DeepEqual(got, []string{"chest_pain"}) {
		t.Errorf("expected symptoms {chest_pain}, got %v", got)
	}
	if len(rec.doctors) != 1 {
		t.Fatalf("expected one recommendation payload, got %d", len(rec.doctors))
	}
	var cardio bool
	for _, d := range rec.doctors[0] {
		if d.Specialty == "Cardiology" {
			cardio = true
		}
	}
	if !cardio {
		t.Errorf("expected a Cardiology recommendation, got %v", rec.doctors[0])
	}
}

func TestDuplicateSymptomSuppressed(t *testing.T) {
	s := newTestSession(Callbacks{})
	if err := s.HandleMessage("I have a headache"); err != nil {
		t.Fatal(err)
	}
	if err := s.HandleMessage("Headache again, my head hurts"); err != nil {
		t.Fatal(err)
	}
	if got := s.Symptoms(); !reflect.DeepEqual(got, []string{"headache"}) {
		t.Errorf("expected deduplicated symptoms, got %v", got)
	}
}

func TestSymptomInsertionOrderPreserved(t *testing.T) {
	s := newTestSession(Callbacks{})
	for _, msg := range []string{"I have fever", "I have a headache", "I feel dizzy"} {
		if err := s.HandleMessage(msg); err != nil {
			t.Fatal(err)
		}
	}
	want := []string{"fever", "headache", "dizziness"}
	if got := s.Symptoms(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestTurnInFlightRejected(t *testing.T) {
	ft := &fakeTimer{}
	rec := &recorder{}
	s := newTestSession(rec.callbacks(), WithTimer(ft), WithDelays(time.Second, time.Second, time.Second))

	if err := s.HandleMessage("I have a headache"); err != nil {
		t.Fatal(err)
	}
	if !s.TurnInFlight() {
		t.Fatal("expected turn in flight while deliveries pending")
	}
	if err := s.HandleMessage("And fever too"); !errors.Is(err, ErrTurnInFlight) {
		t.Fatalf("expected ErrTurnInFlight, got %v", err)
	}

	ft.Advance(5 * time.Second)
	if s.TurnInFlight() {
		t.Fatal("expected turn to complete after timers fired")
	}
	if err := s.HandleMessage("I have fever"); err != nil {
		t.Fatalf("expected next turn to be accepted, got %v", err)
	}
}

func TestStagedOrderingUnderFakeTimer(t *testing.T) {
	ft := &fakeTimer{}
	rec := &recorder{}
	s := newTestSession(rec.callbacks(), WithTimer(ft), WithDelays(time.Second, time.Second, time.Second))

	if err := s.HandleMessage("I have a headache"); err != nil {
		t.Fatal(err)
	}
	ft.Advance(10 * time.Second)

	if len(rec.messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(rec.messages))
	}
	// Reply carries the intent response, follow-up joins the prompts, the
	// recommendation message is always last.
	if rec.messages[2].Text != "How long have you had this headache? Is the pain throbbing or constant? Any nausea or sensitivity to light?" {
		t.Errorf("follow-up out of order or mangled: %q", rec.messages[2].Text)
	}
	if rec.messages[3].Text != recommendationMessage {
		t.Errorf("recommendation message must come last, got %q", rec.messages[3].Text)
	}
}

func TestCloseDiscardsPendingDeliveries(t *testing.T) {
	ft := &fakeTimer{}
	rec := &recorder{}
	s := newTestSession(rec.callbacks(), WithTimer(ft), WithDelays(time.Second, time.Second, time.Second))

	if err := s.HandleMessage("I have a headache"); err != nil {
		t.Fatal(err)
	}
	s.Close()
	ft.Advance(10 * time.Second)

	// Only the user message was delivered before Close.
	if len(rec.messages) != 1 {
		t.Errorf("expected pending deliveries to be discarded, got %d messages", len(rec.messages))
	}
	if err := s.HandleMessage("hello"); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed, got %v", err)
	}
}

func TestEmptyMessageRejected(t *testing.T) {
	s := newTestSession(Callbacks{})
	if err := s.HandleMessage("   "); !errors.Is(err, models.ErrEmptyMessage) {
		t.Errorf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestDeterministicResponseSelection(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(rec.callbacks(), WithRandIndex(func(n int) int { return n - 1 }))
	if err := s.HandleMessage("I have fever"); err != nil {
		t.Fatal(err)
	}
	want := "I'm concerned about your fever. Are you experiencing any other symptoms like cough, sore throat, or body pain?"
	if rec.messages[1].Text != want {
		t.Errorf("expected last response variant, got %q", rec.messages[1].Text)
	}
}
