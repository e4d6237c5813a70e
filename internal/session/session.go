// Package session implements the conversation session: it owns the message
// history and the accumulated symptom tags for one interactive exchange and
// advances the conversation by one turn per user message.
//
// Staged bot events (reply, optional follow-up, optional recommendation) are
// released through a Timer in order. While a turn's events are still pending,
// new user messages are rejected so message delivery is never interleaved.
package session

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/healthdesk/healthdesk/internal/catalog"
	"github.com/healthdesk/healthdesk/internal/classifier"
	"github.com/healthdesk/healthdesk/internal/models"
	"github.com/healthdesk/healthdesk/internal/recommend"
)

// Error variables for turn handling.
var (
	ErrTurnInFlight  = errors.New("previous turn still being delivered")
	ErrSessionClosed = errors.New("session is closed")
)

// GreetingMessage opens every new session.
const GreetingMessage = "Hello! I'm your AI health assistant. I'm here to help assess your symptoms and recommend the right doctor for you. How are you feeling today?"

// recommendationMessage precedes the structured doctor list.
const recommendationMessage = "Based on your symptoms, I recommend consulting with the following doctors. You can book an appointment with any of them:"

// Default staging delays, modeling perceived typing latency. Zero delays
// deliver inline, which the HTTP surface and tests rely on.
const (
	DefaultReplyDelay     = time.Second
	DefaultFollowUpDelay  = time.Second
	DefaultRecommendDelay = time.Second
)

// Callbacks receives the session's outbound notifications.
type Callbacks struct {
	// OnMessage is invoked for every message appended to the history,
	// user and bot alike, in delivery order.
	OnMessage func(models.ChatMessage)
	// OnDoctorRecommendation delivers the structured doctor-list payload
	// alongside the recommendation message.
	OnDoctorRecommendation func([]models.Doctor)
}

// Option configures a Session.
type Option func(*Session)

// WithTimer replaces the delivery timer.
func WithTimer(t Timer) Option {
	return func(s *Session) { s.timer = t }
}

// WithDelays sets the staging delays for reply, follow-up and recommendation.
// A non-positive delay delivers the event inline.
func WithDelays(reply, followUp, recommendD time.Duration) Option {
	return func(s *Session) {
		s.replyDelay = reply
		s.followUpDelay = followUp
		s.recommendDelay = recommendD
	}
}

// WithRandIndex injects the random-index source used to pick among an
// intent's response variants. Tests supply a deterministic one.
func WithRandIndex(fn func(n int) int) Option {
	return func(s *Session) { s.randIndex = fn }
}

// WithClock injects the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session owns one conversation. Each session holds its history and tag set
// exclusively; nothing is shared across sessions.
type Session struct {
	id         string
	classifier *classifier.Classifier
	engine     *recommend.Engine
	callbacks  Callbacks

	timer          Timer
	randIndex      func(n int) int
	now            func() time.Time
	replyDelay     time.Duration
	followUpDelay  time.Duration
	recommendDelay time.Duration

	mu        sync.Mutex
	history   []models.ChatMessage
	symptoms  []string
	pending   int
	timerIDs  []string
	closed    bool
	createdAt time.Time
}

// New creates a session over the given catalog components and seeds the
// history with the assistant greeting.
func New(id string, cls *classifier.Classifier, engine *recommend.Engine, cb Callbacks, opts ...Option) *Session {
	s := &Session{
		id:             id,
		classifier:     cls,
		engine:         engine,
		callbacks:      cb,
		timer:          NewSimpleTimer(),
		randIndex:      rand.IntN,
		now:            time.Now,
		replyDelay:     DefaultReplyDelay,
		followUpDelay:  DefaultFollowUpDelay,
		recommendDelay: DefaultRecommendDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.createdAt = s.now()
	s.history = append(s.history, models.ChatMessage{
		ID:        uuid.NewString(),
		Text:      GreetingMessage,
		Sender:    models.SenderBot,
		Timestamp: s.createdAt,
	})
	slog.Debug("Session created", "sessionID", id)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// History returns a copy of the message history in delivery order.
func (s *Session) History() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.history))
	copy(out, s.history)
	return out
}

// Symptoms returns a copy of the accumulated symptom tags in first-seen order.
func (s *Session) Symptoms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.symptoms))
	copy(out, s.symptoms)
	return out
}

// TurnInFlight reports whether a previous turn's events are still pending.
func (s *Session) TurnInFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending > 0
}

// Close discards pending deliveries. There are no partial writes to roll back.
func (s *Session) Close() {
	s.mu.Lock()
	ids := s.timerIDs
	s.timerIDs = nil
	s.pending = 0
	s.closed = true
	s.mu.Unlock()

	for _, id := range ids {
		if err := s.timer.Cancel(id); err != nil {
			slog.Warn("Session close: timer cancel failed", "sessionID", s.id, "timerID", id, "error", err)
		}
	}
	slog.Debug("Session closed", "sessionID", s.id)
}

// stagedEvent is one outbound delivery of a turn.
type stagedEvent struct {
	message models.ChatMessage
	doctors []models.Doctor
}

// HandleMessage advances the conversation by one turn. It rejects the message
// if the previous turn's staged events have not all been delivered yet.
func (s *Session) HandleMessage(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return models.ErrEmptyMessage
	}
	if len(trimmed) > models.MaxChatMessageLength {
		return models.ErrMessageTooLong
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.pending > 0 {
		s.mu.Unlock()
		return ErrTurnInFlight
	}

	userMsg := models.ChatMessage{
		ID:        uuid.NewString(),
		Text:      trimmed,
		Sender:    models.SenderUser,
		Timestamp: s.now(),
	}
	s.history = append(s.history, userMsg)

	intent := s.classifier.Classify(trimmed)
	response := intent.Responses[s.randIndex(len(intent.Responses))]

	if intent.Tag != catalog.GreetingIntentTag && intent.Tag != catalog.DefaultIntentTag {
		s.recordSymptomLocked(intent.Tag)
	}

	events := []stagedEvent{{message: s.botMessage(response)}}
	if len(intent.FollowUp) > 0 {
		events = append(events, stagedEvent{message: s.botMessage(strings.Join(intent.FollowUp, " "))})
	}
	if len(s.symptoms) > 0 {
		doctors := s.engine.Recommend(s.symptoms)
		events = append(events, stagedEvent{
			message: s.botMessage(recommendationMessage),
			doctors: doctors,
		})
	}
	s.pending = len(events)
	s.mu.Unlock()

	slog.Debug("Session turn accepted", "sessionID", s.id, "intent", intent.Tag, "stagedEvents", len(events))
	s.emit(userMsg)

	// Cumulative offsets keep the staged events strictly ordered.
	delay := s.replyDelay
	for i, ev := range events {
		s.schedule(delay, ev)
		if i == 0 {
			delay += s.followUpDelay
		} else {
			delay += s.recommendDelay
		}
	}
	return nil
}

func (s *Session) botMessage(text string) models.ChatMessage {
	return models.ChatMessage{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    models.SenderBot,
		Timestamp: s.now(),
	}
}

// recordSymptomLocked inserts a tag preserving first-seen order, suppressing
// duplicates. Caller holds s.mu.
func (s *Session) recordSymptomLocked(tag string) {
	for _, existing := range s.symptoms {
		if existing == tag {
			return
		}
	}
	s.symptoms = append(s.symptoms, tag)
}

func (s *Session) schedule(delay time.Duration, ev stagedEvent) {
	if delay <= 0 {
		s.deliver(ev)
		return
	}
	id, err := s.timer.ScheduleAfter(delay, func() { s.deliver(ev) })
	if err != nil {
		slog.Error("Session schedule failed, delivering inline", "sessionID", s.id, "error", err)
		s.deliver(ev)
		return
	}
	s.mu.Lock()
	s.timerIDs = append(s.timerIDs, id)
	s.mu.Unlock()
}

func (s *Session) deliver(ev stagedEvent) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.history = append(s.history, ev.message)
	if s.pending > 0 {
		s.pending--
	}
	s.mu.Unlock()

	s.emit(ev.message)
	if ev.doctors != nil && s.callbacks.OnDoctorRecommendation != nil {
		s.callbacks.OnDoctorRecommendation(ev.doctors)
	}
}

func (s *Session) emit(msg models.ChatMessage) {
	if s.callbacks.OnMessage != nil {
		s.callbacks.OnMessage(msg)
	}
}
