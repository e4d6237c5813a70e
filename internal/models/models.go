// Package models defines the core data structures for HealthDesk.
//
// It includes types for intents, doctors, chat messages, appointments and
// identities, which are shared across modules.
package models

import (
	"errors"
	"strings"
	"time"
)

// Sender identifies which side of the conversation produced a message.
type Sender string

const (
	// SenderUser marks a message typed by the patient.
	SenderUser Sender = "user"
	// SenderBot marks a message produced by the assistant.
	SenderBot Sender = "bot"
)

// Validation constants for input validation
const (
	// MaxChatMessageLength defines the maximum allowed length for a chat message
	MaxChatMessageLength = 4096
	// MaxRating is the upper bound of a doctor rating
	MaxRating = 5.0
	// MaxMatchScore is the upper bound of a doctor match score
	MaxMatchScore = 100
	// RecommendationLimit is the maximum number of doctors returned per recommendation
	RecommendationLimit = 3
	// BookingLookaheadDays is the size of the date window offered for booking
	BookingLookaheadDays = 7
)

// Error variables for better error handling and testability
var (
	ErrEmptyMessage         = errors.New("message cannot be empty")
	ErrMessageTooLong       = errors.New("message exceeds maximum length")
	ErrEmptyIntentTag       = errors.New("intent tag cannot be empty")
	ErrNoIntentResponses    = errors.New("intent must declare at least one response")
	ErrDuplicateIntentTag   = errors.New("intent tag is not unique")
	ErrEmptyDoctorID        = errors.New("doctor id cannot be empty")
	ErrDuplicateDoctorID    = errors.New("doctor id is not unique")
	ErrRatingOutOfRange     = errors.New("doctor rating must be within [0,5]")
	ErrMatchScoreOutOfRange = errors.New("doctor match score must be within [0,100]")
	ErrInvalidStatus        = errors.New("invalid appointment status")
	ErrInvalidTransition    = errors.New("invalid appointment status transition")
	ErrInvalidRole          = errors.New("invalid user role")
)

// Intent is a named cluster of trigger phrases and canned responses representing
// one recognized symptom or greeting category.
type Intent struct {
	Tag       string   `json:"tag" yaml:"tag"`
	Patterns  []string `json:"patterns" yaml:"patterns"`
	Responses []string `json:"responses" yaml:"responses"`
	FollowUp  []string `json:"follow_up,omitempty" yaml:"follow_up,omitempty"`
}

// Validate checks the structural invariants of a single intent record.
func (i *Intent) Validate() error {
	if strings.TrimSpace(i.Tag) == "" {
		return ErrEmptyIntentTag
	}
	if len(i.Responses) == 0 {
		return ErrNoIntentResponses
	}
	return nil
}

// Doctor is a static registry record. MatchScore is a precomputed ranking
// integer, not derived from patient data.
type Doctor struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Specialty    string   `json:"specialty" yaml:"specialty"`
	Experience   int      `json:"experience" yaml:"experience"`
	Rating       float64  `json:"rating" yaml:"rating"`
	Availability []string `json:"availability" yaml:"availability"`
	MatchScore   int      `json:"match_score" yaml:"match_score"`
}

// Validate checks the structural invariants of a single doctor record.
func (d *Doctor) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return ErrEmptyDoctorID
	}
	if d.Rating < 0 || d.Rating > MaxRating {
		return ErrRatingOutOfRange
	}
	if d.MatchScore < 0 || d.MatchScore > MaxMatchScore {
		return ErrMatchScoreOutOfRange
	}
	return nil
}

// AvailableOn reports whether the doctor works on the given weekday name
// (e.g. "Tuesday").
func (d *Doctor) AvailableOn(weekday string) bool {
	for _, day := range d.Availability {
		if day == weekday {
			return true
		}
	}
	return false
}

// ChatMessage represents a single message in a conversation session.
// Messages are appended in arrival order and never mutated.
type ChatMessage struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// Role identifies the kind of portal user.
type Role string

const (
	// RolePatient is a portal patient.
	RolePatient Role = "patient"
	// RoleDoctor is a practising doctor.
	RoleDoctor Role = "doctor"
	// RoleAdmin is a portal administrator.
	RoleAdmin Role = "admin"
)

// IsValidRole checks if the given role is supported.
func IsValidRole(r Role) bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	default:
		return false
	}
}

// DoctorProfile carries the doctor-only part of an identity.
type DoctorProfile struct {
	Specialty  string `json:"specialty"`
	Experience int    `json:"experience"`
}

// Identity is the tagged role variant for a portal user: a common payload plus
// an optional doctor-specific payload. Patients and admins carry no profile.
type Identity struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Name      string         `json:"name"`
	Role      Role           `json:"role"`
	Phone     string         `json:"phone,omitempty"`
	Doctor    *DoctorProfile `json:"doctor,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Validate checks the role invariant of an identity.
func (u *Identity) Validate() error {
	if !IsValidRole(u.Role) {
		return ErrInvalidRole
	}
	return nil
}
