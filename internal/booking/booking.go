// Package booking implements the appointment-booking workflow: it derives
// pickable dates from a doctor's weekday availability, offers the fixed clinic
// time slots, validates the submitted form and produces a pending Appointment.
package booking

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/healthdesk/healthdesk/internal/models"
)

// Error variables for form validation failures. A failing submission never
// produces an Appointment.
var (
	ErrNoDateSelected  = errors.New("a date must be selected")
	ErrNoTimeSelected  = errors.New("a time slot must be selected")
	ErrNoSymptoms      = errors.New("a symptom description is required")
	ErrDateUnavailable = errors.New("selected date is not offered for this doctor")
	ErrTimeUnavailable = errors.New("selected time is not a clinic slot")
)

// timeSlots is the fixed catalog of half-hour slots for the two clinic blocks,
// 09:00-11:30 and 14:00-16:30.
var timeSlots = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"14:00", "14:30", "15:00", "15:30", "16:00", "16:30",
}

// TimeSlots returns the fixed clinic slot catalog.
func TimeSlots() []string {
	out := make([]string, len(timeSlots))
	copy(out, timeSlots)
	return out
}

// DateOption is one pickable booking date.
type DateOption struct {
	Date    string `json:"date"`    // YYYY-MM-DD
	Display string `json:"display"` // e.g. "Tue, Sep 2"
}

// AvailableDates computes the next 7 calendar dates after today and retains
// those whose weekday name is in the doctor's availability set, in
// chronological order. An empty list is a valid terminal state: booking simply
// cannot proceed.
func AvailableDates(doctor models.Doctor, today time.Time) []DateOption {
	options := make([]DateOption, 0, models.BookingLookaheadDays)
	for i := 1; i <= models.BookingLookaheadDays; i++ {
		day := today.AddDate(0, 0, i)
		if !doctor.AvailableOn(day.Weekday().String()) {
			continue
		}
		options = append(options, DateOption{
			Date:    day.Format("2006-01-02"),
			Display: day.Format("Mon, Jan 2"),
		})
	}
	return options
}

// Form is the user-filled booking submission.
type Form struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Symptoms string `json:"symptoms"` // comma separated
	Notes    string `json:"notes,omitempty"`
}

// Workflow books one appointment with a selected doctor for a patient
// identity. The identity is passed in at construction; the workflow performs
// no authentication.
type Workflow struct {
	doctor  models.Doctor
	patient models.Identity
	now     func() time.Time
	newID   func() string
}

// WorkflowOption configures a Workflow.
type WorkflowOption func(*Workflow)

// WithClock injects the timestamp source.
func WithClock(now func() time.Time) WorkflowOption {
	return func(w *Workflow) { w.now = now }
}

// WithIDGenerator injects the appointment id source.
func WithIDGenerator(fn func() string) WorkflowOption {
	return func(w *Workflow) { w.newID = fn }
}

// NewWorkflow creates a booking workflow for one doctor and one patient.
func NewWorkflow(doctor models.Doctor, patient models.Identity, opts ...WorkflowOption) *Workflow {
	w := &Workflow{
		doctor:  doctor,
		patient: patient,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dates returns the pickable date options for this workflow's doctor.
func (w *Workflow) Dates() []DateOption {
	return AvailableDates(w.doctor, w.now())
}

// Submit validates the form and produces a pending Appointment. Validation
// failure returns a typed error and no partial state.
func (w *Workflow) Submit(form Form) (*models.Appointment, error) {
	if strings.TrimSpace(form.Date) == "" {
		return nil, ErrNoDateSelected
	}
	if strings.TrimSpace(form.Time) == "" {
		return nil, ErrNoTimeSelected
	}
	symptoms := splitSymptoms(form.Symptoms)
	if len(symptoms) == 0 {
		return nil, ErrNoSymptoms
	}
	if !w.dateOffered(form.Date) {
		return nil, fmt.Errorf("%w: %s", ErrDateUnavailable, form.Date)
	}
	if !slotOffered(form.Time) {
		return nil, fmt.Errorf("%w: %s", ErrTimeUnavailable, form.Time)
	}

	appt := &models.Appointment{
		ID:          w.newID(),
		PatientID:   w.patient.ID,
		PatientName: w.patient.Name,
		DoctorID:    w.doctor.ID,
		DoctorName:  w.doctor.Name,
		Date:        form.Date,
		Time:        form.Time,
		Symptoms:    symptoms,
		Status:      models.StatusPending,
		Notes:       strings.TrimSpace(form.Notes),
		CreatedAt:   w.now(),
	}
	slog.Info("Booking workflow produced appointment", "appointmentID", appt.ID, "doctorID", appt.DoctorID, "date", appt.Date, "time", appt.Time)
	return appt, nil
}

func (w *Workflow) dateOffered(date string) bool {
	for _, opt := range w.Dates() {
		if opt.Date == date {
			return true
		}
	}
	return false
}

func slotOffered(slot string) bool {
	for _, s := range timeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// splitSymptoms splits the free-text symptom field on commas and trims each
// entry, dropping empties.
func splitSymptoms(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
