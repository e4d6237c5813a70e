// Package models defines appointment structures and the status state machine.
package models

import (
	"fmt"
	"time"
)

// AppointmentStatus represents the lifecycle state of an appointment.
type AppointmentStatus string

const (
	// StatusPending is the initial state of every booked appointment.
	StatusPending AppointmentStatus = "pending"
	// StatusConfirmed means the doctor accepted the appointment.
	StatusConfirmed AppointmentStatus = "confirmed"
	// StatusCancelled means the appointment was declined. Terminal.
	StatusCancelled AppointmentStatus = "cancelled"
	// StatusCompleted means the visit took place. Terminal.
	StatusCompleted AppointmentStatus = "completed"
)

// IsValidAppointmentStatus checks if the given status is supported.
func IsValidAppointmentStatus(s AppointmentStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

// statusTransitions enumerates the allowed transitions:
// pending -> {confirmed, cancelled}, confirmed -> {completed}.
var statusTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted},
}

// CanTransition reports whether moving from one status to another is allowed.
func CanTransition(from, to AppointmentStatus) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Appointment is the record produced by the booking workflow. Status is only
// mutated through Transition by explicit doctor/admin action.
type Appointment struct {
	ID          string            `json:"id"`
	PatientID   string            `json:"patient_id"`
	PatientName string            `json:"patient_name"`
	DoctorID    string            `json:"doctor_id"`
	DoctorName  string            `json:"doctor_name"`
	Date        string            `json:"date"` // calendar date, YYYY-MM-DD
	Time        string            `json:"time"` // slot string, e.g. "09:30"
	Symptoms    []string          `json:"symptoms"`
	Status      AppointmentStatus `json:"status"`
	Notes       string            `json:"notes,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Transition moves the appointment to a new status, verifying the move against
// the state machine. The appointment is left untouched on rejection.
func (a *Appointment) Transition(to AppointmentStatus) error {
	if !IsValidAppointmentStatus(to) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	if !CanTransition(a.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, to)
	}
	a.Status = to
	return nil
}
