// Package dashboard aggregates store state into the read-side views of the
// patient, doctor and admin dashboards. Pure aggregation; mutations go
// through the API and the store's status machine.
package dashboard

import (
	"fmt"
	"time"

	"github.com/healthdesk/healthdesk/internal/models"
	"github.com/healthdesk/healthdesk/internal/store"
)

// PatientSummary is the patient dashboard view.
type PatientSummary struct {
	Pending      int                  `json:"pending"`
	Confirmed    int                  `json:"confirmed"`
	Completed    int                  `json:"completed"`
	Appointments []models.Appointment `json:"appointments"`
}

// DoctorSummary is the doctor dashboard view.
type DoctorSummary struct {
	Today        int                  `json:"today"`
	Pending      int                  `json:"pending"`
	Confirmed    int                  `json:"confirmed"`
	Total        int                  `json:"total"`
	Appointments []models.Appointment `json:"appointments"`
}

// AdminSummary is the admin dashboard view.
type AdminSummary struct {
	TotalUsers          int                  `json:"total_users"`
	TotalPatients       int                  `json:"total_patients"`
	TotalDoctors        int                  `json:"total_doctors"`
	TotalAppointments   int                  `json:"total_appointments"`
	PendingAppointments int                  `json:"pending_appointments"`
	Users               []models.Identity    `json:"users"`
	Appointments        []models.Appointment `json:"appointments"`
}

// Service builds dashboard summaries over a store.
type Service struct {
	store store.Store
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock injects the timestamp source used for "today" calculations.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a dashboard service over the given store.
func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{store: st, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Patient builds the dashboard view for one patient.
func (s *Service) Patient(patientID string) (*PatientSummary, error) {
	appts, err := s.store.ListAppointmentsByPatient(patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load patient appointments: %w", err)
	}
	sum := &PatientSummary{Appointments: appts}
	for _, a := range appts {
		switch a.Status {
		case models.StatusPending:
			sum.Pending++
		case models.StatusConfirmed:
			sum.Confirmed++
		case models.StatusCompleted:
			sum.Completed++
		}
	}
	return sum, nil
}

// Doctor builds the dashboard view for one doctor.
func (s *Service) Doctor(doctorID string) (*DoctorSummary, error) {
	appts, err := s.store.ListAppointmentsByDoctor(doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load doctor appointments: %w", err)
	}
	today := s.now().Format("2006-01-02")
	sum := &DoctorSummary{Total: len(appts), Appointments: appts}
	for _, a := range appts {
		if a.Date == today {
			sum.Today++
		}
		switch a.Status {
		case models.StatusPending:
			sum.Pending++
		case models.StatusConfirmed:
			sum.Confirmed++
		}
	}
	return sum, nil
}

// Admin builds the portal-wide dashboard view.
func (s *Service) Admin() (*AdminSummary, error) {
	users, err := s.store.ListIdentities()
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	appts, err := s.store.ListAppointments()
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}

	sum := &AdminSummary{
		TotalUsers:        len(users),
		TotalAppointments: len(appts),
		Users:             users,
		Appointments:      appts,
	}
	for _, u := range users {
		switch u.Role {
		case models.RolePatient:
			sum.TotalPatients++
		case models.RoleDoctor:
			sum.TotalDoctors++
		}
	}
	for _, a := range appts {
		if a.Status == models.StatusPending {
			sum.PendingAppointments++
		}
	}
	return sum, nil
}
