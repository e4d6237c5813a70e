package store

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/healthdesk/healthdesk/internal/models"
)

// InMemoryStore is the default backend for demo deployments. All collections
// are guarded by a single mutex.
type InMemoryStore struct {
	mu           sync.RWMutex
	identities   []models.Identity
	appointments []models.Appointment
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	slog.Debug("Creating InMemoryStore")
	return &InMemoryStore{}
}

// AddIdentity saves a portal user.
func (s *InMemoryStore) AddIdentity(u models.Identity) error {
	if err := u.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.identities {
		if existing.ID == u.ID {
			return fmt.Errorf("identity %s already exists", u.ID)
		}
	}
	s.identities = append(s.identities, u)
	return nil
}

// GetIdentity retrieves a user by id.
func (s *InMemoryStore) GetIdentity(id string) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.identities {
		if s.identities[i].ID == id {
			u := s.identities[i]
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

// GetIdentityByEmail retrieves a user by email.
func (s *InMemoryStore) GetIdentityByEmail(email string) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.identities {
		if s.identities[i].Email == email {
			u := s.identities[i]
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

// ListIdentities returns all users in insertion order.
func (s *InMemoryStore) ListIdentities() ([]models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Identity, len(s.identities))
	copy(out, s.identities)
	return out, nil
}

// AddAppointment saves a freshly booked appointment.
func (s *InMemoryStore) AddAppointment(a models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.appointments {
		if existing.ID == a.ID {
			return fmt.Errorf("appointment %s already exists", a.ID)
		}
	}
	s.appointments = append(s.appointments, a)
	slog.Debug("InMemoryStore AddAppointment succeeded", "id", a.ID, "doctorID", a.DoctorID)
	return nil
}

// GetAppointment retrieves an appointment by id.
func (s *InMemoryStore) GetAppointment(id string) (*models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.appointments {
		if s.appointments[i].ID == id {
			a := s.appointments[i]
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

// ListAppointments returns all appointments in insertion order.
func (s *InMemoryStore) ListAppointments() ([]models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Appointment, len(s.appointments))
	copy(out, s.appointments)
	return out, nil
}

// ListAppointmentsByDoctor returns the appointments for one doctor.
func (s *InMemoryStore) ListAppointmentsByDoctor(doctorID string) ([]models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Appointment
	for _, a := range s.appointments {
		if a.DoctorID == doctorID {
			out = append(out, a)
		}
	}
	return out, nil
}

// ListAppointmentsByPatient returns the appointments for one patient.
func (s *InMemoryStore) ListAppointmentsByPatient(patientID string) ([]models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Appointment
	for _, a := range s.appointments {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

// UpdateAppointmentStatus transitions an appointment through the state machine.
func (s *InMemoryStore) UpdateAppointmentStatus(id string, to models.AppointmentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.appointments {
		if s.appointments[i].ID == id {
			if err := s.appointments[i].Transition(to); err != nil {
				slog.Warn("InMemoryStore UpdateAppointmentStatus rejected", "id", id, "to", to, "error", err)
				return err
			}
			slog.Info("InMemoryStore UpdateAppointmentStatus succeeded", "id", id, "to", to)
			return nil
		}
	}
	return ErrNotFound
}

// Close is a no-op for the in-memory backend.
func (s *InMemoryStore) Close() error {
	return nil
}
