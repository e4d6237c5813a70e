// Package store provides storage backends for HealthDesk.
//
// It includes an in-memory store for demo deployments and SQLite/PostgreSQL
// backends for persistent installs. Every backend enforces the appointment
// status state machine inside UpdateAppointmentStatus.
package store

import (
	"errors"

	"github.com/healthdesk/healthdesk/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the persistence surface shared by all backends.
type Store interface {
	// AddIdentity saves a portal user.
	AddIdentity(u models.Identity) error

	// GetIdentity retrieves a user by id. Returns ErrNotFound if absent.
	GetIdentity(id string) (*models.Identity, error)

	// GetIdentityByEmail retrieves a user by email. Returns ErrNotFound if absent.
	GetIdentityByEmail(email string) (*models.Identity, error)

	// ListIdentities returns all users in insertion order.
	ListIdentities() ([]models.Identity, error)

	// AddAppointment saves a freshly booked appointment.
	AddAppointment(a models.Appointment) error

	// GetAppointment retrieves an appointment by id. Returns ErrNotFound if absent.
	GetAppointment(id string) (*models.Appointment, error)

	// ListAppointments returns all appointments in insertion order.
	ListAppointments() ([]models.Appointment, error)

	// ListAppointmentsByDoctor returns the appointments for one doctor.
	ListAppointmentsByDoctor(doctorID string) ([]models.Appointment, error)

	// ListAppointmentsByPatient returns the appointments for one patient.
	ListAppointmentsByPatient(patientID string) ([]models.Appointment, error)

	// UpdateAppointmentStatus transitions an appointment, enforcing the
	// status state machine. Illegal transitions are rejected with
	// models.ErrInvalidTransition and leave the record untouched.
	UpdateAppointmentStatus(id string, to models.AppointmentStatus) error

	// Close releases backend resources.
	Close() error
}

// Driver names for store selection.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Opts holds configuration options for store backends.
type Opts struct {
	Driver string
	DSN    string
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithDriver selects the backend driver (memory, sqlite3, postgres).
func WithDriver(driver string) Option {
	return func(o *Opts) { o.Driver = driver }
}

// WithDSN sets the data source name (file path for SQLite, URL for Postgres).
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// NewStore creates a store for the configured driver. The in-memory backend
// is the default.
func NewStore(opts ...Option) (Store, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}

	switch cfg.Driver {
	case "", DriverMemory:
		return NewInMemoryStore(), nil
	case DriverSQLite:
		return NewSQLiteStore(opts...)
	case DriverPostgres:
		return NewPostgresStore(opts...)
	default:
		return nil, errors.New("unknown store driver: " + cfg.Driver)
	}
}
