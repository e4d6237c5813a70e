// Package store provides storage backends for HealthDesk.
//
// This file implements a PostgreSQL-backed store for identities and appointments.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "embed"

	_ "github.com/lib/pq"

	"github.com/healthdesk/healthdesk/internal/models"
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists the portal collections in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL store with the given DSN.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

// AddIdentity saves a portal user.
func (s *PostgresStore) AddIdentity(u models.Identity) error {
	if err := u.Validate(); err != nil {
		return err
	}
	specialty, experience := doctorColumns(u)
	_, err := s.db.Exec(
		`INSERT INTO identities (id, email, name, role, phone, specialty, experience, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Email, u.Name, string(u.Role), u.Phone, specialty, experience, u.CreatedAt,
	)
	if err != nil {
		slog.Error("PostgresStore AddIdentity failed", "error", err, "id", u.ID)
		return fmt.Errorf("failed to insert identity %s: %w", u.ID, err)
	}
	return nil
}

// GetIdentity retrieves a user by id.
func (s *PostgresStore) GetIdentity(id string) (*models.Identity, error) {
	row := s.db.QueryRow(`SELECT id, email, name, role, phone, specialty, experience, created_at FROM identities WHERE id = $1`, id)
	return scanIdentity(row)
}

// GetIdentityByEmail retrieves a user by email.
func (s *PostgresStore) GetIdentityByEmail(email string) (*models.Identity, error) {
	row := s.db.QueryRow(`SELECT id, email, name, role, phone, specialty, experience, created_at FROM identities WHERE email = $1`, email)
	return scanIdentity(row)
}

// ListIdentities returns all users.
func (s *PostgresStore) ListIdentities() ([]models.Identity, error) {
	rows, err := s.db.Query(`SELECT id, email, name, role, phone, specialty, experience, created_at FROM identities ORDER BY created_at`)
	if err != nil {
		slog.Error("PostgresStore ListIdentities query failed", "error", err)
		return nil, fmt.Errorf("failed to query identities: %w", err)
	}
	defer rows.Close()

	var out []models.Identity
	for rows.Next() {
		u, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate identity rows: %w", err)
	}
	return out, nil
}

// AddAppointment saves a freshly booked appointment.
func (s *PostgresStore) AddAppointment(a models.Appointment) error {
	symptoms, err := json.Marshal(a.Symptoms)
	if err != nil {
		return fmt.Errorf("failed to encode symptoms for %s: %w", a.ID, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO appointments (id, patient_id, patient_name, doctor_id, doctor_name, date, time, symptoms, status, notes, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.PatientID, a.PatientName, a.DoctorID, a.DoctorName, a.Date, a.Time, string(symptoms), string(a.Status), a.Notes, a.CreatedAt,
	)
	if err != nil {
		slog.Error("PostgresStore AddAppointment failed", "error", err, "id", a.ID)
		return fmt.Errorf("failed to insert appointment %s: %w", a.ID, err)
	}
	return nil
}

// GetAppointment retrieves an appointment by id.
func (s *PostgresStore) GetAppointment(id string) (*models.Appointment, error) {
	row := s.db.QueryRow(`SELECT id, patient_id, patient_name, doctor_id, doctor_name, date, time, symptoms, status, notes, created_at FROM appointments WHERE id = $1`, id)
	return scanAppointment(row)
}

// ListAppointments returns all appointments.
func (s *PostgresStore) ListAppointments() ([]models.Appointment, error) {
	return s.queryAppointments(`SELECT id, patient_id, patient_name, doctor_id, doctor_name, date, time, symptoms, status, notes, created_at FROM appointments ORDER BY created_at`)
}

// ListAppointmentsByDoctor returns the appointments for one doctor.
func (s *PostgresStore) ListAppointmentsByDoctor(doctorID string) ([]models.Appointment, error) {
	return s.queryAppointments(`SELECT id, patient_id, patient_name, doctor_id, doctor_name, date, time, symptoms, status, notes, created_at FROM appointments WHERE doctor_id = $1 ORDER BY created_at`, doctorID)
}

// ListAppointmentsByPatient returns the appointments for one patient.
func (s *PostgresStore) ListAppointmentsByPatient(patientID string) ([]models.Appointment, error) {
	return s.queryAppointments(`SELECT id, patient_id, patient_name, doctor_id, doctor_name, date, time, symptoms, status, notes, created_at FROM appointments WHERE patient_id = $1 ORDER BY created_at`, patientID)
}

// UpdateAppointmentStatus transitions an appointment through the state machine.
func (s *PostgresStore) UpdateAppointmentStatus(id string, to models.AppointmentStatus) error {
	appt, err := s.GetAppointment(id)
	if err != nil {
		return err
	}
	if err := appt.Transition(to); err != nil {
		slog.Warn("PostgresStore UpdateAppointmentStatus rejected", "id", id, "to", to, "error", err)
		return err
	}
	if _, err := s.db.Exec(`UPDATE appointments SET status = $1 WHERE id = $2`, string(to), id); err != nil {
		slog.Error("PostgresStore UpdateAppointmentStatus failed", "error", err, "id", id)
		return fmt.Errorf("failed to update appointment %s: %w", id, err)
	}
	return nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) queryAppointments(query string, args ...interface{}) ([]models.Appointment, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		slog.Error("PostgresStore appointment query failed", "error", err)
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer rows.Close()

	var out []models.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate appointment rows: %w", err)
	}
	return out, nil
}
