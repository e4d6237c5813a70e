// Package store provides storage backends for HealthDesk.
//
// This file implements an SQLite-backed store for identities and appointments.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"

	"github.com/healthdesk/healthdesk/internal/models"
)

// DefaultDirPermissions defines the default permissions for database directories
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists the portal collections in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// AddIdentity saves a portal user.
func (s *SQLiteStore) AddIdentity(u models.Identity) error {
	if err := u.Validate(); err != nil {
		return err
	}
	specialty, experience := doctorColumns(u)
	_, err := s.db.Exec(
		`INSERT INTO identities (id, email, name, role, phone, specialty, experience, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, string(u.Role), u.Phone, specialty, experience, u.CreatedAt,
	)
	if err != nil {
		slog.Error("SQLiteStore AddIdentity failed", "error", err, "id", u.ID)
		return fmt.Errorf("failed to insert identity %s: %w", u.ID, err)
	}
	return nil
}

// GetIdentity retrieves a user by id.
func (s *SQLiteStore) GetIdentity(id string) (*models.Identity, error) {
	row := s.db.QueryRow(`SELECT id, email, name, role, phone, specialty, experience, created_at FROM identities WHERE id = ?`, id)
	return scanIdentity(row)
}

// GetIdentityByEmail retrieves a user by email.
func (s *SQLiteStore) GetIdentityByEmail(email string) (*models.Identity, error) {
	row := s.db.QueryRow(`SELECT id, email, name, role, phone, specialty, experience, created_at FROM identities WHERE email = ?`, email)
	return scanIdentity(row)
}

// ListIdentities returns all users.
func (s *SQLiteStore) ListIdentities() ([]models.Identity, error) {
	rows, err := s.db.Query(`SELECT id, email, name, role, phone, specialty, experience, created_at FROM identities ORDER BY created_at`)
	if err != nil {
		slog.Error("SQLiteStore ListIdentities query failed", "error", err)
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
func (s *SQLiteStore) AddAppointment(a models.Appointment) error {
	symptoms, err := json.Marshal(a.Symptoms)
	if err != nil {
		return fmt.Errorf("failed to encode symptoms for %s: %w", a.ID, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO appointments (id, patient_id, patient_name, doctor_id, doctor_name, date, time, symptoms, status, notes, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.PatientID, a.PatientName, a.DoctorID, a.DoctorName, a.Date, a.Time, string(symptoms), string(a.Status), a.Notes, a.CreatedAt,
	)
	if err != nil {
		slog.Error("SQLiteStore AddAppointment failed", "error", err, "id", a.ID)
		return fmt.Errorf("failed to insert appointment %s: %w", a.ID, err)
	}
	slog.Debug("SQLiteStore AddAppointment succeeded", "id", a.ID)
	return nil
}

// GetAppointment retrieves an appointment by id.
func (s *SQLiteStore) GetAppointment(id string) (*models.Appointment, error) {
	row := s.db.QueryRow(`SELECT id, patient_id, patient_name, doctor_id, doctor_name, date, time, symptoms, status, notes, created_at FROM appointments WHERE id = ?`, id)
	return scanAppointment(row)
}

// ListAppointments returns all appointments.
func (s *SQLiteStore) ListAppointments() ([]models.Appointment, error) {
	return s.queryAppointments(`SELECT id, patient_id, patient_name, doctor_id, doctor_name, date, time, symptoms, status, notes, created_at FROM appointments ORDER BY created_at`)
}

// ListAppointmentsByDoctor returns the appointments for one doctor.
func (s *SQLiteStore) ListAppointmentsByDoctor(doctorID string) ([]models.Appointment, error) {
	return s.queryAppointments(`SELECT id, patient_id, patient_name, doctor_id, doctor_name, date, time, symptoms, status, notes, created_at FROM appointments WHERE doctor_id = ? ORDER BY created_at`, doctorID)
}

// ListAppointmentsByPatient returns the appointments for one patient.
func (s *SQLiteStore) ListAppointmentsByPatient(patientID string) ([]models.Appointment, error) {
	return s.queryAppointments(`SELECT id, patient_id, patient_name, doctor_id, doctor_name, date, time, symptoms, status, notes, created_at FROM appointments WHERE patient_id = ? ORDER BY created_at`, patientID)
}

// UpdateAppointmentStatus transitions an appointment through the state machine.
// The current status is read first so the transition is validated before any
// write happens.
func (s *SQLiteStore) UpdateAppointmentStatus(id string, to models.AppointmentStatus) error {
	appt, err := s.GetAppointment(id)
	if err != nil {
		return err
	}
	if err := appt.Transition(to); err != nil {
		slog.Warn("SQLiteStore UpdateAppointmentStatus rejected", "id", id, "to", to, "error", err)
		return err
	}
	if _, err := s.db.Exec(`UPDATE appointments SET status = ? WHERE id = ?`, string(to), id); err != nil {
		slog.Error("SQLiteStore UpdateAppointmentStatus failed", "error", err, "id", id)
		return fmt.Errorf("failed to update appointment %s: %w", id, err)
	}
	slog.Info("SQLiteStore UpdateAppointmentStatus succeeded", "id", id, "to", to)
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) queryAppointments(query string, args ...interface{}) ([]models.Appointment, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		slog.Error("SQLiteStore appointment query failed", "error", err)
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
