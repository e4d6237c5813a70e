package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/healthdesk/healthdesk/internal/models"
)

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// doctorColumns flattens the optional doctor payload into its table columns.
func doctorColumns(u models.Identity) (specialty string, experience int) {
	if u.Doctor != nil {
		return u.Doctor.Specialty, u.Doctor.Experience
	}
	return "", 0
}

func scanIdentity(row rowScanner) (*models.Identity, error) {
	var u models.Identity
	var role, specialty string
	var experience int
	err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &u.Phone, &specialty, &experience, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan identity row: %w", err)
	}
	u.Role = models.Role(role)
	if u.Role == models.RoleDoctor {
		u.Doctor = &models.DoctorProfile{Specialty: specialty, Experience: experience}
	}
	return &u, nil
}

func scanAppointment(row rowScanner) (*models.Appointment, error) {
	var a models.Appointment
	var symptoms, status string
	err := row.Scan(&a.ID, &a.PatientID, &a.PatientName, &a.DoctorID, &a.DoctorName, &a.Date, &a.Time, &symptoms, &status, &a.Notes, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan appointment row: %w", err)
	}
	if err := json.Unmarshal([]byte(symptoms), &a.Symptoms); err != nil {
		return nil, fmt.Errorf("failed to decode symptoms for %s: %w", a.ID, err)
	}
	a.Status = models.AppointmentStatus(status)
	return &a, nil
}
