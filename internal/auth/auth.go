// Package auth supplies the identity collaborator for HealthDesk.
//
// It resolves demo identities against the store; there is no real
// authentication. The resolved Identity value is passed explicitly into the
// booking workflow and dashboards, never held as ambient global state.
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/healthdesk/healthdesk/internal/models"
	"github.com/healthdesk/healthdesk/internal/store"
)

// DemoPassword is the shared password of the seeded demo accounts.
const DemoPassword = "demo123"

// ErrInvalidCredentials is returned when email or password do not match.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Provider resolves identities from the store.
type Provider struct {
	store store.Store
}

// NewProvider creates an identity provider over the given store.
func NewProvider(st store.Store) *Provider {
	return &Provider{store: st}
}

// SeedDemoUsers inserts the three demo accounts (patient, doctor, admin) into
// an empty store. Safe to skip when users already exist.
func SeedDemoUsers(st store.Store) error {
	existing, err := st.ListIdentities()
	if err != nil {
		return fmt.Errorf("failed to check existing users: %w", err)
	}
	if len(existing) > 0 {
		slog.Debug("SeedDemoUsers skipped, users already present", "count", len(existing))
		return nil
	}
	for _, u := range DemoUsers() {
		if err := st.AddIdentity(u); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.ID, err)
		}
	}
	slog.Info("Seeded demo users", "count", len(DemoUsers()))
	return nil
}

// DemoUsers returns the built-in demo accounts.
func DemoUsers() []models.Identity {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []models.Identity{
		{
			ID:        "1",
			Email:     "patient@demo.com",
			Name:      "John Smith",
			Role:      models.RolePatient,
			Phone:     "+1234567890",
			CreatedAt: created,
		},
		{
			ID:    "2",
			Email: "doctor@demo.com",
			Name:  "Dr. Sarah Johnson",
			Role:  models.RoleDoctor,
			Phone: "+1234567891",
			Doctor: &models.DoctorProfile{
				Specialty:  "General Medicine",
				Experience: 8,
			},
			CreatedAt: created,
		},
		{
			ID:        "3",
			Email:     "admin@demo.com",
			Name:      "Admin User",
			Role:      models.RoleAdmin,
			CreatedAt: created,
		},
	}
}

// Login resolves an identity by email and the demo password.
func (p *Provider) Login(email, password string) (*models.Identity, error) {
	if password != DemoPassword {
		return nil, ErrInvalidCredentials
	}
	u, err := p.store.GetIdentityByEmail(email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve identity: %w", err)
	}
	slog.Info("Identity resolved", "id", u.ID, "role", u.Role)
	return u, nil
}

// GetByID resolves an identity by id.
func (p *Provider) GetByID(id string) (*models.Identity, error) {
	return p.store.GetIdentity(id)
}
