package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/healthdesk/healthdesk/internal/auth"
	"github.com/healthdesk/healthdesk/internal/booking"
	"github.com/healthdesk/healthdesk/internal/models"
	"github.com/healthdesk/healthdesk/internal/store"
)

// loginRequest is the POST /login payload.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginHandler resolves a demo identity (POST /login).
func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.loginHandler: processing login request", "method", r.Method, "path", r.URL.Path)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.loginHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	identity, err := s.auth.Login(req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		slog.Warn("Server.loginHandler: invalid credentials", "email", req.Email)
		writeJSONResponse(w, http.StatusUnauthorized, models.Error("Invalid email or password"))
		return
	}
	if err != nil {
		slog.Error("Server.loginHandler: identity lookup failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to resolve identity"))
		return
	}
	slog.Info("Server.loginHandler: login succeeded", "id", identity.ID, "role", identity.Role)
	writeJSONResponse(w, http.StatusOK, models.Success(identity))
}

// doctorsHandler returns the doctor registry (GET /doctors).
func (s *Server) doctorsHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.doctorsHandler: listing doctors", "count", len(s.catalog.Doctors))
	writeJSONResponse(w, http.StatusOK, models.Success(s.catalog.Doctors))
}

// doctorDatesHandler returns the pickable booking dates for one doctor
// (GET /doctors/{id}/dates).
func (s *Server) doctorDatesHandler(w http.ResponseWriter, r *http.Request) {
	doctorID := r.PathValue("id")
	doctor, ok := s.catalog.DoctorByID(doctorID)
	if !ok {
		slog.Warn("Server.doctorDatesHandler: unknown doctor", "doctorID", doctorID)
		writeJSONResponse(w, http.StatusNotFound, models.Error("Doctor not found"))
		return
	}
	dates := booking.AvailableDates(*doctor, s.now())
	slog.Debug("Server.doctorDatesHandler: dates computed", "doctorID", doctorID, "count", len(dates))
	writeJSONResponse(w, http.StatusOK, models.Success(dates))
}

// slotsHandler returns the fixed clinic time slots (GET /slots).
func (s *Server) slotsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, models.Success(booking.TimeSlots()))
}

// adminDashboardHandler returns the admin summary (GET /dashboard/admin).
func (s *Server) adminDashboardHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := s.dashboards.Admin()
	if err != nil {
		slog.Error("Server.adminDashboardHandler: aggregation failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to build dashboard"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(summary))
}

// doctorDashboardHandler returns one doctor's summary
// (GET /dashboard/doctor/{id}).
func (s *Server) doctorDashboardHandler(w http.ResponseWriter, r *http.Request) {
	doctorID := r.PathValue("id")
	summary, err := s.dashboards.Doctor(doctorID)
	if err != nil {
		slog.Error("Server.doctorDashboardHandler: aggregation failed", "doctorID", doctorID, "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to build dashboard"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(summary))
}

// patientDashboardHandler returns one patient's summary
// (GET /dashboard/patient/{id}).
func (s *Server) patientDashboardHandler(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	if _, err := s.st.GetIdentity(patientID); errors.Is(err, store.ErrNotFound) {
		slog.Warn("Server.patientDashboardHandler: unknown patient", "patientID", patientID)
		writeJSONResponse(w, http.StatusNotFound, models.Error("Patient not found"))
		return
	}
	summary, err := s.dashboards.Patient(patientID)
	if err != nil {
		slog.Error("Server.patientDashboardHandler: aggregation failed", "patientID", patientID, "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to build dashboard"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(summary))
}

// healthHandler provides a health check endpoint for monitoring and load balancing
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]interface{}{
		"status":    "healthy",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	}

	s.mu.RLock()
	healthData["active_sessions"] = len(s.sessions)
	s.mu.RUnlock()

	if _, err := s.st.ListIdentities(); err != nil {
		slog.Warn("Health check: store probe failed", "error", err)
		healthData["status"] = "degraded"
		healthData["error"] = "Store unavailable"
		writeJSONResponse(w, http.StatusServiceUnavailable, healthData)
		return
	}

	writeJSONResponse(w, http.StatusOK, healthData)
}
