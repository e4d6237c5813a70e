package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/healthdesk/healthdesk/internal/booking"
	"github.com/healthdesk/healthdesk/internal/models"
	"github.com/healthdesk/healthdesk/internal/store"
)

// DefaultNotificationTimeout bounds outbound notification delivery.
const DefaultNotificationTimeout = 10 * time.Second

// bookingRequest is the POST /appointments payload.
type bookingRequest struct {
	DoctorID  string `json:"doctor_id"`
	PatientID string `json:"patient_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Symptoms  string `json:"symptoms"`
	Notes     string `json:"notes,omitempty"`
}

// statusRequest is the POST /appointments/{id}/status payload.
type statusRequest struct {
	Status models.AppointmentStatus `json:"status"`
}

// createAppointmentHandler validates a booking submission and persists the
// pending appointment (POST /appointments).
func (s *Server) createAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.createAppointmentHandler: processing booking", "method", r.Method, "path", r.URL.Path)

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.createAppointmentHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	doctor, ok := s.catalog.DoctorByID(req.DoctorID)
	if !ok {
		slog.Warn("Server.createAppointmentHandler: unknown doctor", "doctorID", req.DoctorID)
		writeJSONResponse(w, http.StatusNotFound, models.Error("Doctor not found"))
		return
	}
	patient, err := s.st.GetIdentity(req.PatientID)
	if errors.Is(err, store.ErrNotFound) {
		slog.Warn("Server.createAppointmentHandler: unknown patient", "patientID", req.PatientID)
		writeJSONResponse(w, http.StatusNotFound, models.Error("Patient not found"))
		return
	}
	if err != nil {
		slog.Error("Server.createAppointmentHandler: patient lookup failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to resolve patient"))
		return
	}

	workflow := booking.NewWorkflow(*doctor, *patient, booking.WithClock(s.now))
	appt, err := workflow.Submit(booking.Form{
		Date:     req.Date,
		Time:     req.Time,
		Symptoms: req.Symptoms,
		Notes:    req.Notes,
	})
	if err != nil {
		slog.Warn("Server.createAppointmentHandler: validation failed", "error", err, "doctorID", req.DoctorID)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	if err := s.st.AddAppointment(*appt); err != nil {
		slog.Error("Server.createAppointmentHandler: failed to persist appointment", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to store appointment"))
		return
	}
	slog.Info("Server.createAppointmentHandler: appointment booked", "appointmentID", appt.ID, "doctorID", appt.DoctorID, "date", appt.Date, "time", appt.Time)
	writeJSONResponse(w, http.StatusCreated, models.SuccessWithMessage("Appointment booked successfully", appt))
}

// listAppointmentsHandler returns appointments, optionally filtered by
// doctor_id or patient_id (GET /appointments).
func (s *Server) listAppointmentsHandler(w http.ResponseWriter, r *http.Request) {
	doctorID := r.URL.Query().Get("doctor_id")
	patientID := r.URL.Query().Get("patient_id")

	var (
		appointments []models.Appointment
		err          error
	)
	switch {
	case doctorID != "":
		appointments, err = s.st.ListAppointmentsByDoctor(doctorID)
	case patientID != "":
		appointments, err = s.st.ListAppointmentsByPatient(patientID)
	default:
		appointments, err = s.st.ListAppointments()
	}
	if err != nil {
		slog.Error("Server.listAppointmentsHandler: listing failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch appointments"))
		return
	}
	slog.Debug("Server.listAppointmentsHandler: appointments fetched", "count", len(appointments))
	writeJSONResponse(w, http.StatusOK, models.Success(appointments))
}

// appointmentStatusHandler transitions an appointment through the status
// state machine (POST /appointments/{id}/status). Confirmation triggers a
// notification to the patient.
func (s *Server) appointmentStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	appointmentID := r.PathValue("id")

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.appointmentStatusHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if !models.IsValidAppointmentStatus(req.Status) {
		slog.Warn("Server.appointmentStatusHandler: unknown status", "status", req.Status)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Unknown appointment status"))
		return
	}

	err := s.st.UpdateAppointmentStatus(appointmentID, req.Status)
	switch {
	case errors.Is(err, store.ErrNotFound):
		slog.Warn("Server.appointmentStatusHandler: appointment not found", "appointmentID", appointmentID)
		writeJSONResponse(w, http.StatusNotFound, models.Error("Appointment not found"))
		return
	case errors.Is(err, models.ErrInvalidTransition), errors.Is(err, models.ErrInvalidStatus):
		slog.Warn("Server.appointmentStatusHandler: transition rejected", "appointmentID", appointmentID, "to", req.Status, "error", err)
		writeJSONResponse(w, http.StatusConflict, models.Error(err.Error()))
		return
	case err != nil:
		slog.Error("Server.appointmentStatusHandler: update failed", "appointmentID", appointmentID, "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to update appointment"))
		return
	}

	appt, err := s.st.GetAppointment(appointmentID)
	if err != nil {
		slog.Error("Server.appointmentStatusHandler: reload failed", "appointmentID", appointmentID, "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch appointment"))
		return
	}

	if req.Status == models.StatusConfirmed {
		s.notifyConfirmation(appt)
	}

	slog.Info("Server.appointmentStatusHandler: status updated", "appointmentID", appointmentID, "status", req.Status)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Appointment status updated", appt))
}

// notifyConfirmation sends a confirmation notification to the patient.
// Delivery failure is logged, never surfaced to the caller: the transition
// has already been committed.
func (s *Server) notifyConfirmation(appt *models.Appointment) {
	patient, err := s.st.GetIdentity(appt.PatientID)
	if err != nil {
		slog.Warn("Server.notifyConfirmation: patient lookup failed", "appointmentID", appt.ID, "patientID", appt.PatientID, "error", err)
		return
	}
	if patient.Phone == "" {
		slog.Debug("Server.notifyConfirmation: patient has no phone", "patientID", patient.ID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultNotificationTimeout)
	defer cancel()

	body := fmt.Sprintf("Your appointment with %s on %s at %s has been confirmed.", appt.DoctorName, appt.Date, appt.Time)
	if err := s.msgService.SendMessage(ctx, patient.Phone, body); err != nil {
		slog.Error("Server.notifyConfirmation: failed to send notification", "appointmentID", appt.ID, "to", patient.Phone, "error", err)
		return
	}
	slog.Info("Server.notifyConfirmation: confirmation sent", "appointmentID", appt.ID)
}
