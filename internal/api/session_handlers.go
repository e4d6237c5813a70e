package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/healthdesk/healthdesk/internal/models"
	"github.com/healthdesk/healthdesk/internal/session"
)

// sessionCreatedResult is the POST /sessions response payload.
type sessionCreatedResult struct {
	SessionID string               `json:"session_id"`
	Messages  []models.ChatMessage `json:"messages"`
}

// chatMessageRequest is the POST /sessions/{id}/messages payload.
type chatMessageRequest struct {
	Text string `json:"text"`
}

// chatTurnResult carries the messages delivered during one turn plus the
// structured doctor recommendations, if the turn produced any.
type chatTurnResult struct {
	Messages []models.ChatMessage `json:"messages"`
	Doctors  []models.Doctor      `json:"doctors,omitempty"`
}

// createSessionHandler opens a new chat session (POST /sessions). The response
// includes the assistant greeting.
func (s *Server) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	entry, id := s.openSession()
	slog.Info("Server.createSessionHandler: session opened", "sessionID", id)
	writeJSONResponse(w, http.StatusCreated, models.Success(sessionCreatedResult{
		SessionID: id,
		Messages:  entry.sess.History(),
	}))
}

// postSessionMessageHandler advances one conversation turn
// (POST /sessions/{id}/messages). Staged bot events are delivered inline, so
// the response carries the complete turn.
func (s *Server) postSessionMessageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	sessionID := r.PathValue("id")
	entry, ok := s.lookupSession(sessionID)
	if !ok {
		slog.Warn("Server.postSessionMessageHandler: unknown session", "sessionID", sessionID)
		writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
		return
	}

	var req chatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.postSessionMessageHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	before := len(entry.sess.History())
	err := entry.sess.HandleMessage(req.Text)
	switch {
	case errors.Is(err, models.ErrEmptyMessage), errors.Is(err, models.ErrMessageTooLong):
		slog.Warn("Server.postSessionMessageHandler: message rejected", "sessionID", sessionID, "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	case errors.Is(err, session.ErrTurnInFlight):
		slog.Warn("Server.postSessionMessageHandler: turn in flight", "sessionID", sessionID)
		writeJSONResponse(w, http.StatusConflict, models.Error("Previous turn still being delivered"))
		return
	case errors.Is(err, session.ErrSessionClosed):
		writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
		return
	case err != nil:
		slog.Error("Server.postSessionMessageHandler: turn failed", "sessionID", sessionID, "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to process message"))
		return
	}

	history := entry.sess.History()
	result := chatTurnResult{
		Messages: history[before:],
		Doctors:  entry.takeDoctors(),
	}
	slog.Debug("Server.postSessionMessageHandler: turn completed", "sessionID", sessionID, "messages", len(result.Messages), "doctors", len(result.Doctors))
	writeJSONResponse(w, http.StatusOK, models.Success(result))
}

// sessionHistoryHandler returns the full message history in delivery order
// (GET /sessions/{id}/messages).
func (s *Server) sessionHistoryHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	entry, ok := s.lookupSession(sessionID)
	if !ok {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(entry.sess.History()))
}

// closeSessionHandler discards a session (DELETE /sessions/{id}).
func (s *Server) closeSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if !s.closeSession(sessionID) {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
		return
	}
	slog.Info("Server.closeSessionHandler: session closed", "sessionID", sessionID)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Session closed", nil))
}
