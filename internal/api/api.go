// Package api provides HTTP handlers and the main API server logic for
// HealthDesk.
//
// It exposes RESTful endpoints for identity resolution, the chat session,
// doctor recommendation, appointment booking and the role dashboards. The API
// integrates with the catalog, classifier, recommend, session, booking,
// dashboard, store and messaging modules.
package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/healthdesk/healthdesk/internal/auth"
	"github.com/healthdesk/healthdesk/internal/catalog"
	"github.com/healthdesk/healthdesk/internal/classifier"
	"github.com/healthdesk/healthdesk/internal/dashboard"
	"github.com/healthdesk/healthdesk/internal/messaging"
	"github.com/healthdesk/healthdesk/internal/models"
	"github.com/healthdesk/healthdesk/internal/recommend"
	"github.com/healthdesk/healthdesk/internal/session"
	"github.com/healthdesk/healthdesk/internal/store"
	"github.com/healthdesk/healthdesk/internal/util"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

// sessionEntry pairs a live session with its most recent recommendation
// payload, captured through the session callbacks.
type sessionEntry struct {
	sess *session.Session

	mu      sync.Mutex
	doctors []models.Doctor
}

// setDoctors stores the latest recommendation payload.
func (e *sessionEntry) setDoctors(doctors []models.Doctor) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.doctors = doctors
}

// takeDoctors returns and clears the latest recommendation payload.
func (e *sessionEntry) takeDoctors() []models.Doctor {
	e.mu.Lock()
	defer e.mu.Unlock()
	doctors := e.doctors
	e.doctors = nil
	return doctors
}

// Server holds the API collaborators and the live chat sessions.
type Server struct {
	st         store.Store
	catalog    *catalog.Catalog
	classifier *classifier.Classifier
	engine     *recommend.Engine
	auth       *auth.Provider
	dashboards *dashboard.Service
	msgService messaging.Service
	now        func() time.Time

	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

// Option configures a Server.
type Option func(*Server)

// WithClock injects the time source used for booking date windows and
// dashboards. Tests supply a fixed clock.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer creates a server over the given store, catalog and messaging
// service.
func NewServer(st store.Store, cat *catalog.Catalog, msgService messaging.Service, opts ...Option) *Server {
	s := &Server{
		st:         st,
		catalog:    cat,
		classifier: classifier.New(cat),
		engine:     recommend.NewEngine(cat.Doctors),
		auth:       auth.NewProvider(st),
		msgService: msgService,
		now:        time.Now,
		sessions:   make(map[string]*sessionEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dashboards = dashboard.NewService(st, dashboard.WithClock(s.now))
	return s
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", s.loginHandler)
	mux.HandleFunc("GET /doctors", s.doctorsHandler)
	mux.HandleFunc("GET /doctors/{id}/dates", s.doctorDatesHandler)
	mux.HandleFunc("GET /slots", s.slotsHandler)
	mux.HandleFunc("POST /sessions", s.createSessionHandler)
	mux.HandleFunc("POST /sessions/{id}/messages", s.postSessionMessageHandler)
	mux.HandleFunc("GET /sessions/{id}/messages", s.sessionHistoryHandler)
	mux.HandleFunc("DELETE /sessions/{id}", s.closeSessionHandler)
	mux.HandleFunc("POST /appointments", s.createAppointmentHandler)
	mux.HandleFunc("GET /appointments", s.listAppointmentsHandler)
	mux.HandleFunc("POST /appointments/{id}/status", s.appointmentStatusHandler)
	mux.HandleFunc("GET /dashboard/admin", s.adminDashboardHandler)
	mux.HandleFunc("GET /dashboard/doctor/{id}", s.doctorDashboardHandler)
	mux.HandleFunc("GET /dashboard/patient/{id}", s.patientDashboardHandler)
	mux.HandleFunc("GET /health", s.healthHandler)
	return mux
}

// Run starts the HTTP server on the given address and blocks.
func (s *Server) Run(addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	slog.Info("HealthDesk API running", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// openSession registers a new chat session. The HTTP surface uses zero staging
// delays so every turn is fully delivered before the handler responds.
func (s *Server) openSession() (*sessionEntry, string) {
	id := util.GenerateSessionID()
	entry := &sessionEntry{}
	entry.sess = session.New(id, s.classifier, s.engine, session.Callbacks{
		OnDoctorRecommendation: entry.setDoctors,
	}, session.WithDelays(0, 0, 0), session.WithClock(s.now))

	s.mu.Lock()
	s.sessions[id] = entry
	s.mu.Unlock()
	return entry, id
}

// lookupSession resolves a live session by id.
func (s *Server) lookupSession(id string) (*sessionEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[id]
	return entry, ok
}

// closeSession closes and removes a session. Reports whether it existed.
func (s *Server) closeSession(id string) bool {
	s.mu.Lock()
	entry, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		entry.sess.Close()
	}
	return ok
}
