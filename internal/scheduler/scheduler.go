// Package scheduler provides cron-based background jobs for HealthDesk,
// such as sending appointment reminders the evening before a visit.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/healthdesk/healthdesk/internal/messaging"
	"github.com/healthdesk/healthdesk/internal/models"
	"github.com/healthdesk/healthdesk/internal/store"
)

// DefaultReminderCron fires daily at 18:00 server time.
const DefaultReminderCron = "0 18 * * *"

// Scheduler provides cron-based job scheduling.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates and starts a cron scheduler.
func NewScheduler() *Scheduler {
	// Use standard 5-field cron parser (min, hour, dom, month, dow) and enable recovery
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	c.Start()
	return &Scheduler{cron: c}
}

// AddJob schedules a task using the provided cron expression.
// It returns an error if the expression is invalid.
func (s *Scheduler) AddJob(expr string, task func()) error {
	_, err := s.cron.AddFunc(expr, task)
	return err
}

// Stop stops the cron scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// ReminderJob sends a reminder notification to each patient with a confirmed
// appointment scheduled for the following day.
type ReminderJob struct {
	store     store.Store
	messenger messaging.Service
	now       func() time.Time
}

// ReminderOption configures a ReminderJob.
type ReminderOption func(*ReminderJob)

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) ReminderOption {
	return func(j *ReminderJob) {
		j.now = now
	}
}

// NewReminderJob creates a reminder job over a store and messaging service.
func NewReminderJob(st store.Store, messenger messaging.Service, opts ...ReminderOption) *ReminderJob {
	j := &ReminderJob{
		store:     st,
		messenger: messenger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Run scans for confirmed appointments dated tomorrow and sends one reminder
// per appointment. Delivery failures are logged and do not abort the scan.
func (j *ReminderJob) Run(ctx context.Context) error {
	tomorrow := j.now().AddDate(0, 0, 1).Format("2006-01-02")
	appointments, err := j.store.ListAppointments()
	if err != nil {
		return fmt.Errorf("failed to list appointments for reminders: %w", err)
	}

	sent := 0
	for _, appt := range appointments {
		if appt.Status != models.StatusConfirmed || appt.Date != tomorrow {
			continue
		}
		identity, err := j.store.GetIdentity(appt.PatientID)
		if err != nil {
			slog.Warn("ReminderJob skipping appointment, patient lookup failed", "appointmentID", appt.ID, "patientID", appt.PatientID, "error", err)
			continue
		}
		if identity.Phone == "" {
			slog.Debug("ReminderJob skipping patient without phone", "patientID", identity.ID)
			continue
		}
		body := fmt.Sprintf("Reminder: you have an appointment with %s tomorrow (%s) at %s.", appt.DoctorName, appt.Date, appt.Time)
		if err := j.messenger.SendMessage(ctx, identity.Phone, body); err != nil {
			slog.Error("ReminderJob failed to send reminder", "appointmentID", appt.ID, "to", identity.Phone, "error", err)
			continue
		}
		sent++
	}
	slog.Info("ReminderJob completed", "date", tomorrow, "sent", sent)
	return nil
}
