package scheduler

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/healthdesk/healthdesk/internal/messaging"
	"github.com/healthdesk/healthdesk/internal/models"
	"github.com/healthdesk/healthdesk/internal/store"
	"github.com/healthdesk/healthdesk/internal/twiliosms"
)

func TestSchedulerAddJob(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()
	// Should add a valid cron job without error
	if err := s.AddJob("* * * * *", func() {}); err != nil {
		t.Errorf("Expected no error adding job, got %v", err)
	}
}

func TestSchedulerAddJobInvalidExpression(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()
	if err := s.AddJob("not a cron expr", func() {}); err == nil {
		t.Error("Expected error for invalid cron expression")
	}
}

func TestReminderJobSendsForTomorrowConfirmed(t *testing.T) {
	st := store.NewInMemoryStore()
	if err := st.AddIdentity(models.Identity{ID: "p1", Email: "p1@example.com", Name: "Pat One", Role: models.RolePatient, Phone: "+15551234567"}); err != nil {
		t.Fatalf("AddIdentity failed: %v", err)
	}
	if err := st.AddIdentity(models.Identity{ID: "p2", Email: "p2@example.com", Name: "Pat Two", Role: models.RolePatient}); err != nil {
		t.Fatalf("AddIdentity failed: %v", err)
	}

	now := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	appointments := []models.Appointment{
		{ID: "a1", PatientID: "p1", DoctorID: "doc_1", DoctorName: "Dr. Sarah Johnson", Date: "2026-09-02", Time: "09:00", Status: models.StatusConfirmed},
		// Wrong date.
		{ID: "a2", PatientID: "p1", DoctorID: "doc_1", DoctorName: "Dr. Sarah Johnson", Date: "2026-09-05", Time: "09:00", Status: models.StatusConfirmed},
		// Not confirmed.
		{ID: "a3", PatientID: "p1", DoctorID: "doc_1", DoctorName: "Dr. Sarah Johnson", Date: "2026-09-02", Time: "10:00", Status: models.StatusPending},
		// Patient without a phone number.
		{ID: "a4", PatientID: "p2", DoctorID: "doc_1", DoctorName: "Dr. Sarah Johnson", Date: "2026-09-02", Time: "11:00", Status: models.StatusConfirmed},
	}
	for _, a := range appointments {
		if err := st.AddAppointment(a); err != nil {
			t.Fatalf("AddAppointment(%s) failed: %v", a.ID, err)
		}
	}

	mock := twiliosms.NewMockClient()
	job := NewReminderJob(st, messaging.NewTwilioService(mock), WithClock(func() time.Time { return now }))
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("ReminderJob.Run returned error: %v", err)
	}

	if len(mock.Sent) != 1 {
		t.Fatalf("expected 1 reminder, got %d", len(mock.Sent))
	}
	if mock.Sent[0].To != "+15551234567" {
		t.Errorf("unexpected recipient %q", mock.Sent[0].To)
	}
	if !strings.Contains(mock.Sent[0].Body, "Dr. Sarah Johnson") || !strings.Contains(mock.Sent[0].Body, "2026-09-02") || !strings.Contains(mock.Sent[0].Body, "09:00") {
		t.Errorf("reminder body missing details: %q", mock.Sent[0].Body)
	}
}

func TestReminderJobNoMatches(t *testing.T) {
	st := store.NewInMemoryStore()
	mock := twiliosms.NewMockClient()
	job := NewReminderJob(st, messaging.NewTwilioService(mock), WithClock(func() time.Time {
		return time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	}))
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("ReminderJob.Run returned error: %v", err)
	}
	if len(mock.Sent) != 0 {
		t.Errorf("expected no reminders, got %d", len(mock.Sent))
	}
}
