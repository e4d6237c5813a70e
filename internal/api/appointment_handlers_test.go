package api_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/healthdesk/healthdesk/internal/models"
	"github.com/healthdesk/healthdesk/internal/testutil"
)

func bookAppointment(t *testing.T, handler http.Handler, body map[string]string) (*httptest.ResponseRecorder, models.Appointment) {
	t.Helper()
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, testutil.CreateHTTPRequest(t, "POST", "/appointments", body))
	var appt models.Appointment
	if rr.Code == http.StatusCreated {
		resultOf(t, rr, &appt)
	}
	return rr, appt
}

func validBooking() map[string]string {
	// Doctor 1 works Wednesdays; the fixed test clock is Tue 2026-09-01.
	return map[string]string{
		"doctor_id":  "1",
		"patient_id": "1",
		"date":       "2026-09-02",
		"time":       "09:30",
		"symptoms":   "headache, dizziness",
	}
}

func TestCreateAppointment(t *testing.T) {
	srv, st, _ := testutil.NewTestServer(t)
	handler := srv.Handler()

	rr, appt := bookAppointment(t, handler, validBooking())
	testutil.AssertHTTPStatus(t, http.StatusCreated, rr.Code, "booking")

	if appt.Status != models.StatusPending {
		t.Errorf("new appointment should be pending, got %s", appt.Status)
	}
	if appt.DoctorName != "Dr. Sarah Johnson" || appt.PatientName != "John Smith" {
		t.Errorf("unexpected participants: %+v", appt)
	}
	if len(appt.Symptoms) != 2 || appt.Symptoms[0] != "headache" || appt.Symptoms[1] != "dizziness" {
		t.Errorf("unexpected symptoms %v", appt.Symptoms)
	}

	stored, err := st.GetAppointment(appt.ID)
	if err != nil {
		t.Fatalf("appointment not persisted: %v", err)
	}
	if stored.Status != models.StatusPending {
		t.Errorf("stored appointment should be pending, got %s", stored.Status)
	}
}

func TestCreateAppointmentValidation(t *testing.T) {
	srv, _, _ := testutil.NewTestServer(t)
	handler := srv.Handler()

	tests := []struct {
		name   string
		mutate func(map[string]string)
		status int
	}{
		{name: "missing date", mutate: func(m map[string]string) { m["date"] = "" }, status: http.StatusBadRequest},
		{name: "missing time", mutate: func(m map[string]string) { m["time"] = "" }, status: http.StatusBadRequest},
		{name: "missing symptoms", mutate: func(m map[string]string) { m["symptoms"] = " , " }, status: http.StatusBadRequest},
		{name: "date not offered", mutate: func(m map[string]string) { m["date"] = "2026-09-03" }, status: http.StatusBadRequest},
		{name: "slot not offered", mutate: func(m map[string]string) { m["time"] = "12:00" }, status: http.StatusBadRequest},
		{name: "unknown doctor", mutate: func(m map[string]string) { m["doctor_id"] = "999" }, status: http.StatusNotFound},
		{name: "unknown patient", mutate: func(m map[string]string) { m["patient_id"] = "999" }, status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validBooking()
			tt.mutate(body)
			rr, _ := bookAppointment(t, handler, body)
			testutil.AssertHTTPStatus(t, tt.status, rr.Code, tt.name)
			testutil.AssertJSONResponse(t, rr, "error")
		})
	}
}

func TestListAppointmentsFilters(t *testing.T) {
	srv, _, _ := testutil.NewTestServer(t)
	handler := srv.Handler()

	if rr, _ := bookAppointment(t, handler, validBooking()); rr.Code != http.StatusCreated {
		t.Fatalf("booking failed with status %d", rr.Code)
	}

	tests := []struct {
		name  string
		url   string
		count int
	}{
		{name: "all", url: "/appointments", count: 1},
		{name: "by doctor", url: "/appointments?doctor_id=1", count: 1},
		{name: "by patient", url: "/appointments?patient_id=1", count: 1},
		{name: "other doctor", url: "/appointments?doctor_id=2", count: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, testutil.CreateHTTPRequest(t, "GET", tt.url, nil))
			testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, tt.name)
			var appointments []models.Appointment
			resultOf(t, rr, &appointments)
			if len(appointments) != tt.count {
				t.Errorf("expected %d appointments, got %d", tt.count, len(appointments))
			}
		})
	}
}

func TestAppointmentStatusTransitions(t *testing.T) {
	srv, _, mock := testutil.NewTestServer(t)
	handler := srv.Handler()

	rr, appt := bookAppointment(t, handler, validBooking())
	testutil.AssertHTTPStatus(t, http.StatusCreated, rr.Code, "booking")

	// pending -> confirmed notifies the patient
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, testutil.CreateHTTPRequest(t, "POST", "/appointments/"+appt.ID+"/status", map[string]string{"status": "confirmed"}))
	testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "confirm")

	if len(mock.Sent) != 1 {
		t.Fatalf("expected 1 confirmation notification, got %d", len(mock.Sent))
	}
	if !strings.Contains(mock.Sent[0].Body, "confirmed") || !strings.Contains(mock.Sent[0].Body, "2026-09-02") {
		t.Errorf("unexpected notification body %q", mock.Sent[0].Body)
	}

	// confirmed -> cancelled is illegal
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, testutil.CreateHTTPRequest(t, "POST", "/appointments/"+appt.ID+"/status", map[string]string{"status": "cancelled"}))
	testutil.AssertHTTPStatus(t, http.StatusConflict, rr.Code, "cancel after confirm")

	// confirmed -> completed succeeds without a notification
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, testutil.CreateHTTPRequest(t, "POST", "/appointments/"+appt.ID+"/status", map[string]string{"status": "completed"}))
	testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "complete")
	if len(mock.Sent) != 1 {
		t.Errorf("completion should not notify, got %d messages", len(mock.Sent))
	}
}

func TestAppointmentStatusErrors(t *testing.T) {
	srv, _, _ := testutil.NewTestServer(t)
	handler := srv.Handler()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, testutil.CreateHTTPRequest(t, "POST", "/appointments/missing/status", map[string]string{"status": "confirmed"}))
	testutil.AssertHTTPStatus(t, http.StatusNotFound, rr.Code, "unknown appointment")

	bookRR, appt := bookAppointment(t, handler, validBooking())
	testutil.AssertHTTPStatus(t, http.StatusCreated, bookRR.Code, "booking")

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, testutil.CreateHTTPRequest(t, "POST", "/appointments/"+appt.ID+"/status", map[string]string{"status": "archived"}))
	testutil.AssertHTTPStatus(t, http.StatusBadRequest, rr.Code, "unknown status value")
}

func TestDashboardHandlers(t *testing.T) {
	srv, _, _ := testutil.NewTestServer(t)
	handler := srv.Handler()

	if rr, _ := bookAppointment(t, handler, validBooking()); rr.Code != http.StatusCreated {
		t.Fatalf("booking failed with status %d", rr.Code)
	}

	t.Run("admin", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, testutil.CreateHTTPRequest(t, "GET", "/dashboard/admin", nil))
		testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "admin dashboard")

		var summary struct {
			TotalUsers        int `json:"total_users"`
			TotalAppointments int `json:"total_appointments"`
			PendingAppts      int `json:"pending_appointments"`
		}
		resultOf(t, rr, &summary)
		if summary.TotalUsers != 3 {
			t.Errorf("expected 3 users, got %d", summary.TotalUsers)
		}
		if summary.TotalAppointments != 1 || summary.PendingAppts != 1 {
			t.Errorf("unexpected appointment counts: %+v", summary)
		}
	})

	t.Run("doctor", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, testutil.CreateHTTPRequest(t, "GET", "/dashboard/doctor/1", nil))
		testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "doctor dashboard")

		var summary struct {
			Pending int `json:"pending"`
			Total   int `json:"total"`
		}
		resultOf(t, rr, &summary)
		if summary.Pending != 1 || summary.Total != 1 {
			t.Errorf("unexpected doctor summary: %+v", summary)
		}
	})

	t.Run("patient", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, testutil.CreateHTTPRequest(t, "GET", "/dashboard/patient/1", nil))
		testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "patient dashboard")

		var summary struct {
			Pending int `json:"pending"`
		}
		resultOf(t, rr, &summary)
		if summary.Pending != 1 {
			t.Errorf("expected 1 pending appointment, got %d", summary.Pending)
		}
	})

	t.Run("unknown patient", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, testutil.CreateHTTPRequest(t, "GET", "/dashboard/patient/999", nil))
		testutil.AssertHTTPStatus(t, http.StatusNotFound, rr.Code, "unknown patient dashboard")
	})
}
