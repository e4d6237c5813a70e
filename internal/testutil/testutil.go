// Package testutil provides common test utilities and helpers for HealthDesk tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/healthdesk/healthdesk/internal/api"
	"github.com/healthdesk/healthdesk/internal/auth"
	"github.com/healthdesk/healthdesk/internal/catalog"
	"github.com/healthdesk/healthdesk/internal/messaging"
	"github.com/healthdesk/healthdesk/internal/store"
	"github.com/healthdesk/healthdesk/internal/twiliosms"
)

// FixedClock is the deterministic time source used by test servers.
// 2026-09-01 is a Tuesday.
var FixedClock = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

// NewTestServer creates a test API server with in-memory dependencies, the
// default catalog, seeded demo users and a fixed clock. The recording Twilio
// client is returned for assertions on outbound notifications.
func NewTestServer(t *testing.T) (*api.Server, store.Store, *twiliosms.MockClient) {
	t.Helper()
	st := store.NewInMemoryStore()
	if err := auth.SeedDemoUsers(st); err != nil {
		t.Fatalf("failed to seed demo users: %v", err)
	}
	mock := twiliosms.NewMockClient()
	srv := api.NewServer(st, catalog.Default(), messaging.NewTwilioService(mock),
		api.WithClock(func() time.Time { return FixedClock }))
	return srv, st, mock
}

// AssertHTTPStatus checks the HTTP status code and fails the test if it doesn't match.
func AssertHTTPStatus(t *testing.T, expected, actual int, context string) {
	t.Helper()
	if actual != expected {
		t.Errorf("%s: expected status %d, got %d", context, expected, actual)
	}
}

// AssertJSONResponse decodes JSON response and validates the status field.
func AssertJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus string) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	// Decode from a copy of the bytes so the recorder's body remains readable
	// for callers that inspect it again after this assertion.
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}

	if status, ok := response["status"].(string); ok {
		if status != expectedStatus {
			t.Errorf("expected status '%s', got '%s'", expectedStatus, status)
		}
	} else {
		t.Error("response missing or invalid 'status' field")
	}

	return response
}

// CreateHTTPRequest creates an HTTP request with optional JSON body for testing.
func CreateHTTPRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("failed to create HTTP request: %v", err)
	}
	return req
}

// MustMarshalJSON marshals an object to JSON and fails test on error.
func MustMarshalJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal JSON: %v", err)
	}
	return data
}

// MustUnmarshalJSON unmarshals JSON data into target and fails test on error.
func MustUnmarshalJSON(t *testing.T, data []byte, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, target); err != nil {
		t.Fatalf("failed to unmarshal JSON: %v", err)
	}
}
