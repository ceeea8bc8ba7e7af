// v1
// internal/httpapi/router_test.go
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"log/slog"

	"github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/learner"
	"github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/session"
	"github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/vehicle"
)

type staticStatus struct {
	status session.Status
}

func (s staticStatus) Snapshot() session.Status { return s.status }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHealthEndpointsReportLiveness(t *testing.T) {
	router := NewRouter(testLogger(), NewHealthState(), staticStatus{})
	for _, path := range []string{"/health", "/health/live"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status: got %d want %d", path, rec.Code, http.StatusOK)
		}
		if got := rec.Body.String(); got != "OK" {
			t.Fatalf("%s body: got %q want OK", path, got)
		}
	}
}

func TestReadinessTogglesWithHealthState(t *testing.T) {
	health := NewHealthState()
	router := NewRouter(testLogger(), health, staticStatus{})

	probe := func() (int, string) {
		req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code, rec.Body.String()
	}

	if code, body := probe(); code != http.StatusServiceUnavailable || body != "NOT_READY" {
		t.Fatalf("before ready: got %d %q", code, body)
	}
	health.SetReady(true)
	if code, body := probe(); code != http.StatusOK || body != "OK" {
		t.Fatalf("after ready: got %d %q", code, body)
	}
	health.SetReady(false)
	if code, body := probe(); code != http.StatusServiceUnavailable || body != "NOT_READY" {
		t.Fatalf("after shutdown: got %d %q", code, body)
	}
}

func TestStatusReturnsSessionSnapshot(t *testing.T) {
	started := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
	source := staticStatus{status: session.Status{
		SessionID:           "abc-123",
		Phase:               session.PhaseActive,
		StartedAt:           &started,
		UptimeSeconds:       95,
		ActionsSeen:         7,
		HistoryDepth:        7,
		RecommendationsSent: 3,
		BreakReminderSent:   true,
		CarState: vehicle.CarState{
			ClimateOn:   true,
			Temperature: 23,
			Volume:      40,
		},
		Preferences: learner.Preferences{
			PreferredTemperature:  23,
			PreferredVolume:       40,
			PreferredSeatPosition: 5,
			LikesMusic:            true,
		},
	}}
	router := NewRouter(testLogger(), NewHealthState(), source)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status code: got %d want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content type: got %q", ct)
	}

	var got session.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if got.SessionID != "abc-123" {
		t.Fatalf("session id: got %q", got.SessionID)
	}
	if got.Phase != session.PhaseActive {
		t.Fatalf("phase: got %q", got.Phase)
	}
	if got.ActionsSeen != 7 || got.RecommendationsSent != 3 {
		t.Fatalf("counters: got actions=%d recs=%d", got.ActionsSeen, got.RecommendationsSent)
	}
	if !got.CarState.ClimateOn || got.CarState.Temperature != 23 {
		t.Fatalf("car state: got %+v", got.CarState)
	}
	if got.Preferences.PreferredVolume != 40 || !got.Preferences.LikesMusic {
		t.Fatalf("preferences: got %+v", got.Preferences)
	}
	if strings.Contains(rec.Body.String(), "last_recommendation") {
		t.Fatalf("unset last_recommendation should be omitted: %s", rec.Body.String())
	}
}

func TestStatusWithoutSessionReturnsUnavailable(t *testing.T) {
	router := NewRouter(testLogger(), NewHealthState(), nil)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status code: got %d want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if got := rec.Body.String(); got != "NO_SESSION" {
		t.Fatalf("body: got %q", got)
	}
}

func TestStatusRejectsNonGetMethods(t *testing.T) {
	router := NewRouter(testLogger(), NewHealthState(), staticStatus{})

	req := httptest.NewRequest(http.MethodPost, "/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status code: got %d want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestUnknownRouteReturnsNotFound(t *testing.T) {
	router := NewRouter(testLogger(), NewHealthState(), staticStatus{})

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status code: got %d want %d", rec.Code, http.StatusNotFound)
	}
	if got := rec.Body.String(); got != "not found" {
		t.Fatalf("body: got %q", got)
	}
}

func TestMetricsEndpointServesPrometheusText(t *testing.T) {
	router := NewRouter(testLogger(), NewHealthState(), staticStatus{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status code: got %d want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "assistant_malformed_payloads_total") {
		t.Fatalf("expected assistant metrics in scrape output")
	}
}
