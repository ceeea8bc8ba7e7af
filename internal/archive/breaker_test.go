// v0
// internal/archive/breaker_test.go
package archive

import (
	"errors"
	"testing"
	"time"
)

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	current := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	b := NewBreaker(2, 2, time.Minute)
	b.now = func() time.Time { return current }

	if err := b.Allow(); err != nil {
		t.Fatalf("closed breaker rejected write: %v", err)
	}
	b.Failure()
	if got := b.State(); got != "closed" {
		t.Fatalf("state after one failure = %q", got)
	}
	b.Failure()
	if got := b.State(); got != "open" {
		t.Fatalf("state after threshold failures = %q", got)
	}
	if err := b.Allow(); !errors.Is(err, ErrBreakerOpen) {
		t.Fatalf("open breaker allowed write: %v", err)
	}
}

func TestBreakerHalfOpenProbeAndClose(t *testing.T) {
	current := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	b := NewBreaker(1, 2, time.Minute)
	b.now = func() time.Time { return current }

	b.Failure()
	if got := b.State(); got != "open" {
		t.Fatalf("state = %q, want open", got)
	}

	// Before the window elapses the gate stays shut.
	current = current.Add(30 * time.Second)
	if err := b.Allow(); !errors.Is(err, ErrBreakerOpen) {
		t.Fatalf("gate opened early: %v", err)
	}

	current = current.Add(31 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("probe rejected after window: %v", err)
	}
	if got := b.State(); got != "half-open" {
		t.Fatalf("state = %q, want half-open", got)
	}

	b.Success()
	if got := b.State(); got != "half-open" {
		t.Fatalf("closed before success threshold: %q", got)
	}
	b.Success()
	if got := b.State(); got != "closed" {
		t.Fatalf("state after recovery = %q", got)
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	current := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	b := NewBreaker(1, 1, time.Minute)
	b.now = func() time.Time { return current }

	b.Failure()
	current = current.Add(2 * time.Minute)
	if err := b.Allow(); err != nil {
		t.Fatalf("probe rejected: %v", err)
	}
	b.Failure()
	if got := b.State(); got != "open" {
		t.Fatalf("half-open failure did not reopen: %q", got)
	}
}

func TestBreakerSuccessResetsFailureStreak(t *testing.T) {
	b := NewBreaker(2, 1, time.Minute)
	b.Failure()
	b.Success()
	b.Failure()
	if got := b.State(); got != "closed" {
		t.Fatalf("non-consecutive failures tripped the gate: %q", got)
	}
}

func TestBreakerFromEnvDisabledByDefault(t *testing.T) {
	t.Setenv(envBreakerEnabled, "")
	b, err := BreakerFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Enabled() {
		t.Fatalf("breaker enabled without CB_ENABLED")
	}
	if got := b.State(); got != "disabled" {
		t.Fatalf("state = %q, want disabled", got)
	}
	if err := b.Allow(); err != nil {
		t.Fatalf("disabled breaker rejected write: %v", err)
	}
}

func TestBreakerFromEnvReadsThresholds(t *testing.T) {
	t.Setenv(envBreakerEnabled, "true")
	t.Setenv(envBreakerFailureThreshold, "3")
	t.Setenv(envBreakerSuccessThreshold, "1")
	t.Setenv(envBreakerOpenSeconds, "0.5")

	b, err := BreakerFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.Enabled() {
		t.Fatalf("breaker not enabled")
	}
	if b.maxFailures != 3 || b.successesToClose != 1 || b.openFor != 500*time.Millisecond {
		t.Fatalf("thresholds misread: %+v", b)
	}
}

func TestBreakerFromEnvRejectsGarbage(t *testing.T) {
	t.Setenv(envBreakerEnabled, "true")
	t.Setenv(envBreakerFailureThreshold, "plenty")
	if _, err := BreakerFromEnv(); err == nil {
		t.Fatalf("expected error for invalid threshold")
	}
}
