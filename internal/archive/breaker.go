// v1
// internal/archive/breaker.go
package archive

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrBreakerOpen is returned by Allow while the failure gate is open.
var ErrBreakerOpen = errors.New("archive breaker open")

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// Breaker is the closed/open/half-open failure gate in front of the
// archive writer. MaxFailures consecutive failures open it for OpenFor;
// the first Allow after that window probes half-open, and
// SuccessesToClose consecutive successes close it again. A disabled
// breaker allows everything.
type Breaker struct {
	enabled          bool
	maxFailures      int
	openFor          time.Duration
	successesToClose int
	now              func() time.Time

	mu        sync.Mutex
	state     breakerState
	failures  int
	successes int
	openedAt  time.Time
}

// Breaker environment keys, shared with the rest of the platform.
const (
	envBreakerEnabled          = "CB_ENABLED"
	envBreakerFailureThreshold = "CB_KAFKA_FAILURE_THRESHOLD"
	envBreakerSuccessThreshold = "CB_KAFKA_SUCCESS_THRESHOLD"
	envBreakerOpenSeconds      = "CB_KAFKA_OPEN_SECONDS"
)

// NewBreaker builds an enabled breaker with explicit thresholds.
func NewBreaker(maxFailures, successesToClose int, openFor time.Duration) *Breaker {
	return &Breaker{
		enabled:          true,
		maxFailures:      maxFailures,
		openFor:          openFor,
		successesToClose: successesToClose,
		now:              time.Now,
	}
}

// BreakerFromEnv reads the CB_* keys: CB_ENABLED (default false),
// CB_KAFKA_FAILURE_THRESHOLD (default 5), CB_KAFKA_SUCCESS_THRESHOLD
// (default 2) and CB_KAFKA_OPEN_SECONDS (default 30).
func BreakerFromEnv() (*Breaker, error) {
	if !parseEnvBool(envBreakerEnabled) {
		return &Breaker{now: time.Now}, nil
	}
	failures, err := parseEnvInt(envBreakerFailureThreshold, 5)
	if err != nil {
		return nil, err
	}
	successes, err := parseEnvInt(envBreakerSuccessThreshold, 2)
	if err != nil {
		return nil, err
	}
	openSeconds, err := parseEnvFloat(envBreakerOpenSeconds, 30)
	if err != nil {
		return nil, err
	}
	if failures < 1 {
		return nil, fmt.Errorf("%s must be >= 1", envBreakerFailureThreshold)
	}
	if successes < 1 {
		return nil, fmt.Errorf("%s must be >= 1", envBreakerSuccessThreshold)
	}
	if openSeconds <= 0 {
		return nil, fmt.Errorf("%s must be > 0", envBreakerOpenSeconds)
	}
	return NewBreaker(failures, successes, time.Duration(openSeconds*float64(time.Second))), nil
}

// Enabled reports whether the gate is active.
func (b *Breaker) Enabled() bool {
	return b != nil && b.enabled
}

// Allow reports whether a write may proceed. While open it returns
// ErrBreakerOpen until the open window elapses, then lets a single probe
// through in half-open state.
func (b *Breaker) Allow() error {
	if !b.Enabled() {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != breakerOpen {
		return nil
	}
	if b.now().Sub(b.openedAt) < b.openFor {
		return ErrBreakerOpen
	}
	b.state = breakerHalfOpen
	b.successes = 0
	return nil
}

// Success records a completed write and closes the gate once enough
// half-open probes succeed.
func (b *Breaker) Success() {
	if !b.Enabled() {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case breakerHalfOpen:
		b.successes++
		if b.successes >= b.successesToClose {
			b.state = breakerClosed
			b.failures = 0
			b.successes = 0
		}
	default:
		b.failures = 0
	}
}

// Failure records a failed write. In half-open state a single failure
// reopens the gate; in closed state the consecutive-failure threshold
// applies.
func (b *Breaker) Failure() {
	if !b.Enabled() {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case breakerHalfOpen:
		b.trip()
	default:
		b.failures++
		if b.failures >= b.maxFailures {
			b.trip()
		}
	}
}

func (b *Breaker) trip() {
	b.state = breakerOpen
	b.openedAt = b.now()
	b.failures = 0
	b.successes = 0
}

// State returns the current gate state as text for logs and tests.
func (b *Breaker) State() string {
	if !b.Enabled() {
		return "disabled"
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.String()
}

func parseEnvInt(key string, def int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return def, nil
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return def, nil
	}
	v, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseEnvFloat(key string, def float64) (float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return def, nil
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseEnvBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
