// v1
// internal/httpapi/health.go
package httpapi

import "sync"

// HealthState tracks readiness for the HTTP API. Liveness is always true
// while the process runs, whereas readiness toggles once the bus
// subscription is established or the service is shutting down.
type HealthState struct {
	mu    sync.RWMutex
	ready bool
}

// NewHealthState constructs the health tracker with readiness set to
// false so orchestration layers can verify when the assistant is ready
// to receive traffic.
func NewHealthState() *HealthState {
	return &HealthState{}
}

// SetReady flips the readiness flag to the provided value. Callers use
// this during startup and shutdown to signal their lifecycle phase.
func (h *HealthState) SetReady(value bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = value
}

// Ready exposes the current readiness flag in a thread-safe manner.
func (h *HealthState) Ready() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ready
}
