// v0
// internal/vehicle/history.go
package vehicle

// DefaultHistoryCapacity bounds the per-session action history.
const DefaultHistoryCapacity = 50

// History keeps the most recent action events in arrival order, evicting
// the oldest entry once capacity is reached. It is not safe for concurrent
// use; the session coordinator serializes all access.
type History struct {
	capacity int
	events   []ActionEvent
}

// NewHistory initializes a bounded history. Capacities of zero or less are
// promoted to the default.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{
		capacity: capacity,
		events:   make([]ActionEvent, 0, capacity),
	}
}

// Append records an event, evicting the oldest entry when full. It returns
// the evicted event when one was removed.
func (h *History) Append(ev ActionEvent) (evicted *ActionEvent) {
	if len(h.events) >= h.capacity {
		removed := h.events[0]
		h.events = append(h.events[1:], ev)
		return &removed
	}
	h.events = append(h.events, ev)
	return nil
}

// Len returns the number of buffered events.
func (h *History) Len() int {
	return len(h.events)
}

// Capacity returns the configured bound.
func (h *History) Capacity() int {
	return h.capacity
}

// Snapshot returns a defensive copy of the buffered events, oldest first.
func (h *History) Snapshot() []ActionEvent {
	if len(h.events) == 0 {
		return nil
	}
	out := make([]ActionEvent, len(h.events))
	copy(out, h.events)
	return out
}

// RecentActions returns the names of the last n events, oldest first within
// the returned slice. Fewer entries are returned when the history is short.
func (h *History) RecentActions(n int) []string {
	if n <= 0 || len(h.events) == 0 {
		return nil
	}
	start := len(h.events) - n
	if start < 0 {
		start = 0
	}
	out := make([]string, 0, len(h.events)-start)
	for _, ev := range h.events[start:] {
		out = append(out, ev.Action)
	}
	return out
}
