// v0
// internal/vehicle/history_test.go
package vehicle

import (
	"fmt"
	"testing"
	"time"
)

func TestHistoryEvictsOldestAtCapacity(t *testing.T) {
	h := NewHistory(3)
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		ev := ActionEvent{Action: fmt.Sprintf("a%d", i), Timestamp: base.Add(time.Duration(i) * time.Second)}
		if evicted := h.Append(ev); evicted != nil {
			t.Fatalf("unexpected eviction at %d", i)
		}
	}
	evicted := h.Append(ActionEvent{Action: "a3", Timestamp: base.Add(3 * time.Second)})
	if evicted == nil || evicted.Action != "a0" {
		t.Fatalf("expected a0 evicted, got %+v", evicted)
	}
	if h.Len() != 3 {
		t.Fatalf("history grew past capacity: %d", h.Len())
	}
	snap := h.Snapshot()
	want := []string{"a1", "a2", "a3"}
	for i, name := range want {
		if snap[i].Action != name {
			t.Fatalf("snapshot[%d] = %q, want %q", i, snap[i].Action, name)
		}
	}
}

func TestHistoryDefaultCapacity(t *testing.T) {
	h := NewHistory(0)
	if h.Capacity() != DefaultHistoryCapacity {
		t.Fatalf("expected default capacity %d, got %d", DefaultHistoryCapacity, h.Capacity())
	}
	for i := 0; i < DefaultHistoryCapacity+7; i++ {
		h.Append(ActionEvent{Action: "climate_increase"})
	}
	if h.Len() != DefaultHistoryCapacity {
		t.Fatalf("expected history pinned at %d, got %d", DefaultHistoryCapacity, h.Len())
	}
}

func TestHistorySnapshotIsDetached(t *testing.T) {
	h := NewHistory(4)
	h.Append(ActionEvent{Action: "lights_dim"})
	snap := h.Snapshot()
	snap[0].Action = "mutated"
	if h.Snapshot()[0].Action != "lights_dim" {
		t.Fatalf("snapshot writes leaked into history")
	}
	empty := NewHistory(4)
	if empty.Snapshot() != nil {
		t.Fatalf("empty history should snapshot to nil")
	}
}

func TestHistoryRecentActions(t *testing.T) {
	h := NewHistory(10)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		h.Append(ActionEvent{Action: name})
	}

	got := h.RecentActions(3)
	want := []string{"c", "d", "e"}
	if len(got) != len(want) {
		t.Fatalf("unexpected window size: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("recent[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if got := h.RecentActions(50); len(got) != 5 {
		t.Fatalf("short history should return everything, got %v", got)
	}
	if got := h.RecentActions(0); got != nil {
		t.Fatalf("n<=0 should return nil, got %v", got)
	}
}
