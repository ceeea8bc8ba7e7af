// v1
// internal/vehicle/event.go
package vehicle

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ActionEvent is a single reported driver interaction. Events are immutable
// once recorded; Value is nil when the payload carried no number.
type ActionEvent struct {
	Action    string
	Timestamp time.Time
	Value     *float64
}

// HasValue reports whether the event carried a numeric value.
func (e ActionEvent) HasValue() bool {
	return e.Value != nil
}

var errActionMissing = errors.New("action name missing or empty")

// eventEnvelope mirrors the wire payload on vehicle/actions while tolerating
// additional fields the dashboard may add.
type eventEnvelope struct {
	Action    string          `json:"action"`
	Timestamp json.RawMessage `json:"timestamp"`
	Value     *float64        `json:"value"`
}

// DecodeActionEvent parses a vehicle/actions payload. The action name is
// required; the timestamp defaults to now when absent or unparseable, which
// matches how the dashboard has always been treated: a bad clock on the
// publisher must not cost us the action itself.
func DecodeActionEvent(raw []byte, now time.Time) (ActionEvent, error) {
	var env eventEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ActionEvent{}, fmt.Errorf("decode action payload: %w", err)
	}
	action := strings.TrimSpace(env.Action)
	if action == "" {
		return ActionEvent{}, errActionMissing
	}
	return ActionEvent{
		Action:    action,
		Timestamp: parseEventTime(env.Timestamp, now),
		Value:     env.Value,
	}, nil
}

// parseEventTime resolves the timestamp field accepting RFC3339 and
// RFC3339Nano strings as well as Unix epoch seconds as a JSON number.
func parseEventTime(raw json.RawMessage, now time.Time) time.Time {
	if len(raw) == 0 {
		return now
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		trimmed := strings.TrimSpace(asString)
		if trimmed == "" {
			return now
		}
		if ts, err := time.Parse(time.RFC3339Nano, trimmed); err == nil {
			return ts
		}
		if ts, err := time.Parse(time.RFC3339, trimmed); err == nil {
			return ts
		}
		return now
	}
	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		if secs, err := asNumber.Int64(); err == nil {
			return time.Unix(secs, 0)
		}
	}
	return now
}
