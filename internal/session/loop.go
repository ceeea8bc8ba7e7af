// v2
// internal/session/loop.go
package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/advisor"
	"github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/metrics"
)

// envelopeType tags every payload published on the recommendation topic.
const envelopeType = "ai_suggestion"

// Envelope is the wire shape published on the recommendation topic.
type Envelope struct {
	Type            string                   `json:"type"`
	Recommendations []advisor.Recommendation `json:"recommendations"`
	Timestamp       string                   `json:"timestamp"`
}

// runLoop is the repeating recommendation cycle. Each pass waits out the
// cooldown since the last send, generates from a snapshot, publishes when
// there is something to say, then sleeps the configured interval. The loop
// ends when the session cap is reached or the session closes.
func (s *Session) runLoop() {
	defer s.wg.Done()

	log := s.log.With(slog.String("loop", "recommendations"))
	log.Info("recommendation_loop_started",
		slog.Duration("interval", s.cfg.RecommendationInterval),
		slog.Int("session_cap", s.cfg.SessionCap),
	)

	for {
		if s.capReached() {
			log.Info("recommendation_cap_reached", slog.Int("cap", s.cfg.SessionCap))
			return
		}
		if wait := s.cooldown(); wait > 0 {
			if !s.sleep(wait) {
				log.Info("recommendation_loop_stopped")
				return
			}
		}
		s.generateOnce(log)
		if !s.sleep(s.cfg.RecommendationInterval) {
			log.Info("recommendation_loop_stopped")
			return
		}
	}
}

// generateOnce runs one cycle: snapshot under the mutex, generate and
// publish outside it. A cycle that yields recommendations consumes a send
// slot even when the bus write fails; the next cycle supersedes the lost
// message rather than retrying it.
func (s *Session) generateOnce(log *slog.Logger) {
	s.mu.Lock()
	in := advisor.Input{
		State:       s.state,
		Preferences: s.prefs,
		Recent:      s.history.RecentActions(advisor.RecentWindow),
		Now:         s.now(),
	}
	s.mu.Unlock()

	recs := s.rec.Generate(in)
	if len(recs) == 0 {
		log.Debug("recommendation_cycle_empty")
		return
	}

	err := s.publishEnvelope(recs)

	s.mu.Lock()
	s.sent++
	s.lastSentAt = s.now()
	total := s.sent
	s.mu.Unlock()

	if err != nil {
		log.Error("recommendation_publish_err", slog.Any("err", err), slog.Int("count", len(recs)))
		return
	}
	metrics.AddRecommendationsSent(len(recs))
	actions := make([]string, 0, len(recs))
	for _, rec := range recs {
		actions = append(actions, rec.Action)
	}
	log.Info("recommendations_published",
		slog.Int("count", len(recs)),
		slog.Any("actions", actions),
		slog.Int("session_total", total),
	)
}

// deliverReminder is the break reminder callback. The armed flag flips
// before publishing, so even a duplicate expiry or a failed bus write
// consumes the session's single shot.
func (s *Session) deliverReminder() {
	s.mu.Lock()
	if s.closed || !s.reminderArmed || s.reminderFired {
		s.mu.Unlock()
		return
	}
	s.reminderFired = true
	s.mu.Unlock()

	rec := s.rec.BreakReminder()
	if err := s.publishEnvelope([]advisor.Recommendation{rec}); err != nil {
		s.log.Error("break_reminder_publish_err", slog.Any("err", err))
		return
	}
	metrics.IncBreakReminder()
	s.log.Info("break_reminder_sent", slog.Duration("after", s.cfg.BreakReminderDelay))
}

// publishEnvelope wraps the recommendations in the wire envelope and
// publishes it on the recommendation topic.
func (s *Session) publishEnvelope(recs []advisor.Recommendation) error {
	env := Envelope{
		Type:            envelopeType,
		Recommendations: recs,
		Timestamp:       s.now().Format(time.RFC3339),
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode recommendation envelope: %w", err)
	}
	if err := s.pub.Publish(s.cfg.RecommendationTopic, payload); err != nil {
		metrics.IncPublishFailure(s.cfg.RecommendationTopic)
		return fmt.Errorf("publish %s: %w", s.cfg.RecommendationTopic, err)
	}
	return nil
}

// cooldown returns how long the loop must still wait to honor the minimum
// spacing since the last send.
func (s *Session) cooldown() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastSentAt.IsZero() {
		return 0
	}
	elapsed := s.now().Sub(s.lastSentAt)
	if elapsed >= s.cfg.RecommendationInterval {
		return 0
	}
	return s.cfg.RecommendationInterval - elapsed
}

func (s *Session) capReached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent >= s.cfg.SessionCap
}

// sleep waits for d or until the session is closed. It reports false when
// the session ended first.
func (s *Session) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-s.runCtx.Done():
		return false
	case <-timer.C:
		return true
	}
}
