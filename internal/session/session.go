// v2
// internal/session/session.go

// Package session owns all mutable per-drive state and drives the phase
// machine. One mutex serializes the bus handler, the two one-shot timers
// and the recommendation loop; event ingestion (append, state transition,
// recompute) is atomic under it. Generation snapshots under the mutex and
// publishes outside it so a slow bus never stalls ingestion.
package session

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/advisor"
	"github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/learner"
	"github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/metrics"
	"github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/vehicle"
)

// Phase of a driving session. Recommendations are generated only in
// PhaseActive; state and preference bookkeeping run in every phase.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseLearning Phase = "learning"
	PhaseActive   Phase = "active"
)

// Session timing and cap defaults.
const (
	DefaultLearningPeriod         = 30 * time.Second
	DefaultRecommendationInterval = 20 * time.Second
	DefaultBreakReminderDelay     = 200 * time.Second
	DefaultSessionCap             = 50
	DefaultRecommendationTopic    = "vehicle/recommendations"
)

// Publisher delivers one serialized payload to a bus topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Config carries the session timings and caps. Zero values fall back to
// the defaults above.
type Config struct {
	LearningPeriod         time.Duration
	RecommendationInterval time.Duration
	BreakReminderDelay     time.Duration
	SessionCap             int
	HistoryCapacity        int
	RecommendationTopic    string
}

func (c Config) withDefaults() Config {
	if c.LearningPeriod <= 0 {
		c.LearningPeriod = DefaultLearningPeriod
	}
	if c.RecommendationInterval <= 0 {
		c.RecommendationInterval = DefaultRecommendationInterval
	}
	if c.BreakReminderDelay <= 0 {
		c.BreakReminderDelay = DefaultBreakReminderDelay
	}
	if c.SessionCap <= 0 {
		c.SessionCap = DefaultSessionCap
	}
	if c.HistoryCapacity <= 0 {
		c.HistoryCapacity = vehicle.DefaultHistoryCapacity
	}
	if c.RecommendationTopic == "" {
		c.RecommendationTopic = DefaultRecommendationTopic
	}
	return c
}

// Session coordinates one drive: car state, history, preferences, the
// phase machine, the break reminder and the recommendation loop.
type Session struct {
	cfg Config
	log *slog.Logger
	rec advisor.Recommender
	pub Publisher
	now func() time.Time

	mu          sync.Mutex
	id          string
	phase       Phase
	startedAt   time.Time
	state       vehicle.CarState
	history     *vehicle.History
	prefs       learner.Preferences
	actionsSeen int
	sent        int
	lastSentAt  time.Time

	reminderArmed bool
	reminderFired bool
	closed        bool

	learningTimer *time.Timer
	reminderTimer *time.Timer

	runCtx    context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New builds an idle session. No goroutines or timers run until the first
// action arrives through HandleAction.
func New(cfg Config, rec advisor.Recommender, pub Publisher, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		cfg:    cfg.withDefaults(),
		rec:    rec,
		pub:    pub,
		now:    time.Now,
		id:     uuid.NewString(),
		phase:  PhaseIdle,
		state:  vehicle.NewCarState(),
		prefs:  learner.DefaultPreferences(),
		runCtx: ctx,
		cancel: cancel,
	}
	s.history = vehicle.NewHistory(s.cfg.HistoryCapacity)
	s.log = logger.With(slog.String("component", "session"), slog.String("session_id", s.id))
	metrics.SetSessionPhase(metrics.PhaseValueIdle)
	return s
}

// ID returns the generated session identifier.
func (s *Session) ID() string {
	return s.id
}

// HandleAction ingests one decoded action event. The history append, car
// state transition and preference recompute complete atomically before any
// other activity observes the session. The first event also moves the
// session out of Idle and arms the learning and reminder timers.
func (s *Session) HandleAction(ev vehicle.ActionEvent) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.history.Append(ev)
	s.state = s.state.Apply(ev.Action, ev.Value)
	s.prefs = learner.Recompute(s.prefs, s.history.Snapshot())
	s.actionsSeen++
	depth := s.history.Len()

	first := s.phase == PhaseIdle
	if first {
		s.phase = PhaseLearning
		s.startedAt = ev.Timestamp
		if s.startedAt.IsZero() {
			s.startedAt = s.now()
		}
		s.reminderArmed = true
		s.learningTimer = time.AfterFunc(s.cfg.LearningPeriod, s.completeLearning)
		s.reminderTimer = time.AfterFunc(s.cfg.BreakReminderDelay, s.deliverReminder)
	}
	s.mu.Unlock()

	label := ev.Action
	if !vehicle.KnownAction(label) {
		label = "unknown"
	}
	metrics.IncActionReceived(label)
	metrics.SetHistoryDepth(depth)

	if first {
		metrics.SetSessionPhase(metrics.PhaseValueLearning)
		s.log.Info("learning_phase_started",
			slog.Duration("learning_period", s.cfg.LearningPeriod),
			slog.Duration("break_reminder_delay", s.cfg.BreakReminderDelay),
		)
	}
	attrs := []any{slog.String("action", ev.Action), slog.Int("history_depth", depth)}
	if ev.HasValue() {
		attrs = append(attrs, slog.Float64("value", *ev.Value))
	}
	s.log.Info("action_ingested", attrs...)
}

// completeLearning is the learning timer callback. It flips the phase and
// starts the recommendation loop exactly once.
func (s *Session) completeLearning() {
	s.mu.Lock()
	if s.closed || s.phase != PhaseLearning {
		s.mu.Unlock()
		return
	}
	s.phase = PhaseActive
	s.wg.Add(1)
	s.mu.Unlock()

	metrics.SetSessionPhase(metrics.PhaseValueActive)
	s.log.Info("learning_phase_complete")
	go s.runLoop()
}

// Close cancels outstanding timers and the loop, then waits for them to
// finish. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		if s.learningTimer != nil {
			s.learningTimer.Stop()
		}
		if s.reminderTimer != nil {
			s.reminderTimer.Stop()
		}
		sent := s.sent
		actions := s.actionsSeen
		s.mu.Unlock()

		s.cancel()
		s.wg.Wait()
		s.log.Info("session_closed",
			slog.Int("actions_seen", actions),
			slog.Int("recommendations_sent", sent),
		)
	})
}

// Status is the session snapshot served over HTTP.
type Status struct {
	SessionID           string              `json:"session_id"`
	Phase               Phase               `json:"phase"`
	StartedAt           *time.Time          `json:"started_at,omitempty"`
	UptimeSeconds       int64               `json:"uptime_seconds"`
	ActionsSeen         int                 `json:"actions_seen"`
	HistoryDepth        int                 `json:"history_depth"`
	RecommendationsSent int                 `json:"recommendations_sent"`
	LastRecommendation  *time.Time          `json:"last_recommendation,omitempty"`
	BreakReminderSent   bool                `json:"break_reminder_sent"`
	CarState            vehicle.CarState    `json:"car_state"`
	Preferences         learner.Preferences `json:"preferences"`
}

// Snapshot returns a consistent copy of the session state.
func (s *Session) Snapshot() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		SessionID:           s.id,
		Phase:               s.phase,
		ActionsSeen:         s.actionsSeen,
		HistoryDepth:        s.history.Len(),
		RecommendationsSent: s.sent,
		BreakReminderSent:   s.reminderFired,
		CarState:            s.state,
		Preferences:         s.prefs,
	}
	if !s.startedAt.IsZero() {
		started := s.startedAt
		st.StartedAt = &started
		st.UptimeSeconds = int64(s.now().Sub(s.startedAt).Seconds())
	}
	if !s.lastSentAt.IsZero() {
		last := s.lastSentAt
		st.LastRecommendation = &last
	}
	return st
}

// CurrentPhase returns the session's phase at the time of the call.
func (s *Session) CurrentPhase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}
