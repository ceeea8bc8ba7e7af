// v1
// internal/driversim/driversim.go

// Package driversim emits synthetic driver action events on the vehicle
// actions topic. A short scripted warmup establishes recognizable habits
// for the learning window, after which the simulator keeps publishing
// randomized follow-up actions at the configured cadence.
package driversim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"time"

	"log/slog"

	"github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/vehicle"
)

// DefaultInterval spaces published actions when no cadence is supplied.
const DefaultInterval = 3 * time.Second

// Publisher is the bus surface the simulator writes through.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Config controls cadence and volume of the generated event stream.
type Config struct {
	// Topic receives the action payloads.
	Topic string
	// Interval spaces consecutive actions.
	Interval time.Duration
	// Count limits how many actions are published. Zero means run until
	// the context ends.
	Count int
	// Seed makes the random phase reproducible when non-zero.
	Seed int64
}

func (c Config) withDefaults() Config {
	if c.Topic == "" {
		c.Topic = "vehicle/actions"
	}
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	return c
}

// Simulator drives the scripted warmup and the random follow-up phase.
type Simulator struct {
	cfg Config
	log *slog.Logger
	pub Publisher
	rng *rand.Rand
	now func() time.Time
}

type scriptStep struct {
	action string
	value  float64
	valued bool
}

// warmupScript mimics a driver settling in: climate on with a favourite
// temperature, music with a set volume, and a seat adjustment. Repeating
// the set actions gives the preference learner enough samples.
var warmupScript = []scriptStep{
	{action: vehicle.ActionClimateTurnOn},
	{action: vehicle.ActionClimateSetTemp, value: 22, valued: true},
	{action: vehicle.ActionInfotainmentPlay},
	{action: vehicle.ActionSetVolume, value: 45, valued: true},
	{action: vehicle.ActionClimateSetTemp, value: 23, valued: true},
	{action: vehicle.ActionSeatsAdjust, value: 60, valued: true},
	{action: vehicle.ActionSetVolume, value: 50, valued: true},
	{action: vehicle.ActionClimateSetTemp, value: 22, valued: true},
	{action: vehicle.ActionSetVolume, value: 45, valued: true},
	{action: vehicle.ActionSeatsAdjust, value: 60, valued: true},
}

// New builds a simulator. A nil logger discards output and a zero seed
// derives one from the wall clock.
func New(cfg Config, pub Publisher, logger *slog.Logger) *Simulator {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		cfg: cfg,
		log: logger.With(slog.String("component", "driversim")),
		pub: pub,
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// Run publishes the warmup script followed by random actions until the
// context ends or the configured count is reached. It returns the number
// of successfully published actions.
func (s *Simulator) Run(ctx context.Context) (int, error) {
	published := 0
	for i := 0; ; i++ {
		var step scriptStep
		if i < len(warmupScript) {
			step = warmupScript[i]
		} else {
			step = s.randomStep()
		}
		if err := s.publish(step); err != nil {
			s.log.Warn("action_publish_failed",
				slog.String("action", step.action),
				slog.Any("err", err),
			)
		} else {
			published++
		}
		if s.cfg.Count > 0 && i+1 >= s.cfg.Count {
			return published, nil
		}
		select {
		case <-ctx.Done():
			return published, ctx.Err()
		case <-time.After(s.cfg.Interval):
		}
	}
}

// randomStep draws one plausible follow-up action. Valued actions get a
// value inside the control's range.
func (s *Simulator) randomStep() scriptStep {
	catalog := vehicle.Actions()
	action := catalog[s.rng.Intn(len(catalog))]
	step := scriptStep{action: action}
	if vehicle.RequiresValue(action) {
		step.valued = true
		switch action {
		case vehicle.ActionClimateSetTemp:
			step.value = float64(16 + s.rng.Intn(15))
		case vehicle.ActionSetVolume:
			step.value = float64(s.rng.Intn(101))
		case vehicle.ActionSeatsAdjust:
			step.value = float64(s.rng.Intn(101))
		}
	}
	return step
}

func (s *Simulator) publish(step scriptStep) error {
	ev := map[string]any{
		"action":    step.action,
		"timestamp": s.now().UTC().Format(time.RFC3339),
	}
	if step.valued {
		ev["value"] = step.value
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode action: %w", err)
	}
	if err := s.pub.Publish(s.cfg.Topic, payload); err != nil {
		return err
	}
	s.log.Info("action_published",
		slog.String("action", step.action),
		slog.Bool("valued", step.valued),
	)
	return nil
}
