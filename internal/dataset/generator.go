// v1
// internal/dataset/generator.go
package dataset

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"log/slog"

	"github.com/oklog/ulid/v2"
	openai "github.com/sashabaranov/go-openai"
)

// Request pacing against the live API, matching the provider's free-tier
// guidance.
const liveRequestPause = 100 * time.Millisecond

// Config sizes the generated dataset.
type Config struct {
	// Drivers is the number of distinct personas to synthesize.
	Drivers int
	// TripsPerDriver is the number of trips generated per persona.
	TripsPerDriver int
	// Model names the chat model used for live generation.
	Model string
	// Seed makes offline generation reproducible when non-zero.
	Seed int64
}

func (c Config) withDefaults() Config {
	if c.Drivers <= 0 {
		c.Drivers = 10
	}
	if c.TripsPerDriver <= 0 {
		c.TripsPerDriver = 5
	}
	if c.Model == "" {
		c.Model = openai.GPT3Dot5Turbo
	}
	return c
}

// Generator produces driver behaviour records. With a nil chat client it
// runs fully offline on the canned personas and sequences.
type Generator struct {
	cfg     Config
	log     *slog.Logger
	chat    ChatCompleter
	rng     *rand.Rand
	entropy io.Reader
	now     func() time.Time
}

// New builds a generator. A nil logger discards output.
func New(cfg Config, chat ChatCompleter, logger *slog.Logger) *Generator {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	return &Generator{
		cfg:     cfg,
		log:     logger.With(slog.String("component", "dataset_generator")),
		chat:    chat,
		rng:     rng,
		entropy: ulid.Monotonic(rng, 0),
		now:     time.Now,
	}
}

// Generate builds the full dataset. Personas are created once per driver
// and reused across that driver's trips; any model failure falls back to
// the canned material so a partial API outage never aborts a run.
func (g *Generator) Generate(ctx context.Context) ([]Record, error) {
	var records []Record
	for driver := 0; driver < g.cfg.Drivers; driver++ {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		persona := g.persona(ctx)
		g.log.Info("driver_persona_ready", slog.Int("driver", driver))

		for trip := 0; trip < g.cfg.TripsPerDriver; trip++ {
			if err := ctx.Err(); err != nil {
				return records, err
			}
			tripCtx := NewTripContext(g.rng)
			steps := g.sequence(ctx, persona, tripCtx)

			base := g.now().Add(-time.Duration(g.rng.Intn(365)) * 24 * time.Hour)
			tripID := g.tripID(base, driver, trip)
			for _, step := range steps {
				records = append(records, Record{
					DriverID:            driver,
					TripID:              tripID,
					Timestamp:           base.Add(time.Duration(step.TimestampOffset) * time.Second),
					Action:              step.Action,
					Value:               step.Value,
					ContextReason:       step.ContextReason,
					Weather:             tripCtx.Weather,
					TripType:            tripCtx.TripType,
					TimeOfDay:           tripCtx.TimeOfDay,
					OutsideTemperature:  tripCtx.OutsideTemperature,
					TripDurationMinutes: tripCtx.TripDurationMinutes,
					PassengerCount:      tripCtx.PassengerCount,
					IsWeekend:           tripCtx.IsWeekend,
					DriverPersona:       persona,
				})
			}

			if g.chat != nil {
				select {
				case <-ctx.Done():
					return records, ctx.Err()
				case <-time.After(liveRequestPause):
				}
			}
		}
	}
	g.log.Info("dataset_generated", slog.Int("records", len(records)))
	return records, nil
}

func (g *Generator) persona(ctx context.Context) string {
	if g.chat == nil {
		return fallbackPersona(g.rng)
	}
	persona, err := requestPersona(ctx, g.chat, g.cfg.Model)
	if err != nil {
		g.log.Warn("persona_fallback", slog.Any("err", err))
		return fallbackPersona(g.rng)
	}
	return persona
}

func (g *Generator) sequence(ctx context.Context, persona string, tripCtx TripContext) []Step {
	if g.chat == nil {
		return fallbackSequence(g.rng)
	}
	steps, err := requestSequence(ctx, g.chat, g.cfg.Model, persona, tripCtx)
	if err != nil {
		g.log.Warn("sequence_fallback", slog.Any("err", err))
		return fallbackSequence(g.rng)
	}
	return steps
}

// tripID renders a sortable unique trip identifier. The driver and trip
// ordinals serve as a readable fallback if ULID entropy is exhausted.
func (g *Generator) tripID(base time.Time, driver, trip int) string {
	id, err := ulid.New(ulid.Timestamp(base), g.entropy)
	if err != nil {
		return fmt.Sprintf("%d_%d", driver, trip)
	}
	return id.String()
}
