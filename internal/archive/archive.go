// v1
// internal/archive/archive.go

// Package archive mirrors accepted action events to a Kafka topic for the
// offline training pipeline. Delivery is best-effort: enqueue never blocks
// the ingestion path, full queues drop, and write failures are counted,
// never surfaced to the session.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/metrics"
)

// DefaultQueueSize bounds the in-memory record queue.
const DefaultQueueSize = 256

// Record is one archived action event as written to the topic.
type Record struct {
	SessionID string    `json:"session_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	Value     *float64  `json:"value"`
}

// Config carries the archive destination. An empty broker list disables
// the mirror cleanly.
type Config struct {
	Enabled   bool
	Brokers   []string
	Topic     string
	QueueSize int
}

type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type writeCloser interface {
	Close() error
}

var (
	errNilLogger  = errors.New("archive requires a logger")
	errNilWriter  = errors.New("archive requires a writer")
	errNoTopic    = errors.New("archive topic must not be empty")
	errNoBrokers  = errors.New("archive requires at least one broker")
	errNotStarted = errors.New("archive not started")
)

// Archive drains a bounded queue of records into Kafka with one worker
// goroutine, guarded by the failure breaker.
type Archive struct {
	cfg     Config
	log     *slog.Logger
	writer  kafkaMessageWriter
	closer  writeCloser
	breaker *Breaker
	enabled bool
	queue   chan Record

	runCtx    context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool
}

// New builds the archive for the configured brokers. When disabled it
// returns a no-op instance so callers need no branches.
func New(cfg Config, logger *slog.Logger) (*Archive, error) {
	if logger == nil {
		return nil, errNilLogger
	}
	if !cfg.Enabled {
		logger.Info("archive_disabled")
		return &Archive{cfg: cfg, log: logger, enabled: false}, nil
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, errNoTopic
	}
	if len(cfg.Brokers) == 0 {
		return nil, errNoBrokers
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		Balancer:               &kafka.Hash{},
	}
	breaker, err := BreakerFromEnv()
	if err != nil {
		return nil, err
	}
	if breaker.Enabled() {
		logger.Info("archive_breaker_enabled")
	}
	return newWithWriter(cfg, logger, writer, writer, breaker)
}

// newWithWriter wires the provided writer into the archive. Tests use it
// to substitute a fake.
func newWithWriter(cfg Config, logger *slog.Logger, writer kafkaMessageWriter, closer writeCloser, breaker *Breaker) (*Archive, error) {
	if logger == nil {
		return nil, errNilLogger
	}
	if writer == nil {
		return nil, errNilWriter
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	a := &Archive{
		cfg:     cfg,
		log:     logger.With(slog.String("component", "archive")),
		writer:  writer,
		closer:  closer,
		breaker: breaker,
		enabled: cfg.Enabled,
	}
	if a.enabled {
		a.queue = make(chan Record, cfg.QueueSize)
		metrics.SetArchiveQueueDepth(0)
	}
	return a, nil
}

// Start launches the worker goroutine.
func (a *Archive) Start(ctx context.Context) error {
	if !a.enabled {
		return nil
	}
	if ctx == nil {
		return errors.New("context must not be nil")
	}
	a.startOnce.Do(func() {
		a.runCtx, a.cancel = context.WithCancel(ctx)
		a.started.Store(true)
		a.wg.Add(1)
		go a.run()
		a.log.Info("archive_started", slog.String("topic", a.cfg.Topic))
	})
	if !a.started.Load() {
		return errNotStarted
	}
	return nil
}

// Stop shuts the worker down, draining queued records, and closes the
// writer. It respects the deadline of the supplied context.
func (a *Archive) Stop(ctx context.Context) error {
	if !a.enabled {
		return nil
	}
	var stopErr error
	a.stopOnce.Do(func() {
		if a.cancel != nil {
			a.cancel()
		}
		done := make(chan struct{})
		go func() {
			a.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			stopErr = ctx.Err()
		}
		if a.closer != nil {
			if err := a.closer.Close(); err != nil {
				a.log.Error("archive_close_err", slog.Any("err", err))
			}
		}
		metrics.SetArchiveQueueDepth(0)
		a.log.Info("archive_stopped")
	})
	return stopErr
}

// Enqueue offers a record to the mirror without ever blocking. Records
// are dropped and counted when the queue is full or the archive is not
// running.
func (a *Archive) Enqueue(rec Record) {
	if !a.enabled || !a.started.Load() {
		return
	}
	select {
	case a.queue <- rec:
		metrics.SetArchiveQueueDepth(len(a.queue))
	default:
		metrics.IncArchiveDrop()
		a.log.Warn("archive_queue_full", slog.String("action", rec.Action))
	}
}

func (a *Archive) run() {
	defer a.wg.Done()
	for {
		select {
		case <-a.runCtx.Done():
			a.drain()
			a.started.Store(false)
			a.log.Info("archive_worker_exit")
			return
		case rec := <-a.queue:
			metrics.SetArchiveQueueDepth(len(a.queue))
			a.deliver(rec)
		}
	}
}

func (a *Archive) drain() {
	for {
		select {
		case rec := <-a.queue:
			metrics.SetArchiveQueueDepth(len(a.queue))
			a.deliver(rec)
		default:
			return
		}
	}
}

func (a *Archive) deliver(rec Record) {
	if err := a.breaker.Allow(); err != nil {
		metrics.IncArchivePublish("open")
		a.log.Warn("archive_write_skipped", slog.String("action", rec.Action), slog.String("breaker", a.breaker.State()))
		return
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		metrics.IncArchivePublish("fail")
		a.log.Error("archive_encode_err", slog.Any("err", err), slog.String("action", rec.Action))
		return
	}
	err = a.writer.WriteMessages(a.runCtx, kafka.Message{
		Key:   []byte(rec.SessionID),
		Value: payload,
	})
	if err != nil {
		a.breaker.Failure()
		metrics.IncArchivePublish("fail")
		a.log.Error("archive_write_err", slog.Any("err", err), slog.String("action", rec.Action))
		return
	}
	a.breaker.Success()
	metrics.IncArchivePublish("ok")
}
