// v1
// internal/metrics/metrics.go

// Package metrics centralizes the Prometheus instrumentation for the
// assistant. Subsystems go through the exported helpers so call sites stay
// free of collector plumbing.
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Session phase gauge values.
const (
	PhaseValueIdle     = 0
	PhaseValueLearning = 1
	PhaseValueActive   = 2
)

var (
	actionsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_actions_received_total",
		Help: "Vehicle action events accepted from the bus, by action.",
	}, []string{"action"})

	malformedPayloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assistant_malformed_payloads_total",
		Help: "Inbound payloads dropped because they could not be decoded.",
	})

	recommendationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assistant_recommendations_sent_total",
		Help: "Individual recommendations published to the bus.",
	})

	publishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_publish_failures_total",
		Help: "Bus publish failures, by topic.",
	}, []string{"topic"})

	breakReminders = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assistant_break_reminders_sent_total",
		Help: "One-shot break reminders delivered.",
	})

	historyDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "assistant_history_depth",
		Help: "Number of action events currently buffered for the session.",
	})

	sessionPhase = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "assistant_session_phase",
		Help: "Current session phase (0 idle, 1 learning, 2 active).",
	})

	archiveQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "assistant_archive_queue_depth",
		Help: "Action records waiting for the archive writer.",
	})

	archiveDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assistant_archive_dropped_total",
		Help: "Action records dropped because the archive queue was full.",
	})

	archivePublishes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_archive_publish_total",
		Help: "Archive write attempts, by outcome.",
	}, []string{"outcome"})

	statusRequestSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assistant_status_request_seconds",
		Help:    "Latency of /status requests grouped by response code.",
		Buckets: prometheus.DefBuckets,
	}, []string{"code"})
)

// IncActionReceived counts one accepted action event.
func IncActionReceived(action string) {
	if strings.TrimSpace(action) == "" {
		action = "unknown"
	}
	actionsReceived.WithLabelValues(action).Inc()
}

// IncMalformedPayload counts one dropped inbound payload.
func IncMalformedPayload() {
	malformedPayloads.Inc()
}

// AddRecommendationsSent counts recommendations published in one envelope.
func AddRecommendationsSent(n int) {
	if n <= 0 {
		return
	}
	recommendationsSent.Add(float64(n))
}

// IncPublishFailure counts a failed bus publish on the given topic.
func IncPublishFailure(topic string) {
	if strings.TrimSpace(topic) == "" {
		topic = "unknown"
	}
	publishFailures.WithLabelValues(topic).Inc()
}

// IncBreakReminder counts a delivered break reminder.
func IncBreakReminder() {
	breakReminders.Inc()
}

// SetHistoryDepth records the current history buffer size.
func SetHistoryDepth(n int) {
	historyDepth.Set(float64(n))
}

// SetSessionPhase records the session phase gauge.
func SetSessionPhase(v float64) {
	sessionPhase.Set(v)
}

// SetArchiveQueueDepth records the archive queue backlog.
func SetArchiveQueueDepth(n int) {
	archiveQueueDepth.Set(float64(n))
}

// IncArchiveDrop counts a record rejected by a full archive queue.
func IncArchiveDrop() {
	archiveDrops.Inc()
}

// IncArchivePublish counts one archive write attempt. Outcome is "ok" or
// "fail".
func IncArchivePublish(outcome string) {
	if strings.TrimSpace(outcome) == "" {
		outcome = "unknown"
	}
	archivePublishes.WithLabelValues(outcome).Inc()
}

// ObserveStatusRequest records the latency of one /status request.
func ObserveStatusRequest(code int, elapsed time.Duration) {
	statusRequestSeconds.WithLabelValues(strconv.Itoa(code)).Observe(elapsed.Seconds())
}
