// v2
// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"github.com/gorilla/handlers"

	"github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/advisor"
	"github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/archive"
	"github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/bus"
	"github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/config"
	"github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/httpapi"
	"github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/metrics"
	"github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/session"
	"github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/vehicle"
)

// Application wires configuration, logging, the MQTT bus, the driver
// session, the Kafka archive, and the HTTP API into one runnable unit
// with graceful shutdown handling.
type Application struct {
	cfg     config.Config
	logger  *slog.Logger
	logFile *os.File
	server  *http.Server
	health  *httpapi.HealthState
	bus     *bus.Client
	sess    *session.Session
	arch    *archive.Archive
}

// New prepares a fully wired assistant instance using the supplied
// configuration. It validates basic settings, ensures the log directory
// exists, and initializes every component with its own scoped logger.
func New(cfg config.Config) (*Application, error) {
	if strings.TrimSpace(cfg.ListenAddress) == "" {
		return nil, errors.New("listen address cannot be empty")
	}
	logPath := filepath.Clean(cfg.LogFilePath)
	if logPath == "" {
		return nil, errors.New("log file path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	lf, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	logger := newLogger(lf)
	logger.Info("assistant_config_loaded",
		slog.String("broker", cfg.BrokerURL()),
		slog.String("actions_topic", cfg.ActionsTopic),
		slog.String("recommendations_topic", cfg.RecommendationsTopic),
		slog.Duration("learning_period", cfg.LearningPeriod),
		slog.Duration("recommendation_interval", cfg.RecommendationInterval),
		slog.Duration("break_reminder_delay", cfg.BreakReminderDelay),
		slog.Int("session_cap", cfg.SessionCap),
		slog.Bool("archive_enabled", cfg.ArchiveEnabled()),
	)

	busClient := bus.New(bus.Config{
		BrokerURL:       cfg.BrokerURL(),
		ClientID:        cfg.MQTTClientID,
		ConnectAttempts: cfg.MQTTConnectAttempts,
		ConnectBackoff:  cfg.MQTTConnectBackoff,
	}, logger)

	sess := session.New(session.Config{
		LearningPeriod:         cfg.LearningPeriod,
		RecommendationInterval: cfg.RecommendationInterval,
		BreakReminderDelay:     cfg.BreakReminderDelay,
		SessionCap:             cfg.SessionCap,
		HistoryCapacity:        cfg.HistoryCapacity,
		RecommendationTopic:    cfg.RecommendationsTopic,
	}, advisor.NewEngine(nil), busClient, logger)

	arch, err := archive.New(archive.Config{
		Enabled:   cfg.ArchiveEnabled(),
		Brokers:   cfg.ArchiveBrokers,
		Topic:     cfg.ArchiveTopic,
		QueueSize: cfg.ArchiveQueueSize,
	}, logger)
	if err != nil {
		_ = lf.Close()
		return nil, fmt.Errorf("archive init: %w", err)
	}

	health := httpapi.NewHealthState()
	router := httpapi.NewRouter(logger, health, sess)
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet}),
	)
	handler := handlers.RecoveryHandler()(httpapi.WrapWithLogging(logger, cors(router)))
	server := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPWriteTimeout,
	}

	return &Application{
		cfg:     cfg,
		logger:  logger,
		logFile: lf,
		server:  server,
		health:  health,
		bus:     busClient,
		sess:    sess,
		arch:    arch,
	}, nil
}

// Logger exposes the configured slog logger so callers (such as main)
// can emit structured logs after initialization.
func (a *Application) Logger() *slog.Logger {
	return a.logger
}

// Session exposes the driver session, mainly for tests and diagnostics.
func (a *Application) Session() *session.Session {
	return a.sess
}

// Run blocks until the context is cancelled or the HTTP server
// terminates unexpectedly. The bus connection is established first so
// readiness only reports true once the action subscription is live.
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.bus.Connect(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("bus connect: %w", err)
	}
	if err := a.bus.Subscribe(a.cfg.ActionsTopic, a.handleActionMessage); err != nil {
		a.bus.Close()
		return fmt.Errorf("subscribe %s: %w", a.cfg.ActionsTopic, err)
	}
	if err := a.arch.Start(ctx); err != nil {
		a.bus.Close()
		return fmt.Errorf("archive start: %w", err)
	}
	a.health.SetReady(true)

	httpCh := make(chan error, 1)
	go func() {
		a.logger.Info("http_server_listen", slog.String("address", a.cfg.ListenAddress))
		err := a.server.ListenAndServe()
		httpCh <- err
	}()

	var httpErr error
	for {
		select {
		case err := <-httpCh:
			httpErr = err
			httpCh = nil
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("http_server_error", slog.Any("err", err))
			} else {
				a.logger.Info("server_closed")
			}
			cancel()
		case <-ctx.Done():
			a.logger.Info("shutdown_signal")
			a.health.SetReady(false)

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
			if err := a.server.Shutdown(shutdownCtx); err != nil {
				if !errors.Is(err, context.Canceled) {
					a.logger.Error("server_shutdown_failed", slog.Any("err", err))
					if httpErr == nil {
						httpErr = fmt.Errorf("shutdown: %w", err)
					}
				}
			}
			if httpCh != nil {
				if err := <-httpCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
					a.logger.Error("server_shutdown_error", slog.Any("err", err))
					if httpErr == nil {
						httpErr = err
					}
				}
			}

			a.sess.Close()
			if err := a.arch.Stop(shutdownCtx); err != nil {
				a.logger.Error("archive_shutdown_error", slog.Any("err", err))
			}
			a.bus.Close()
			shutdownCancel()

			if httpErr != nil && !errors.Is(httpErr, http.ErrServerClosed) {
				return httpErr
			}
			a.logger.Info("shutdown_complete")
			return nil
		}
	}
}

// handleActionMessage decodes one inbound action payload and routes it
// to the session and the archive. Undecodable payloads are counted and
// dropped without touching session state.
func (a *Application) handleActionMessage(topic string, payload []byte) {
	ev, err := vehicle.DecodeActionEvent(payload, time.Now().UTC())
	if err != nil {
		metrics.IncMalformedPayload()
		a.logger.Warn("action_payload_rejected",
			slog.String("topic", topic),
			slog.Any("err", err),
		)
		return
	}
	a.sess.HandleAction(ev)
	a.arch.Enqueue(archive.Record{
		SessionID: a.sess.ID(),
		Action:    ev.Action,
		Timestamp: ev.Timestamp,
		Value:     ev.Value,
	})
}

// Close flushes and closes resources owned by the application instance.
func (a *Application) Close() error {
	if a.logFile == nil {
		return nil
	}
	if err := a.logFile.Close(); err != nil {
		return err
	}
	a.logFile = nil
	return nil
}
