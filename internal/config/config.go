// v1
// internal/config/config.go
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config captures all runtime settings required by the assistant. Values
// can be provided by environment variables, a properties file, or fall
// back to sensible defaults so the service can boot against a local
// broker with no setup.
type Config struct {
	// ListenAddress defines the TCP address used by the HTTP server.
	ListenAddress string
	// LogFilePath is the absolute or relative path to the log file.
	LogFilePath string
	// HTTPReadTimeout bounds the time to read incoming requests.
	HTTPReadTimeout time.Duration
	// HTTPWriteTimeout bounds the time to write responses.
	HTTPWriteTimeout time.Duration
	// ShutdownTimeout limits graceful shutdown attempts.
	ShutdownTimeout time.Duration
	// PropertiesPath records the path used to load property values.
	PropertiesPath string
	// MQTTHost is the broker hostname the vehicle topics live on.
	MQTTHost string
	// MQTTPort is the broker TCP port.
	MQTTPort int
	// MQTTClientID overrides the generated MQTT client identifier.
	MQTTClientID string
	// MQTTConnectAttempts bounds startup connection retries.
	MQTTConnectAttempts int
	// MQTTConnectBackoff is the fixed delay between connect attempts.
	MQTTConnectBackoff time.Duration
	// ActionsTopic carries inbound vehicle action events.
	ActionsTopic string
	// RecommendationsTopic carries outbound recommendation envelopes.
	RecommendationsTopic string
	// LearningPeriod is how long the session observes before recommending.
	LearningPeriod time.Duration
	// RecommendationInterval spaces recommendation cycles.
	RecommendationInterval time.Duration
	// BreakReminderDelay schedules the one-shot break reminder.
	BreakReminderDelay time.Duration
	// SessionCap limits recommendations per session.
	SessionCap int
	// HistoryCapacity bounds the per-session action history.
	HistoryCapacity int
	// ArchiveBrokers lists Kafka bootstrap brokers for the action mirror.
	// Leaving it empty disables the archive.
	ArchiveBrokers []string
	// ArchiveTopic is the Kafka topic receiving archived action records.
	ArchiveTopic string
	// ArchiveQueueSize bounds the in-memory archive queue.
	ArchiveQueueSize int
}

const (
	defaultListenAddress  = ":8090"
	defaultLogFile        = "logs/assistant.log"
	defaultReadTimeout    = 5 * time.Second
	defaultWriteTimeout   = 10 * time.Second
	defaultShutdown       = 5 * time.Second
	defaultPropsPath      = "assistant.properties"
	defaultMQTTHost       = "localhost"
	defaultMQTTPort       = 1883
	defaultConnectTries   = 10
	defaultConnectBackoff = 5 * time.Second
	defaultActionsTopic   = "vehicle/actions"
	defaultRecsTopic      = "vehicle/recommendations"
	defaultLearning       = 30 * time.Second
	defaultInterval       = 20 * time.Second
	defaultBreakReminder  = 200 * time.Second
	defaultSessionCap     = 50
	defaultHistoryCap     = 50
	defaultArchiveTopic   = "vehicle.actions.archive"
	defaultArchiveQueue   = 256
)

// Load resolves configuration by layering defaults, an optional
// properties file, and finally environment variables. The properties
// file location can be overridden with ASSISTANT_PROPERTIES_PATH.
func Load() (Config, error) {
	cfg := Config{
		ListenAddress:          defaultListenAddress,
		LogFilePath:            filepath.Clean(defaultLogFile),
		HTTPReadTimeout:        defaultReadTimeout,
		HTTPWriteTimeout:       defaultWriteTimeout,
		ShutdownTimeout:        defaultShutdown,
		MQTTHost:               defaultMQTTHost,
		MQTTPort:               defaultMQTTPort,
		MQTTConnectAttempts:    defaultConnectTries,
		MQTTConnectBackoff:     defaultConnectBackoff,
		ActionsTopic:           defaultActionsTopic,
		RecommendationsTopic:   defaultRecsTopic,
		LearningPeriod:         defaultLearning,
		RecommendationInterval: defaultInterval,
		BreakReminderDelay:     defaultBreakReminder,
		SessionCap:             defaultSessionCap,
		HistoryCapacity:        defaultHistoryCap,
		ArchiveTopic:           defaultArchiveTopic,
		ArchiveQueueSize:       defaultArchiveQueue,
	}

	propsPath := strings.TrimSpace(os.Getenv("ASSISTANT_PROPERTIES_PATH"))
	if propsPath == "" {
		propsPath = defaultPropsPath
	}
	cfg.PropertiesPath = propsPath

	if err := applyProperties(&cfg, propsPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// BrokerURL renders the MQTT connection string for the configured broker.
func (c Config) BrokerURL() string {
	return fmt.Sprintf("tcp://%s:%d", c.MQTTHost, c.MQTTPort)
}

// ArchiveEnabled reports whether the Kafka mirror has a destination.
func (c Config) ArchiveEnabled() bool {
	return len(c.ArchiveBrokers) > 0
}

func applyProperties(cfg *Config, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		// Close errors are ignored because configuration loading has
		// already completed and there is no logger available at this
		// stage of initialization.
		_ = f.Close()
	}()

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") || strings.HasPrefix(raw, ";") {
			continue
		}
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid properties entry on line %d", line)
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if err := setProperty(cfg, key, value); err != nil {
			return fmt.Errorf("property %s: %w", key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read properties: %w", err)
	}
	return nil
}

func setProperty(cfg *Config, key, value string) error {
	switch key {
	case "listen_address":
		if value == "" {
			return errors.New("listen_address cannot be empty")
		}
		cfg.ListenAddress = value
	case "log_path":
		if value == "" {
			return errors.New("log_path cannot be empty")
		}
		cfg.LogFilePath = filepath.Clean(value)
	case "http_read_timeout_ms":
		d, err := parsePositiveMillis(value)
		if err != nil {
			return err
		}
		cfg.HTTPReadTimeout = d
	case "http_write_timeout_ms":
		d, err := parsePositiveMillis(value)
		if err != nil {
			return err
		}
		cfg.HTTPWriteTimeout = d
	case "shutdown_timeout_ms":
		d, err := parsePositiveMillis(value)
		if err != nil {
			return err
		}
		cfg.ShutdownTimeout = d
	case "mqtt_host":
		if value == "" {
			return errors.New("mqtt_host cannot be empty")
		}
		cfg.MQTTHost = value
	case "mqtt_port":
		p, err := parsePort(value)
		if err != nil {
			return err
		}
		cfg.MQTTPort = p
	case "mqtt_client_id":
		cfg.MQTTClientID = value
	case "mqtt_connect_attempts":
		n, err := parsePositiveInt(value)
		if err != nil {
			return err
		}
		cfg.MQTTConnectAttempts = n
	case "mqtt_connect_backoff_ms":
		d, err := parsePositiveMillis(value)
		if err != nil {
			return err
		}
		cfg.MQTTConnectBackoff = d
	case "actions_topic":
		if value == "" {
			return errors.New("actions_topic cannot be empty")
		}
		cfg.ActionsTopic = value
	case "recommendations_topic":
		if value == "" {
			return errors.New("recommendations_topic cannot be empty")
		}
		cfg.RecommendationsTopic = value
	case "learning_period_ms":
		d, err := parsePositiveMillis(value)
		if err != nil {
			return err
		}
		cfg.LearningPeriod = d
	case "recommendation_interval_ms":
		d, err := parsePositiveMillis(value)
		if err != nil {
			return err
		}
		cfg.RecommendationInterval = d
	case "break_reminder_ms":
		d, err := parsePositiveMillis(value)
		if err != nil {
			return err
		}
		cfg.BreakReminderDelay = d
	case "session_cap":
		n, err := parsePositiveInt(value)
		if err != nil {
			return err
		}
		cfg.SessionCap = n
	case "history_capacity":
		n, err := parsePositiveInt(value)
		if err != nil {
			return err
		}
		cfg.HistoryCapacity = n
	case "archive_brokers":
		cfg.ArchiveBrokers = splitAndTrim(value)
	case "archive_topic":
		if value == "" {
			return errors.New("archive_topic cannot be empty")
		}
		cfg.ArchiveTopic = value
	case "archive_queue_size":
		n, err := parsePositiveInt(value)
		if err != nil {
			return err
		}
		cfg.ArchiveQueueSize = n
	default:
		// Unknown keys are ignored to keep the loader forward-compatible.
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v, ok := lookupEnvTrimmed("ASSISTANT_LISTEN_ADDRESS"); ok {
		if v == "" {
			return errors.New("ASSISTANT_LISTEN_ADDRESS cannot be empty")
		}
		cfg.ListenAddress = v
	}
	if v, ok := lookupEnvTrimmed("ASSISTANT_LOG_PATH"); ok {
		if v == "" {
			return errors.New("ASSISTANT_LOG_PATH cannot be empty")
		}
		cfg.LogFilePath = filepath.Clean(v)
	}
	if v, ok := lookupEnvTrimmed("ASSISTANT_HTTP_READ_TIMEOUT_MS"); ok {
		d, err := parsePositiveMillis(v)
		if err != nil {
			return fmt.Errorf("ASSISTANT_HTTP_READ_TIMEOUT_MS: %w", err)
		}
		cfg.HTTPReadTimeout = d
	}
	if v, ok := lookupEnvTrimmed("ASSISTANT_HTTP_WRITE_TIMEOUT_MS"); ok {
		d, err := parsePositiveMillis(v)
		if err != nil {
			return fmt.Errorf("ASSISTANT_HTTP_WRITE_TIMEOUT_MS: %w", err)
		}
		cfg.HTTPWriteTimeout = d
	}
	if v, ok := lookupEnvTrimmed("ASSISTANT_SHUTDOWN_TIMEOUT_MS"); ok {
		d, err := parsePositiveMillis(v)
		if err != nil {
			return fmt.Errorf("ASSISTANT_SHUTDOWN_TIMEOUT_MS: %w", err)
		}
		cfg.ShutdownTimeout = d
	}
	if v, ok := lookupEnvTrimmed("MQTT_HOST"); ok {
		if v == "" {
			return errors.New("MQTT_HOST cannot be empty")
		}
		cfg.MQTTHost = v
	}
	if v, ok := lookupEnvTrimmed("MQTT_PORT"); ok {
		p, err := parsePort(v)
		if err != nil {
			return fmt.Errorf("MQTT_PORT: %w", err)
		}
		cfg.MQTTPort = p
	}
	if v, ok := lookupEnvTrimmed("ASSISTANT_MQTT_CLIENT_ID"); ok {
		cfg.MQTTClientID = v
	}
	if v, ok := lookupEnvTrimmed("ASSISTANT_MQTT_CONNECT_ATTEMPTS"); ok {
		n, err := parsePositiveInt(v)
		if err != nil {
			return fmt.Errorf("ASSISTANT_MQTT_CONNECT_ATTEMPTS: %w", err)
		}
		cfg.MQTTConnectAttempts = n
	}
	if v, ok := lookupEnvTrimmed("ASSISTANT_MQTT_CONNECT_BACKOFF_MS"); ok {
		d, err := parsePositiveMillis(v)
		if err != nil {
			return fmt.Errorf("ASSISTANT_MQTT_CONNECT_BACKOFF_MS: %w", err)
		}
		cfg.MQTTConnectBackoff = d
	}
	if v, ok := lookupEnvTrimmed("ASSISTANT_ACTIONS_TOPIC"); ok {
		if v == "" {
			return errors.New("ASSISTANT_ACTIONS_TOPIC cannot be empty")
		}
		cfg.ActionsTopic = v
	}
	if v, ok := lookupEnvTrimmed("ASSISTANT_RECOMMENDATIONS_TOPIC"); ok {
		if v == "" {
			return errors.New("ASSISTANT_RECOMMENDATIONS_TOPIC cannot be empty")
		}
		cfg.RecommendationsTopic = v
	}
	if v, ok := lookupEnvTrimmed("ASSISTANT_LEARNING_PERIOD_MS"); ok {
		d, err := parsePositiveMillis(v)
		if err != nil {
			return fmt.Errorf("ASSISTANT_LEARNING_PERIOD_MS: %w", err)
		}
		cfg.LearningPeriod = d
	}
	if v, ok := lookupEnvTrimmed("ASSISTANT_RECOMMENDATION_INTERVAL_MS"); ok {
		d, err := parsePositiveMillis(v)
		if err != nil {
			return fmt.Errorf("ASSISTANT_RECOMMENDATION_INTERVAL_MS: %w", err)
		}
		cfg.RecommendationInterval = d
	}
	if v, ok := lookupEnvTrimmed("ASSISTANT_BREAK_REMINDER_MS"); ok {
		d, err := parsePositiveMillis(v)
		if err != nil {
			return fmt.Errorf("ASSISTANT_BREAK_REMINDER_MS: %w", err)
		}
		cfg.BreakReminderDelay = d
	}
	if v, ok := lookupEnvTrimmed("ASSISTANT_SESSION_CAP"); ok {
		n, err := parsePositiveInt(v)
		if err != nil {
			return fmt.Errorf("ASSISTANT_SESSION_CAP: %w", err)
		}
		cfg.SessionCap = n
	}
	if v, ok := lookupEnvTrimmed("ASSISTANT_HISTORY_CAPACITY"); ok {
		n, err := parsePositiveInt(v)
		if err != nil {
			return fmt.Errorf("ASSISTANT_HISTORY_CAPACITY: %w", err)
		}
		cfg.HistoryCapacity = n
	}
	if v, ok := lookupEnvTrimmed("ASSISTANT_ARCHIVE_BROKERS"); ok {
		cfg.ArchiveBrokers = splitAndTrim(v)
	} else if v, ok := lookupEnvTrimmed("KAFKA_BROKERS"); ok {
		cfg.ArchiveBrokers = splitAndTrim(v)
	}
	if v, ok := lookupEnvTrimmed("ASSISTANT_ARCHIVE_TOPIC"); ok {
		if v == "" {
			return errors.New("ASSISTANT_ARCHIVE_TOPIC cannot be empty")
		}
		cfg.ArchiveTopic = v
	}
	if v, ok := lookupEnvTrimmed("ASSISTANT_ARCHIVE_QUEUE_SIZE"); ok {
		n, err := parsePositiveInt(v)
		if err != nil {
			return fmt.Errorf("ASSISTANT_ARCHIVE_QUEUE_SIZE: %w", err)
		}
		cfg.ArchiveQueueSize = n
	}
	return nil
}

func lookupEnvTrimmed(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func splitAndTrim(raw string) []string {
	fields := strings.Split(raw, ",")
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		trimmed := strings.TrimSpace(field)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parsePositiveMillis(v string) (time.Duration, error) {
	if strings.TrimSpace(v) == "" {
		return 0, errors.New("value cannot be empty")
	}
	ms, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer: %w", err)
	}
	if ms <= 0 {
		return 0, errors.New("value must be greater than zero")
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func parsePositiveInt(v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid integer: %w", err)
	}
	if n <= 0 {
		return 0, errors.New("value must be greater than zero")
	}
	return n, nil
}

func parsePort(v string) (int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid port: %w", err)
	}
	if p < 1 || p > 65535 {
		return 0, errors.New("port must be between 1 and 65535")
	}
	return p, nil
}
