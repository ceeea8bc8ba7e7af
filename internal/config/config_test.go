// v1
// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func pointAtMissingProperties(t *testing.T) {
	t.Helper()
	t.Setenv("ASSISTANT_PROPERTIES_PATH", filepath.Join(t.TempDir(), "absent.properties"))
}

func TestLoadDefaults(t *testing.T) {
	pointAtMissingProperties(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got, want := cfg.ListenAddress, ":8090"; got != want {
		t.Fatalf("listen address mismatch: got %s want %s", got, want)
	}
	if got, want := cfg.BrokerURL(), "tcp://localhost:1883"; got != want {
		t.Fatalf("broker url mismatch: got %s want %s", got, want)
	}
	if got, want := cfg.ActionsTopic, "vehicle/actions"; got != want {
		t.Fatalf("actions topic mismatch: got %s want %s", got, want)
	}
	if got, want := cfg.RecommendationsTopic, "vehicle/recommendations"; got != want {
		t.Fatalf("recommendations topic mismatch: got %s want %s", got, want)
	}
	if got, want := cfg.LearningPeriod, 30*time.Second; got != want {
		t.Fatalf("learning period mismatch: got %v want %v", got, want)
	}
	if got, want := cfg.RecommendationInterval, 20*time.Second; got != want {
		t.Fatalf("recommendation interval mismatch: got %v want %v", got, want)
	}
	if got, want := cfg.BreakReminderDelay, 200*time.Second; got != want {
		t.Fatalf("break reminder delay mismatch: got %v want %v", got, want)
	}
	if got, want := cfg.SessionCap, 50; got != want {
		t.Fatalf("session cap mismatch: got %d want %d", got, want)
	}
	if got, want := cfg.HistoryCapacity, 50; got != want {
		t.Fatalf("history capacity mismatch: got %d want %d", got, want)
	}
	if got, want := cfg.MQTTConnectAttempts, 10; got != want {
		t.Fatalf("connect attempts mismatch: got %d want %d", got, want)
	}
	if got, want := cfg.MQTTConnectBackoff, 5*time.Second; got != want {
		t.Fatalf("connect backoff mismatch: got %v want %v", got, want)
	}
	if cfg.ArchiveEnabled() {
		t.Fatalf("archive should be disabled with no brokers, got %v", cfg.ArchiveBrokers)
	}
	if got, want := cfg.ArchiveQueueSize, 256; got != want {
		t.Fatalf("archive queue size mismatch: got %d want %d", got, want)
	}
}

func TestLoadAppliesPropertiesFile(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "assistant.properties")
	body := strings.Join([]string{
		"# assistant settings",
		"listen_address=:9191",
		"mqtt_host=broker.internal",
		"mqtt_port=8883",
		"actions_topic=fleet/actions",
		"learning_period_ms=45000",
		"session_cap=10",
		"archive_brokers=kafka-1:9092, kafka-2:9092",
		"archive_topic=fleet.actions.archive",
		"",
		"; trailing comment",
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write properties: %v", err)
	}
	t.Setenv("ASSISTANT_PROPERTIES_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got, want := cfg.ListenAddress, ":9191"; got != want {
		t.Fatalf("listen address mismatch: got %s want %s", got, want)
	}
	if got, want := cfg.BrokerURL(), "tcp://broker.internal:8883"; got != want {
		t.Fatalf("broker url mismatch: got %s want %s", got, want)
	}
	if got, want := cfg.ActionsTopic, "fleet/actions"; got != want {
		t.Fatalf("actions topic mismatch: got %s want %s", got, want)
	}
	if got, want := cfg.LearningPeriod, 45*time.Second; got != want {
		t.Fatalf("learning period mismatch: got %v want %v", got, want)
	}
	if got, want := cfg.SessionCap, 10; got != want {
		t.Fatalf("session cap mismatch: got %d want %d", got, want)
	}
	if len(cfg.ArchiveBrokers) != 2 || cfg.ArchiveBrokers[0] != "kafka-1:9092" || cfg.ArchiveBrokers[1] != "kafka-2:9092" {
		t.Fatalf("archive brokers mismatch: got %v", cfg.ArchiveBrokers)
	}
	if !cfg.ArchiveEnabled() {
		t.Fatalf("archive should be enabled once brokers are set")
	}
	if got, want := cfg.RecommendationInterval, 20*time.Second; got != want {
		t.Fatalf("untouched default changed: got %v want %v", got, want)
	}
}

func TestLoadEnvOverridesProperties(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "assistant.properties")
	if err := os.WriteFile(path, []byte("mqtt_host=from-file\nmqtt_port=2000\n"), 0o644); err != nil {
		t.Fatalf("write properties: %v", err)
	}
	t.Setenv("ASSISTANT_PROPERTIES_PATH", path)
	t.Setenv("MQTT_HOST", "from-env")
	t.Setenv("MQTT_PORT", "3000")
	t.Setenv("ASSISTANT_RECOMMENDATION_INTERVAL_MS", "2500")
	t.Setenv("ASSISTANT_BREAK_REMINDER_MS", "90000")
	t.Setenv("KAFKA_BROKERS", "kafka:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got, want := cfg.BrokerURL(), "tcp://from-env:3000"; got != want {
		t.Fatalf("env should win over properties: got %s want %s", got, want)
	}
	if got, want := cfg.RecommendationInterval, 2500*time.Millisecond; got != want {
		t.Fatalf("recommendation interval mismatch: got %v want %v", got, want)
	}
	if got, want := cfg.BreakReminderDelay, 90*time.Second; got != want {
		t.Fatalf("break reminder delay mismatch: got %v want %v", got, want)
	}
	if len(cfg.ArchiveBrokers) != 1 || cfg.ArchiveBrokers[0] != "kafka:9092" {
		t.Fatalf("kafka fallback brokers mismatch: got %v", cfg.ArchiveBrokers)
	}
}

func TestLoadArchiveBrokersPreferAssistantEnv(t *testing.T) {
	pointAtMissingProperties(t)
	t.Setenv("KAFKA_BROKERS", "generic:9092")
	t.Setenv("ASSISTANT_ARCHIVE_BROKERS", "dedicated:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(cfg.ArchiveBrokers) != 1 || cfg.ArchiveBrokers[0] != "dedicated:9092" {
		t.Fatalf("dedicated broker env should win: got %v", cfg.ArchiveBrokers)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{name: "port out of range", key: "MQTT_PORT", value: "70000"},
		{name: "port not numeric", key: "MQTT_PORT", value: "abc"},
		{name: "zero interval", key: "ASSISTANT_RECOMMENDATION_INTERVAL_MS", value: "0"},
		{name: "negative cap", key: "ASSISTANT_SESSION_CAP", value: "-1"},
		{name: "empty topic", key: "ASSISTANT_ACTIONS_TOPIC", value: "   "},
		{name: "garbage millis", key: "ASSISTANT_LEARNING_PERIOD_MS", value: "30s"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pointAtMissingProperties(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tc.key, tc.value)
			}
		})
	}
}

func TestLoadRejectsMalformedPropertiesLine(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "assistant.properties")
	if err := os.WriteFile(path, []byte("listen_address\n"), 0o644); err != nil {
		t.Fatalf("write properties: %v", err)
	}
	t.Setenv("ASSISTANT_PROPERTIES_PATH", path)

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for properties line without separator")
	}
}

func TestLoadIgnoresUnknownPropertyKeys(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "assistant.properties")
	if err := os.WriteFile(path, []byte("future_flag=enabled\nlisten_address=:7000\n"), 0o644); err != nil {
		t.Fatalf("write properties: %v", err)
	}
	t.Setenv("ASSISTANT_PROPERTIES_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got, want := cfg.ListenAddress, ":7000"; got != want {
		t.Fatalf("listen address mismatch: got %s want %s", got, want)
	}
}
