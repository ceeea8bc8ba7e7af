// v2
// internal/bus/bus.go

// Package bus wraps the MQTT connection carrying the vehicle topics.
// Startup dials with bounded retry and fixed backoff; exhausting the
// attempts is fatal to the caller. Registered subscriptions are replayed
// after an automatic reconnect.
package bus

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// Connection defaults. Attempts and backoff mirror the dashboard contract
// the assistant has always started under.
const (
	DefaultBrokerURL       = "tcp://localhost:1883"
	DefaultConnectAttempts = 10
	DefaultConnectBackoff  = 5 * time.Second

	defaultQoS          = 0
	disconnectQuiesceMs = 250
	clientIDPrefix      = "carai-assistant"
)

// Config carries the broker coordinates and retry bounds.
type Config struct {
	BrokerURL       string
	ClientID        string
	ConnectAttempts int
	ConnectBackoff  time.Duration
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.BrokerURL) == "" {
		c.BrokerURL = DefaultBrokerURL
	}
	if strings.TrimSpace(c.ClientID) == "" {
		c.ClientID = fmt.Sprintf("%s-%s", clientIDPrefix, uuid.NewString()[:8])
	}
	if c.ConnectAttempts <= 0 {
		c.ConnectAttempts = DefaultConnectAttempts
	}
	if c.ConnectBackoff <= 0 {
		c.ConnectBackoff = DefaultConnectBackoff
	}
	return c
}

// MessageHandler receives the raw payload of one inbound message.
type MessageHandler func(topic string, payload []byte)

// Client is the assistant's MQTT client. Publish and Subscribe are safe
// for concurrent use once Connect has succeeded.
type Client struct {
	cfg    Config
	log    *slog.Logger
	client mqtt.Client

	mu   sync.Mutex
	subs map[string]MessageHandler
}

// New prepares a client without dialing. Connect establishes the link.
func New(cfg Config, logger *slog.Logger) *Client {
	cfg = cfg.withDefaults()
	c := &Client{
		cfg:  cfg,
		log:  logger.With(slog.String("component", "bus"), slog.String("client_id", cfg.ClientID)),
		subs: make(map[string]MessageHandler),
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		c.log.Warn("bus_connection_lost", slog.Any("err", err))
	})
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		c.log.Info("bus_connected", slog.String("broker", cfg.BrokerURL))
		c.resubscribe()
	})
	c.client = mqtt.NewClient(opts)
	return c
}

// Connect dials the broker, retrying with fixed backoff up to the
// configured attempt count. It returns an error only once every attempt
// has failed or the context ended.
func (c *Client) Connect(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.ConnectAttempts; attempt++ {
		token := c.client.Connect()
		token.Wait()
		if token.Error() == nil {
			return nil
		}
		lastErr = token.Error()
		c.log.Warn("bus_connect_failed",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", c.cfg.ConnectAttempts),
			slog.Any("err", lastErr),
		)
		if attempt == c.cfg.ConnectAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("connect to %s interrupted: %w", c.cfg.BrokerURL, ctx.Err())
		case <-time.After(c.cfg.ConnectBackoff):
		}
	}
	return fmt.Errorf("connect to %s after %d attempts: %w", c.cfg.BrokerURL, c.cfg.ConnectAttempts, lastErr)
}

// Subscribe registers the handler for a topic and subscribes. The handler
// runs on the client's router goroutine; it must hand off work quickly.
func (c *Client) Subscribe(topic string, handler MessageHandler) error {
	c.mu.Lock()
	c.subs[topic] = handler
	c.mu.Unlock()

	if err := c.subscribe(topic, handler); err != nil {
		return err
	}
	c.log.Info("bus_subscribed", slog.String("topic", topic))
	return nil
}

func (c *Client) subscribe(topic string, handler MessageHandler) error {
	token := c.client.Subscribe(topic, defaultQoS, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return nil
}

// resubscribe replays every registered subscription after a reconnect.
func (c *Client) resubscribe() {
	c.mu.Lock()
	subs := make(map[string]MessageHandler, len(c.subs))
	for topic, handler := range c.subs {
		subs[topic] = handler
	}
	c.mu.Unlock()

	for topic, handler := range subs {
		if err := c.subscribe(topic, handler); err != nil {
			c.log.Error("bus_resubscribe_err", slog.String("topic", topic), slog.Any("err", err))
		}
	}
}

// Publish sends one payload to a topic and waits for the client to accept
// it.
func (c *Client) Publish(topic string, payload []byte) error {
	token := c.client.Publish(topic, defaultQoS, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Connected reports whether the underlying client currently holds a
// broker connection.
func (c *Client) Connected() bool {
	return c.client.IsConnectionOpen()
}

// Close disconnects from the broker, allowing a short quiesce for
// in-flight messages.
func (c *Client) Close() {
	c.client.Disconnect(disconnectQuiesceMs)
	c.log.Info("bus_disconnected")
}
