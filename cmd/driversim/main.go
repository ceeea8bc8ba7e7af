// v1
// cmd/driversim/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"log/slog"

	"github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/bus"
	"github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/driversim"
)

func main() {
	broker := flag.String("broker", defaultBroker(), "MQTT broker URL")
	topic := flag.String("topic", "vehicle/actions", "topic receiving action events")
	interval := flag.Duration("interval", driversim.DefaultInterval, "delay between actions")
	count := flag.Int("count", 0, "number of actions to publish (0 = run until interrupted)")
	seed := flag.Int64("seed", 0, "random seed (0 = derive from clock)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := bus.New(bus.Config{BrokerURL: *broker}, logger)
	if err := client.Connect(ctx); err != nil {
		logger.Error("bus_connect_failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer client.Close()

	sim := driversim.New(driversim.Config{
		Topic:    *topic,
		Interval: *interval,
		Count:    *count,
		Seed:     *seed,
	}, client, logger)

	published, err := sim.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("simulator_failed", slog.Any("err", err))
		os.Exit(1)
	}
	logger.Info("simulator_done", slog.Int("published", published))
}

// defaultBroker honours the same MQTT_HOST and MQTT_PORT environment
// variables the assistant reads, so both sides point at one broker in
// compose setups.
func defaultBroker() string {
	host := strings.TrimSpace(os.Getenv("MQTT_HOST"))
	if host == "" {
		host = "localhost"
	}
	port := strings.TrimSpace(os.Getenv("MQTT_PORT"))
	if port == "" {
		port = "1883"
	}
	return fmt.Sprintf("tcp://%s:%s", host, port)
}
