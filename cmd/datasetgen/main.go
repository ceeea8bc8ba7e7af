// v1
// cmd/datasetgen/main.go
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"log/slog"

	"github.com/joho/godotenv"
	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/dataset"
)

var (
	flagDrivers int
	flagTrips   int
	flagOut     string
	flagModel   string
	flagMock    bool
	flagSeed    int64
)

var rootCmd = &cobra.Command{
	Use:   "datasetgen",
	Short: "Generate a synthetic driver-behaviour dataset",
	Long: "Generates labelled trips of vehicle actions per driver persona and writes " +
		"them as CSV. With an OPENAI_API_KEY personas and sequences come from the " +
		"chat model; --mock (or a missing key) switches to canned material.",
	RunE: run,
}

func init() {
	rootCmd.Flags().IntVar(&flagDrivers, "drivers", 10, "number of driver personas")
	rootCmd.Flags().IntVar(&flagTrips, "trips", 5, "trips generated per driver")
	rootCmd.Flags().StringVar(&flagOut, "out", "vehicle_ai_dataset.csv", "output CSV path")
	rootCmd.Flags().StringVar(&flagModel, "model", openai.GPT3Dot5Turbo, "chat model for live generation")
	rootCmd.Flags().BoolVar(&flagMock, "mock", false, "skip the API and use canned personas and sequences")
	rootCmd.Flags().Int64Var(&flagSeed, "seed", 0, "random seed (0 = derive from clock)")
}

func run(cmd *cobra.Command, _ []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := godotenv.Load(); err != nil {
		logger.Info("no_dotenv_file", slog.Any("err", err))
	}

	var chat dataset.ChatCompleter
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	switch {
	case flagMock:
		logger.Info("mock_mode")
	case apiKey == "":
		logger.Warn("openai_key_missing_using_canned_material")
	default:
		chat = openai.NewClient(apiKey)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen := dataset.New(dataset.Config{
		Drivers:        flagDrivers,
		TripsPerDriver: flagTrips,
		Model:          flagModel,
		Seed:           flagSeed,
	}, chat, logger)

	logger.Info("generation_started",
		slog.Int("drivers", flagDrivers),
		slog.Int("trips_per_driver", flagTrips),
		slog.Bool("live_model", chat != nil),
	)
	records, err := gen.Generate(ctx)
	if err != nil {
		return fmt.Errorf("generate dataset: %w", err)
	}

	out, err := os.Create(flagOut)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		_ = out.Close()
	}()
	if err := dataset.WriteCSV(out, records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	sum := dataset.Summarize(records)
	logger.Info("dataset_saved",
		slog.String("path", flagOut),
		slog.Int("records", sum.TotalRecords),
		slog.Int("drivers", sum.UniqueDrivers),
		slog.Int("trips", sum.UniqueTrips),
		slog.String("top_actions", strings.Join(sum.TopActions(5), ",")),
	)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
