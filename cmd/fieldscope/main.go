package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/chimera-data/fieldscope"
	"github.com/chimera-data/fieldscope/internal/config"
	"github.com/chimera-data/fieldscope/internal/telemetry"
)

// version is set at build time via -ldflags.
var version = "dev"

// app carries state shared by all subcommands, populated in PersistentPreRunE.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	metrics *telemetry.RunMetrics

	otelShutdown telemetry.Shutdown
}

var (
	cli app

	rootCmd = &cobra.Command{
		Use:   "fieldscope",
		Short: "Profile heterogeneous NDJSON streams: discover fields, derive schemas, suggest models",
		Long: `fieldscope ingests newline-delimited JSON records and builds a profile of
every field path they contain: types, presence, example values, value
distributions and temporal coverage. From the profile it derives a storage
schema and deterministic ML model suggestions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (non-fatal; production won't have one).
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cli.cfg = cfg

			level := slog.LevelInfo
			if cfg.LogLevel == "debug" {
				level = slog.LevelDebug
			}
			// Logs go to stderr; stdout is reserved for profile output.
			cli.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			}))
			slog.SetDefault(cli.logger)

			shutdown, err := telemetry.Init(cmd.Context(), cfg.OTELEndpoint, cfg.ServiceName, version, true)
			if err != nil {
				return fmt.Errorf("telemetry: %w", err)
			}
			cli.otelShutdown = shutdown

			metrics, err := telemetry.NewRunMetrics()
			if err != nil {
				return fmt.Errorf("telemetry: %w", err)
			}
			cli.metrics = metrics
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if cli.otelShutdown != nil {
				_ = cli.otelShutdown(context.Background())
			}
		},
	}
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

// profileOptions translates configuration and flags into engine options.
func (a *app) profileOptions() ([]fieldscope.Option, error) {
	opts := []fieldscope.Option{
		fieldscope.WithMaxDepth(a.cfg.MaxDepth),
		fieldscope.WithExampleCap(a.cfg.ExampleCap),
		fieldscope.WithCardinalityCap(a.cfg.CardinalityCap),
		fieldscope.WithTimestampPath(a.cfg.TimestampPath),
		fieldscope.WithSuggestionThreshold(a.cfg.ThresholdPct),
		fieldscope.WithLogger(a.logger),
	}
	if a.cfg.DictionaryPath != "" {
		dict, err := fieldscope.LoadDictionaryFile(a.cfg.DictionaryPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, fieldscope.WithDictionary(dict))
	}
	return opts, nil
}
