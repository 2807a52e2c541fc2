package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"mealweek/internal/blob"
	"mealweek/internal/config"
	"mealweek/internal/core"
)

var (
	configPath string

	cfg     config.Config
	logger  *slog.Logger
	store   core.PersistentStore
	service *core.Service
	metrics *http.Server
)

var rootCmd = &cobra.Command{
	Use:   "mealweek",
	Short: "Plan a week of meals and keep a recipe library in sync",
	Long: `mealweek keeps a weekly meal plan and a recipe library.

Meals are scheduled on calendar days; every meal name has a recipe in the
library, and edits to either side are carried over to the other.

Storage, archive and logging are configured with --config, a YAML file, or
MEALWEEK_* environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		return setup(cmd.Context())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		_ = teardown()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
}

func setup(ctx context.Context) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	level, _ := cfg.SlogLevel()
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts := []core.ServiceOption{core.WithLogger(logger)}
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		recorder, err := core.NewPrometheusMetricsRecorder(reg)
		if err != nil {
			return err
		}
		opts = append(opts, core.WithMetricsRecorder(recorder))
		serveMetrics(reg)
	}

	store, err = core.OpenPersistentStore(ctx, cfg.Storage, core.NewDefaultRulesEngine())
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}
	service = core.NewService(store, opts...)
	logger.Debug("store opened", "driver", cfg.Storage.Driver, "config", cfg.Path)
	return nil
}

func serveMetrics(reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	metrics = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "addr", cfg.MetricsAddr, "error", err)
		}
	}()
}

func teardown() error {
	if metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = metrics.Shutdown(ctx)
		cancel()
		metrics = nil
	}
	if store == nil {
		return nil
	}
	err := core.CloseStore(store)
	store = nil
	return err
}

// openArchive opens the configured blob archive for backups and exports.
func openArchive(ctx context.Context) (blob.Store, error) {
	archive, err := blob.Open(ctx, cfg.Archive)
	if err != nil {
		return nil, fmt.Errorf("open %s archive: %w", cfg.Archive.Driver, err)
	}
	return archive, nil
}

// printSync reports follow-up writes and returns their joined failure.
func printSync(report core.SyncReport) error {
	for _, r := range report.CreatedRecipes {
		fmt.Printf("  + recipe %s (%s)\n", r.Name, r.ID)
	}
	for _, r := range report.UpdatedRecipes {
		fmt.Printf("  ~ recipe %s (%s)\n", r.Name, r.ID)
	}
	for _, m := range report.UpdatedMeals {
		fmt.Printf("  ~ meal %s on %s (%s)\n", m.Name, m.Date, m.ID)
	}
	return report.Err()
}
