package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/naka-gawa/team-metrics/internal/config"
	"github.com/naka-gawa/team-metrics/internal/gateway"
	"github.com/naka-gawa/team-metrics/internal/logging"
	"github.com/naka-gawa/team-metrics/internal/storage"
	"github.com/naka-gawa/team-metrics/internal/telemetry"
	"github.com/naka-gawa/team-metrics/internal/usecase"
)

// app holds the dependencies shared by the commands.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	db        *gorm.DB
	registry  *prometheus.Registry
	github    *gateway.GitHubGateway
	employees *usecase.EmployeeService
	dashboard *usecase.Dashboard
	snapshots *usecase.SnapshotWriter
}

func newApp(cmd *cobra.Command) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.New(cfg.Log.Level, verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", cfg.Timezone, err)
	}
	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create id generator: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := telemetry.New(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	githubGateway, err := gateway.NewGitHubGateway(cfg.GitHub, logger, gateway.WithMetrics(metrics))
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub gateway: %w", err)
	}

	db, err := storage.Open(cfg.Database.URL, logger)
	if err != nil {
		return nil, err
	}
	employeeStore := storage.NewEmployeeStore(db)
	metricStore := storage.NewMetricStore(db)

	return &app{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		registry:  registry,
		github:    githubGateway,
		employees: usecase.NewEmployeeService(employeeStore, node, logger),
		dashboard: usecase.NewDashboard(employeeStore, metricStore, loc),
		snapshots: usecase.NewSnapshotWriter(usecase.SnapshotParams{
			GitHub:     cfg.GitHub,
			Aggregator: usecase.NewAggregator(githubGateway, logger),
			Employees:  employeeStore,
			Metrics:    metricStore,
			GenID:      node,
			Logger:     logger,
			Telemetry:  metrics,
		}),
	}, nil
}

// mustApp builds the app or exits with a message on stderr.
func mustApp(cmd *cobra.Command) *app {
	a, err := newApp(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return a
}

func (a *app) Close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.logger.Sync()
}

// fail prints msg and err to stderr, then exits.
func (a *app) fail(msg string, err error) {
	a.logger.Debug(msg, zap.Error(err))
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	a.Close()
	os.Exit(1)
}

func printJSON(v interface{}) error {
	// Marshal the results into a pretty-printed JSON string.
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results to JSON: %w", err)
	}
	fmt.Println(string(jsonData))
	return nil
}
