// Package main provides the evaluation pipeline entry point.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/NatLaw2/pickpulse-model/internal/config"
	"github.com/NatLaw2/pickpulse-model/internal/database"
	"github.com/NatLaw2/pickpulse-model/internal/datasource"
	"github.com/NatLaw2/pickpulse-model/internal/health"
	"github.com/NatLaw2/pickpulse-model/internal/logger"
	"github.com/NatLaw2/pickpulse-model/internal/metrics"
	"github.com/NatLaw2/pickpulse-model/internal/pipeline"
	"github.com/NatLaw2/pickpulse-model/internal/repository"
	"github.com/NatLaw2/pickpulse-model/internal/scheduler"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile    string
	stageOverride string
	modeOverride  string

	cfg *config.Config
	lg  *logrus.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&stageOverride, "stage", "", "Run a single pipeline stage (clv, attribution, discovery, calibration, tournament, gate)")
	rootCmd.PersistentFlags().StringVar(&modeOverride, "mode", "", "Override run mode (shadow, deploy)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Run one evaluation pass over the locked-pick history",
	Long: `Audits closing-line value, regrades picks against final scores,
attributes losses, mines segments, fits the candidate confidence curve,
runs the variant tournament, and judges promotion through the gate.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Stay resident and run evaluations on the configured schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("evaluate %s (%s)\n", Version, GitCommit)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func setup() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if stageOverride != "" {
		cfg.Evaluation.Stage = stageOverride
	}
	if modeOverride != "" {
		cfg.Evaluation.Mode = modeOverride
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	lg = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	metrics.InitRegistry()
	return nil
}

// buildPipeline wires the store and odds source behind a pipeline; the
// caller owns the returned database handle.
func buildPipeline(ctx context.Context) (*pipeline.Pipeline, *database.DB, error) {
	if err := config.LoadSecretsFromAWS(ctx, cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to pick store: %w", err)
	}

	cacheTTL := time.Duration(cfg.DataSource.CacheTTLSeconds) * time.Second
	repos, err := repository.NewRepositories(db, cacheTTL)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	source, err := datasource.NewSource(&cfg.DataSource, lg)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to initialize odds source: %w", err)
	}

	return pipeline.New(cfg, pipeline.NewStore(repos), source, lg), db, nil
}

func runOnce(ctx context.Context) error {
	p, db, err := buildPipeline(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := p.Run(ctx)
	if err != nil {
		return err
	}

	lg.WithFields(logrus.Fields{
		"run_id": report.RunID,
		"status": report.Status,
	}).Info("Evaluation finished")
	return nil
}

func serve() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p, db, err := buildPipeline(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	var healthServer *health.Server
	if cfg.Metrics.Enabled {
		healthServer = health.NewServer(health.Config{
			ServiceName: cfg.App.Name,
			Port:        cfg.Metrics.Port,
			MetricsPath: cfg.Metrics.Path,
			Logger:      lg,
			DB:          db,
		})
		healthServer.Start(ctx)
	}

	sched := scheduler.NewScheduler(lg)
	runner := scheduler.RunnerFunc(func(runCtx context.Context) error {
		report, runErr := p.Run(runCtx)
		if healthServer != nil && report != nil {
			healthServer.RecordRun(report.Status, report.FinishedAt)
		}
		return runErr
	})
	if err := sched.ScheduleEvaluation(cfg.Scheduler.CronSpec, runner); err != nil {
		return fmt.Errorf("failed to schedule evaluation: %w", err)
	}
	if err := sched.Start(); err != nil {
		return err
	}
	if healthServer != nil {
		healthServer.SetReady(true)
	}

	lg.WithFields(logrus.Fields{
		"cron": cfg.Scheduler.CronSpec,
		"next": sched.NextRun().Format(time.RFC3339),
	}).Info("Scheduler resident")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	lg.Info("Shutting down")
	return sched.Stop()
}
