// Package config provides configuration management for the PickPulse model
// evaluation pipeline.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/NatLaw2/pickpulse-model/internal/attribution"
	"github.com/NatLaw2/pickpulse-model/internal/gate"
	"github.com/NatLaw2/pickpulse-model/internal/models"
	"github.com/NatLaw2/pickpulse-model/internal/tournament"
)

// Config is the complete pipeline configuration. Every stage receives the
// slice of it the stage needs; nothing reads ambient process state.
type Config struct {
	App         AppConfig              `mapstructure:"app" validate:"required"`
	Database    DatabaseConfig         `mapstructure:"database" validate:"required"`
	DataSource  DataSourceConfig       `mapstructure:"data_source" validate:"required"`
	Evaluation  EvaluationConfig       `mapstructure:"evaluation" validate:"required"`
	Tournament  TournamentConfig       `mapstructure:"tournament" validate:"required"`
	Gate        gate.Thresholds        `mapstructure:"gate"`
	Attribution attribution.Thresholds `mapstructure:"attribution"`
	Discovery   DiscoveryConfig        `mapstructure:"discovery"`
	Metrics     MetricsConfig          `mapstructure:"metrics"`
	Scheduler   SchedulerConfig        `mapstructure:"scheduler"`
	Output      OutputConfig           `mapstructure:"output"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`

	// Optional AWS Secrets Manager overlay for credentials.
	AWSRegion   string `mapstructure:"aws_region"`
	SecretsName string `mapstructure:"secrets_name"`
}

// DatabaseConfig represents the pick-history store connection
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// DataSourceConfig represents the closing-odds provider used to backfill
// quote history that the store is missing.
type DataSourceConfig struct {
	Provider        string  `mapstructure:"provider" validate:"required,oneof=odds_api csv none"`
	BaseURL         string  `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey          string  `mapstructure:"api_key"`
	Sport           string  `mapstructure:"sport"`
	RequestsPerSec  float64 `mapstructure:"requests_per_sec" validate:"omitempty,gt=0"`
	RetryMax        int     `mapstructure:"retry_max" validate:"gte=0"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds" validate:"omitempty,gt=0"`
	CSVDir          string  `mapstructure:"csv_dir"`
	CacheTTLSeconds int     `mapstructure:"cache_ttl_seconds" validate:"omitempty,gt=0"`
}

// EvaluationConfig represents the evaluation run shape
type EvaluationConfig struct {
	LookbackDays          int     `mapstructure:"lookback_days" validate:"required,gt=0"`
	MinCalibrationSamples int     `mapstructure:"min_calibration_samples" validate:"required,gt=0"`
	InitialRating         float64 `mapstructure:"initial_rating" validate:"omitempty,gt=0"`

	// Deployed is the champion parameter tuple currently in production.
	Deployed models.Parameters `mapstructure:"deployed"`

	// Mode selects shadow (evaluate only) or deploy (write the champion
	// artifact when the gate passes).
	Mode string `mapstructure:"mode" validate:"required,oneof=shadow deploy"`

	// Stage limits the run to a single pipeline stage; empty runs all.
	Stage string `mapstructure:"stage" validate:"omitempty,oneof=clv attribution discovery calibration tournament gate"`
}

// TournamentConfig wraps the parameter grid
type TournamentConfig struct {
	Grid tournament.Grid `mapstructure:"grid" validate:"required"`
}

// DiscoveryConfig bounds segment mining
type DiscoveryConfig struct {
	MinSupport int     `mapstructure:"min_support" validate:"omitempty,gt=0"`
	MinLift    float64 `mapstructure:"min_lift" validate:"omitempty,gt=0"`
}

// MetricsConfig represents the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// SchedulerConfig represents the recurring-run schedule
type SchedulerConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CronSpec string `mapstructure:"cron_spec"`
}

// OutputConfig represents where run artifacts are written
type OutputConfig struct {
	Dir              string `mapstructure:"dir" validate:"required"`
	CurveFile        string `mapstructure:"curve_file"`
	ChampionFile     string `mapstructure:"champion_file"`
	GateAuditFile    string `mapstructure:"gate_audit_file"`
	RunReportFile    string `mapstructure:"run_report_file"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDeploy reports whether gate passes may write the champion artifact
func (c *Config) IsDeploy() bool {
	return c.Evaluation.Mode == "deploy"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// CurvePath returns the confidence-curve artifact path
func (c *Config) CurvePath() string {
	return c.outputPath(c.Output.CurveFile, "confidence_curve_candidate.json")
}

// ChampionPath returns the champion-configuration artifact path
func (c *Config) ChampionPath() string {
	return c.outputPath(c.Output.ChampionFile, "champion_config.json")
}

// GateAuditPath returns the gate audit artifact path
func (c *Config) GateAuditPath() string {
	return c.outputPath(c.Output.GateAuditFile, "gate_audit.json")
}

// RunReportPath returns the run report artifact path
func (c *Config) RunReportPath() string {
	return c.outputPath(c.Output.RunReportFile, "run_report.json")
}

func (c *Config) outputPath(name, fallback string) string {
	if name == "" {
		name = fallback
	}
	return filepath.Join(c.Output.Dir, name)
}
