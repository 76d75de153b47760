package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "PICKPULSE"

// Load reads and parses the configuration from file and environment
// variables. Environment variable placeholders in the YAML file (${VAR})
// are expanded before parsing.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

// LoadWithDefaults loads configuration with defaults for optional fields; a
// missing config file is not an error, environment variables still apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "pickpulse-model")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 5)

	v.SetDefault("data_source.provider", "none")
	v.SetDefault("data_source.requests_per_sec", 2.0)
	v.SetDefault("data_source.retry_max", 3)
	v.SetDefault("data_source.timeout_seconds", 15)
	v.SetDefault("data_source.cache_ttl_seconds", 300)

	v.SetDefault("evaluation.lookback_days", 60)
	v.SetDefault("evaluation.min_calibration_samples", 50)
	v.SetDefault("evaluation.initial_rating", 1500.0)
	v.SetDefault("evaluation.mode", "shadow")
	v.SetDefault("evaluation.deployed.k", 20.0)
	v.SetDefault("evaluation.deployed.hfa", 65.0)
	v.SetDefault("evaluation.deployed.min_edge", 0.0)

	v.SetDefault("tournament.grid.k", []float64{12, 20, 32})
	v.SetDefault("tournament.grid.hfa", []float64{50, 65, 80})
	v.SetDefault("tournament.grid.min_edge", []float64{0, 0.01, 0.02})

	v.SetDefault("discovery.min_support", 20)
	v.SetDefault("discovery.min_lift", 0.05)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.cron_spec", "0 6 * * *")

	v.SetDefault("output.dir", "artifacts")
}
