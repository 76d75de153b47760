package datasource

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/NatLaw2/pickpulse-model/internal/config"
)

// NewSource builds the configured historical odds source. The "none"
// provider returns nil: the pipeline then relies on stored quotes alone.
func NewSource(cfg *config.DataSourceConfig, logger *logrus.Logger) (HistoricalOddsSource, error) {
	switch cfg.Provider {
	case "none", "":
		return nil, nil

	case "csv":
		return NewCSVSource(cfg.CSVDir, logger), nil

	case "odds_api":
		httpCfg := DefaultHTTPClientConfig()
		if cfg.TimeoutSeconds > 0 {
			httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
		if cfg.RetryMax > 0 {
			httpCfg.MaxRetries = cfg.RetryMax
		}
		if cfg.RequestsPerSec > 0 {
			httpCfg.RateLimit = cfg.RequestsPerSec
		}
		client := NewRateLimitedHTTPClient(httpCfg, logger)
		return NewOddsAPISource(cfg.BaseURL, cfg.APIKey, cfg.Sport, client, logger), nil

	default:
		return nil, fmt.Errorf("unknown data source provider %q", cfg.Provider)
	}
}
