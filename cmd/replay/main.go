// Package main provides a CLI for replaying one parameter tuple over the
// locked-pick history, useful for inspecting a single variant outside the
// full tournament.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/NatLaw2/pickpulse-model/internal/clv"
	"github.com/NatLaw2/pickpulse-model/internal/config"
	"github.com/NatLaw2/pickpulse-model/internal/database"
	"github.com/NatLaw2/pickpulse-model/internal/logger"
	"github.com/NatLaw2/pickpulse-model/internal/models"
	"github.com/NatLaw2/pickpulse-model/internal/replay"
	"github.com/NatLaw2/pickpulse-model/internal/repository"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		k          = flag.Float64("k", 20, "Rating update factor")
		hfa        = flag.Float64("hfa", 65, "Home-court advantage in rating points")
		minEdge    = flag.Float64("min-edge", 0, "Minimum model-vs-market edge to place a bet")
		lookback   = flag.Int("lookback", 0, "Override lookback window in days")
		output     = flag.String("output", "", "Write the result JSON here instead of stdout")
	)
	flag.Parse()

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if *lookback > 0 {
		cfg.Evaluation.LookbackDays = *lookback
	}

	lg := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	ctx := context.Background()

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		lg.WithError(err).Fatal("Failed to connect to pick store")
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db, time.Duration(cfg.DataSource.CacheTTLSeconds)*time.Second)
	if err != nil {
		lg.WithError(err).Fatal("Failed to initialize repositories")
	}

	params := models.Parameters{LearningRate: *k, HomeAdvantage: *hfa, MinEdge: *minEdge}
	result := runReplay(ctx, cfg, repos, params, lg)

	writeResult(result, *output, lg)
}

func runReplay(ctx context.Context, cfg *config.Config, repos *repository.Repositories, params models.Parameters, lg *logrus.Logger) *models.VariantResult {
	cutoff := time.Now().UTC().AddDate(0, 0, -cfg.Evaluation.LookbackDays)
	picks, err := repos.Picks.GetLockedSince(ctx, cutoff)
	if err != nil {
		lg.WithError(err).Fatal("Failed to load picks")
	}

	eventIDs := make([]string, 0, len(picks))
	seen := make(map[string]struct{}, len(picks))
	for _, p := range picks {
		if _, ok := seen[p.EventID]; !ok {
			seen[p.EventID] = struct{}{}
			eventIDs = append(eventIDs, p.EventID)
		}
	}
	quotesByEvent, err := repos.Quotes.GetByEvents(ctx, eventIDs)
	if err != nil {
		lg.WithError(err).Fatal("Failed to load quotes")
	}

	records := clv.NewAuditor(lg).AuditAll(picks, quotesByEvent)
	input := replay.BuildInput(picks, records)

	simulator := replay.NewSimulator(cfg.Evaluation.InitialRating, lg)
	result, err := simulator.Run(params, input)
	if err != nil {
		lg.WithError(err).Fatal("Replay failed")
	}

	lg.WithFields(logrus.Fields{
		"bets":    result.Bets,
		"units":   result.Units,
		"logloss": result.LogLoss,
	}).Info("Replay complete")
	return result
}

func writeResult(result *models.VariantResult, path string, lg *logrus.Logger) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		lg.WithError(err).Fatal("Failed to encode result")
	}
	data = append(data, '\n')

	if path == "" {
		os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		lg.WithError(err).Fatal("Failed to write result")
	}
	lg.WithField("path", path).Info("Wrote replay result")
}
