// Package tournament sweeps a parameter grid through the replay simulator
// and ranks the resulting configurations.
package tournament

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/NatLaw2/pickpulse-model/internal/models"
	"github.com/NatLaw2/pickpulse-model/internal/replay"
)

// Grid holds the candidate values for each rating-model parameter. The
// tournament runs the cartesian product.
type Grid struct {
	LearningRates  []float64 `json:"k" mapstructure:"k"`
	HomeAdvantages []float64 `json:"hfa" mapstructure:"hfa"`
	MinEdges       []float64 `json:"min_edge" mapstructure:"min_edge"`
}

// Configurations expands the grid into the full parameter list.
func (g Grid) Configurations() []models.Parameters {
	var out []models.Parameters
	for _, k := range g.LearningRates {
		for _, hfa := range g.HomeAdvantages {
			for _, edge := range g.MinEdges {
				out = append(out, models.Parameters{
					LearningRate:  k,
					HomeAdvantage: hfa,
					MinEdge:       edge,
				})
			}
		}
	}
	return out
}

// Result is the ranked outcome of one tournament run. Deployed is the
// variant matching the currently deployed parameters, nil when that tuple
// was not part of the grid.
type Result struct {
	Ranked   []models.VariantResult `json:"ranked"`
	Deployed *models.VariantResult  `json:"deployed,omitempty"`
}

// Best returns the top-ranked variant.
func (r *Result) Best() *models.VariantResult {
	if len(r.Ranked) == 0 {
		return nil
	}
	return &r.Ranked[0]
}

// Tournament runs every grid configuration over the same pick history.
type Tournament struct {
	simulator *replay.Simulator
	logger    *logrus.Logger
}

func New(simulator *replay.Simulator, logger *logrus.Logger) *Tournament {
	if logger == nil {
		logger = logrus.New()
	}
	return &Tournament{simulator: simulator, logger: logger}
}

// Run replays each configuration concurrently. Every replay gets its own
// fresh rating table inside the simulator, so configurations share no
// mutable state; only the results slice is guarded.
func (t *Tournament) Run(grid Grid, deployed models.Parameters, input []replay.Pick) (*Result, error) {
	configs := grid.Configurations()
	if len(configs) == 0 || len(input) == 0 {
		return nil, models.ErrInsufficientData
	}

	t.logger.WithFields(logrus.Fields{
		"configs": len(configs),
		"picks":   len(input),
	}).Info("Starting variant tournament")

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []models.VariantResult
	)

	for _, params := range configs {
		wg.Add(1)
		go func(p models.Parameters) {
			defer wg.Done()

			variant, err := t.simulator.Run(p, input)
			if err != nil {
				t.logger.WithError(err).WithFields(logrus.Fields{
					"k":        p.LearningRate,
					"hfa":      p.HomeAdvantage,
					"min_edge": p.MinEdge,
				}).Warn("Replay failed for configuration")
				return
			}

			mu.Lock()
			results = append(results, *variant)
			mu.Unlock()
		}(params)
	}
	wg.Wait()

	if len(results) == 0 {
		return nil, models.ErrInsufficientData
	}

	Rank(results)

	out := &Result{Ranked: results}
	for i := range results {
		if results[i].Params.Equal(deployed) {
			out.Deployed = &results[i]
			break
		}
	}

	best := out.Best()
	t.logger.WithFields(logrus.Fields{
		"best_k":       best.Params.LearningRate,
		"best_logloss": best.LogLoss,
		"best_clv":     best.MeanCLV,
	}).Info("Tournament complete")

	return out, nil
}

// Rank sorts variants in place: ascending log-loss, ties broken by
// descending mean CLV. A variant that never bet has no scored picks and no
// loss metrics, so it sorts behind every variant that did; beyond that, bet
// count never factors into the ordering. Full metric ties fall back to the
// parameter tuple so the ranking is stable regardless of which goroutine
// finished first.
func Rank(results []models.VariantResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := &results[i], &results[j]
		if (a.Bets == 0) != (b.Bets == 0) {
			return b.Bets == 0
		}
		if a.LogLoss != b.LogLoss {
			return a.LogLoss < b.LogLoss
		}
		if a.MeanCLV != b.MeanCLV {
			return a.MeanCLV > b.MeanCLV
		}
		if a.Params.LearningRate != b.Params.LearningRate {
			return a.Params.LearningRate < b.Params.LearningRate
		}
		if a.Params.HomeAdvantage != b.Params.HomeAdvantage {
			return a.Params.HomeAdvantage < b.Params.HomeAdvantage
		}
		return a.Params.MinEdge < b.Params.MinEdge
	})
}
