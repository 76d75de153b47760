package tournament

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NatLaw2/pickpulse-model/internal/models"
	"github.com/NatLaw2/pickpulse-model/internal/odds"
	"github.com/NatLaw2/pickpulse-model/internal/replay"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func historyPick(event, home, away, selection string, start time.Time, result models.Outcome) replay.Pick {
	return replay.Pick{
		LockedPick: models.LockedPick{
			EventID:       event,
			Market:        models.PickMarketMoneyline,
			SelectionTeam: selection,
			LockedAt:      start.Add(-time.Hour),
			GameStartTime: start,
			HomeTeam:      home,
			AwayTeam:      away,
			LockedOdds: &models.LockedOdds{
				MLHome: odds.Float(-120),
				MLAway: odds.Float(100),
			},
			Result: &models.GradedResult{Result: result, GradedAt: start.Add(3 * time.Hour)},
		},
	}
}

func history() []replay.Pick {
	start := time.Date(2026, 1, 5, 19, 0, 0, 0, time.UTC)
	teams := [][2]string{
		{"Boston Celtics", "Miami Heat"},
		{"Denver Nuggets", "Utah Jazz"},
		{"Miami Heat", "Denver Nuggets"},
		{"Utah Jazz", "Boston Celtics"},
	}
	var picks []replay.Pick
	for i, pair := range teams {
		result := models.OutcomeWin
		if i%3 == 2 {
			result = models.OutcomeLoss
		}
		picks = append(picks, historyPick(
			"evt", pair[0], pair[1], pair[0],
			start.Add(time.Duration(i)*24*time.Hour), result))
	}
	return picks
}

func TestGridConfigurations(t *testing.T) {
	grid := Grid{
		LearningRates:  []float64{10, 20},
		HomeAdvantages: []float64{50, 65, 80},
		MinEdges:       []float64{0, 0.02},
	}
	configs := grid.Configurations()
	assert.Len(t, configs, 12)

	seen := make(map[models.Parameters]bool)
	for _, c := range configs {
		seen[c] = true
	}
	assert.Len(t, seen, 12, "every tuple distinct")
}

func TestRunRanksAndLocatesDeployed(t *testing.T) {
	grid := Grid{
		LearningRates:  []float64{10, 20, 32},
		HomeAdvantages: []float64{65},
		MinEdges:       []float64{-1},
	}
	deployed := models.Parameters{LearningRate: 20, HomeAdvantage: 65, MinEdge: -1}

	tour := New(replay.NewSimulator(0, quietLogger()), quietLogger())
	result, err := tour.Run(grid, deployed, history())
	require.NoError(t, err)

	require.Len(t, result.Ranked, 3)
	for i := 1; i < len(result.Ranked); i++ {
		assert.LessOrEqual(t, result.Ranked[i-1].LogLoss, result.Ranked[i].LogLoss)
	}

	require.NotNil(t, result.Deployed)
	assert.True(t, result.Deployed.Params.Equal(deployed))
	require.NotNil(t, result.Best())
}

func TestRunDeployedOutsideGrid(t *testing.T) {
	grid := Grid{
		LearningRates:  []float64{10},
		HomeAdvantages: []float64{65},
		MinEdges:       []float64{-1},
	}
	outside := models.Parameters{LearningRate: 99, HomeAdvantage: 99, MinEdge: 0}

	tour := New(replay.NewSimulator(0, quietLogger()), quietLogger())
	result, err := tour.Run(grid, outside, history())
	require.NoError(t, err)
	assert.Nil(t, result.Deployed)
}

func TestRunEmptyGrid(t *testing.T) {
	tour := New(replay.NewSimulator(0, quietLogger()), quietLogger())
	_, err := tour.Run(Grid{}, models.Parameters{}, history())
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestRunDeterministicAcrossRuns(t *testing.T) {
	grid := Grid{
		LearningRates:  []float64{10, 20, 32},
		HomeAdvantages: []float64{50, 65},
		MinEdges:       []float64{-1, 0.01},
	}
	tour := New(replay.NewSimulator(0, quietLogger()), quietLogger())

	first, err := tour.Run(grid, models.Parameters{}, history())
	require.NoError(t, err)
	second, err := tour.Run(grid, models.Parameters{}, history())
	require.NoError(t, err)
	assert.Equal(t, first.Ranked, second.Ranked, "concurrency must not change the ranking")
}

func TestZeroBetVariantRanksLast(t *testing.T) {
	grid := Grid{
		LearningRates:  []float64{20},
		HomeAdvantages: []float64{65},
		MinEdges:       []float64{-1, 0.9},
	}

	tour := New(replay.NewSimulator(0, quietLogger()), quietLogger())
	result, err := tour.Run(grid, models.Parameters{}, history())
	require.NoError(t, err)

	// min_edge 0.9 excludes every bet; that variant must not win.
	require.Len(t, result.Ranked, 2)
	best := result.Best()
	require.NotNil(t, best)
	assert.Greater(t, best.Bets, 0, "a variant that never bet must not rank first")
	assert.Equal(t, 0.9, result.Ranked[1].Params.MinEdge)
	assert.Zero(t, result.Ranked[1].Bets)
}

func TestRankZeroBetLast(t *testing.T) {
	results := []models.VariantResult{
		{Params: models.Parameters{MinEdge: 0.9}, LogLoss: 0, Bets: 0},
		{Params: models.Parameters{MinEdge: 0}, LogLoss: 0.68, MeanCLV: 0.01, Bets: 120},
	}
	Rank(results)

	assert.Equal(t, 0.0, results[0].Params.MinEdge, "scored variant first despite higher log-loss")
	assert.Zero(t, results[1].Bets)
}

func TestRankTieBreaksOnCLV(t *testing.T) {
	results := []models.VariantResult{
		{Params: models.Parameters{LearningRate: 1}, LogLoss: 0.65, MeanCLV: 0.01, Bets: 500},
		{Params: models.Parameters{LearningRate: 2}, LogLoss: 0.65, MeanCLV: 0.03, Bets: 50},
		{Params: models.Parameters{LearningRate: 3}, LogLoss: 0.60, MeanCLV: -0.01, Bets: 100},
	}
	Rank(results)

	assert.Equal(t, 3.0, results[0].Params.LearningRate, "lowest log-loss first")
	assert.Equal(t, 2.0, results[1].Params.LearningRate, "tie broken by higher CLV")
	assert.Equal(t, 1.0, results[2].Params.LearningRate, "fewer bets earns no preference")
}
