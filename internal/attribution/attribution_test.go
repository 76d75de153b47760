package attribution

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NatLaw2/pickpulse-model/internal/models"
	"github.com/NatLaw2/pickpulse-model/internal/odds"
)

func testAttributor() *Attributor {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return NewAttributor(Thresholds{}, l)
}

func lostPick(event string, confidence float64) models.LockedPick {
	return models.LockedPick{
		EventID:       event,
		Market:        models.PickMarketMoneyline,
		SelectionTeam: "Boston Celtics",
		Confidence:    odds.Float(confidence),
		Result: &models.GradedResult{
			Result:   models.OutcomeLoss,
			Units:    -1,
			GradedAt: time.Now(),
		},
	}
}

func TestCategorize(t *testing.T) {
	a := testAttributor()

	// Heavy negative CLV beats every other signal.
	badLine := a.Categorize(lostPick("e1", 0.70), models.CLVRecord{
		EventID: "e1", CLV: odds.Float(-0.03), ProbAtLock: odds.Float(0.55),
	})
	assert.Equal(t, CategoryBadLine, badLine)

	// Confidence way above the market's number at lock.
	gap := a.Categorize(lostPick("e2", 0.68), models.CLVRecord{
		EventID: "e2", CLV: odds.Float(0.01), ProbAtLock: odds.Float(0.55),
	})
	assert.Equal(t, CategoryCalibrationGap, gap)

	// Coin-flip losses are just variance.
	variance := a.Categorize(lostPick("e3", 0.53), models.CLVRecord{
		EventID: "e3", CLV: odds.Float(0.005), ProbAtLock: odds.Float(0.52),
	})
	assert.Equal(t, CategoryVariance, variance)

	// Confident, fairly priced, still lost.
	miss := a.Categorize(lostPick("e4", 0.60), models.CLVRecord{
		EventID: "e4", CLV: odds.Float(0.005), ProbAtLock: odds.Float(0.58),
	})
	assert.Equal(t, CategoryModelMiss, miss)
}

func TestCategorizeWithoutRecord(t *testing.T) {
	// No CLV record at all: falls through on confidence.
	a := testAttributor()
	assert.Equal(t, CategoryVariance, a.Categorize(lostPick("e1", 0.52), models.CLVRecord{}))
	assert.Equal(t, CategoryModelMiss, a.Categorize(lostPick("e1", 0.61), models.CLVRecord{}))
}

func TestRunCountsOnlyLosses(t *testing.T) {
	win := lostPick("e-win", 0.6)
	win.Result = &models.GradedResult{Result: models.OutcomeWin, Units: 0.9, GradedAt: time.Now()}

	picks := []models.LockedPick{
		lostPick("e1", 0.70),
		lostPick("e2", 0.53),
		win,
		{EventID: "ungraded"},
	}
	records := []models.CLVRecord{
		{EventID: "e1", Market: models.PickMarketMoneyline, CLV: odds.Float(-0.03)},
	}

	breakdown := testAttributor().Run(picks, records)
	assert.Equal(t, 2, breakdown.Losses)
	assert.Equal(t, 1, breakdown.ByCount[CategoryBadLine])
	assert.Equal(t, 1, breakdown.ByCount[CategoryVariance])
	require.Contains(t, breakdown.UnitsLost, CategoryBadLine)
	assert.InDelta(t, 1.0, breakdown.UnitsLost[CategoryBadLine], 1e-9)
}
