package grading

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NatLaw2/pickpulse-model/internal/models"
	"github.com/NatLaw2/pickpulse-model/internal/odds"
)

func testGrader() *Grader {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return NewGrader(l)
}

func score(home, away int) models.FinalScore {
	return models.FinalScore{
		EventID:   "e1",
		HomeTeam:  "Boston Celtics",
		AwayTeam:  "Miami Heat",
		HomeScore: home,
		AwayScore: away,
	}
}

func mlPick(selection string) models.LockedPick {
	return models.LockedPick{
		EventID:       "e1",
		Market:        models.PickMarketMoneyline,
		SelectionTeam: selection,
		LockedOdds: &models.LockedOdds{
			MLHome: odds.Float(-150),
			MLAway: odds.Float(130),
		},
	}
}

func TestGradeMoneyline(t *testing.T) {
	g := testGrader()

	win := g.Grade(mlPick("Boston Celtics"), score(110, 100))
	require.NotNil(t, win)
	assert.Equal(t, models.OutcomeWin, win.Result)
	assert.InDelta(t, 100.0/150.0, win.Units, 1e-9)

	loss := g.Grade(mlPick("Miami Heat"), score(110, 100))
	require.NotNil(t, loss)
	assert.Equal(t, models.OutcomeLoss, loss.Result)
	assert.Equal(t, -1.0, loss.Units)
}

func TestGradeMoneylineUnresolvableSide(t *testing.T) {
	assert.Nil(t, testGrader().Grade(mlPick("Utah Jazz"), score(110, 100)))
}

func TestGradeSpread(t *testing.T) {
	g := testGrader()
	pick := models.LockedPick{
		EventID:       "e1",
		Market:        models.PickMarketSpread,
		SelectionTeam: "Boston Celtics",
		LockedOdds: &models.LockedOdds{
			SpreadHomePoint: odds.Float(-4.5),
			SpreadHomePrice: odds.Float(-110),
		},
	}

	cover := g.Grade(pick, score(110, 100)) // won by 10, laid 4.5
	require.NotNil(t, cover)
	assert.Equal(t, models.OutcomeWin, cover.Result)
	assert.InDelta(t, 100.0/110.0, cover.Units, 1e-9)

	miss := g.Grade(pick, score(103, 100)) // won by 3, laid 4.5
	require.NotNil(t, miss)
	assert.Equal(t, models.OutcomeLoss, miss.Result)

	pick.LockedOdds.SpreadHomePoint = odds.Float(-10)
	push := g.Grade(pick, score(110, 100)) // won by exactly the number
	require.NotNil(t, push)
	assert.Equal(t, models.OutcomePush, push.Result)
	assert.Equal(t, 0.0, push.Units)
}

func TestGradeSpreadAwaySide(t *testing.T) {
	pick := models.LockedPick{
		EventID:       "e1",
		Market:        models.PickMarketSpread,
		SelectionTeam: "Miami Heat",
		LockedOdds: &models.LockedOdds{
			SpreadAwayPoint: odds.Float(4.5),
			SpreadAwayPrice: odds.Float(-110),
		},
	}

	// Lost by 3, getting 4.5: covered.
	res := testGrader().Grade(pick, score(103, 100))
	require.NotNil(t, res)
	assert.Equal(t, models.OutcomeWin, res.Result)
}

func TestGradeSpreadNoPoint(t *testing.T) {
	pick := models.LockedPick{
		EventID:       "e1",
		Market:        models.PickMarketSpread,
		SelectionTeam: "Boston Celtics",
	}
	assert.Nil(t, testGrader().Grade(pick, score(110, 100)))
}

func TestRegradeFlagsDiscrepancies(t *testing.T) {
	stored := mlPick("Boston Celtics")
	stored.Result = &models.GradedResult{Result: models.OutcomeLoss, GradedAt: time.Now()}

	noScore := mlPick("Boston Celtics")
	noScore.EventID = "unknown-event"

	graded, discrepancies := testGrader().Regrade(
		[]models.LockedPick{stored, noScore},
		map[string]models.FinalScore{"e1": score(110, 100)},
	)

	require.Len(t, graded, 2)
	assert.Equal(t, models.OutcomeWin, graded[0].Result.Result)
	require.Len(t, discrepancies, 1)
	assert.Equal(t, models.OutcomeLoss, discrepancies[0].Stored)
	assert.Equal(t, models.OutcomeWin, discrepancies[0].Derived)

	// The scoreless pick is returned untouched.
	assert.Nil(t, graded[1].Result)
}
