// Package grading re-grades locked picks from final scores, independently
// of whatever result the upstream writer attached.
package grading

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/NatLaw2/pickpulse-model/internal/models"
	"github.com/NatLaw2/pickpulse-model/internal/odds"
)

// Grader derives graded results from final scores.
type Grader struct {
	logger *logrus.Logger
}

func NewGrader(logger *logrus.Logger) *Grader {
	if logger == nil {
		logger = logrus.New()
	}
	return &Grader{logger: logger}
}

// Grade derives the pick's result from the event's final score. Returns
// nil when the side cannot be resolved or the market cannot be graded from
// the available data.
func (g *Grader) Grade(pick models.LockedPick, score models.FinalScore) *models.GradedResult {
	side, ok := odds.ResolveSide(pick.SelectionTeam, score.HomeTeam, score.AwayTeam)
	if !ok {
		return nil
	}

	switch pick.Market {
	case models.PickMarketMoneyline:
		return g.gradeMoneyline(pick, score, side)
	case models.PickMarketSpread:
		return g.gradeSpread(pick, score, side)
	}
	return nil
}

func (g *Grader) gradeMoneyline(pick models.LockedPick, score models.FinalScore, side models.Side) *models.GradedResult {
	winner, decided := score.Winner()
	if !decided {
		return &models.GradedResult{Result: models.OutcomePush, GradedAt: time.Now().UTC()}
	}

	result := models.OutcomeLoss
	units := -1.0
	if winner == side {
		result = models.OutcomeWin
		units = 1.0
		if price := moneylinePrice(pick, side); price != nil {
			units = odds.UnitsWonOnWin(*price)
		}
	}
	return &models.GradedResult{Result: result, Units: units, GradedAt: time.Now().UTC()}
}

// gradeSpread applies the picked side's handicap to its score. A pick
// without a locked point cannot be graded.
func (g *Grader) gradeSpread(pick models.LockedPick, score models.FinalScore, side models.Side) *models.GradedResult {
	point, price := spreadQuote(pick, side)
	if point == nil {
		return nil
	}

	margin := float64(score.HomeScore - score.AwayScore)
	if side == models.SideAway {
		margin = -margin
	}
	covered := margin + *point

	now := time.Now().UTC()
	switch {
	case covered > 0:
		units := 1.0
		if price != nil {
			units = odds.UnitsWonOnWin(*price)
		}
		return &models.GradedResult{Result: models.OutcomeWin, Units: units, GradedAt: now}
	case covered < 0:
		return &models.GradedResult{Result: models.OutcomeLoss, Units: -1, GradedAt: now}
	default:
		return &models.GradedResult{Result: models.OutcomePush, Units: 0, GradedAt: now}
	}
}

func moneylinePrice(pick models.LockedPick, side models.Side) *float64 {
	if pick.LockedOdds == nil {
		return nil
	}
	if side == models.SideHome {
		return pick.LockedOdds.MLHome
	}
	return pick.LockedOdds.MLAway
}

func spreadQuote(pick models.LockedPick, side models.Side) (point, price *float64) {
	if pick.LockedOdds == nil {
		return nil, nil
	}
	if side == models.SideHome {
		return pick.LockedOdds.SpreadHomePoint, pick.LockedOdds.SpreadHomePrice
	}
	return pick.LockedOdds.SpreadAwayPoint, pick.LockedOdds.SpreadAwayPrice
}

// Discrepancy is a pick whose stored result disagrees with the score-derived one.
type Discrepancy struct {
	EventID string            `json:"event_id"`
	Market  models.PickMarket `json:"market"`
	Stored  models.Outcome    `json:"stored"`
	Derived models.Outcome    `json:"derived"`
}

// Regrade grades every pick that has a final score and reports stored
// results that disagree. Picks without a score or an unresolvable side are
// skipped.
func (g *Grader) Regrade(picks []models.LockedPick, scores map[string]models.FinalScore) ([]models.LockedPick, []Discrepancy) {
	graded := make([]models.LockedPick, 0, len(picks))
	var discrepancies []Discrepancy

	for _, pick := range picks {
		score, ok := scores[pick.EventID]
		if !ok {
			graded = append(graded, pick)
			continue
		}

		derived := g.Grade(pick, score)
		if derived == nil {
			graded = append(graded, pick)
			continue
		}

		if pick.Result != nil && pick.Result.Result != derived.Result {
			discrepancies = append(discrepancies, Discrepancy{
				EventID: pick.EventID,
				Market:  pick.Market,
				Stored:  pick.Result.Result,
				Derived: derived.Result,
			})
		}
		pick.Result = derived
		graded = append(graded, pick)
	}

	if len(discrepancies) > 0 {
		g.logger.WithField("count", len(discrepancies)).Warn("Re-grading found result discrepancies")
	}
	return graded, discrepancies
}
