package replay

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/NatLaw2/pickpulse-model/internal/calibration"
	"github.com/NatLaw2/pickpulse-model/internal/models"
	"github.com/NatLaw2/pickpulse-model/internal/odds"
)

// Pick is one replay input row: the locked pick plus the audit's
// precomputed CLV and lock-time market probability, nil when the matching
// snapshot never existed. ProbAtLock substitutes for absent commitment
// odds, so snapshot-only picks still replay.
type Pick struct {
	models.LockedPick
	CLV        *float64
	ProbAtLock *float64
}

// BuildInput joins picks with their CLV records by event id and market.
func BuildInput(picks []models.LockedPick, records []models.CLVRecord) []Pick {
	type key struct {
		event  string
		market models.PickMarket
	}
	recByKey := make(map[key]*models.CLVRecord, len(records))
	for i := range records {
		recByKey[key{records[i].EventID, records[i].Market}] = &records[i]
	}

	input := make([]Pick, 0, len(picks))
	for _, p := range picks {
		pick := Pick{LockedPick: p}
		if rec := recByKey[key{p.EventID, p.Market}]; rec != nil {
			pick.CLV = rec.CLV
			pick.ProbAtLock = rec.ProbAtLock
		}
		input = append(input, pick)
	}
	return input
}

// Simulator replays a pick sequence through the rating model for one
// parameter configuration.
type Simulator struct {
	initialRating float64
	logger        *logrus.Logger
}

func NewSimulator(initialRating float64, logger *logrus.Logger) *Simulator {
	if logger == nil {
		logger = logrus.New()
	}
	if initialRating <= 0 {
		initialRating = DefaultInitialRating
	}
	return &Simulator{initialRating: initialRating, logger: logger}
}

// Run replays the picks in event-start order against a fresh rating table.
// Picks below the minimum edge are excluded from scoring, but every graded
// pick updates the ratings, so the rating trajectory is identical across
// configurations sharing the same learning rate and home advantage.
func (s *Simulator) Run(params models.Parameters, input []Pick) (*models.VariantResult, error) {
	result, _, err := s.run(params, input)
	return result, err
}

// RunWithProbs additionally returns the home-side model probability used at
// each pick, in replay order.
func (s *Simulator) RunWithProbs(params models.Parameters, input []Pick) (*models.VariantResult, []float64, error) {
	return s.run(params, input)
}

func (s *Simulator) run(params models.Parameters, input []Pick) (*models.VariantResult, []float64, error) {
	if len(input) == 0 {
		return nil, nil, models.ErrInsufficientData
	}

	picks := make([]Pick, len(input))
	copy(picks, input)
	sort.SliceStable(picks, func(i, j int) bool {
		return picks[i].GameStartTime.Before(picks[j].GameStartTime)
	})

	table := NewRatingTable(s.initialRating)
	result := &models.VariantResult{Params: params}
	probs := make([]float64, 0, len(picks))

	var llSum, brierSum, confSum float64
	var clvSum float64
	clvPositive := 0

	for i := range picks {
		pick := &picks[i]
		side, sideOK := odds.ResolveSide(pick.SelectionTeam, pick.HomeTeam, pick.AwayTeam)

		modelHome := table.HomeWinProbability(pick.HomeTeam, pick.AwayTeam, params.HomeAdvantage)
		probs = append(probs, modelHome)

		if sideOK && pick.IsDecided() {
			modelSide := modelHome
			if side == models.SideAway {
				modelSide = 1 - modelHome
			}

			if marketSide, price, ok := lockedMarketProb(pick, side); ok {
				edge := modelSide - marketSide
				if edge >= params.MinEdge {
					s.score(result, pick, modelSide, price, &llSum, &brierSum, &confSum, &clvSum, &clvPositive)
				}
			}

			homeWon := (side == models.SideHome) == pick.Won()
			table.Update(pick.HomeTeam, pick.AwayTeam, homeWon, modelHome, params.LearningRate)
		}
	}

	if result.Bets > 0 {
		n := float64(result.Bets)
		result.LogLoss = llSum / n
		result.Brier = brierSum / n
		result.AvgConfidence = confSum / n
		result.WinRate = float64(result.Wins) / n
		result.ROIPct = result.Units / n * 100
	}
	if result.CLVSamples > 0 {
		result.MeanCLV = clvSum / float64(result.CLVSamples)
		result.PctPositiveCLV = float64(clvPositive) / float64(result.CLVSamples) * 100
	}

	s.logger.WithFields(logrus.Fields{
		"k":        params.LearningRate,
		"hfa":      params.HomeAdvantage,
		"min_edge": params.MinEdge,
		"bets":     result.Bets,
		"logloss":  result.LogLoss,
		"roi_pct":  result.ROIPct,
	}).Debug("Replay complete")

	return result, probs, nil
}

func (s *Simulator) score(result *models.VariantResult, pick *Pick, modelSide, price float64,
	llSum, brierSum, confSum, clvSum *float64, clvPositive *int) {

	result.Bets++
	outcome := 0
	if pick.Won() {
		outcome = 1
		result.Wins++
		result.Units += odds.UnitsWonOnWin(price)
	} else {
		result.Losses++
		result.Units -= 1
	}

	*llSum += calibration.LogLoss(outcome, modelSide)
	*brierSum += calibration.Brier(outcome, modelSide)
	*confSum += modelSide

	if pick.CLV != nil && !math.IsNaN(*pick.CLV) {
		result.CLVSamples++
		*clvSum += *pick.CLV
		if *pick.CLV > 0 {
			*clvPositive++
		}
	}
}

// lockedMarketProb derives the side's no-vig market probability and its
// American price from the odds captured at commitment. When the pick
// carries no usable commitment odds, the audit's snapshot-derived lock
// probability substitutes, priced at its fair American odds.
func lockedMarketProb(pick *Pick, side models.Side) (prob, price float64, ok bool) {
	if prob, price, ok = commitmentOddsProb(pick, side); ok {
		return prob, price, true
	}
	if pick.ProbAtLock != nil {
		p := *pick.ProbAtLock
		return p, float64(odds.ProbabilityToAmerican(p)), true
	}
	return 0, 0, false
}

func commitmentOddsProb(pick *Pick, side models.Side) (prob, price float64, ok bool) {
	lo := pick.LockedOdds
	if lo == nil {
		return 0, 0, false
	}

	switch pick.Market {
	case models.PickMarketMoneyline:
		if lo.MLHome == nil || lo.MLAway == nil {
			return 0, 0, false
		}
		home, away := odds.NoVigPair(*lo.MLHome, *lo.MLAway)
		if side == models.SideHome {
			return home, *lo.MLHome, true
		}
		return away, *lo.MLAway, true

	case models.PickMarketSpread:
		// Spread prices are near-symmetric; the implied price probability
		// stands in for the market's side probability.
		var p *float64
		if side == models.SideHome {
			p = lo.SpreadHomePrice
		} else {
			p = lo.SpreadAwayPrice
		}
		if p == nil {
			return 0, 0, false
		}
		return odds.ImpliedProbability(*p), *p, true
	}
	return 0, 0, false
}
