// Package odds provides American-odds conversion, no-vig normalization,
// and closing-line-value computation.
package odds

import (
	"math"
	"strings"

	"github.com/NatLaw2/pickpulse-model/internal/models"
)

// SpreadPointScale converts one point of spread movement to probability
// units (empirical NBA approximation).
const SpreadPointScale = 0.03

// ImpliedProbability converts American odds to the raw implied probability,
// vig included. Zero or non-finite odds map to 0.5 rather than erroring so
// one malformed historical row cannot abort a replay.
func ImpliedProbability(price float64) float64 {
	if !isFinite(price) || price == 0 {
		return 0.5
	}
	if price < 0 {
		return -price / (-price + 100.0)
	}
	return 100.0 / (price + 100.0)
}

// RemoveVig normalizes a two-outcome probability pair to sum to 1. A
// non-positive sum falls back to the even pair.
func RemoveVig(pA, pB float64) (float64, float64) {
	if !isFinite(pA) {
		pA = 0
	}
	if !isFinite(pB) {
		pB = 0
	}
	sum := pA + pB
	if sum <= 0 {
		return 0.5, 0.5
	}
	return pA / sum, pB / sum
}

// UnitsWonOnWin returns the profit per 1 unit risked when a bet at the
// given American odds wins.
func UnitsWonOnWin(price float64) float64 {
	if !isFinite(price) || price == 0 {
		return 0
	}
	if price < 0 {
		return 100.0 / math.Abs(price)
	}
	return price / 100.0
}

// NoVigPair converts a pair of American prices to no-vig probabilities.
func NoVigPair(priceA, priceB float64) (float64, float64) {
	return RemoveVig(ImpliedProbability(priceA), ImpliedProbability(priceB))
}

// MoneylineCLV computes the no-vig probability shift between commitment and
// close for the picked side. Positive means the market moved toward the
// pick. Returns nil when any of the four prices is absent.
func MoneylineCLV(lockedHome, lockedAway, closeHome, closeAway *float64, side models.Side) *float64 {
	if lockedHome == nil || lockedAway == nil || closeHome == nil || closeAway == nil {
		return nil
	}

	lockHomeNV, lockAwayNV := NoVigPair(*lockedHome, *lockedAway)
	closeHomeNV, closeAwayNV := NoVigPair(*closeHome, *closeAway)

	var clv float64
	switch side {
	case models.SideHome:
		clv = closeHomeNV - lockHomeNV
	case models.SideAway:
		clv = closeAwayNV - lockAwayNV
	default:
		return nil
	}
	return &clv
}

// SpreadCLV computes composite spread CLV for the picked side: the point
// movement scaled to probability units plus the implied-probability shift
// of the prices when both are present. Points are taken from the picked
// side's perspective, so a line moving toward the pick yields positive CLV.
// Returns nil when either point is absent.
func SpreadCLV(lockedPoint, lockedPrice, closePoint, closePrice *float64) *float64 {
	if lockedPoint == nil || closePoint == nil {
		return nil
	}

	pointCLV := (*lockedPoint - *closePoint) * SpreadPointScale

	priceCLV := 0.0
	if lockedPrice != nil && closePrice != nil {
		pLocked := ImpliedProbability(*lockedPrice)
		pClose := ImpliedProbability(*closePrice)
		priceCLV = pClose - pLocked
	}

	clv := pointCLV + priceCLV
	return &clv
}

// ResolveSide maps a pick's selection team to home or away by substring
// match in either direction (provider name variants are common). Returns
// false when neither side matches.
func ResolveSide(selection, homeTeam, awayTeam string) (models.Side, bool) {
	sel := strings.ToLower(strings.TrimSpace(selection))
	home := strings.ToLower(strings.TrimSpace(homeTeam))
	away := strings.ToLower(strings.TrimSpace(awayTeam))

	if sel == "" {
		return "", false
	}
	if home != "" && (strings.Contains(sel, home) || strings.Contains(home, sel)) {
		return models.SideHome, true
	}
	if away != "" && (strings.Contains(sel, away) || strings.Contains(away, sel)) {
		return models.SideAway, true
	}
	return "", false
}

// ProbabilityToAmerican converts a probability to fair American odds,
// rounded to the nearest integer.
func ProbabilityToAmerican(p float64) int {
	p = math.Max(1e-6, math.Min(1-1e-6, p))
	if p >= 0.5 {
		return int(math.Round(-100 * p / (1 - p)))
	}
	return int(math.Round(100 * (1 - p) / p))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Float returns a pointer to v; convenience for optional price fields.
func Float(v float64) *float64 {
	return &v
}
