// Package replay simulates pick histories through a parameterized
// team-rating model, strictly forward in time.
package replay

import "math"

// DefaultInitialRating is the rating assigned to a team on first sight.
const DefaultInitialRating = 1500.0

// RatingTable is the mutable team-rating state threaded through one replay.
// It has a single writer: the simulator run that owns it. Never share one
// table across concurrent runs.
type RatingTable struct {
	ratings map[string]float64
	initial float64
}

// NewRatingTable creates a fresh table. A non-positive initial rating falls
// back to DefaultInitialRating.
func NewRatingTable(initial float64) *RatingTable {
	if initial <= 0 {
		initial = DefaultInitialRating
	}
	return &RatingTable{
		ratings: make(map[string]float64),
		initial: initial,
	}
}

// Get returns the team's current rating, seeding unseen teams at the
// initial constant.
func (t *RatingTable) Get(team string) float64 {
	if r, ok := t.ratings[team]; ok {
		return r
	}
	return t.initial
}

// HomeWinProbability is the logistic rating-difference transform with the
// home-advantage offset added to the home side.
func (t *RatingTable) HomeWinProbability(home, away string, homeAdvantage float64) float64 {
	diff := t.Get(away) - (t.Get(home) + homeAdvantage)
	return 1.0 / (1.0 + math.Pow(10, diff/400.0))
}

// Update applies the realized outcome: delta = K * (actual - expected),
// credited to the home team and debited from the away team.
func (t *RatingTable) Update(home, away string, homeWon bool, expectedHomeProb, k float64) {
	actual := 0.0
	if homeWon {
		actual = 1.0
	}
	delta := k * (actual - expectedHomeProb)
	t.ratings[home] = t.Get(home) + delta
	t.ratings[away] = t.Get(away) - delta
}

// Len returns the number of teams the table has seen.
func (t *RatingTable) Len() int {
	return len(t.ratings)
}
