package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatingTableSeedsUnseenTeams(t *testing.T) {
	table := NewRatingTable(0)
	assert.Equal(t, DefaultInitialRating, table.Get("Boston Celtics"))
	assert.Equal(t, 0, table.Len())
}

func TestHomeWinProbability(t *testing.T) {
	table := NewRatingTable(1500)

	// Equal ratings, no home advantage: a coin flip.
	assert.InDelta(t, 0.5, table.HomeWinProbability("a", "b", 0), 1e-9)

	// Home advantage tilts toward home.
	withHFA := table.HomeWinProbability("a", "b", 65)
	assert.Greater(t, withHFA, 0.5)

	// A 400-point favorite wins ~10/11.
	table.ratings["strong"] = 1900
	table.ratings["weak"] = 1500
	assert.InDelta(t, 10.0/11.0, table.HomeWinProbability("strong", "weak", 0), 1e-9)
}

func TestUpdateIsZeroSum(t *testing.T) {
	table := NewRatingTable(1500)

	expected := table.HomeWinProbability("a", "b", 0)
	table.Update("a", "b", true, expected, 20)

	assert.InDelta(t, 1510, table.Get("a"), 1e-9)
	assert.InDelta(t, 1490, table.Get("b"), 1e-9)
	assert.InDelta(t, 3000, table.Get("a")+table.Get("b"), 1e-9)

	// An expected win moves ratings less than an upset.
	before := table.Get("a")
	table.Update("a", "b", true, 0.9, 20)
	assert.InDelta(t, before+2, table.Get("a"), 1e-9)
}
