package odds

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NatLaw2/pickpulse-model/internal/models"
)

func TestImpliedProbability(t *testing.T) {
	assert.InDelta(t, 0.6, ImpliedProbability(-150), 1e-9)
	assert.InDelta(t, 0.4, ImpliedProbability(150), 1e-9)
	assert.InDelta(t, 0.5, ImpliedProbability(100), 1e-9)
	assert.InDelta(t, 0.5, ImpliedProbability(-100), 1e-9)

	// Defined fallbacks, never errors
	assert.Equal(t, 0.5, ImpliedProbability(0))
	assert.Equal(t, 0.5, ImpliedProbability(math.NaN()))
	assert.Equal(t, 0.5, ImpliedProbability(math.Inf(1)))
}

func TestRemoveVigSumsToOne(t *testing.T) {
	prices := []float64{-500, -250, -150, -110, 100, 120, 180, 300, 750}
	for _, a := range prices {
		for _, b := range prices {
			pa, pb := NoVigPair(a, b)
			assert.InDelta(t, 1.0, pa+pb, 1e-9, "prices %v/%v", a, b)
			assert.Greater(t, pa, 0.0)
			assert.Less(t, pa, 1.0)
			assert.Greater(t, pb, 0.0)
			assert.Less(t, pb, 1.0)
		}
	}
}

func TestRemoveVigZeroSum(t *testing.T) {
	pa, pb := RemoveVig(0, 0)
	assert.Equal(t, 0.5, pa)
	assert.Equal(t, 0.5, pb)

	pa, pb = RemoveVig(math.NaN(), math.NaN())
	assert.Equal(t, 0.5, pa)
	assert.Equal(t, 0.5, pb)
}

func TestUnitsWonOnWin(t *testing.T) {
	assert.InDelta(t, 100.0/150.0, UnitsWonOnWin(-150), 1e-9)
	assert.InDelta(t, 1.3, UnitsWonOnWin(130), 1e-9)
	assert.Equal(t, 0.0, UnitsWonOnWin(0))
	assert.Equal(t, 0.0, UnitsWonOnWin(math.NaN()))
}

func TestMoneylineCLVSign(t *testing.T) {
	// Locked home -150/away +130, closed home -180/away +160: market moved
	// toward home, so the home pick earned positive CLV.
	clv := MoneylineCLV(Float(-150), Float(130), Float(-180), Float(160), models.SideHome)
	require.NotNil(t, clv)

	lockHome, _ := NoVigPair(-150, 130)
	closeHome, _ := NoVigPair(-180, 160)
	assert.InDelta(t, 0.5798, lockHome, 0.0001)
	assert.InDelta(t, 0.6257, closeHome, 0.0001)
	assert.InDelta(t, closeHome-lockHome, *clv, 1e-9)
	assert.InDelta(t, 0.0458, *clv, 0.0001)

	// The away side of the same movement loses the same amount.
	away := MoneylineCLV(Float(-150), Float(130), Float(-180), Float(160), models.SideAway)
	require.NotNil(t, away)
	assert.InDelta(t, -*clv, *away, 1e-9)
}

func TestMoneylineCLVMissingPrice(t *testing.T) {
	assert.Nil(t, MoneylineCLV(nil, Float(130), Float(-180), Float(160), models.SideHome))
	assert.Nil(t, MoneylineCLV(Float(-150), Float(130), Float(-180), nil, models.SideHome))
	assert.Nil(t, MoneylineCLV(Float(-150), Float(130), Float(-180), Float(160), models.Side("draw")))
}

func TestSpreadCLV(t *testing.T) {
	// Picked home -3, closed -5: two points of movement toward the pick.
	clv := SpreadCLV(Float(-3), Float(-110), Float(-5), Float(-110))
	require.NotNil(t, clv)
	assert.InDelta(t, 2*SpreadPointScale, *clv, 1e-9)

	// Missing points make the value undefined, not zero.
	assert.Nil(t, SpreadCLV(nil, Float(-110), Float(-5), Float(-110)))
	assert.Nil(t, SpreadCLV(Float(-3), Float(-110), nil, Float(-110)))

	// Missing prices drop the price term only.
	noPrices := SpreadCLV(Float(-3), nil, Float(-5), nil)
	require.NotNil(t, noPrices)
	assert.InDelta(t, 2*SpreadPointScale, *noPrices, 1e-9)
}

func TestResolveSide(t *testing.T) {
	side, ok := ResolveSide("Boston Celtics", "Boston Celtics", "Miami Heat")
	require.True(t, ok)
	assert.Equal(t, models.SideHome, side)

	side, ok = ResolveSide("Heat", "Boston Celtics", "Miami Heat")
	require.True(t, ok)
	assert.Equal(t, models.SideAway, side)

	_, ok = ResolveSide("", "Boston Celtics", "Miami Heat")
	assert.False(t, ok)

	_, ok = ResolveSide("Denver Nuggets", "Boston Celtics", "Miami Heat")
	assert.False(t, ok)
}

func TestProbabilityToAmerican(t *testing.T) {
	assert.Equal(t, -150, ProbabilityToAmerican(0.6))
	assert.Equal(t, 150, ProbabilityToAmerican(0.4))
	assert.Equal(t, -100, ProbabilityToAmerican(0.5))
}
