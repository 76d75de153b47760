package clv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NatLaw2/pickpulse-model/internal/models"
)

func TestSteamMetrics(t *testing.T) {
	start := time.Date(2026, 1, 10, 19, 0, 0, 0, time.UTC)
	lockedAt := start.Add(-5 * time.Minute)

	// Snapshots near the T-30, T-20, and T-15 reference points, market
	// drifting toward the home side.
	quotes := mlQuotes("e1", lockedAt.Add(-30*time.Minute), -140, 120)
	quotes = append(quotes, mlQuotes("e1", lockedAt.Add(-20*time.Minute), -150, 130)...)
	quotes = append(quotes, mlQuotes("e1", lockedAt.Add(-15*time.Minute), -160, 140)...)
	series := BuildSeries("e1", quotes)

	feats := ExtractTiming(series, models.SideHome, lockedAt, start)
	require.NotNil(t, feats.Steam5m)
	require.NotNil(t, feats.Steam15m)
	assert.Greater(t, *feats.Steam5m, 0.0, "home price shortened, steam positive")
	assert.Greater(t, *feats.Steam15m, *feats.Steam5m, "longer window saw more movement")

	// Away side sees the mirror image.
	away := ExtractTiming(series, models.SideAway, lockedAt, start)
	require.NotNil(t, away.Steam5m)
	assert.InDelta(t, -*feats.Steam5m, *away.Steam5m, 1e-9)
}

func TestSteamUndefinedOutsideTolerance(t *testing.T) {
	start := time.Date(2026, 1, 10, 19, 0, 0, 0, time.UTC)
	lockedAt := start.Add(-5 * time.Minute)

	// Only one snapshot, an hour before lock: both reference points miss
	// the 10-minute tolerance.
	series := BuildSeries("e1", mlQuotes("e1", lockedAt.Add(-time.Hour), -150, 130))
	feats := ExtractTiming(series, models.SideHome, lockedAt, start)
	assert.Nil(t, feats.Steam5m)
	assert.Nil(t, feats.Steam15m)
}

func TestDispersionRequiresTwoPoints(t *testing.T) {
	start := time.Date(2026, 1, 10, 19, 0, 0, 0, time.UTC)
	lockedAt := start.Add(-40 * time.Minute)

	// Zero in-window points: undefined.
	empty := BuildSeries("e1", mlQuotes("e1", start.Add(-2*time.Hour), -150, 130))
	feats := ExtractTiming(empty, models.SideHome, lockedAt, start)
	assert.Nil(t, feats.Velocity30m)
	assert.Nil(t, feats.Range30m)
	assert.Nil(t, feats.Std30m)

	// Exactly one point: zeros by definition, not undefined.
	single := BuildSeries("e1", mlQuotes("e1", start.Add(-10*time.Minute), -150, 130))
	feats = ExtractTiming(single, models.SideHome, lockedAt, start)
	require.NotNil(t, feats.Velocity30m)
	assert.Equal(t, 0.0, *feats.Velocity30m)
	assert.Equal(t, 0.0, *feats.Range30m)
	assert.Equal(t, 0.0, *feats.Std30m)
}

func TestDispersionValues(t *testing.T) {
	start := time.Date(2026, 1, 10, 19, 0, 0, 0, time.UTC)
	lockedAt := start.Add(-40 * time.Minute)

	quotes := mlQuotes("e1", start.Add(-20*time.Minute), -140, 120)
	quotes = append(quotes, mlQuotes("e1", start.Add(-10*time.Minute), -160, 140)...)
	series := BuildSeries("e1", quotes)

	feats := ExtractTiming(series, models.SideHome, lockedAt, start)
	require.NotNil(t, feats.Velocity30m)
	assert.Greater(t, *feats.Velocity30m, 0.0)
	assert.Greater(t, *feats.Range30m, 0.0)
	assert.Greater(t, *feats.Std30m, 0.0)

	// Velocity is probability per minute over the 10-minute gap.
	assert.InDelta(t, *feats.Range30m/10.0, *feats.Velocity30m, 1e-9)
}
