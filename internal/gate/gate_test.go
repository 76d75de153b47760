package gate

import (
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NatLaw2/pickpulse-model/internal/models"
)

func testEvaluator() *Evaluator {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return NewEvaluator(Thresholds{}, l)
}

func champion() *models.VariantResult {
	return &models.VariantResult{
		LogLoss:        0.680,
		MeanCLV:        0.01,
		PctPositiveCLV: 53,
		ROIPct:         -1.0,
	}
}

func challenger() *models.VariantResult {
	return &models.VariantResult{
		Bets:           250,
		LogLoss:        0.655,
		MeanCLV:        0.015,
		PctPositiveCLV: 55,
		ROIPct:         -1.5,
		AvgConfidence:  0.58,
		WinRate:        0.55,
	}
}

func TestEvaluatePasses(t *testing.T) {
	verdict := testEvaluator().Evaluate(champion(), challenger())

	assert.True(t, verdict.Passed)
	require.Len(t, verdict.Checks, 5)
	assert.Empty(t, verdict.FailedChecks())

	// Improvement = (0.680-0.655)/0.680*100 ~= 3.68%.
	improvement := verdict.Checks[1]
	assert.Equal(t, "calibration_improvement", improvement.Name)
	require.NotNil(t, improvement.Challenger)
	assert.InDelta(t, 3.68, *improvement.Challenger, 0.01)
}

func TestEvaluateMissingSide(t *testing.T) {
	verdict := testEvaluator().Evaluate(nil, challenger())
	assert.False(t, verdict.Passed)
	require.Len(t, verdict.Checks, 1)
	assert.Equal(t, "data", verdict.Checks[0].Name)

	verdict = testEvaluator().Evaluate(champion(), nil)
	assert.False(t, verdict.Passed)
	require.Len(t, verdict.Checks, 1)
}

func TestSampleSizeFails(t *testing.T) {
	chal := challenger()
	chal.Bets = 199

	verdict := testEvaluator().Evaluate(champion(), chal)
	assert.False(t, verdict.Passed)
	assert.Contains(t, verdict.FailedChecks(), "sample_size")
}

func TestCalibrationGainFails(t *testing.T) {
	chal := challenger()
	chal.LogLoss = 0.675 // under 1% improvement

	verdict := testEvaluator().Evaluate(champion(), chal)
	assert.False(t, verdict.Passed)
	assert.Contains(t, verdict.FailedChecks(), "calibration_improvement")
}

func TestDegenerateChampionLogLoss(t *testing.T) {
	champ := champion()
	champ.LogLoss = 0

	verdict := testEvaluator().Evaluate(champ, challenger())
	assert.False(t, verdict.Passed)
	assert.Contains(t, verdict.FailedChecks(), "calibration_improvement")

	champ.LogLoss = math.Inf(1)
	verdict = testEvaluator().Evaluate(champ, challenger())
	assert.Contains(t, verdict.FailedChecks(), "calibration_improvement")
}

func TestCLVCheckEitherBranch(t *testing.T) {
	// Negative mean but percent-positive above floor still passes.
	chal := challenger()
	chal.MeanCLV = -0.001
	chal.PctPositiveCLV = 53

	verdict := testEvaluator().Evaluate(champion(), chal)
	assert.NotContains(t, verdict.FailedChecks(), "clv")

	// Both branches failing fails the check.
	chal.PctPositiveCLV = 48
	verdict = testEvaluator().Evaluate(champion(), chal)
	assert.Contains(t, verdict.FailedChecks(), "clv")
}

func TestROIRegressionFails(t *testing.T) {
	chal := challenger()
	chal.ROIPct = -3.5 // regression of 2.5 against -1.0

	verdict := testEvaluator().Evaluate(champion(), chal)
	assert.Contains(t, verdict.FailedChecks(), "roi_regression")
}

func TestOverconfidence(t *testing.T) {
	// Above the ceiling without win-rate support: fail.
	chal := challenger()
	chal.AvgConfidence = 0.66
	chal.WinRate = 0.55

	verdict := testEvaluator().Evaluate(champion(), chal)
	assert.Contains(t, verdict.FailedChecks(), "overconfidence")

	// Same confidence but the win rate is within tolerance: pass.
	chal.WinRate = 0.64
	verdict = testEvaluator().Evaluate(champion(), chal)
	assert.NotContains(t, verdict.FailedChecks(), "overconfidence")
}

func TestNormalizeDefaults(t *testing.T) {
	th := Thresholds{}.Normalize()
	assert.Equal(t, 200, th.MinSampleSize)
	assert.Equal(t, 2.0, th.MinCalibrationGainPct)
	assert.Equal(t, 0.62, th.OverconfidenceCeiling)

	custom := Thresholds{MinSampleSize: 100}.Normalize()
	assert.Equal(t, 100, custom.MinSampleSize)
	assert.Equal(t, 52.0, custom.CLVPctPositiveFloor)
}
