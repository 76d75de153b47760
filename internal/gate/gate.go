// Package gate decides whether a challenger configuration may replace the
// deployed champion.
package gate

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/NatLaw2/pickpulse-model/internal/models"
)

// Thresholds are the promotion checklist bounds. Zero values fall back to
// the documented defaults via Normalize.
type Thresholds struct {
	MinSampleSize             int     `json:"min_sample_size" mapstructure:"min_sample_size"`
	MinCalibrationGainPct     float64 `json:"min_calibration_gain_pct" mapstructure:"min_calibration_gain_pct"`
	CLVPctPositiveFloor       float64 `json:"clv_pct_positive_floor" mapstructure:"clv_pct_positive_floor"`
	MaxROIRegression          float64 `json:"max_roi_regression" mapstructure:"max_roi_regression"`
	OverconfidenceCeiling     float64 `json:"overconfidence_ceiling" mapstructure:"overconfidence_ceiling"`
	OverconfidenceWinRateSlop float64 `json:"overconfidence_win_rate_slop" mapstructure:"overconfidence_win_rate_slop"`
}

// DefaultThresholds returns the standard promotion bounds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinSampleSize:             200,
		MinCalibrationGainPct:     2.0,
		CLVPctPositiveFloor:       52.0,
		MaxROIRegression:          2.0,
		OverconfidenceCeiling:     0.62,
		OverconfidenceWinRateSlop: 0.03,
	}
}

// Normalize fills unset fields from the defaults.
func (t Thresholds) Normalize() Thresholds {
	d := DefaultThresholds()
	if t.MinSampleSize <= 0 {
		t.MinSampleSize = d.MinSampleSize
	}
	if t.MinCalibrationGainPct <= 0 {
		t.MinCalibrationGainPct = d.MinCalibrationGainPct
	}
	if t.CLVPctPositiveFloor <= 0 {
		t.CLVPctPositiveFloor = d.CLVPctPositiveFloor
	}
	if t.MaxROIRegression <= 0 {
		t.MaxROIRegression = d.MaxROIRegression
	}
	if t.OverconfidenceCeiling <= 0 {
		t.OverconfidenceCeiling = d.OverconfidenceCeiling
	}
	if t.OverconfidenceWinRateSlop <= 0 {
		t.OverconfidenceWinRateSlop = d.OverconfidenceWinRateSlop
	}
	return t
}

// Evaluator runs the ordered promotion checklist.
type Evaluator struct {
	thresholds Thresholds
	logger     *logrus.Logger
}

func NewEvaluator(thresholds Thresholds, logger *logrus.Logger) *Evaluator {
	if logger == nil {
		logger = logrus.New()
	}
	return &Evaluator{thresholds: thresholds.Normalize(), logger: logger}
}

// Evaluate compares the challenger against the champion. All checks must
// pass; a missing side short-circuits to a single failing data check.
func (e *Evaluator) Evaluate(champion, challenger *models.VariantResult) models.GateVerdict {
	verdict := models.GateVerdict{EvaluatedAt: time.Now().UTC()}

	if champion == nil || challenger == nil {
		verdict.Checks = []models.GateCheck{{
			Name:   "data",
			Passed: false,
			Note:   "champion or challenger result missing",
		}}
		e.logVerdict(verdict)
		return verdict
	}

	verdict.Checks = []models.GateCheck{
		e.checkSampleSize(challenger),
		e.checkCalibrationGain(champion, challenger),
		e.checkCLV(challenger),
		e.checkROIRegression(champion, challenger),
		e.checkOverconfidence(challenger),
	}

	verdict.Passed = true
	for _, c := range verdict.Checks {
		if !c.Passed {
			verdict.Passed = false
			break
		}
	}

	e.logVerdict(verdict)
	return verdict
}

func (e *Evaluator) logVerdict(v models.GateVerdict) {
	e.logger.WithFields(logrus.Fields{
		"passed": v.Passed,
		"failed": v.FailedChecks(),
	}).Info("Promotion gate evaluated")
}

func (e *Evaluator) checkSampleSize(challenger *models.VariantResult) models.GateCheck {
	threshold := float64(e.thresholds.MinSampleSize)
	value := float64(challenger.Bets)
	return models.GateCheck{
		Name:       "sample_size",
		Passed:     challenger.Bets >= e.thresholds.MinSampleSize,
		Challenger: &value,
		Threshold:  &threshold,
	}
}

func (e *Evaluator) checkCalibrationGain(champion, challenger *models.VariantResult) models.GateCheck {
	check := models.GateCheck{
		Name:      "calibration_improvement",
		Champion:  &champion.LogLoss,
		Threshold: &e.thresholds.MinCalibrationGainPct,
	}

	if champion.LogLoss == 0 || math.IsInf(champion.LogLoss, 0) || math.IsNaN(champion.LogLoss) {
		check.Note = "champion log-loss degenerate"
		return check
	}

	gain := (champion.LogLoss - challenger.LogLoss) / champion.LogLoss * 100
	check.Challenger = &gain
	check.Passed = gain >= e.thresholds.MinCalibrationGainPct
	return check
}

func (e *Evaluator) checkCLV(challenger *models.VariantResult) models.GateCheck {
	return models.GateCheck{
		Name:       "clv",
		Passed:     challenger.MeanCLV > 0 || challenger.PctPositiveCLV >= e.thresholds.CLVPctPositiveFloor,
		Challenger: &challenger.MeanCLV,
		Threshold:  &e.thresholds.CLVPctPositiveFloor,
		Note:       "mean CLV > 0 or percent positive above floor",
	}
}

func (e *Evaluator) checkROIRegression(champion, challenger *models.VariantResult) models.GateCheck {
	regression := champion.ROIPct - challenger.ROIPct
	return models.GateCheck{
		Name:       "roi_regression",
		Passed:     regression <= e.thresholds.MaxROIRegression,
		Champion:   &champion.ROIPct,
		Challenger: &challenger.ROIPct,
		Threshold:  &e.thresholds.MaxROIRegression,
	}
}

// checkOverconfidence fails a challenger whose average stated confidence
// exceeds the ceiling unless its realized win rate backs the claim up.
func (e *Evaluator) checkOverconfidence(challenger *models.VariantResult) models.GateCheck {
	check := models.GateCheck{
		Name:       "overconfidence",
		Challenger: &challenger.AvgConfidence,
		Threshold:  &e.thresholds.OverconfidenceCeiling,
	}

	if challenger.AvgConfidence <= e.thresholds.OverconfidenceCeiling {
		check.Passed = true
		return check
	}
	if math.Abs(challenger.AvgConfidence-challenger.WinRate) <= e.thresholds.OverconfidenceWinRateSlop {
		check.Passed = true
		check.Note = "confidence above ceiling but supported by win rate"
		return check
	}
	check.Note = "average confidence exceeds ceiling without win-rate support"
	return check
}
