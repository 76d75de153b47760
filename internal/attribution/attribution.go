// Package attribution categorizes graded losses so recurring failure modes
// can be separated from ordinary variance.
package attribution

import (
	"github.com/sirupsen/logrus"

	"github.com/NatLaw2/pickpulse-model/internal/models"
)

// Category labels the dominant cause assigned to one lost pick.
type Category string

const (
	// CategoryBadLine: the market moved against the pick before close; the
	// entry price was the problem.
	CategoryBadLine Category = "bad_line"
	// CategoryCalibrationGap: stated confidence far exceeded the market's
	// probability at lock.
	CategoryCalibrationGap Category = "calibration_gap"
	// CategoryVariance: a near coin-flip that landed the wrong way.
	CategoryVariance Category = "variance"
	// CategoryModelMiss: a confident pick with a fair line that simply lost.
	CategoryModelMiss Category = "model_miss"
)

// Thresholds bound the loss categories. Zero values fall back to defaults.
type Thresholds struct {
	BadLineCLV         float64 `json:"bad_line_clv" mapstructure:"bad_line_clv"`
	CalibrationGapProb float64 `json:"calibration_gap_prob" mapstructure:"calibration_gap_prob"`
	VarianceConfidence float64 `json:"variance_confidence" mapstructure:"variance_confidence"`
}

func (t Thresholds) normalize() Thresholds {
	if t.BadLineCLV >= 0 {
		t.BadLineCLV = -0.015
	}
	if t.CalibrationGapProb <= 0 {
		t.CalibrationGapProb = 0.08
	}
	if t.VarianceConfidence <= 0 {
		t.VarianceConfidence = 0.55
	}
	return t
}

// Attributor assigns loss categories from a pick's CLV record.
type Attributor struct {
	thresholds Thresholds
	logger     *logrus.Logger
}

func NewAttributor(thresholds Thresholds, logger *logrus.Logger) *Attributor {
	if logger == nil {
		logger = logrus.New()
	}
	return &Attributor{thresholds: thresholds.normalize(), logger: logger}
}

// Categorize assigns a category to one lost pick. Checks run in priority
// order; the first matching condition wins.
func (a *Attributor) Categorize(pick models.LockedPick, rec models.CLVRecord) Category {
	if rec.HasCLV() && *rec.CLV <= a.thresholds.BadLineCLV {
		return CategoryBadLine
	}
	if pick.Confidence != nil && rec.ProbAtLock != nil &&
		*pick.Confidence-*rec.ProbAtLock >= a.thresholds.CalibrationGapProb {
		return CategoryCalibrationGap
	}
	if pick.Confidence == nil || *pick.Confidence <= a.thresholds.VarianceConfidence {
		return CategoryVariance
	}
	return CategoryModelMiss
}

// LossBreakdown counts categorized losses and tracks the units they cost.
type LossBreakdown struct {
	Losses    int                  `json:"losses"`
	ByCount   map[Category]int     `json:"by_count"`
	UnitsLost map[Category]float64 `json:"units_lost"`
}

// Run categorizes every lost pick. Records are matched by event id and
// market; losses without a record are attributed from the pick alone.
func (a *Attributor) Run(picks []models.LockedPick, records []models.CLVRecord) LossBreakdown {
	type key struct {
		event  string
		market models.PickMarket
	}
	recByKey := make(map[key]models.CLVRecord, len(records))
	for _, r := range records {
		recByKey[key{r.EventID, r.Market}] = r
	}

	breakdown := LossBreakdown{
		ByCount:   make(map[Category]int),
		UnitsLost: make(map[Category]float64),
	}
	for _, pick := range picks {
		if pick.Result == nil || pick.Result.Result != models.OutcomeLoss {
			continue
		}
		breakdown.Losses++

		category := a.Categorize(pick, recByKey[key{pick.EventID, pick.Market}])
		breakdown.ByCount[category]++
		breakdown.UnitsLost[category] += -pick.Result.Units
	}

	a.logger.WithFields(logrus.Fields{
		"losses":   breakdown.Losses,
		"bad_line": breakdown.ByCount[CategoryBadLine],
		"variance": breakdown.ByCount[CategoryVariance],
	}).Info("Loss attribution complete")

	return breakdown
}
