package calibration

import (
	"github.com/sirupsen/logrus"

	"github.com/NatLaw2/pickpulse-model/internal/models"
)

// DefaultMinSamples is the constructor fallback for the candidate-curve
// sample floor.
const DefaultMinSamples = 50

// Report is the outcome of one calibration pass. CandidateCurve stays nil
// when the sample floor was not met; Attempted distinguishes "not
// attempted" from a failed fit.
type Report struct {
	Usable          int                  `json:"n_usable"`
	Attempted       bool                 `json:"attempted"`
	Metrics         Metrics              `json:"metrics"`
	ReliabilityBins []ReliabilityBin     `json:"reliability_bins"`
	CandidateCurve  *models.IsotonicCurve `json:"candidate_curve,omitempty"`

	// Train-set quality of the fitted curve vs. the raw confidences.
	TrainLogLoss       float64 `json:"train_logloss,omitempty"`
	TrainBrier         float64 `json:"train_brier,omitempty"`
	ImprovementLogLoss float64 `json:"improvement_logloss,omitempty"`
	ImprovementBrier   float64 `json:"improvement_brier,omitempty"`
}

// Calibrator fits candidate confidence curves from graded picks.
type Calibrator struct {
	minSamples int
	logger     *logrus.Logger
}

// NewCalibrator creates a calibrator. A non-positive minSamples falls back
// to DefaultMinSamples.
func NewCalibrator(minSamples int, logger *logrus.Logger) *Calibrator {
	if minSamples <= 0 {
		minSamples = DefaultMinSamples
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Calibrator{minSamples: minSamples, logger: logger}
}

// SamplesFromPicks converts decided picks with a confidence into
// calibration samples. Pushes and ungraded picks are skipped.
func SamplesFromPicks(picks []models.LockedPick) []Sample {
	samples := make([]Sample, 0, len(picks))
	for _, p := range picks {
		if !p.IsDecided() || p.Confidence == nil {
			continue
		}
		outcome := 0
		if p.Won() {
			outcome = 1
		}
		samples = append(samples, Sample{Predictor: *p.Confidence, Outcome: outcome, Weight: 1})
	}
	return samples
}

// Run scores the raw confidences, builds the reliability diagram, and fits
// a candidate curve when the sample floor is met.
func (c *Calibrator) Run(samples []Sample) (*Report, error) {
	report := &Report{Usable: len(samples)}
	if len(samples) == 0 {
		return report, nil
	}

	report.Metrics = Score(samples)

	bins := len(samples) / 10
	if bins > 10 {
		bins = 10
	}
	if bins < 3 {
		bins = 3
	}
	report.ReliabilityBins = ReliabilityBins(samples, bins)

	if len(samples) < c.minSamples {
		c.logger.WithFields(logrus.Fields{
			"n":   len(samples),
			"min": c.minSamples,
		}).Info("Calibration fit not attempted: below sample floor")
		return report, nil
	}

	report.Attempted = true
	curve, err := Fit(samples)
	if err != nil {
		return nil, err
	}
	report.CandidateCurve = curve

	var fittedLL, fittedBrier float64
	for _, s := range samples {
		p := Lookup(curve, s.Predictor)
		fittedLL += LogLoss(s.Outcome, p)
		fittedBrier += Brier(s.Outcome, p)
	}
	n := float64(len(samples))
	report.TrainLogLoss = fittedLL / n
	report.TrainBrier = fittedBrier / n
	report.ImprovementLogLoss = report.Metrics.LogLoss - report.TrainLogLoss
	report.ImprovementBrier = report.Metrics.Brier - report.TrainBrier

	c.logger.WithFields(logrus.Fields{
		"n":          len(samples),
		"knots":      len(curve.Knots),
		"ll_gain":    report.ImprovementLogLoss,
		"brier_gain": report.ImprovementBrier,
	}).Info("Fitted candidate isotonic curve")

	return report, nil
}
