package models

import "time"

// CurveKnot is one step of a fitted isotonic curve. Thresholds are strictly
// increasing across a curve and probabilities non-decreasing.
type CurveKnot struct {
	ThresholdUpperBound float64 `json:"x_max"`
	FittedProbability   float64 `json:"p"`
	SupportCount        int     `json:"n"`
}

// IsotonicCurve is a monotone step function mapping a predictor value to an
// event probability, produced by PAVA isotonic regression.
type IsotonicCurve struct {
	Method           string      `json:"method"`
	Knots            []CurveKnot `json:"knots"`
	TrainSampleCount int         `json:"n_samples"`
	FittedAt         time.Time   `json:"fitted_at"`
}
