package calibration

import (
	"math"
	"sort"
)

// LogLoss is the single-sample binary cross-entropy with the prediction
// clamped away from 0 and 1.
func LogLoss(outcome int, predicted float64) float64 {
	p := clampProb(predicted)
	if outcome == 1 {
		return -math.Log(p)
	}
	return -math.Log(1 - p)
}

// Brier is the single-sample squared error of the prediction.
func Brier(outcome int, predicted float64) float64 {
	diff := float64(outcome) - predicted
	return diff * diff
}

// Metrics summarizes predictive quality of the raw confidence values.
type Metrics struct {
	N             int     `json:"n"`
	LogLoss       float64 `json:"logloss"`
	Brier         float64 `json:"brier"`
	AvgConfidence float64 `json:"avg_confidence"`
	AvgWinRate    float64 `json:"avg_win_rate"`
}

// Score computes mean log-loss and Brier of the samples' own predictor
// values against their outcomes.
func Score(samples []Sample) Metrics {
	if len(samples) == 0 {
		return Metrics{}
	}

	var ll, brier, confSum, winSum float64
	for _, s := range samples {
		ll += LogLoss(s.Outcome, s.Predictor)
		brier += Brier(s.Outcome, s.Predictor)
		confSum += s.Predictor
		winSum += float64(s.Outcome)
	}

	n := float64(len(samples))
	return Metrics{
		N:             len(samples),
		LogLoss:       ll / n,
		Brier:         brier / n,
		AvgConfidence: confSum / n,
		AvgWinRate:    winSum / n,
	}
}

// ReliabilityBin compares predicted confidence to the realized win rate
// within one quantile chunk.
type ReliabilityBin struct {
	Lo           float64 `json:"bin_lo"`
	Hi           float64 `json:"bin_hi"`
	N            int     `json:"n"`
	PredictedAvg float64 `json:"predicted_avg"`
	ActualRate   float64 `json:"actual_win_rate"`
}

// ReliabilityBins builds a quantile reliability diagram: samples sorted by
// predictor, split into roughly equal chunks.
func ReliabilityBins(samples []Sample, bins int) []ReliabilityBin {
	if len(samples) == 0 || bins <= 0 {
		return nil
	}

	sorted := make([]Sample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Predictor < sorted[j].Predictor
	})

	chunk := len(sorted) / bins
	if chunk < 1 {
		chunk = 1
	}

	var out []ReliabilityBin
	for i := 0; i < len(sorted); i += chunk {
		end := i + chunk
		if end > len(sorted) {
			end = len(sorted)
		}
		sl := sorted[i:end]

		bin := ReliabilityBin{
			Lo: sl[0].Predictor,
			Hi: sl[len(sl)-1].Predictor,
			N:  len(sl),
		}
		var predSum, winSum float64
		for _, s := range sl {
			predSum += s.Predictor
			winSum += float64(s.Outcome)
		}
		bin.PredictedAvg = predSum / float64(len(sl))
		bin.ActualRate = winSum / float64(len(sl))
		out = append(out, bin)
	}
	return out
}
