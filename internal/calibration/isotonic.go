// Package calibration fits and evaluates monotone probability calibration
// curves over graded pick outcomes.
package calibration

import (
	"math"
	"sort"
	"time"

	"github.com/NatLaw2/pickpulse-model/internal/models"
)

const (
	// Fitted probabilities are clamped into an open subinterval of (0,1)
	// so log-loss stays finite.
	probFloor = 1e-6
	probCeil  = 1 - 1e-6
)

// Sample pairs a predictor value with a binary outcome.
type Sample struct {
	Predictor float64
	Outcome   int
	Weight    float64
}

// block is one pooled segment of the PAVA stack.
type block struct {
	y      float64
	weight float64
	xMin   float64
	xMax   float64
}

// Fit runs pool-adjacent-violators isotonic regression over the samples and
// returns the fitted curve. Samples are sorted ascending by predictor;
// adjacent blocks violating non-decreasing order are merged by weighted
// mean until the stack is monotone. O(n log n) for the sort, amortized O(n)
// for the merge scan.
func Fit(samples []Sample) (*models.IsotonicCurve, error) {
	if len(samples) == 0 {
		return nil, models.ErrInsufficientData
	}

	sorted := make([]Sample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Predictor < sorted[j].Predictor
	})

	blocks := make([]block, 0, len(sorted))
	for _, s := range sorted {
		w := s.Weight
		if w <= 0 {
			w = 1
		}
		blocks = append(blocks, block{
			y:      clampProb(float64(s.Outcome)),
			weight: w,
			xMin:   s.Predictor,
			xMax:   s.Predictor,
		})

		for len(blocks) >= 2 && blocks[len(blocks)-2].y > blocks[len(blocks)-1].y {
			b2 := blocks[len(blocks)-1]
			b1 := blocks[len(blocks)-2]
			blocks = blocks[:len(blocks)-2]

			total := b1.weight + b2.weight
			merged := (b1.y*b1.weight + b2.y*b2.weight) / total
			blocks = append(blocks, block{
				y:      clampProb(merged),
				weight: total,
				xMin:   b1.xMin,
				xMax:   b2.xMax,
			})
		}
	}

	knots := make([]models.CurveKnot, 0, len(blocks))
	for _, b := range blocks {
		knots = append(knots, models.CurveKnot{
			ThresholdUpperBound: b.xMax,
			FittedProbability:   clampProb(b.y),
			SupportCount:        int(math.Round(b.weight)),
		})
	}

	return &models.IsotonicCurve{
		Method:           "isotonic_pava",
		Knots:            knots,
		TrainSampleCount: len(sorted),
		FittedAt:         time.Now().UTC(),
	}, nil
}

// Lookup evaluates the curve at a predictor value: the first knot whose
// upper bound is >= the query, or the last knot past the end of the curve.
func Lookup(curve *models.IsotonicCurve, predictor float64) float64 {
	if curve == nil || len(curve.Knots) == 0 {
		return 0.5
	}
	i := sort.Search(len(curve.Knots), func(i int) bool {
		return curve.Knots[i].ThresholdUpperBound >= predictor
	})
	if i >= len(curve.Knots) {
		i = len(curve.Knots) - 1
	}
	return curve.Knots[i].FittedProbability
}

func clampProb(p float64) float64 {
	return math.Max(probFloor, math.Min(probCeil, p))
}
