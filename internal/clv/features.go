package clv

import (
	"math"
	"time"

	"github.com/NatLaw2/pickpulse-model/internal/models"
)

const (
	// Steam reference offsets before the lock timestamp.
	steamFarOffset5m  = 20 * time.Minute
	steamFarOffset15m = 30 * time.Minute
	steamNearOffset   = 15 * time.Minute

	// A steam reference point must lie within this distance of its target
	// timestamp or the metric is undefined.
	steamTolerance = 10 * time.Minute

	// Dispersion is measured over the half hour before tip-off.
	dispersionWindow = 30 * time.Minute
)

// TimingFeatures are the pre-lock steam and pre-game dispersion metrics for
// one pick's side. Nil means undefined: the required snapshots were absent.
type TimingFeatures struct {
	Steam5m     *float64
	Steam15m    *float64
	Velocity30m *float64
	Range30m    *float64
	Std30m      *float64
}

// ExtractTiming computes line-movement features for one side of an event.
// Steam metrics are probability deltas between two pre-lock reference
// points; dispersion metrics summarize the 30 minutes before game start.
func ExtractTiming(series *Series, side models.Side, lockedAt, gameStart time.Time) TimingFeatures {
	feats := TimingFeatures{
		Steam5m:  steamDelta(series, side, lockedAt.Add(-steamFarOffset5m), lockedAt.Add(-steamNearOffset)),
		Steam15m: steamDelta(series, side, lockedAt.Add(-steamFarOffset15m), lockedAt.Add(-steamNearOffset)),
	}

	window := series.Window(gameStart.Add(-dispersionWindow), gameStart)
	probs := make([]float64, 0, len(window))
	times := make([]time.Time, 0, len(window))
	for i := range window {
		if p := window[i].SideProb(side); p != nil {
			probs = append(probs, *p)
			times = append(times, window[i].CapturedAt)
		}
	}

	switch len(probs) {
	case 0:
		// undefined
	case 1:
		// A single point has no movement to measure; zero by definition.
		zero := 0.0
		v, r, s := zero, zero, zero
		feats.Velocity30m, feats.Range30m, feats.Std30m = &v, &r, &s
	default:
		feats.Velocity30m = velocity(probs, times)
		feats.Range30m = probRange(probs)
		feats.Std30m = stddev(probs)
	}
	return feats
}

// steamDelta is the side probability change from the snapshot nearest the
// far target to the one nearest the near target. Undefined when either
// point is missing within tolerance or lacks a moneyline pair.
func steamDelta(series *Series, side models.Side, far, near time.Time) *float64 {
	farSnap, ok := series.NearestWithin(far, steamTolerance)
	if !ok {
		return nil
	}
	nearSnap, ok := series.NearestWithin(near, steamTolerance)
	if !ok {
		return nil
	}
	farProb := farSnap.SideProb(side)
	nearProb := nearSnap.SideProb(side)
	if farProb == nil || nearProb == nil {
		return nil
	}
	delta := *nearProb - *farProb
	return &delta
}

func velocity(probs []float64, times []time.Time) *float64 {
	minutes := times[len(times)-1].Sub(times[0]).Minutes()
	v := 0.0
	if minutes > 0 {
		v = (probs[len(probs)-1] - probs[0]) / minutes
	}
	return &v
}

func probRange(probs []float64) *float64 {
	lo, hi := probs[0], probs[0]
	for _, p := range probs[1:] {
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
	}
	r := hi - lo
	return &r
}

func stddev(probs []float64) *float64 {
	var sum float64
	for _, p := range probs {
		sum += p
	}
	mean := sum / float64(len(probs))

	var sq float64
	for _, p := range probs {
		sq += (p - mean) * (p - mean)
	}
	sd := math.Sqrt(sq / float64(len(probs)))
	return &sd
}
