// Package discovery mines graded pick history for segments that win or
// lose at rates far from the overall baseline.
package discovery

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/NatLaw2/pickpulse-model/internal/models"
)

// Segment is one mined slice of the pick history.
type Segment struct {
	Dimension string  `json:"dimension"`
	Value     string  `json:"value"`
	N         int     `json:"n"`
	Wins      int     `json:"wins"`
	WinRate   float64 `json:"win_rate"`
	// Lift is the win-rate difference against the overall baseline.
	Lift float64 `json:"lift"`
}

// Miner groups decided picks along categorical dimensions and surfaces
// segments with enough support and a meaningful lift.
type Miner struct {
	minSupport int
	minLift    float64
	logger     *logrus.Logger
}

func NewMiner(minSupport int, minLift float64, logger *logrus.Logger) *Miner {
	if minSupport <= 0 {
		minSupport = 20
	}
	if minLift <= 0 {
		minLift = 0.05
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Miner{minSupport: minSupport, minLift: minLift, logger: logger}
}

type segmentKey struct {
	dimension string
	value     string
}

// Mine returns segments ordered by absolute lift, largest first. Only
// decided picks count; pushes and ungraded picks are excluded from both
// the baseline and the segments.
func (m *Miner) Mine(picks []models.LockedPick) []Segment {
	var decided []models.LockedPick
	baseWins := 0
	for _, p := range picks {
		if !p.IsDecided() {
			continue
		}
		decided = append(decided, p)
		if p.Won() {
			baseWins++
		}
	}
	if len(decided) == 0 {
		return nil
	}
	baseline := float64(baseWins) / float64(len(decided))

	counts := make(map[segmentKey]*Segment)
	for _, p := range decided {
		for _, key := range segmentKeys(p) {
			seg, ok := counts[key]
			if !ok {
				seg = &Segment{Dimension: key.dimension, Value: key.value}
				counts[key] = seg
			}
			seg.N++
			if p.Won() {
				seg.Wins++
			}
		}
	}

	var out []Segment
	for _, seg := range counts {
		if seg.N < m.minSupport {
			continue
		}
		seg.WinRate = float64(seg.Wins) / float64(seg.N)
		seg.Lift = seg.WinRate - baseline
		if seg.Lift >= m.minLift || seg.Lift <= -m.minLift {
			out = append(out, *seg)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		li, lj := abs(out[i].Lift), abs(out[j].Lift)
		if li != lj {
			return li > lj
		}
		if out[i].Dimension != out[j].Dimension {
			return out[i].Dimension < out[j].Dimension
		}
		return out[i].Value < out[j].Value
	})

	m.logger.WithFields(logrus.Fields{
		"decided":  len(decided),
		"baseline": baseline,
		"segments": len(out),
	}).Info("Segment mining complete")

	return out
}

// segmentKeys enumerates the categorical slices one pick belongs to.
func segmentKeys(p models.LockedPick) []segmentKey {
	keys := []segmentKey{
		{"market", string(p.Market)},
		{"day_of_week", p.GameStartTime.Weekday().String()},
	}
	if p.Tier != "" {
		keys = append(keys, segmentKey{"tier", p.Tier})
	}
	if p.Confidence != nil {
		keys = append(keys, segmentKey{"confidence_band", confidenceBand(*p.Confidence)})
	}
	return keys
}

func confidenceBand(c float64) string {
	switch {
	case c < 0.55:
		return "lt_55"
	case c < 0.60:
		return "55_60"
	case c < 0.65:
		return "60_65"
	default:
		return "gte_65"
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Describe renders a segment as a short human-readable line for reports.
func (s Segment) Describe() string {
	return fmt.Sprintf("%s=%s: %d picks, %.1f%% win rate (%+.1f pts vs baseline)",
		s.Dimension, s.Value, s.N, s.WinRate*100, s.Lift*100)
}
