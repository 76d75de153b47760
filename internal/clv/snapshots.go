// Package clv derives closing-line-value records and line-movement timing
// features from market-snapshot history.
package clv

import (
	"sort"
	"time"

	"github.com/NatLaw2/pickpulse-model/internal/models"
	"github.com/NatLaw2/pickpulse-model/internal/odds"
)

// Snapshot is every quote row captured at one timestamp for one event.
type Snapshot struct {
	CapturedAt time.Time
	Rows       []models.OddsQuote
	HomeTeam   string
	AwayTeam   string
}

// MoneylineProbs extracts the no-vig home/away probabilities from the
// snapshot's moneyline rows. Returns false when either side's price is
// missing from the snapshot.
func (s *Snapshot) MoneylineProbs() (home, away float64, ok bool) {
	var homePrice, awayPrice *float64
	for i := range s.Rows {
		q := &s.Rows[i]
		if q.Market != models.QuoteMarketMoneyline || q.Price == nil {
			continue
		}
		switch {
		case q.IsHomeOutcome():
			homePrice = q.Price
		case q.IsAwayOutcome():
			awayPrice = q.Price
		}
	}
	if homePrice == nil || awayPrice == nil {
		return 0, 0, false
	}
	home, away = odds.NoVigPair(*homePrice, *awayPrice)
	return home, away, true
}

// SideProb returns the no-vig moneyline probability for one side, or nil
// when the snapshot lacks a complete moneyline pair.
func (s *Snapshot) SideProb(side models.Side) *float64 {
	home, away, ok := s.MoneylineProbs()
	if !ok {
		return nil
	}
	switch side {
	case models.SideHome:
		return &home
	case models.SideAway:
		return &away
	}
	return nil
}

// SpreadQuote returns the point and price of the side's spread row, either
// of which may be nil.
func (s *Snapshot) SpreadQuote(side models.Side) (point, price *float64) {
	for i := range s.Rows {
		q := &s.Rows[i]
		if q.Market != models.QuoteMarketSpread {
			continue
		}
		if (side == models.SideHome && q.IsHomeOutcome()) ||
			(side == models.SideAway && q.IsAwayOutcome()) {
			return q.Point, q.Price
		}
	}
	return nil, nil
}

// Series is one event's snapshots in ascending capture order.
type Series struct {
	EventID   string
	Snapshots []Snapshot
}

// BuildSeries groups an event's quote rows by capture timestamp into
// chronologically sorted snapshots. Team names come from the rows
// themselves; the latest non-empty pair wins.
func BuildSeries(eventID string, quotes []models.OddsQuote) *Series {
	byTime := make(map[time.Time][]models.OddsQuote)
	for _, q := range quotes {
		if q.EventID != eventID {
			continue
		}
		key := q.CapturedAt.UTC()
		byTime[key] = append(byTime[key], q)
	}

	snapshots := make([]Snapshot, 0, len(byTime))
	for ts, rows := range byTime {
		snap := Snapshot{CapturedAt: ts, Rows: rows}
		for _, q := range rows {
			if q.HomeTeam != "" && q.AwayTeam != "" {
				snap.HomeTeam = q.HomeTeam
				snap.AwayTeam = q.AwayTeam
				break
			}
		}
		snapshots = append(snapshots, snap)
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].CapturedAt.Before(snapshots[j].CapturedAt)
	})

	return &Series{EventID: eventID, Snapshots: snapshots}
}

// Teams returns the series' authoritative home/away names: the latest
// snapshot carrying both.
func (s *Series) Teams() (home, away string) {
	for i := len(s.Snapshots) - 1; i >= 0; i-- {
		if s.Snapshots[i].HomeTeam != "" && s.Snapshots[i].AwayTeam != "" {
			return s.Snapshots[i].HomeTeam, s.Snapshots[i].AwayTeam
		}
	}
	return "", ""
}

// NearestAtOrBefore returns the latest snapshot captured at or before the
// target, with its staleness gap in seconds. Returns false when every
// snapshot is after the target.
func (s *Series) NearestAtOrBefore(target time.Time) (*Snapshot, float64, bool) {
	var found *Snapshot
	for i := range s.Snapshots {
		if s.Snapshots[i].CapturedAt.After(target) {
			break
		}
		found = &s.Snapshots[i]
	}
	if found == nil {
		return nil, 0, false
	}
	return found, target.Sub(found.CapturedAt).Seconds(), true
}

// NearestWithin returns the snapshot closest in time to the target, in
// either direction, when it lies within the tolerance.
func (s *Series) NearestWithin(target time.Time, tolerance time.Duration) (*Snapshot, bool) {
	var best *Snapshot
	var bestGap time.Duration
	for i := range s.Snapshots {
		gap := s.Snapshots[i].CapturedAt.Sub(target)
		if gap < 0 {
			gap = -gap
		}
		if best == nil || gap < bestGap {
			best = &s.Snapshots[i]
			bestGap = gap
		}
	}
	if best == nil || bestGap > tolerance {
		return nil, false
	}
	return best, true
}

// Window returns the snapshots captured in [from, to] inclusive.
func (s *Series) Window(from, to time.Time) []Snapshot {
	var out []Snapshot
	for _, snap := range s.Snapshots {
		if snap.CapturedAt.Before(from) || snap.CapturedAt.After(to) {
			continue
		}
		out = append(out, snap)
	}
	return out
}
