package clv

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/NatLaw2/pickpulse-model/internal/models"
	"github.com/NatLaw2/pickpulse-model/internal/odds"
)

// staleLockGap marks a lock-time snapshot too old to trust.
const staleLockGap = 6 * time.Hour

// Auditor derives CLV records for locked picks from quote history.
type Auditor struct {
	logger *logrus.Logger
}

func NewAuditor(logger *logrus.Logger) *Auditor {
	if logger == nil {
		logger = logrus.New()
	}
	return &Auditor{logger: logger}
}

// Audit derives the CLV record for one pick from its event's quote rows.
// Fields that cannot be derived stay nil; the record itself is always
// returned so downstream stages can count coverage.
func (a *Auditor) Audit(pick models.LockedPick, quotes []models.OddsQuote) models.CLVRecord {
	series := BuildSeries(pick.EventID, quotes)

	homeTeam, awayTeam := series.Teams()
	if homeTeam == "" || awayTeam == "" {
		homeTeam, awayTeam = pick.HomeTeam, pick.AwayTeam
	}

	rec := models.CLVRecord{
		EventID:       pick.EventID,
		Market:        pick.Market,
		Tier:          pick.Tier,
		Confidence:    pick.Confidence,
		HomeTeam:      homeTeam,
		AwayTeam:      awayTeam,
		LockedAt:      pick.LockedAt,
		GameStartTime: pick.GameStartTime,
	}

	side, ok := odds.ResolveSide(pick.SelectionTeam, homeTeam, awayTeam)
	if !ok {
		a.logger.WithFields(logrus.Fields{
			"event_id":  pick.EventID,
			"selection": pick.SelectionTeam,
		}).Warn("Could not resolve pick side, CLV undefined")
		return rec
	}
	rec.Side = side

	lockSnap, lockGap, lockOK := series.NearestAtOrBefore(pick.LockedAt)
	closeSnap, closeGap, closeOK := series.NearestAtOrBefore(pick.GameStartTime)
	if lockOK {
		rec.SnapGapLockSec = &lockGap
	}
	if closeOK {
		rec.SnapGapCloseSec = &closeGap
	}

	switch pick.Market {
	case models.PickMarketMoneyline:
		a.auditMoneyline(&rec, pick, side, lockSnap, closeSnap)
	case models.PickMarketSpread:
		a.auditSpread(&rec, pick, side, lockSnap, closeSnap)
	}

	if closeOK {
		feats := ExtractTiming(series, side, pick.LockedAt, pick.GameStartTime)
		rec.Steam5m = feats.Steam5m
		rec.Steam15m = feats.Steam15m
		rec.Velocity30m = feats.Velocity30m
		rec.Range30m = feats.Range30m
		rec.Std30m = feats.Std30m
	}

	return rec
}

// auditMoneyline fills probability-at-lock/close and no-vig CLV. Lock
// prices prefer the odds captured at commitment, falling back to the
// nearest prior snapshot.
func (a *Auditor) auditMoneyline(rec *models.CLVRecord, pick models.LockedPick, side models.Side, lockSnap, closeSnap *Snapshot) {
	rec.CLVType = models.CLVTypeMoneylineNoVig

	lockHome, lockAway := lockedMoneyline(pick, lockSnap)
	if lockHome != nil && lockAway != nil {
		h, aw := odds.NoVigPair(*lockHome, *lockAway)
		if side == models.SideHome {
			rec.ProbAtLock = &h
		} else {
			rec.ProbAtLock = &aw
		}
	}

	var closeHome, closeAway *float64
	if closeSnap != nil {
		closeHome, closeAway = snapshotMoneyline(closeSnap)
	}
	if closeHome != nil && closeAway != nil {
		h, aw := odds.NoVigPair(*closeHome, *closeAway)
		if side == models.SideHome {
			rec.ProbAtClose = &h
		} else {
			rec.ProbAtClose = &aw
		}
	}

	rec.CLV = odds.MoneylineCLV(lockHome, lockAway, closeHome, closeAway, side)
}

// auditSpread fills composite spread CLV: point movement scaled to
// probability units plus the price shift when both prices are present.
func (a *Auditor) auditSpread(rec *models.CLVRecord, pick models.LockedPick, side models.Side, lockSnap, closeSnap *Snapshot) {
	rec.CLVType = models.CLVTypeSpreadComposite

	lockPoint, lockPrice := lockedSpread(pick, side, lockSnap)
	var closePoint, closePrice *float64
	if closeSnap != nil {
		closePoint, closePrice = closeSnap.SpreadQuote(side)
	}

	if lockPrice != nil {
		p := odds.ImpliedProbability(*lockPrice)
		rec.ProbAtLock = &p
	}
	if closePrice != nil {
		p := odds.ImpliedProbability(*closePrice)
		rec.ProbAtClose = &p
	}

	rec.CLV = odds.SpreadCLV(lockPoint, lockPrice, closePoint, closePrice)
}

func lockedMoneyline(pick models.LockedPick, lockSnap *Snapshot) (home, away *float64) {
	if pick.LockedOdds != nil && pick.LockedOdds.MLHome != nil && pick.LockedOdds.MLAway != nil {
		return pick.LockedOdds.MLHome, pick.LockedOdds.MLAway
	}
	if lockSnap != nil {
		return snapshotMoneyline(lockSnap)
	}
	return nil, nil
}

func lockedSpread(pick models.LockedPick, side models.Side, lockSnap *Snapshot) (point, price *float64) {
	if lo := pick.LockedOdds; lo != nil {
		if side == models.SideHome && lo.SpreadHomePoint != nil {
			return lo.SpreadHomePoint, lo.SpreadHomePrice
		}
		if side == models.SideAway && lo.SpreadAwayPoint != nil {
			return lo.SpreadAwayPoint, lo.SpreadAwayPrice
		}
	}
	if lockSnap != nil {
		return lockSnap.SpreadQuote(side)
	}
	return nil, nil
}

func snapshotMoneyline(snap *Snapshot) (home, away *float64) {
	for i := range snap.Rows {
		q := &snap.Rows[i]
		if q.Market != models.QuoteMarketMoneyline || q.Price == nil {
			continue
		}
		switch {
		case q.IsHomeOutcome():
			home = q.Price
		case q.IsAwayOutcome():
			away = q.Price
		}
	}
	return home, away
}

// AuditAll derives records for every pick, keyed into the quote history by
// event id.
func (a *Auditor) AuditAll(picks []models.LockedPick, quotesByEvent map[string][]models.OddsQuote) []models.CLVRecord {
	records := make([]models.CLVRecord, 0, len(picks))
	for _, pick := range picks {
		records = append(records, a.Audit(pick, quotesByEvent[pick.EventID]))
	}

	summary := Summarize(records)
	a.logger.WithFields(logrus.Fields{
		"picks":   len(picks),
		"defined": summary.Defined,
	}).Info("CLV audit complete")

	return records
}

// Summary aggregates defined CLV values; undefined records are counted but
// never averaged in.
type Summary struct {
	Total       int      `json:"total"`
	Defined     int      `json:"defined"`
	MeanCLV     *float64 `json:"mean_clv"`
	PctPositive *float64 `json:"pct_positive"`
	MedianCLV   *float64 `json:"median_clv"`
}

// Summarize computes the aggregate over defined records only.
func Summarize(records []models.CLVRecord) Summary {
	s := Summary{Total: len(records)}

	var values []float64
	for i := range records {
		if records[i].HasCLV() {
			values = append(values, *records[i].CLV)
		}
	}
	s.Defined = len(values)
	if len(values) == 0 {
		return s
	}

	var sum float64
	positive := 0
	for _, v := range values {
		sum += v
		if v > 0 {
			positive++
		}
	}
	mean := sum / float64(len(values))
	pct := float64(positive) / float64(len(values)) * 100

	sort.Float64s(values)
	median := values[len(values)/2]
	if len(values)%2 == 0 {
		median = (values[len(values)/2-1] + values[len(values)/2]) / 2
	}

	s.MeanCLV = &mean
	s.PctPositive = &pct
	s.MedianCLV = &median
	return s
}

// SummarizeByTier groups the aggregate by pick tier.
func SummarizeByTier(records []models.CLVRecord) map[string]Summary {
	byTier := make(map[string][]models.CLVRecord)
	for _, r := range records {
		byTier[r.Tier] = append(byTier[r.Tier], r)
	}
	out := make(map[string]Summary, len(byTier))
	for tier, rs := range byTier {
		out[tier] = Summarize(rs)
	}
	return out
}

// ConfidenceBucket is the CLV aggregate for picks whose confidence fell in
// [Lo, Hi).
type ConfidenceBucket struct {
	Lo      float64 `json:"lo"`
	Hi      float64 `json:"hi"`
	Summary Summary `json:"summary"`
}

// SummarizeByConfidence buckets records on the given ascending edges. Picks
// without a confidence are skipped.
func SummarizeByConfidence(records []models.CLVRecord, edges []float64) []ConfidenceBucket {
	if len(edges) < 2 {
		edges = []float64{0.5, 0.55, 0.6, 0.65, 1.0}
	}

	buckets := make([]ConfidenceBucket, len(edges)-1)
	grouped := make([][]models.CLVRecord, len(edges)-1)
	for i := range buckets {
		buckets[i].Lo = edges[i]
		buckets[i].Hi = edges[i+1]
	}

	for _, r := range records {
		if r.Confidence == nil {
			continue
		}
		c := *r.Confidence
		for i := 0; i < len(edges)-1; i++ {
			if c >= edges[i] && (c < edges[i+1] || i == len(edges)-2 && c <= edges[i+1]) {
				grouped[i] = append(grouped[i], r)
				break
			}
		}
	}

	for i := range buckets {
		buckets[i].Summary = Summarize(grouped[i])
	}
	return buckets
}

// LeakageFlag marks a record whose timestamps suggest the lock could have
// seen information it should not have.
type LeakageFlag struct {
	EventID string `json:"event_id"`
	Reason  string `json:"reason"`
}

// LeakageFlags scans records for locks placed after tip-off and for lock
// probabilities sourced from badly stale snapshots.
func LeakageFlags(records []models.CLVRecord) []LeakageFlag {
	var flags []LeakageFlag
	for _, r := range records {
		if r.LockedAt.After(r.GameStartTime) {
			flags = append(flags, LeakageFlag{EventID: r.EventID, Reason: "locked_after_game_start"})
		}
		if r.SnapGapLockSec != nil && *r.SnapGapLockSec > staleLockGap.Seconds() {
			flags = append(flags, LeakageFlag{EventID: r.EventID, Reason: "stale_lock_snapshot"})
		}
	}
	return flags
}
