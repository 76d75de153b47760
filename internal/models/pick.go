package models

import (
	"time"
)

// PickMarket identifies the market a locked pick was committed on
type PickMarket string

const (
	PickMarketMoneyline PickMarket = "moneyline"
	PickMarketSpread    PickMarket = "spread"
)

// Side identifies which team a pick or quote refers to
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// Outcome represents a graded pick result
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomePush Outcome = "push"
)

// LockedOdds holds the odds captured at commitment time, used as a
// fallback when no quote snapshot exists at or before the lock timestamp.
type LockedOdds struct {
	MLHome          *float64 `db:"locked_ml_home" json:"ml_home"`
	MLAway          *float64 `db:"locked_ml_away" json:"ml_away"`
	SpreadHomePoint *float64 `db:"locked_spread_home_point" json:"spread_home_point"`
	SpreadHomePrice *float64 `db:"locked_spread_home_price" json:"spread_home_price"`
	SpreadAwayPoint *float64 `db:"locked_spread_away_point" json:"spread_away_point"`
	SpreadAwayPrice *float64 `db:"locked_spread_away_price" json:"spread_away_price"`
}

// GradedResult is the outcome attached to a locked pick after the event
// concludes. Created at most once per pick.
type GradedResult struct {
	Result   Outcome   `db:"result" json:"result" validate:"required,oneof=win loss push"`
	Units    float64   `db:"units" json:"units"`
	GradedAt time.Time `db:"graded_at" json:"graded_at" validate:"required"`
}

// LockedPick is a committed wagering decision. Immutable after creation
// except for the later attachment of its graded result.
type LockedPick struct {
	EventID       string     `db:"event_id" json:"event_id" validate:"required"`
	Market        PickMarket `db:"market" json:"market" validate:"required,oneof=moneyline spread"`
	SelectionTeam string     `db:"selection_team" json:"selection_team" validate:"required"`
	Tier          string     `db:"tier" json:"tier"`
	Confidence    *float64   `db:"confidence" json:"confidence"`
	LockedAt      time.Time  `db:"locked_at" json:"locked_at" validate:"required"`
	GameStartTime time.Time  `db:"game_start_time" json:"game_start_time" validate:"required"`
	HomeTeam      string     `db:"home_team" json:"home_team"`
	AwayTeam      string     `db:"away_team" json:"away_team"`

	// Odds recorded at commitment. Nil when the upstream writer captured
	// none; the nearest prior snapshot substitutes in that case.
	LockedOdds *LockedOdds `json:"locked_odds"`

	// Attached once the event is graded; nil until then.
	Result *GradedResult `json:"result"`
}

// IsGraded reports whether a result has been attached
func (p *LockedPick) IsGraded() bool {
	return p.Result != nil
}

// IsDecided reports whether the pick graded to a win or a loss (not a push)
func (p *LockedPick) IsDecided() bool {
	return p.Result != nil && (p.Result.Result == OutcomeWin || p.Result.Result == OutcomeLoss)
}

// Won reports whether the pick graded to a win
func (p *LockedPick) Won() bool {
	return p.Result != nil && p.Result.Result == OutcomeWin
}
