package models

import (
	"strings"
	"time"
)

// QuoteMarket identifies the market a quote row belongs to
type QuoteMarket string

const (
	QuoteMarketMoneyline QuoteMarket = "h2h"
	QuoteMarketSpread    QuoteMarket = "spreads"
)

// OddsQuote represents one side's American-odds price at a point in time
// for one market of one event. Rows sharing a captured_at timestamp form a
// snapshot of the full market.
type OddsQuote struct {
	EventID     string      `db:"event_id" json:"event_id" validate:"required"`
	Market      QuoteMarket `db:"market" json:"market" validate:"required,oneof=h2h spreads"`
	OutcomeName string      `db:"outcome_name" json:"outcome_name" validate:"required"`
	Price       *float64    `db:"price" json:"price"`
	Point       *float64    `db:"point" json:"point"` // spreads only
	CapturedAt  time.Time   `db:"captured_at" json:"captured_at" validate:"required"`
	Source      string      `db:"source" json:"source"`

	// Authoritative team names carried on every quote row; the snapshot's
	// own home/away mapping wins over whatever the pick recorded.
	HomeTeam string `db:"home_team" json:"home_team"`
	AwayTeam string `db:"away_team" json:"away_team"`
}

// IsHomeOutcome reports whether the quote's outcome is the home team
func (q *OddsQuote) IsHomeOutcome() bool {
	return q.HomeTeam != "" && strings.EqualFold(strings.TrimSpace(q.OutcomeName), strings.TrimSpace(q.HomeTeam))
}

// IsAwayOutcome reports whether the quote's outcome is the away team
func (q *OddsQuote) IsAwayOutcome() bool {
	return q.AwayTeam != "" && strings.EqualFold(strings.TrimSpace(q.OutcomeName), strings.TrimSpace(q.AwayTeam))
}
