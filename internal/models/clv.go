package models

import "time"

// CLVType names the formula a CLV value was computed with
type CLVType string

const (
	CLVTypeMoneylineNoVig  CLVType = "moneyline_novig_prob"
	CLVTypeSpreadComposite CLVType = "spread_composite"
)

// CLVRecord is the closing-line-value audit record derived for one locked
// pick. Optional fields stay nil when no eligible snapshot exists; they are
// never defaulted to zero.
type CLVRecord struct {
	EventID       string     `json:"event_id"`
	Market        PickMarket `json:"market"`
	Side          Side       `json:"side"`
	Tier          string     `json:"tier"`
	Confidence    *float64   `json:"confidence"`
	HomeTeam      string     `json:"home_team"`
	AwayTeam      string     `json:"away_team"`
	LockedAt      time.Time  `json:"locked_at"`
	GameStartTime time.Time  `json:"game_start_time"`

	// Side-specific no-vig probabilities at commitment and close, and
	// their signed difference. Positive CLV means the market moved toward
	// the pick.
	ProbAtLock  *float64 `json:"p_lock"`
	ProbAtClose *float64 `json:"p_close"`
	CLV         *float64 `json:"clv"`
	CLVType     CLVType  `json:"clv_type"`

	// Staleness of the snapshots the probabilities came from, in seconds.
	SnapGapLockSec  *float64 `json:"snap_gap_lock_sec"`
	SnapGapCloseSec *float64 `json:"snap_gap_close_sec"`

	// Pre-lock steam and pre-game dispersion features.
	Steam5m     *float64 `json:"steam_5m"`
	Steam15m    *float64 `json:"steam_15m"`
	Velocity30m *float64 `json:"velocity_30m"`
	Range30m    *float64 `json:"range_30m"`
	Std30m      *float64 `json:"std_30m"`
}

// HasCLV reports whether a defined CLV value is present
func (r *CLVRecord) HasCLV() bool {
	return r.CLV != nil
}
