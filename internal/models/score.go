package models

import "time"

// FinalScore is the concluded score of an event, used for independent
// re-grading of moneyline picks.
type FinalScore struct {
	EventID      string    `db:"event_id" json:"event_id" validate:"required"`
	HomeTeam     string    `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam     string    `db:"away_team" json:"away_team" validate:"required"`
	HomeScore    int       `db:"home_score" json:"home_score"`
	AwayScore    int       `db:"away_score" json:"away_score"`
	CommenceTime time.Time `db:"commence_time" json:"commence_time"`
}

// Winner returns the winning side, or false for a tie
func (s *FinalScore) Winner() (Side, bool) {
	switch {
	case s.HomeScore > s.AwayScore:
		return SideHome, true
	case s.AwayScore > s.HomeScore:
		return SideAway, true
	default:
		return "", false
	}
}
