package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/NatLaw2/pickpulse-model/internal/database"
	"github.com/NatLaw2/pickpulse-model/internal/models"
)

// PostgresPickRepository implements PickRepository for PostgreSQL
type PostgresPickRepository struct {
	db *database.DB
}

// NewPostgresPickRepository creates a new pick repository
func NewPostgresPickRepository(db *database.DB) PickRepository {
	return &PostgresPickRepository{db: db}
}

// GetLockedSince retrieves picks committed on or after the cutoff, joined
// with their graded results when present.
func (r *PostgresPickRepository) GetLockedSince(ctx context.Context, cutoff time.Time) ([]models.LockedPick, error) {
	query := `
		SELECT p.event_id, p.market, p.selection_team, p.tier, p.confidence,
		       p.locked_at, p.game_start_time, p.home_team, p.away_team,
		       p.locked_ml_home, p.locked_ml_away,
		       p.locked_spread_home_point, p.locked_spread_home_price,
		       p.locked_spread_away_point, p.locked_spread_away_price,
		       g.result, g.units, g.graded_at
		FROM locked_picks p
		LEFT JOIN pick_results g
		  ON g.event_id = p.event_id AND g.market = p.market
		WHERE p.locked_at >= $1
		ORDER BY p.game_start_time ASC, p.locked_at ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query locked picks: %w", err)
	}
	defer rows.Close()

	var picks []models.LockedPick
	for rows.Next() {
		var (
			pick     models.LockedPick
			locked   models.LockedOdds
			result   *string
			units    *float64
			gradedAt *time.Time
		)
		err := rows.Scan(
			&pick.EventID, &pick.Market, &pick.SelectionTeam, &pick.Tier, &pick.Confidence,
			&pick.LockedAt, &pick.GameStartTime, &pick.HomeTeam, &pick.AwayTeam,
			&locked.MLHome, &locked.MLAway,
			&locked.SpreadHomePoint, &locked.SpreadHomePrice,
			&locked.SpreadAwayPoint, &locked.SpreadAwayPrice,
			&result, &units, &gradedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked pick: %w", err)
		}

		if hasLockedOdds(&locked) {
			pick.LockedOdds = &locked
		}
		if result != nil && gradedAt != nil {
			graded := models.GradedResult{Result: models.Outcome(*result), GradedAt: *gradedAt}
			if units != nil {
				graded.Units = *units
			}
			pick.Result = &graded
		}
		picks = append(picks, pick)
	}

	return picks, rows.Err()
}

func hasLockedOdds(lo *models.LockedOdds) bool {
	return lo.MLHome != nil || lo.MLAway != nil ||
		lo.SpreadHomePoint != nil || lo.SpreadAwayPoint != nil
}
