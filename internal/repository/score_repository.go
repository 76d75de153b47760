package repository

import (
	"context"
	"fmt"

	"github.com/NatLaw2/pickpulse-model/internal/database"
	"github.com/NatLaw2/pickpulse-model/internal/models"
)

// PostgresScoreRepository implements ScoreRepository for PostgreSQL
type PostgresScoreRepository struct {
	db *database.DB
}

// NewPostgresScoreRepository creates a new score repository
func NewPostgresScoreRepository(db *database.DB) ScoreRepository {
	return &PostgresScoreRepository{db: db}
}

// GetByEvents retrieves final scores keyed by event id
func (r *PostgresScoreRepository) GetByEvents(ctx context.Context, eventIDs []string) (map[string]models.FinalScore, error) {
	if len(eventIDs) == 0 {
		return map[string]models.FinalScore{}, nil
	}

	query := `
		SELECT event_id, home_team, away_team, home_score, away_score, commence_time
		FROM game_results
		WHERE event_id = ANY($1)
	`

	rows, err := r.db.GetPool().Query(ctx, query, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query final scores: %w", err)
	}
	defer rows.Close()

	scores := make(map[string]models.FinalScore)
	for rows.Next() {
		var s models.FinalScore
		err := rows.Scan(&s.EventID, &s.HomeTeam, &s.AwayTeam, &s.HomeScore, &s.AwayScore, &s.CommenceTime)
		if err != nil {
			return nil, fmt.Errorf("failed to scan final score: %w", err)
		}
		scores[s.EventID] = s
	}

	return scores, rows.Err()
}
