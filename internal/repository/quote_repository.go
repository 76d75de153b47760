package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/NatLaw2/pickpulse-model/internal/database"
	"github.com/NatLaw2/pickpulse-model/internal/models"
)

const quoteColumns = `event_id, market, outcome_name, price, point, captured_at, source, home_team, away_team`

// PostgresQuoteRepository implements QuoteRepository for PostgreSQL
type PostgresQuoteRepository struct {
	db *database.DB
}

// NewPostgresQuoteRepository creates a new quote repository
func NewPostgresQuoteRepository(db *database.DB) QuoteRepository {
	return &PostgresQuoteRepository{db: db}
}

// GetByEvent retrieves every quote row for one event in capture order
func (r *PostgresQuoteRepository) GetByEvent(ctx context.Context, eventID string) ([]models.OddsQuote, error) {
	query := `
		SELECT ` + quoteColumns + `
		FROM odds_quotes
		WHERE event_id = $1
		ORDER BY captured_at ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotes by event: %w", err)
	}
	defer rows.Close()

	return scanQuotes(rows)
}

// GetByEvents retrieves quote rows for many events keyed by event id
func (r *PostgresQuoteRepository) GetByEvents(ctx context.Context, eventIDs []string) (map[string][]models.OddsQuote, error) {
	if len(eventIDs) == 0 {
		return map[string][]models.OddsQuote{}, nil
	}

	query := `
		SELECT ` + quoteColumns + `
		FROM odds_quotes
		WHERE event_id = ANY($1)
		ORDER BY event_id, captured_at ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotes by events: %w", err)
	}
	defer rows.Close()

	quotes, err := scanQuotes(rows)
	if err != nil {
		return nil, err
	}

	byEvent := make(map[string][]models.OddsQuote)
	for _, q := range quotes {
		byEvent[q.EventID] = append(byEvent[q.EventID], q)
	}
	return byEvent, nil
}

// InsertBatch backfills quote rows using a bulk COPY
func (r *PostgresQuoteRepository) InsertBatch(ctx context.Context, quotes []models.OddsQuote) error {
	if len(quotes) == 0 {
		return nil
	}

	columns := []string{"event_id", "market", "outcome_name", "price", "point", "captured_at", "source", "home_team", "away_team"}

	source := make([][]interface{}, len(quotes))
	for i, q := range quotes {
		source[i] = []interface{}{
			q.EventID, string(q.Market), q.OutcomeName, q.Price, q.Point,
			q.CapturedAt, q.Source, q.HomeTeam, q.AwayTeam,
		}
	}

	count, err := r.db.GetPool().CopyFrom(ctx, pgx.Identifier{"odds_quotes"}, columns, pgx.CopyFromRows(source))
	if err != nil {
		return fmt.Errorf("failed to batch insert quotes: %w", err)
	}
	if count != int64(len(quotes)) {
		return fmt.Errorf("inserted %d quote rows, expected %d", count, len(quotes))
	}
	return nil
}

func scanQuotes(rows pgx.Rows) ([]models.OddsQuote, error) {
	var quotes []models.OddsQuote
	for rows.Next() {
		var q models.OddsQuote
		err := rows.Scan(
			&q.EventID, &q.Market, &q.OutcomeName, &q.Price, &q.Point,
			&q.CapturedAt, &q.Source, &q.HomeTeam, &q.AwayTeam,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}
