// Package repository provides data access to the pick-history store. The
// store schema is an upstream contract; these repositories only read it,
// apart from backfilled quote snapshots.
package repository

import (
	"context"
	"time"

	"github.com/NatLaw2/pickpulse-model/internal/models"
)

// PickRepository reads committed picks and their graded results.
type PickRepository interface {
	// GetLockedSince returns picks committed on or after the cutoff, in
	// commitment order, with any graded result attached.
	GetLockedSince(ctx context.Context, cutoff time.Time) ([]models.LockedPick, error)
}

// QuoteRepository reads and backfills market-snapshot history.
type QuoteRepository interface {
	// GetByEvent returns every quote row for one event in capture order.
	GetByEvent(ctx context.Context, eventID string) ([]models.OddsQuote, error)

	// GetByEvents returns quote rows for many events, keyed by event id.
	GetByEvents(ctx context.Context, eventIDs []string) (map[string][]models.OddsQuote, error)

	// InsertBatch backfills quote rows fetched from an external source.
	InsertBatch(ctx context.Context, quotes []models.OddsQuote) error
}

// ScoreRepository reads final scores for independent re-grading.
type ScoreRepository interface {
	// GetByEvents returns final scores keyed by event id; events without a
	// recorded score are simply absent.
	GetByEvents(ctx context.Context, eventIDs []string) (map[string]models.FinalScore, error)
}
