package pipeline

import (
	"context"
	"time"

	"github.com/NatLaw2/pickpulse-model/internal/models"
	"github.com/NatLaw2/pickpulse-model/internal/repository"
)

// Store is the pick-history surface the pipeline reads from. It exists so
// runs can be driven from the Postgres repositories in production and from
// fixtures in tests.
type Store interface {
	GetLockedSince(ctx context.Context, cutoff time.Time) ([]models.LockedPick, error)
	GetQuotesByEvents(ctx context.Context, eventIDs []string) (map[string][]models.OddsQuote, error)
	InsertQuotes(ctx context.Context, quotes []models.OddsQuote) error
	GetScoresByEvents(ctx context.Context, eventIDs []string) (map[string]models.FinalScore, error)
}

type repoStore struct {
	repos *repository.Repositories
}

// NewStore adapts the repository layer to the pipeline's store surface.
func NewStore(repos *repository.Repositories) Store {
	return &repoStore{repos: repos}
}

func (s *repoStore) GetLockedSince(ctx context.Context, cutoff time.Time) ([]models.LockedPick, error) {
	return s.repos.Picks.GetLockedSince(ctx, cutoff)
}

func (s *repoStore) GetQuotesByEvents(ctx context.Context, eventIDs []string) (map[string][]models.OddsQuote, error) {
	return s.repos.Quotes.GetByEvents(ctx, eventIDs)
}

func (s *repoStore) InsertQuotes(ctx context.Context, quotes []models.OddsQuote) error {
	return s.repos.Quotes.InsertBatch(ctx, quotes)
}

func (s *repoStore) GetScoresByEvents(ctx context.Context, eventIDs []string) (map[string]models.FinalScore, error) {
	return s.repos.Scores.GetByEvents(ctx, eventIDs)
}
