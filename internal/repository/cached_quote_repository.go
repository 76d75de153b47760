package repository

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/NatLaw2/pickpulse-model/internal/models"
)

// CachedQuoteRepository memoizes per-event quote reads. Quote history is
// append-only within a run, so a short TTL is safe; writes pass through and
// invalidate the touched events.
type CachedQuoteRepository struct {
	inner QuoteRepository
	cache *gocache.Cache
}

// NewCachedQuoteRepository wraps a quote repository with a TTL cache.
func NewCachedQuoteRepository(inner QuoteRepository, ttl time.Duration) *CachedQuoteRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedQuoteRepository{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// GetByEvent serves one event's quotes from cache when possible
func (r *CachedQuoteRepository) GetByEvent(ctx context.Context, eventID string) ([]models.OddsQuote, error) {
	if cached, ok := r.cache.Get(eventID); ok {
		return cached.([]models.OddsQuote), nil
	}

	quotes, err := r.inner.GetByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(eventID, quotes)
	return quotes, nil
}

// GetByEvents serves cached events and fetches only the misses
func (r *CachedQuoteRepository) GetByEvents(ctx context.Context, eventIDs []string) (map[string][]models.OddsQuote, error) {
	out := make(map[string][]models.OddsQuote, len(eventIDs))
	var misses []string
	for _, id := range eventIDs {
		if cached, ok := r.cache.Get(id); ok {
			out[id] = cached.([]models.OddsQuote)
		} else {
			misses = append(misses, id)
		}
	}
	if len(misses) == 0 {
		return out, nil
	}

	fetched, err := r.inner.GetByEvents(ctx, misses)
	if err != nil {
		return nil, err
	}
	for _, id := range misses {
		quotes := fetched[id]
		r.cache.SetDefault(id, quotes)
		out[id] = quotes
	}
	return out, nil
}

// InsertBatch passes through and drops cache entries for touched events
func (r *CachedQuoteRepository) InsertBatch(ctx context.Context, quotes []models.OddsQuote) error {
	if err := r.inner.InsertBatch(ctx, quotes); err != nil {
		return err
	}
	for _, q := range quotes {
		r.cache.Delete(q.EventID)
	}
	return nil
}
