package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NatLaw2/pickpulse-model/internal/models"
)

// fakeQuoteRepo counts calls so cache behavior is observable.
type fakeQuoteRepo struct {
	byEvent       map[string][]models.OddsQuote
	eventCalls    int
	eventsCalls   int
	insertedRows  int
}

func (f *fakeQuoteRepo) GetByEvent(_ context.Context, eventID string) ([]models.OddsQuote, error) {
	f.eventCalls++
	return f.byEvent[eventID], nil
}

func (f *fakeQuoteRepo) GetByEvents(_ context.Context, eventIDs []string) (map[string][]models.OddsQuote, error) {
	f.eventsCalls++
	out := make(map[string][]models.OddsQuote)
	for _, id := range eventIDs {
		out[id] = f.byEvent[id]
	}
	return out, nil
}

func (f *fakeQuoteRepo) InsertBatch(_ context.Context, quotes []models.OddsQuote) error {
	f.insertedRows += len(quotes)
	for _, q := range quotes {
		f.byEvent[q.EventID] = append(f.byEvent[q.EventID], q)
	}
	return nil
}

func newFake() *fakeQuoteRepo {
	return &fakeQuoteRepo{byEvent: map[string][]models.OddsQuote{
		"e1": {{EventID: "e1", Market: models.QuoteMarketMoneyline, OutcomeName: "Boston Celtics"}},
		"e2": {{EventID: "e2", Market: models.QuoteMarketMoneyline, OutcomeName: "Miami Heat"}},
	}}
}

func TestCachedGetByEvent(t *testing.T) {
	fake := newFake()
	repo := NewCachedQuoteRepository(fake, time.Minute)
	ctx := context.Background()

	first, err := repo.GetByEvent(ctx, "e1")
	require.NoError(t, err)
	second, err := repo.GetByEvent(ctx, "e1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, fake.eventCalls, "second read served from cache")
}

func TestCachedGetByEventsFetchesOnlyMisses(t *testing.T) {
	fake := newFake()
	repo := NewCachedQuoteRepository(fake, time.Minute)
	ctx := context.Background()

	_, err := repo.GetByEvent(ctx, "e1")
	require.NoError(t, err)

	out, err := repo.GetByEvents(ctx, []string{"e1", "e2"})
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, 1, fake.eventsCalls)

	// Everything cached now: no further inner calls.
	_, err = repo.GetByEvents(ctx, []string{"e1", "e2"})
	require.NoError(t, err)
	assert.Equal(t, 1, fake.eventsCalls)
}

func TestInsertBatchInvalidates(t *testing.T) {
	fake := newFake()
	repo := NewCachedQuoteRepository(fake, time.Minute)
	ctx := context.Background()

	before, err := repo.GetByEvent(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, before, 1)

	err = repo.InsertBatch(ctx, []models.OddsQuote{
		{EventID: "e1", Market: models.QuoteMarketMoneyline, OutcomeName: "Miami Heat"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fake.insertedRows)

	after, err := repo.GetByEvent(ctx, "e1")
	require.NoError(t, err)
	assert.Len(t, after, 2, "cache invalidated after write")
}
