package repository

import (
	"fmt"
	"time"

	"github.com/NatLaw2/pickpulse-model/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Picks  PickRepository
	Quotes QuoteRepository
	Scores ScoreRepository
}

// NewRepositories creates all repository implementations. Quote reads go
// through a TTL cache since the auditor revisits the same events often.
func NewRepositories(db *database.DB, quoteCacheTTL time.Duration) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Picks:  NewPostgresPickRepository(db),
		Quotes: NewCachedQuoteRepository(NewPostgresQuoteRepository(db), quoteCacheTTL),
		Scores: NewPostgresScoreRepository(db),
	}, nil
}
