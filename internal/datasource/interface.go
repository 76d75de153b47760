// Package datasource fetches historical odds-quote rows from external
// providers to backfill gaps in the store's snapshot history.
package datasource

import (
	"context"
	"errors"

	"github.com/NatLaw2/pickpulse-model/internal/models"
)

// HistoricalOddsSource fetches quote history for events the store is
// missing. Implementations normalize provider payloads into OddsQuote rows.
type HistoricalOddsSource interface {
	// FetchEventQuotes retrieves all available quote rows for one event,
	// in capture order.
	FetchEventQuotes(ctx context.Context, eventID string) ([]models.OddsQuote, error)

	// Name returns the provider name recorded on each quote's Source field.
	Name() string
}

// SourceError wraps a provider failure with its source and error code.
type SourceError struct {
	Source  string
	Code    string
	Message string
	Err     error
}

func (e SourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e SourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrCodeAuthFailed        = "authentication_failed"
	ErrCodeNotFound          = "not_found"
	ErrCodeInvalidData       = "invalid_data"
	ErrCodeServerError       = "server_error"
)

var (
	ErrNotFound    = errors.New("event not found at provider")
	ErrInvalidData = errors.New("invalid provider data")
)

// NewSourceError creates a new source error
func NewSourceError(source, code, message string, err error) SourceError {
	return SourceError{Source: source, Code: code, Message: message, Err: err}
}
