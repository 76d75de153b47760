package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/NatLaw2/pickpulse-model/internal/models"
)

const oddsAPISourceName = "odds_api"

// OddsAPISource fetches historical odds snapshots from a REST provider.
type OddsAPISource struct {
	baseURL string
	apiKey  string
	sport   string
	client  *RateLimitedHTTPClient
	logger  *logrus.Logger
}

// NewOddsAPISource creates a historical odds source backed by the REST API.
func NewOddsAPISource(baseURL, apiKey, sport string, client *RateLimitedHTTPClient, logger *logrus.Logger) *OddsAPISource {
	if logger == nil {
		logger = logrus.New()
	}
	if sport == "" {
		sport = "basketball_nba"
	}
	return &OddsAPISource{
		baseURL: baseURL,
		apiKey:  apiKey,
		sport:   sport,
		client:  client,
		logger:  logger,
	}
}

// Name returns the provider name
func (s *OddsAPISource) Name() string {
	return oddsAPISourceName
}

// snapshotPayload mirrors the provider's per-capture JSON shape.
type snapshotPayload struct {
	Timestamp time.Time `json:"timestamp"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	Markets   []struct {
		Key      string `json:"key"`
		Outcomes []struct {
			Name  string   `json:"name"`
			Price *float64 `json:"price"`
			Point *float64 `json:"point"`
		} `json:"outcomes"`
	} `json:"markets"`
}

// FetchEventQuotes retrieves every captured snapshot for an event and
// flattens it into quote rows.
func (s *OddsAPISource) FetchEventQuotes(ctx context.Context, eventID string) ([]models.OddsQuote, error) {
	endpoint := fmt.Sprintf("%s/sports/%s/events/%s/odds-history?%s",
		s.baseURL, url.PathEscape(s.sport), url.PathEscape(eventID),
		url.Values{
			"apiKey":     {s.apiKey},
			"markets":    {"h2h,spreads"},
			"oddsFormat": {"american"},
		}.Encode())

	resp, err := s.client.Get(ctx, endpoint)
	if err != nil {
		return nil, NewSourceError(s.Name(), ErrCodeServerError, "request failed", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, NewSourceError(s.Name(), ErrCodeNotFound, "event "+eventID, ErrNotFound)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, NewSourceError(s.Name(), ErrCodeAuthFailed, "check api key", nil)
	case http.StatusTooManyRequests:
		return nil, NewSourceError(s.Name(), ErrCodeRateLimitExceeded, "provider quota exhausted", nil)
	default:
		return nil, NewSourceError(s.Name(), ErrCodeServerError, fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	var snapshots []snapshotPayload
	if err := json.NewDecoder(resp.Body).Decode(&snapshots); err != nil {
		return nil, NewSourceError(s.Name(), ErrCodeInvalidData, "decode response", err)
	}

	var quotes []models.OddsQuote
	for _, snap := range snapshots {
		for _, market := range snap.Markets {
			marketKey := models.QuoteMarket(market.Key)
			if marketKey != models.QuoteMarketMoneyline && marketKey != models.QuoteMarketSpread {
				continue
			}
			for _, outcome := range market.Outcomes {
				quotes = append(quotes, models.OddsQuote{
					EventID:     eventID,
					Market:      marketKey,
					OutcomeName: outcome.Name,
					Price:       outcome.Price,
					Point:       outcome.Point,
					CapturedAt:  snap.Timestamp,
					Source:      s.Name(),
					HomeTeam:    snap.HomeTeam,
					AwayTeam:    snap.AwayTeam,
				})
			}
		}
	}

	s.logger.WithFields(logrus.Fields{
		"event_id": eventID,
		"rows":     len(quotes),
	}).Debug("Fetched historical quotes")

	return quotes, nil
}
