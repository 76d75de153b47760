package datasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NatLaw2/pickpulse-model/internal/config"
	"github.com/NatLaw2/pickpulse-model/internal/models"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func testClient() *RateLimitedHTTPClient {
	cfg := DefaultHTTPClientConfig()
	cfg.RateLimit = 1000
	cfg.MaxRetries = 1
	return NewRateLimitedHTTPClient(cfg, quietLogger())
}

const snapshotJSON = `[
  {
    "timestamp": "2026-01-10T18:00:00Z",
    "home_team": "Boston Celtics",
    "away_team": "Miami Heat",
    "markets": [
      {"key": "h2h", "outcomes": [
        {"name": "Boston Celtics", "price": -150},
        {"name": "Miami Heat", "price": 130}
      ]},
      {"key": "spreads", "outcomes": [
        {"name": "Boston Celtics", "price": -110, "point": -3.5},
        {"name": "Miami Heat", "price": -110, "point": 3.5}
      ]},
      {"key": "totals", "outcomes": [{"name": "Over", "price": -110, "point": 224.5}]}
    ]
  }
]`

func TestOddsAPISourceFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/sports/basketball_nba/events/e1/odds-history")
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		w.Write([]byte(snapshotJSON))
	}))
	defer server.Close()

	source := NewOddsAPISource(server.URL, "test-key", "", testClient(), quietLogger())
	quotes, err := source.FetchEventQuotes(context.Background(), "e1")
	require.NoError(t, err)

	// Moneyline and spread rows survive; unrecognized markets are dropped.
	require.Len(t, quotes, 4)
	assert.Equal(t, models.QuoteMarketMoneyline, quotes[0].Market)
	assert.Equal(t, "Boston Celtics", quotes[0].HomeTeam)
	require.NotNil(t, quotes[0].Price)
	assert.Equal(t, -150.0, *quotes[0].Price)
	assert.Equal(t, oddsAPISourceName, quotes[0].Source)

	require.NotNil(t, quotes[2].Point)
	assert.Equal(t, -3.5, *quotes[2].Point)
}

func TestOddsAPISourceNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	source := NewOddsAPISource(server.URL, "test-key", "", testClient(), quietLogger())
	_, err := source.FetchEventQuotes(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCSVSourceFetch(t *testing.T) {
	dir := t.TempDir()
	content := "market,outcome_name,price,point,captured_at,home_team,away_team\n" +
		"h2h,Boston Celtics,-150,,2026-01-10T18:00:00Z,Boston Celtics,Miami Heat\n" +
		"h2h,Miami Heat,130,,2026-01-10T18:00:00Z,Boston Celtics,Miami Heat\n" +
		"spreads,Boston Celtics,-110.00,-3.5,2026-01-10T18:00:00Z,Boston Celtics,Miami Heat\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "e1.csv"), []byte(content), 0o644))

	source := NewCSVSource(dir, quietLogger())
	quotes, err := source.FetchEventQuotes(context.Background(), "e1")
	require.NoError(t, err)

	require.Len(t, quotes, 3)
	require.NotNil(t, quotes[0].Price)
	assert.Equal(t, -150.0, *quotes[0].Price)
	assert.Nil(t, quotes[0].Point)
	require.NotNil(t, quotes[2].Point)
	assert.Equal(t, -3.5, *quotes[2].Point)
	assert.Equal(t, -110.0, *quotes[2].Price)
}

func TestCSVSourceMissingFile(t *testing.T) {
	source := NewCSVSource(t.TempDir(), quietLogger())
	_, err := source.FetchEventQuotes(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCSVSourceBadRow(t *testing.T) {
	dir := t.TempDir()
	content := "h2h,Boston Celtics,not-a-price,,2026-01-10T18:00:00Z,Boston Celtics,Miami Heat\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "e1.csv"), []byte(content), 0o644))

	source := NewCSVSource(dir, quietLogger())
	_, err := source.FetchEventQuotes(context.Background(), "e1")
	assert.Error(t, err)
}

func TestNewSourceFactory(t *testing.T) {
	none, err := NewSource(&config.DataSourceConfig{Provider: "none"}, quietLogger())
	require.NoError(t, err)
	assert.Nil(t, none)

	csvSrc, err := NewSource(&config.DataSourceConfig{Provider: "csv", CSVDir: t.TempDir()}, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "csv", csvSrc.Name())

	api, err := NewSource(&config.DataSourceConfig{
		Provider: "odds_api", BaseURL: "https://api.example.com", APIKey: "k",
	}, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "odds_api", api.Name())

	_, err = NewSource(&config.DataSourceConfig{Provider: "grpc"}, quietLogger())
	assert.Error(t, err)
}
