package datasource

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/NatLaw2/pickpulse-model/internal/models"
)

const csvSourceName = "csv"

// CSVSource reads quote history from per-event CSV exports, one file per
// event id. Rows: market, outcome_name, price, point, captured_at,
// home_team, away_team. Price and point parse through decimal so exported
// strings like "-110.00" survive exactly.
type CSVSource struct {
	dir    string
	logger *logrus.Logger
}

// NewCSVSource creates a CSV-backed historical source
func NewCSVSource(dir string, logger *logrus.Logger) *CSVSource {
	if logger == nil {
		logger = logrus.New()
	}
	return &CSVSource{dir: dir, logger: logger}
}

// Name returns the provider name
func (s *CSVSource) Name() string {
	return csvSourceName
}

// FetchEventQuotes reads the event's CSV file into quote rows
func (s *CSVSource) FetchEventQuotes(ctx context.Context, eventID string) ([]models.OddsQuote, error) {
	path := filepath.Join(s.dir, eventID+".csv")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewSourceError(s.Name(), ErrCodeNotFound, path, ErrNotFound)
		}
		return nil, NewSourceError(s.Name(), ErrCodeServerError, "open "+path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 7

	var quotes []models.OddsQuote
	line := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, NewSourceError(s.Name(), ErrCodeInvalidData, fmt.Sprintf("%s line %d", path, line+1), err)
		}
		line++
		if line == 1 && record[0] == "market" {
			continue // header
		}

		quote, err := s.parseRow(eventID, record)
		if err != nil {
			return nil, NewSourceError(s.Name(), ErrCodeInvalidData, fmt.Sprintf("%s line %d", path, line), err)
		}
		quotes = append(quotes, quote)
	}

	s.logger.WithFields(logrus.Fields{
		"event_id": eventID,
		"rows":     len(quotes),
	}).Debug("Loaded quotes from CSV")

	return quotes, nil
}

func (s *CSVSource) parseRow(eventID string, record []string) (models.OddsQuote, error) {
	capturedAt, err := time.Parse(time.RFC3339, record[4])
	if err != nil {
		return models.OddsQuote{}, fmt.Errorf("bad captured_at %q: %w", record[4], err)
	}

	price, err := parseOptionalDecimal(record[2])
	if err != nil {
		return models.OddsQuote{}, fmt.Errorf("bad price %q: %w", record[2], err)
	}
	point, err := parseOptionalDecimal(record[3])
	if err != nil {
		return models.OddsQuote{}, fmt.Errorf("bad point %q: %w", record[3], err)
	}

	return models.OddsQuote{
		EventID:     eventID,
		Market:      models.QuoteMarket(record[0]),
		OutcomeName: record[1],
		Price:       price,
		Point:       point,
		CapturedAt:  capturedAt.UTC(),
		Source:      s.Name(),
		HomeTeam:    record[5],
		AwayTeam:    record[6],
	}, nil
}

func parseOptionalDecimal(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	v := d.InexactFloat64()
	return &v, nil
}
