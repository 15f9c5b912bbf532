// Package resolver maps ticker symbols to SEC entity identifiers
package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/bobmcallan/dojo/internal/interfaces"
	"github.com/bobmcallan/dojo/internal/models"
)

// Service resolves tickers against the SEC ticker directory.
// The directory is downloaded on first use and kept for the life of the Service.
type Service struct {
	directory interfaces.TickerDirectory
	logger    arbor.ILogger

	mu       sync.Mutex
	entities map[string]models.Entity
}

// NewService creates a new resolver
func NewService(directory interfaces.TickerDirectory, logger arbor.ILogger) *Service {
	return &Service{
		directory: directory,
		logger:    logger,
	}
}

// load fetches the directory once. A failed download is not cached.
func (s *Service) load(ctx context.Context) (map[string]models.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entities != nil {
		return s.entities, nil
	}

	list, err := s.directory.CompanyTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ticker directory: %w", err)
	}

	entities := make(map[string]models.Entity, len(list))
	for _, e := range list {
		key := models.NormalizeTicker(e.Ticker)
		if _, dup := entities[key]; dup {
			continue // first listing wins
		}
		entities[key] = e
	}
	s.entities = entities

	s.logger.Debug().Int("tickers", len(entities)).Msg("Ticker directory loaded")
	return entities, nil
}

// Lookup returns the directory entry for ticker, matched case-insensitively.
// A miss is a *models.ResolutionError.
func (s *Service) Lookup(ctx context.Context, ticker string) (*models.Entity, error) {
	entities, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	key := models.NormalizeTicker(ticker)
	e, ok := entities[key]
	if !ok {
		return nil, &models.ResolutionError{Ticker: key}
	}
	return &e, nil
}

// Resolve returns the 10-digit CIK for ticker. An unknown ticker is not an
// error: it yields models.SentinelCIK and a warning. The error is reserved
// for directory download failures.
func (s *Service) Resolve(ctx context.Context, ticker string) (string, error) {
	e, err := s.Lookup(ctx, ticker)
	if err == nil {
		return e.CIK, nil
	}
	var rerr *models.ResolutionError
	if errors.As(err, &rerr) {
		s.logger.Warn().Str("ticker", rerr.Ticker).Msg("Ticker not found in company directory, using sentinel CIK")
		return models.SentinelCIK, nil
	}
	return "", err
}
