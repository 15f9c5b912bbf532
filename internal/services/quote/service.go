// Package quote provides a market capitalisation source with provider fallback
package quote

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/bobmcallan/dojo/internal/clients/alphavantage"
	"github.com/bobmcallan/dojo/internal/clients/eodhd"
	"github.com/bobmcallan/dojo/internal/common"
	"github.com/bobmcallan/dojo/internal/interfaces"
)

// Provider names accepted by quote.provider
const (
	ProviderAlphaVantage = "alphavantage"
	ProviderEODHD        = "eodhd"
)

// Service implements QuoteSource with a primary provider and an optional fallback.
type Service struct {
	primary      interfaces.QuoteSource
	primaryName  string
	fallback     interfaces.QuoteSource
	fallbackName string
	logger       arbor.ILogger
}

// NewService creates a new quote service.
// fallback may be nil; failures of the primary are then returned as-is.
func NewService(primary interfaces.QuoteSource, primaryName string, fallback interfaces.QuoteSource, fallbackName string, logger arbor.ILogger) *Service {
	return &Service{
		primary:      primary,
		primaryName:  primaryName,
		fallback:     fallback,
		fallbackName: fallbackName,
		logger:       logger,
	}
}

// NewServiceFromConfig builds the provider named by quote.provider as primary.
// The other provider becomes the fallback when its API key is configured.
func NewServiceFromConfig(config *common.Config, logger arbor.ILogger) (*Service, error) {
	build := map[string]func() (interfaces.QuoteSource, error){
		ProviderAlphaVantage: func() (interfaces.QuoteSource, error) {
			return alphavantage.NewClientFromConfig(config.Clients.AlphaVantage, logger)
		},
		ProviderEODHD: func() (interfaces.QuoteSource, error) {
			return eodhd.NewClientFromConfig(config.Clients.EODHD, logger)
		},
	}
	keys := map[string]string{
		ProviderAlphaVantage: config.Clients.AlphaVantage.APIKey,
		ProviderEODHD:        config.Clients.EODHD.APIKey,
	}

	primaryName := config.Quote.Provider
	if primaryName == "" {
		primaryName = ProviderAlphaVantage
	}
	newPrimary, ok := build[primaryName]
	if !ok {
		return nil, fmt.Errorf("unknown quote provider %q", primaryName)
	}
	primary, err := newPrimary()
	if err != nil {
		return nil, err
	}

	fallbackName := ProviderEODHD
	if primaryName == ProviderEODHD {
		fallbackName = ProviderAlphaVantage
	}
	var fallback interfaces.QuoteSource
	if keys[fallbackName] != "" {
		if fallback, err = build[fallbackName](); err != nil {
			return nil, err
		}
	}

	return NewService(primary, primaryName, fallback, fallbackName, logger), nil
}

// MarketCap asks the primary provider, then the fallback when the primary fails.
// If both fail the primary's error is returned.
func (s *Service) MarketCap(ctx context.Context, ticker string) (int64, error) {
	mc, primaryErr := s.primary.MarketCap(ctx, ticker)
	if primaryErr == nil {
		return mc, nil
	}

	if s.fallback == nil || errors.Is(primaryErr, context.Canceled) || ctx.Err() != nil {
		return 0, primaryErr
	}

	s.logger.Info().
		Str("ticker", ticker).
		Str("primary", s.primaryName).
		Str("fallback", s.fallbackName).
		Err(primaryErr).
		Msg("Primary quote provider failed, attempting fallback")

	mc, fallbackErr := s.fallback.MarketCap(ctx, ticker)
	if fallbackErr != nil {
		s.logger.Warn().Err(fallbackErr).Str("ticker", ticker).Str("provider", s.fallbackName).Msg("Fallback quote provider failed")
		return 0, primaryErr
	}

	return mc, nil
}

// Ensure Service implements QuoteSource
var _ interfaces.QuoteSource = (*Service)(nil)
