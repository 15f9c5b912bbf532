package interfaces

import (
	"context"

	"github.com/bobmcallan/dojo/internal/models"
)

// EntityResolver maps tickers to directory entries
type EntityResolver interface {
	// Lookup matches ticker case-insensitively; a miss is a *models.ResolutionError
	Lookup(ctx context.Context, ticker string) (*models.Entity, error)

	// Resolve returns the entity's CIK, or models.SentinelCIK for an unknown ticker
	Resolve(ctx context.Context, ticker string) (string, error)
}

// ValuationService runs the normalization and valuation pipeline
type ValuationService interface {
	// Valuate fetches, normalizes, merges and values the configured accounts for one ticker
	Valuate(ctx context.Context, ticker string) (*models.ValuationReport, error)

	// Save values a ticker and persists the resulting record
	Save(ctx context.Context, ticker string) (*models.ValuationRecord, error)

	// CheckOpportunity compares the latest stored valuation with the live market capitalisation
	CheckOpportunity(ctx context.Context, ticker string) (*models.Verdict, error)

	// Compare builds one account across several tickers, one column per ticker
	Compare(ctx context.Context, tickers []string, account string, opts CompareOptions) (*models.Comparison, error)
}

// CompareOptions configures Compare
type CompareOptions struct {
	Label   string // display name for the account
	MinYear int    // rows before this year are dropped; 0 keeps all
}
