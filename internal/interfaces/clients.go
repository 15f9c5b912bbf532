// Package interfaces defines service contracts for Dojo
package interfaces

import (
	"context"

	"github.com/bobmcallan/dojo/internal/models"
)

// TickerDirectory lists every (ticker, CIK, title) triple known to the filer directory
type TickerDirectory interface {
	CompanyTickers(ctx context.Context) ([]models.Entity, error)
}

// DisclosureSource returns the raw USD disclosure history of one account.
// Failures are *models.FetchError so callers can tell an absent account from a transport failure.
type DisclosureSource interface {
	FetchAccount(ctx context.Context, cik, account string) ([]models.DisclosurePoint, error)
}

// SessionSource is a DisclosureSource whose downloads can be shared across
// the fetches of one pipeline run. A session must not outlive the run.
type SessionSource interface {
	DisclosureSource
	Session() DisclosureSource
}

// FrameSource returns one account for one calendar period across all filers
type FrameSource interface {
	Frame(ctx context.Context, account, period string) ([]models.FrameFact, error)
}

// QuoteSource returns a current market capitalisation for a ticker
type QuoteSource interface {
	MarketCap(ctx context.Context, ticker string) (int64, error)
}
