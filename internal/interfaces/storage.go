package interfaces

import (
	"context"

	"github.com/bobmcallan/dojo/internal/models"
)

// ValuationStore persists valuation records keyed by ticker
type ValuationStore interface {
	// InsertValuation stores a new record; earlier records for the ticker are kept
	InsertValuation(ctx context.Context, record *models.ValuationRecord) error

	// FindLatestValuation returns the most recent record for a ticker, or an error
	// matching models.ErrNotFound when none exists
	FindLatestValuation(ctx context.Context, ticker string) (*models.ValuationRecord, error)

	// ListValuations returns every record for a ticker, newest first
	ListValuations(ctx context.Context, ticker string) ([]models.ValuationRecord, error)
}

// StorageManager owns the database connection and the stores built on it
type StorageManager interface {
	ValuationStore() ValuationStore
	Close() error
}
