package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
	"github.com/ternarybob/arbor"

	"github.com/bobmcallan/dojo/internal/interfaces"
	"github.com/bobmcallan/dojo/internal/models"
)

// valuationSelectFields lists the stored fields, leaving out the SurrealDB record id
const valuationSelectFields = `record_id, ticker, cik_str, title, valuation, financials, ratios, created_at`

// ValuationStore implements interfaces.ValuationStore using SurrealDB.
type ValuationStore struct {
	db     *surrealdb.DB
	logger arbor.ILogger
}

// NewValuationStore creates a new ValuationStore.
func NewValuationStore(db *surrealdb.DB, logger arbor.ILogger) *ValuationStore {
	return &ValuationStore{db: db, logger: logger}
}

// InsertValuation stores a record. Records are append-only: each snapshot is
// kept and FindLatestValuation picks the newest by created_at.
func (s *ValuationStore) InsertValuation(ctx context.Context, rec *models.ValuationRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.Ticker = models.NormalizeTicker(rec.Ticker)

	sql := `CREATE $rid SET
		record_id = $record_id, ticker = $ticker, cik_str = $cik_str, title = $title,
		valuation = $valuation, financials = $financials, ratios = $ratios,
		created_at = $created_at`
	vars := map[string]any{
		"rid":        surrealmodels.NewRecordID("valuation", rec.ID),
		"record_id":  rec.ID,
		"ticker":     rec.Ticker,
		"cik_str":    rec.CIK,
		"title":      rec.Title,
		"valuation":  rec.Valuation,
		"financials": rec.Financials,
		"ratios":     rec.Ratios,
		"created_at": rec.CreatedAt,
	}

	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to insert valuation for %s: %w", rec.Ticker, err)
	}

	s.logger.Debug().Str("ticker", rec.Ticker).Str("record_id", rec.ID).Msg("Valuation record inserted")
	return nil
}

// FindLatestValuation returns the newest record for ticker.
// A ticker with no records yields an error matching models.ErrNotFound.
func (s *ValuationStore) FindLatestValuation(ctx context.Context, ticker string) (*models.ValuationRecord, error) {
	ticker = models.NormalizeTicker(ticker)

	sql := "SELECT " + valuationSelectFields + " FROM valuation WHERE ticker = $ticker ORDER BY created_at DESC LIMIT 1"
	vars := map[string]any{"ticker": ticker}

	results, err := surrealdb.Query[[]models.ValuationRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to query valuation for %s: %w", ticker, err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("no stored valuation for %s: %w", ticker, models.ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

// ListValuations returns every record for ticker, newest first
func (s *ValuationStore) ListValuations(ctx context.Context, ticker string) ([]models.ValuationRecord, error) {
	ticker = models.NormalizeTicker(ticker)

	sql := "SELECT " + valuationSelectFields + " FROM valuation WHERE ticker = $ticker ORDER BY created_at DESC"
	vars := map[string]any{"ticker": ticker}

	results, err := surrealdb.Query[[]models.ValuationRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list valuations for %s: %w", ticker, err)
	}
	if results == nil || len(*results) == 0 {
		return nil, nil
	}
	return (*results)[0].Result, nil
}

// Compile-time check
var _ interfaces.ValuationStore = (*ValuationStore)(nil)
