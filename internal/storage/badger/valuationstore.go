package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/dojo/internal/interfaces"
	"github.com/bobmcallan/dojo/internal/models"
)

// ValuationStore keeps valuation records keyed by record ID
type ValuationStore struct {
	db     *badgerhold.Store
	logger arbor.ILogger
}

// NewValuationStore creates a ValuationStore on an open database
func NewValuationStore(db *badgerhold.Store, logger arbor.ILogger) *ValuationStore {
	return &ValuationStore{db: db, logger: logger}
}

func (s *ValuationStore) InsertValuation(_ context.Context, rec *models.ValuationRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.Ticker = models.NormalizeTicker(rec.Ticker)

	if err := s.db.Insert(rec.ID, rec); err != nil {
		return fmt.Errorf("failed to insert valuation for %s: %w", rec.Ticker, err)
	}
	s.logger.Debug().Str("ticker", rec.Ticker).Str("record_id", rec.ID).Msg("Valuation inserted")
	return nil
}

func (s *ValuationStore) FindLatestValuation(ctx context.Context, ticker string) (*models.ValuationRecord, error) {
	records, err := s.ListValuations(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no valuation stored for %s: %w", models.NormalizeTicker(ticker), models.ErrNotFound)
	}
	return &records[0], nil
}

func (s *ValuationStore) ListValuations(_ context.Context, ticker string) ([]models.ValuationRecord, error) {
	ticker = models.NormalizeTicker(ticker)

	var records []models.ValuationRecord
	err := s.db.Find(&records, badgerhold.Where("Ticker").Eq(ticker))
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return nil, fmt.Errorf("failed to list valuations for %s: %w", ticker, err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

var _ interfaces.ValuationStore = (*ValuationStore)(nil)
