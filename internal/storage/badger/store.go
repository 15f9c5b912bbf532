// Package badger provides an embedded BadgerHold valuation store for running without a database server.
package badger

import (
	"fmt"
	"os"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/dojo/internal/interfaces"
)

// Store wraps a BadgerHold database and implements interfaces.StorageManager.
type Store struct {
	db         *badgerhold.Store
	logger     arbor.ILogger
	valuations *ValuationStore
}

// NewStore opens (or creates) a BadgerHold database in the given directory.
func NewStore(logger arbor.ILogger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create badger directory %s: %w", path, err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil // Disable default badger logger

	db, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Debug().Str("path", path).Msg("BadgerHold store opened")

	s := &Store{db: db, logger: logger}
	s.valuations = NewValuationStore(db, logger)
	return s, nil
}

// ValuationStore returns the valuation record store.
func (s *Store) ValuationStore() interfaces.ValuationStore {
	return s.valuations
}

// Close closes the BadgerHold database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

var _ interfaces.StorageManager = (*Store)(nil)
