// Package surrealdb implements the valuation document store on SurrealDB
package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	"github.com/ternarybob/arbor"

	"github.com/bobmcallan/dojo/internal/common"
	"github.com/bobmcallan/dojo/internal/interfaces"
)

// Tables and indexes defined on connect. SurrealDB v3 errors on querying non-existent tables.
var schema = []string{
	"DEFINE TABLE IF NOT EXISTS valuation SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS valuation_ticker_created ON valuation FIELDS ticker, created_at",
}

// Manager implements interfaces.StorageManager using SurrealDB.
type Manager struct {
	db     *surrealdb.DB
	logger arbor.ILogger

	valuationStore *ValuationStore
}

// NewManager creates a new StorageManager connected to SurrealDB.
// The connection is held until Close.
func NewManager(logger arbor.ILogger, config *common.Config) (*Manager, error) {
	ctx := context.Background()

	db, err := surrealdb.New(config.Storage.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Storage.Username,
		"pass": config.Storage.Password,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Storage.Namespace, config.Storage.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	for _, sql := range schema {
		if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
			db.Close(ctx)
			return nil, fmt.Errorf("failed to apply schema %q: %w", sql, err)
		}
	}

	m := &Manager{
		db:             db,
		logger:         logger,
		valuationStore: NewValuationStore(db, logger),
	}

	logger.Debug().
		Str("address", config.Storage.Address).
		Str("namespace", config.Storage.Namespace).
		Str("database", config.Storage.Database).
		Msg("SurrealDB storage manager initialized")

	return m, nil
}

func (m *Manager) ValuationStore() interfaces.ValuationStore {
	return m.valuationStore
}

func (m *Manager) Close() error {
	return m.db.Close(context.Background())
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
