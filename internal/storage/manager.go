// Package storage selects the valuation store backend from configuration.
package storage

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/bobmcallan/dojo/internal/common"
	"github.com/bobmcallan/dojo/internal/interfaces"
	"github.com/bobmcallan/dojo/internal/storage/badger"
	"github.com/bobmcallan/dojo/internal/storage/surrealdb"
)

// NewStorageManager opens the configured backend: "surrealdb" (default) or
// "badger" for an embedded store under storage.path.
func NewStorageManager(logger arbor.ILogger, config *common.Config) (interfaces.StorageManager, error) {
	switch config.Storage.Backend {
	case common.StorageSurrealDB, "":
		return surrealdb.NewManager(logger, config)
	case common.StorageBadger:
		return badger.NewStore(logger, config.Storage.Path)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: %s, %s)",
			config.Storage.Backend, common.StorageSurrealDB, common.StorageBadger)
	}
}
