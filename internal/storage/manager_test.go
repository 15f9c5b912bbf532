package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/dojo/internal/common"
)

func TestNewStorageManager_Badger(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Storage.Backend = common.StorageBadger
	cfg.Storage.Path = filepath.Join(t.TempDir(), "dojo")

	m, err := NewStorageManager(common.NewSilentLogger(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, m.ValuationStore())
	assert.NoError(t, m.Close())
}

func TestNewStorageManager_UnknownBackend(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Storage.Backend = "sqlite"

	_, err := NewStorageManager(common.NewSilentLogger(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage backend: sqlite")
}
