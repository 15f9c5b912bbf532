package surrealdb

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/dojo/internal/common"
	tcommon "github.com/bobmcallan/dojo/tests/common"
)

// testConfig points at the shared SurrealDB container with a unique database
// per test. Subtest names contain "/", which SurrealDB rejects in database names.
func testConfig(t *testing.T) *common.Config {
	t.Helper()
	sc := tcommon.StartSurrealDB(t)

	cfg := common.NewDefaultConfig()
	cfg.Environment = "test"
	cfg.Storage.Address = sc.Address()
	cfg.Storage.Namespace = "dojo_test"
	cfg.Storage.Database = fmt.Sprintf("t_%s_%d", strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()), time.Now().UnixNano()%100000)
	return cfg
}

// testManager connects a Manager that is closed when the test ends
func testManager(t *testing.T) *Manager {
	t.Helper()
	mgr, err := NewManager(common.NewSilentLogger(), testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })
	return mgr
}
