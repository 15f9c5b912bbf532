package resolver

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/dojo/internal/common"
	"github.com/bobmcallan/dojo/internal/models"
)

type mockDirectory struct {
	entities []models.Entity
	err      error
	calls    int32
}

func (m *mockDirectory) CompanyTickers(_ context.Context) ([]models.Entity, error) {
	atomic.AddInt32(&m.calls, 1)
	return m.entities, m.err
}

func newDirectory() *mockDirectory {
	return &mockDirectory{entities: []models.Entity{
		{Ticker: "AAPL", CIK: "0000320193", Title: "Apple Inc."},
		{Ticker: "MSFT", CIK: "0000789019", Title: "MICROSOFT CORP"},
		{Ticker: "BRK-B", CIK: "0001067983", Title: "BERKSHIRE HATHAWAY INC"},
		{Ticker: "AAPL", CIK: "0000000001", Title: "Duplicate listing"},
	}}
}

func TestResolve_CaseInsensitive(t *testing.T) {
	svc := NewService(newDirectory(), common.NewSilentLogger())
	ctx := context.Background()

	upper, err := svc.Resolve(ctx, "AAPL")
	require.NoError(t, err)
	lower, err := svc.Resolve(ctx, "aapl")
	require.NoError(t, err)

	assert.Equal(t, upper, lower)
	assert.Equal(t, "0000320193", upper, "first listing wins")
}

func TestResolve_UnknownYieldsSentinel(t *testing.T) {
	svc := NewService(newDirectory(), common.NewSilentLogger())

	cik, err := svc.Resolve(context.Background(), "NOSUCHTICKER")
	require.NoError(t, err)
	assert.Equal(t, models.SentinelCIK, cik)
}

func TestLookup_UnknownIsResolutionError(t *testing.T) {
	svc := NewService(newDirectory(), common.NewSilentLogger())

	_, err := svc.Lookup(context.Background(), "nosuch")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))

	var rerr *models.ResolutionError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "NOSUCH", rerr.Ticker)
}

func TestLookup_ReturnsEntity(t *testing.T) {
	svc := NewService(newDirectory(), common.NewSilentLogger())

	e, err := svc.Lookup(context.Background(), " brk-b ")
	require.NoError(t, err)
	assert.Equal(t, "BERKSHIRE HATHAWAY INC", e.Title)
	assert.Equal(t, "0001067983", e.CIK)
}

func TestDirectoryLoadedOnce(t *testing.T) {
	dir := newDirectory()
	svc := NewService(dir, common.NewSilentLogger())
	ctx := context.Background()

	for _, ticker := range []string{"AAPL", "MSFT", "XYZ", "msft"} {
		_, err := svc.Resolve(ctx, ticker)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&dir.calls))
}

func TestResolve_DirectoryFailure(t *testing.T) {
	dir := &mockDirectory{err: errors.New("connection refused")}
	svc := NewService(dir, common.NewSilentLogger())

	_, err := svc.Resolve(context.Background(), "AAPL")
	require.Error(t, err)
	assert.False(t, errors.Is(err, models.ErrNotFound))

	// failures are retried on the next call
	dir.err = nil
	dir.entities = newDirectory().entities
	cik, err := svc.Resolve(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "0000320193", cik)
}
