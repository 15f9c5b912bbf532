package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/dojo/internal/common"
	"github.com/bobmcallan/dojo/internal/interfaces"
	"github.com/bobmcallan/dojo/internal/models"
	"github.com/bobmcallan/dojo/internal/services/frames"
	"github.com/bobmcallan/dojo/internal/services/pipeline"
)

type mockResolver struct{}

func (mockResolver) Lookup(_ context.Context, ticker string) (*models.Entity, error) {
	if models.NormalizeTicker(ticker) == "META" {
		return &models.Entity{Ticker: "META", CIK: "0001326801", Title: "Meta Platforms, Inc."}, nil
	}
	return nil, &models.ResolutionError{Ticker: models.NormalizeTicker(ticker)}
}

func (r mockResolver) Resolve(ctx context.Context, ticker string) (string, error) {
	e, err := r.Lookup(ctx, ticker)
	if err != nil {
		return models.SentinelCIK, nil
	}
	return e.CIK, nil
}

type mockValuations struct {
	valuateErr  error
	saveErr     error
	checkErr    error
	compareArgs []string
	compareOpts interfaces.CompareOptions
}

func (m *mockValuations) Valuate(_ context.Context, ticker string) (*models.ValuationReport, error) {
	if m.valuateErr != nil {
		return nil, m.valuateErr
	}
	table := models.NewFinancialTable()
	table.Set(2023, "CashFlows", 71_113_000_000)
	return &models.ValuationReport{
		Entity:            models.Entity{Ticker: models.NormalizeTicker(ticker), CIK: "0001326801"},
		Table:             table,
		SnapshotValuation: 1_000_000,
	}, nil
}

func (m *mockValuations) Save(_ context.Context, ticker string) (*models.ValuationRecord, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	return &models.ValuationRecord{ID: "rec-1", Ticker: models.NormalizeTicker(ticker), Valuation: 1_000_000}, nil
}

func (m *mockValuations) CheckOpportunity(_ context.Context, ticker string) (*models.Verdict, error) {
	if m.checkErr != nil {
		return nil, m.checkErr
	}
	return &models.Verdict{Ticker: ticker, MarketCap: 5, Valuation: 10, BuyingOpportunity: true}, nil
}

func (m *mockValuations) Compare(_ context.Context, tickers []string, account string, opts interfaces.CompareOptions) (*models.Comparison, error) {
	m.compareArgs = append([]string{account}, tickers...)
	m.compareOpts = opts
	return &models.Comparison{Account: account, Label: opts.Label, Table: models.NewFinancialTable()}, nil
}

type mockRanker struct {
	req frames.Request
	err error
}

func (m *mockRanker) Rank(_ context.Context, req frames.Request) ([]models.RatioRow, error) {
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	return []models.RatioRow{{EntityName: "Apple Inc.", Ratio: 0.34}}, nil
}

type mockStore struct {
	records []models.ValuationRecord
}

func (m *mockStore) InsertValuation(context.Context, *models.ValuationRecord) error { return nil }

func (m *mockStore) FindLatestValuation(context.Context, string) (*models.ValuationRecord, error) {
	return nil, models.ErrNotFound
}

func (m *mockStore) ListValuations(_ context.Context, ticker string) ([]models.ValuationRecord, error) {
	var out []models.ValuationRecord
	for _, r := range m.records {
		if r.Ticker == ticker {
			out = append(out, r)
		}
	}
	return out, nil
}

func newTestServer(t *testing.T, svc Services) http.Handler {
	t.Helper()
	if svc.Resolver == nil {
		svc.Resolver = mockResolver{}
	}
	if svc.Valuations == nil {
		svc.Valuations = &mockValuations{}
	}
	if svc.Ranker == nil {
		svc.Ranker = &mockRanker{}
	}
	return New(common.ServerConfig{Host: "localhost", Port: 0}, svc, common.NewSilentLogger()).Handler()
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealthAndVersion(t *testing.T) {
	h := newTestServer(t, Services{})

	rec := do(t, h, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))

	rec = do(t, h, http.MethodGet, "/api/version")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), common.GetVersion())

	rec = do(t, h, http.MethodPost, "/api/health")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
}

func TestCorrelationIDEchoed(t *testing.T) {
	h := newTestServer(t, Services{})
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc123", rec.Header().Get("X-Correlation-ID"))
}

func TestResolve(t *testing.T) {
	h := newTestServer(t, Services{})

	rec := do(t, h, http.MethodGet, "/api/resolve/meta")
	require.Equal(t, http.StatusOK, rec.Code)
	var entity models.Entity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entity))
	assert.Equal(t, "0001326801", entity.CIK)

	rec = do(t, h, http.MethodGet, "/api/resolve/NOSUCH")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Code)

	rec = do(t, h, http.MethodGet, "/api/resolve/")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValuation(t *testing.T) {
	h := newTestServer(t, Services{})

	rec := do(t, h, http.MethodGet, "/api/valuations/META")
	require.Equal(t, http.StatusOK, rec.Code)
	var report models.ValuationReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, int64(1_000_000), report.SnapshotValuation)
	v, ok := report.Table.Value(2023, "CashFlows")
	require.True(t, ok)
	assert.Equal(t, int64(71_113_000_000), v)

	rec = do(t, h, http.MethodPost, "/api/valuations/meta")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"record_id":"rec-1"`)

	rec = do(t, h, http.MethodGet, "/api/valuations/META/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValuation_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{&models.ResolutionError{Ticker: "X"}, http.StatusNotFound, "not_found"},
		{fmt.Errorf("valuate X: %w", &models.MergeError{Tables: 8}), http.StatusUnprocessableEntity, "no_data"},
		{&models.ValuationError{Formula: "full", Missing: []string{"LongTermDebt"}}, http.StatusUnprocessableEntity, "missing_account"},
		{pipeline.ErrNoStore, http.StatusServiceUnavailable, "not_configured"},
		{models.NewTransportError("1", "Assets", errors.New("reset")), http.StatusBadGateway, "upstream"},
		{context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			h := newTestServer(t, Services{Valuations: &mockValuations{valuateErr: tc.err}})
			rec := do(t, h, http.MethodGet, "/api/valuations/X")
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, decodeError(t, rec).Code)
		})
	}
}

func TestHistory(t *testing.T) {
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	store := &mockStore{records: []models.ValuationRecord{{ID: "a", Ticker: "META", Valuation: 7, CreatedAt: at}}}
	h := newTestServer(t, Services{Store: store})

	rec := do(t, h, http.MethodGet, "/api/valuations/meta/history")
	require.Equal(t, http.StatusOK, rec.Code)
	var records []models.ValuationRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].ID)

	rec = do(t, h, http.MethodGet, "/api/valuations/AAPL/history")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHistory_NoStore(t *testing.T) {
	h := newTestServer(t, Services{})
	rec := do(t, h, http.MethodGet, "/api/valuations/META/history")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCheck(t *testing.T) {
	h := newTestServer(t, Services{})
	rec := do(t, h, http.MethodGet, "/api/check/META")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"buying_opportunity":true`)

	h = newTestServer(t, Services{Valuations: &mockValuations{checkErr: pipeline.ErrNoQuotes}})
	rec = do(t, h, http.MethodGet, "/api/check/META")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCompare(t *testing.T) {
	vals := &mockValuations{}
	h := newTestServer(t, Services{Valuations: vals})

	rec := do(t, h, http.MethodGet, "/api/compare?account=Revenues&tickers=AAPL,%20MSFT,,&as=revenue&min_year=2016")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Revenues", "AAPL", "MSFT"}, vals.compareArgs)
	assert.Equal(t, interfaces.CompareOptions{Label: "revenue", MinYear: 2016}, vals.compareOpts)

	rec = do(t, h, http.MethodGet, "/api/compare?account=Revenues")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/compare?account=Revenues&tickers=AAPL&min_year=soon")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRank(t *testing.T) {
	ranker := &mockRanker{}
	h := newTestServer(t, Services{Ranker: ranker})

	rec := do(t, h, http.MethodGet, "/api/rank?num=OperatingIncomeLoss&num_period=CY2023&den=Assets&den_period=CY2023Q4I")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, frames.Request{
		NumeratorAccount:   "OperatingIncomeLoss",
		NumeratorPeriod:    "CY2023",
		DenominatorAccount: "Assets",
		DenominatorPeriod:  "CY2023Q4I",
		Limit:              20,
	}, ranker.req)
	assert.Contains(t, rec.Body.String(), "Apple Inc.")

	rec = do(t, h, http.MethodGet, "/api/rank?num=OperatingIncomeLoss&num_period=CY2023")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPathParam(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/valuations/META/history", nil)
	assert.Equal(t, "META", PathParam(r, "/api/valuations/", "/history"))
	assert.Equal(t, "META", PathParam(r, "/api/valuations/", ""))
	assert.Equal(t, "", PathParam(r, "/api/check/", ""))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "MSFT"}, splitList(" AAPL ,MSFT,, "))
	assert.Nil(t, splitList(""))
}
