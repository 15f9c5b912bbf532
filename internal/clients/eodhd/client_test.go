package eodhd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/dojo/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient("test-key", WithBaseURL(srv.URL), WithRateLimit(1000))
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)
}

func TestMarketCap(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fundamentals/AAPL.US", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_token"))
		assert.Equal(t, "json", r.URL.Query().Get("fmt"))
		w.Write([]byte(`{"General": {"Code": "AAPL", "Name": "Apple Inc"}, "Highlights": {"MarketCapitalization": 2712345678912}}`))
	})

	mc, err := client.MarketCap(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Equal(t, int64(2712345678912), mc)
}

func TestMarketCap_StringValue(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fundamentals/VOD.LSE", r.URL.Path)
		w.Write([]byte(`{"Highlights": {"MarketCapitalization": "19500000000"}}`))
	})

	mc, err := client.MarketCap(context.Background(), "VOD.LSE")
	require.NoError(t, err)
	assert.Equal(t, int64(19500000000), mc)
}

func TestMarketCap_MissingIsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Highlights": {"MarketCapitalization": null}}`))
	})

	_, err := client.MarketCap(context.Background(), "XYZ")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestMarketCap_404IsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.MarketCap(context.Background(), "XYZ")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestMarketCap_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("invalid api token"))
	})

	_, err := client.MarketCap(context.Background(), "AAPL")
	require.Error(t, err)
	assert.False(t, errors.Is(err, models.ErrNotFound))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "/fundamentals/AAPL.US", apiErr.Endpoint)
}
