// Package alphavantage provides a market capitalisation quote source backed by the Alpha Vantage OVERVIEW function
package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/dojo/internal/common"
	"github.com/bobmcallan/dojo/internal/interfaces"
	"github.com/bobmcallan/dojo/internal/models"
)

const (
	DefaultBaseURL = "https://www.alphavantage.co"
	DefaultTimeout = 30 * time.Second
	// Free tier allows 5 requests per minute; one per second keeps bursts short
	DefaultRateLimit = 1
)

// Client calls the Alpha Vantage query endpoint
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient creates a new Alpha Vantage client
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("alphavantage: api key is required (set clients.alphavantage.api_key or AV_API_KEY)")
	}

	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// NewClientFromConfig creates a client from the [clients.alphavantage] section
func NewClientFromConfig(cfg common.AlphaVantageConfig, logger arbor.ILogger) (*Client, error) {
	return NewClient(cfg.APIKey,
		WithBaseURL(cfg.BaseURL),
		WithRateLimit(cfg.RateLimit),
		WithTimeout(cfg.GetTimeout()),
		WithLogger(logger),
	)
}

// APIError represents a failed query. Alpha Vantage reports throttling and
// bad keys with a 200 status and a "Note", "Information" or "Error Message" body.
type APIError struct {
	StatusCode int
	Message    string
	Function   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Alpha Vantage API error: %s (status: %d, function: %s)", e.Message, e.StatusCode, e.Function)
}

// envelope holds the advisory fields that can replace any payload
type envelope struct {
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

func (e envelope) message() string {
	switch {
	case e.ErrorMessage != "":
		return e.ErrorMessage
	case e.Note != "":
		return e.Note
	default:
		return e.Information
	}
}

// query performs a rate-limited call of one function and returns the raw body
func (c *Client) query(ctx context.Context, function string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("function", function)
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s/query?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("function", function).Str("symbol", params.Get("symbol")).Msg("Alpha Vantage API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(body))
		if len(msg) > 512 {
			msg = msg[:512]
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg, Function: function}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if msg := env.message(); msg != "" {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg, Function: function}
	}

	return body, nil
}

// overviewResponse is the subset of OVERVIEW the quote needs. Alpha Vantage
// returns every figure as a string, "None" when unknown.
type overviewResponse struct {
	Symbol               string `json:"Symbol"`
	Name                 string `json:"Name"`
	MarketCapitalization string `json:"MarketCapitalization"`
}

// MarketCap returns the current market capitalisation in USD.
// An unknown symbol (empty OVERVIEW) or an unparseable figure matches models.ErrNotFound.
func (c *Client) MarketCap(ctx context.Context, ticker string) (int64, error) {
	symbol := models.NormalizeTicker(ticker)

	body, err := c.query(ctx, "OVERVIEW", url.Values{"symbol": {symbol}})
	if err != nil {
		return 0, fmt.Errorf("alphavantage: %s: %w", symbol, err)
	}

	var overview overviewResponse
	if err := json.Unmarshal(body, &overview); err != nil {
		return 0, fmt.Errorf("alphavantage: %s: failed to decode overview: %w", symbol, err)
	}

	mc, err := parseAmount(overview.MarketCapitalization)
	if err != nil {
		return 0, fmt.Errorf("alphavantage: no market capitalisation for %s: %w", symbol, models.ErrNotFound)
	}

	c.logger.Debug().Str("symbol", symbol).Int64("market_cap", mc).Msg("Fetched market capitalisation")
	return mc, nil
}

// parseAmount reads a whole-dollar figure
func parseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "None" || s == "-" {
		return 0, errors.New("empty amount")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

var _ interfaces.QuoteSource = (*Client)(nil)
