// Package edgar provides a client for the SEC EDGAR ticker directory and XBRL APIs
package edgar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/dojo/internal/common"
	"github.com/bobmcallan/dojo/internal/models"
)

const (
	DefaultBaseURL = "https://www.sec.gov"
	DefaultDataURL = "https://data.sec.gov"
	DefaultTimeout = 30 * time.Second
	// SEC fair-access ceiling, see https://www.sec.gov/os/webmaster-faq#code-support
	DefaultRateLimit = 10

	// Taxonomy holding the accounts the pipeline reads
	TaxonomyUSGAAP = "us-gaap"
	// Only the USD unit branch is consumed
	UnitUSD = "USD"
)

// Client talks to www.sec.gov and data.sec.gov
type Client struct {
	baseURL    string
	dataURL    string
	contact    string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the www.sec.gov base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithDataURL sets the data.sec.gov base URL
func WithDataURL(dataURL string) ClientOption {
	return func(c *Client) {
		if dataURL != "" {
			c.dataURL = strings.TrimRight(dataURL, "/")
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

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new EDGAR client. contact identifies the caller
// (typically "Name email@example.com") and is required by the SEC.
func NewClient(contact string, opts ...ClientOption) (*Client, error) {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return nil, errors.New("edgar: contact identifier is required (set clients.edgar.contact or EMAIL_ADDRESS)")
	}

	c := &Client{
		baseURL: DefaultBaseURL,
		dataURL: DefaultDataURL,
		contact: contact,
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

// NewClientFromConfig creates a client from the [clients.edgar] section
func NewClientFromConfig(cfg common.EDGARConfig, logger arbor.ILogger) (*Client, error) {
	return NewClient(cfg.Contact,
		WithBaseURL(cfg.BaseURL),
		WithDataURL(cfg.DataURL),
		WithRateLimit(cfg.RateLimit),
		WithTimeout(cfg.GetTimeout()),
		WithLogger(logger),
	)
}

// APIError represents a non-200 response
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EDGAR API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET and decodes the JSON body into result
func (c *Client) get(ctx context.Context, reqURL string, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.contact)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", reqURL).Msg("EDGAR API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   reqURL,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// isNotFound reports whether err is a 404 from the API
func isNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// classify wraps an error from get as a FetchError of the right kind
func classify(cik, account string, err error) error {
	if isNotFound(err) {
		return models.NewNotFoundError(cik, account, err)
	}
	return models.NewTransportError(cik, account, err)
}

// rawPoint is one entry of a units.<unit> array
type rawPoint struct {
	Start string      `json:"start"`
	End   string      `json:"end"`
	Val   json.Number `json:"val"`
	Accn  string      `json:"accn"`
	FY    *int        `json:"fy"`
	FP    *string     `json:"fp"`
	Form  string      `json:"form"`
	Filed string      `json:"filed"`
	Frame string      `json:"frame"`
}

// unitSeries is the "units" object of a concept: unit -> points
type unitSeries map[string][]rawPoint

const dateLayout = "2006-01-02"

// toPoints converts raw entries in source order, skipping entries without a usable end date or value
func toPoints(raw []rawPoint) ([]models.DisclosurePoint, int) {
	points := make([]models.DisclosurePoint, 0, len(raw))
	skipped := 0
	for _, r := range raw {
		end, err := time.Parse(dateLayout, r.End)
		if err != nil {
			skipped++
			continue
		}
		val, ok := parseValue(r.Val)
		if !ok {
			skipped++
			continue
		}
		p := models.DisclosurePoint{
			End:       end,
			Value:     val,
			Accession: r.Accn,
			Form:      r.Form,
			Frame:     r.Frame,
		}
		if r.Start != "" {
			if start, err := time.Parse(dateLayout, r.Start); err == nil {
				p.Start = &start
			}
		}
		if r.FY != nil {
			p.FiscalYear = *r.FY
		}
		if r.FP != nil {
			p.FiscalPeriod = *r.FP
		}
		if filed, err := time.Parse(dateLayout, r.Filed); err == nil {
			p.Filed = filed
		}
		points = append(points, p)
	}
	return points, skipped
}

// parseValue reads an integral amount; fractional values are rounded to the nearest unit
func parseValue(n json.Number) (int64, bool) {
	if n == "" {
		return 0, false
	}
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(math.Round(f)), true
}
