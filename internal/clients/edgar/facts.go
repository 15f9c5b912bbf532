package edgar

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bobmcallan/dojo/internal/interfaces"
	"github.com/bobmcallan/dojo/internal/models"
)

// conceptFacts is one concept inside companyfacts
type conceptFacts struct {
	Label       string     `json:"label"`
	Description string     `json:"description"`
	Units       unitSeries `json:"units"`
}

// CompanyFacts is every XBRL concept reported by one entity, grouped by taxonomy
type CompanyFacts struct {
	CIK        int64                              `json:"cik"`
	EntityName string                             `json:"entityName"`
	Facts      map[string]map[string]conceptFacts `json:"facts"`
}

// CompanyFacts downloads the full companyfacts document for an entity
func (c *Client) CompanyFacts(ctx context.Context, cik string) (*CompanyFacts, error) {
	reqURL := fmt.Sprintf("%s/api/xbrl/companyfacts/CIK%s.json", c.dataURL, cik)

	var facts CompanyFacts
	if err := c.get(ctx, reqURL, &facts); err != nil {
		return nil, classify(cik, "", err)
	}
	return &facts, nil
}

// Account returns the USD disclosures of one us-gaap account, or a NotFound
// FetchError when the entity never reported it in USD.
func (f *CompanyFacts) Account(account string) ([]models.DisclosurePoint, error) {
	cik := models.PadCIK(f.CIK)
	concept, ok := f.Facts[TaxonomyUSGAAP][account]
	if !ok {
		return nil, models.NewNotFoundError(cik, account, errors.New("account not reported"))
	}
	raw, ok := concept.Units[UnitUSD]
	if !ok {
		return nil, models.NewNotFoundError(cik, account, errors.New("no USD unit"))
	}
	points, _ := toPoints(raw)
	return points, nil
}

// FactsSource serves FetchAccount from companyfacts. A Session downloads
// each entity's document once and answers every account from it; calling
// FetchAccount on the source directly downloads the document for that call.
type FactsSource struct {
	client *Client
}

// NewFactsSource wraps a client
func NewFactsSource(client *Client) *FactsSource {
	return &FactsSource{client: client}
}

// Session returns a source that shares downloads until it is discarded
func (s *FactsSource) Session() interfaces.DisclosureSource {
	return &factsSession{
		client: s.client,
		facts:  make(map[string]*factsEntry),
	}
}

// FetchAccount implements interfaces.DisclosureSource
func (s *FactsSource) FetchAccount(ctx context.Context, cik, account string) ([]models.DisclosurePoint, error) {
	return s.Session().FetchAccount(ctx, cik, account)
}

// factsSession holds the documents downloaded during one pipeline run
type factsSession struct {
	client *Client

	mu    sync.Mutex
	facts map[string]*factsEntry
}

type factsEntry struct {
	done  chan struct{}
	facts *CompanyFacts
	err   error
}

// load returns the entity's document, downloading it when no other caller
// is. A waiter whose own context is live retries once when the shared
// download fails, so one caller's cancellation does not fail the others.
func (s *factsSession) load(ctx context.Context, cik string) (*CompanyFacts, error) {
	retried := false
	for {
		s.mu.Lock()
		entry, ok := s.facts[cik]
		if !ok {
			entry = &factsEntry{done: make(chan struct{})}
			s.facts[cik] = entry
			s.mu.Unlock()
			return s.download(ctx, cik, entry)
		}
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, models.NewTransportError(cik, "", ctx.Err())
		case <-entry.done:
		}
		if entry.err == nil || errors.Is(entry.err, models.ErrNotFound) || retried {
			return entry.facts, entry.err
		}
		retried = true
	}
}

func (s *factsSession) download(ctx context.Context, cik string, entry *factsEntry) (*CompanyFacts, error) {
	entry.facts, entry.err = s.client.CompanyFacts(ctx, cik)

	// transport failures are retried by the next caller, unknown entities are not
	if entry.err != nil && !errors.Is(entry.err, models.ErrNotFound) {
		s.mu.Lock()
		if s.facts[cik] == entry {
			delete(s.facts, cik)
		}
		s.mu.Unlock()
	}
	close(entry.done)
	return entry.facts, entry.err
}

// FetchAccount implements interfaces.DisclosureSource
func (s *factsSession) FetchAccount(ctx context.Context, cik, account string) ([]models.DisclosurePoint, error) {
	facts, err := s.load(ctx, cik)
	if err != nil {
		var fe *models.FetchError
		if errors.As(err, &fe) {
			return nil, &models.FetchError{Kind: fe.Kind, CIK: cik, Account: account, Err: fe.Err}
		}
		return nil, models.NewTransportError(cik, account, err)
	}
	return facts.Account(account)
}

// Compile-time checks
var (
	_ interfaces.TickerDirectory  = (*Client)(nil)
	_ interfaces.DisclosureSource = (*Client)(nil)
	_ interfaces.SessionSource    = (*FactsSource)(nil)
	_ interfaces.DisclosureSource = (*factsSession)(nil)
	_ interfaces.FrameSource      = (*Client)(nil)
)
