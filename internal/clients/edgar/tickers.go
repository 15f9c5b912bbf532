package edgar

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/bobmcallan/dojo/internal/models"
)

// tickerEntry is one value of company_tickers.json, which is keyed by "0", "1", ...
type tickerEntry struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// CompanyTickers downloads the SEC ticker directory.
// Entries are returned in the directory's own order (its numeric keys).
func (c *Client) CompanyTickers(ctx context.Context) ([]models.Entity, error) {
	var raw map[string]tickerEntry
	if err := c.get(ctx, c.baseURL+"/files/company_tickers.json", &raw); err != nil {
		return nil, fmt.Errorf("company tickers: %w", err)
	}

	type keyed struct {
		idx   int
		entry tickerEntry
	}
	ordered := make([]keyed, 0, len(raw))
	for k, v := range raw {
		idx, err := strconv.Atoi(k)
		if err != nil {
			idx = len(raw) // unknown keys sort last
		}
		ordered = append(ordered, keyed{idx: idx, entry: v})
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].idx < ordered[j].idx })

	entities := make([]models.Entity, 0, len(ordered))
	for _, o := range ordered {
		entities = append(entities, models.Entity{
			Ticker: models.NormalizeTicker(o.entry.Ticker),
			CIK:    models.PadCIK(o.entry.CIK),
			Title:  o.entry.Title,
		})
	}

	c.logger.Debug().Int("entries", len(entities)).Msg("Loaded company ticker directory")
	return entities, nil
}
