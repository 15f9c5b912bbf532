package edgar

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/bobmcallan/dojo/internal/models"
)

// conceptResponse is the companyconcept payload
type conceptResponse struct {
	CIK        int64      `json:"cik"`
	Taxonomy   string     `json:"taxonomy"`
	Tag        string     `json:"tag"`
	Label      string     `json:"label"`
	EntityName string     `json:"entityName"`
	Units      unitSeries `json:"units"`
}

// FetchAccount retrieves one us-gaap account's USD disclosures for an entity
// from the companyconcept API. A 404 or a concept without a USD branch is
// reported as a NotFound FetchError; anything else as Transport.
func (c *Client) FetchAccount(ctx context.Context, cik, account string) ([]models.DisclosurePoint, error) {
	reqURL := fmt.Sprintf("%s/api/xbrl/companyconcept/CIK%s/%s/%s.json",
		c.dataURL, cik, TaxonomyUSGAAP, url.PathEscape(account))

	var resp conceptResponse
	if err := c.get(ctx, reqURL, &resp); err != nil {
		return nil, classify(cik, account, err)
	}

	raw, ok := resp.Units[UnitUSD]
	if !ok {
		return nil, models.NewNotFoundError(cik, account, errors.New("no USD unit"))
	}

	points, skipped := toPoints(raw)
	if skipped > 0 {
		c.logger.Debug().Str("cik", cik).Str("account", account).Int("skipped", skipped).Msg("Skipped malformed disclosure points")
	}
	return points, nil
}
