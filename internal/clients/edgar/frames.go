package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/bobmcallan/dojo/internal/models"
)

type frameResponse struct {
	Taxonomy string     `json:"taxonomy"`
	Tag      string     `json:"tag"`
	Period   string     `json:"ccp"`
	Unit     string     `json:"uom"`
	Data     []rawFrame `json:"data"`
}

type rawFrame struct {
	Accn       string      `json:"accn"`
	CIK        int64       `json:"cik"`
	EntityName string      `json:"entityName"`
	Loc        string      `json:"loc"`
	End        string      `json:"end"`
	Val        json.Number `json:"val"`
}

// Frame retrieves one us-gaap account in USD for one calendar period across all filers.
// Period is CY#### for annual, CY####Q# for quarterly and CY####Q#I for instantaneous data.
func (c *Client) Frame(ctx context.Context, account, period string) ([]models.FrameFact, error) {
	reqURL := fmt.Sprintf("%s/api/xbrl/frames/%s/%s/%s/%s.json",
		c.dataURL, TaxonomyUSGAAP, url.PathEscape(account), UnitUSD, url.PathEscape(period))

	var resp frameResponse
	if err := c.get(ctx, reqURL, &resp); err != nil {
		return nil, classify("", account, err)
	}

	facts := make([]models.FrameFact, 0, len(resp.Data))
	for _, d := range resp.Data {
		val, ok := parseValue(d.Val)
		if !ok {
			continue
		}
		end, _ := time.Parse(dateLayout, d.End)
		facts = append(facts, models.FrameFact{
			CIK:        models.PadCIK(d.CIK),
			EntityName: d.EntityName,
			Location:   d.Loc,
			End:        end,
			Value:      val,
			Accession:  d.Accn,
		})
	}

	c.logger.Debug().Str("account", account).Str("period", period).Int("entities", len(facts)).Msg("Loaded xbrl frame")
	return facts, nil
}
