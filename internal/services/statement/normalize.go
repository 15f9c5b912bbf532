// Package statement turns raw disclosure series into per-year tables and merges them
package statement

import (
	"github.com/bobmcallan/dojo/internal/models"
)

// Normalize reduces one account's disclosure points to one value per fiscal year.
// Only full-year (FY) points are kept, the fiscal year is the calendar year of
// the period end, and when several points share a year the last in source
// order wins. Empty input gives an empty table.
func Normalize(points []models.DisclosurePoint, account string) models.AccountTable {
	table := models.NewAccountTable(account)
	for _, p := range points {
		if !p.IsAnnual() {
			continue
		}
		table.Values[p.End.Year()] = p.Value
	}
	return table
}
