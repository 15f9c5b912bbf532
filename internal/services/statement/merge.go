package statement

import (
	"github.com/bobmcallan/dojo/internal/models"
)

// Merge outer-joins account tables on fiscal year. Empty tables are discarded;
// if none hold data the result is a *models.MergeError. Cell contents do not
// depend on argument order, only the column order does.
func Merge(tables ...models.AccountTable) (*models.FinancialTable, error) {
	merged := models.NewFinancialTable()
	for _, t := range tables {
		if t.Empty() {
			continue
		}
		for _, year := range t.Years() {
			merged.Set(year, t.Account, t.Values[year])
		}
	}
	if len(merged.Accounts) == 0 {
		return nil, &models.MergeError{Tables: len(tables)}
	}
	return merged, nil
}
