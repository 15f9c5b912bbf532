// Package report renders financial tables, valuations and rankings as markdown and charts
package report

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/bobmcallan/dojo/internal/common"
	"github.com/bobmcallan/dojo/internal/models"
)

func formatCell(v int64, humanise bool) string {
	if humanise {
		return common.FormatValue(v)
	}
	return strconv.FormatInt(v, 10)
}

// FormatTable renders a financial table as markdown, one row per year ascending
// and one column per account in table order. Absent cells are blank.
func FormatTable(table *models.FinancialTable, yearLabel string, humanise bool) string {
	if yearLabel == "" {
		yearLabel = "Year"
	}

	var sb strings.Builder
	sb.WriteString("| " + yearLabel + " |")
	for _, account := range table.Accounts {
		sb.WriteString(" " + account + " |")
	}
	sb.WriteString("\n|" + strings.Repeat("---|", len(table.Accounts)+1) + "\n")

	for _, year := range table.Years() {
		sb.WriteString(fmt.Sprintf("| %d |", year))
		for _, account := range table.Accounts {
			if v, ok := table.Value(year, account); ok {
				sb.WriteString(" " + formatCell(v, humanise) + " |")
			} else {
				sb.WriteString("  |")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatValuation renders a pipeline report: header, financials, ratios and account failures
func FormatValuation(report *models.ValuationReport, humanise bool) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s (%s)\n\n", report.Entity.Title, report.Entity.Ticker))
	sb.WriteString(fmt.Sprintf("**CIK:** %s\n", report.Entity.CIK))
	sb.WriteString(fmt.Sprintf("**Snapshot Valuation:** %s (%dx mean CashFlows over %d years)\n",
		formatCell(report.SnapshotValuation, humanise), report.EarningsMultiple, report.AverageYears))
	sb.WriteString(fmt.Sprintf("**Computed:** %s\n\n", report.ComputedAt.Format("2006-01-02 15:04")))

	sb.WriteString("## Financials\n\n")
	sb.WriteString(FormatTable(report.Table, "Year", humanise))

	if len(report.Ratios) > 0 {
		var names []string
		for _, ratios := range report.Ratios {
			for name := range ratios {
				if !slices.Contains(names, name) {
					names = append(names, name)
				}
			}
		}
		sort.Strings(names)

		years := make([]int, 0, len(report.Ratios))
		for y := range report.Ratios {
			years = append(years, y)
		}
		sort.Ints(years)

		sb.WriteString("\n## Ratios\n\n")
		sb.WriteString("| Year |")
		for _, name := range names {
			sb.WriteString(" " + name + " |")
		}
		sb.WriteString("\n|" + strings.Repeat("---|", len(names)+1) + "\n")
		for _, y := range years {
			sb.WriteString(fmt.Sprintf("| %d |", y))
			for _, name := range names {
				if r, ok := report.Ratios[y][name]; ok {
					sb.WriteString(fmt.Sprintf(" %.2f |", r))
				} else {
					sb.WriteString("  |")
				}
			}
			sb.WriteString("\n")
		}
	}

	if len(report.AccountErrors) > 0 {
		accounts := make([]string, 0, len(report.AccountErrors))
		for a := range report.AccountErrors {
			accounts = append(accounts, a)
		}
		sort.Strings(accounts)

		sb.WriteString("\n## Unavailable Accounts\n\n")
		for _, a := range accounts {
			sb.WriteString(fmt.Sprintf("- **%s**: %s\n", a, report.AccountErrors[a]))
		}
	}

	return sb.String()
}

// FormatComparison renders one account across several tickers
func FormatComparison(cmp *models.Comparison, humanise bool) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", cmp.Label))
	sb.WriteString(FormatTable(cmp.Table, cmp.Label, humanise))

	if len(cmp.Errors) > 0 {
		tickers := make([]string, 0, len(cmp.Errors))
		for t := range cmp.Errors {
			tickers = append(tickers, t)
		}
		sort.Strings(tickers)
		sb.WriteString("\n")
		for _, t := range tickers {
			sb.WriteString(fmt.Sprintf("- **%s** skipped: %s\n", t, cmp.Errors[t]))
		}
	}
	return sb.String()
}

// FormatVerdict renders the buying-opportunity check
func FormatVerdict(v *models.Verdict) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**Market Cap:** %s\n", common.FormatValue(v.MarketCap)))
	sb.WriteString(fmt.Sprintf("**Valuation:** %s (as of %s)\n\n", common.FormatValue(v.Valuation), v.ValuedAt.Format("2006-01-02")))
	if v.BuyingOpportunity {
		sb.WriteString(fmt.Sprintf("%s might be a buying opportunity. Do more research first.\n", v.Ticker))
	} else {
		sb.WriteString(fmt.Sprintf("%s might be overpriced. Proceed with caution and do more research.\n", v.Ticker))
	}
	return sb.String()
}

// FormatRanking renders a frames ranking with a 1-based rank column
func FormatRanking(rows []models.RatioRow, numerator, denominator string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("| # | Entity | CIK | %s | %s | Ratio |\n", numerator, denominator))
	sb.WriteString("|---|--------|-----|---|---|-------|\n")
	for i, r := range rows {
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %.2f |\n",
			i+1, r.EntityName, r.CIK, common.FormatValue(r.Numerator), common.FormatValue(r.Denominator), r.Ratio))
	}
	return sb.String()
}

// FormatHistory renders stored valuations newest first
func FormatHistory(ticker string, records []models.ValuationRecord) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s valuation history\n\n", ticker))
	if len(records) == 0 {
		sb.WriteString("No stored valuations.\n")
		return sb.String()
	}
	sb.WriteString("| Recorded | Valuation | Record |\n")
	sb.WriteString("|---|---|---|\n")
	for _, r := range records {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
			r.CreatedAt.Format("2006-01-02 15:04"), common.FormatValue(r.Valuation), r.ID))
	}
	return sb.String()
}
