// Package valuation estimates an entity's value from its merged financial table
package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/dojo/internal/models"
)

const (
	DefaultEarningsMultiplier int64 = 20
	DefaultAverageYears             = 3

	FormulaFull     = "full valuation"
	FormulaSnapshot = "snapshot valuation"
)

// Estimator applies the cash-flow multiple formulas
type Estimator struct {
	Multiplier   int64
	AverageYears int
}

// NewEstimator returns an estimator, substituting defaults for non-positive parameters
func NewEstimator(multiplier int64, averageYears int) *Estimator {
	if multiplier <= 0 {
		multiplier = DefaultEarningsMultiplier
	}
	if averageYears <= 0 {
		averageYears = DefaultAverageYears
	}
	return &Estimator{Multiplier: multiplier, AverageYears: averageYears}
}

// Relabel returns a copy of table with columns renamed and dropped.
// It is how source accounts become the canonical CashFlows and Cash roles.
func Relabel(table *models.FinancialTable, rename map[string]string, drop []string) *models.FinancialTable {
	out := table.Clone()
	out.Rename(rename)
	out.Drop(drop...)
	return out
}

func missing(table *models.FinancialTable, accounts ...string) []string {
	var absent []string
	for _, a := range accounts {
		if !table.HasAccount(a) {
			absent = append(absent, a)
		}
	}
	return absent
}

// FullValuation returns a copy of table with a per-year valuation column:
//
//	valuation = multiplier*CashFlows + Cash - LongTermDebt
//
// Years lacking any of the three cells get no valuation cell. A table without
// one of the columns fails with a *models.ValuationError.
func (e *Estimator) FullValuation(table *models.FinancialTable) (*models.FinancialTable, error) {
	if absent := missing(table, models.AccountCashFlows, models.AccountCash, models.AccountLongTermDebt); len(absent) > 0 {
		return nil, &models.ValuationError{Formula: FormulaFull, Missing: absent}
	}

	out := table.Clone()
	for _, year := range out.Years() {
		cf, ok1 := out.Value(year, models.AccountCashFlows)
		cash, ok2 := out.Value(year, models.AccountCash)
		debt, ok3 := out.Value(year, models.AccountLongTermDebt)
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		out.Set(year, models.AccountValuation, e.Multiplier*cf+cash-debt)
	}
	return out, nil
}

// SnapshotValuation returns multiplier times the mean CashFlows over the most
// recent AverageYears year rows of table, truncated toward zero. Years in that
// window without a CashFlows cell are skipped. A window with no CashFlows at
// all fails with a *models.ValuationError.
func (e *Estimator) SnapshotValuation(table *models.FinancialTable) (int64, error) {
	years := table.Years()
	if len(years) > e.AverageYears {
		years = years[len(years)-e.AverageYears:]
	}

	sum := decimal.Zero
	n := 0
	for _, y := range years {
		if v, ok := table.Value(y, models.AccountCashFlows); ok {
			sum = sum.Add(decimal.NewFromInt(v))
			n++
		}
	}
	if n == 0 {
		return 0, &models.ValuationError{Formula: FormulaSnapshot, Missing: []string{models.AccountCashFlows}}
	}

	mean := sum.Div(decimal.NewFromInt(int64(n)))
	return mean.Mul(decimal.NewFromInt(e.Multiplier)).IntPart(), nil
}

// ratioDefs lists each ratio with its numerator and denominator accounts
var ratioDefs = []struct {
	name, num, den string
}{
	{models.RatioReturnOnAssets, "NetIncomeLoss", "Assets"},
	{models.RatioLiabilitiesToAssets, "Liabilities", "Assets"},
	{models.RatioCashFlowMargin, models.AccountCashFlows, "Revenues"},
}

// Ratio divides two amounts, rounded half away from zero to two decimal places.
// ok is false for a zero denominator.
func Ratio(num, den int64) (float64, bool) {
	if den == 0 {
		return 0, false
	}
	f, _ := decimal.NewFromInt(num).DivRound(decimal.NewFromInt(den), 2).Float64()
	return f, true
}

// Ratios computes the auxiliary ratios for every year where both inputs are present
func (e *Estimator) Ratios(table *models.FinancialTable) map[int]map[string]float64 {
	out := make(map[int]map[string]float64)
	for _, year := range table.Years() {
		for _, def := range ratioDefs {
			num, ok1 := table.Value(year, def.num)
			den, ok2 := table.Value(year, def.den)
			if !ok1 || !ok2 {
				continue
			}
			r, ok := Ratio(num, den)
			if !ok {
				continue
			}
			if out[year] == nil {
				out[year] = make(map[string]float64)
			}
			out[year][def.name] = r
		}
	}
	return out
}
