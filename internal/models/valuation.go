package models

import "time"

// Canonical account roles used by the valuation formulas
const (
	AccountCashFlows    = "CashFlows"
	AccountCash         = "Cash"
	AccountLongTermDebt = "LongTermDebt"
	AccountValuation    = "valuation"
)

// Ratio names
const (
	RatioReturnOnAssets      = "ReturnOnAssets"      // NetIncomeLoss / Assets
	RatioLiabilitiesToAssets = "LiabilitiesToAssets" // Liabilities / Assets
	RatioCashFlowMargin      = "CashFlowMargin"      // CashFlows / Revenues
)

// ValuationReport is the in-memory result of running the pipeline for one entity
type ValuationReport struct {
	Entity            Entity                     `json:"entity"`
	Table             *FinancialTable            `json:"table"`
	SnapshotValuation int64                      `json:"snapshot_valuation"`
	Ratios            map[int]map[string]float64 `json:"ratios,omitempty"`
	AccountErrors     map[string]string          `json:"account_errors,omitempty"`
	EarningsMultiple  int64                      `json:"earnings_multiplier"`
	AverageYears      int                        `json:"average_years"`
	ComputedAt        time.Time                  `json:"computed_at"`
}

// ValuationRecord is the document persisted per entity per snapshot.
// Financials includes the per-year "valuation" column.
type ValuationRecord struct {
	ID         string                        `json:"record_id"`
	Ticker     string                        `json:"ticker"`
	CIK        string                        `json:"cik_str"`
	Title      string                        `json:"title"`
	Valuation  int64                         `json:"valuation"`
	Financials map[string]map[string]int64   `json:"financials"`
	Ratios     map[string]map[string]float64 `json:"ratios,omitempty"`
	CreatedAt  time.Time                     `json:"created_at"`
}

// Verdict is the outcome of comparing a live market capitalisation against a stored valuation
type Verdict struct {
	Ticker            string    `json:"ticker"`
	Title             string    `json:"title"`
	MarketCap         int64     `json:"market_cap"`
	Valuation         int64     `json:"valuation"`
	BuyingOpportunity bool      `json:"buying_opportunity"`
	ValuedAt          time.Time `json:"valued_at"`
}

// RatioRow is one entity in a cross-sectional ratio ranking
type RatioRow struct {
	EntityName  string  `json:"entity_name"`
	CIK         string  `json:"cik"`
	Numerator   int64   `json:"numerator"`
	Denominator int64   `json:"denominator"`
	Ratio       float64 `json:"ratio"`
}

// Comparison is one account across several entities, one column per ticker
type Comparison struct {
	Account string          `json:"account"`
	Label   string          `json:"label"` // display name for the account, defaults to Account
	Table   *FinancialTable `json:"table"`
	// ticker -> failure for entities that contributed no column
	Errors map[string]string `json:"errors,omitempty"`
}
