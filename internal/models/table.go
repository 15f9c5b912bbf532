package models

import (
	"slices"
	"strconv"
)

// AccountTable is a single account's annual series: fiscal year -> value.
// An empty table stands in for an account that could not be fetched.
type AccountTable struct {
	Account string        `json:"account"`
	Values  map[int]int64 `json:"values"`
}

// NewAccountTable returns an empty table labelled with account
func NewAccountTable(account string) AccountTable {
	return AccountTable{Account: account, Values: make(map[int]int64)}
}

// Empty reports whether the table holds no years
func (t AccountTable) Empty() bool {
	return len(t.Values) == 0
}

// Years returns the table's fiscal years in ascending order
func (t AccountTable) Years() []int {
	years := make([]int, 0, len(t.Values))
	for y := range t.Values {
		years = append(years, y)
	}
	slices.Sort(years)
	return years
}

// FinancialTable maps fiscal year to a record of account values.
// Absent cells mean "not reported", never zero.
type FinancialTable struct {
	Accounts []string                 `json:"accounts"` // column order, not semantically significant
	Rows     map[int]map[string]int64 `json:"rows"`
}

// NewFinancialTable returns an empty table
func NewFinancialTable() *FinancialTable {
	return &FinancialTable{Rows: make(map[int]map[string]int64)}
}

// Set stores a cell, adding the account column and year row when needed
func (t *FinancialTable) Set(year int, account string, value int64) {
	if t.Rows == nil {
		t.Rows = make(map[int]map[string]int64)
	}
	row, ok := t.Rows[year]
	if !ok {
		row = make(map[string]int64)
		t.Rows[year] = row
	}
	row[account] = value
	if !slices.Contains(t.Accounts, account) {
		t.Accounts = append(t.Accounts, account)
	}
}

// Value returns a cell and whether it is present
func (t *FinancialTable) Value(year int, account string) (int64, bool) {
	row, ok := t.Rows[year]
	if !ok {
		return 0, false
	}
	v, ok := row[account]
	return v, ok
}

// HasAccount reports whether the column exists
func (t *FinancialTable) HasAccount(account string) bool {
	return slices.Contains(t.Accounts, account)
}

// Years returns every year row, ascending. A row emptied by Drop still counts.
func (t *FinancialTable) Years() []int {
	years := make([]int, 0, len(t.Rows))
	for y := range t.Rows {
		years = append(years, y)
	}
	slices.Sort(years)
	return years
}

// Column returns the present cells of one account keyed by year
func (t *FinancialTable) Column(account string) map[int]int64 {
	col := make(map[int]int64)
	for y, row := range t.Rows {
		if v, ok := row[account]; ok {
			col[y] = v
		}
	}
	return col
}

// Rename relabels columns. All names are mapped at once, so {A: B, B: C}
// moves A to B and B to C. Unknown source names are ignored. When a renamed
// column lands on an existing one, the renamed cells win.
func (t *FinancialTable) Rename(mapping map[string]string) {
	target := func(account string) (string, bool) {
		if to, ok := mapping[account]; ok && to != account {
			return to, true
		}
		return account, false
	}

	accounts := make([]string, 0, len(t.Accounts))
	for _, account := range t.Accounts {
		to, _ := target(account)
		if !slices.Contains(accounts, to) {
			accounts = append(accounts, to)
		}
	}

	for year, row := range t.Rows {
		renamed := make(map[string]int64, len(row))
		for account, v := range row {
			if to, moved := target(account); !moved {
				renamed[to] = v
			}
		}
		for _, account := range t.Accounts {
			v, ok := row[account]
			if !ok {
				continue
			}
			if to, moved := target(account); moved {
				renamed[to] = v
			}
		}
		t.Rows[year] = renamed
	}
	t.Accounts = accounts
}

// Drop removes columns. Year rows are kept even when left without cells.
func (t *FinancialTable) Drop(accounts ...string) {
	for _, account := range accounts {
		idx := slices.Index(t.Accounts, account)
		if idx < 0 {
			continue
		}
		t.Accounts = slices.Delete(t.Accounts, idx, idx+1)
		for _, row := range t.Rows {
			delete(row, account)
		}
	}
}

// FilterYears keeps only the rows whose year satisfies keep
func (t *FinancialTable) FilterYears(keep func(year int) bool) {
	for y := range t.Rows {
		if !keep(y) {
			delete(t.Rows, y)
		}
	}
}

// Clone returns a deep copy
func (t *FinancialTable) Clone() *FinancialTable {
	c := &FinancialTable{
		Accounts: slices.Clone(t.Accounts),
		Rows:     make(map[int]map[string]int64, len(t.Rows)),
	}
	for y, row := range t.Rows {
		r := make(map[string]int64, len(row))
		for k, v := range row {
			r[k] = v
		}
		c.Rows[y] = r
	}
	return c
}

// Columns returns the table as account -> year -> value with string year keys,
// the shape stored in valuation documents.
func (t *FinancialTable) Columns() map[string]map[string]int64 {
	out := make(map[string]map[string]int64, len(t.Accounts))
	for _, account := range t.Accounts {
		col := make(map[string]int64)
		for y, v := range t.Column(account) {
			col[strconv.Itoa(y)] = v
		}
		out[account] = col
	}
	return out
}

// TableFromColumns rebuilds a table from the document shape produced by Columns.
// Keys that are not integer years are skipped.
func TableFromColumns(columns map[string]map[string]int64) *FinancialTable {
	t := NewFinancialTable()
	accounts := make([]string, 0, len(columns))
	for account := range columns {
		accounts = append(accounts, account)
	}
	slices.Sort(accounts)
	for _, account := range accounts {
		for ys, v := range columns[account] {
			y, err := strconv.Atoi(ys)
			if err != nil {
				continue
			}
			t.Set(y, account, v)
		}
		if !t.HasAccount(account) {
			t.Accounts = append(t.Accounts, account)
		}
	}
	return t
}
