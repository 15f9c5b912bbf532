package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinancialTable_SetAndValue(t *testing.T) {
	table := NewFinancialTable()
	table.Set(2022, "Assets", 10)
	table.Set(2021, "Cash", 3)
	table.Set(2022, "Assets", 11)

	assert.Equal(t, []string{"Assets", "Cash"}, table.Accounts)
	assert.Equal(t, []int{2021, 2022}, table.Years())

	v, ok := table.Value(2022, "Assets")
	require.True(t, ok)
	assert.Equal(t, int64(11), v)

	_, ok = table.Value(2021, "Assets")
	assert.False(t, ok, "absent cells are not zero")
	_, ok = table.Value(1999, "Cash")
	assert.False(t, ok)
}

func TestFinancialTable_ZeroValueSet(t *testing.T) {
	var table FinancialTable
	table.Set(2020, "Cash", 0)

	v, ok := table.Value(2020, "Cash")
	assert.True(t, ok)
	assert.Zero(t, v)
}

func TestFinancialTable_Rename(t *testing.T) {
	table := NewFinancialTable()
	table.Set(2022, "NetCashProvidedByUsedInOperatingActivities", 5)
	table.Set(2022, "Assets", 9)

	table.Rename(map[string]string{
		"NetCashProvidedByUsedInOperatingActivities": "CashFlows",
		"NotPresent": "Ignored",
	})

	assert.Equal(t, []string{"CashFlows", "Assets"}, table.Accounts)
	v, ok := table.Value(2022, "CashFlows")
	require.True(t, ok)
	assert.Equal(t, int64(5), v)
	assert.False(t, table.HasAccount("Ignored"))
}

func TestFinancialTable_RenameIsSimultaneous(t *testing.T) {
	for i := 0; i < 20; i++ {
		table := NewFinancialTable()
		table.Set(2022, "A", 1)
		table.Set(2022, "B", 2)

		table.Rename(map[string]string{"A": "B", "B": "C"})

		assert.Equal(t, []string{"B", "C"}, table.Accounts)
		b, _ := table.Value(2022, "B")
		c, _ := table.Value(2022, "C")
		assert.Equal(t, int64(1), b)
		assert.Equal(t, int64(2), c)
		assert.False(t, table.HasAccount("A"))
	}
}

func TestFinancialTable_RenameOntoExistingColumn(t *testing.T) {
	table := NewFinancialTable()
	table.Set(2021, "Cash", 7)
	table.Set(2022, "Cash", 8)
	table.Set(2022, "CashAndCashEquivalentsAtCarryingValue", 50)

	table.Rename(map[string]string{"CashAndCashEquivalentsAtCarryingValue": "Cash"})

	assert.Equal(t, []string{"Cash"}, table.Accounts)
	v, _ := table.Value(2021, "Cash")
	assert.Equal(t, int64(7), v)
	v, _ = table.Value(2022, "Cash")
	assert.Equal(t, int64(50), v, "renamed cells win")
}

func TestFinancialTable_DropKeepsEmptyRows(t *testing.T) {
	table := NewFinancialTable()
	table.Set(2019, "AssetsCurrent", 1)
	table.Set(2020, "AssetsCurrent", 2)
	table.Set(2020, "Cash", 3)

	table.Drop("AssetsCurrent", "Unknown")

	assert.Equal(t, []string{"Cash"}, table.Accounts)
	assert.Equal(t, []int{2019, 2020}, table.Years())
	_, ok := table.Value(2019, "AssetsCurrent")
	assert.False(t, ok)
}

func TestFinancialTable_FilterYears(t *testing.T) {
	table := NewFinancialTable()
	for y := 2014; y <= 2018; y++ {
		table.Set(y, "Revenues", int64(y))
	}
	table.FilterYears(func(year int) bool { return year >= 2016 })
	assert.Equal(t, []int{2016, 2017, 2018}, table.Years())
}

func TestFinancialTable_CloneIsDeep(t *testing.T) {
	table := NewFinancialTable()
	table.Set(2020, "Cash", 1)

	c := table.Clone()
	c.Set(2020, "Cash", 99)
	c.Set(2021, "Assets", 5)

	v, _ := table.Value(2020, "Cash")
	assert.Equal(t, int64(1), v)
	assert.Equal(t, []string{"Cash"}, table.Accounts)
}

func TestFinancialTable_ColumnsRoundTrip(t *testing.T) {
	table := NewFinancialTable()
	table.Set(2021, "Cash", 1)
	table.Set(2022, "Cash", 2)
	table.Set(2022, "Assets", 7)

	cols := table.Columns()
	assert.Equal(t, map[string]map[string]int64{
		"Cash":   {"2021": 1, "2022": 2},
		"Assets": {"2022": 7},
	}, cols)

	back := TableFromColumns(cols)
	assert.Equal(t, []string{"Assets", "Cash"}, back.Accounts)
	assert.Equal(t, table.Rows, back.Rows)
}

func TestTableFromColumns_SkipsBadYears(t *testing.T) {
	back := TableFromColumns(map[string]map[string]int64{"Cash": {"FY22": 1, "2023": 2}})
	assert.Equal(t, []int{2023}, back.Years())
}

func TestAccountTable(t *testing.T) {
	table := NewAccountTable("Assets")
	assert.True(t, table.Empty())

	table.Values[2023] = 1
	table.Values[2021] = 2
	assert.False(t, table.Empty())
	assert.Equal(t, []int{2021, 2023}, table.Years())
}

func TestErrorKinds(t *testing.T) {
	assert.True(t, errors.Is(fmt.Errorf("lookup: %w", &ResolutionError{Ticker: "X"}), ErrNotFound))
	assert.True(t, errors.Is(&MergeError{Tables: 3}, ErrNoData))
	assert.True(t, errors.Is(&ValuationError{Formula: "snapshot"}, ErrMissingAccount))

	cause := errors.New("connection reset")
	transport := NewTransportError("0000320193", "Assets", cause)
	assert.True(t, errors.Is(transport, ErrTransport))
	assert.True(t, errors.Is(transport, cause))
	assert.False(t, transport.NotFound())
	assert.True(t, NewNotFoundError("0000320193", "Assets", nil).NotFound())
}

func TestNormalizeTickerAndPadCIK(t *testing.T) {
	assert.Equal(t, "BRK-B", NormalizeTicker(" brk-b "))
	assert.Equal(t, "0000320193", PadCIK(320193))
}
