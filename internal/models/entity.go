// Package models defines data structures for Dojo
package models

import (
	"fmt"
	"strings"
	"time"
)

// SentinelCIK is returned by legacy ticker resolution when no directory entry matches.
// It never identifies a real filer.
const SentinelCIK = "0000000000"

// Entity is a reporting company as listed in the SEC ticker directory
type Entity struct {
	Ticker string `json:"ticker"`
	CIK    string `json:"cik_str"` // 10-digit zero-padded
	Title  string `json:"title"`
}

// PadCIK zero-pads a numeric CIK to 10 digits.
func PadCIK(cik int64) string {
	return fmt.Sprintf("%010d", cik)
}

// NormalizeTicker returns the canonical (trimmed, uppercase) form of a ticker symbol
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// DisclosurePoint is one reported value for one account as of one period end.
type DisclosurePoint struct {
	Start        *time.Time `json:"start,omitempty"` // absent for instant (balance sheet) facts
	End          time.Time  `json:"end"`
	Value        int64      `json:"val"`
	Accession    string     `json:"accn"`
	FiscalYear   int        `json:"fy"`
	FiscalPeriod string     `json:"fp"`
	Form         string     `json:"form"`
	Filed        time.Time  `json:"filed"`
	Frame        string     `json:"frame,omitempty"`
}

// FiscalPeriodAnnual is the fiscal-period label carried by full-year disclosures
const FiscalPeriodAnnual = "FY"

// IsAnnual reports whether the point covers a full fiscal year
func (p DisclosurePoint) IsAnnual() bool {
	return p.FiscalPeriod == FiscalPeriodAnnual
}

// FrameFact is one entity's value in an xbrl frame (one account, one calendar period, all filers)
type FrameFact struct {
	CIK        string    `json:"cik"`
	EntityName string    `json:"entity_name"`
	Location   string    `json:"location"`
	End        time.Time `json:"end"`
	Value      int64     `json:"val"`
	Accession  string    `json:"accn"`
}
