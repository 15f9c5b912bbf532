package common

import (
	"fmt"
	"io"
	"strings"

	"github.com/ternarybob/banner"
)

// PrintBanner writes the version banner and the active configuration summary to w.
func PrintBanner(w io.Writer, config *Config) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	width := 60
	hr := lineColor + strings.Repeat("═", width) + banner.ColorReset

	art := []string{
		` 8888888b.   .d88888b.     888  .d88888b.`,
		` 888  "Y88b d88P" "Y88b    888 d88P" "Y88b`,
		` 888    888 888     888    888 888     888`,
		` 888    888 888     888    888 888     888`,
		` 888    888 888     888    888 888     888`,
		` 888  .d88P Y88b. .d88P    88P Y88b. .d88P`,
		` 8888888P"   "Y88888P"     888  "Y88888P"`,
		`                         .d88P`,
	}

	fmt.Fprintf(w, "\n%s\n\n", hr)
	for _, line := range art {
		fmt.Fprintf(w, "%s%s%s\n", textColor, line, banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s  Filings, Statements & Naive Valuation%s\n\n", textColor, banner.ColorReset)
	fmt.Fprintf(w, "%s\n\n", hr)

	kvPad := 16
	kvLines := [][2]string{
		{"Version", GetVersion()},
		{"Build", GetBuild()},
		{"Commit", GetGitCommit()},
		{"Environment", config.Environment},
		{"EDGAR mode", config.Clients.EDGAR.Mode},
		{"Quote", config.Quote.Provider},
		{"Storage", config.Storage.Address},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(w, "%s  %-*s %s%s\n", textColor, kvPad, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s\n\n", hr)
}
