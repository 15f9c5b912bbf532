package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/dojo/internal/app"
	"github.com/bobmcallan/dojo/internal/interfaces"
	"github.com/bobmcallan/dojo/internal/services/report"
)

var compareCmd = &cobra.Command{
	Use:   "compare ACCOUNT TICKER...",
	Short: "Compare one account across several tickers",
	Long:  `Fetches a single us-gaap account for each ticker and joins the annual values on fiscal year, one column per ticker.`,
	Args:  cobra.MinimumNArgs(2),
	RunE:  runCompare,
}

var (
	compareAs      string
	compareMinYear int
	compareJSON    bool
)

func init() {
	compareCmd.Flags().StringVar(&compareAs, "as", "", "Display name for the account")
	compareCmd.Flags().IntVar(&compareMinYear, "min-year", 0, "Drop fiscal years before this one")
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "Print the comparison as JSON")
}

func runCompare(cmd *cobra.Command, args []string) error {
	a, err := newApp(app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	cmp, err := a.Pipeline.Compare(cmd.Context(), args[1:], args[0], interfaces.CompareOptions{
		Label:   compareAs,
		MinYear: compareMinYear,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if compareJSON {
		return writeJSON(out, cmp)
	}
	_, err = fmt.Fprint(out, report.FormatComparison(cmp, true))
	return err
}
