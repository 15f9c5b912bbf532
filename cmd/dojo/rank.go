package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/dojo/internal/app"
	"github.com/bobmcallan/dojo/internal/services/frames"
	"github.com/bobmcallan/dojo/internal/services/report"
)

var rankCmd = &cobra.Command{
	Use:   "rank NUM_ACCOUNT NUM_PERIOD DEN_ACCOUNT DEN_PERIOD",
	Short: "Rank every filer by the ratio of two frames",
	Long: `Fetches two xbrl frames and ranks filers by numerator / denominator, highest first.
Periods use the frames notation, e.g. CY2023 for a duration or CY2023Q4I for an instant.

  dojo rank OperatingIncomeLoss CY2023 Assets CY2023Q4I --limit 25`,
	Args: cobra.ExactArgs(4),
	RunE: runRank,
}

var (
	rankLimit int
	rankJSON  bool
)

func init() {
	rankCmd.Flags().IntVar(&rankLimit, "limit", 20, "Number of rows to print (0 prints all)")
	rankCmd.Flags().BoolVar(&rankJSON, "json", false, "Print the ranking as JSON")
}

func runRank(cmd *cobra.Command, args []string) error {
	a, err := newApp(app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	rows, err := a.Frames.Rank(cmd.Context(), frames.Request{
		NumeratorAccount:   args[0],
		NumeratorPeriod:    args[1],
		DenominatorAccount: args[2],
		DenominatorPeriod:  args[3],
		Limit:              rankLimit,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if rankJSON {
		return writeJSON(out, rows)
	}
	_, err = fmt.Fprint(out, report.FormatRanking(rows, args[0], args[2]))
	return err
}
