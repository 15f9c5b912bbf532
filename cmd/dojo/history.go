package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/dojo/internal/app"
	"github.com/bobmcallan/dojo/internal/models"
	"github.com/bobmcallan/dojo/internal/services/report"
)

var historyCmd = &cobra.Command{
	Use:   "history TICKER",
	Short: "List stored valuations for a ticker, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

var historyJSON bool

func init() {
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print the records as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp(app.Options{NeedStorage: true})
	if err != nil {
		return err
	}
	defer a.Close()

	ticker := models.NormalizeTicker(args[0])
	records, err := a.Storage.ValuationStore().ListValuations(cmd.Context(), ticker)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if historyJSON {
		return writeJSON(out, records)
	}
	_, err = fmt.Fprint(out, report.FormatHistory(ticker, records))
	return err
}
