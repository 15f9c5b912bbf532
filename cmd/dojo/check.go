package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/dojo/internal/app"
	"github.com/bobmcallan/dojo/internal/services/report"
)

var checkCmd = &cobra.Command{
	Use:   "check TICKER",
	Short: "Compare the live market capitalisation with the latest stored valuation",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

var checkJSON bool

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print the verdict as JSON")
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := newApp(app.Options{NeedQuotes: true, NeedStorage: true})
	if err != nil {
		return err
	}
	defer a.Close()

	verdict, err := a.Pipeline.CheckOpportunity(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if checkJSON {
		return writeJSON(out, verdict)
	}
	_, err = fmt.Fprint(out, report.FormatVerdict(verdict))
	return err
}
