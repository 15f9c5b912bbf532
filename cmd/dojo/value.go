package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/dojo/internal/app"
	"github.com/bobmcallan/dojo/internal/services/report"
)

var valueCmd = &cobra.Command{
	Use:   "value TICKER",
	Short: "Build the financial table and valuation for a ticker",
	Args:  cobra.ExactArgs(1),
	RunE:  runValue,
}

var (
	valueSave  bool
	valueChart string
	valueJSON  bool
	valueRaw   bool
)

func init() {
	valueCmd.Flags().BoolVar(&valueSave, "save", false, "Store the valuation in the document store")
	valueCmd.Flags().StringVar(&valueChart, "chart", "", "Write a PNG line chart of the financial table to this file")
	valueCmd.Flags().BoolVar(&valueJSON, "json", false, "Print the report as JSON")
	valueCmd.Flags().BoolVar(&valueRaw, "raw", false, "Print whole-dollar values instead of humanised ones")
}

func runValue(cmd *cobra.Command, args []string) error {
	a, err := newApp(app.Options{NeedStorage: valueSave})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	rep, err := a.Pipeline.Valuate(ctx, args[0])
	if err != nil {
		return err
	}

	if valueSave {
		if _, err := a.Pipeline.SaveReport(ctx, rep); err != nil {
			return err
		}
	}

	if valueChart != "" {
		png, err := report.RenderChart(rep.Entity.Title, rep.Table)
		if err != nil {
			return err
		}
		if err := os.WriteFile(valueChart, png, 0644); err != nil {
			return fmt.Errorf("failed to write chart: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if valueJSON {
		return writeJSON(out, rep)
	}
	_, err = fmt.Fprint(out, report.FormatValuation(rep, !valueRaw))
	return err
}
