package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/dojo/internal/app"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve TICKER",
	Short: "Print the CIK and registrant name for a ticker",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	a, err := newApp(app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	entity, err := a.Resolver.Lookup(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", entity.Ticker, entity.CIK, entity.Title)
	return err
}
