package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/dojo/internal/common"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := common.LoadConfig(configPath)
		if err != nil {
			// fall back to defaults for the summary
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
			config = common.NewDefaultConfig()
		}
		common.PrintBanner(cmd.OutOrStdout(), config)
		return nil
	},
}
