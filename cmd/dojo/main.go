package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/bobmcallan/dojo/internal/app"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "dojo",
	Short:         "Normalize SEC filings and estimate naive valuations",
	Long:          `Dojo pulls annual disclosures from SEC EDGAR, merges them into per-year financial tables and estimates a cash-flow based valuation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file (default: $DOJO_CONFIG, then dojo.toml next to the binary, then config/dojo.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")

	rootCmd.AddCommand(valueCmd, compareCmd, checkCmd, rankCmd, resolveCmd, historyCmd, serveCmd, versionCmd)
}

// newApp builds the application for one command invocation
func newApp(opts app.Options) (*app.App, error) {
	opts.ConfigPath = configPath
	opts.LogLevel = logLevel
	return app.NewApp(opts)
}

// writeJSON writes v as indented JSON
func writeJSON(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = w.Write(pretty.Pretty(data))
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
