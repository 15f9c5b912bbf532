package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/dojo/internal/app"
	"github.com/bobmcallan/dojo/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipeline over a REST API",
	Long: `Starts an HTTP server exposing resolve, valuation, history, check, compare and rank
endpoints under /api. Storage and quotes are enabled when configured.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveHost string
	servePort int
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Server host (overrides config)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Server port (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(app.Options{WantQuotes: true, WantStorage: true})
	if err != nil {
		return err
	}
	defer a.Close()

	if serveHost != "" {
		a.Config.Server.Host = serveHost
	}
	if servePort != 0 {
		a.Config.Server.Port = servePort
	}

	srv := server.NewServer(a)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", srv.Addr())
	a.Logger.Info().
		Str("addr", srv.Addr()).
		Bool("quotes", a.Quotes != nil).
		Bool("storage", a.Storage != nil).
		Msg("Server ready")

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-cmd.Context().Done():
	}

	a.Logger.Info().Msg("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	a.Logger.Info().Msg("Server stopped")
	return nil
}
