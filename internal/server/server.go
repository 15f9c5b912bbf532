// Package server exposes the valuation pipeline over a small REST API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/bobmcallan/dojo/internal/app"
	"github.com/bobmcallan/dojo/internal/common"
	"github.com/bobmcallan/dojo/internal/interfaces"
	"github.com/bobmcallan/dojo/internal/models"
	"github.com/bobmcallan/dojo/internal/services/frames"
)

// Ranker ranks filers by a ratio of two frames
type Ranker interface {
	Rank(ctx context.Context, req frames.Request) ([]models.RatioRow, error)
}

// Services are the collaborators behind the routes. Store may be nil.
type Services struct {
	Resolver   interfaces.EntityResolver
	Valuations interfaces.ValuationService
	Ranker     Ranker
	Store      interfaces.ValuationStore
}

// Server wraps the HTTP server and the services it exposes.
type Server struct {
	svc    Services
	server *http.Server
	logger arbor.ILogger
}

// New creates a REST API server listening on config's address.
func New(config common.ServerConfig, svc Services, logger arbor.ILogger) *Server {
	s := &Server{
		svc:    svc,
		logger: logger,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      applyMiddleware(mux, logger),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// NewServer creates a server over an initialized App.
func NewServer(a *app.App) *Server {
	svc := Services{
		Resolver:   a.Resolver,
		Valuations: a.Pipeline,
		Ranker:     a.Frames,
	}
	if a.Storage != nil {
		svc.Store = a.Storage.ValuationStore()
	}
	return New(a.Config.Server, svc, a.Logger)
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start starts the HTTP server (blocking).
func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.server.Addr).
		Msg("Starting REST API server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
