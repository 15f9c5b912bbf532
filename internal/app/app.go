// Package app wires configuration, clients, services and storage into the
// shared core used by cmd/dojo.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/bobmcallan/dojo/internal/clients/edgar"
	"github.com/bobmcallan/dojo/internal/common"
	"github.com/bobmcallan/dojo/internal/interfaces"
	"github.com/bobmcallan/dojo/internal/services/frames"
	"github.com/bobmcallan/dojo/internal/services/pipeline"
	"github.com/bobmcallan/dojo/internal/services/quote"
	"github.com/bobmcallan/dojo/internal/services/resolver"
	"github.com/bobmcallan/dojo/internal/storage"
)

// Options selects the optional collaborators a command needs.
// Need* fails NewApp when the collaborator cannot be built; Want* logs a
// warning and continues without it.
type Options struct {
	ConfigPath  string
	LogLevel    string // overrides logging.level when set
	NeedQuotes  bool
	NeedStorage bool
	WantQuotes  bool
	WantStorage bool
}

// App holds the initialized clients and services
type App struct {
	Config      *common.Config
	Logger      arbor.ILogger
	EDGAR       *edgar.Client
	Resolver    *resolver.Service
	Pipeline    *pipeline.Service
	Frames      *frames.Service
	Quotes      *quote.Service
	Storage     interfaces.StorageManager
	StartupTime time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// resolveConfigPath checks the explicit path, DOJO_CONFIG, the binary
// directory and finally config/dojo.toml.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv("DOJO_CONFIG"); env != "" {
		return env
	}
	path := filepath.Join(getBinaryDir(), "dojo.toml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return filepath.Join("config", "dojo.toml")
}

// NewApp loads configuration and builds everything the requested commands use.
// Quotes and Storage stay nil unless asked for.
func NewApp(opts Options) (*App, error) {
	startupStart := time.Now()

	config, err := common.LoadConfig(resolveConfigPath(opts.ConfigPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.LogLevel != "" {
		config.Logging.Level = opts.LogLevel
	}

	reqs := []common.Requirement{common.RequireEDGAR}
	if opts.NeedQuotes {
		reqs = append(reqs, common.RequireQuote)
	}
	if opts.NeedStorage {
		reqs = append(reqs, common.RequireStorage)
	}
	if missing := config.ValidateRequired(reqs...); len(missing) > 0 {
		return nil, fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}

	logger := common.NewLogger(config.Logging)

	edgarClient, err := edgar.NewClientFromConfig(config.Clients.EDGAR, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create EDGAR client: %w", err)
	}

	var source interfaces.DisclosureSource = edgarClient
	if config.Clients.EDGAR.Mode != "concept" {
		source = edgar.NewFactsSource(edgarClient)
	}

	a := &App{
		Config:      config,
		Logger:      logger,
		EDGAR:       edgarClient,
		Resolver:    resolver.NewService(edgarClient, logger),
		Frames:      frames.NewService(edgarClient, logger),
		StartupTime: startupStart,
	}

	// Leave the interfaces nil rather than typed-nil so the pipeline reports
	// ErrNoQuotes / ErrNoStore.
	var quotes interfaces.QuoteSource
	if opts.NeedQuotes || opts.WantQuotes {
		svc, err := quote.NewServiceFromConfig(config, logger)
		switch {
		case err == nil:
			a.Quotes = svc
			quotes = svc
		case opts.NeedQuotes:
			return nil, fmt.Errorf("failed to create quote service: %w", err)
		default:
			logger.Warn().Err(err).Msg("Quote service unavailable - opportunity checks disabled")
		}
	}

	var store interfaces.ValuationStore
	if opts.NeedStorage || opts.WantStorage {
		manager, err := storage.NewStorageManager(logger, config)
		switch {
		case err == nil:
			a.Storage = manager
			store = manager.ValuationStore()
		case opts.NeedStorage:
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		default:
			logger.Warn().Err(err).Msg("Storage unavailable - saving and history disabled")
		}
	}

	a.Pipeline = pipeline.NewService(a.Resolver, source, quotes, store, config.Valuation, logger)

	logger.Debug().
		Str("edgar_mode", config.Clients.EDGAR.Mode).
		Bool("quotes", a.Quotes != nil).
		Bool("storage", a.Storage != nil).
		Str("startup", time.Since(startupStart).String()).
		Msg("App initialized")

	return a, nil
}

// Close releases storage
func (a *App) Close() error {
	if a.Storage == nil {
		return nil
	}
	return a.Storage.Close()
}
