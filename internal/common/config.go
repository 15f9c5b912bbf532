// Package common provides shared utilities for Dojo
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Dojo
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Clients     ClientsConfig   `toml:"clients"`
	Quote       QuoteConfig     `toml:"quote"`
	Storage     StorageConfig   `toml:"storage"`
	Valuation   ValuationConfig `toml:"valuation"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds the REST API listen address
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EDGAR        EDGARConfig        `toml:"edgar"`
	AlphaVantage AlphaVantageConfig `toml:"alphavantage"`
	EODHD        EODHDConfig        `toml:"eodhd"`
}

// EDGARConfig holds SEC EDGAR API configuration.
// Contact is sent as the User-Agent; the SEC rejects anonymous clients.
type EDGARConfig struct {
	BaseURL   string `toml:"base_url"` // www.sec.gov (ticker directory)
	DataURL   string `toml:"data_url"` // data.sec.gov (xbrl APIs)
	Contact   string `toml:"contact"`
	Mode      string `toml:"mode"` // "facts" or "concept"
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EDGARConfig) GetTimeout() time.Duration {
	return parseTimeout(c.Timeout)
}

// AlphaVantageConfig holds Alpha Vantage API configuration
type AlphaVantageConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *AlphaVantageConfig) GetTimeout() time.Duration {
	return parseTimeout(c.Timeout)
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	return parseTimeout(c.Timeout)
}

// QuoteConfig selects the market capitalisation provider ("alphavantage" or "eodhd").
type QuoteConfig struct {
	Provider string `toml:"provider"`
}

// Storage backends
const (
	StorageSurrealDB = "surrealdb"
	StorageBadger    = "badger"
)

// StorageConfig selects the valuation store. Address and credentials apply to
// SurrealDB; Path is the embedded Badger directory.
type StorageConfig struct {
	Backend   string `toml:"backend"`
	Path      string `toml:"path"`
	Address   string `toml:"address"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// ValuationConfig holds the pipeline's account selection and valuation parameters
type ValuationConfig struct {
	EarningsMultiplier int64             `toml:"earnings_multiplier"`
	AverageYears       int               `toml:"average_years"`
	FetchConcurrency   int               `toml:"fetch_concurrency"`
	Accounts           []string          `toml:"accounts"`
	Rename             map[string]string `toml:"rename"`
	Drop               []string          `toml:"drop"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string   `toml:"level"`
	Outputs  []string `toml:"outputs"`
	FilePath string   `toml:"file_path"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "localhost",
			Port: 8580,
		},
		Clients: ClientsConfig{
			EDGAR: EDGARConfig{
				BaseURL:   "https://www.sec.gov",
				DataURL:   "https://data.sec.gov",
				Mode:      "facts",
				RateLimit: 10,
				Timeout:   "30s",
			},
			AlphaVantage: AlphaVantageConfig{
				BaseURL:   "https://www.alphavantage.co",
				RateLimit: 1,
				Timeout:   "30s",
			},
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
		},
		Quote: QuoteConfig{
			Provider: "alphavantage",
		},
		Storage: StorageConfig{
			Backend:   StorageSurrealDB,
			Path:      "./data/dojo",
			Address:   "ws://localhost:8000/rpc",
			Namespace: "dojo",
			Database:  "dojo",
			Username:  "root",
			Password:  "root",
		},
		Valuation: ValuationConfig{
			EarningsMultiplier: 20,
			AverageYears:       3,
			FetchConcurrency:   4,
			Accounts: []string{
				"NetCashProvidedByUsedInOperatingActivities",
				"CashAndCashEquivalentsAtCarryingValue",
				"Liabilities",
				"AssetsCurrent",
				"Revenues",
				"Assets",
				"NetIncomeLoss",
				"LongTermDebt",
			},
			Rename: map[string]string{
				"NetCashProvidedByUsedInOperatingActivities": "CashFlows",
				"CashAndCashEquivalentsAtCarryingValue":      "Cash",
			},
			Drop: []string{"AssetsCurrent"},
		},
		Logging: LoggingConfig{
			Level:    "warn",
			Outputs:  []string{"console"},
			FilePath: "./logs/dojo.log",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// A .env file in the working directory is loaded first; it never overrides
// variables already present in the process environment.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("DOJO_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("DOJO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if v := os.Getenv("DOJO_SERVER_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("DOJO_SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			config.Server.Port = p
		}
	}

	// EDGAR contact; EMAIL_ADDRESS is the historical variable name
	for _, name := range []string{"DOJO_EDGAR_CONTACT", "EMAIL_ADDRESS"} {
		if v := os.Getenv(name); v != "" {
			config.Clients.EDGAR.Contact = v
			break
		}
	}
	if v := os.Getenv("DOJO_EDGAR_MODE"); v != "" {
		config.Clients.EDGAR.Mode = strings.ToLower(v)
	}

	for _, name := range []string{"DOJO_ALPHAVANTAGE_API_KEY", "AV_API_KEY", "ALPHA_VANTAGE_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			config.Clients.AlphaVantage.APIKey = v
			break
		}
	}

	for _, name := range []string{"DOJO_EODHD_API_KEY", "EODHD_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			config.Clients.EODHD.APIKey = v
			break
		}
	}

	if v := os.Getenv("DOJO_QUOTE_PROVIDER"); v != "" {
		config.Quote.Provider = strings.ToLower(v)
	}

	// Storage overrides
	if v := os.Getenv("DOJO_STORAGE_BACKEND"); v != "" {
		config.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("DOJO_STORAGE_PATH"); v != "" {
		config.Storage.Path = v
	}
	if v := os.Getenv("DOJO_STORAGE_ADDRESS"); v != "" {
		config.Storage.Address = v
	}
	if v := os.Getenv("DOJO_STORAGE_NAMESPACE"); v != "" {
		config.Storage.Namespace = v
	}
	if v := os.Getenv("DOJO_STORAGE_DATABASE"); v != "" {
		config.Storage.Database = v
	}
	if v := os.Getenv("DOJO_STORAGE_USERNAME"); v != "" {
		config.Storage.Username = v
	}
	if v := os.Getenv("DOJO_STORAGE_PASSWORD"); v != "" {
		config.Storage.Password = v
	}

	if v := os.Getenv("DOJO_EARNINGS_MULTIPLIER"); v != "" {
		if m, err := strconv.ParseInt(v, 10, 64); err == nil && m > 0 {
			config.Valuation.EarningsMultiplier = m
		}
	}
	if v := os.Getenv("DOJO_AVERAGE_YEARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.Valuation.AverageYears = n
		}
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// Requirement names a group of settings a command depends on.
type Requirement int

const (
	RequireEDGAR Requirement = iota
	RequireQuote
	RequireStorage
)

// ValidateRequired returns the names of settings missing for the given requirements.
func (c *Config) ValidateRequired(reqs ...Requirement) []string {
	var missing []string
	for _, req := range reqs {
		switch req {
		case RequireEDGAR:
			if strings.TrimSpace(c.Clients.EDGAR.Contact) == "" {
				missing = append(missing, "clients.edgar.contact (DOJO_EDGAR_CONTACT or EMAIL_ADDRESS)")
			}
		case RequireQuote:
			switch c.Quote.Provider {
			case "eodhd":
				if c.Clients.EODHD.APIKey == "" {
					missing = append(missing, "clients.eodhd.api_key (EODHD_API_KEY)")
				}
			case "alphavantage", "":
				if c.Clients.AlphaVantage.APIKey == "" {
					missing = append(missing, "clients.alphavantage.api_key (AV_API_KEY)")
				}
			default:
				missing = append(missing, fmt.Sprintf("quote.provider (unknown provider %q)", c.Quote.Provider))
			}
		case RequireStorage:
			switch c.Storage.Backend {
			case StorageSurrealDB, "":
				if c.Storage.Address == "" {
					missing = append(missing, "storage.address (DOJO_STORAGE_ADDRESS)")
				}
			case StorageBadger:
				if c.Storage.Path == "" {
					missing = append(missing, "storage.path (DOJO_STORAGE_PATH)")
				}
			default:
				missing = append(missing, fmt.Sprintf("storage.backend (unknown backend %q)", c.Storage.Backend))
			}
		}
	}
	return missing
}

func parseTimeout(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}
