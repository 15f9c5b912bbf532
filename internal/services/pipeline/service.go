// Package pipeline runs the resolve, fetch, normalize, merge and value sequence for one or more tickers
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/dojo/internal/common"
	"github.com/bobmcallan/dojo/internal/interfaces"
	"github.com/bobmcallan/dojo/internal/models"
	"github.com/bobmcallan/dojo/internal/services/statement"
	"github.com/bobmcallan/dojo/internal/services/valuation"
)

// DefaultFetchConcurrency bounds parallel account fetches when the config leaves it unset
const DefaultFetchConcurrency = 4

// ErrNoStore is returned by operations that need a ValuationStore when none was supplied
var ErrNoStore = errors.New("pipeline: no valuation store configured")

// ErrNoQuotes is returned by CheckOpportunity when no QuoteSource was supplied
var ErrNoQuotes = errors.New("pipeline: no quote source configured")

// Service implements interfaces.ValuationService
type Service struct {
	resolver  interfaces.EntityResolver
	source    interfaces.DisclosureSource
	quotes    interfaces.QuoteSource
	store     interfaces.ValuationStore
	estimator *valuation.Estimator
	config    common.ValuationConfig
	logger    arbor.ILogger
	now       func() time.Time
}

// NewService creates the pipeline.
// quotes and store may be nil; the operations that need them then fail with ErrNoQuotes / ErrNoStore.
func NewService(
	resolver interfaces.EntityResolver,
	source interfaces.DisclosureSource,
	quotes interfaces.QuoteSource,
	store interfaces.ValuationStore,
	config common.ValuationConfig,
	logger arbor.ILogger,
) *Service {
	return &Service{
		resolver:  resolver,
		source:    source,
		quotes:    quotes,
		store:     store,
		estimator: valuation.NewEstimator(config.EarningsMultiplier, config.AverageYears),
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) concurrency() int {
	if s.config.FetchConcurrency > 0 {
		return s.config.FetchConcurrency
	}
	return DefaultFetchConcurrency
}

// session returns the disclosure source for one pipeline run. Sources that
// share downloads hand out a fresh session so nothing outlives the run.
func (s *Service) session() interfaces.DisclosureSource {
	if ss, ok := s.source.(interfaces.SessionSource); ok {
		return ss.Session()
	}
	return s.source
}

// fetchAccounts fetches and normalizes each account. A failed account becomes
// an empty table and its error is returned in failures, keyed by account.
// Tables are in request order.
func (s *Service) fetchAccounts(ctx context.Context, cik string, accounts []string) ([]models.AccountTable, map[string]error) {
	source := s.session()
	tables := make([]models.AccountTable, len(accounts))
	errs := make([]error, len(accounts))

	var g errgroup.Group
	g.SetLimit(s.concurrency())
	for i, account := range accounts {
		g.Go(func() error {
			points, err := source.FetchAccount(ctx, cik, account)
			if err != nil {
				errs[i] = err
				tables[i] = models.NewAccountTable(account)
				return nil
			}
			tables[i] = statement.Normalize(points, account)
			return nil
		})
	}
	_ = g.Wait() // goroutines never fail; errors are kept per account

	failures := make(map[string]error)
	for i, err := range errs {
		if err == nil {
			continue
		}
		failures[accounts[i]] = err
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info().Str("cik", cik).Str("account", accounts[i]).Msg("Account not reported, continuing without it")
		} else {
			s.logger.Warn().Err(err).Str("cik", cik).Str("account", accounts[i]).Msg("Account fetch failed, continuing without it")
		}
	}
	return tables, failures
}

// Valuate runs the full pipeline for one ticker
func (s *Service) Valuate(ctx context.Context, ticker string) (*models.ValuationReport, error) {
	entity, err := s.resolver.Lookup(ctx, ticker)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("ticker", entity.Ticker).Str("cik", entity.CIK).Int("accounts", len(s.config.Accounts)).Msg("Valuating entity")

	tables, failures := s.fetchAccounts(ctx, entity.CIK, s.config.Accounts)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged, err := statement.Merge(tables...)
	if err != nil {
		return nil, fmt.Errorf("valuate %s: %w", entity.Ticker, err)
	}

	canonical := valuation.Relabel(merged, s.config.Rename, s.config.Drop)

	full, err := s.estimator.FullValuation(canonical)
	if err != nil {
		return nil, fmt.Errorf("valuate %s: %w", entity.Ticker, err)
	}
	snapshot, err := s.estimator.SnapshotValuation(canonical)
	if err != nil {
		return nil, fmt.Errorf("valuate %s: %w", entity.Ticker, err)
	}

	report := &models.ValuationReport{
		Entity:            *entity,
		Table:             full,
		SnapshotValuation: snapshot,
		Ratios:            s.estimator.Ratios(canonical),
		EarningsMultiple:  s.estimator.Multiplier,
		AverageYears:      s.estimator.AverageYears,
		ComputedAt:        s.now().UTC(),
	}
	if len(failures) > 0 {
		report.AccountErrors = make(map[string]string, len(failures))
		for account, err := range failures {
			report.AccountErrors[account] = err.Error()
		}
	}

	s.logger.Info().Str("ticker", entity.Ticker).Int64("valuation", snapshot).Int("years", len(full.Rows)).Msg("Valuation complete")
	return report, nil
}

// Record builds the persisted document for a report
func (s *Service) Record(report *models.ValuationReport) *models.ValuationRecord {
	rec := &models.ValuationRecord{
		ID:         uuid.NewString(),
		Ticker:     report.Entity.Ticker,
		CIK:        report.Entity.CIK,
		Title:      report.Entity.Title,
		Valuation:  report.SnapshotValuation,
		Financials: report.Table.Columns(),
		CreatedAt:  report.ComputedAt,
	}
	if len(report.Ratios) > 0 {
		rec.Ratios = make(map[string]map[string]float64, len(report.Ratios))
		for year, ratios := range report.Ratios {
			rec.Ratios[strconv.Itoa(year)] = ratios
		}
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}
	return rec
}

// Save values a ticker and stores the record
func (s *Service) Save(ctx context.Context, ticker string) (*models.ValuationRecord, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}

	report, err := s.Valuate(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return s.SaveReport(ctx, report)
}

// SaveReport stores the record of an already computed report
func (s *Service) SaveReport(ctx context.Context, report *models.ValuationReport) (*models.ValuationRecord, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}

	rec := s.Record(report)
	if err := s.store.InsertValuation(ctx, rec); err != nil {
		return nil, fmt.Errorf("save valuation for %s: %w", rec.Ticker, err)
	}

	s.logger.Info().Str("ticker", rec.Ticker).Str("record_id", rec.ID).Msg("Valuation saved")
	return rec, nil
}

// CheckOpportunity reports whether the live market capitalisation is at or
// below the most recently stored valuation
func (s *Service) CheckOpportunity(ctx context.Context, ticker string) (*models.Verdict, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	if s.quotes == nil {
		return nil, ErrNoQuotes
	}

	ticker = models.NormalizeTicker(ticker)
	rec, err := s.store.FindLatestValuation(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("load valuation for %s: %w", ticker, err)
	}

	marketCap, err := s.quotes.MarketCap(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("market cap for %s: %w", ticker, err)
	}

	verdict := &models.Verdict{
		Ticker:            rec.Ticker,
		Title:             rec.Title,
		MarketCap:         marketCap,
		Valuation:         rec.Valuation,
		BuyingOpportunity: marketCap <= rec.Valuation,
		ValuedAt:          rec.CreatedAt,
	}

	s.logger.Info().
		Str("ticker", ticker).
		Int64("market_cap", marketCap).
		Int64("valuation", rec.Valuation).
		Bool("buying_opportunity", verdict.BuyingOpportunity).
		Msg("Opportunity checked")
	return verdict, nil
}

// Compare fetches one account for several tickers and joins them on year,
// one column per ticker in argument order. Unknown tickers and failed fetches
// are recorded in the result; a directory failure aborts the comparison.
func (s *Service) Compare(ctx context.Context, tickers []string, account string, opts interfaces.CompareOptions) (*models.Comparison, error) {
	source := s.session()
	tables := make([]models.AccountTable, len(tickers))
	errs := make([]error, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())
	for i, ticker := range tickers {
		g.Go(func() error {
			label := models.NormalizeTicker(ticker)
			tables[i] = models.NewAccountTable(label)

			entity, err := s.resolver.Lookup(gctx, ticker)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					errs[i] = err
					return nil
				}
				return err
			}
			points, err := source.FetchAccount(gctx, entity.CIK, account)
			if err != nil {
				errs[i] = err
				return nil
			}
			tables[i] = statement.Normalize(points, label)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compare %s: %w", account, err)
	}

	cmp := &models.Comparison{Account: account, Label: opts.Label}
	if cmp.Label == "" {
		cmp.Label = account
	}
	for i, err := range errs {
		if err == nil {
			continue
		}
		if cmp.Errors == nil {
			cmp.Errors = make(map[string]string)
		}
		cmp.Errors[tables[i].Account] = err.Error()
		s.logger.Warn().Err(err).Str("ticker", tables[i].Account).Str("account", account).Msg("Ticker skipped in comparison")
	}

	merged, err := statement.Merge(tables...)
	if err != nil {
		return nil, fmt.Errorf("compare %s: %w", account, err)
	}
	if opts.MinYear > 0 {
		merged.FilterYears(func(year int) bool { return year >= opts.MinYear })
	}
	cmp.Table = merged
	return cmp, nil
}

var _ interfaces.ValuationService = (*Service)(nil)
