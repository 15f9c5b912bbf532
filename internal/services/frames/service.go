// Package frames ranks filers by a ratio of two accounts taken from xbrl frames
package frames

import (
	"context"
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/dojo/internal/interfaces"
	"github.com/bobmcallan/dojo/internal/models"
	"github.com/bobmcallan/dojo/internal/services/valuation"
)

// Request names the two frames to divide
type Request struct {
	NumeratorAccount   string
	NumeratorPeriod    string
	DenominatorAccount string
	DenominatorPeriod  string
	Limit              int // 0 returns every row
}

// Service ranks entities across the whole filer population
type Service struct {
	source interfaces.FrameSource
	logger arbor.ILogger
}

// NewService creates a new frames service
func NewService(source interfaces.FrameSource, logger arbor.ILogger) *Service {
	return &Service{source: source, logger: logger}
}

// Rank fetches both frames and ranks entities by numerator/denominator
func (s *Service) Rank(ctx context.Context, req Request) ([]models.RatioRow, error) {
	var num, den []models.FrameFact

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		num, err = s.source.Frame(gctx, req.NumeratorAccount, req.NumeratorPeriod)
		if err != nil {
			return fmt.Errorf("numerator frame %s/%s: %w", req.NumeratorAccount, req.NumeratorPeriod, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		den, err = s.source.Frame(gctx, req.DenominatorAccount, req.DenominatorPeriod)
		if err != nil {
			return fmt.Errorf("denominator frame %s/%s: %w", req.DenominatorAccount, req.DenominatorPeriod, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := Rank(num, den)
	s.logger.Info().
		Str("numerator", req.NumeratorAccount).
		Str("denominator", req.DenominatorAccount).
		Int("entities", len(rows)).
		Msg("Frames ranked")

	if req.Limit > 0 && len(rows) > req.Limit {
		rows = rows[:req.Limit]
	}
	return rows, nil
}

// Rank inner-joins two frames on entity name and sorts by ratio, highest first.
// Entities with a zero denominator are left out. Ties are ordered by name.
func Rank(numerator, denominator []models.FrameFact) []models.RatioRow {
	dens := make(map[string]models.FrameFact, len(denominator))
	for _, f := range denominator {
		dens[f.EntityName] = f
	}

	rows := make([]models.RatioRow, 0, len(numerator))
	for _, n := range numerator {
		d, ok := dens[n.EntityName]
		if !ok {
			continue
		}
		ratio, ok := valuation.Ratio(n.Value, d.Value)
		if !ok {
			continue
		}
		rows = append(rows, models.RatioRow{
			EntityName:  n.EntityName,
			CIK:         n.CIK,
			Numerator:   n.Value,
			Denominator: d.Value,
			Ratio:       ratio,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Ratio != rows[j].Ratio {
			return rows[i].Ratio > rows[j].Ratio
		}
		return rows[i].EntityName < rows[j].EntityName
	})
	return rows
}
