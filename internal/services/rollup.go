package services

import (
	"context"
	"time"

	"ledgerbook/internal/core"
	"ledgerbook/internal/log"

	"golang.org/x/sync/errgroup"
)

// Rollup is the monthly summary of all of an owner's ledgers.
type Rollup struct {
	Owner       string                  `json:"owner"`
	Rows        []core.MonthlyRollupRow `json:"rows"`
	Totals      core.RollupTotals       `json:"totals"`
	GeneratedAt time.Time               `json:"generatedAt"`
}

// MonthlyRollup aggregates every budget and misc ledger owned by owner into
// one row per calendar month.
func (s *LedgerService) MonthlyRollup(ctx context.Context, owner string) (Rollup, error) {
	if err := requireOwner(owner); err != nil {
		return Rollup{}, err
	}
	var gen uint64
	if s.rollups != nil {
		if r, ok := s.rollups.Get(owner); ok {
			s.logger.DebugContext(ctx, "Rollup cache hit", log.FieldOwner, owner)
			return r, nil
		}
		gen = s.rollupGeneration(owner)
	}

	var (
		budgets []core.Budget
		miscs   []core.MiscExpense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		budgets, err = s.store.FindBudgets(gctx, owner)
		if err != nil {
			return storageErr("list budgets", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		miscs, err = s.store.FindMiscExpenses(gctx, owner)
		if err != nil {
			return storageErr("list misc expenses", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Rollup{}, err
	}

	rows := core.MonthlyRollup(budgets, miscs)
	r := Rollup{
		Owner:       owner,
		Rows:        rows,
		Totals:      core.SummarizeRollup(rows),
		GeneratedAt: s.now(),
	}
	if r.Rows == nil {
		r.Rows = []core.MonthlyRollupRow{}
	}
	if s.rollups != nil && !s.cacheRollup(owner, gen, r) {
		s.logger.DebugContext(ctx, "Rollup not cached, ledgers changed while loading", log.FieldOwner, owner)
	}
	s.logger.DebugContext(ctx, "Rollup computed",
		log.FieldOwner, owner,
		log.FieldMonths, len(rows),
		log.FieldRemaining, r.Totals.PropertyRemaining.String(),
		log.FieldMiscTotal, r.Totals.MiscTotal.String())
	return r, nil
}
