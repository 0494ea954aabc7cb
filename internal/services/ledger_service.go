package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"ledgerbook/internal/amqp"
	"ledgerbook/internal/cache"
	"ledgerbook/internal/core"
	"ledgerbook/internal/log"
	"ledgerbook/internal/store"

	"github.com/google/uuid"
)

// EventPublisher announces committed mutations. *amqp.Client implements it.
type EventPublisher interface {
	PublishLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error
}

// LedgerService is the only write path for budgets and misc-expense ledgers.
// Every mutation loads a fresh copy, checks ownership, applies the change in
// memory, recalculates totals and saves once.
type LedgerService struct {
	store     store.Store
	publisher EventPublisher
	rollups   cache.Cache[Rollup]
	// rollupGen counts invalidations per owner; guarded by rollupMu.
	rollupMu  sync.Mutex
	rollupGen map[string]uint64
	now       func() time.Time
	newID     func() string
	logger    *log.Logger
	events    *log.StructuredLogger
}

type Option func(*LedgerService)

// WithPublisher enables change events. A nil publisher disables them.
func WithPublisher(p EventPublisher) Option {
	return func(s *LedgerService) { s.publisher = p }
}

// WithRollupCache caches MonthlyRollup results per owner.
func WithRollupCache(c cache.Cache[Rollup]) Option {
	return func(s *LedgerService) { s.rollups = c }
}

func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *LedgerService) { s.newID = newID }
}

func WithLogger(l *log.Logger) Option {
	return func(s *LedgerService) { s.logger = l.WithComponent(log.ComponentLedger) }
}

func NewLedgerService(st store.Store, opts ...Option) *LedgerService {
	s := &LedgerService{
		store:     st,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
		rollupGen: make(map[string]uint64),
		logger:    log.New(log.Config{Handler: slog.Default().Handler(), Component: log.ComponentLedger}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.events = log.NewStructuredLogger(s.logger)
	return s
}

func requireOwner(owner string) error {
	if strings.TrimSpace(owner) == "" {
		return core.ErrEmptyOwner
	}
	return nil
}

// storageErr passes NotFound through and tags everything else as a storage
// failure.
func storageErr(op string, err error) error {
	if errors.Is(err, core.ErrNotFound) || errors.Is(err, core.ErrStorage) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, core.ErrStorage, err)
}

func unauthorized(kind core.Kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, core.ErrUnauthorized)
}

func (s *LedgerService) loadOwnedBudget(ctx context.Context, id, owner string) (core.Budget, error) {
	b, err := s.store.LoadBudget(ctx, id)
	if err != nil {
		return core.Budget{}, storageErr("load budget", err)
	}
	if b.Owner != owner {
		return core.Budget{}, unauthorized(core.KindBudget, id)
	}
	return b, nil
}

func (s *LedgerService) loadOwnedMisc(ctx context.Context, id, owner string) (core.MiscExpense, error) {
	m, err := s.store.LoadMiscExpense(ctx, id)
	if err != nil {
		return core.MiscExpense{}, storageErr("load misc expense", err)
	}
	if m.Owner != owner {
		return core.MiscExpense{}, unauthorized(core.KindMisc, id)
	}
	return m, nil
}

// mutateBudget runs the load, authorize, mutate, recalculate, save pipeline.
// mutate must not perform I/O; if it fails nothing is saved.
func (s *LedgerService) mutateBudget(ctx context.Context, op, id, owner string, mutate func(*core.Budget) error) (core.Budget, error) {
	b, err := s.loadOwnedBudget(ctx, id, owner)
	if err != nil {
		return core.Budget{}, err
	}
	if err := mutate(&b); err != nil {
		return core.Budget{}, err
	}
	return s.saveBudget(ctx, op, b)
}

func (s *LedgerService) saveBudget(ctx context.Context, op string, b core.Budget) (core.Budget, error) {
	b.Recalculate()
	b.UpdatedAt = s.now()
	saved, err := s.store.SaveBudget(ctx, b)
	if err != nil {
		return core.Budget{}, storageErr("save budget", err)
	}
	s.committed(ctx, op, core.KindBudget, saved.ID, saved.Owner)
	return saved, nil
}

func (s *LedgerService) mutateMisc(ctx context.Context, op, id, owner string, mutate func(*core.MiscExpense) error) (core.MiscExpense, error) {
	m, err := s.loadOwnedMisc(ctx, id, owner)
	if err != nil {
		return core.MiscExpense{}, err
	}
	if err := mutate(&m); err != nil {
		return core.MiscExpense{}, err
	}
	return s.saveMisc(ctx, op, m)
}

func (s *LedgerService) saveMisc(ctx context.Context, op string, m core.MiscExpense) (core.MiscExpense, error) {
	m.Recalculate()
	m.UpdatedAt = s.now()
	saved, err := s.store.SaveMiscExpense(ctx, m)
	if err != nil {
		return core.MiscExpense{}, storageErr("save misc expense", err)
	}
	s.committed(ctx, op, core.KindMisc, saved.ID, saved.Owner)
	return saved, nil
}

// committed runs the post-save steps. None of them can fail the operation.
func (s *LedgerService) committed(ctx context.Context, op string, kind core.Kind, id, owner string) {
	s.invalidateRollup(owner)
	s.events.LogLedgerChanged(ctx, op, string(kind), id, owner)
	s.publish(ctx, op, kind, id, owner)
}

func (s *LedgerService) publish(ctx context.Context, op string, kind core.Kind, id, owner string) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewLedgerChangedMessage(owner, string(kind), id, op)
	if err := s.publisher.PublishLedgerChanged(ctx, msg); err != nil {
		s.events.LogError(ctx, "Failed to publish ledger changed event", err, op,
			log.NewFields().WithLedger(string(kind), id, owner))
	}
}

func (s *LedgerService) invalidateRollup(owner string) {
	if s.rollups == nil {
		return
	}
	s.rollupMu.Lock()
	defer s.rollupMu.Unlock()
	s.rollupGen[owner]++
	s.rollups.Delete(owner)
}

func (s *LedgerService) rollupGeneration(owner string) uint64 {
	s.rollupMu.Lock()
	defer s.rollupMu.Unlock()
	return s.rollupGen[owner]
}

// cacheRollup stores r unless the owner's ledgers changed since gen was read.
func (s *LedgerService) cacheRollup(owner string, gen uint64, r Rollup) bool {
	s.rollupMu.Lock()
	defer s.rollupMu.Unlock()
	if s.rollupGen[owner] != gen {
		return false
	}
	s.rollups.Set(owner, r)
	return true
}
