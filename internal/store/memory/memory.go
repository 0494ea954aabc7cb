package memory

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"ledgerbook/internal/core"
	"ledgerbook/internal/log"
	"ledgerbook/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store keeps ledgers in process memory. Values are cloned on the way in
// and out so callers never share slices with the store.
type Store struct {
	mu      sync.Mutex
	budgets map[string]core.Budget
	miscs   map[string]core.MiscExpense
	// insertion order, used for stable listings
	budgetOrder []string
	miscOrder   []string
}

func New() *Store {
	return &Store{
		budgets: map[string]core.Budget{},
		miscs:   map[string]core.MiscExpense{},
	}
}

// NewFromFiles seeds the store from base/seed_budgets.jsonl and
// base/seed_misc.jsonl when present. Blank lines and lines starting with #
// are ignored. Lines that do not decode or carry no id are skipped with a
// warning naming the file and line.
func NewFromFiles(base string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentStorage)
	ctx := context.Background()

	s := New()
	path := filepath.Join(base, "seed_budgets.jsonl")
	for _, l := range readLines(path) {
		b, err := decodeSeed(l.text, func(b core.Budget) string { return b.ID })
		if err != nil {
			logger.Warn("Skipping seed line", "file", path, "line", l.number, log.FieldError, err)
			continue
		}
		b.Recalculate()
		_, _ = s.SaveBudget(ctx, b)
	}
	path = filepath.Join(base, "seed_misc.jsonl")
	for _, l := range readLines(path) {
		m, err := decodeSeed(l.text, func(m core.MiscExpense) string { return m.ID })
		if err != nil {
			logger.Warn("Skipping seed line", "file", path, "line", l.number, log.FieldError, err)
			continue
		}
		m.Recalculate()
		_, _ = s.SaveMiscExpense(ctx, m)
	}
	return s
}

func (s *Store) LoadBudget(_ context.Context, id string) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok {
		return core.Budget{}, fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}
	return b.Clone(), nil
}

func (s *Store) SaveBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.budgets[b.ID]; !ok {
		s.budgetOrder = append(s.budgetOrder, b.ID)
	}
	s.budgets[b.ID] = b.Clone()
	return b.Clone(), nil
}

func (s *Store) FindBudgets(_ context.Context, owner string) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Budget
	for _, id := range s.budgetOrder {
		if b := s.budgets[id]; b.Owner == owner {
			out = append(out, b.Clone())
		}
	}
	return out, nil
}

func (s *Store) DeleteBudget(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.budgets[id]; !ok {
		return fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}
	delete(s.budgets, id)
	s.budgetOrder = without(s.budgetOrder, id)
	return nil
}

func (s *Store) LoadMiscExpense(_ context.Context, id string) (core.MiscExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.miscs[id]
	if !ok {
		return core.MiscExpense{}, fmt.Errorf("misc expense %s: %w", id, core.ErrNotFound)
	}
	return m.Clone(), nil
}

func (s *Store) SaveMiscExpense(_ context.Context, m core.MiscExpense) (core.MiscExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.miscs[m.ID]; !ok {
		s.miscOrder = append(s.miscOrder, m.ID)
	}
	s.miscs[m.ID] = m.Clone()
	return m.Clone(), nil
}

func (s *Store) FindMiscExpenses(_ context.Context, owner string) ([]core.MiscExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.MiscExpense
	for _, id := range s.miscOrder {
		if m := s.miscs[id]; m.Owner == owner {
			out = append(out, m.Clone())
		}
	}
	return out, nil
}

func (s *Store) DeleteMiscExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.miscs[id]; !ok {
		return fmt.Errorf("misc expense %s: %w", id, core.ErrNotFound)
	}
	delete(s.miscs, id)
	s.miscOrder = without(s.miscOrder, id)
	return nil
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

var errSeedWithoutID = errors.New("seed document has no id")

func decodeSeed[T any](line string, id func(T) string) (T, error) {
	var v T
	if err := json.Unmarshal([]byte(line), &v); err != nil {
		return v, err
	}
	if strings.TrimSpace(id(v)) == "" {
		return v, errSeedWithoutID
	}
	return v, nil
}

type seedLine struct {
	number int
	text   string
}

func readLines(path string) []seedLine {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []seedLine
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, seedLine{number: n, text: line})
	}
	return out
}
