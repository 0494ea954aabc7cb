// Package memory is an in-process SummaryWriter for local runs and tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"ledgerbook/internal/core"
	"ledgerbook/internal/sheets"
)

type Sink struct {
	mu     sync.Mutex
	byUser map[string]sheets.Summary
	writes int
}

var _ sheets.SummaryWriter = (*Sink)(nil)

func New() *Sink {
	return &Sink{byUser: make(map[string]sheets.Summary)}
}

// WriteSummary replaces the stored summary of s.Owner.
func (k *Sink) WriteSummary(_ context.Context, s sheets.Summary) (string, error) {
	if strings.TrimSpace(s.Owner) == "" {
		return "", errors.New("summary owner is required")
	}
	s.Rows = append([]core.MonthlyRollupRow(nil), s.Rows...)
	k.mu.Lock()
	defer k.mu.Unlock()
	k.byUser[s.Owner] = s
	k.writes++
	return fmt.Sprintf("mem:%s:%d", s.Owner, k.writes), nil
}

// Summary returns the last summary written for owner.
func (k *Sink) Summary(owner string) (sheets.Summary, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	s, ok := k.byUser[owner]
	return s, ok
}

// Writes counts successful WriteSummary calls.
func (k *Sink) Writes() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.writes
}
