package services

import (
	"context"
	"fmt"
	"strings"

	"ledgerbook/internal/core"
	"ledgerbook/internal/log"
)

// CreateMiscLedger creates a misc-expense ledger. A non-empty initial map
// becomes the first entry, dated now.
func (s *LedgerService) CreateMiscLedger(ctx context.Context, owner string, initial core.MiscValues) (core.MiscExpense, error) {
	if err := requireOwner(owner); err != nil {
		return core.MiscExpense{}, err
	}
	now := s.now()
	m := core.MiscExpense{
		ID:        s.newID(),
		Owner:     owner,
		Entries:   []core.MiscEntry{},
		CreatedAt: now,
	}
	if len(initial) > 0 {
		entry := core.MiscEntry{ID: s.newID(), Date: now, Data: initial.Clone()}
		if err := entry.Validate(); err != nil {
			return core.MiscExpense{}, err
		}
		m.Entries = append(m.Entries, entry)
	}
	return s.saveMisc(ctx, log.OpCreate, m)
}

func (s *LedgerService) AppendEntry(ctx context.Context, ledgerID, owner string, draft EntryDraft) (core.MiscExpense, error) {
	if err := requireOwner(owner); err != nil {
		return core.MiscExpense{}, err
	}
	entry := core.MiscEntry{Date: draft.Date.UTC(), Data: draft.Data.Clone()}
	if err := entry.Validate(); err != nil {
		return core.MiscExpense{}, err
	}
	return s.mutateMisc(ctx, log.OpAppend, ledgerID, owner, func(m *core.MiscExpense) error {
		entry.ID = s.newID()
		if draft.Date.IsZero() {
			entry.Date = s.now()
		}
		m.Entries = append(m.Entries, entry)
		return nil
	})
}

func (s *LedgerService) EditEntry(ctx context.Context, ledgerID, owner, entryID string, patch EntryPatch) (core.MiscExpense, error) {
	if err := requireOwner(owner); err != nil {
		return core.MiscExpense{}, err
	}
	if err := patch.validate(); err != nil {
		return core.MiscExpense{}, err
	}
	return s.mutateMisc(ctx, log.OpEdit, ledgerID, owner, func(m *core.MiscExpense) error {
		entry, ok := m.Entry(entryID)
		if !ok {
			return fmt.Errorf("entry %s: %w", entryID, core.ErrNotFound)
		}
		if patch.Date != nil {
			entry.Date = patch.Date.UTC()
		}
		if patch.Data != nil {
			entry.Data = patch.Data.Clone()
		}
		return nil
	})
}

func (s *LedgerService) RemoveEntry(ctx context.Context, ledgerID, owner, entryID string) (core.MiscExpense, error) {
	if err := requireOwner(owner); err != nil {
		return core.MiscExpense{}, err
	}
	return s.mutateMisc(ctx, log.OpRemove, ledgerID, owner, func(m *core.MiscExpense) error {
		if !m.RemoveEntry(entryID) {
			return fmt.Errorf("entry %s: %w", entryID, core.ErrNotFound)
		}
		return nil
	})
}

// RemoveEntriesByCategory deletes category from every entry of the ledger.
// It fails with ErrNotFound when no entry carried the category.
func (s *LedgerService) RemoveEntriesByCategory(ctx context.Context, ledgerID, owner, category string) (core.MiscExpense, error) {
	if err := requireOwner(owner); err != nil {
		return core.MiscExpense{}, err
	}
	if strings.TrimSpace(category) == "" {
		return core.MiscExpense{}, core.ErrEmptyCategory
	}
	return s.mutateMisc(ctx, log.OpRemoveCategory, ledgerID, owner, func(m *core.MiscExpense) error {
		if m.RemoveCategory(category) == 0 {
			return fmt.Errorf("category %q: %w", category, core.ErrNotFound)
		}
		return nil
	})
}

func (s *LedgerService) DeleteMiscLedger(ctx context.Context, ledgerID, owner string) error {
	if err := requireOwner(owner); err != nil {
		return err
	}
	if _, err := s.loadOwnedMisc(ctx, ledgerID, owner); err != nil {
		return err
	}
	if err := s.store.DeleteMiscExpense(ctx, ledgerID); err != nil {
		return storageErr("delete misc expense", err)
	}
	s.committed(ctx, log.OpDelete, core.KindMisc, ledgerID, owner)
	return nil
}

// GetMiscExpense returns a ledger by id without an ownership check.
func (s *LedgerService) GetMiscExpense(ctx context.Context, id string) (core.MiscExpense, error) {
	m, err := s.store.LoadMiscExpense(ctx, id)
	if err != nil {
		return core.MiscExpense{}, storageErr("get misc expense", err)
	}
	return m, nil
}

func (s *LedgerService) ListMiscExpenses(ctx context.Context, owner string) ([]core.MiscExpense, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	list, err := s.store.FindMiscExpenses(ctx, owner)
	if err != nil {
		return nil, storageErr("list misc expenses", err)
	}
	return list, nil
}
