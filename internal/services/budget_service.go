package services

import (
	"context"
	"fmt"
	"strings"

	"ledgerbook/internal/core"
	"ledgerbook/internal/log"
)

// CreateLedger creates an empty budget for owner.
func (s *LedgerService) CreateLedger(ctx context.Context, owner, name string) (core.Budget, error) {
	if err := requireOwner(owner); err != nil {
		return core.Budget{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Budget{}, core.ErrEmptyName
	}

	now := s.now()
	b := core.Budget{
		ID:           s.newID(),
		Name:         name,
		Owner:        owner,
		Transactions: []core.PropertyTransaction{},
		CreatedAt:    now,
	}
	return s.saveBudget(ctx, log.OpCreate, b)
}

// AppendTransaction validates draft and appends it to the end of the budget.
func (s *LedgerService) AppendTransaction(ctx context.Context, ledgerID, owner string, draft TransactionDraft) (core.Budget, error) {
	if err := requireOwner(owner); err != nil {
		return core.Budget{}, err
	}
	txn, err := draft.build()
	if err != nil {
		return core.Budget{}, err
	}
	return s.mutateBudget(ctx, log.OpAppend, ledgerID, owner, func(b *core.Budget) error {
		txn.ID = s.newID()
		b.Transactions = append(b.Transactions, txn)
		return nil
	})
}

// EditTransaction applies patch to one transaction in place. The
// transaction keeps its position in the ledger.
func (s *LedgerService) EditTransaction(ctx context.Context, ledgerID, owner, txnID string, patch TransactionPatch) (core.Budget, error) {
	if err := requireOwner(owner); err != nil {
		return core.Budget{}, err
	}
	parsed, err := patch.parse()
	if err != nil {
		return core.Budget{}, err
	}
	return s.mutateBudget(ctx, log.OpEdit, ledgerID, owner, func(b *core.Budget) error {
		txn, ok := b.Transaction(txnID)
		if !ok {
			return fmt.Errorf("transaction %s: %w", txnID, core.ErrNotFound)
		}
		edited := *txn
		parsed.apply(&edited)
		if err := edited.Validate(); err != nil {
			return err
		}
		*txn = edited
		return nil
	})
}

func (s *LedgerService) RemoveTransaction(ctx context.Context, ledgerID, owner, txnID string) (core.Budget, error) {
	if err := requireOwner(owner); err != nil {
		return core.Budget{}, err
	}
	return s.mutateBudget(ctx, log.OpRemove, ledgerID, owner, func(b *core.Budget) error {
		if !b.RemoveTransaction(txnID) {
			return fmt.Errorf("transaction %s: %w", txnID, core.ErrNotFound)
		}
		return nil
	})
}

func (s *LedgerService) RenameLedger(ctx context.Context, ledgerID, owner, name string) (core.Budget, error) {
	if err := requireOwner(owner); err != nil {
		return core.Budget{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Budget{}, core.ErrEmptyName
	}
	return s.mutateBudget(ctx, log.OpRename, ledgerID, owner, func(b *core.Budget) error {
		b.Name = name
		return nil
	})
}

// DeleteLedger removes the budget along with its transactions.
func (s *LedgerService) DeleteLedger(ctx context.Context, ledgerID, owner string) error {
	if err := requireOwner(owner); err != nil {
		return err
	}
	if _, err := s.loadOwnedBudget(ctx, ledgerID, owner); err != nil {
		return err
	}
	if err := s.store.DeleteBudget(ctx, ledgerID); err != nil {
		return storageErr("delete budget", err)
	}
	s.committed(ctx, log.OpDelete, core.KindBudget, ledgerID, owner)
	return nil
}

// GetBudget returns a budget by id without an ownership check; callers that
// expose it must compare Owner themselves.
func (s *LedgerService) GetBudget(ctx context.Context, id string) (core.Budget, error) {
	b, err := s.store.LoadBudget(ctx, id)
	if err != nil {
		return core.Budget{}, storageErr("get budget", err)
	}
	return b, nil
}

func (s *LedgerService) ListBudgets(ctx context.Context, owner string) ([]core.Budget, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	list, err := s.store.FindBudgets(ctx, owner)
	if err != nil {
		return nil, storageErr("list budgets", err)
	}
	return list, nil
}

// PartitionBlocks splits the budget's transactions into reconciliation blocks.
func (s *LedgerService) PartitionBlocks(b core.Budget) []core.Block {
	return core.PartitionBlocks(b.Transactions)
}

// BudgetBlocks loads an owned budget and partitions it.
func (s *LedgerService) BudgetBlocks(ctx context.Context, ledgerID, owner string) ([]core.Block, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	b, err := s.loadOwnedBudget(ctx, ledgerID, owner)
	if err != nil {
		return nil, err
	}
	return s.PartitionBlocks(b), nil
}
