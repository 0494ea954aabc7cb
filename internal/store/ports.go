// Package store defines the persistence boundary of the ledger service.
// Implementations load and save whole aggregates; transactions and entries
// only exist inside the ledger that owns them.
package store

import (
	"context"

	"ledgerbook/internal/core"
)

// Ports for outbound adapters. Load and Delete return an error wrapping
// core.ErrNotFound when the identifier is unknown.
type (
	BudgetStore interface {
		LoadBudget(ctx context.Context, id string) (core.Budget, error)
		SaveBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		FindBudgets(ctx context.Context, owner string) ([]core.Budget, error)
		DeleteBudget(ctx context.Context, id string) error
	}

	MiscStore interface {
		LoadMiscExpense(ctx context.Context, id string) (core.MiscExpense, error)
		SaveMiscExpense(ctx context.Context, m core.MiscExpense) (core.MiscExpense, error)
		FindMiscExpenses(ctx context.Context, owner string) ([]core.MiscExpense, error)
		DeleteMiscExpense(ctx context.Context, id string) error
	}

	// Store is everything the ledger service needs from persistence.
	Store interface {
		BudgetStore
		MiscStore
	}
)
