package core

import "github.com/shopspring/decimal"

// Totals are the derived aggregate fields of a Budget.
type Totals struct {
	TotalAmount  decimal.Decimal
	TotalExpense decimal.Decimal
	Remaining    decimal.Decimal
}

// RecalculateBudget sums deposits and expense components over txns.
// Remaining is always TotalAmount - TotalExpense.
func RecalculateBudget(txns []PropertyTransaction) Totals {
	amount := decimal.Zero
	expense := decimal.Zero
	for _, t := range txns {
		amount = amount.Add(t.Deposit())
		expense = expense.Add(t.Expense())
	}
	return Totals{
		TotalAmount:  amount,
		TotalExpense: expense,
		Remaining:    amount.Sub(expense),
	}
}

// RecalculateMisc sums every category amount across all entries.
func RecalculateMisc(entries []MiscEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Data.Total())
	}
	return total
}

// Recalculate overwrites the derived fields from the transaction list.
func (b *Budget) Recalculate() {
	t := RecalculateBudget(b.Transactions)
	b.TotalAmount = t.TotalAmount
	b.TotalExpense = t.TotalExpense
	b.Remaining = t.Remaining
}

// Totals returns the currently stored derived fields.
func (b Budget) Totals() Totals {
	return Totals{TotalAmount: b.TotalAmount, TotalExpense: b.TotalExpense, Remaining: b.Remaining}
}

// Recalculate overwrites TotalMiscExp from the entry list.
func (m *MiscExpense) Recalculate() {
	m.TotalMiscExp = RecalculateMisc(m.Entries)
}
