package core

import "github.com/shopspring/decimal"

// Block is a contiguous run of transactions reconciled against one deposit.
type Block struct {
	Index int `json:"index"`
	// Anchor is the deposit the block is drawn against, zero when the block
	// has none.
	Anchor    decimal.Decimal `json:"anchor"`
	Rows      []BlockRow      `json:"rows"`
	Remaining decimal.Decimal `json:"remaining"`
}

// BlockRow is one transaction inside a block with the running balance
// after it has been consumed.
type BlockRow struct {
	Transaction PropertyTransaction `json:"transaction"`
	Expense     decimal.Decimal     `json:"expense"`
	Balance     decimal.Decimal     `json:"balance"`
	// ShowRemaining is set on the last row only; the block's remaining
	// figure is displayed there.
	ShowRemaining bool `json:"showRemaining"`
}

// PartitionBlocks splits txns, in insertion order, into reconciliation
// blocks.
//
// A deposit (positive amount) closes the current block only when that
// block is already anchored by an earlier deposit. Leading expense-only
// rows therefore share a block with the first deposit that follows them.
// Each row moves the balance by amount - expense, so an anchored block
// starts from its deposit and is drawn down by the rows after it.
//
// The result is derived purely from txns and is never stored.
func PartitionBlocks(txns []PropertyTransaction) []Block {
	if len(txns) == 0 {
		return nil
	}

	var (
		blocks   []Block
		current  Block
		anchored bool
		balance  = decimal.Zero
	)
	closeBlock := func() {
		last := len(current.Rows) - 1
		current.Rows[last].ShowRemaining = true
		current.Remaining = balance
		current.Index = len(blocks)
		blocks = append(blocks, current)
	}

	for _, t := range txns {
		if t.IsDeposit() && anchored {
			closeBlock()
			current = Block{}
			anchored = false
			balance = decimal.Zero
		}
		if t.IsDeposit() && !anchored {
			anchored = true
			current.Anchor = t.Deposit()
		}
		expense := t.Expense()
		balance = balance.Add(t.Deposit()).Sub(expense)
		current.Rows = append(current.Rows, BlockRow{
			Transaction: t,
			Expense:     expense,
			Balance:     balance,
		})
	}
	closeBlock()

	return blocks
}
