package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind distinguishes the two ledger aggregates.
type Kind string

const (
	KindBudget Kind = "budget"
	KindMisc   Kind = "misc"
)

type (
	// Budget is a property-expense ledger. TotalAmount, TotalExpense and
	// Remaining are derived from Transactions and only ever written by
	// Recalculate.
	Budget struct {
		ID           string                `json:"id"`
		Name         string                `json:"name"`
		Owner        string                `json:"owner"`
		Transactions []PropertyTransaction `json:"transactions"`
		TotalAmount  decimal.Decimal       `json:"totalAmount"`
		TotalExpense decimal.Decimal       `json:"totalExpense"`
		Remaining    decimal.Decimal       `json:"remaining"`
		CreatedAt    time.Time             `json:"createdAt"`
		UpdatedAt    time.Time             `json:"updatedAt"`
	}

	// PropertyTransaction is one row of a Budget. A nil Amount means the
	// row is not a deposit.
	PropertyTransaction struct {
		ID                string           `json:"id"`
		PropertyDetails   string           `json:"propertyDetails"`
		Amount            *decimal.Decimal `json:"amount,omitempty"`
		Stamp             decimal.Decimal  `json:"stamp"`
		RegistrationFee   decimal.Decimal  `json:"registrationFee"`
		OfficeMiscExpense decimal.Decimal  `json:"officeMiscExpense"`
		Date              time.Time        `json:"date"`
	}

	// MiscExpense is a miscellaneous-expense ledger.
	MiscExpense struct {
		ID           string          `json:"id"`
		Owner        string          `json:"owner"`
		Entries      []MiscEntry     `json:"entries"`
		TotalMiscExp decimal.Decimal `json:"totalMiscExp"`
		CreatedAt    time.Time       `json:"createdAt"`
		UpdatedAt    time.Time       `json:"updatedAt"`
	}

	// MiscEntry is a dated set of category amounts.
	MiscEntry struct {
		ID   string     `json:"id"`
		Date time.Time  `json:"date"`
		Data MiscValues `json:"data"`
	}
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
	ErrStorage      = errors.New("storage failure")

	ErrEmptyOwner           = fmt.Errorf("%w: empty owner", ErrInvalidInput)
	ErrEmptyName            = fmt.Errorf("%w: empty name", ErrInvalidInput)
	ErrEmptyPropertyDetails = fmt.Errorf("%w: empty property details", ErrInvalidInput)
	ErrMissingAmount        = fmt.Errorf("%w: missing amount", ErrInvalidInput)
	ErrNegativeAmount       = fmt.Errorf("%w: negative amount", ErrInvalidInput)
	ErrMissingDate          = fmt.Errorf("%w: missing date", ErrInvalidInput)
	ErrEmptyEntry           = fmt.Errorf("%w: entry has no categories", ErrInvalidInput)
	ErrEmptyCategory        = fmt.Errorf("%w: empty category", ErrInvalidInput)
	ErrEmptyPatch           = fmt.Errorf("%w: nothing to change", ErrInvalidInput)
)

// Expense returns stamp + registration fee + office misc expense.
func (t PropertyTransaction) Expense() decimal.Decimal {
	return t.Stamp.Add(t.RegistrationFee).Add(t.OfficeMiscExpense)
}

// Deposit returns the deposited amount, zero when absent.
func (t PropertyTransaction) Deposit() decimal.Decimal {
	if t.Amount == nil {
		return decimal.Zero
	}
	return *t.Amount
}

// IsDeposit reports whether the transaction carries a positive amount.
func (t PropertyTransaction) IsDeposit() bool {
	return t.Deposit().IsPositive()
}

// Net is the transaction's contribution to a balance: amount - expense.
func (t PropertyTransaction) Net() decimal.Decimal {
	return t.Deposit().Sub(t.Expense())
}

// Validate checks the fields required to record a transaction.
func (t PropertyTransaction) Validate() error {
	if strings.TrimSpace(t.PropertyDetails) == "" {
		return ErrEmptyPropertyDetails
	}
	if t.Amount == nil {
		return ErrMissingAmount
	}
	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if t.Date.IsZero() {
		return ErrMissingDate
	}
	return validateComponents(t.Stamp, t.RegistrationFee, t.OfficeMiscExpense)
}

func validateComponents(stamp, registrationFee, officeMisc decimal.Decimal) error {
	switch {
	case stamp.IsNegative():
		return fmt.Errorf("%w: negative stamp", ErrInvalidInput)
	case registrationFee.IsNegative():
		return fmt.Errorf("%w: negative registration fee", ErrInvalidInput)
	case officeMisc.IsNegative():
		return fmt.Errorf("%w: negative office misc expense", ErrInvalidInput)
	}
	return nil
}

// Transaction returns the transaction with the given id.
func (b *Budget) Transaction(id string) (*PropertyTransaction, bool) {
	for i := range b.Transactions {
		if b.Transactions[i].ID == id {
			return &b.Transactions[i], true
		}
	}
	return nil, false
}

// RemoveTransaction drops the transaction with the given id, preserving
// the order of the others.
func (b *Budget) RemoveTransaction(id string) bool {
	for i := range b.Transactions {
		if b.Transactions[i].ID == id {
			b.Transactions = append(b.Transactions[:i], b.Transactions[i+1:]...)
			return true
		}
	}
	return false
}

// Entry returns the entry with the given id.
func (m *MiscExpense) Entry(id string) (*MiscEntry, bool) {
	for i := range m.Entries {
		if m.Entries[i].ID == id {
			return &m.Entries[i], true
		}
	}
	return nil, false
}

// RemoveEntry drops the entry with the given id.
func (m *MiscExpense) RemoveEntry(id string) bool {
	for i := range m.Entries {
		if m.Entries[i].ID == id {
			m.Entries = append(m.Entries[:i], m.Entries[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveCategory deletes the category key from every entry and returns how
// many entries contained it. Entries left without categories are kept.
func (m *MiscExpense) RemoveCategory(category string) int {
	removed := 0
	for i := range m.Entries {
		if _, ok := m.Entries[i].Data[category]; ok {
			delete(m.Entries[i].Data, category)
			removed++
		}
	}
	return removed
}

// Validate checks an entry before it is recorded.
func (e MiscEntry) Validate() error {
	if len(e.Data) == 0 {
		return ErrEmptyEntry
	}
	for k := range e.Data {
		if strings.TrimSpace(k) == "" {
			return ErrEmptyCategory
		}
	}
	return nil
}

// Clone returns a deep copy so callers can mutate without touching the
// original slices or maps.
func (b Budget) Clone() Budget {
	out := b
	out.Transactions = make([]PropertyTransaction, len(b.Transactions))
	for i, t := range b.Transactions {
		if t.Amount != nil {
			a := *t.Amount
			t.Amount = &a
		}
		out.Transactions[i] = t
	}
	return out
}

// Clone returns a deep copy of the ledger.
func (m MiscExpense) Clone() MiscExpense {
	out := m
	out.Entries = make([]MiscEntry, len(m.Entries))
	for i, e := range m.Entries {
		e.Data = e.Data.Clone()
		out.Entries[i] = e
	}
	return out
}
