package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func amt(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestPropertyTransactionValidate(t *testing.T) {
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	good := PropertyTransaction{PropertyDetails: "plot 7", Amount: amt("0"), Date: date}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		txn  PropertyTransaction
		want error
	}{
		{PropertyTransaction{PropertyDetails: " ", Amount: amt("1"), Date: date}, ErrEmptyPropertyDetails},
		{PropertyTransaction{PropertyDetails: "p", Date: date}, ErrMissingAmount},
		{PropertyTransaction{PropertyDetails: "p", Amount: amt("-1"), Date: date}, ErrNegativeAmount},
		{PropertyTransaction{PropertyDetails: "p", Amount: amt("1")}, ErrMissingDate},
		{PropertyTransaction{PropertyDetails: "p", Amount: amt("1"), Date: date, Stamp: dec("-2")}, ErrInvalidInput},
	}
	for i, tc := range bads {
		err := tc.txn.Validate()
		if !errors.Is(err, tc.want) {
			t.Fatalf("case %d: got %v, want %v", i, err, tc.want)
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: %v does not wrap ErrInvalidInput", i, err)
		}
	}
}

func TestTransactionDerivedFigures(t *testing.T) {
	txn := PropertyTransaction{Amount: amt("100"), Stamp: dec("5"), RegistrationFee: dec("2.5"), OfficeMiscExpense: dec("1")}
	if !txn.Expense().Equal(dec("8.5")) {
		t.Fatalf("expense = %s", txn.Expense())
	}
	if !txn.Net().Equal(dec("91.5")) {
		t.Fatalf("net = %s", txn.Net())
	}
	if !txn.IsDeposit() {
		t.Fatal("expected deposit")
	}
	if (PropertyTransaction{}).IsDeposit() || (PropertyTransaction{Amount: amt("0")}).IsDeposit() {
		t.Fatal("absent or zero amount must not be a deposit")
	}
}

func TestBudgetArena(t *testing.T) {
	b := Budget{Transactions: []PropertyTransaction{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
	if _, ok := b.Transaction("b"); !ok {
		t.Fatal("expected to find b")
	}
	if !b.RemoveTransaction("b") {
		t.Fatal("expected removal")
	}
	if b.RemoveTransaction("b") {
		t.Fatal("second removal must fail")
	}
	if len(b.Transactions) != 2 || b.Transactions[0].ID != "a" || b.Transactions[1].ID != "c" {
		t.Fatalf("order not preserved: %+v", b.Transactions)
	}
}

func TestRemoveCategoryFromEveryEntry(t *testing.T) {
	m := MiscExpense{Entries: []MiscEntry{
		{ID: "1", Data: MiscValues{"a": dec("1"), "rent": dec("2")}},
		{ID: "2", Data: MiscValues{"rent": dec("3")}},
	}}
	if n := m.RemoveCategory("rent"); n != 2 {
		t.Fatalf("removed %d, want 2", n)
	}
	if len(m.Entries) != 2 || len(m.Entries[0].Data) != 1 || len(m.Entries[1].Data) != 0 {
		t.Fatalf("unexpected entries: %+v", m.Entries)
	}
	if n := m.RemoveCategory("rent"); n != 0 {
		t.Fatalf("removed %d on second call", n)
	}
}

func TestCloneIsDeep(t *testing.T) {
	b := Budget{Transactions: []PropertyTransaction{{ID: "a", Amount: amt("1")}}}
	c := b.Clone()
	*c.Transactions[0].Amount = dec("9")
	c.Transactions[0].ID = "z"
	if b.Transactions[0].ID != "a" || !b.Transactions[0].Amount.Equal(dec("1")) {
		t.Fatalf("budget clone shares state: %+v", b.Transactions[0])
	}

	m := MiscExpense{Entries: []MiscEntry{{Data: MiscValues{"x": dec("1")}}}}
	mc := m.Clone()
	mc.Entries[0].Data["x"] = dec("5")
	if !m.Entries[0].Data["x"].Equal(dec("1")) {
		t.Fatal("misc clone shares map")
	}
}
