package services

import (
	"strings"
	"time"

	"ledgerbook/internal/core"

	"github.com/shopspring/decimal"
)

// TransactionDraft is the caller's description of a new property
// transaction. Numeric fields arrive as text and are parsed strictly.
type TransactionDraft struct {
	PropertyDetails   string
	Amount            string
	Stamp             string
	RegistrationFee   string
	OfficeMiscExpense string
	Date              time.Time
}

// build validates the draft and returns the transaction without an id.
func (d TransactionDraft) build() (core.PropertyTransaction, error) {
	if strings.TrimSpace(d.PropertyDetails) == "" {
		return core.PropertyTransaction{}, core.ErrEmptyPropertyDetails
	}
	amount, err := core.ParseAmount(d.Amount)
	if err != nil {
		return core.PropertyTransaction{}, err
	}
	if d.Date.IsZero() {
		return core.PropertyTransaction{}, core.ErrMissingDate
	}
	t := core.PropertyTransaction{
		PropertyDetails: strings.TrimSpace(d.PropertyDetails),
		Amount:          &amount,
		Date:            d.Date.UTC(),
	}
	if t.Stamp, err = core.ParseComponent("stamp", d.Stamp); err != nil {
		return core.PropertyTransaction{}, err
	}
	if t.RegistrationFee, err = core.ParseComponent("registration fee", d.RegistrationFee); err != nil {
		return core.PropertyTransaction{}, err
	}
	if t.OfficeMiscExpense, err = core.ParseComponent("office misc expense", d.OfficeMiscExpense); err != nil {
		return core.PropertyTransaction{}, err
	}
	return t, t.Validate()
}

// TransactionPatch changes only the non-nil fields.
type TransactionPatch struct {
	PropertyDetails   *string
	Amount            *string
	Stamp             *string
	RegistrationFee   *string
	OfficeMiscExpense *string
	Date              *time.Time
}

// parsedPatch is a TransactionPatch after validation.
type parsedPatch struct {
	details                  *string
	amount                   *decimal.Decimal
	stamp, regFee, officeMsc *decimal.Decimal
	date                     *time.Time
}

func (p TransactionPatch) parse() (parsedPatch, error) {
	var out parsedPatch
	if p == (TransactionPatch{}) {
		return out, core.ErrEmptyPatch
	}
	if p.PropertyDetails != nil {
		v := strings.TrimSpace(*p.PropertyDetails)
		if v == "" {
			return out, core.ErrEmptyPropertyDetails
		}
		out.details = &v
	}
	if p.Amount != nil {
		v, err := core.ParseAmount(*p.Amount)
		if err != nil {
			return out, err
		}
		out.amount = &v
	}
	components := []struct {
		field string
		in    *string
		out   **decimal.Decimal
	}{
		{"stamp", p.Stamp, &out.stamp},
		{"registration fee", p.RegistrationFee, &out.regFee},
		{"office misc expense", p.OfficeMiscExpense, &out.officeMsc},
	}
	for _, c := range components {
		if c.in == nil {
			continue
		}
		v, err := core.ParseComponent(c.field, *c.in)
		if err != nil {
			return out, err
		}
		*c.out = &v
	}
	if p.Date != nil {
		if p.Date.IsZero() {
			return out, core.ErrMissingDate
		}
		d := p.Date.UTC()
		out.date = &d
	}
	return out, nil
}

func (p parsedPatch) apply(t *core.PropertyTransaction) {
	if p.details != nil {
		t.PropertyDetails = *p.details
	}
	if p.amount != nil {
		a := *p.amount
		t.Amount = &a
	}
	if p.stamp != nil {
		t.Stamp = *p.stamp
	}
	if p.regFee != nil {
		t.RegistrationFee = *p.regFee
	}
	if p.officeMsc != nil {
		t.OfficeMiscExpense = *p.officeMsc
	}
	if p.date != nil {
		t.Date = *p.date
	}
}

// EntryDraft describes a new misc entry. A zero Date means now.
type EntryDraft struct {
	Date time.Time
	Data core.MiscValues
}

// EntryPatch replaces the date and/or the whole category map.
type EntryPatch struct {
	Date *time.Time
	Data core.MiscValues
}

func (p EntryPatch) validate() error {
	if p.Date == nil && p.Data == nil {
		return core.ErrEmptyPatch
	}
	if p.Date != nil && p.Date.IsZero() {
		return core.ErrMissingDate
	}
	if p.Data != nil {
		return core.MiscEntry{Data: p.Data}.Validate()
	}
	return nil
}
