// Package http provides HTTP server and handler implementations.
//
// This file implements decoding of JSON request bodies. Numeric fields may
// arrive as JSON numbers or numeric strings; both are kept as text and
// parsed strictly by the ledger service. Dates accept YYYY-MM-DD or
// RFC 3339.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ledgerbook/internal/core"
	"ledgerbook/internal/services"
)

// maxBodyBytes caps every request body.
const maxBodyBytes = 1 << 20

// errDecode marks a body that could not be read as the expected JSON.
var errDecode = fmt.Errorf("%w: malformed request body", core.ErrInvalidInput)

// decodeJSON reads exactly one JSON value from the body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errDecode)
		}
		return fmt.Errorf("%w: %v", errDecode, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", errDecode)
	}
	return nil
}

// flexString accepts a JSON string or number and keeps its text.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(sanitizeInput(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected a number or numeric string, got %s", b)
	}
	*f = flexString(n.String())
	return nil
}

func (f *flexString) ptr() *string {
	if f == nil {
		return nil
	}
	s := string(*f)
	return &s
}

// flexDate accepts "2006-01-02", RFC 3339 or null. Empty means zero.
type flexDate struct {
	time.Time
}

var dateLayouts = []string{"2006-01-02", time.RFC3339Nano}

func (d *flexDate) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid date %q (want YYYY-MM-DD or RFC 3339)", s)
}

func (d *flexDate) ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

type ledgerNameRequest struct {
	Name string `json:"name"`
}

type transactionRequest struct {
	PropertyDetails   string     `json:"propertyDetails"`
	Amount            flexString `json:"amount"`
	Stamp             flexString `json:"stamp"`
	RegistrationFee   flexString `json:"registrationFee"`
	OfficeMiscExpense flexString `json:"officeMiscExpense"`
	Date              flexDate   `json:"date"`
}

func (t transactionRequest) draft() services.TransactionDraft {
	return services.TransactionDraft{
		PropertyDetails:   sanitizeInput(t.PropertyDetails),
		Amount:            string(t.Amount),
		Stamp:             string(t.Stamp),
		RegistrationFee:   string(t.RegistrationFee),
		OfficeMiscExpense: string(t.OfficeMiscExpense),
		Date:              t.Date.Time,
	}
}

type transactionPatchRequest struct {
	PropertyDetails   *string     `json:"propertyDetails"`
	Amount            *flexString `json:"amount"`
	Stamp             *flexString `json:"stamp"`
	RegistrationFee   *flexString `json:"registrationFee"`
	OfficeMiscExpense *flexString `json:"officeMiscExpense"`
	Date              *flexDate   `json:"date"`
}

func (t transactionPatchRequest) patch() services.TransactionPatch {
	p := services.TransactionPatch{
		Amount:            t.Amount.ptr(),
		Stamp:             t.Stamp.ptr(),
		RegistrationFee:   t.RegistrationFee.ptr(),
		OfficeMiscExpense: t.OfficeMiscExpense.ptr(),
		Date:              t.Date.ptr(),
	}
	if t.PropertyDetails != nil {
		v := sanitizeInput(*t.PropertyDetails)
		p.PropertyDetails = &v
	}
	return p
}

type miscCreateRequest struct {
	Data core.MiscValues `json:"data"`
}

type entryRequest struct {
	Date flexDate        `json:"date"`
	Data core.MiscValues `json:"data"`
}

type entryPatchRequest struct {
	Date *flexDate       `json:"date"`
	Data core.MiscValues `json:"data"`
}

func (e entryPatchRequest) patch() services.EntryPatch {
	return services.EntryPatch{Date: e.Date.ptr(), Data: e.Data}
}
