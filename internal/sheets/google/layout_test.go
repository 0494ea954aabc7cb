package google

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"ledgerbook/internal/core"
	"ledgerbook/internal/sheets"

	"github.com/shopspring/decimal"
)

func TestSummaryValues(t *testing.T) {
	s := sheets.Summary{
		Owner: "u1",
		Rows: []core.MonthlyRollupRow{
			{Year: 2025, Month: 1, PropertyRemaining: decimal.RequireFromString("100"), MiscTotal: decimal.RequireFromString("30")},
			{Year: 2025, Month: 2, PropertyRemaining: decimal.Zero, MiscTotal: decimal.RequireFromString("12.5")},
		},
		Totals: core.RollupTotals{
			PropertyRemaining: decimal.RequireFromString("100"),
			MiscTotal:         decimal.RequireFromString("42.5"),
			Difference:        decimal.RequireFromString("57.5"),
		},
		GeneratedAt: time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC),
	}

	got := summaryValues(s)
	if len(got) != 7 {
		t.Fatalf("rows = %d, want 7", len(got))
	}
	if got[0][1] != "u1" || got[1][1] != "2025-03-01T08:00:00Z" {
		t.Fatalf("unexpected preamble: %v %v", got[0], got[1])
	}
	if len(got[2]) != 0 || got[3][0] != "Month" {
		t.Fatalf("unexpected header block: %v %v", got[2], got[3])
	}
	want := []any{"Jan 2025", "₹100.00", "₹30.00", "₹70.00"}
	for i, v := range want {
		if got[4][i] != v {
			t.Errorf("row 4 col %d = %v, want %v", i, got[4][i], v)
		}
	}
	if got[5][0] != "Feb 2025" || got[5][2] != "₹12.50" {
		t.Errorf("unexpected second row: %v", got[5])
	}
	if got[6][0] != "Total" || got[6][3] != "₹57.50" {
		t.Errorf("unexpected totals row: %v", got[6])
	}
}

func TestSummaryValuesEmpty(t *testing.T) {
	got := summaryValues(sheets.Summary{Owner: "u1"})
	if len(got) != 5 || got[4][0] != "Total" || got[4][1] != "₹0.00" {
		t.Fatalf("unexpected empty layout: %v", got)
	}
}

func TestTabTitle(t *testing.T) {
	cases := []struct {
		base, owner, want string
	}{
		{"Summary", "u1", "Summary u1"},
		{" Summary ", " a/b:c'd ", "Summary abcd"},
		{"Summary", "[x]*?\\", "Summary x"},
		{"", "u1", "u1"},
	}
	for _, tc := range cases {
		if got := tabTitle(tc.base, tc.owner); got != tc.want {
			t.Errorf("tabTitle(%q, %q) = %q, want %q", tc.base, tc.owner, got, tc.want)
		}
	}

	long := tabTitle("Summary", strings.Repeat("é", 200))
	if n := utf8.RuneCountInString(long); n != maxTabTitle {
		t.Errorf("long title has %d runes, want %d", n, maxTabTitle)
	}
}

func TestA1Range(t *testing.T) {
	if got := a1Range("Summary u1", "A:D"); got != "'Summary u1'!A:D" {
		t.Errorf("a1Range = %q", got)
	}
}
