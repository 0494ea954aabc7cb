package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyRollupRow is the merged figure of both ledger kinds for one
// calendar month.
type MonthlyRollupRow struct {
	Year              int             `json:"year"`
	Month             int             `json:"month"` // 1-12
	PropertyRemaining decimal.Decimal `json:"propertyRemaining"`
	MiscTotal         decimal.Decimal `json:"miscTotal"`
}

// Difference is PropertyRemaining - MiscTotal. Display only.
func (r MonthlyRollupRow) Difference() decimal.Decimal {
	return r.PropertyRemaining.Sub(r.MiscTotal)
}

// Label formats the month as "Jan 2006".
func (r MonthlyRollupRow) Label() string {
	return time.Date(r.Year, time.Month(r.Month), 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
}

// RollupTotals are the column totals shown under a rollup table.
type RollupTotals struct {
	PropertyRemaining decimal.Decimal `json:"propertyRemaining"`
	MiscTotal         decimal.Decimal `json:"miscTotal"`
	Difference        decimal.Decimal `json:"difference"`
}

type monthKey struct {
	year  int
	month int
}

func keyOf(t time.Time) monthKey {
	t = t.UTC()
	return monthKey{year: t.Year(), month: int(t.Month())}
}

// MonthlyRollup merges every property transaction and misc entry of one
// owner into one row per (year, month), sorted ascending. The two sides
// are aggregated independently; a month present on one side only gets a
// zero for the other. Undated transactions and entries have no month and
// are skipped. Months are calendar months in UTC.
func MonthlyRollup(budgets []Budget, miscs []MiscExpense) []MonthlyRollupRow {
	property := map[monthKey]decimal.Decimal{}
	misc := map[monthKey]decimal.Decimal{}

	for _, b := range budgets {
		for _, t := range b.Transactions {
			if t.Date.IsZero() {
				continue
			}
			k := keyOf(t.Date)
			property[k] = property[k].Add(t.Net())
		}
	}
	for _, m := range miscs {
		for _, e := range m.Entries {
			if e.Date.IsZero() {
				continue
			}
			k := keyOf(e.Date)
			misc[k] = misc[k].Add(e.Data.Total())
		}
	}

	keys := make([]monthKey, 0, len(property)+len(misc))
	for k := range property {
		keys = append(keys, k)
	}
	for k := range misc {
		if _, ok := property[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	rows := make([]MonthlyRollupRow, len(keys))
	for i, k := range keys {
		rows[i] = MonthlyRollupRow{
			Year:              k.year,
			Month:             k.month,
			PropertyRemaining: property[k],
			MiscTotal:         misc[k],
		}
	}
	return rows
}

// SummarizeRollup adds up the rollup columns.
func SummarizeRollup(rows []MonthlyRollupRow) RollupTotals {
	var t RollupTotals
	for _, r := range rows {
		t.PropertyRemaining = t.PropertyRemaining.Add(r.PropertyRemaining)
		t.MiscTotal = t.MiscTotal.Add(r.MiscTotal)
	}
	t.Difference = t.PropertyRemaining.Sub(t.MiscTotal)
	return t
}
