package google

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"ledgerbook/internal/core"
	"ledgerbook/internal/sheets"
)

// maxTabTitle is the longest sheet title the Sheets API accepts.
const maxTabTitle = 100

var summaryHeader = []any{"Month", "Property Remaining", "Misc Total", "Difference"}

// summaryColumns is the A1 column span written by summaryValues.
const summaryColumns = "A:D"

// summaryValues lays out a summary as a values matrix: owner and
// generation time, a blank row, the header, one row per month and a
// trailing totals row.
func summaryValues(s sheets.Summary) [][]any {
	out := make([][]any, 0, len(s.Rows)+5)
	out = append(out,
		[]any{"Owner", s.Owner},
		[]any{"Generated", s.GeneratedAt.UTC().Format(time.RFC3339)},
		[]any{},
		summaryHeader,
	)
	for _, r := range s.Rows {
		out = append(out, []any{
			r.Label(),
			core.FormatAmount(r.PropertyRemaining),
			core.FormatAmount(r.MiscTotal),
			core.FormatAmount(r.Difference()),
		})
	}
	out = append(out, []any{
		"Total",
		core.FormatAmount(s.Totals.PropertyRemaining),
		core.FormatAmount(s.Totals.MiscTotal),
		core.FormatAmount(s.Totals.Difference),
	})
	return out
}

// tabTitle returns "<base> <owner>" with characters the Sheets UI rejects
// removed and the result truncated to maxTabTitle runes.
func tabTitle(base, owner string) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', '*', '?', '/', '\\', ':', '\'':
			return -1
		}
		return r
	}, strings.TrimSpace(owner))
	title := strings.TrimSpace(strings.TrimSpace(base) + " " + clean)
	if utf8.RuneCountInString(title) <= maxTabTitle {
		return title
	}
	return string([]rune(title)[:maxTabTitle])
}

// a1Range quotes the tab title for use in an A1 range.
func a1Range(tab, cells string) string {
	return fmt.Sprintf("'%s'!%s", tab, cells)
}
