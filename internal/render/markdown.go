// Package render turns ledgers, reconciliation blocks and rollups into
// markdown documents for terminal display.
package render

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"ledgerbook/internal/core"

	md "github.com/nao1215/markdown"
)

const dateLayout = "2006-01-02"

// cell keeps free text from breaking the table row it lands in.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(dateLayout)
}

// Budgets lists an owner's budgets with their totals.
func Budgets(owner string, budgets []core.Budget) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Budgets of %s", cell(owner)))
	if len(budgets) == 0 {
		doc.PlainText(md.Italic("No budgets."))
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"ID", "Name", "Transactions", "Deposited", "Spent", "Remaining"},
		Rows:   [][]string{},
	}
	for _, b := range budgets {
		table.Rows = append(table.Rows, []string{
			b.ID,
			cell(b.Name),
			fmt.Sprint(len(b.Transactions)),
			core.FormatAmount(b.TotalAmount),
			core.FormatAmount(b.TotalExpense),
			core.FormatAmount(b.Remaining),
		})
	}
	doc.Table(table)

	return doc.String()
}

// Blocks renders the reconciliation blocks of one budget. The remaining
// figure is shown on the last row of each block only.
func Blocks(budget core.Budget, blocks []core.Block) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(cell(budget.Name))
	if len(blocks) == 0 {
		doc.PlainText(md.Italic("No transactions."))
		return doc.String()
	}

	for _, blk := range blocks {
		anchor := "unanchored"
		if blk.Anchor.IsPositive() {
			anchor = "deposit " + core.FormatAmount(blk.Anchor)
		}
		doc.H2(fmt.Sprintf("Block %d (%s)", blk.Index+1, anchor))

		table := md.TableSet{
			Alignment: []md.TableAlignment{
				md.AlignLeft,
				md.AlignLeft,
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
			},
			Header: []string{"Date", "Property", "Amount", "Stamp", "Reg. fee", "Office misc", "Balance", "Remaining"},
			Rows:   [][]string{},
		}
		for _, row := range blk.Rows {
			txn := row.Transaction
			remaining := ""
			if row.ShowRemaining {
				remaining = core.FormatAmount(blk.Remaining)
			}
			table.Rows = append(table.Rows, []string{
				formatDate(txn.Date),
				cell(txn.PropertyDetails),
				core.FormatAmount(txn.Deposit()),
				core.FormatAmount(txn.Stamp),
				core.FormatAmount(txn.RegistrationFee),
				core.FormatAmount(txn.OfficeMiscExpense),
				core.FormatAmount(row.Balance),
				remaining,
			})
		}
		doc.Table(table)
	}
	doc.PlainText(fmt.Sprintf("%s %s", md.Bold("Remaining:"), core.FormatAmount(budget.Remaining)))

	return doc.String()
}

// MiscExpenses renders each misc ledger with one row per entry.
func MiscExpenses(owner string, ledgers []core.MiscExpense) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Miscellaneous expenses of %s", cell(owner)))
	if len(ledgers) == 0 {
		doc.PlainText(md.Italic("No misc ledgers."))
		return doc.String()
	}

	for _, m := range ledgers {
		doc.H2(m.ID)
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight},
			Header:    []string{"Date", "Categories", "Total"},
			Rows:      [][]string{},
		}
		for _, e := range m.Entries {
			table.Rows = append(table.Rows, []string{
				formatDate(e.Date),
				categories(e.Data),
				core.FormatAmount(e.Data.Total()),
			})
		}
		doc.Table(table)
		doc.PlainText(fmt.Sprintf("%s %s", md.Bold("Total:"), core.FormatAmount(m.TotalMiscExp)))
	}

	return doc.String()
}

func categories(v core.MiscValues) string {
	if len(v) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = cell(k) + " " + core.FormatAmount(v[k])
	}
	return strings.Join(parts, ", ")
}

// Rollup renders the monthly summary table with its totals row.
func Rollup(owner string, rows []core.MonthlyRollupRow, totals core.RollupTotals) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Monthly rollup of %s", cell(owner)))
	if len(rows) == 0 {
		doc.PlainText(md.Italic("No dated activity."))
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Month", "Property remaining", "Misc total", "Difference"},
		Rows:   [][]string{},
	}
	for _, r := range rows {
		table.Rows = append(table.Rows, []string{
			r.Label(),
			core.FormatAmount(r.PropertyRemaining),
			core.FormatAmount(r.MiscTotal),
			core.FormatAmount(r.Difference()),
		})
	}
	table.Rows = append(table.Rows, []string{
		md.Bold("Total"),
		md.Bold(core.FormatAmount(totals.PropertyRemaining)),
		md.Bold(core.FormatAmount(totals.MiscTotal)),
		md.Bold(core.FormatAmount(totals.Difference)),
	})
	doc.Table(table)

	return doc.String()
}
