package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"ledgerbook/internal/core"
	"ledgerbook/internal/render"
	"ledgerbook/internal/services"
	gsheet "ledgerbook/internal/sheets/google"
	"ledgerbook/internal/worker"

	"github.com/google/subcommands"
)

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, usageErr("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

type budgetsCmd struct{}

func (*budgetsCmd) Name() string     { return "budgets" }
func (*budgetsCmd) Synopsis() string { return "list the owner's budgets with totals" }
func (*budgetsCmd) Usage() string {
	return `ledgerctl -owner <owner> budgets

  Lists every budget of the owner.
`
}
func (*budgetsCmd) SetFlags(*flag.FlagSet) {}

func (*budgetsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, s *session, owner string) error {
		list, err := s.svc.ListBudgets(ctx, owner)
		if err != nil {
			return err
		}
		printMarkdown(render.Budgets(owner, list))
		return nil
	})
}

type blocksCmd struct{}

func (*blocksCmd) Name() string     { return "blocks" }
func (*blocksCmd) Synopsis() string { return "show the reconciliation blocks of a budget" }
func (*blocksCmd) Usage() string {
	return `ledgerctl -owner <owner> blocks <budget-id>

  Splits the budget's transactions into deposit blocks with running balances.
`
}
func (*blocksCmd) SetFlags(*flag.FlagSet) {}

func (*blocksCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, s *session, owner string) error {
		if f.NArg() != 1 {
			return usageErr("expected exactly one budget id")
		}
		id := f.Arg(0)
		blocks, err := s.svc.BudgetBlocks(ctx, id, owner)
		if err != nil {
			return err
		}
		b, err := s.svc.GetBudget(ctx, id)
		if err != nil {
			return err
		}
		printMarkdown(render.Blocks(b, blocks))
		return nil
	})
}

type createBudgetCmd struct{}

func (*createBudgetCmd) Name() string     { return "create-budget" }
func (*createBudgetCmd) Synopsis() string { return "create an empty budget" }
func (*createBudgetCmd) Usage() string {
	return `ledgerctl -owner <owner> create-budget <name>
`
}
func (*createBudgetCmd) SetFlags(*flag.FlagSet) {}

func (*createBudgetCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, s *session, owner string) error {
		b, err := s.svc.CreateLedger(ctx, owner, strings.Join(f.Args(), " "))
		if err != nil {
			return err
		}
		fmt.Println(b.ID)
		return nil
	})
}

type addTxnCmd struct {
	details, amount, stamp, registration, office, date string
}

func (*addTxnCmd) Name() string     { return "add-txn" }
func (*addTxnCmd) Synopsis() string { return "append a property transaction to a budget" }
func (*addTxnCmd) Usage() string {
	return `ledgerctl -owner <owner> add-txn -details <text> -amount <n> [-stamp n] [-reg n] [-office n] [-date YYYY-MM-DD] <budget-id>

  Appends a transaction. A positive amount is a deposit.
`
}

func (c *addTxnCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.details, "details", "", "Property details")
	f.StringVar(&c.amount, "amount", "0", "Deposited amount")
	f.StringVar(&c.stamp, "stamp", "", "Stamp duty")
	f.StringVar(&c.registration, "reg", "", "Registration fee")
	f.StringVar(&c.office, "office", "", "Office miscellaneous expense")
	f.StringVar(&c.date, "date", "", "Transaction date (defaults to today)")
}

func (c *addTxnCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, s *session, owner string) error {
		if f.NArg() != 1 {
			return usageErr("expected exactly one budget id")
		}
		date, err := parseDate(c.date)
		if err != nil {
			return err
		}
		b, err := s.svc.AppendTransaction(ctx, f.Arg(0), owner, services.TransactionDraft{
			PropertyDetails:   c.details,
			Amount:            c.amount,
			Stamp:             c.stamp,
			RegistrationFee:   c.registration,
			OfficeMiscExpense: c.office,
			Date:              date,
		})
		if err != nil {
			return err
		}
		printMarkdown(render.Blocks(b, s.svc.PartitionBlocks(b)))
		return nil
	})
}

type miscCmd struct{}

func (*miscCmd) Name() string     { return "misc" }
func (*miscCmd) Synopsis() string { return "list the owner's misc expense ledgers" }
func (*miscCmd) Usage() string {
	return `ledgerctl -owner <owner> misc
`
}
func (*miscCmd) SetFlags(*flag.FlagSet) {}

func (*miscCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, s *session, owner string) error {
		list, err := s.svc.ListMiscExpenses(ctx, owner)
		if err != nil {
			return err
		}
		printMarkdown(render.MiscExpenses(owner, list))
		return nil
	})
}

type addEntryCmd struct {
	date string
}

func (*addEntryCmd) Name() string     { return "add-entry" }
func (*addEntryCmd) Synopsis() string { return "append a dated entry to a misc ledger" }
func (*addEntryCmd) Usage() string {
	return `ledgerctl -owner <owner> add-entry [-date YYYY-MM-DD] <misc-id|new> <category=amount>...

  Appends one entry. With "new" a misc ledger is created first.
`
}

func (c *addEntryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "date", "", "Entry date (defaults to today)")
}

func (c *addEntryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, s *session, owner string) error {
		if f.NArg() < 2 {
			return usageErr("expected a misc id and at least one category=amount")
		}
		raw := make(map[string]any, f.NArg()-1)
		for _, arg := range f.Args()[1:] {
			k, v, ok := strings.Cut(arg, "=")
			if !ok {
				return usageErr("%q is not category=amount", arg)
			}
			raw[k] = v
		}
		date, err := parseDate(c.date)
		if err != nil {
			return err
		}

		id := f.Arg(0)
		if id == "new" {
			m, err := s.svc.CreateMiscLedger(ctx, owner, nil)
			if err != nil {
				return err
			}
			id = m.ID
		}
		m, err := s.svc.AppendEntry(ctx, id, owner, services.EntryDraft{Date: date, Data: core.CoerceValues(raw)})
		if err != nil {
			return err
		}
		printMarkdown(render.MiscExpenses(owner, []core.MiscExpense{m}))
		return nil
	})
}

type dropCategoryCmd struct{}

func (*dropCategoryCmd) Name() string { return "drop-category" }
func (*dropCategoryCmd) Synopsis() string {
	return "remove a category from every entry of a misc ledger"
}
func (*dropCategoryCmd) Usage() string {
	return `ledgerctl -owner <owner> drop-category <misc-id> <category>

  Entries left without categories are kept.
`
}
func (*dropCategoryCmd) SetFlags(*flag.FlagSet) {}

func (*dropCategoryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, s *session, owner string) error {
		if f.NArg() != 2 {
			return usageErr("expected a misc id and a category")
		}
		m, err := s.svc.RemoveEntriesByCategory(ctx, f.Arg(0), owner, f.Arg(1))
		if err != nil {
			return err
		}
		printMarkdown(render.MiscExpenses(owner, []core.MiscExpense{m}))
		return nil
	})
}

type rollupCmd struct{}

func (*rollupCmd) Name() string     { return "rollup" }
func (*rollupCmd) Synopsis() string { return "show the monthly rollup of all the owner's ledgers" }
func (*rollupCmd) Usage() string {
	return `ledgerctl -owner <owner> rollup
`
}
func (*rollupCmd) SetFlags(*flag.FlagSet) {}

func (*rollupCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, s *session, owner string) error {
		r, err := s.svc.MonthlyRollup(ctx, owner)
		if err != nil {
			return err
		}
		printMarkdown(render.Rollup(owner, r.Rows, r.Totals))
		return nil
	})
}

type exportCmd struct{}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the owner's rollup to the summary spreadsheet now" }
func (*exportCmd) Usage() string {
	return `ledgerctl -owner <owner> export

  Uses GOOGLE_SPREADSHEET_ID and the service account settings of the worker.
`
}
func (*exportCmd) SetFlags(*flag.FlagSet) {}

func (*exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, s *session, owner string) error {
		client, err := gsheet.New(ctx, gsheet.Options{
			SpreadsheetID:   s.cfg.GoogleSpreadsheetID,
			SheetName:       s.cfg.GoogleSummarySheetName,
			CredentialsJSON: s.cfg.GoogleServiceAccountJSON,
			CredentialsFile: s.cfg.GoogleServiceAccountFile,
			Logger:          s.logger,
		})
		if err != nil {
			return err
		}
		exporter := worker.NewExportWorker(s.svc, client, worker.DefaultConfig(), s.logger)
		if err := exporter.ExportOwner(ctx, owner); err != nil {
			return err
		}
		fmt.Printf("Exported rollup of %s\n", owner)
		return nil
	})
}
