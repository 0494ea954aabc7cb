// Command ledgerctl inspects and edits ledgers directly against the
// configured backend.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&budgetsCmd{}, "budgets")
	commander.Register(&blocksCmd{}, "budgets")
	commander.Register(&createBudgetCmd{}, "budgets")
	commander.Register(&addTxnCmd{}, "budgets")

	commander.Register(&miscCmd{}, "misc")
	commander.Register(&addEntryCmd{}, "misc")
	commander.Register(&dropCategoryCmd{}, "misc")

	commander.Register(&rollupCmd{}, "reports")
	commander.Register(&exportCmd{}, "reports")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
