package commands

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/subcommands"

	"github.com/GregMSThompson/transaction-tracker/cmd/tracker/internal/view"
)

type transactionsCmd struct {
	env *Env
	rangeFlags
}

func (*transactionsCmd) Name() string     { return "transactions" }
func (*transactionsCmd) Synopsis() string { return "print the transactions of a date range once" }
func (*transactionsCmd) Usage() string {
	return `tracker transactions [-start <date>] [-end <date>] [-sort <order>]

  Fetches the transactions once and prints them as a table.
`
}

func (c *transactionsCmd) SetFlags(f *flag.FlagSet) { c.rangeFlags.set(f) }

func (c *transactionsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sort, err := view.ParseSort(c.sort)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	r, err := c.resolve(c.env.Now())
	if err != nil {
		return report(os.Stderr, err)
	}

	txs, err := c.env.Client.Fetch(c.env.ctx(ctx), r)
	if err != nil {
		return report(os.Stderr, err)
	}

	if len(txs) == 0 {
		fmt.Fprintf(c.env.Out, "No transactions between %s and %s.\n", r.Start, r.End)
		return subcommands.ExitSuccess
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(view.Headers...)
	for _, tx := range view.Sort(txs, sort) {
		t.Row(view.Row(tx)...)
	}
	fmt.Fprintln(c.env.Out, t.Render())
	return subcommands.ExitSuccess
}
