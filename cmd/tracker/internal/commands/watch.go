package commands

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/subcommands"

	"github.com/GregMSThompson/transaction-tracker/cmd/tracker/internal/view"
	"github.com/GregMSThompson/transaction-tracker/internal/syncpoll"
)

type watchCmd struct {
	env *Env
	rangeFlags
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "follow transactions while the bank sync settles" }
func (*watchCmd) Usage() string {
	return `tracker watch [-start <date>] [-end <date>] [-sort <order>]

  Shows the transactions and keeps re-fetching until the sync settles.
  Keys: s sort, d date range, r refresh, q quit.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) { c.rangeFlags.set(f) }

func (c *watchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sort, err := view.ParseSort(c.sort)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	r, err := c.resolve(c.env.Now())
	if err != nil {
		return report(os.Stderr, err)
	}

	var prog *tea.Program
	poller := syncpoll.New(c.env.ctx(ctx), c.env.Client,
		syncpoll.WithInterval(c.env.Config.PollInterval),
		syncpoll.WithSettleWindow(c.env.Config.SettleWindow),
		syncpoll.WithOnUpdate(func(s syncpoll.Snapshot) {
			prog.Send(view.SnapshotMsg(s))
		}),
	)

	prog = tea.NewProgram(view.NewWatchModel(poller, r, sort), tea.WithAltScreen())
	_, err = prog.Run()
	poller.Stop()
	if err != nil {
		c.env.Log.Error("tui failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
