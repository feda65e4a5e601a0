package commands

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type linkTokenCmd struct {
	env *Env
}

func (*linkTokenCmd) Name() string     { return "link-token" }
func (*linkTokenCmd) Synopsis() string { return "create a link token for the bank linking flow" }
func (*linkTokenCmd) Usage() string {
	return `tracker link-token

  Prints a fresh link token to hand to the aggregator's link UI.
`
}
func (*linkTokenCmd) SetFlags(*flag.FlagSet) {}

func (c *linkTokenCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	tok, err := c.env.Client.LinkToken(c.env.ctx(ctx))
	if err != nil {
		return report(os.Stderr, err)
	}
	fmt.Fprintln(c.env.Out, tok)
	return subcommands.ExitSuccess
}

type exchangeCmd struct {
	env *Env
}

func (*exchangeCmd) Name() string     { return "exchange" }
func (*exchangeCmd) Synopsis() string { return "exchange a public token and store the credential" }
func (*exchangeCmd) Usage() string {
	return `tracker exchange <public_token>

  Completes bank linking with the public token returned by the link UI.
`
}
func (*exchangeCmd) SetFlags(*flag.FlagSet) {}

func (c *exchangeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	if err := c.env.Client.Exchange(c.env.ctx(ctx), f.Arg(0)); err != nil {
		return report(os.Stderr, err)
	}
	fmt.Fprintln(c.env.Out, "Bank account linked.")
	return subcommands.ExitSuccess
}

type institutionCmd struct {
	env *Env
}

func (*institutionCmd) Name() string     { return "institution" }
func (*institutionCmd) Synopsis() string { return "show the linked institution" }
func (*institutionCmd) Usage() string {
	return `tracker institution

  Prints the name of the linked bank.
`
}
func (*institutionCmd) SetFlags(*flag.FlagSet) {}

func (c *institutionCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	inst, err := c.env.Client.Institution(c.env.ctx(ctx))
	if err != nil {
		return report(os.Stderr, err)
	}
	fmt.Fprintln(c.env.Out, inst.Name)
	return subcommands.ExitSuccess
}

type unlinkCmd struct {
	env *Env
}

func (*unlinkCmd) Name() string     { return "unlink" }
func (*unlinkCmd) Synopsis() string { return "remove the stored bank credential" }
func (*unlinkCmd) Usage() string {
	return `tracker unlink
`
}
func (*unlinkCmd) SetFlags(*flag.FlagSet) {}

func (c *unlinkCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.env.Client.Unlink(c.env.ctx(ctx)); err != nil {
		return report(os.Stderr, err)
	}
	fmt.Fprintln(c.env.Out, "Bank account unlinked.")
	return subcommands.ExitSuccess
}
