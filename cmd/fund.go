package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/etfcap/renderer"
	"github.com/google/subcommands"
)

// fundCmd implements the "fund" command.
type fundCmd struct{}

func (*fundCmd) Name() string     { return "fund" }
func (*fundCmd) Synopsis() string { return "display an iShares ETF from the product list" }
func (*fundCmd) Usage() string {
	return `ecap fund <ticker>

  Looks up the ticker in the iShares product list and displays the fund name,
  portfolio id and holdings file URL.
`
}

func (*fundCmd) SetFlags(f *flag.FlagSet) {}

func (*fundCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: fund expects exactly one ticker\n")
		return subcommands.ExitUsageError
	}
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	fund, err := a.dataset.Directory.Resolve(ctx, f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot find fund %q: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.FundMarkdown(fund))
	return subcommands.ExitSuccess
}
