package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/etfcap/renderer"
	"github.com/google/subcommands"
)

// holdingsCmd implements the "holdings" command.
type holdingsCmd struct{}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "display the holdings of an iShares ETF" }
func (*holdingsCmd) Usage() string {
	return `ecap holdings <ticker>

  Displays the holdings of an iShares ETF and the metadata of its holdings
  file. The file is downloaded into -holdings-dir the first time.
`
}

func (*holdingsCmd) SetFlags(f *flag.FlagSet) {}

func (*holdingsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: holdings expects exactly one ticker\n")
		return subcommands.ExitUsageError
	}
	ticker := f.Arg(0)

	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	holdings, meta, err := a.dataset.Load(ctx, ticker)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot load holdings of %s: %v\n", ticker, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.HoldingsMarkdown(ticker, holdings, meta))
	return subcommands.ExitSuccess
}
