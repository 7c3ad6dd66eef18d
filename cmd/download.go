package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// downloadCmd implements the "download" command.
type downloadCmd struct{}

func (*downloadCmd) Name() string     { return "download" }
func (*downloadCmd) Synopsis() string { return "download the holdings file of iShares ETFs again" }
func (*downloadCmd) Usage() string {
	return `ecap download <ticker>...

  Downloads the holdings file of each ETF into -holdings-dir, replacing any
  previous copy.
`
}

func (*downloadCmd) SetFlags(f *flag.FlagSet) {}

func (*downloadCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: download expects at least one ticker\n")
		return subcommands.ExitUsageError
	}
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	for _, ticker := range f.Args() {
		fund, path, err := a.dataset.Download(ctx, ticker)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot download holdings of %s: %v\n", ticker, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("%s\t%s\t%s\n", fund.Ticker, fund.Name, path)
	}
	return subcommands.ExitSuccess
}
