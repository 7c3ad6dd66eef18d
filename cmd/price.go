package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/etfcap"
	"github.com/google/subcommands"
)

// priceCmd implements the "price" command.
type priceCmd struct {
	date string
}

func (*priceCmd) Name() string     { return "price" }
func (*priceCmd) Synopsis() string { return "display the closing price of securities" }
func (*priceCmd) Usage() string {
	return `ecap price [-d <date>] <symbol>...

  Displays the closing price of each symbol the way holdings are valued:
  fixed price instruments first, then aliases, then the -quotes source.
`
}

func (c *priceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date of the close (YYYY-MM-DD), defaults to yesterday")
}

func (c *priceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: price expects at least one symbol\n")
		return subcommands.ExitUsageError
	}
	on := etfcap.Today().Add(-1)
	if c.date != "" {
		var err error
		if on, err = etfcap.ParseDate(c.date); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	for _, symbol := range f.Args() {
		p, err := a.prices.PriceOf(ctx, symbol, on)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("%s\t%s\t%s\n", on, symbol, p.StringFixed(2))
	}
	return subcommands.ExitSuccess
}
