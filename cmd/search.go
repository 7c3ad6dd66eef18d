package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/etfcap/eodhd"
	"github.com/google/subcommands"
	"gopkg.in/yaml.v3"
)

// searchCmd implements the "search" command.
type searchCmd struct {
	alias string
}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "search a quoted symbol on EODHD" }
func (*searchCmd) Usage() string {
	return `ecap search [-alias <ticker>] <search term>

  Searches for securities via EOD Historical Data API. Use it to find the
  quoted symbol of a holding that has no price, and with -alias, prints the
  -instruments yaml entries mapping the holding ticker to each US result.
`
}

func (c *searchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.alias, "alias", "", "holdings ticker to print instruments aliases for")
}

func (c *searchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: a search term is required.")
		return subcommands.ExitUsageError
	}
	term := strings.Join(f.Args(), " ")

	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	results, err := eodhd.New(eodhdKey(), a.client).Search(ctx, term)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error searching securities: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(results) == 0 {
		fmt.Printf("No results found for '%s'.\n", term)
		return subcommands.ExitSuccess
	}

	for _, item := range results {
		fmt.Printf("%s.%s\t%s\t%s\t%s\t%.2f on %s\n", item.Code, item.Exchange, item.Name, item.Type, item.Currency, item.PreviousClose, item.PreviousCloseDate)
		if c.alias == "" || item.Exchange != "US" {
			continue
		}
		out, err := aliasEntry(c.alias, item.Symbol())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Print(out)
	}
	return subcommands.ExitSuccess
}

// aliasEntry returns the instruments file content mapping ticker to symbol.
func aliasEntry(ticker, symbol string) (string, error) {
	out, err := yaml.Marshal(map[string]map[string]string{"aliases": {ticker: symbol}})
	if err != nil {
		return "", err
	}
	return string(out), nil
}
