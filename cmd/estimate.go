package cmd

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/etfcap"
	"github.com/etnz/etfcap/ishares"
	"github.com/etnz/etfcap/renderer"
	"github.com/google/subcommands"
	"golang.org/x/term"
)

// tickerPrompt is printed when no ticker is given on the command line.
const tickerPrompt = "Ticker Symbol of iShares ETF: "

// estimateCmd implements the "estimate" command.
type estimateCmd struct {
	quiet bool
}

func (*estimateCmd) Name() string     { return "estimate" }
func (*estimateCmd) Synopsis() string { return "compare an iShares ETF market capitalization with its holdings value" }
func (*estimateCmd) Usage() string {
	return `ecap estimate [-q] [<ticker>]

  Values every holding of an iShares ETF at the previous day close, and
  compares the total with the fund market capitalization (shares outstanding
  times the fund price).

  The ticker is read from the standard input when it is not given.
`
}

func (c *estimateCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.quiet, "q", false, "do not print a line for each holding")
}

func (c *estimateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var ticker string
	switch f.NArg() {
	case 0:
		var err error
		ticker, err = readTicker(os.Stdin, os.Stdout, term.IsTerminal(int(os.Stdin.Fd())))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	case 1:
		ticker = f.Arg(0)
	default:
		fmt.Fprintf(os.Stderr, "Error: estimate expects at most one ticker\n")
		return subcommands.ExitUsageError
	}

	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	fund, err := a.dataset.Directory.Resolve(ctx, ticker)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot find fund %q: %v\n", ticker, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.FundMarkdown(fund))

	engine := &etfcap.Engine{
		Holdings: fundHoldings{a.dataset, fund},
		Prices:   a.prices,
	}
	if !c.quiet {
		engine.Progress = func(n int, ct etfcap.Contribution) { fmt.Println(renderer.ProgressLine(n, ct)) }
	}

	report, err := engine.Evaluate(ctx, ticker)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot value %s: %v\n", ticker, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.ReportMarkdown(report))
	return subcommands.ExitSuccess
}

// readTicker reads a ticker from the first line of r, printing the prompt on
// w first when interactive.
func readTicker(r io.Reader, w io.Writer, interactive bool) (string, error) {
	if interactive {
		fmt.Fprint(w, tickerPrompt)
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("cannot read ticker: %w", err)
	}
	ticker := strings.TrimSpace(line)
	if ticker == "" {
		return "", errors.New("no ticker given")
	}
	return ticker, nil
}

// fundHoldings loads the holdings of a fund already resolved.
type fundHoldings struct {
	dataset *ishares.Dataset
	fund    etfcap.Fund
}

func (h fundHoldings) Load(ctx context.Context, ticker string) ([]etfcap.Holding, etfcap.Metadata, error) {
	if ticker != h.fund.Ticker {
		return h.dataset.Load(ctx, ticker)
	}
	return h.dataset.LoadFund(ctx, h.fund)
}
