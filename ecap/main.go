// ecap compares the market capitalization of iShares ETFs with the value of
// their holdings.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"

	"github.com/etnz/etfcap/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	// exits when called by the shell to complete a command line.
	completion(cmd.Commands).Complete("ecap")

	flag.Parse()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(int(commander.Execute(ctx)))
}

// completion describes the commands and flags to the shell completion.
func completion(commands []subcommands.Command) *complete.Command {
	sub := map[string]*complete.Command{
		"help":  {Args: predict.Set(names(commands))},
		"flags": {},
	}
	for _, c := range commands {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		flags := make(map[string]complete.Predictor)
		fs.VisitAll(func(f *flag.Flag) { flags[f.Name] = predict.Something })
		sub[c.Name()] = &complete.Command{Flags: flags}
	}
	return &complete.Command{
		Sub: sub,
		Flags: map[string]complete.Predictor{
			"cache":         predict.Set(cmd.CacheKinds),
			"cache-path":    predict.Files("*.db"),
			"redis-addr":    predict.Something,
			"holdings-dir":  predict.Dirs("*"),
			"instruments":   predict.Files("*.yaml"),
			"quotes":        predict.Set(cmd.QuoteSources),
			"eodhd-api-key": predict.Something,
			"v":             predict.Nothing,
		},
	}
}

func names(commands []subcommands.Command) []string {
	names := make([]string, 0, len(commands))
	for _, c := range commands {
		names = append(names, c.Name())
	}
	return names
}
