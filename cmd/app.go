// Package cmd implements the ecap commands.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/etfcap"
	"github.com/etnz/etfcap/eodhd"
	"github.com/etnz/etfcap/httpcache"
	"github.com/etnz/etfcap/ishares"
	"github.com/etnz/etfcap/stooq"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Commands is the list of ecap commands, a main package registers them.
var Commands = []subcommands.Command{
	&estimateCmd{},
	&fundCmd{},
	&holdingsCmd{},
	&downloadCmd{},
	&priceCmd{},
	&searchCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	cacheKind   = flag.String("cache", "sqlite", "HTTP response cache: sqlite, redis, memory or none")
	cachePath   = flag.String("cache-path", "etfcap_cache.db", "Path to the sqlite cache database")
	redisAddr   = flag.String("redis-addr", "localhost:6379", "Address of the redis server used by -cache=redis")
	holdingsDir = flag.String("holdings-dir", ".", "Folder where holdings files are downloaded")
	instruments = flag.String("instruments", "", "Path to a yaml file of fixed prices and symbol aliases, merged over the built-in table")
	quotes      = flag.String("quotes", "eodhd", "Source of closing prices: eodhd or stooq")
	eodhdAPIKey = flag.String("eodhd-api-key", "", "EODHD API key. This flag takes precedence over the "+eodhd.APIKeyEnv+" environment variable. You can get one at https://eodhd.com/")
	Verbose     = flag.Bool("v", false, "log HTTP requests and cache hits")
)

// QuoteSources are the valid values of the -quotes flag.
var QuoteSources = []string{"eodhd", "stooq"}

// CacheKinds are the valid values of the -cache flag.
var CacheKinds = []string{"sqlite", "redis", "memory", "none"}

// newLogger returns the console logger on stderr.
func newLogger(w io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if *Verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).Level(level).With().Timestamp().Logger()
}

// app holds what a command needs to value a fund.
type app struct {
	log     zerolog.Logger
	client  *http.Client
	closers []io.Closer
	dataset *ishares.Dataset
	prices  *etfcap.PriceResolver
}

// newApp configures the application from the global flags and the
// environment. The caller must Close it.
func newApp() (*app, error) {
	// a missing .env file is fine.
	_ = godotenv.Load()

	a := &app{log: newLogger(os.Stderr)}

	cache, err := a.openCache()
	if err != nil {
		return nil, err
	}
	a.client = httpcache.NewClient(cache, httpcache.DefaultTTL, a.log)

	source, err := a.quoteSource(*quotes)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.prices = etfcap.NewPriceResolver(source)
	if *instruments != "" {
		in, err := etfcap.LoadInstruments(*instruments)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.prices.Instruments = in
	}

	a.dataset = &ishares.Dataset{
		Directory: &ishares.Directory{Client: a.client, Log: a.log},
		Store:     &ishares.FileStore{Dir: *holdingsDir, Client: a.client, Log: a.log},
		Log:       a.log,
	}
	return a, nil
}

func (a *app) openCache() (httpcache.Cache, error) {
	switch *cacheKind {
	case "sqlite":
		c, err := httpcache.OpenSQLite(*cachePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, c)
		if n, err := c.Purge(context.Background()); err != nil {
			a.log.Warn().Err(err).Msg("cannot purge expired cache entries")
		} else {
			a.log.Debug().Int64("entries", n).Msg("expired cache entries purged")
		}
		return c, nil
	case "redis":
		c := httpcache.NewRedis(*redisAddr)
		a.closers = append(a.closers, c)
		return c, nil
	case "memory":
		return httpcache.NewMemory(), nil
	case "none":
		return httpcache.Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown cache %q, valid values are %v", *cacheKind, CacheKinds)
	}
}

// eodhdKey retrieves the EODHD API key from the command-line flag or the environment variable.
// It prioritizes the flag over the environment variable.
func eodhdKey() string {
	if *eodhdAPIKey != "" {
		return *eodhdAPIKey
	}
	return os.Getenv(eodhd.APIKeyEnv)
}

func (a *app) quoteSource(name string) (etfcap.QuoteSource, error) {
	switch name {
	case "eodhd":
		key := eodhdKey()
		if key == "" {
			a.log.Warn().Msgf("%s is not set, using the %q key which only quotes a few symbols", eodhd.APIKeyEnv, eodhd.DemoKey)
		}
		return eodhd.New(key, a.client), nil
	case "stooq":
		return &stooq.Client{HTTP: a.client}, nil
	default:
		return nil, fmt.Errorf("unknown quote source %q, valid values are %v", name, QuoteSources)
	}
}

// Close releases the cache.
func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// printMarkdown renders md for the terminal, or prints it as is if it cannot.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
