// Package eodhd fetches daily closing prices from eodhd.com.
package eodhd

import (
	"context"
	"net/http"
	"strings"

	"github.com/etnz/etfcap"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// APIKeyEnv is the environment variable holding the API key.
const APIKeyEnv = "EODHD_API_KEY"

// DemoKey is the public key of eodhd.com, it only serves a handful of tickers.
const DemoKey = "demo"

// BaseURL is the eodhd.com API root.
const BaseURL = "https://eodhd.com/api"

// Client is an etfcap.QuoteSource for US listed securities.
type Client struct {
	APIKey   string
	BaseURL  string       // BaseURL if empty
	Exchange string       // eodhd exchange code, "US" if empty
	HTTP     *http.Client // http.DefaultClient if nil
	Limiter  *rate.Limiter
}

// New returns a Client limited to 10 requests per second.
func New(apiKey string, client *http.Client) *Client {
	if apiKey == "" {
		apiKey = DemoKey
	}
	return &Client{
		APIKey:  apiKey,
		HTTP:    client,
		Limiter: rate.NewLimiter(rate.Limit(10), 1),
	}
}

func (c *Client) client() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

func (c *Client) baseURL() string {
	if c.BaseURL == "" {
		return BaseURL
	}
	return c.BaseURL
}

// Ticker returns the eodhd ticker of a market symbol, eodhd writes share
// classes with a dash: "BRK.B" is "BRK-B.US".
func (c *Client) Ticker(symbol string) string {
	exchange := c.Exchange
	if exchange == "" {
		exchange = "US"
	}
	return strings.ReplaceAll(symbol, ".", "-") + "." + exchange
}

// Closes implements etfcap.QuoteSource.
func (c *Client) Closes(ctx context.Context, symbol string, from, to etfcap.Date) (map[etfcap.Date]decimal.Decimal, error) {
	return c.fetchCloses(ctx, c.Ticker(symbol), from, to)
}

// dashToDot reverts Ticker for a code without exchange.
func dashToDot(code string) string { return strings.ReplaceAll(code, "-", ".") }
