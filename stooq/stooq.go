// Package stooq fetches daily closing prices from stooq.com.
//
// stooq needs no api key, it serves csv files like:
//
//	Date,Open,High,Low,Close,Volume
//	2026-10-16,247.2,249.0,245.6,247.5,42211000
package stooq

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/etnz/etfcap"
	"github.com/shopspring/decimal"
)

// BaseURL is the csv download endpoint.
const BaseURL = "https://stooq.com/q/d/l/"

// Client is an etfcap.QuoteSource for US listed securities.
type Client struct {
	BaseURL string       // BaseURL if empty
	HTTP    *http.Client // http.DefaultClient if nil
}

// Symbol returns the stooq symbol of a market symbol: lowercase, share
// classes with a dash and a market suffix, "BRK.B" is "brk-b.us".
func Symbol(symbol string) string {
	return strings.ToLower(strings.ReplaceAll(symbol, ".", "-")) + ".us"
}

// Closes implements etfcap.QuoteSource.
func (c *Client) Closes(ctx context.Context, symbol string, from, to etfcap.Date) (map[etfcap.Date]decimal.Decimal, error) {
	base := c.BaseURL
	if base == "" {
		base = BaseURL
	}
	q := url.Values{}
	q.Set("s", Symbol(symbol))
	q.Set("d1", from.Format("20060102"))
	q.Set("d2", to.Format("20060102"))
	q.Set("i", "d")
	addr := base + "?" + q.Encode()

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot create http request %q: %w", addr, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download from stooq for %s: %w", symbol, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download from stooq for %s: received status %s", symbol, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return parseCloses(body)
}

// parseCloses reads the stooq daily csv. "No data" means an unknown symbol
// or an empty range.
func parseCloses(body []byte) (map[etfcap.Date]decimal.Decimal, error) {
	closes := make(map[etfcap.Date]decimal.Decimal)
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.EqualFold(body, []byte("No data")) {
		return closes, nil
	}

	reader := csv.NewReader(bytes.NewReader(body))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	dateCol, closeCol := -1, -1
	for i, name := range records[0] {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date":
			dateCol = i
		case "close":
			closeCol = i
		}
	}
	if dateCol < 0 || closeCol < 0 {
		return nil, fmt.Errorf("unexpected stooq header %q", strings.Join(records[0], ","))
	}

	for _, record := range records[1:] {
		on, err := etfcap.ParseDate(record[dateCol])
		if err != nil {
			return nil, err
		}
		price, err := decimal.NewFromString(record[closeCol])
		if err != nil {
			return nil, fmt.Errorf("failed to parse close %q for date %q: %w", record[closeCol], record[dateCol], err)
		}
		closes[on] = price
	}
	return closes, nil
}
