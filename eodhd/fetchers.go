package eodhd

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/etnz/etfcap"
	"github.com/shopspring/decimal"
)

// fetchCloses returns the daily close prices for a given EODHD ticker.
// The EODHD ticker format is typically "SYMBOL.EXCHANGECODE".
func (c *Client) fetchCloses(ctx context.Context, ticker string, from, to etfcap.Date) (map[etfcap.Date]decimal.Decimal, error) {
	// https://eodhd.com/api/eod/MCD.US?api_token=demo&fmt=json&from=2024-02-12&to=2024-02-13
	// [
	//
	//	{
	//		"date": "2024-02-13",
	//		"open": 291.5,
	//		"high": 292.91,
	//		"low": 288.7,
	//		"close": 290.27,
	//		"adjusted_close": 282.1,
	//		"volume": 3358000
	//	  },
	//
	// bounds are included in the response.
	addr := fmt.Sprintf("%s/eod/%s?fmt=json&api_token=%s&from=%s&to=%s",
		c.baseURL(), url.PathEscape(ticker), url.QueryEscape(c.APIKey), from, to)
	type Info struct {
		Date  etfcap.Date     `json:"date"`
		Close decimal.Decimal `json:"close"`
	}

	// that's the payload
	content := make([]Info, 0)
	err := c.jwget(ctx, addr, &content)
	if errors.Is(err, errNotFound) {
		// unknown ticker, no rows.
		return map[etfcap.Date]decimal.Decimal{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("eodhd %s: %w", ticker, err)
	}

	closes := make(map[etfcap.Date]decimal.Decimal, len(content))
	for _, info := range content {
		closes[info.Date] = info.Close
	}
	return closes, nil
}
