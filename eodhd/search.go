package eodhd

import (
	"context"
	"fmt"
	"net/url"

	"github.com/etnz/etfcap"
)

// SearchResult matches the structure of a single item in the EODHD search API response.
type SearchResult struct {
	Code              string      `json:"Code"`
	Exchange          string      `json:"Exchange"`
	Name              string      `json:"Name"`
	Type              string      `json:"Type"`
	Country           string      `json:"Country"`
	Currency          string      `json:"Currency"`
	ISIN              string      `json:"ISIN"`
	PreviousClose     float64     `json:"previousClose"`
	PreviousCloseDate etfcap.Date `json:"previousCloseDate"`
}

// Symbol returns the market symbol of a US result, as accepted by Closes:
// "BRK-B" is "BRK.B".
func (r SearchResult) Symbol() string {
	return dashToDot(r.Code)
}

// Search searches for securities via EOD Historical Data API.
//
// It helps finding the quoted symbol of a holding that has none.
func (c *Client) Search(ctx context.Context, term string) ([]SearchResult, error) {
	addr := fmt.Sprintf("%s/search/%s?api_token=%s&fmt=json", c.baseURL(), url.PathEscape(term), url.QueryEscape(c.APIKey))

	results := make([]SearchResult, 0)
	if err := c.jwget(ctx, addr, &results); err != nil {
		return nil, fmt.Errorf("eodhd search %q: %w", term, err)
	}
	return results, nil
}
