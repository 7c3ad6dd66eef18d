// Package ishares resolves iShares funds and parses their holdings.
//
// The product list is the json behind
// https://www.ishares.com/us/products/etf-product-list, holdings are the csv
// files available on each fund page.
package ishares

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/etfcap"
	"github.com/rs/zerolog"
)

const (
	// ProductListURL returns every iShares fund.
	ProductListURL = "https://www.ishares.com/us/products/etf-product-list/1522815705927.ajax?fileType=json"

	// HoldingsURLPattern is the holdings csv address, %s is the portfolio id.
	//
	// The fund name and file name in the path are the ones of SOXX, the server
	// ignores them and only the portfolio id matters.
	HoldingsURLPattern = "https://www.ishares.com/us/products/%s/ishares-phlx-semiconductor-etf/1467271812596.ajax?fileType=csv&fileName=SOXX_holdings&dataType=fund"
)

// product list column names.
const (
	colTicker      = "localExchangeTicker"
	colPortfolioID = "portfolioId"
	colName        = "fundShortName"
)

var bom = []byte("\xef\xbb\xbf")

// Directory resolves tickers into funds using the product list.
type Directory struct {
	Client          *http.Client // http.DefaultClient if nil
	URL             string       // ProductListURL if empty
	HoldingsPattern string       // HoldingsURLPattern if empty
	Log             zerolog.Logger
}

// snapshot is one download of the product list.
type snapshot struct {
	columns map[string]int
	rows    []any
}

// Resolve returns the fund whose ticker is exactly ticker.
//
// The product list is downloaded on every call.
func (d *Directory) Resolve(ctx context.Context, ticker string) (etfcap.Fund, error) {
	snap, err := d.fetch(ctx)
	if err != nil {
		return etfcap.Fund{}, err
	}
	for _, col := range []string{colTicker, colPortfolioID, colName} {
		if _, ok := snap.columns[col]; !ok {
			return etfcap.Fund{}, fmt.Errorf("%w: product list has no %q column", etfcap.ErrParse, col)
		}
	}

	for _, r := range snap.rows {
		row, ok := r.([]any)
		if !ok {
			continue
		}
		if snap.cell(row, colTicker) != ticker {
			continue
		}
		fund := etfcap.Fund{
			Ticker:      ticker,
			PortfolioID: snap.cell(row, colPortfolioID),
			Name:        snap.cell(row, colName),
		}
		fund.HoldingsURL = fmt.Sprintf(d.holdingsPattern(), fund.PortfolioID)
		d.Log.Debug().Str("ticker", fund.Ticker).Str("id", fund.PortfolioID).Msg("fund resolved")
		return fund, nil
	}
	return etfcap.Fund{}, fmt.Errorf("%w: no iShares ETF for symbol %s. Try searching at https://www.ishares.com/us/products/etf-product-list", etfcap.ErrNotFound, ticker)
}

func (d *Directory) holdingsPattern() string {
	if d.HoldingsPattern == "" {
		return HoldingsURLPattern
	}
	return d.HoldingsPattern
}

// fetch downloads and decodes the product list.
func (d *Directory) fetch(ctx context.Context) (*snapshot, error) {
	addr := d.URL
	if addr == "" {
		addr = ProductListURL
	}
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot create request for %q: %w", etfcap.ErrIO, addr, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot download product list: %w", etfcap.ErrIO, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: cannot http GET %v/%v: %v", etfcap.ErrIO, resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read product list: %w", etfcap.ErrIO, err)
	}
	return decodeProductList(body)
}

// decodeProductList parses the product list json:
//
//	{"columns": [{"name": "localExchangeTicker", ...}, ...], "data": [["IVV", ...], ...]}
func decodeProductList(body []byte) (*snapshot, error) {
	// the server adds a byte order mark.
	body = bytes.TrimPrefix(body, bom)

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: invalid product list: %w", etfcap.ErrParse, err)
	}

	names, err := jsonpath.Get("$.columns[*].name", doc)
	if err != nil {
		return nil, fmt.Errorf("%w: product list has no columns: %w", etfcap.ErrParse, err)
	}
	list, _ := names.([]any)
	snap := &snapshot{columns: make(map[string]int, len(list))}
	for i, n := range list {
		if name, ok := n.(string); ok {
			snap.columns[name] = i
		}
	}

	data, err := jsonpath.Get("$.data", doc)
	if err != nil {
		return nil, fmt.Errorf("%w: product list has no data: %w", etfcap.ErrParse, err)
	}
	snap.rows, _ = data.([]any)
	return snap, nil
}

// cell returns the value of a column as a string.
func (s *snapshot) cell(row []any, column string) string {
	i, ok := s.columns[column]
	if !ok || i >= len(row) {
		return ""
	}
	return stringify(row[i])
}

// stringify formats a json value the way it is displayed.
//
// Numeric cells are sometimes objects with a display value "d" and a raw
// value "r".
func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case map[string]any:
		for _, k := range []string{"r", "raw", "d", "display"} {
			if x, ok := v[k]; ok {
				return stringify(x)
			}
		}
		return ""
	default:
		return fmt.Sprint(v)
	}
}
