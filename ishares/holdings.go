package ishares

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/etfcap"
	"github.com/rs/zerolog"
)

// holdings csv column names.
const (
	colHoldingTicker = "Ticker"
	colHoldingName   = "Name"
	colHoldingWeight = "Weight (%)"
	colHoldingShares = "Shares"
)

// ParseHoldings reads an iShares holdings csv file.
//
// The file starts with a few "key,value" rows, collected as Metadata, then a
// header row whose first cell is "Ticker", then one row per holding. Rows
// that are neither are ignored, and so are holding rows before the header.
func ParseHoldings(r io.Reader) ([]etfcap.Holding, etfcap.Metadata, error) {
	br := bufio.NewReader(r)
	// the server adds a byte order mark.
	if b, err := br.Peek(len(bom)); err == nil && bytes.Equal(b, bom) {
		br.Discard(len(bom))
	}
	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	meta := make(etfcap.Metadata)
	var holdings []etfcap.Holding
	var columns map[string]int

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: failed to read csv: %w", etfcap.ErrParse, err)
		}

		switch {
		case len(record) == 2:
			meta[record[0]] = record[1]
		case len(record) > 3 && strings.Contains(strings.ToLower(record[0]), "ticker"):
			columns = make(map[string]int, len(record))
			for i, cell := range record {
				columns[cell] = i
			}
		case len(record) > 3:
			if columns == nil {
				continue
			}
			h, err := parseHolding(columns, record)
			if err != nil {
				line, _ := reader.FieldPos(0)
				return nil, nil, fmt.Errorf("line %d: %w", line, err)
			}
			holdings = append(holdings, h)
		}
	}
	return holdings, meta, nil
}

// parseHolding reads a holding row using the header columns.
func parseHolding(columns map[string]int, record []string) (etfcap.Holding, error) {
	get := func(name string) (string, error) {
		i, ok := columns[name]
		if !ok {
			return "", fmt.Errorf("%w: no %q column in header", etfcap.ErrParse, name)
		}
		if i >= len(record) {
			return "", fmt.Errorf("%w: row has %d cells, %q is column %d", etfcap.ErrParse, len(record), name, i+1)
		}
		return record[i], nil
	}

	var h etfcap.Holding
	var err error
	if h.Ticker, err = get(colHoldingTicker); err != nil {
		return h, err
	}
	if h.Name, err = get(colHoldingName); err != nil {
		return h, err
	}
	weight, err := get(colHoldingWeight)
	if err != nil {
		return h, err
	}
	if h.Weight, err = etfcap.ParseWeight(weight); err != nil {
		return h, fmt.Errorf("%s: %w", h.Ticker, err)
	}
	shares, err := get(colHoldingShares)
	if err != nil {
		return h, err
	}
	if h.Shares, err = etfcap.ParseShares(shares); err != nil {
		return h, fmt.Errorf("%s: %w", h.Ticker, err)
	}
	return h, nil
}

// Dataset loads the holdings of iShares funds.
type Dataset struct {
	Directory *Directory
	Store     *FileStore
	Log       zerolog.Logger
}

// Load resolves the fund and returns its holdings.
func (d *Dataset) Load(ctx context.Context, ticker string) ([]etfcap.Holding, etfcap.Metadata, error) {
	fund, err := d.Directory.Resolve(ctx, ticker)
	if err != nil {
		return nil, nil, err
	}
	return d.LoadFund(ctx, fund)
}

// LoadFund returns the holdings of an already resolved fund.
func (d *Dataset) LoadFund(ctx context.Context, fund etfcap.Fund) ([]etfcap.Holding, etfcap.Metadata, error) {
	content, err := d.Store.Fetch(ctx, fund)
	if err != nil {
		return nil, nil, err
	}
	holdings, meta, err := ParseHoldings(bytes.NewReader(content))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", d.Store.Path(fund.Ticker), err)
	}
	d.Log.Info().Str("ticker", fund.Ticker).Int("holdings", len(holdings)).Msg("holdings loaded")
	return holdings, meta, nil
}

// Download resolves the fund and downloads its holdings file again, even if
// there is a local copy. It returns the fund and the local file path.
func (d *Dataset) Download(ctx context.Context, ticker string) (etfcap.Fund, string, error) {
	fund, err := d.Directory.Resolve(ctx, ticker)
	if err != nil {
		return etfcap.Fund{}, "", err
	}
	if _, err := d.Store.Download(ctx, fund); err != nil {
		return fund, "", err
	}
	return fund, d.Store.Path(fund.Ticker), nil
}
