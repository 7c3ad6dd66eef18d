package etfcap

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// QuoteSource is a market data provider returning daily closing prices.
type QuoteSource interface {
	// Closes returns the closing prices of symbol for every trading day in
	// [from, to], bounds included. An unknown symbol returns no rows.
	Closes(ctx context.Context, symbol string, from, to Date) (map[Date]decimal.Decimal, error)
}

// PriceResolver returns the unit price of the securities held by a fund.
type PriceResolver struct {
	Source      QuoteSource
	Instruments Instruments
	Today       func() Date // defaults to the package Today
}

// NewPriceResolver returns a resolver using the default instruments table.
func NewPriceResolver(source QuoteSource) *PriceResolver {
	return &PriceResolver{Source: source, Instruments: DefaultInstruments()}
}

func (r *PriceResolver) today() Date {
	if r.Today != nil {
		return r.Today()
	}
	return Today()
}

// Price returns the close of the day before today.
func (r *PriceResolver) Price(ctx context.Context, ticker string) (decimal.Decimal, error) {
	return r.PriceOf(ctx, ticker, r.today().Add(-1))
}

// PriceOf returns the closing price of ticker on day asOf.
//
// Instruments with a fixed price are returned without querying the source.
// Otherwise the source is queried over [asOf, today] since quotes are only
// published with some delay.
func (r *PriceResolver) PriceOf(ctx context.Context, ticker string, asOf Date) (decimal.Decimal, error) {
	if p, ok := r.Instruments.FixedPrice(ticker); ok {
		return p, nil
	}
	if ticker == "" || ticker == "-" {
		return decimal.Zero, fmt.Errorf("%w: %q has no market symbol", ErrInvalidInstrument, ticker)
	}
	if r.Source == nil {
		return decimal.Zero, fmt.Errorf("%w: no quote source for %s", ErrPriceUnavailable, ticker)
	}

	symbol := r.Instruments.Symbol(ticker)
	closes, err := r.Source.Closes(ctx, symbol, asOf, r.today())
	if err != nil {
		return decimal.Zero, fmt.Errorf("cannot get quotes for %s: %w", symbol, err)
	}
	if len(closes) == 0 {
		return decimal.Zero, fmt.Errorf("%w: no quotes at all for %s from %s to %s", ErrInvalidInstrument, symbol, asOf, r.today())
	}
	p, ok := closes[asOf]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no close for %s on %s", ErrPriceUnavailable, symbol, asOf)
	}
	return p, nil
}
