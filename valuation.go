package etfcap

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// HoldingsSource loads the holdings of a fund from its ticker.
type HoldingsSource interface {
	Load(ctx context.Context, ticker string) ([]Holding, Metadata, error)
}

// Pricer returns the unit price of a security.
type Pricer interface {
	Price(ctx context.Context, ticker string) (decimal.Decimal, error)
}

// Contribution is the value of one holding.
type Contribution struct {
	Index   int // position in the holdings file, from 0
	Holding Holding
	Price   decimal.Decimal
	Net     decimal.Decimal // Price * Shares
}

// Valuation is the reconstructed value of a fund's holdings.
type Valuation struct {
	Ticker        string
	Metadata      Metadata
	Total         decimal.Decimal
	Contributions []Contribution // in holdings file order
}

// Sign tells on which side the market capitalization is.
type Sign int

// Over means the market capitalization is above the holdings value, Under
// below.
const (
	Equal Sign = iota
	Over
	Under
)

func (s Sign) String() string {
	switch s {
	case Over:
		return "over"
	case Under:
		return "under"
	default:
		return "equal"
	}
}

// Comparison compares a market capitalization to the estimated holdings value.
type Comparison struct {
	MarketCap  decimal.Decimal
	Estimated  decimal.Decimal
	Difference decimal.Decimal // MarketCap - Estimated
	Sign       Sign
	Ratio      decimal.Decimal // |Difference| / MarketCap
}

// Headline returns the label and amount historically printed for a
// comparison. Overcapitalization shows the negated market cap,
// undercapitalization shows the market cap itself. ok is false when both
// values are equal.
func (c Comparison) Headline() (label string, amount decimal.Decimal, ok bool) {
	switch c.Sign {
	case Over:
		return "Overcapitalization", c.MarketCap.Neg(), true
	case Under:
		return "Undercapitalization", c.MarketCap, true
	default:
		return "", decimal.Zero, false
	}
}

// CompareCapitalization compares the market capitalization (sharesOutstanding
// * price) with the estimated value of the holdings.
func CompareCapitalization(estimated decimal.Decimal, sharesOutstanding int64, price decimal.Decimal) (Comparison, error) {
	marketCap := decimal.NewFromInt(sharesOutstanding).Mul(price)
	if marketCap.IsZero() {
		return Comparison{}, fmt.Errorf("%w: market capitalization is zero", ErrDivision)
	}
	diff := marketCap.Sub(estimated)
	c := Comparison{
		MarketCap:  marketCap,
		Estimated:  estimated,
		Difference: diff,
		Ratio:      diff.Abs().Div(marketCap.Abs()),
	}
	switch diff.Sign() {
	case 1:
		c.Sign = Over
	case -1:
		c.Sign = Under
	}
	return c, nil
}

// Report is the full capitalization analysis of a fund.
type Report struct {
	Valuation         Valuation
	SharesOutstanding int64
	Price             decimal.Decimal // price of the fund itself
	Comparison        Comparison
}

// Engine values funds from their holdings.
type Engine struct {
	Holdings HoldingsSource
	Prices   Pricer
	// Progress, if set, is called after each holding is valued with the
	// number of holdings.
	Progress func(n int, c Contribution)
}

// Estimate returns the value of the holdings of fund ticker.
//
// Every holding is valued as its share count times its price, the weight is
// not used.
func (e *Engine) Estimate(ctx context.Context, ticker string) (Valuation, error) {
	holdings, meta, err := e.Holdings.Load(ctx, ticker)
	if err != nil {
		return Valuation{}, err
	}

	v := Valuation{
		Ticker:        ticker,
		Metadata:      meta,
		Total:         decimal.Zero,
		Contributions: make([]Contribution, 0, len(holdings)),
	}
	for i, h := range holdings {
		price, err := e.Prices.Price(ctx, h.Ticker)
		if err != nil {
			return Valuation{}, fmt.Errorf("holding %d of %d (%s): %w", i+1, len(holdings), h.Ticker, err)
		}
		c := Contribution{
			Index:   i,
			Holding: h,
			Price:   price,
			Net:     price.Mul(decimal.NewFromInt(h.Shares)),
		}
		v.Total = v.Total.Add(c.Net)
		v.Contributions = append(v.Contributions, c)
		if e.Progress != nil {
			e.Progress(len(holdings), c)
		}
	}
	return v, nil
}

// Evaluate estimates the holdings value of fund ticker, and compares it to
// the fund market capitalization.
func (e *Engine) Evaluate(ctx context.Context, ticker string) (Report, error) {
	v, err := e.Estimate(ctx, ticker)
	if err != nil {
		return Report{}, err
	}
	shares, err := v.Metadata.SharesOutstanding()
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", ticker, err)
	}
	price, err := e.Prices.Price(ctx, ticker)
	if err != nil {
		return Report{}, fmt.Errorf("price of %s: %w", ticker, err)
	}
	c, err := CompareCapitalization(v.Total, shares, price)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", ticker, err)
	}
	return Report{
		Valuation:         v,
		SharesOutstanding: shares,
		Price:             price,
		Comparison:        c,
	}, nil
}
