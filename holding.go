package etfcap

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Fund is a fund listed in a product directory.
type Fund struct {
	Ticker      string // exchange ticker, unique within a directory
	PortfolioID string // provider internal id
	Name        string // short name
	HoldingsURL string // where to download the holdings dataset
}

// Holding is a single position of a fund.
type Holding struct {
	Ticker string
	Name   string
	Weight float64 // fraction of the fund, 0.05 for 5%
	Shares int64
}

// Metadata holds the key/value pairs published alongside the holdings, like
// "Fund Holdings as of" or "Shares Outstanding".
type Metadata map[string]string

// SharesOutstandingKey is the metadata key for the fund's shares outstanding.
const SharesOutstandingKey = "Shares Outstanding"

// SharesOutstanding returns the number of shares of the fund itself.
func (m Metadata) SharesOutstanding() (int64, error) {
	v, ok := m[SharesOutstandingKey]
	if !ok {
		return 0, fmt.Errorf("%w: missing %q in holdings metadata", ErrParse, SharesOutstandingKey)
	}
	return ParseShares(v)
}

// ParseShares parses a share count like "1,234" or "1,234.00". Thousands
// separators are removed and any fractional part is truncated.
func ParseShares(s string) (int64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid share count %q: %w", ErrParse, s, err)
	}
	// 2^63 is the first float64 above the int64 range.
	if math.IsNaN(f) || f < 0 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: share count %q out of range", ErrParse, s)
	}
	return int64(f), nil
}

// ParseWeight parses a percentage like "5.25" into a fraction (0.0525).
func ParseWeight(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid weight %q: %w", ErrParse, s, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: invalid weight %q", ErrParse, s)
	}
	return f / 100, nil
}
