package etfcap

import "errors"

// Errors returned along the valuation pipeline. They are always wrapped with
// context, use errors.Is to test them.
var (
	// ErrNotFound is returned when a ticker is not listed in the product directory.
	ErrNotFound = errors.New("fund not found")
	// ErrIO is returned when a dataset cannot be fetched from the network or the disk.
	ErrIO = errors.New("i/o failure")
	// ErrParse is returned for malformed datasets or numeric fields.
	ErrParse = errors.New("parse error")
	// ErrInvalidInstrument is returned for symbols that cannot be priced at all.
	ErrInvalidInstrument = errors.New("invalid instrument")
	// ErrPriceUnavailable is returned when there is no quote for the requested day.
	ErrPriceUnavailable = errors.New("price unavailable")
	// ErrDivision is returned when the market capitalization is zero.
	ErrDivision = errors.New("division by zero")
)
