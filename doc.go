// Package etfcap estimates whether an exchange-traded fund is over- or
// under-capitalized.
//
// The fund's market capitalization (shares outstanding times the fund's own
// price) is compared against a bottom-up reconstruction of the value of its
// holdings: every holding's share count times that security's closing price.
//
// The pipeline is made of four parts:
//   - a product directory resolving a ticker into a Fund,
//   - a holdings dataset turning a Fund into Holding records and Metadata
//     (see the ishares package),
//   - a PriceResolver returning the prior-day close of a security, with a
//     fixed price table for cash placeholders and futures contracts,
//   - an Engine aggregating everything into a Valuation and a Comparison.
//
// This package serves as the foundational logic for the `ecap` command-line
// tool.
package etfcap
