package etfcap

import (
	"fmt"
	"maps"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Instruments is the table of exceptions applied before looking up a quote.
type Instruments struct {
	// Fixed maps symbols without a usable market quote (cash placeholders,
	// futures contracts) to a constant unit price.
	Fixed map[string]decimal.Decimal
	// Aliases maps a dataset symbol to the symbol quoted by market data
	// sources, like "BRKB" to "BRK.B".
	Aliases map[string]string
}

// DefaultInstruments returns the built-in table. Each call returns a fresh copy.
func DefaultInstruments() Instruments {
	return Instruments{
		// cash funds and futures contracts are small positions, a quoted
		// price would either be missing or wrong.
		Fixed: map[string]decimal.Decimal{
			"XTSLA": decimal.NewFromInt(1),
			"UBFUT": decimal.NewFromInt(100),
			"ESH9":  decimal.RequireFromString("2594.10"),
		},
		Aliases: map[string]string{
			"BRKB": "BRK.B",
			"BFB":  "BF.B",
		},
	}
}

// Symbol returns the market quoted symbol for a dataset symbol.
func (in Instruments) Symbol(ticker string) string {
	if s, ok := in.Aliases[ticker]; ok {
		return s
	}
	return ticker
}

// FixedPrice returns the constant price of a non normal instrument, if any.
func (in Instruments) FixedPrice(ticker string) (decimal.Decimal, bool) {
	p, ok := in.Fixed[ticker]
	return p, ok
}

// Merge returns a copy of in where entries of x take precedence.
func (in Instruments) Merge(x Instruments) Instruments {
	out := Instruments{
		Fixed:   maps.Clone(in.Fixed),
		Aliases: maps.Clone(in.Aliases),
	}
	if out.Fixed == nil {
		out.Fixed = make(map[string]decimal.Decimal)
	}
	if out.Aliases == nil {
		out.Aliases = make(map[string]string)
	}
	maps.Copy(out.Fixed, x.Fixed)
	maps.Copy(out.Aliases, x.Aliases)
	return out
}

// instrumentsFile is the yaml layout of an instruments file:
//
//	fixed:
//	  XTSLA: 1
//	aliases:
//	  BRKB: BRK.B
type instrumentsFile struct {
	Fixed   map[string]string `yaml:"fixed"`
	Aliases map[string]string `yaml:"aliases"`
}

// DecodeInstruments parses a yaml instruments table.
func DecodeInstruments(data []byte) (Instruments, error) {
	var f instrumentsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Instruments{}, fmt.Errorf("%w: invalid instruments file: %w", ErrParse, err)
	}
	in := Instruments{
		Fixed:   make(map[string]decimal.Decimal, len(f.Fixed)),
		Aliases: f.Aliases,
	}
	for symbol, v := range f.Fixed {
		p, err := decimal.NewFromString(v)
		if err != nil {
			return Instruments{}, fmt.Errorf("%w: invalid fixed price %q for %s: %w", ErrParse, v, symbol, err)
		}
		in.Fixed[symbol] = p
	}
	return in, nil
}

// LoadInstruments reads a yaml instruments file and merges it over the
// default table.
func LoadInstruments(path string) (Instruments, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Instruments{}, fmt.Errorf("%w: %w", ErrIO, err)
	}
	in, err := DecodeInstruments(data)
	if err != nil {
		return Instruments{}, fmt.Errorf("%s: %w", path, err)
	}
	return DefaultInstruments().Merge(in), nil
}
