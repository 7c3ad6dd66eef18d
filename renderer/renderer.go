// Package renderer renders funds, holdings and valuation reports as markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"text/template"

	"github.com/Rhymond/go-money"
	"github.com/etnz/etfcap"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.md
var templates embed.FS

var printer = message.NewPrinter(language.English)

// usd formats an amount in dollars, like "$1,234.56".
func usd(d decimal.Decimal) string {
	cur := money.GetCurrency(money.USD)
	return cur.Formatter().Format(d.Shift(int32(cur.Fraction)).Round(0).IntPart())
}

// count formats an integer with thousands separators.
func count(n int64) string { return printer.Sprintf("%d", n) }

func percent(f float64) string { return fmt.Sprintf("%.2f%%", f*100) }

func ratio(d decimal.Decimal) string { return d.StringFixed(6) }

// escape makes s safe inside a markdown table cell.
func escape(s string) string { return strings.ReplaceAll(s, "|", `\|`) }

type headlineRow struct {
	Label  string
	Amount decimal.Decimal
}

// headline returns the over/under capitalization row, nil if there is none.
func headline(c etfcap.Comparison) *headlineRow {
	label, amount, ok := c.Headline()
	if !ok {
		return nil
	}
	return &headlineRow{Label: label, Amount: amount}
}

var funcs = template.FuncMap{
	"usd":      usd,
	"count":    count,
	"percent":  percent,
	"ratio":    ratio,
	"headline": headline,
	"escape":   escape,
	"inc":      func(i int) int { return i + 1 },
	"keys": func(m etfcap.Metadata) []string {
		var keys []string
		for k := range m {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		return keys
	},
}

// renderTemplate renders one of the embedded templates.
func renderTemplate(file string, data any) string {
	content, err := fs.ReadFile(templates, "templates/"+file)
	if err != nil {
		return fmt.Sprintf("error reading template %q: %v", file, err)
	}
	tmpl, err := template.New(file).Funcs(funcs).Parse(string(content))
	if err != nil {
		return fmt.Sprintf("error parsing template %q: %v", file, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", file, err)
	}
	return b.String()
}

// FundMarkdown renders the directory information of a fund.
func FundMarkdown(f etfcap.Fund) string { return renderTemplate("fund.md", f) }

// HoldingsMarkdown renders the holdings of a fund and their metadata.
func HoldingsMarkdown(ticker string, holdings []etfcap.Holding, meta etfcap.Metadata) string {
	return renderTemplate("holdings.md", struct {
		Ticker   string
		Holdings []etfcap.Holding
		Metadata etfcap.Metadata
	}{ticker, holdings, meta})
}

// ReportMarkdown renders the valuation table and the capitalization summary.
func ReportMarkdown(r etfcap.Report) string { return renderTemplate("report.md", r) }

// ProgressLine is the one line summary printed while a holding is valued:
//
//	(1 of 503) AAPL	APPLE INC	$150.25	100	$15,025.00
func ProgressLine(n int, c etfcap.Contribution) string {
	return fmt.Sprintf("(%d of %d) %s\t%s\t%s\t%s\t%s",
		c.Index+1, n, c.Holding.Ticker, c.Holding.Name, usd(c.Price), count(c.Holding.Shares), usd(c.Net))
}
