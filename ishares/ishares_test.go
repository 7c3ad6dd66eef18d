package ishares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/etnz/etfcap"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

const productList = "\xef\xbb\xbf" + `{
  "columns": [
    {"name": "fundShortName", "type": "string"},
    {"name": "localExchangeTicker", "type": "string"},
    {"name": "portfolioId", "type": "number"}
  ],
  "data": [
    ["iShares Core S&P 500 ETF", "IVV", 239726],
    ["iShares Semiconductor ETF", "SOXX", {"d": "239705", "r": 239705}]
  ]
}`

const holdingsCSV = "\xef\xbb\xbf" + `iShares Core S&P 500 ETF
Fund Holdings as of,"Oct 17, 2026"
Inception Date,"May 15, 2000"
Shares Outstanding,"1,000,000.00"
Stock,"-"

Ticker,Name,Sector,Asset Class,Market Value,Weight (%),Notional Value,Shares,Price,Location,Exchange,Currency
"AAPL","APPLE INC","Information Technology","Equity","15,000.00","5.00","15,000.00","100.00","150.00","United States","NASDAQ","USD"
"MSFT","MICROSOFT CORP","Information Technology","Equity","60,000.00","3.00","60,000.00","200.00","300.00","United States","NASDAQ","USD"

"The content contained herein is owned or licensed by BlackRock and/or its third-party information providers"
`

// newServer serves the product list on /list and the holdings csv of any
// portfolio on /products/<id>/holdings.csv.
func newServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	downloads := new(atomic.Int32)
	mux := http.NewServeMux()
	mux.HandleFunc("/list", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productList))
	})
	mux.HandleFunc("/products/239726/holdings.csv", func(w http.ResponseWriter, r *http.Request) {
		downloads.Add(1)
		w.Write([]byte(holdingsCSV))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, downloads
}

func newDataset(t *testing.T, srv *httptest.Server) *Dataset {
	t.Helper()
	return &Dataset{
		Directory: &Directory{
			URL:             srv.URL + "/list",
			HoldingsPattern: srv.URL + "/products/%s/holdings.csv",
		},
		Store: &FileStore{Dir: t.TempDir()},
	}
}

func TestDirectory_Resolve(t *testing.T) {
	srv, _ := newServer(t)
	d := &Directory{URL: srv.URL + "/list"}

	testCases := []struct {
		ticker string
		want   etfcap.Fund
	}{
		{
			ticker: "IVV",
			want: etfcap.Fund{
				Ticker:      "IVV",
				PortfolioID: "239726",
				Name:        "iShares Core S&P 500 ETF",
				HoldingsURL: "https://www.ishares.com/us/products/239726/ishares-phlx-semiconductor-etf/1467271812596.ajax?fileType=csv&fileName=SOXX_holdings&dataType=fund",
			},
		},
		{
			ticker: "SOXX",
			want: etfcap.Fund{
				Ticker:      "SOXX",
				PortfolioID: "239705",
				Name:        "iShares Semiconductor ETF",
				HoldingsURL: "https://www.ishares.com/us/products/239705/ishares-phlx-semiconductor-etf/1467271812596.ajax?fileType=csv&fileName=SOXX_holdings&dataType=fund",
			},
		},
	}
	for _, tc := range testCases {
		got, err := d.Resolve(context.Background(), tc.ticker)
		if err != nil {
			t.Fatalf("Resolve(%q) unexpected error: %v", tc.ticker, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Resolve(%q) mismatch (-want +got):\n%s", tc.ticker, diff)
		}
	}
}

func TestDirectory_Resolve_NotFound(t *testing.T) {
	srv, _ := newServer(t)
	d := &Directory{URL: srv.URL + "/list"}

	for _, ticker := range []string{"ivv", "IV", "QQQ", ""} {
		got, err := d.Resolve(context.Background(), ticker)
		if !errors.Is(err, etfcap.ErrNotFound) {
			t.Errorf("Resolve(%q) error = %v, want ErrNotFound", ticker, err)
		}
		if got != (etfcap.Fund{}) {
			t.Errorf("Resolve(%q) = %v, want a zero Fund", ticker, got)
		}
	}
}

func TestDirectory_Resolve_Errors(t *testing.T) {
	srv, _ := newServer(t)
	d := &Directory{URL: srv.URL + "/missing"}
	if _, err := d.Resolve(context.Background(), "IVV"); !errors.Is(err, etfcap.ErrIO) {
		t.Errorf("Resolve() on a 404 error = %v, want ErrIO", err)
	}

	for name, body := range map[string]string{
		"not json":       "<html>",
		"no columns":     `{"data": []}`,
		"missing column": `{"columns": [{"name": "localExchangeTicker"}], "data": [["IVV"]]}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer srv.Close()
			d := &Directory{URL: srv.URL}
			if _, err := d.Resolve(context.Background(), "IVV"); !errors.Is(err, etfcap.ErrParse) {
				t.Errorf("Resolve() error = %v, want ErrParse", err)
			}
		})
	}
}

func TestParseHoldings(t *testing.T) {
	holdings, meta, err := ParseHoldings(strings.NewReader(holdingsCSV))
	if err != nil {
		t.Fatalf("ParseHoldings() unexpected error: %v", err)
	}

	want := []etfcap.Holding{
		{Ticker: "AAPL", Name: "APPLE INC", Weight: 0.05, Shares: 100},
		{Ticker: "MSFT", Name: "MICROSOFT CORP", Weight: 0.03, Shares: 200},
	}
	if diff := cmp.Diff(want, holdings); diff != "" {
		t.Errorf("ParseHoldings() holdings mismatch (-want +got):\n%s", diff)
	}

	wantMeta := etfcap.Metadata{
		"Fund Holdings as of": "Oct 17, 2026",
		"Inception Date":      "May 15, 2000",
		"Shares Outstanding":  "1,000,000.00",
		"Stock":               "-",
	}
	if diff := cmp.Diff(wantMeta, meta); diff != "" {
		t.Errorf("ParseHoldings() metadata mismatch (-want +got):\n%s", diff)
	}

	// parsing is idempotent
	again, againMeta, err := ParseHoldings(strings.NewReader(holdingsCSV))
	if err != nil {
		t.Fatalf("ParseHoldings() unexpected error: %v", err)
	}
	if !cmp.Equal(holdings, again) || !cmp.Equal(meta, againMeta) {
		t.Error("ParseHoldings() is not idempotent")
	}
}

func TestParseHoldings_RowsBeforeHeader(t *testing.T) {
	csv := `a,b,c,d
Ticker,Name,Weight (%),Shares
X,Y,10,"1,234"
Ticker,Shares,Name,Weight (%)
Z,"2,000",W,1
`
	holdings, _, err := ParseHoldings(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseHoldings() unexpected error: %v", err)
	}
	want := []etfcap.Holding{
		{Ticker: "X", Name: "Y", Weight: 0.1, Shares: 1234},
		// the second header replaces the first one.
		{Ticker: "Z", Name: "W", Weight: 0.01, Shares: 2000},
	}
	if diff := cmp.Diff(want, holdings); diff != "" {
		t.Errorf("ParseHoldings() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseHoldings_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		csv     string
		wantErr string
	}{
		{
			name:    "bad weight",
			csv:     "Ticker,Name,Weight (%),Shares\nAAPL,APPLE,five,100\n",
			wantErr: "invalid weight",
		},
		{
			name:    "bad shares",
			csv:     "Ticker,Name,Weight (%),Shares\nAAPL,APPLE,5,lots\n",
			wantErr: "invalid share count",
		},
		{
			name:    "missing column",
			csv:     "Ticker,Name,Sector,Shares\nAAPL,APPLE,IT,100\n",
			wantErr: `no "Weight (%)" column`,
		},
		{
			name:    "short row",
			csv:     "Ticker,Name,Sector,Weight (%),Shares\nAAPL,APPLE,IT,5\n",
			wantErr: "row has 4 cells",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ParseHoldings(strings.NewReader(tc.csv))
			if !errors.Is(err, etfcap.ErrParse) {
				t.Fatalf("ParseHoldings() error = %v, want ErrParse", err)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("ParseHoldings() error = %q, want it to contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestFileStore_Fetch(t *testing.T) {
	srv, downloads := newServer(t)
	ds := newDataset(t, srv)
	fund, err := ds.Directory.Resolve(context.Background(), "IVV")
	if err != nil {
		t.Fatal(err)
	}

	content, err := ds.Store.Fetch(context.Background(), fund)
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}
	if string(content) != holdingsCSV {
		t.Errorf("Fetch() content differs from the served file")
	}
	onDisk, err := os.ReadFile(filepath.Join(ds.Store.Dir, "IVV_holdings.csv"))
	if err != nil {
		t.Fatalf("holdings file not written: %v", err)
	}
	if string(onDisk) != holdingsCSV {
		t.Errorf("holdings file is not a verbatim copy")
	}

	if _, err := ds.Store.Fetch(context.Background(), fund); err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}
	if n := downloads.Load(); n != 1 {
		t.Errorf("downloads = %d, want 1", n)
	}

	// Download ignores the local copy.
	if _, path, err := ds.Download(context.Background(), "IVV"); err != nil || path != ds.Store.Path("IVV") {
		t.Errorf("Download() = %q, %v", path, err)
	}
	if n := downloads.Load(); n != 2 {
		t.Errorf("downloads = %d, want 2", n)
	}
}

func TestFileStore_Fetch_Errors(t *testing.T) {
	srv, _ := newServer(t)
	s := &FileStore{Dir: t.TempDir()}
	fund := etfcap.Fund{Ticker: "IVV", HoldingsURL: srv.URL + "/nowhere.csv"}
	if _, err := s.Fetch(context.Background(), fund); !errors.Is(err, etfcap.ErrIO) {
		t.Errorf("Fetch() error = %v, want ErrIO", err)
	}
	if _, err := os.Stat(s.Path("IVV")); err == nil {
		t.Error("Fetch() wrote a file for a failed download")
	}

	s.Dir = filepath.Join(t.TempDir(), "does", "not", "exist")
	fund.HoldingsURL = srv.URL + "/products/239726/holdings.csv"
	if _, err := s.Fetch(context.Background(), fund); !errors.Is(err, etfcap.ErrIO) {
		t.Errorf("Fetch() into a missing directory error = %v, want ErrIO", err)
	}
}

// prices is an etfcap.Pricer backed by a map.
type prices map[string]int64

func (p prices) Price(ctx context.Context, ticker string) (decimal.Decimal, error) {
	v, ok := p[ticker]
	if !ok {
		return decimal.Zero, etfcap.ErrPriceUnavailable
	}
	return decimal.NewFromInt(v), nil
}

func TestDataset_Evaluate(t *testing.T) {
	srv, _ := newServer(t)
	e := &etfcap.Engine{
		Holdings: newDataset(t, srv),
		Prices:   prices{"AAPL": 150, "MSFT": 300, "IVV": 50},
	}

	r, err := e.Evaluate(context.Background(), "IVV")
	if err != nil {
		t.Fatalf("Evaluate() unexpected error: %v", err)
	}
	if want := decimal.NewFromInt(75_000); !r.Valuation.Total.Equal(want) {
		t.Errorf("total = %v, want %v", r.Valuation.Total, want)
	}
	if n := len(r.Valuation.Contributions); n != 2 {
		t.Fatalf("got %d contributions, want 2", n)
	}
	if a, b := r.Valuation.Contributions[0].Holding.Ticker, r.Valuation.Contributions[1].Holding.Ticker; a != "AAPL" || b != "MSFT" {
		t.Errorf("contributions order = %s, %s, want AAPL, MSFT", a, b)
	}
	if want := decimal.NewFromInt(50_000_000); !r.Comparison.MarketCap.Equal(want) {
		t.Errorf("market cap = %v, want %v", r.Comparison.MarketCap, want)
	}
}
