package ishares

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/etnz/etfcap"
	"github.com/rs/zerolog"
)

// FileStore keeps downloaded holdings files on disk, so that a fund is
// downloaded only once.
type FileStore struct {
	Dir    string       // current directory if empty
	Client *http.Client // http.DefaultClient if nil
	Log    zerolog.Logger
}

// Path returns the local file for the holdings of ticker.
func (s *FileStore) Path(ticker string) string {
	return filepath.Join(s.Dir, ticker+"_holdings.csv")
}

// Fetch returns the holdings file content of fund, downloading it first if
// there is no local copy.
func (s *FileStore) Fetch(ctx context.Context, fund etfcap.Fund) ([]byte, error) {
	path := s.Path(fund.Ticker)
	content, err := os.ReadFile(path)
	if err == nil {
		s.Log.Debug().Str("path", path).Msg("holdings read from disk")
		return content, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", etfcap.ErrIO, err)
	}
	return s.Download(ctx, fund)
}

// Download downloads the holdings file of fund and writes it verbatim,
// replacing any local copy.
func (s *FileStore) Download(ctx context.Context, fund etfcap.Fund) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fund.HoldingsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot create request for %q: %w", etfcap.ErrIO, fund.HoldingsURL, err)
	}
	s.Log.Info().Str("ticker", fund.Ticker).Str("url", fund.HoldingsURL).Msg("downloading holdings")
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot download holdings of %s: %w", etfcap.ErrIO, fund.Ticker, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: cannot http GET %v/%v: %v", etfcap.ErrIO, resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read holdings of %s: %w", etfcap.ErrIO, fund.Ticker, err)
	}

	path := s.Path(fund.Ticker)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return nil, fmt.Errorf("%w: %w", etfcap.ErrIO, err)
	}
	s.Log.Info().Str("path", path).Msg("holdings written")
	return content, nil
}
