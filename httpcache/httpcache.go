// Package httpcache caches http responses so that remote services are not
// queried more than once a day.
//
// The storage is a Cache, injected in a Transport. Several Cache
// implementations are available: SQLite (persistent, the default of the
// command line), Redis, Memory and Nop.
package httpcache

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTTL is how long responses are kept.
const DefaultTTL = 24 * time.Hour

// Cache stores opaque values with an expiration.
type Cache interface {
	// Get returns the value stored for key, ok is false if there is none or
	// if it has expired.
	Get(ctx context.Context, key string) (value []byte, ok bool)
	// Put stores value for key during ttl.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Transport is an http.RoundTripper serving responses from a Cache.
//
// Only successful responses are cached.
type Transport struct {
	Base  http.RoundTripper // http.DefaultTransport if nil
	Cache Cache
	TTL   time.Duration // DefaultTTL if zero
	Log   zerolog.Logger
}

// NewClient returns an http.Client caching responses in c for ttl.
func NewClient(c Cache, ttl time.Duration, log zerolog.Logger) *http.Client {
	return &http.Client{Transport: &Transport{Cache: c, TTL: ttl, Log: log}}
}

// Key returns the cache key for a request.
func Key(req *http.Request) string {
	return fmt.Sprintf("%x", sha1.Sum([]byte(req.Method+" "+req.URL.String())))
}

func (t *Transport) base() http.RoundTripper {
	if t.Base == nil {
		return http.DefaultTransport
	}
	return t.Base
}

func (t *Transport) ttl() time.Duration {
	if t.TTL == 0 {
		return DefaultTTL
	}
	return t.TTL
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet || t.Cache == nil {
		return t.base().RoundTrip(req)
	}
	ctx := req.Context()
	key := Key(req)

	if content, ok := t.Cache.Get(ctx, key); ok {
		resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
		if err == nil { // Cache hit
			t.Log.Debug().Str("url", req.URL.Redacted()).Msg("cache hit")
			return resp, nil
		}
		t.Log.Warn().Err(err).Str("key", key).Msg("corrupted cache entry (ignored)")
	}

	resp, err := t.base().RoundTrip(req)
	if err != nil {
		return nil, err
	}
	t.Log.Debug().Str("method", req.Method).Str("host", req.URL.Host).Str("path", req.URL.Path).Str("status", resp.Status).Msg("http")
	if resp.StatusCode >= 300 {
		return resp, nil
	}

	// DumpResponse reads the body and replaces it with an in memory copy.
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return nil, err
	}
	if err := t.Cache.Put(ctx, key, content, t.ttl()); err != nil {
		t.Log.Warn().Err(err).Msg("cache write err (ignored)")
	}
	return resp, nil
}
