// Package fetch wraps the authenticated request factory for read endpoints,
// with optional response caching shared across the process.
package fetch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/DinhTQSE/schoolmed-client/authapi"
)

// ClientFactory produces an HTTP client bound to the current session.
// *httpauth.Factory satisfies it.
type ClientFactory interface {
	Client() *http.Client
}

// ErrFactoryRequired is returned by NewFetcher without a client factory.
var ErrFactoryRequired = errors.New("client factory is required")

// sharedCache is the process-wide default, shared by every Fetcher that does
// not override it.
var sharedCache = NewCache()

// Options controls caching for a single Get.
type Options struct {
	SkipCache    bool          // bypass the cache entirely, reads and writes
	CacheKey     string        // cache key, defaults to the URL
	ForceRefresh bool          // always hit the network, then refresh the entry
	CacheExpiry  time.Duration // entry lifetime; zero means no expiry
	Header       http.Header   // extra request headers, passed through
}

func (o Options) key(url string) string {
	if o.CacheKey != "" {
		return o.CacheKey
	}
	return url
}

// Result carries the response payload and whether it was served from cache.
type Result struct {
	Data      json.RawMessage
	FromCache bool
}

// Decode unmarshals the payload into out.
func (r Result) Decode(out any) error {
	return json.Unmarshal(r.Data, out)
}

// Fetcher issues authenticated GET requests with optional response caching.
type Fetcher struct {
	factory ClientFactory
	cache   *Cache
	logger  zerolog.Logger
}

// FetcherOption modifies a Fetcher instance.
type FetcherOption func(*Fetcher)

// WithCache overrides the process-wide shared cache (primarily for testing).
func WithCache(cache *Cache) FetcherOption {
	return func(f *Fetcher) {
		f.cache = cache
	}
}

// WithLogger sets the fetcher logger.
func WithLogger(logger zerolog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher issuing requests through factory.
func NewFetcher(factory ClientFactory, options ...FetcherOption) (*Fetcher, error) {
	if factory == nil {
		return nil, ErrFactoryRequired
	}

	f := &Fetcher{
		factory: factory,
		cache:   sharedCache,
		logger:  zerolog.Nop(),
	}

	for _, opt := range options {
		opt(f)
	}

	return f, nil
}

// Get returns the payload for url, serving a non-expired cache entry when one
// exists and the options allow it. A fresh network result replaces the cache
// entry unless SkipCache is set.
func (f *Fetcher) Get(ctx context.Context, url string, opts Options) (Result, error) {
	key := opts.key(url)

	if !opts.SkipCache && !opts.ForceRefresh {
		if data, ok := f.cache.Get(key); ok {
			f.logger.Debug().Str("key", key).Msg("cache hit")
			return Result{Data: data, FromCache: true}, nil
		}
	}

	data, err := f.fetch(ctx, url, opts.Header)
	if err != nil {
		return Result{}, err
	}

	if !opts.SkipCache {
		f.cache.Put(key, data, opts.CacheExpiry)
	}
	return Result{Data: data}, nil
}

// Refetch forces a new network call for url, ignoring any cache entry and
// refreshing it on success.
func (f *Fetcher) Refetch(ctx context.Context, url string, opts Options) (Result, error) {
	opts.ForceRefresh = true
	return f.Get(ctx, url, opts)
}

// ClearCache evicts a single cache key.
func (f *Fetcher) ClearCache(key string) {
	f.cache.Delete(key)
}

func (f *Fetcher) fetch(ctx context.Context, url string, header http.Header) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[Fetcher.fetch] build request")
	}
	for name, values := range header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	// A fresh client per logical fetch: interceptors reflect the latest
	// token at attachment time, and the token source re-checks at dispatch.
	resp, err := f.factory.Client().Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "[Fetcher.fetch] GET %s", url)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "[Fetcher.fetch] read %s response", url)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, authapi.StatusErrorFromBody(resp.StatusCode, body)
	}

	return body, nil
}
