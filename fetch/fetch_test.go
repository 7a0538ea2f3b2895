package fetch_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DinhTQSE/schoolmed-client/authapi"
	"github.com/DinhTQSE/schoolmed-client/fetch"
)

// plainFactory satisfies fetch.ClientFactory without auth plumbing.
type plainFactory struct{}

func (plainFactory) Client() *http.Client {
	return &http.Client{}
}

type fixture struct {
	srv     *httptest.Server
	fetcher *fetch.Fetcher
	hits    *atomic.Int64
}

func setupFixture(t *testing.T, handler http.HandlerFunc) *fixture {
	t.Helper()

	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	fetcher, err := fetch.NewFetcher(plainFactory{}, fetch.WithCache(fetch.NewCache()))
	require.NoError(t, err)

	return &fixture{srv: srv, fetcher: fetcher, hits: &hits}
}

func okHandler(payload string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}
}

func TestGetCachesByURL(t *testing.T) {
	f := setupFixture(t, okHandler(`{"n":1}`))

	first, err := f.fetcher.Get(context.Background(), f.srv.URL, fetch.Options{})
	require.NoError(t, err)
	require.False(t, first.FromCache)

	second, err := f.fetcher.Get(context.Background(), f.srv.URL, fetch.Options{})
	require.NoError(t, err)
	require.True(t, second.FromCache)
	require.JSONEq(t, `{"n":1}`, string(second.Data))

	require.Equal(t, int64(1), f.hits.Load(), "second call must not hit the network")
}

func TestSkipCacheNeverReadsOrWrites(t *testing.T) {
	f := setupFixture(t, okHandler(`{"n":1}`))

	// Prime the cache through a normal call.
	_, err := f.fetcher.Get(context.Background(), f.srv.URL, fetch.Options{})
	require.NoError(t, err)

	res, err := f.fetcher.Get(context.Background(), f.srv.URL, fetch.Options{SkipCache: true})
	require.NoError(t, err)
	require.False(t, res.FromCache)
	require.Equal(t, int64(2), f.hits.Load(), "skipCache must bypass the cached entry")

	// And the skip-cache call must not have refreshed the entry either: a
	// cached read afterwards still returns the original payload.
	res, err = f.fetcher.Get(context.Background(), f.srv.URL, fetch.Options{})
	require.NoError(t, err)
	require.True(t, res.FromCache)
	require.Equal(t, int64(2), f.hits.Load())
}

func TestForceRefreshAlwaysFetches(t *testing.T) {
	var n atomic.Int64
	f := setupFixture(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]int64{"n": n.Add(1)})
	})

	_, err := f.fetcher.Get(context.Background(), f.srv.URL, fetch.Options{})
	require.NoError(t, err)

	res, err := f.fetcher.Get(context.Background(), f.srv.URL, fetch.Options{ForceRefresh: true})
	require.NoError(t, err)
	require.False(t, res.FromCache)
	require.JSONEq(t, `{"n":2}`, string(res.Data))

	// The forced result replaced the cache entry.
	res, err = f.fetcher.Get(context.Background(), f.srv.URL, fetch.Options{})
	require.NoError(t, err)
	require.True(t, res.FromCache)
	require.JSONEq(t, `{"n":2}`, string(res.Data))
}

func TestCustomCacheKeySharesEntries(t *testing.T) {
	f := setupFixture(t, okHandler(`[]`))

	_, err := f.fetcher.Get(context.Background(), f.srv.URL+"/a?page=1", fetch.Options{CacheKey: "list"})
	require.NoError(t, err)

	res, err := f.fetcher.Get(context.Background(), f.srv.URL+"/a?page=2", fetch.Options{CacheKey: "list"})
	require.NoError(t, err)
	require.True(t, res.FromCache)
	require.Equal(t, int64(1), f.hits.Load())
}

func TestRefetchIgnoresCache(t *testing.T) {
	f := setupFixture(t, okHandler(`{"n":1}`))

	_, err := f.fetcher.Get(context.Background(), f.srv.URL, fetch.Options{})
	require.NoError(t, err)

	res, err := f.fetcher.Refetch(context.Background(), f.srv.URL, fetch.Options{})
	require.NoError(t, err)
	require.False(t, res.FromCache)
	require.Equal(t, int64(2), f.hits.Load())
}

func TestClearCacheEvictsSingleKey(t *testing.T) {
	f := setupFixture(t, okHandler(`{}`))

	_, err := f.fetcher.Get(context.Background(), f.srv.URL+"/a", fetch.Options{})
	require.NoError(t, err)
	_, err = f.fetcher.Get(context.Background(), f.srv.URL+"/b", fetch.Options{})
	require.NoError(t, err)

	f.fetcher.ClearCache(f.srv.URL + "/a")

	res, err := f.fetcher.Get(context.Background(), f.srv.URL+"/b", fetch.Options{})
	require.NoError(t, err)
	require.True(t, res.FromCache, "clearing one key must not evict others")

	res, err = f.fetcher.Get(context.Background(), f.srv.URL+"/a", fetch.Options{})
	require.NoError(t, err)
	require.False(t, res.FromCache)
}

func TestCacheExpiryEvicts(t *testing.T) {
	f := setupFixture(t, okHandler(`{}`))

	_, err := f.fetcher.Get(context.Background(), f.srv.URL, fetch.Options{CacheExpiry: 20 * time.Millisecond})
	require.NoError(t, err)

	res, err := f.fetcher.Get(context.Background(), f.srv.URL, fetch.Options{CacheExpiry: 20 * time.Millisecond})
	require.NoError(t, err)
	require.True(t, res.FromCache)

	time.Sleep(50 * time.Millisecond)

	res, err = f.fetcher.Get(context.Background(), f.srv.URL, fetch.Options{CacheExpiry: 20 * time.Millisecond})
	require.NoError(t, err)
	require.False(t, res.FromCache, "expired entry must not be served")
}

func TestNon2xxSurfacesStatusError(t *testing.T) {
	f := setupFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"message": "Access is denied"})
	})

	_, err := f.fetcher.Get(context.Background(), f.srv.URL, fetch.Options{})
	require.Error(t, err)
	require.Equal(t, "Access is denied", authapi.ServerMessage(err, "fallback"))
	require.False(t, authapi.IsUnauthorized(err))
}

func TestErrorResponsesAreNotCached(t *testing.T) {
	var failFirst atomic.Bool
	failFirst.Store(true)
	f := setupFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if failFirst.Swap(false) {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	})

	_, err := f.fetcher.Get(context.Background(), f.srv.URL, fetch.Options{})
	require.Error(t, err)

	res, err := f.fetcher.Get(context.Background(), f.srv.URL, fetch.Options{})
	require.NoError(t, err)
	require.False(t, res.FromCache)
	require.JSONEq(t, `{"ok":true}`, string(res.Data))
}

func TestCacheLen(t *testing.T) {
	c := fetch.NewCache()
	c.Put("a", []byte(`1`), 0)
	c.Put("b", []byte(`2`), 0)
	require.Equal(t, 2, c.Len())

	c.Delete("a")
	require.Equal(t, 1, c.Len())
	c.Delete("missing")
	require.Equal(t, 1, c.Len())
}
