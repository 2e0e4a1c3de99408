package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/better-i18n/i18n-sync/cache"
	"github.com/better-i18n/i18n-sync/tree"
)

const messagesJSON = `{"auth": {"login": {"title": "Sign in"}}, "common": {"save": "Save"}}`

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestMessages(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/acme/web/en-us.json", r.URL.Path)
		_, _ = w.Write([]byte(messagesJSON))
	})

	store := cache.NewInMemory()
	c, err := New(srv.URL, "acme/web", WithCache(store, time.Minute))
	require.NoError(t, err)

	ctx := context.Background()
	tr, err := c.Messages(ctx, "en-US")
	require.NoError(t, err)
	require.Equal(t, []string{"auth.login.title", "common.save"}, tree.Flatten(tr).SortedLeaves())

	_, err = c.Messages(ctx, "en-US")
	require.NoError(t, err)
	require.Equal(t, int32(1), hits.Load(), "second call must be served from the cache")
}

func TestManifest(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/acme/web/manifest.json", r.URL.Path)
		_, _ = w.Write([]byte(`{"project": "acme/web", "sourceLocale": "en", "locales": ["en", "de"]}`))
	})

	c, err := New(srv.URL+"/", "/acme/web/")
	require.NoError(t, err)

	m, err := c.Manifest(context.Background())
	require.NoError(t, err)
	require.Equal(t, &Manifest{Project: "acme/web", SourceLocale: "en", Locales: []string{"en", "de"}}, m)
}

func TestRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(messagesJSON))
	})

	c, err := New(srv.URL, "acme/web", WithRetries(2, time.Millisecond))
	require.NoError(t, err)

	_, err = c.Messages(context.Background(), "en")
	require.NoError(t, err)
	require.Equal(t, int32(3), hits.Load())
}

func TestNotFoundIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	})

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cache/acme/web/fr.json", []byte(messagesJSON), 0o644))

	c, err := New(srv.URL, "acme/web", WithRetries(3, time.Millisecond), WithFallback(fs, "/cache"))
	require.NoError(t, err)

	_, err = c.Messages(context.Background(), "fr")
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, int32(1), hits.Load())
}

func TestFallbackToLocalCopy(t *testing.T) {
	healthy := atomic.Bool{}
	healthy.Store(true)
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(messagesJSON))
	})

	fs := afero.NewMemMapFs()
	c, err := New(srv.URL, "acme/web", WithRetries(1, time.Millisecond), WithFallback(fs, "/cache"))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = c.Messages(ctx, "de")
	require.NoError(t, err)

	exists, err := afero.Exists(fs, "/cache/acme/web/de.json")
	require.NoError(t, err)
	require.True(t, exists, "successful responses must be mirrored locally")

	healthy.Store(false)
	tr, err := c.Messages(ctx, "de")
	require.NoError(t, err)
	require.True(t, tree.Flatten(tr).IsLeaf("common.save"))
}

func TestInvalidResponseIsNotCached(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			_, _ = w.Write([]byte(`<html>maintenance</html>`))
			return
		}
		_, _ = w.Write([]byte(messagesJSON))
	})

	fs := afero.NewMemMapFs()
	c, err := New(srv.URL, "acme/web",
		WithCache(cache.NewInMemory(), time.Minute),
		WithRetries(0, time.Millisecond),
		WithFallback(fs, "/cache"),
	)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = c.Messages(ctx, "en")
	require.ErrorIs(t, err, ErrUnavailable)

	exists, err := afero.Exists(fs, "/cache/acme/web/en.json")
	require.NoError(t, err)
	require.False(t, exists, "invalid responses must not be mirrored")

	tr, err := c.Messages(ctx, "en")
	require.NoError(t, err)
	require.True(t, tree.Flatten(tr).IsLeaf("common.save"))
	require.Equal(t, int32(2), hits.Load())

	saved, err := afero.ReadFile(fs, "/cache/acme/web/en.json")
	require.NoError(t, err)
	require.JSONEq(t, messagesJSON, string(saved))
}

func TestInvalidResponseKeepsLocalCopy(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 2 {
			_, _ = w.Write([]byte(`<html>maintenance</html>`))
			return
		}
		_, _ = w.Write([]byte(messagesJSON))
	})

	fs := afero.NewMemMapFs()
	c, err := New(srv.URL, "acme/web", WithRetries(0, time.Millisecond), WithFallback(fs, "/cache"))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = c.Messages(ctx, "en")
	require.NoError(t, err)

	tr, err := c.Messages(ctx, "en")
	require.NoError(t, err, "the last valid local copy must be served")
	require.True(t, tree.Flatten(tr).IsLeaf("auth.login.title"))

	saved, err := afero.ReadFile(fs, "/cache/acme/web/en.json")
	require.NoError(t, err)
	require.JSONEq(t, messagesJSON, string(saved))
}

func TestOversizedResponse(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(messagesJSON))
	})

	store := cache.NewInMemory()
	c, err := New(srv.URL, "acme/web", WithCache(store, time.Minute), WithRetries(0, time.Millisecond))
	require.NoError(t, err)
	c.maxBody = 16

	ctx := context.Background()
	_, err = c.Messages(ctx, "en")
	require.ErrorIs(t, err, ErrTooLarge)

	_, found, err := store.Get(ctx, "acme/web/en.json")
	require.NoError(t, err)
	require.False(t, found)
}

func TestUndecodableCacheEntryIsRefetched(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(messagesJSON))
	})

	store := cache.NewInMemory()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "acme/web/en.json", []byte(`not json`), time.Minute))

	c, err := New(srv.URL, "acme/web", WithCache(store, time.Minute))
	require.NoError(t, err)

	tr, err := c.Messages(ctx, "en")
	require.NoError(t, err)
	require.True(t, tree.Flatten(tr).IsLeaf("common.save"))
	require.Equal(t, int32(1), hits.Load())
}

func TestUnavailableWithoutFallback(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	c, err := New(srv.URL, "acme/web", WithRetries(1, time.Millisecond))
	require.NoError(t, err)

	_, err = c.Manifest(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestNew(t *testing.T) {
	_, err := New("", "acme/web")
	require.Error(t, err)

	_, err = New("https://cdn.example.com", "")
	require.Error(t, err)
}

func TestNormalizeLocale(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"en-US", "en-us", false},
		{"EN", "en", false},
		{"de", "de", false},
		{"not a locale", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := NormalizeLocale(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}
