package collyfetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitebind/sitebind/internal/crawler"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchSuccess(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sitebind-test/0.1", r.UserAgent())
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<p>hello</p>"))
	})

	f := New(Config{UserAgent: "sitebind-test/0.1", Timeout: 5 * time.Second})
	resp, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<p>hello</p>", string(resp.Body))
	assert.Contains(t, resp.Headers.Get("Content-Type"), "text/html")
}

func TestFetchNotFound(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	f := New(Config{Timeout: 5 * time.Second})
	resp, err := f.Fetch(context.Background(), srv.URL+"/missing.md")
	require.Error(t, err)

	assert.ErrorIs(t, err, crawler.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFetchServerError(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	f := New(Config{Timeout: 5 * time.Second})
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.NotErrorIs(t, err, crawler.ErrNotFound)
}

func TestFetchSendsCookies(t *testing.T) {
	var got string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("sessionid"); err == nil {
			got = c.Value
		}
		_, _ = w.Write([]byte("ok"))
	})

	f := New(Config{
		Timeout: 5 * time.Second,
		Cookies: []*http.Cookie{{Name: "sessionid", Value: "abc123", Path: "/"}},
	})
	_, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "abc123", got)
}

func TestFetchIsolatedPerCall(t *testing.T) {
	hits := 0
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write([]byte("ok"))
	})

	f := New(Config{Timeout: 5 * time.Second})
	for i := 0; i < 2; i++ {
		_, err := f.Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, hits, "revisit state must not leak between fetches")
}
