package crawler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	systemclock "github.com/sitebind/sitebind/internal/clock/system"
	"github.com/sitebind/sitebind/internal/convert"
	"github.com/sitebind/sitebind/internal/crawler"
	"github.com/sitebind/sitebind/internal/extract"
	collyfetcher "github.com/sitebind/sitebind/internal/fetcher/colly"
	uuidgen "github.com/sitebind/sitebind/internal/id/uuid"
	"github.com/sitebind/sitebind/internal/storage/memory"
)

// newDocsSite serves a small site: /docs links to /docs/a and /docs/b,
// /docs/a links to /blog/off (outside the prefix) and back to /docs.
func newDocsSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/docs", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<h1>Docs Root</h1>
			<a href="/docs/a">A</a>
			<a href="/docs/b">B</a>
		</body></html>`))
	})
	mux.HandleFunc("/docs/a", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<h1>Page A</h1>
			<a href="/blog/off">off prefix</a>
			<a href="/docs">back</a>
		</body></html>`))
	})
	mux.HandleFunc("/docs/b", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h1>Page B</h1></body></html>`))
	})
	mux.HandleFunc("/blog/off", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h1>Blog</h1></body></html>`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestEngine(cfg crawler.Config, store *memory.BlobStore) *crawler.Engine {
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.RequestTimeout,
	})
	return crawler.NewEngine(
		cfg,
		fetcher,
		nil,
		convert.New(),
		extract.New(),
		nil,
		store,
		systemclock.New(),
		uuidgen.New(),
		nil,
	)
}

func siteConfig(srv *httptest.Server) crawler.Config {
	return crawler.Config{
		StartURL:        srv.URL + "/docs",
		AllowedPrefixes: []string{srv.URL + "/docs"},
		OutputName:      "site",
		OutputKind:      crawler.OutputMarkdown,
		Strategy:        crawler.StrategyHTMLOnly,
		MaxURLs:         100,
		MaxPartBytes:    1 << 20,
		Concurrency:     4,
		UserAgent:       "sitebind-test/0.1",
		RequestTimeout:  5 * time.Second,
	}
}

func TestEngineCrawlsWithinPrefix(t *testing.T) {
	srv := newDocsSite(t)
	store := memory.New()
	engine := newTestEngine(siteConfig(srv), store)

	result, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.URLsFetched, "docs, docs/a, docs/b; blog stays out")
	assert.Equal(t, 0, result.URLsFailed)
	assert.Equal(t, 1, result.FilesWritten)

	require.Equal(t, []string{"site_part1.md"}, store.Names())
	data, ok := store.Part("site_part1.md")
	require.True(t, ok)
	text := string(data)

	assert.Contains(t, text, "Docs Root")
	assert.Contains(t, text, "Page A")
	assert.Contains(t, text, "Page B")
	assert.NotContains(t, text, "Blog")

	// Discovery order: the start page first, then its links in document order.
	root := strings.Index(text, "Docs Root")
	a := strings.Index(text, "Page A")
	b := strings.Index(text, "Page B")
	assert.True(t, root < a && a < b, "parts must preserve discovery order")
}

func TestEngineHonorsURLBudget(t *testing.T) {
	srv := newDocsSite(t)
	cfg := siteConfig(srv)
	cfg.MaxURLs = 2

	store := memory.New()
	engine := newTestEngine(cfg, store)

	result, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.URLsFetched, "budget caps accepted URLs, not issued work")
}

func TestEngineSplitsParts(t *testing.T) {
	srv := newDocsSite(t)
	cfg := siteConfig(srv)
	cfg.MaxPartBytes = 120

	store := memory.New()
	engine := newTestEngine(cfg, store)

	result, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Greater(t, result.FilesWritten, 1, "small part cap forces a split")
	names := store.Names()
	require.NotEmpty(t, names)
	assert.Equal(t, "site_part1.md", names[0])
	assert.Equal(t, 3, result.URLsFetched)
}

func TestEngineFailedPageDoesNotAbort(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/docs", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h1>Root</h1><a href="/docs/missing">gone</a></body></html>`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	store := memory.New()
	engine := newTestEngine(siteConfig(srv), store)

	result, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.URLsFetched)
	assert.Equal(t, 1, result.URLsFailed)
	assert.Equal(t, 1, result.FilesWritten, "surviving pages still produce a part")
}

func TestEngineRejectsStartOutsidePrefix(t *testing.T) {
	srv := newDocsSite(t)
	cfg := siteConfig(srv)
	cfg.AllowedPrefixes = []string{srv.URL + "/other"}

	engine := newTestEngine(cfg, memory.New())
	_, err := engine.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected")
}

func TestEngineRequiresRendererForPDF(t *testing.T) {
	srv := newDocsSite(t)
	cfg := siteConfig(srv)
	cfg.OutputKind = crawler.OutputPDF

	engine := newTestEngine(cfg, memory.New())
	_, err := engine.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "renderer")
}
