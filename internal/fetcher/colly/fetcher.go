// Package collyfetcher implements crawler.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/sitebind/sitebind/internal/crawler"
)

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
	// Cookies holds the read-only session cookies attached to every request.
	Cookies []*http.Cookie
}

// Fetcher executes single HTTP GETs through a Colly collector. One base
// collector carries the transport; each fetch clones it so per-request state
// never leaks between workers.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	c.WithTransport(newHTTPTransport())

	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
	}
}

// Fetch executes one HTTP GET. A response with an error status is returned
// alongside a typed error so callers can distinguish a missing resource from
// a network failure.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (crawler.FetchResponse, error) {
	collector := f.baseCollector.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	timeout := f.cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	collector.SetRequestTimeout(timeout)

	if len(f.cfg.Cookies) > 0 {
		if err := collector.SetCookies(rawURL, f.cfg.Cookies); err != nil {
			return crawler.FetchResponse{}, fmt.Errorf("set cookies: %w", err)
		}
	}

	var (
		result   crawler.FetchResponse
		fetchErr error
		status   int
	)
	start := time.Now()

	collector.OnResponse(func(r *colly.Response) {
		result = crawler.FetchResponse{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Headers:    r.Headers.Clone(),
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
	})
	collector.OnError(func(r *colly.Response, err error) {
		fetchErr = err
		if r != nil {
			status = r.StatusCode
		}
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(rawURL)
	}()

	var visitErr error
	select {
	case <-ctx.Done():
		return crawler.FetchResponse{}, fmt.Errorf("fetch canceled: %w", ctx.Err())
	case visitErr = <-done:
	}

	// Visit returns the HTTP error for non-2xx responses as well; OnError has
	// already recorded the status by then.
	if visitErr != nil || fetchErr != nil {
		err := fetchErr
		if err == nil {
			err = visitErr
		}
		resp := crawler.FetchResponse{URL: rawURL, StatusCode: status, Duration: time.Since(start)}
		if status == http.StatusNotFound || status == http.StatusGone {
			return resp, fmt.Errorf("%s: %w", rawURL, crawler.ErrNotFound)
		}
		return resp, fmt.Errorf("fetch %s (status %d): %w", rawURL, status, err)
	}
	return result, nil
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
