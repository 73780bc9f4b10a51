// Package fetch retrieves catalog pages, over plain HTTP or through a
// headless browser when the page has to be rendered first.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// Getter returns the HTML of a page.
type Getter interface {
	Get(ctx context.Context, url string) (string, error)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Status)
}

// Options configures a Fetcher.
type Options struct {
	UserAgent string
	// Timeout per request; zero waits forever.
	Timeout time.Duration
	// RequestsPerSecond caps the request rate; zero leaves it unlimited.
	RequestsPerSecond float64
	// Cache, if set, is consulted before the network.
	Cache *Cache
}

// Fetcher performs GET requests for HTML documents.
type Fetcher struct {
	client  *resty.Client
	limiter *rate.Limiter
	cache   *Cache
}

// New creates a Fetcher.
func New(opts Options) *Fetcher {
	client := resty.New().
		SetHeader("Accept", "text/html,application/xhtml+xml")
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &Fetcher{client: client, limiter: limiter, cache: opts.Cache}
}

// Get fetches url and returns its body.
func (f *Fetcher) Get(ctx context.Context, url string) (string, error) {
	if f.cache != nil {
		body, ok, err := f.cache.Get(url)
		if err != nil {
			slog.WarnContext(ctx, "cache read failed", "url", url, "err", err)
		} else if ok {
			slog.DebugContext(ctx, "cache hit", "url", url)
			return body, nil
		}
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("wait for rate limit: %w", err)
	}

	slog.DebugContext(ctx, "fetching", "url", url)
	res, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", url, err)
	}
	if res.IsError() || res.StatusCode() >= 300 {
		return "", &StatusError{URL: url, Status: res.StatusCode()}
	}

	body := res.String()
	if f.cache != nil {
		if err := f.cache.Put(url, body); err != nil {
			slog.WarnContext(ctx, "cache write failed", "url", url, "err", err)
		}
	}
	return body, nil
}
