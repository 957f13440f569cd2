// Package fetch provides the polite HTTP client used by site adapters.
// It enforces a minimum delay between consecutive requests to the same
// host and retries transient failures. Retry policy lives here, not in
// the sync or archive engines.
package fetch

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client is a rate-limited HTTP fetcher. It is safe for use from a
// single goroutine per host; the mirror core never issues overlapping
// requests to the same archive.
type Client struct {
	http      *http.Client
	userAgent string
	delay     time.Duration
	retries   int

	mu        sync.Mutex
	lastFetch map[string]time.Time
}

// New creates a fetcher with the given per-host delay and retry count.
// A retries value below 1 is treated as 1.
func New(delay time.Duration, retries int, userAgent string) *Client {
	if retries < 1 {
		retries = 1
	}
	return &Client{
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: userAgent,
		delay:     delay,
		retries:   retries,
		lastFetch: make(map[string]time.Time),
	}
}

// Get downloads a URL and returns the response body. Failures are
// retried with a short pause; the last error is returned if all
// attempts fail. A non-2xx status counts as a failure.
func (c *Client) Get(rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Second)
		}
		c.waitForHost(u.Host)

		data, err := c.fetch(rawURL)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) fetch(rawURL string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	// Some archives 403 the default Go user agent.
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// waitForHost sleeps until at least the configured delay has passed
// since the previous request to the same host.
func (c *Client) waitForHost(host string) {
	c.mu.Lock()
	last, ok := c.lastFetch[host]
	now := time.Now()
	var wait time.Duration
	if ok {
		if elapsed := now.Sub(last); elapsed < c.delay {
			wait = c.delay - elapsed
		}
	}
	c.lastFetch[host] = now.Add(wait)
	c.mu.Unlock()

	if wait > 0 {
		time.Sleep(wait)
	}
}
