// Package httpx holds the polite fetch layer: rate-limited direct HTTP, the
// session-stateful calendar client, and the rendered-browser fallback.
package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"
)

const maxBodyBytes = 8 << 20

// FetchError carries the HTTP status of a failed fetch so callers can
// classify it.
type FetchError struct {
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch error (status %d)", e.Status)
	}
	return fmt.Sprintf("fetch error (status %d): %v", e.Status, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client is a polite HTTP client: per-host rate limits, robots.txt checks
// (fail-open), bounded timeouts, and retries with backoff on retryable
// statuses. Used for the registry download and filing-text lookups.
type Client struct {
	client      *http.Client
	ua          string
	limiters    map[string]*rate.Limiter
	robotsCache map[string]*robotstxt.RobotsData
	mu          sync.Mutex
}

func NewClient(userAgent string, timeout time.Duration) *Client {
	if userAgent == "" {
		userAgent = "ipofeed/1.0"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		client:      &http.Client{Timeout: timeout},
		ua:          userAgent,
		limiters:    map[string]*rate.Limiter{},
		robotsCache: map[string]*robotstxt.RobotsData{},
	}
}

// NewRequest builds a GET request with context, defaulting the scheme to
// https.
func NewRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	if rawURL == "" {
		return nil, errors.New("empty url")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
}

// GetBody fetches a URL and returns the body plus the Content-Type header,
// which downstream decoding treats as the declared charset hint.
func (c *Client) GetBody(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := NewRequest(ctx, rawURL)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", &FetchError{Status: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// Do executes the request respecting robots.txt and the per-host rate limit.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.ua)
	}
	u := req.URL
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	if !c.allowed(ctx, u) {
		return nil, fmt.Errorf("blocked by robots.txt: %s", u)
	}

	limiter := c.limiterFor(u.Hostname())
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = &FetchError{Status: resp.StatusCode}
			resp.Body.Close()
			if err := sleepWithContext(ctx, time.Duration(500*(1<<attempt))*time.Millisecond); err != nil {
				return nil, err
			}
			continue
		}
		return resp, nil
	}
	if lastErr == nil {
		lastErr = errors.New("httpx: fetch failed without error")
	}
	return nil, lastErr
}

func (c *Client) limiterFor(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.limiters[host]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Every(time.Second), 2)
	c.limiters[host] = l
	return l
}

// allowed fails open: a registry or filing host with an unreachable
// robots.txt should not stall the whole run.
func (c *Client) allowed(ctx context.Context, u *url.URL) bool {
	data, err := c.robotsFor(ctx, u)
	if err != nil {
		return true
	}
	group := data.FindGroup(c.ua)
	if group == nil {
		group = data.FindGroup("*")
	}
	if group == nil {
		return true
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return group.Test(path)
}

func (c *Client) robotsFor(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	host := u.Hostname()
	c.mu.Lock()
	if data, ok := c.robotsCache[host]; ok {
		c.mu.Unlock()
		return data, nil
	}
	c.mu.Unlock()

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.ua)
	if err := c.limiterFor(host).Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.robotsCache[host] = data
	c.mu.Unlock()
	return data, nil
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
