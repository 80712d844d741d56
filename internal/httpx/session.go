package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
)

// CalendarClient fetches the portal's monthly calendar pages. The widget is
// session-stateful: a bootstrap request establishes cookies that the month
// requests need, so one collector (and its cookie jar) is shared for the
// whole run. Fetches are strictly sequential with a fixed delay between them.
type CalendarClient struct {
	collector    *colly.Collector
	bootstrapURL string
	monthURL     string
	bootstrapped bool

	body        []byte
	contentType string
	status      int
	err         error
}

// NewCalendarClient builds the direct-fetch strategy. monthURL must contain
// two verbs: year then month (e.g. "...&year=%d&month=%d").
func NewCalendarClient(userAgent, bootstrapURL, monthURL string, timeout, delay time.Duration) *CalendarClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	cc := &CalendarClient{
		bootstrapURL: bootstrapURL,
		monthURL:     monthURL,
	}

	c := colly.NewCollector(colly.UserAgent(userAgent))
	c.IgnoreRobotsTxt = true
	// The same month URLs are fetched again on every scheduled refresh; only
	// the cookie jar should persist between runs, not the visited set.
	c.AllowURLRevisit = true
	c.SetRequestTimeout(timeout)
	if delay > 0 {
		_ = c.Limit(&colly.LimitRule{DomainGlob: "*", Delay: delay})
	}
	c.OnRequest(func(r *colly.Request) {
		if v := r.Ctx.GetAny("ctx"); v != nil {
			if reqCtx, ok := v.(context.Context); ok && reqCtx.Err() != nil {
				r.Abort()
			}
		}
	})
	c.OnResponse(func(r *colly.Response) {
		cc.body = append([]byte(nil), r.Body...)
		cc.contentType = r.Headers.Get("Content-Type")
		cc.status = r.StatusCode
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			cc.status = r.StatusCode
		}
		cc.err = err
	})
	cc.collector = c
	return cc
}

// MonthHTML fetches one (year, month) calendar render and returns the raw
// bytes plus the declared Content-Type.
func (c *CalendarClient) MonthHTML(ctx context.Context, year int, month time.Month) ([]byte, string, error) {
	if !c.bootstrapped {
		if c.bootstrapURL != "" {
			// Cookies only; a failed bootstrap is not fatal, the month
			// request may still work.
			_, _, _ = c.visit(ctx, c.bootstrapURL)
		}
		c.bootstrapped = true
	}
	body, contentType, err := c.visit(ctx, fmt.Sprintf(c.monthURL, year, int(month)))
	if err != nil {
		return nil, "", fmt.Errorf("calendar %d-%02d: %w", year, int(month), err)
	}
	return body, contentType, nil
}

func (c *CalendarClient) visit(ctx context.Context, url string) ([]byte, string, error) {
	if ctx.Err() != nil {
		return nil, "", ctx.Err()
	}
	c.body, c.contentType, c.status, c.err = nil, "", 0, nil

	collyCtx := colly.NewContext()
	collyCtx.Put("ctx", ctx)
	if err := c.collector.Request(http.MethodGet, url, nil, collyCtx, nil); err != nil {
		return nil, "", err
	}
	if c.err != nil {
		return nil, "", &FetchError{Status: c.status, Err: c.err}
	}
	if c.status >= 400 {
		return nil, "", &FetchError{Status: c.status}
	}
	if len(c.body) == 0 {
		return nil, "", errors.New("empty response body")
	}
	return c.body, c.contentType, nil
}
