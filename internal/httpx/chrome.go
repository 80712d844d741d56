package httpx

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromeSource renders calendar pages in headless Chrome for portal fronts
// that reject plain HTTP clients. The browser is started lazily on first use
// and kept for the whole run so session cookies survive across months; the
// rendered DOM always comes back UTF-8 regardless of the server charset.
type ChromeSource struct {
	monthURL    string
	userAgent   string
	renderWait  time.Duration
	pageTimeout time.Duration

	browserCtx      context.Context
	browserCancel   context.CancelFunc
	allocatorCancel context.CancelFunc
}

func NewChromeSource(userAgent, monthURL string) *ChromeSource {
	return &ChromeSource{
		monthURL:    monthURL,
		userAgent:   userAgent,
		renderWait:  2 * time.Second,
		pageTimeout: 60 * time.Second,
	}
}

func (s *ChromeSource) start() error {
	if s.browserCtx != nil {
		return nil
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(s.userAgent),
	)
	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)

	testCtx, cancel := context.WithTimeout(browserCtx, 15*time.Second)
	defer cancel()
	if err := chromedp.Run(testCtx, chromedp.Navigate("about:blank")); err != nil {
		browserCancel()
		allocatorCancel()
		return fmt.Errorf("start browser: %w", err)
	}

	s.browserCtx = browserCtx
	s.browserCancel = browserCancel
	s.allocatorCancel = allocatorCancel
	return nil
}

// MonthHTML implements the page-source contract by navigating to the month
// view and returning the rendered outer HTML.
func (s *ChromeSource) MonthHTML(ctx context.Context, year int, month time.Month) ([]byte, string, error) {
	if err := s.start(); err != nil {
		return nil, "", err
	}
	runCtx, cancel := context.WithTimeout(s.browserCtx, s.pageTimeout)
	defer cancel()
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-runCtx.Done():
		}
	}()

	var rendered string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(fmt.Sprintf(s.monthURL, year, int(month))),
		chromedp.WaitReady("body"),
		chromedp.Sleep(s.renderWait),
		chromedp.OuterHTML("html", &rendered),
	)
	if err != nil {
		return nil, "", fmt.Errorf("render calendar %d-%02d: %w", year, int(month), err)
	}
	return []byte(rendered), "text/html; charset=utf-8", nil
}

// Close tears the browser down at run end.
func (s *ChromeSource) Close() {
	if s.browserCancel != nil {
		s.browserCancel()
	}
	if s.allocatorCancel != nil {
		s.allocatorCancel()
	}
	s.browserCtx = nil
}
