package service

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// Login form selectors of auth.kontur.ru
const (
	konturPasswordTabSelector = `a[href*="password"]`
	konturLoginSelector       = `form input[type="email"], form input[name="login"]`
	konturPasswordSelector    = `form input[type="password"]`
	konturSubmitSelector      = `form button[type="submit"]`
)

// KonturBrowser logs in to Kontur.Market with headless Chrome.
// Used when the password endpoint rejects the HTTP client.
type KonturBrowser struct {
	chromePath    string
	assortmentURL string
	timeout       time.Duration
}

// NewKonturBrowser creates a new KonturBrowser.
// chromePath may be empty to use detectChromePath.
func NewKonturBrowser(chromePath, assortmentURL string) *KonturBrowser {
	return &KonturBrowser{
		chromePath:    chromePath,
		assortmentURL: assortmentURL,
		timeout:       90 * time.Second,
	}
}

// Ensure KonturBrowser implements KonturBrowserInterface
var _ KonturBrowserInterface = (*KonturBrowser)(nil)

// detectChromePath detects the path to Chrome/Chromium executable
// Checks CHROME_PATH env var first, then common installation paths
func detectChromePath() string {
	// Check environment variable first
	if chromePath := os.Getenv("CHROME_PATH"); chromePath != "" {
		if _, err := os.Stat(chromePath); err == nil {
			return chromePath
		}
	}

	// Common paths to check
	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// allocatorOptions returns the exec allocator options for the configured or detected Chrome
func (b *KonturBrowser) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
	)

	chromePath := b.chromePath
	if chromePath == "" {
		chromePath = detectChromePath()
	}
	if chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}
	// Otherwise let chromedp auto-detect (may fail in containers)
	return opts
}

// Login fills the password form, opens the assortment page and returns the browser cookies
func (b *KonturBrowser) Login(ctx context.Context, login, password string) ([]*http.Cookie, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, b.allocatorOptions()...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	var cookies []*network.Cookie
	err := chromedp.Run(chromedpCtx,
		// The assortment page redirects to the login form
		chromedp.Navigate(b.assortmentURL),
		chromedp.WaitReady("body"),
		chromedp.Click(konturPasswordTabSelector, chromedp.ByQuery, chromedp.NodeVisible),
		chromedp.WaitVisible(konturPasswordSelector, chromedp.ByQuery),
		chromedp.SendKeys(konturLoginSelector, login, chromedp.ByQuery),
		chromedp.SendKeys(konturPasswordSelector, password, chromedp.ByQuery),
		chromedp.Click(konturSubmitSelector, chromedp.ByQuery),
		chromedp.Sleep(5*time.Second), // Wait for the redirect chain to set the session cookies
		chromedp.Navigate(b.assortmentURL),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			cookies, err = network.GetCookies().WithURLs([]string{b.assortmentURL}).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("browser login failed: %w", err)
	}
	if len(cookies) == 0 {
		return nil, fmt.Errorf("browser login returned no cookies")
	}

	log.Printf("🌐 Browser login collected %d cookies", len(cookies))
	return toHTTPCookies(cookies), nil
}

// toHTTPCookies converts DevTools cookies for the HTTP client jar
func toHTTPCookies(cookies []*network.Cookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		hc := &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		}
		// Session cookies have no expiry
		if c.Expires > 0 {
			hc.Expires = time.Unix(int64(c.Expires), 0)
		}
		out = append(out, hc)
	}
	return out
}
