package fetch

import (
	"context"
	"fmt"
	"time"

	cdpdom "github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"github.com/jonathan/jobfit-analyzer/internal/dom"
	"github.com/jonathan/jobfit-analyzer/internal/logger"
	"go.uber.org/zap"
)

// DefaultRenderWait is how long RenderHTML lets scripts run before capturing.
const DefaultRenderWait = 3 * time.Second

// BrowserOptions configures the headless browser.
type BrowserOptions struct {
	// ExecPath overrides the Chrome binary; empty uses the chromedp lookup.
	ExecPath string
	// UserDataDir reuses a browser profile, e.g. one that is already signed in.
	UserDataDir string
	Logger      *zap.Logger
}

// newBrowser starts a headless Chrome and returns a chromedp context for one tab.
// Requires Chrome/Chromium to be installed on the system.
func newBrowser(ctx context.Context, opts BrowserOptions) (context.Context, context.CancelFunc) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserDataDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.UserDataDir))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	return browserCtx, func() {
		cancelBrowser()
		cancelAlloc()
	}
}

// RenderHTML loads url in a headless browser, waits for scripts to settle and
// returns the rendered document as a snapshot.
func RenderHTML(ctx context.Context, url string, timeout time.Duration, opts BrowserOptions) (dom.Snapshot, error) {
	log := logger.OrNop(opts.Logger)
	log.Debug("starting headless browser", zap.String(logger.FieldProfileURL, url))

	browserCtx, cancel := newBrowser(ctx, opts)
	defer cancel()

	if timeout > 0 {
		var cancelTimeout context.CancelFunc
		browserCtx, cancelTimeout = context.WithTimeout(browserCtx, timeout)
		defer cancelTimeout()
	}

	var html, location string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(DefaultRenderWait),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&location),
	)
	if err != nil {
		return nil, &Error{URL: url, Message: "browser rendering failed", Cause: err}
	}

	log.Debug("rendered page", zap.Int("bytes", len(html)), zap.String("location", location))

	snap, err := dom.FromHTML(html, location)
	if err != nil {
		return nil, &Error{URL: url, Message: "failed to parse rendered page", Cause: err}
	}
	return snap, nil
}

// chromePage drives a live tab through chromedp.
type chromePage struct {
	identitySelector string
}

func (p chromePage) HasIdentity(ctx context.Context) (bool, error) {
	var found bool
	script := fmt.Sprintf(`document.querySelector(%q) !== null`, p.identitySelector)
	if err := chromedp.Run(ctx, chromedp.Evaluate(script, &found)); err != nil {
		return false, err
	}
	return found, nil
}

func (p chromePage) Capture(ctx context.Context) (string, string, error) {
	var html, location string
	err := chromedp.Run(ctx,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&location),
	)
	return html, location, err
}

// Subscribe requests the full document so the browser reports child node
// mutations for it.
func (p chromePage) Subscribe(ctx context.Context) error {
	return chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := cdpdom.GetDocument().WithDepth(-1).Do(ctx)
		return err
	}))
}
