package fetch

import (
	"context"
	"time"

	cdpdom "github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/jonathan/jobfit-analyzer/internal/detector"
	"github.com/jonathan/jobfit-analyzer/internal/dom"
	"github.com/jonathan/jobfit-analyzer/internal/logger"
	"go.uber.org/zap"
)

const (
	// DefaultIdentitySelector identifies a rendered profile header
	DefaultIdentitySelector = "h1.text-heading-xlarge"
	// DefaultPollInterval re-checks the page between mutation events
	DefaultPollInterval = 250 * time.Millisecond
	// DefaultWatchTimeout bounds a whole watch session
	DefaultWatchTimeout = 60 * time.Second
)

// WatchOptions configures Watch.
type WatchOptions struct {
	Detector         detector.Config
	IdentitySelector string
	PollInterval     time.Duration
	Timeout          time.Duration
	Browser          BrowserOptions
	// DetectorOptions are passed through to detector.New.
	DetectorOptions []detector.Option
}

func (o WatchOptions) withDefaults() WatchOptions {
	if o.IdentitySelector == "" {
		o.IdentitySelector = DefaultIdentitySelector
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultWatchTimeout
	}
	return o
}

// Watch opens url in a headless browser and captures the page once the change
// detector fires: shortly after the profile header appears, or when the
// fallback timeout elapses. A main-frame navigation starts a new detection cycle.
func Watch(ctx context.Context, url string, opts WatchOptions) (dom.Snapshot, error) {
	opts = opts.withDefaults()
	log := logger.WithFields(opts.Browser.Logger, zap.String(logger.FieldProfileURL, url))

	browserCtx, cancel := newBrowser(ctx, opts.Browser)
	defer cancel()
	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, opts.Timeout)
	defer cancelTimeout()

	events := make(chan pageEvent, 64)
	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		switch e := ev.(type) {
		case *cdpdom.EventChildNodeInserted, *cdpdom.EventChildNodeRemoved,
			*cdpdom.EventChildNodeCountUpdated, *cdpdom.EventSetChildNodes,
			*cdpdom.EventDocumentUpdated, *cdpdom.EventAttributeModified:
			emit(events, eventMutation)
		case *page.EventFrameNavigated:
			if e.Frame != nil && e.Frame.ParentID == "" {
				emit(events, eventNavigated)
			}
		}
	})

	log.Debug("opening page in headless browser")
	if err := chromedp.Run(browserCtx, chromedp.Navigate(url)); err != nil {
		return nil, &Error{URL: url, Message: "navigation failed", Cause: err}
	}
	// drop events from the initial load, which Start already covers
	drain(events)

	return watchLoop(browserCtx, url, chromePage{identitySelector: opts.IdentitySelector}, events, opts, log)
}

type pageEvent int

const (
	eventMutation pageEvent = iota
	eventNavigated
)

// emit never blocks; chromedp listeners must return promptly. Dropped
// mutations are covered by polling.
func emit(events chan<- pageEvent, ev pageEvent) {
	select {
	case events <- ev:
	default:
	}
}

func drain(events chan pageEvent) {
	for {
		select {
		case <-events:
		default:
			return
		}
	}
}

// pageDriver is the part of a live tab the watch loop needs.
type pageDriver interface {
	HasIdentity(ctx context.Context) (bool, error)
	Capture(ctx context.Context) (html, location string, err error)
	Subscribe(ctx context.Context) error
}

type captureResult struct {
	snapshot dom.Snapshot
	err      error
}

func watchLoop(ctx context.Context, url string, pg pageDriver, events <-chan pageEvent, opts WatchOptions, log *zap.Logger) (dom.Snapshot, error) {
	results := make(chan captureResult, 1)

	check := func() bool {
		found, err := pg.HasIdentity(ctx)
		if err != nil {
			log.Debug("identity check failed", zap.Error(err))
			return false
		}
		return found
	}
	fire := func() {
		html, location, err := pg.Capture(ctx)
		var res captureResult
		if err != nil {
			res.err = &Error{URL: url, Message: "failed to capture page", Cause: err}
		} else if snap, parseErr := dom.FromHTML(html, location); parseErr != nil {
			res.err = &Error{URL: url, Message: "failed to parse captured page", Cause: parseErr}
		} else {
			res.snapshot = snap
		}
		select {
		case results <- res:
		default:
		}
	}

	detOpts := append([]detector.Option{detector.WithLogger(log)}, opts.DetectorOptions...)
	det := detector.New(opts.Detector, check, fire, detOpts...)
	defer det.Stop()

	subscribe := func() {
		if err := pg.Subscribe(ctx); err != nil {
			log.Debug("failed to subscribe to DOM mutations", zap.Error(err))
		}
	}
	subscribe()
	det.Start()

	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, &Error{URL: url, Message: "page was not captured before the deadline", Cause: ctx.Err()}
		case res := <-results:
			if res.err == nil {
				log.Debug("page captured", zap.String("location", res.snapshot.Location()))
			}
			return res.snapshot, res.err
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			switch ev {
			case eventNavigated:
				log.Debug("main frame navigated, restarting detection")
				det.Reset()
				subscribe()
			case eventMutation:
				det.Notify()
			}
		case <-ticker.C:
			det.Notify()
		}
	}
}
