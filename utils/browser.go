package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"image-extractor/internal/types"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"golang.org/x/sync/singleflight"
)

// stealthScript hides the most common automation markers before any page script runs
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => false });
Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });
Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
`

var chromePaths = []string{
	"/headless-shell/headless-shell",
	"/usr/bin/chromium-browser",
	"/usr/bin/chromium",
	"/usr/bin/google-chrome",
	"/usr/bin/google-chrome-stable",
}

// BrowserClient shares one headless browser process between requests.
// The process is launched on first use and relaunched if it has gone away;
// every request gets its own tab.
type BrowserClient struct {
	config *types.Config
	logger types.Logger

	launches singleflight.Group
	tabs     chan struct{}

	mu            sync.Mutex
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
}

// NewBrowserClient creates a new browser client. No process is started until NewPage.
func NewBrowserClient(config *types.Config, logger types.Logger) *BrowserClient {
	maxTabs := config.MaxTabs
	if maxTabs < 1 {
		maxTabs = 1
	}

	return &BrowserClient{
		config: config,
		logger: logger,
		tabs:   make(chan struct{}, maxTabs),
	}
}

// allocatorOptions returns the exec allocator flags for the shared process
func (b *BrowserClient) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.config.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-web-security", true),
		chromedp.Flag("disable-features", "IsolateOrigins,site-per-process"),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(b.config.UserAgent),
	)

	if b.config.BrowserPath != "" {
		return append(opts, chromedp.ExecPath(b.config.BrowserPath))
	}

	for _, p := range chromePaths {
		if _, err := os.Stat(p); err == nil {
			opts = append(opts, chromedp.ExecPath(p))
			break
		}
	}
	return opts
}

// alive returns the browser context if the process is still connected
func (b *BrowserClient) alive() (context.Context, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserCtx != nil && b.browserCtx.Err() == nil {
		return b.browserCtx, true
	}
	return nil, false
}

// browser returns the shared browser context, launching it when needed.
// Concurrent callers wait for the same launch.
func (b *BrowserClient) browser() (context.Context, error) {
	if ctx, ok := b.alive(); ok {
		return ctx, nil
	}

	v, err, _ := b.launches.Do("browser", func() (interface{}, error) {
		if ctx, ok := b.alive(); ok {
			return ctx, nil
		}
		return b.launch()
	})
	if err != nil {
		return nil, err
	}
	return v.(context.Context), nil
}

func (b *BrowserClient) launch() (context.Context, error) {
	start := time.Now()
	b.logger.Info("Launching headless browser")

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), b.allocatorOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithErrorf(b.logger.Debugf))

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b.mu.Lock()
	previousBrowser, previousAlloc := b.browserCancel, b.allocCancel
	b.browserCtx = browserCtx
	b.browserCancel = browserCancel
	b.allocCancel = allocCancel
	b.mu.Unlock()

	if previousBrowser != nil {
		previousBrowser()
	}
	if previousAlloc != nil {
		previousAlloc()
	}

	b.logger.Infof("Headless browser ready in %v", time.Since(start))
	return browserCtx, nil
}

// NewPage opens a new tab in the shared browser.
// The tab is closed when Close is called or ctx is done.
func (b *BrowserClient) NewPage(ctx context.Context) (types.Page, error) {
	select {
	case b.tabs <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("acquire browser tab: %w", ctx.Err())
	}

	browserCtx, err := b.browser()
	if err != nil {
		<-b.tabs
		return nil, err
	}

	tabCtx, tabCancel := chromedp.NewContext(browserCtx)
	stop := context.AfterFunc(ctx, tabCancel)

	p := &BrowserPage{
		ctx:     tabCtx,
		logger:  b.logger,
		timeout: b.config.NavigationTimeout,
	}
	p.release = func() {
		stop()
		tabCancel()
		<-b.tabs
	}

	// The first Run attaches the tab and keeps its event loop on the context
	// it is given, so it must run on tabCtx. Setup is bounded by closing the tab.
	expired := time.AfterFunc(b.config.NavigationTimeout, tabCancel)
	err = chromedp.Run(tabCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetUserAgentOverride(b.config.UserAgent).
				WithAcceptLanguage("en-US,en;q=0.9").
				Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return network.SetExtraHTTPHeaders(network.Headers{
				"Accept-Language":           "en-US,en;q=0.9",
				"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
				"Upgrade-Insecure-Requests": "1",
			}).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
			return err
		}),
		chromedp.EmulateViewport(1920, 1080),
	)
	if !expired.Stop() && err == nil {
		err = fmt.Errorf("tab setup exceeded %v", b.config.NavigationTimeout)
	}
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return p, nil
}

// Close shuts the shared browser down
func (b *BrowserClient) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserCancel != nil {
		b.browserCancel()
	}
	if b.allocCancel != nil {
		b.allocCancel()
	}
	b.browserCtx = nil
	b.browserCancel = nil
	b.allocCancel = nil
}

// BrowserPage is one tab of the shared browser
type BrowserPage struct {
	ctx     context.Context
	logger  types.Logger
	timeout time.Duration
	release func()

	closeOnce sync.Once
	mu        sync.Mutex
	location  string
}

// run executes actions against the tab, bounded by timeout and by ctx
func (p *BrowserPage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url in the tab
func (p *BrowserPage) Navigate(ctx context.Context, url string, strategy types.WaitStrategy, timeout time.Duration) error {
	p.logger.Debugf("Navigating to %s (wait until %s, timeout %v)", url, strategy, timeout)

	var action chromedp.Action = chromedp.Navigate(url)
	if strategy == types.WaitNetworkIdle {
		action = navigateNetworkIdle(url)
	}

	var location string
	if err := p.run(ctx, timeout, action, chromedp.Location(&location)); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}

	p.mu.Lock()
	p.location = location
	p.mu.Unlock()
	return nil
}

// navigateNetworkIdle starts navigation and returns once Chrome reports the
// network as almost idle, without waiting for the load event
func navigateNetworkIdle(url string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		listenCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		idle := make(chan struct{})
		var once sync.Once
		var started bool
		var mu sync.Mutex

		chromedp.ListenTarget(listenCtx, func(ev interface{}) {
			e, ok := ev.(*page.EventLifecycleEvent)
			if !ok {
				return
			}

			mu.Lock()
			defer mu.Unlock()
			switch e.Name {
			case "init":
				started = true
			case "networkAlmostIdle":
				if started {
					once.Do(func() { close(idle) })
				}
			}
		})

		if err := page.SetLifecycleEventsEnabled(true).Do(ctx); err != nil {
			return err
		}

		done := make(chan error, 1)
		go func() {
			done <- chromedp.Navigate(url).Do(listenCtx)
		}()

		select {
		case <-idle:
			return nil
		case err := <-done:
			if err != nil {
				return err
			}
			select {
			case <-idle:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// Evaluate runs expression in the page, awaiting promises
func (p *BrowserPage) Evaluate(ctx context.Context, expression string, res interface{}) error {
	return p.run(ctx, p.timeout, chromedp.Evaluate(expression, res,
		func(params *runtime.EvaluateParams) *runtime.EvaluateParams {
			return params.WithAwaitPromise(true)
		}))
}

// HTML returns the serialized document
func (p *BrowserPage) HTML(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, p.timeout, chromedp.Evaluate(`document.documentElement.outerHTML`, &html)); err != nil {
		return "", fmt.Errorf("failed to get page content: %w", err)
	}

	p.logger.Debugf("Retrieved page content from %s (%d bytes)", p.URL(), len(html))
	return html, nil
}

// URL returns the location after the last successful navigation
func (p *BrowserPage) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.location
}

// Close closes the tab and frees its slot. Safe to call more than once.
func (p *BrowserPage) Close() error {
	p.closeOnce.Do(p.release)
	return nil
}

// IsTransientNavigationError reports whether err looks like a connection reset
// that is worth one more navigation attempt
func IsTransientNavigationError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	msg := err.Error()
	return strings.Contains(msg, "socket") ||
		strings.Contains(msg, "hang up") ||
		strings.Contains(msg, "ERR_CONNECTION_RESET")
}
