package fetch

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
)

// Browser renders pages in a shared headless Chrome, one tab per Get.
type Browser struct {
	browserCtx context.Context
	cancel     context.CancelFunc
}

// NewBrowser launches Chrome. Close must be called to stop it.
func NewBrowser(ctx context.Context, userAgent string) (*Browser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
	)
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// An empty Run starts the browser; tabs derived from browserCtx share it.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	return &Browser{
		browserCtx: browserCtx,
		cancel: func() {
			cancelBrowser()
			cancelAlloc()
		},
	}, nil
}

// newTab opens a tab in the shared browser.
func (b *Browser) newTab() (context.Context, context.CancelFunc) {
	return chromedp.NewContext(b.browserCtx)
}

// Get navigates a fresh tab to url and returns the rendered document.
func (b *Browser) Get(ctx context.Context, url string) (string, error) {
	tabCtx, cancelTab := b.newTab()
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var html string
	if err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("render %s: %w", url, err)
	}
	return html, nil
}

// Close shuts the browser down.
func (b *Browser) Close() {
	b.cancel()
}
