// SPDX-License-Identifier: AGPL-3.0-only
package render

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// Client is the process-wide JS-rendering capability. It owns one headless
// browser allocator, constructed at startup and torn down at shutdown, and is
// injected into the fetch strategies that need rendered DOM.
type Client struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
}

func NewClient(timeout time.Duration) *Client {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		chromedp.WindowSize(1920, 1080),
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Client{
		allocCtx: allocCtx,
		cancel:   cancel,
		timeout:  timeout,
	}
}

// RenderHTML navigates to url in a fresh tab, waits for scripts to settle and
// returns the rendered DOM. The whole attempt is time-boxed so a stuck page
// cannot hold a worker.
func (c *Client) RenderHTML(ctx context.Context, url string, settle time.Duration) (string, error) {
	ctx, cancelTimeout := context.WithTimeout(ctx, c.timeout)
	defer cancelTimeout()

	tabCtx, cancelTab := chromedp.NewContext(c.allocCtx)
	defer cancelTab()

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			cancelTab()
		case <-done:
		}
	}()
	defer close(done)

	var html string
	err := chromedp.Run(tabCtx,
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": "en-US,en;q=0.9"}),
		chromedp.Navigate(url),
		chromedp.Sleep(settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", url, err)
	}
	return html, nil
}

// Evaluate runs a JS expression on url's rendered page and decodes the result
// into out.
func (c *Client) Evaluate(ctx context.Context, url, expr string, settle time.Duration, out any) error {
	ctx, cancelTimeout := context.WithTimeout(ctx, c.timeout)
	defer cancelTimeout()

	tabCtx, cancelTab := chromedp.NewContext(c.allocCtx)
	defer cancelTab()

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			cancelTab()
		case <-done:
		}
	}()
	defer close(done)

	err := chromedp.Run(tabCtx,
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": "en-US,en;q=0.9"}),
		chromedp.Navigate(url),
		chromedp.Sleep(settle),
		chromedp.Evaluate(expr, out),
	)
	if err != nil {
		return fmt.Errorf("evaluate on %s: %w", url, err)
	}
	return nil
}

func (c *Client) Close() {
	c.cancel()
}
