// SPDX-License-Identifier: AGPL-3.0-only
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fluffyriot/profilescope/internal/render"
)

// Client bundles the outbound capabilities the strategies share: a plain
// HTTP client with transport-level retries and the JS renderer. One Client
// per process, injected into every fetcher.
type Client struct {
	httpClient *retryablehttp.Client
	Renderer   *render.Client
}

func NewClient(timeout time.Duration, renderer *render.Client) *Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient.Timeout = timeout
	rc.RetryMax = 2
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 3 * time.Second
	rc.Logger = nil
	// 429 and 404 carry meaning for the strategy chain; don't retry or
	// swallow them at the transport.
	rc.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, nil
		}
		return resp.StatusCode >= 500, nil
	}

	return &Client{
		httpClient: rc,
		Renderer:   renderer,
	}
}

// getBody fetches url and returns the body and status code. Non-2xx is not
// an error here; strategies classify status codes themselves.
func (c *Client) getBody(ctx context.Context, url string, headers map[string]string) ([]byte, int, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}

	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}
