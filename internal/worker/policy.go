// SPDX-License-Identifier: AGPL-3.0-only
package worker

import "time"

// RetryPolicy governs the orchestrator's backoff for one platform.
// RateLimitDelay overrides the exponential schedule whenever the upstream
// explicitly said slow down, regardless of attempt count.
type RetryPolicy struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	RateLimitDelay time.Duration
}

// Delay computes the wait before the given (already incremented) attempt:
// BaseDelay * 2^attempt, capped at MaxDelay.
func (p RetryPolicy) Delay(attempt int, rateLimited bool) time.Duration {
	if rateLimited {
		return p.RateLimitDelay
	}
	d := p.BaseDelay * (1 << attempt)
	if d > p.MaxDelay || d <= 0 {
		d = p.MaxDelay
	}
	return d
}

// Scrape-heavy platforms get fewer, slower attempts; API-backed ones can
// afford more.
var defaultPolicies = map[string]RetryPolicy{
	"Twitter":   {MaxAttempts: 4, BaseDelay: 30 * time.Second, MaxDelay: 900 * time.Second, RateLimitDelay: 600 * time.Second},
	"Instagram": {MaxAttempts: 3, BaseDelay: 60 * time.Second, MaxDelay: 900 * time.Second, RateLimitDelay: 600 * time.Second},
	"TikTok":    {MaxAttempts: 4, BaseDelay: 30 * time.Second, MaxDelay: 900 * time.Second, RateLimitDelay: 600 * time.Second},
	"GitHub":    {MaxAttempts: 5, BaseDelay: 10 * time.Second, MaxDelay: 600 * time.Second, RateLimitDelay: 600 * time.Second},
	"Mastodon":  {MaxAttempts: 5, BaseDelay: 10 * time.Second, MaxDelay: 300 * time.Second, RateLimitDelay: 300 * time.Second},
}

var fallbackPolicy = RetryPolicy{
	MaxAttempts:    3,
	BaseDelay:      30 * time.Second,
	MaxDelay:       900 * time.Second,
	RateLimitDelay: 600 * time.Second,
}
