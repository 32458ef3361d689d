// SPDX-License-Identifier: AGPL-3.0-only
package fetcher

import (
	"context"
	"errors"
	"log"
)

// Strategy is one backend for getting a handle's data. A platform fetcher
// holds an ordered chain of these and takes the first that yields parseable
// structured data.
type Strategy interface {
	Label() string
	Fetch(ctx context.Context, handle string) (*RawFetchResult, error)
}

// SourceFetcher runs the cascade for one platform.
type SourceFetcher struct {
	Platform   string
	strategies []Strategy
}

func NewSourceFetcher(platform string, strategies ...Strategy) *SourceFetcher {
	return &SourceFetcher{Platform: platform, strategies: strategies}
}

// Fetch tries each strategy in order. A terminal error (handle missing,
// account blocked) stops the chain immediately: the next backend would see
// the same account. A rate-limited or transient failure skips to the next
// strategy. When every strategy fails the chain reports rate-limited if any
// backend said so, otherwise unavailable.
func (f *SourceFetcher) Fetch(ctx context.Context, handle string) (*RawFetchResult, error) {
	var lastErr error
	rateLimited := false

	for _, s := range f.strategies {
		if ctx.Err() != nil {
			return nil, TransientErr(ctx.Err().Error())
		}

		res, err := s.Fetch(ctx, handle)
		if err == nil && res != nil {
			res.SourceLabel = s.Label()
			log.Printf("fetch %s/%s: strategy %q won with %d posts", f.Platform, handle, s.Label(), len(res.Posts))
			return res, nil
		}
		if err == nil {
			err = TransientErr("strategy " + s.Label() + " returned no result")
		}

		var fe *FetchError
		if errors.As(err, &fe) {
			if !fe.Retryable {
				return nil, fe
			}
			if fe.Kind == KindRateLimited {
				rateLimited = true
			}
		}
		log.Printf("fetch %s/%s: strategy %q failed: %v", f.Platform, handle, s.Label(), err)
		lastErr = err
	}

	detail := "all strategies exhausted"
	if lastErr != nil {
		detail = lastErr.Error()
	}
	if rateLimited {
		return nil, RateLimitedErr(detail)
	}
	return nil, UnavailableErr(detail)
}
