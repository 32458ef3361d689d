// SPDX-License-Identifier: AGPL-3.0-only
package fetcher

import "errors"

// ErrorKind classifies a fetch failure for the retry machinery. Terminal
// kinds (not found, blocked) never retry; the rest do, with rate limiting
// carrying its own fixed delay.
type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindPermanentBlocked ErrorKind = "blocked"
	KindRateLimited      ErrorKind = "rate_limited"
	KindTransient        ErrorKind = "transient"
	KindUnavailable      ErrorKind = "unavailable"
)

type FetchError struct {
	Kind      ErrorKind
	Retryable bool
	Detail    string
}

func (e *FetchError) Error() string {
	return string(e.Kind) + ": " + e.Detail
}

// NotFoundErr marks a handle that does not exist on the platform.
func NotFoundErr(detail string) *FetchError {
	return &FetchError{Kind: KindNotFound, Retryable: false, Detail: detail}
}

// BlockedErr marks an account that exists but cannot be read: suspended,
// deleted or private.
func BlockedErr(detail string) *FetchError {
	return &FetchError{Kind: KindPermanentBlocked, Retryable: false, Detail: detail}
}

func RateLimitedErr(detail string) *FetchError {
	return &FetchError{Kind: KindRateLimited, Retryable: true, Detail: detail}
}

func TransientErr(detail string) *FetchError {
	return &FetchError{Kind: KindTransient, Retryable: true, Detail: detail}
}

// UnavailableErr marks a fetch where every backend failed without a
// definitive answer about the account.
func UnavailableErr(detail string) *FetchError {
	return &FetchError{Kind: KindUnavailable, Retryable: true, Detail: detail}
}

// Classify coerces any error into a FetchError. Unknown errors are treated
// as transient so they get the normal retry schedule.
func Classify(err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	return TransientErr(err.Error())
}
