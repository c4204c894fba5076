package pipeline

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/docmap/internal/extract"
)

const (
	// MaxRetries is the number of generator attempts per call, first included.
	MaxRetries = 3

	maxBackoff = 30 * time.Second
	// MaxRetryAfter caps how long a provider's Retry-After may hold a worker.
	MaxRetryAfter = time.Minute
)

// IsRetryable reports whether the generator marked err as transient.
func IsRetryable(err error) bool {
	var retryErr *extract.RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns an exponential delay for attempt n (0-indexed) with up to
// 50% jitter.
func Backoff(attempt int) time.Duration {
	base := min(time.Duration(1<<uint(attempt))*time.Second, maxBackoff)
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// RetryDelay is the wait before retrying err. A Retry-After longer than the
// computed backoff wins, up to MaxRetryAfter.
func RetryDelay(err error, attempt int, backoff func(int) time.Duration) time.Duration {
	d := backoff(attempt)
	var retryErr *extract.RetryableError
	if errors.As(err, &retryErr) && retryErr.RetryAfter > d {
		d = min(retryErr.RetryAfter, MaxRetryAfter)
	}
	return d
}
