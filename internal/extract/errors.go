package extract

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// MalformedGenerationError means generator output could not be coerced into
// the expected JSON shape. Raw holds a truncated copy for diagnostics only.
type MalformedGenerationError struct {
	Raw    string
	Reason string
}

func (e *MalformedGenerationError) Error() string {
	return "malformed generation: " + e.Reason
}

// GeneratorUnavailableError wraps a failed call to the content generator
// (network, provider, or credential problem). Message is the provider's own
// text and is shown to the user verbatim.
type GeneratorUnavailableError struct {
	Provider string
	Message  string
	Err      error
}

func (e *GeneratorUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %s", e.Provider, e.Message)
}

func (e *GeneratorUnavailableError) Unwrap() error {
	return e.Err
}

// RetryableError indicates a transient failure that can be retried.
// RetryAfter is the provider's requested wait, zero when it gave none.
type RetryableError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, Truncate(e.Message, 200))
}

// ParseRetryAfter reads a Retry-After header given in seconds or as an HTTP
// date. Missing, malformed and past values yield zero.
func ParseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil && t.After(now) {
		return t.Sub(now)
	}
	return 0
}

func unavailable(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &GeneratorUnavailableError{Provider: provider, Message: err.Error(), Err: err}
}
