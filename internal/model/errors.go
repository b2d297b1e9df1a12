package model

import (
	"errors"
	"fmt"
	"net/http"
)

// Error taxonomy of a scan. Only ErrInvalidInput and ErrCrawlExhausted
// reach the caller; the others are recovered per page.
var (
	// ErrInvalidInput is returned for an unparsable or non-http(s) target.
	ErrInvalidInput = errors.New("invalid input")

	// ErrFetchFailed marks a non-2xx status or a non-HTML response.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrTimeout marks an exceeded per-request timeout.
	ErrTimeout = errors.New("timeout")

	// ErrParseFailure marks markup that could not be analyzed.
	ErrParseFailure = errors.New("parse failure")

	// ErrCrawlExhausted is returned when neither the crawl nor the root
	// fallback produced a single page.
	ErrCrawlExhausted = errors.New("crawl exhausted")
)

// FetchError describes a rejected response.
type FetchError struct {
	URL         string
	StatusCode  int
	ContentType string
}

// Error implements error.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 && (e.StatusCode < 200 || e.StatusCode > 299) {
		return fmt.Sprintf("fetch failed: %s returned status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch failed: %s is not HTML (content type %q)", e.URL, e.ContentType)
}

// Is reports whether target is ErrFetchFailed.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}

// BotBlocked reports whether the status code typically signals bot defenses.
func (e *FetchError) BotBlocked() bool {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return true
	default:
		return false
	}
}

// CrawlExhaustedError is returned when a run produced zero pages.
type CrawlExhaustedError struct {
	Target     string
	BotBlocked bool
	Cause      error
}

// Error implements error. The message is meant to be shown to users as is.
func (e *CrawlExhaustedError) Error() string {
	if e.BotBlocked {
		return fmt.Sprintf("%s: the site refused automated requests (bot protection); try again later or scan a page that allows crawlers", e.Target)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: no page could be fetched: %v", e.Target, e.Cause)
	}
	return fmt.Sprintf("%s: no page could be fetched", e.Target)
}

// Is reports whether target is ErrCrawlExhausted.
func (e *CrawlExhaustedError) Is(target error) bool {
	return target == ErrCrawlExhausted
}

// Unwrap returns the fallback failure.
func (e *CrawlExhaustedError) Unwrap() error {
	return e.Cause
}
