package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers match them with errors.Is.
var (
	// ErrNoTargets is returned when no site was given on the command line.
	ErrNoTargets = errors.New("no target specified: provide at least one site URL or hostname")

	// ErrInvalidMaxPages is returned when the page cap is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidConcurrency is returned when the limiter capacity is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidBudget is returned when the crawl budget is not positive.
	ErrInvalidBudget = errors.New("invalid crawl budget: must be positive")

	// ErrInvalidPageTimeout is returned when the per-page timeout is not positive.
	ErrInvalidPageTimeout = errors.New("invalid page timeout: must be positive")

	// ErrInvalidFallbackTimeout is returned when the fallback timeout is not positive.
	ErrInvalidFallbackTimeout = errors.New("invalid fallback timeout: must be positive")

	// ErrInvalidSoftCutoff is returned when the soft cutoff is outside (0, 1].
	ErrInvalidSoftCutoff = errors.New("invalid soft cutoff: must be in (0, 1]")

	// ErrInvalidRate is returned when requests per second is negative.
	ErrInvalidRate = errors.New("invalid rate: must be non-negative")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidRounds is returned when rounds is not positive.
	ErrInvalidRounds = errors.New("invalid rounds: must be positive")

	// ErrInvalidInterval is returned when the round interval is negative.
	ErrInvalidInterval = errors.New("invalid interval: must be non-negative")

	// ErrInvalidCacheTTL is returned when the cache TTL is not positive.
	ErrInvalidCacheTTL = errors.New("invalid cache ttl: must be positive")

	// ErrInvalidMaxBodySize is returned when the body ceiling is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrConflictingReportFormats is returned when more than one of
	// --json, --markdown and --csv is given.
	ErrConflictingReportFormats = errors.New("conflicting report formats: choose one of --json, --markdown, --csv")
)
