package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "a11yscan"

	// DefaultMaxPages caps how many pages a single run samples.
	// The scan is a heuristic sample, not a full site audit.
	DefaultMaxPages = 20

	// DefaultConcurrency is the number of fetches allowed in flight at once.
	DefaultConcurrency = 5

	// DefaultBudget is the total wall-clock budget of one crawl.
	DefaultBudget = 45 * time.Second

	// DefaultPageTimeout bounds a single page request.
	DefaultPageTimeout = 8 * time.Second

	// DefaultFallbackTimeout is used for the single root retry performed
	// when the crawl produced no pages at all.
	DefaultFallbackTimeout = 20 * time.Second

	// DefaultSoftCutoff is the fraction of the budget after which no new
	// pages are admitted.
	DefaultSoftCutoff = 0.8

	// DefaultBatchSize is the number of targets scanned concurrently.
	DefaultBatchSize = 3

	// DefaultCacheTTL is how long a finished report is served from cache.
	DefaultCacheTTL = 10 * time.Minute

	// DefaultUserAgent mimics a desktop browser. Many sites answer plain
	// library user agents with 403.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36 a11yscan/1.0"

	// DefaultMaxBodySize is the byte ceiling of a page body. Larger bodies
	// are truncated, not rejected.
	DefaultMaxBodySize = 1_000_000
)

// Config holds all configuration options for a11yscan.
// It is populated from CLI flags and passed down explicitly.
type Config struct {
	// MaxPages is the page cap of one crawl.
	MaxPages int

	// Concurrency is the limiter capacity (K).
	Concurrency int

	// Budget is the total time budget of one crawl.
	Budget time.Duration

	// PageTimeout is the per-request timeout.
	PageTimeout time.Duration

	// FallbackTimeout is the timeout of the root-only retry.
	FallbackTimeout time.Duration

	// SoftCutoff is the fraction of Budget after which admissions stop.
	SoftCutoff float64

	// RequestsPerSecond paces dispatches. Zero disables pacing.
	RequestsPerSecond float64

	// RespectRobots excludes discovered links disallowed by robots.txt.
	RespectRobots bool

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches the log handler to JSON.
	LogJSON bool

	// BatchSize is the number of targets scanned concurrently.
	BatchSize int

	// Rounds is how many times each target is audited in one invocation.
	// Rounds after the first bypass the result cache so the fingerprint
	// delta becomes visible.
	Rounds int

	// Interval is the pause between rounds.
	Interval time.Duration

	// CacheTTL is the lifetime of cached reports.
	CacheTTL time.Duration

	// ConfigFilePath is an explicit configuration file path.
	ConfigFilePath string

	// File holds the loaded configuration file, if any.
	File *File

	// JSONReport, MarkdownReport and CSVReport select the output format.
	// At most one may be set; the default is the simple text report.
	JSONReport     bool
	MarkdownReport bool
	CSVReport      bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// MetricsFile writes Prometheus metrics in text format after the scan.
	MetricsFile string

	// Targets are the raw site inputs.
	Targets []string

	// DBDir is the directory of the evidence database.
	DBDir string

	// SaveToDB persists evidence records after each scan.
	SaveToDB bool

	// UserAgent is sent with every request.
	UserAgent string

	// MaxBodySize is the body byte ceiling.
	MaxBodySize int64
}

// NewConfig creates a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		MaxPages:        DefaultMaxPages,
		Concurrency:     DefaultConcurrency,
		Budget:          DefaultBudget,
		PageTimeout:     DefaultPageTimeout,
		FallbackTimeout: DefaultFallbackTimeout,
		SoftCutoff:      DefaultSoftCutoff,
		RespectRobots:   true,
		BatchSize:       DefaultBatchSize,
		Rounds:          1,
		CacheTTL:        DefaultCacheTTL,
		DBDir:           XDGDataDir(),
		SaveToDB:        true,
		UserAgent:       DefaultUserAgent,
		MaxBodySize:     DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for a11yscan.
// On Linux: ~/.local/share/a11yscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for a11yscan.
// On Linux: ~/.config/a11yscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Policy returns the scoring policy from the loaded file, or the default one.
func (c *Config) Policy() ScoringPolicy {
	if c.File != nil && c.File.Scoring != nil {
		return c.File.Scoring.withDefaults()
	}
	return DefaultScoringPolicy()
}

// Site returns the per-site configuration for host.
func (c *Config) Site(host string) SiteConfig {
	if c.File == nil {
		return SiteConfig{}
	}
	return c.File.GetSiteConfig(host)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTargets
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.Budget <= 0 {
		return ErrInvalidBudget
	}
	if c.PageTimeout <= 0 {
		return ErrInvalidPageTimeout
	}
	if c.FallbackTimeout <= 0 {
		return ErrInvalidFallbackTimeout
	}
	if c.SoftCutoff <= 0 || c.SoftCutoff > 1 {
		return ErrInvalidSoftCutoff
	}
	if c.RequestsPerSecond < 0 {
		return ErrInvalidRate
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.Rounds <= 0 {
		return ErrInvalidRounds
	}
	if c.Interval < 0 {
		return ErrInvalidInterval
	}
	if c.CacheTTL <= 0 {
		return ErrInvalidCacheTTL
	}
	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}

	formats := 0
	for _, set := range []bool{c.JSONReport, c.MarkdownReport, c.CSVReport} {
		if set {
			formats++
		}
	}
	if formats > 1 {
		return ErrConflictingReportFormats
	}
	return nil
}
