package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/nao1215/a11yscan/internal/aggregate"
	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/crawler"
	"github.com/nao1215/a11yscan/internal/fingerprint"
	"github.com/nao1215/a11yscan/internal/heuristics"
	"github.com/nao1215/a11yscan/internal/model"
)

// CrawlStep samples pages of the target. When the crawl yields no page at
// all, the root is retried once with the longer fallback timeout.
type CrawlStep struct {
	// fetcher is shared by the spider and the root fallback.
	fetcher crawler.PageFetcher

	// spiderOpts are passed to every spider this step creates.
	spiderOpts []crawler.SpiderOption

	// fallbackTimeout bounds the single root retry.
	fallbackTimeout time.Duration

	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithSpiderOptions sets the options of the crawl orchestrator.
func WithSpiderOptions(opts ...crawler.SpiderOption) CrawlStepOption {
	return func(s *CrawlStep) {
		s.spiderOpts = append(s.spiderOpts, opts...)
	}
}

// WithFallbackTimeout sets the timeout of the root retry.
func WithFallbackTimeout(d time.Duration) CrawlStepOption {
	return func(s *CrawlStep) {
		if d > 0 {
			s.fallbackTimeout = d
		}
	}
}

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// NewCrawlStep creates a new crawl step.
func NewCrawlStep(fetcher crawler.PageFetcher, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		fetcher:         fetcher,
		fallbackTimeout: config.DefaultFallbackTimeout,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do crawls report.Target and records the attempted and fetched pages.
// It fails with *model.CrawlExhaustedError when neither the crawl nor the
// root fallback produced a page.
func (s *CrawlStep) Do(ctx context.Context, report *model.ScanReport) error {
	target, err := model.NormalizeTarget(report.Target)
	if err != nil {
		return err
	}

	opts := append([]crawler.SpiderOption{crawler.WithLogger(s.logger)}, s.spiderOpts...)
	result, err := crawler.NewSpider(s.fetcher, opts...).Crawl(ctx, target)
	if err != nil {
		return err
	}

	report.AttemptedPages = result.Attempted
	report.FrontierRemaining = result.FrontierRemaining
	report.TimedOut = result.TimedOut
	pages := result.Pages

	if len(pages) == 0 {
		s.logger.Info("crawl produced no pages, retrying root",
			"target", target.String(),
			"timeout", s.fallbackTimeout,
		)
		page, err := s.fallback(ctx, target)
		if err != nil {
			return err
		}
		pages = []model.FetchedPage{*page}
		report.UsedFallback = true
		if !slices.Contains(report.AttemptedPages, page.URL) {
			report.AttemptedPages = append(report.AttemptedPages, page.URL)
		}
	}

	report.Pages = pages
	report.SuccessfulPages = make([]string, len(pages))
	for i, p := range pages {
		report.SuccessfulPages[i] = p.URL
	}

	s.logger.Debug("crawl complete",
		"target", target.String(),
		"attempted", len(report.AttemptedPages),
		"fetched", len(pages),
		"timed_out", report.TimedOut,
		"used_fallback", report.UsedFallback,
	)
	return nil
}

func (s *CrawlStep) fallback(ctx context.Context, target *model.CrawlTarget) (*model.FetchedPage, error) {
	page, err := s.fetcher.Fetch(ctx, target.String(), s.fallbackTimeout)
	if err == nil {
		page.Order = 0
		return page, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var fetchErr *model.FetchError
	return nil, &model.CrawlExhaustedError{
		Target:     target.String(),
		BotBlocked: errors.As(err, &fetchErr) && fetchErr.BotBlocked(),
		Cause:      err,
	}
}

// AnalyzeStep runs the page heuristics over every fetched page.
type AnalyzeStep struct {
	logger *slog.Logger
}

// NewAnalyzeStep creates a new analysis step.
func NewAnalyzeStep(logger *slog.Logger) *AnalyzeStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzeStep{logger: logger}
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string {
	return "analyze"
}

// Do analyzes report.Pages into report.Facts. Pages whose markup cannot
// be analyzed contribute no facts.
func (s *AnalyzeStep) Do(_ context.Context, report *model.ScanReport) error {
	target, err := model.NormalizeTarget(report.Target)
	if err != nil {
		return err
	}
	analyzer := heuristics.NewAnalyzer(target.URL)

	report.Facts = make([]*model.PageFacts, 0, len(report.Pages))
	for _, page := range report.Pages {
		pageURL := page.FinalURL
		if pageURL == "" {
			pageURL = page.URL
		}
		facts, err := analyzer.Analyze(page.Body, pageURL, page.Order)
		if err != nil {
			s.logger.Debug("page not analyzed", "url", pageURL, "error", err)
			continue
		}
		report.Facts = append(report.Facts, facts)
	}
	return nil
}

// AggregateStep merges the page facts into site metrics and derives the
// coverage, issues and severity assessment.
type AggregateStep struct{}

// NewAggregateStep creates a new aggregation step.
func NewAggregateStep() *AggregateStep {
	return &AggregateStep{}
}

// Name returns the step name.
func (s *AggregateStep) Name() string {
	return "aggregate"
}

// Do fills report.Metrics, Coverage, Issues and Assessment.
func (s *AggregateStep) Do(_ context.Context, report *model.ScanReport) error {
	agg := aggregate.New()
	for _, facts := range report.Facts {
		agg.Add(facts)
	}
	report.Metrics = *agg.Finalize(report.AttemptedPages)
	report.Coverage = aggregate.Classify(&report.Metrics)
	report.Issues = aggregate.DeriveIssues(&report.Metrics)
	report.Assessment = aggregate.Assess(report.Issues)
	return nil
}

// FingerprintStep hashes the metric vector, swaps it into the store and
// computes the change against the previous run of the same site. It must
// be the last step so that failed runs never replace a baseline.
type FingerprintStep struct {
	store *fingerprint.Store
}

// NewFingerprintStep creates a new fingerprint step backed by store.
func NewFingerprintStep(store *fingerprint.Store) *FingerprintStep {
	return &FingerprintStep{store: store}
}

// Name returns the step name.
func (s *FingerprintStep) Name() string {
	return "fingerprint"
}

// Do fills report.Fingerprint, Previous and Changes.
func (s *FingerprintStep) Do(_ context.Context, report *model.ScanReport) error {
	fp := fingerprint.New(&report.Metrics, report.DateScanned)
	prev := s.store.Swap(report.Target, fp)

	report.Fingerprint = fp
	report.Previous = prev
	report.Changes = fingerprint.Diff(prev, fp)
	return nil
}
