package pipeline

import (
	"log/slog"
	"net/http"

	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/crawler"
	"github.com/nao1215/a11yscan/internal/fingerprint"
	"github.com/nao1215/a11yscan/internal/metrics"
	"github.com/nao1215/a11yscan/internal/model"
)

// Deps are the long-lived collaborators shared by every run.
type Deps struct {
	// Client performs all requests. It should not set its own timeout;
	// per-request timeouts come from the config.
	Client *http.Client

	// Store keeps the fingerprint of the last run of each site.
	Store *fingerprint.Store

	// Recorder receives crawl metrics. Nil disables metrics.
	Recorder *metrics.Recorder

	Logger *slog.Logger
}

// Factory builds the pipeline of a single run.
type Factory func(target *model.CrawlTarget) *Pipeline

// NewFactory returns a Factory that assembles crawl, analyze, aggregate
// and fingerprint steps from cfg. Per-site settings of the config file
// are resolved by target host on every call.
func NewFactory(cfg *config.Config, deps Deps) Factory {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := deps.Client
	if client == nil {
		client = &http.Client{}
	}
	store := deps.Store
	if store == nil {
		store = fingerprint.NewStore()
	}

	return func(target *model.CrawlTarget) *Pipeline {
		site := cfg.Site(target.Host())

		fetchOpts := []crawler.FetcherOption{
			crawler.WithUserAgent(cfg.UserAgent),
			crawler.WithMaxBodySize(cfg.MaxBodySize),
			crawler.WithHeaders(site.Headers),
			crawler.WithCookie(site.Cookie),
			crawler.WithRateLimit(cfg.RequestsPerSecond),
		}
		maxPages := cfg.MaxPages
		if site.MaxPages > 0 {
			maxPages = site.MaxPages
		}
		spiderOpts := []crawler.SpiderOption{
			crawler.WithMaxPages(maxPages),
			crawler.WithConcurrency(cfg.Concurrency),
			crawler.WithBudget(cfg.Budget),
			crawler.WithPageTimeout(cfg.PageTimeout),
			crawler.WithSoftCutoff(cfg.SoftCutoff),
			crawler.WithScorer(crawler.NewScorer(cfg.Policy())),
			crawler.WithIgnorePatterns(site.IgnorePatterns),
		}
		if cfg.RespectRobots {
			spiderOpts = append(spiderOpts, crawler.WithRobots(client, cfg.UserAgent))
		}
		if deps.Recorder != nil {
			fetchOpts = append(fetchOpts, crawler.WithFetchObserver(deps.Recorder))
			spiderOpts = append(spiderOpts, crawler.WithObserver(deps.Recorder))
		}

		fetcher := crawler.NewFetcher(client, fetchOpts...)

		p := New(WithLogger(logger))
		p.AddSteps(
			NewCrawlStep(fetcher,
				WithSpiderOptions(spiderOpts...),
				WithFallbackTimeout(cfg.FallbackTimeout),
				WithCrawlLogger(logger),
			),
			NewAnalyzeStep(logger),
			NewAggregateStep(),
			NewFingerprintStep(store),
		)
		return p
	}
}
