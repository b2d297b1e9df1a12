package crawler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/model"
)

// PageFetcher fetches one page. *Fetcher implements it.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string, timeout time.Duration) (*model.FetchedPage, error)
}

// State is the phase of a crawl.
type State int

const (
	// StateSeeded means the frontier holds only the root.
	StateSeeded State = iota
	// StateExpanding means pages are dispatched and links admitted.
	StateExpanding
	// StateDraining means no new pages are dispatched; in-flight fetches finish.
	StateDraining
	// StateDone means the result is final.
	StateDone
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateSeeded:
		return "seeded"
	case StateExpanding:
		return "expanding"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// CrawlResult is the outcome of one crawl.
type CrawlResult struct {
	// Pages are the successfully fetched pages in dispatch order.
	Pages []model.FetchedPage

	// Attempted lists every URL a fetch was started for, in dispatch order.
	Attempted []string

	// FrontierRemaining is the number of admitted URLs never dispatched.
	FrontierRemaining int

	// Failures is the number of fetches that failed.
	Failures int

	// TimedOut is true when the total budget ended the crawl.
	TimedOut bool

	// SoftCutoffReached is true when admissions stopped at the soft cutoff.
	SoftCutoffReached bool

	// Elapsed is the wall-clock duration of the crawl.
	Elapsed time.Duration
}

// Spider is the crawl orchestrator. One goroutine selects and dispatches
// frontier entries; fetch units run concurrently under a Limiter and
// report back on a channel, so the frontier and the visited set are never
// shared between goroutines.
type Spider struct {
	fetcher        PageFetcher
	scorer         *Scorer
	concurrency    int
	maxPages       int
	budget         time.Duration
	pageTimeout    time.Duration
	softCutoff     float64
	ignorePatterns []string
	robotsClient   *http.Client
	userAgent      string
	logger         *slog.Logger
	observer       Observer
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxPages sets the page cap.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithConcurrency sets the limiter capacity.
func WithConcurrency(k int) SpiderOption {
	return func(s *Spider) {
		s.concurrency = k
	}
}

// WithBudget sets the total time budget.
func WithBudget(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.budget = d
	}
}

// WithPageTimeout sets the per-request timeout.
func WithPageTimeout(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.pageTimeout = d
	}
}

// WithSoftCutoff sets the budget fraction after which nothing new is admitted.
func WithSoftCutoff(fraction float64) SpiderOption {
	return func(s *Spider) {
		s.softCutoff = fraction
	}
}

// WithScorer replaces the default scorer.
func WithScorer(scorer *Scorer) SpiderOption {
	return func(s *Spider) {
		s.scorer = scorer
	}
}

// WithIgnorePatterns sets URL path patterns that are never admitted.
// Patterns use glob syntax (e.g., "/admin/*", "*.php", "/logout*").
func WithIgnorePatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.ignorePatterns = patterns
	}
}

// WithRobots enables robots.txt filtering of discovered links.
func WithRobots(client *http.Client, userAgent string) SpiderOption {
	return func(s *Spider) {
		s.robotsClient = client
		s.userAgent = userAgent
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver reports admissions to o.
func WithObserver(o Observer) SpiderOption {
	return func(s *Spider) {
		if o != nil {
			s.observer = o
		}
	}
}

// NewSpider creates a Spider that fetches through fetcher.
func NewSpider(fetcher PageFetcher, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:     fetcher,
		scorer:      NewScorer(config.DefaultScoringPolicy()),
		concurrency: config.DefaultConcurrency,
		maxPages:    config.DefaultMaxPages,
		budget:      config.DefaultBudget,
		pageTimeout: config.DefaultPageTimeout,
		softCutoff:  config.DefaultSoftCutoff,
		userAgent:   config.DefaultUserAgent,
		logger:      slog.Default(),
		observer:    nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// fetchOutcome is what a fetch unit reports back. seq identifies the unit.
type fetchOutcome struct {
	seq   int
	url   string
	page  *model.FetchedPage
	links []string
	err   error
}

type unitResult struct {
	page  *model.FetchedPage
	links []string
}

// Crawl samples pages of target. Page failures are logged and skipped.
// The returned error is non-nil only when ctx itself was cancelled; the
// partial result is returned alongside it.
func (s *Spider) Crawl(ctx context.Context, target *model.CrawlTarget) (*CrawlResult, error) {
	start := time.Now()
	runCtx, cancel := context.WithTimeout(ctx, s.budget)
	defer cancel()
	softDeadline := start.Add(time.Duration(float64(s.budget) * s.softCutoff))

	var robots *robotsRules
	if s.robotsClient != nil {
		robots = loadRobots(runCtx, s.robotsClient, target.URL, s.userAgent, s.pageTimeout)
	}

	limiter := NewLimiter(s.concurrency)
	front := newFrontier()
	visited := make(map[string]struct{})
	fetched := make(map[string]struct{})
	pending := make(map[int]string)
	// Buffered to the page cap so units never block once the loop has returned.
	results := make(chan fetchOutcome, s.maxPages)

	result := &CrawlResult{}
	var pages []model.FetchedPage
	seq := 0

	front.push(target.String(), 0)
	state := StateExpanding
	log := s.logger.With("target", target.String())

	checkCutoff := func() {
		if state == StateExpanding && time.Now().After(softDeadline) {
			result.SoftCutoffReached = true
			state = StateDraining
			log.Debug("soft cutoff reached", "in_flight", len(pending))
		}
	}

loop:
	for {
		checkCutoff()

		for state == StateExpanding && len(pending) < limiter.Capacity() && len(result.Attempted) < s.maxPages {
			entry, ok := front.pop()
			if !ok {
				break
			}
			if _, seen := visited[entry.url]; seen {
				continue
			}
			visited[entry.url] = struct{}{}
			result.Attempted = append(result.Attempted, entry.url)
			pending[seq] = entry.url
			go s.fetchUnit(runCtx, limiter, seq, entry.url, results)
			seq++
		}
		if state == StateExpanding && len(result.Attempted) >= s.maxPages {
			state = StateDraining
		}

		if len(pending) == 0 {
			break
		}

		select {
		case out := <-results:
			delete(pending, out.seq)
			if out.err != nil {
				result.Failures++
				log.Debug("page skipped", "url", out.url, "error", out.err)
				continue
			}

			final := model.CanonicalURL(out.page.FinalURL)
			if _, dup := fetched[final]; dup && final != "" {
				log.Debug("duplicate page after redirect", "url", out.url, "final_url", out.page.FinalURL)
				continue
			}
			fetched[final] = struct{}{}
			// A redirect target is the page itself; never dispatch it again.
			if final != "" {
				visited[final] = struct{}{}
			}
			out.page.Order = out.seq
			pages = append(pages, *out.page)

			checkCutoff()
			if state == StateExpanding {
				s.admit(out.links, len(result.Attempted), target, front, visited, robots)
			}
		case <-runCtx.Done():
			if ctx.Err() == nil {
				result.TimedOut = true
				log.Debug("crawl budget exhausted", "discarded", len(pending))
			}
			break loop
		}
	}

	result.finish(pages, front, start)
	if err := ctx.Err(); err != nil {
		return result, err
	}
	log.Debug("crawl finished",
		"state", StateDone.String(),
		"attempted", len(result.Attempted),
		"fetched", len(result.Pages),
		"frontier_remaining", result.FrontierRemaining)
	return result, nil
}

func (r *CrawlResult) finish(pages []model.FetchedPage, front *frontier, start time.Time) {
	sort.Slice(pages, func(i, j int) bool { return pages[i].Order < pages[j].Order })
	r.Pages = pages
	r.FrontierRemaining = front.len()
	r.Elapsed = time.Since(start)
}

// admit scores links and pushes the accepted ones. attempted is the number
// of pages dispatched so far. Runs on the orchestrating goroutine only.
func (s *Spider) admit(links []string, attempted int, target *model.CrawlTarget, front *frontier, visited map[string]struct{}, robots *robotsRules) {
	if attempted >= s.maxPages {
		return
	}
	for _, link := range links {
		canonical := model.CanonicalURL(link)
		if canonical == "" {
			continue
		}
		if _, seen := visited[canonical]; seen {
			continue
		}
		u, err := url.Parse(canonical)
		if err != nil || !model.SameSite(u.Hostname(), target.Host()) {
			continue
		}
		if s.ignored(u.Path) || !robots.allowed(canonical) {
			s.observer.ObserveAdmission(false)
			continue
		}
		score := s.scorer.Score(canonical, target.URL)
		if !s.scorer.Accept(score) {
			s.observer.ObserveAdmission(false)
			continue
		}
		if front.push(canonical, score) {
			s.observer.ObserveAdmission(true)
		}
	}
}

// fetchUnit fetches and parses one page under the limiter and reports on out.
func (s *Spider) fetchUnit(ctx context.Context, limiter *Limiter, seq int, pageURL string, out chan<- fetchOutcome) {
	res, err := Run(ctx, limiter, func(ctx context.Context) (unitResult, error) {
		page, err := s.fetcher.Fetch(ctx, pageURL, s.pageTimeout)
		if err != nil {
			return unitResult{}, err
		}
		base := page.FinalURL
		if base == "" {
			base = pageURL
		}
		links, err := ExtractLinks(page.Body, base)
		if err != nil {
			s.logger.Debug("link extraction failed", "url", pageURL, "error", err)
		}
		return unitResult{page: page, links: links}, nil
	})
	out <- fetchOutcome{seq: seq, url: pageURL, page: res.page, links: res.links, err: err}
}

func (s *Spider) ignored(path string) bool {
	if path == "" {
		path = "/"
	}
	for _, pattern := range s.ignorePatterns {
		if matchPattern(pattern, path) {
			return true
		}
	}
	return false
}

// matchPattern checks if a path matches a glob pattern.
//
// Examples:
//   - "/admin/*" matches "/admin/dashboard" and "/admin"
//   - "*.php" matches "/cgi/index.php"
//   - "/logout*" matches "/logout?next=/"
func matchPattern(pattern, path string) bool {
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	if strings.HasPrefix(pattern, "*.") {
		if strings.HasSuffix(path, strings.TrimPrefix(pattern, "*")) {
			return true
		}
	}

	if strings.HasSuffix(pattern, "*") && !strings.ContainsAny(strings.TrimSuffix(pattern, "*"), "*?[") {
		if strings.HasPrefix(path, strings.TrimSuffix(pattern, "*")) {
			return true
		}
	}

	matched, err := filepath.Match(pattern, path)
	return err == nil && matched
}
