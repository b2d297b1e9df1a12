package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/nao1215/a11yscan/internal/cache"
	"github.com/nao1215/a11yscan/internal/metrics"
	"github.com/nao1215/a11yscan/internal/model"
)

// RunObserver receives one call per finished audit. *metrics.Recorder
// implements it.
type RunObserver interface {
	ObserveRun(outcome string, elapsed time.Duration)
}

// Auditor is the entry point of a site analysis. It normalizes the
// target, serves fresh results from the cache and collapses concurrent
// audits of the same normalized URL into one run.
type Auditor struct {
	factory  Factory
	cache    *cache.ResultCache
	observer RunObserver
	logger   *slog.Logger
	group    singleflight.Group

	mu      sync.Mutex
	flights map[string]*flight
}

// flight is the context of one shared run and the number of callers
// waiting on it.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// AuditorOption configures an Auditor.
type AuditorOption func(*Auditor)

// WithCache serves and stores reports through c.
func WithCache(c *cache.ResultCache) AuditorOption {
	return func(a *Auditor) {
		a.cache = c
	}
}

// WithRunObserver reports every audit outcome to o.
func WithRunObserver(o RunObserver) AuditorOption {
	return func(a *Auditor) {
		a.observer = o
	}
}

// WithAuditorLogger sets a custom logger for the auditor.
func WithAuditorLogger(logger *slog.Logger) AuditorOption {
	return func(a *Auditor) {
		a.logger = logger
	}
}

// NewAuditor creates an Auditor that runs pipelines built by factory.
func NewAuditor(factory Factory, opts ...AuditorOption) *Auditor {
	a := &Auditor{factory: factory, flights: make(map[string]*flight)}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Audit analyzes the site at raw. A cached report younger than the cache
// TTL is returned without crawling.
//
// Concurrent audits of the same site share one run. A caller whose ctx is
// done returns ctx.Err() at once; the run goes on for the remaining callers
// and is cancelled when the last of them has left.
//
// Only model.ErrInvalidInput, model.ErrCrawlExhausted and context errors
// are returned.
func (a *Auditor) Audit(ctx context.Context, raw string) (*model.ScanReport, error) {
	return a.audit(ctx, raw, true)
}

// Refresh is like Audit but never reads the cache. The new report still
// replaces the cached one.
func (a *Auditor) Refresh(ctx context.Context, raw string) (*model.ScanReport, error) {
	return a.audit(ctx, raw, false)
}

func (a *Auditor) audit(ctx context.Context, raw string, useCache bool) (*model.ScanReport, error) {
	target, err := model.NormalizeTarget(raw)
	if err != nil {
		return nil, err
	}
	key := target.String()

	if useCache && a.cache != nil {
		if report, ok := a.cache.Get(key); ok {
			a.logger.Debug("cache hit", "target", key, "run_id", report.RunID)
			a.observe(metrics.OutcomeCached, 0)
			return report, nil
		}
	}

	runCtx := a.join(ctx, key)
	defer a.leave(key)

	ch := a.group.DoChan(key, func() (any, error) {
		return a.run(runCtx, target)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			a.logger.Debug("joined in-flight audit", "target", key)
		}
		return res.Val.(*model.ScanReport), nil //nolint:forcetypeassert // run only returns reports
	}
}

// join registers a caller of key and returns the context the shared run
// executes under. It keeps the values of ctx but not its cancellation.
func (a *Auditor) join(ctx context.Context, key string) context.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	f, ok := a.flights[key]
	if !ok {
		runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: runCtx, cancel: cancel}
		a.flights[key] = f
	}
	f.waiters++
	return f.ctx
}

// leave unregisters a caller of key. The last caller cancels the run and
// forgets it, so later audits start a new one.
func (a *Auditor) leave(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	f := a.flights[key]
	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	delete(a.flights, key)
	a.group.Forget(key)
}

func (a *Auditor) run(ctx context.Context, target *model.CrawlTarget) (*model.ScanReport, error) {
	key := target.String()
	report := model.NewScanReport(key)
	report.RunID = uuid.NewString()

	start := time.Now()
	err := a.factory(target).Execute(ctx, report)
	report.Duration = time.Since(start)
	if err != nil {
		a.observe(metrics.OutcomeFailed, report.Duration)
		return nil, err
	}

	outcome := metrics.OutcomeSuccess
	if report.UsedFallback {
		outcome = metrics.OutcomeFallback
	}
	a.observe(outcome, report.Duration)

	if a.cache != nil {
		if err := a.cache.Set(key, report); err != nil {
			a.logger.Warn("failed to cache report", "target", key, "error", err)
		}
	}

	a.logger.Info("audit complete",
		"target", key,
		"run_id", report.RunID,
		"pages", len(report.SuccessfulPages),
		"coverage", report.Coverage,
		"elapsed", report.Duration,
	)
	return report, nil
}

func (a *Auditor) observe(outcome string, elapsed time.Duration) {
	if a.observer != nil {
		a.observer.ObserveRun(outcome, elapsed)
	}
}
