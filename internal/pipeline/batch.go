package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/a11yscan/internal/model"
)

// AuditFunc audits one target. Auditor.Audit and Auditor.Refresh have
// this signature.
type AuditFunc func(ctx context.Context, raw string) (*model.ScanReport, error)

// BatchResult is the outcome of one target of a batch.
type BatchResult struct {
	// Target is the target as given by the caller.
	Target string

	// Report is nil when Err is set.
	Report *model.ScanReport

	Err error
}

// BatchProcessor audits several targets concurrently.
type BatchProcessor struct {
	audit AuditFunc

	// concurrency is the maximum number of concurrent audits.
	concurrency int

	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent audits.
// Default is 3 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor that runs audit per target.
func NewBatchProcessor(audit AuditFunc, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		audit:       audit,
		concurrency: 3,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch audits targets and returns one result per target in input
// order. A failing target does not cancel the others; the returned error
// is non-nil only when ctx was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []string) ([]BatchResult, error) {
	bp.logger.Info("starting batch processing",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	// Each goroutine writes only its own index.
	results := make([]BatchResult, len(targets))
	err := bp.ProcessBatchWithCallback(ctx, targets, func(result BatchResult, index int) {
		results[index] = result
	})

	bp.logger.Info("batch processing complete",
		"total_targets", len(targets),
		"elapsed", time.Since(startTime),
	)
	return results, err
}

// ProcessBatchWithCallback audits targets and calls callback for each
// completed audit with the index of its target. The callback is called
// from the goroutine that ran the audit.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	targets []string,
	callback func(result BatchResult, index int),
) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				callback(BatchResult{Target: target, Err: ctx.Err()}, i)
				return ctx.Err()
			default:
			}

			bp.logger.Info("auditing target",
				"target", target,
				"index", i+1,
				"total", len(targets),
			)

			report, err := bp.audit(ctx, target)
			callback(BatchResult{Target: target, Report: report, Err: err}, i)
			if err != nil {
				bp.logger.Warn("audit failed", "target", target, "error", err)
			}
			// Failures are reported per target and never cancel the group.
			return nil
		})
	}
	return g.Wait()
}
