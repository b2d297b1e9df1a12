package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/a11yscan/internal/cache"
	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/database"
	"github.com/nao1215/a11yscan/internal/fingerprint"
	"github.com/nao1215/a11yscan/internal/metrics"
	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/pipeline"
	"github.com/nao1215/a11yscan/internal/report"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [site...]",
		Short: "Scan websites for accessibility barriers",
		Long: `Scan samples each site with a bounded crawl and reports:
- Images without a text alternative
- Form controls without an associated label
- Forms, links and page sections seen along the way

The crawl prefers pages likely to contain forms (contact, login, search,
...) and stops at the page cap or the time budget, whichever comes first.
When nothing could be crawled, the root page is retried once on its own.

Examples:
  # Scan a single site
  a11yscan scan example.com

  # Scan several sites, two at a time
  a11yscan scan --batch-size 2 example.com example.org

  # Sample more pages with a longer budget
  a11yscan scan --max-pages 40 --budget 90s https://example.com/

  # Scan twice to see the change between runs
  a11yscan scan --rounds 2 --interval 30s example.com

  # Write a Markdown report
  a11yscan scan --markdown -o report.md example.com

Configuration file (.a11yscan.yaml) example:
  defaults:
    ignore_patterns:
      - "/logout*"
  sites:
    example.com:
      cookie: "session_id=abc123"
      max_pages: 40`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Crawl flags
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages sampled per site")
	cmd.Flags().IntP("concurrency", "k", config.DefaultConcurrency,
		"Maximum number of requests in flight per site")
	cmd.Flags().Duration("budget", config.DefaultBudget,
		"Total time budget of one crawl")
	cmd.Flags().DurationP("page-timeout", "t", config.DefaultPageTimeout,
		"Timeout for each page request")
	cmd.Flags().Duration("fallback-timeout", config.DefaultFallbackTimeout,
		"Timeout of the root page retry when the crawl found nothing")
	cmd.Flags().Float64("rate", 0,
		"Maximum requests per second per site (0 means unlimited)")
	cmd.Flags().Bool("no-robots", false,
		"Ignore robots.txt when following links")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")

	// Batch and repeat flags
	cmd.Flags().IntP("batch-size", "b", config.DefaultBatchSize,
		"Number of sites scanned concurrently")
	cmd.Flags().Int("rounds", 1,
		"Number of times each site is scanned; later rounds bypass the cache")
	cmd.Flags().Duration("interval", 0,
		"Pause between rounds")
	cmd.Flags().Duration("cache-ttl", config.DefaultCacheTTL,
		"How long a finished report is reused for the same site")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report")
	cmd.Flags().Bool("csv", false,
		"Output CSV report (one row per scan)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().String("metrics-out", "",
		"Write Prometheus metrics in text format to this file after the scan")

	// Storage flags
	cmd.Flags().Bool("no-save", false,
		"Do not store scan evidence in the database")
	cmd.Flags().String("db-dir", "",
		"Directory of the evidence database (default: XDG data directory)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runScan(ctx, cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
		return nil, err
	}
	if cfg.Budget, err = flags.GetDuration("budget"); err != nil {
		return nil, err
	}
	if cfg.PageTimeout, err = flags.GetDuration("page-timeout"); err != nil {
		return nil, err
	}
	if cfg.FallbackTimeout, err = flags.GetDuration("fallback-timeout"); err != nil {
		return nil, err
	}
	if cfg.RequestsPerSecond, err = flags.GetFloat64("rate"); err != nil {
		return nil, err
	}
	noRobots, err := flags.GetBool("no-robots")
	if err != nil {
		return nil, err
	}
	cfg.RespectRobots = !noRobots
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}

	if cfg.BatchSize, err = flags.GetInt("batch-size"); err != nil {
		return nil, err
	}
	if cfg.Rounds, err = flags.GetInt("rounds"); err != nil {
		return nil, err
	}
	if cfg.Interval, err = flags.GetDuration("interval"); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = flags.GetDuration("cache-ttl"); err != nil {
		return nil, err
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.CSVReport, err = flags.GetBool("csv"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.MetricsFile, err = flags.GetString("metrics-out"); err != nil {
		return nil, err
	}

	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	cfg.Verbose = getBoolFlag(cmd, "verbose")
	cfg.LogJSON = getBoolFlag(cmd, "log-json")
	cfg.ConfigFilePath = getStringFlag(cmd, "config")

	// An explicitly given config file must exist; otherwise a missing
	// file simply means no per-site settings.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cfg.File, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	cfg.Targets = args
	return cfg, nil
}

// scanSummary counts finished and failed audits across all rounds.
// Callers serialize access.
type scanSummary struct {
	done     int
	failed   int
	firstErr error
}

func (s *scanSummary) add(err error) {
	if err == nil {
		s.done++
		return
	}
	s.failed++
	if s.firstErr == nil {
		s.firstErr = err
	}
}

// err returns the error the command exits with. A single failure is
// returned as is so its message reaches the user unchanged.
func (s *scanSummary) err() error {
	switch {
	case s.failed == 0:
		return nil
	case s.failed == 1:
		return s.firstErr
	default:
		return fmt.Errorf("%d of %d scans failed; first error: %w", s.failed, s.failed+s.done, s.firstErr)
	}
}

// runScan audits every target for cfg.Rounds rounds and writes one report
// per finished audit. Progress goes to stderr so that stdout only carries
// reports.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout, stderr io.Writer) error {
	if len(cfg.Targets) == 0 {
		return config.ErrNoTargets
	}

	logger.Info("starting scan",
		"targets", cfg.Targets,
		"rounds", cfg.Rounds,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	var db *database.EvidenceDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
	}

	resultCache, err := cache.New(ctx, cfg.CacheTTL)
	if err != nil {
		return fmt.Errorf("failed to create result cache: %w", err)
	}
	defer resultCache.Close()
	logger.Debug("result cache ready", "ttl", resultCache.TTL())

	recorder := metrics.NewRecorder()
	factory := pipeline.NewFactory(cfg, pipeline.Deps{
		Client:   &http.Client{},
		Store:    fingerprint.NewStore(),
		Recorder: recorder,
		Logger:   logger,
	})
	auditor := pipeline.NewAuditor(factory,
		pipeline.WithCache(resultCache),
		pipeline.WithRunObserver(recorder),
		pipeline.WithAuditorLogger(logger),
	)

	output, closeOutput, err := openReportOutput(cfg.ReportFile, stdout)
	if err != nil {
		return err
	}
	defer closeOutput()
	writer := newReportWriter(cfg, output)

	var summary scanSummary
	var mu sync.Mutex
	for round := 1; round <= cfg.Rounds; round++ {
		if round > 1 {
			if err := sleepContext(ctx, cfg.Interval); err != nil {
				return err
			}
		}

		audit := auditor.Audit
		if round > 1 {
			audit = auditor.Refresh
		}
		bp := pipeline.NewBatchProcessor(audit,
			pipeline.WithConcurrency(cfg.BatchSize),
			pipeline.WithBatchLogger(logger),
		)

		if cfg.Rounds > 1 {
			fmt.Fprintf(stderr, "Round %d/%d\n", round, cfg.Rounds)
		}
		start := time.Now()
		err := bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(result pipeline.BatchResult, index int) {
			mu.Lock()
			defer mu.Unlock()

			summary.add(result.Err)
			if result.Err != nil {
				fmt.Fprintf(stderr, "[%d/%d] Scan failed: %s: %v\n", index+1, len(cfg.Targets), result.Target, result.Err)
				return
			}
			fmt.Fprintf(stderr, "[%d/%d] Scan completed: %s (%s)\n",
				index+1, len(cfg.Targets), result.Report.Target, result.Report.Duration.Round(time.Millisecond))

			if _, err := writer.Write(result.Report); err != nil {
				logger.Error("report failed", "target", result.Report.Target, "error", err)
			}
			if err := saveScanReport(ctx, db, result.Report, logger); err != nil {
				logger.Error("failed to save scan report", "target", result.Report.Target, "error", err)
			}
		})
		if err != nil {
			return err
		}
		logger.Debug("round finished", "round", round, "elapsed", time.Since(start))
	}

	if cfg.MetricsFile != "" {
		if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return summary.err()
}

// newReportWriter returns the writer for the configured report format.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	case cfg.CSVReport:
		return report.NewCSVWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}

// openReportOutput opens path for writing, or returns stdout when path is
// empty. The returned function closes the file.
func openReportOutput(path string, stdout io.Writer) (io.Writer, func(), error) {
	if path == "" {
		return stdout, func() {}, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports may list URLs with session parameters; keep them owner-only.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// saveScanReport saves the scan evidence to the database.
// If db is nil, this function is a no-op.
func saveScanReport(ctx context.Context, db *database.EvidenceDB, scanReport *model.ScanReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}
	if err := db.SaveScan(ctx, scanReport); err != nil {
		return err
	}
	logger.Info("scan evidence saved", "target", scanReport.Target, "run_id", scanReport.RunID)
	return nil
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
