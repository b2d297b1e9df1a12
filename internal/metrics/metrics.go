package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nao1215/a11yscan/internal/model"
)

const namespace = "a11yscan"

// Failure kinds of the fetch_failures_total counter.
const (
	FailureTimeout     = "timeout"
	FailureStatus      = "status"
	FailureContentType = "content_type"
	FailureCanceled    = "canceled"
	FailureNetwork     = "network"
)

// Run outcomes of the runs_total counter.
const (
	OutcomeSuccess  = "success"
	OutcomeFallback = "fallback"
	OutcomeCached   = "cached"
	OutcomeFailed   = "failed"
)

// Recorder collects crawl metrics on its own registry. It implements
// crawler.Observer and is safe for concurrent use.
type Recorder struct {
	registry      *prometheus.Registry
	pagesFetched  prometheus.Counter
	fetchFailures *prometheus.CounterVec
	fetchLatency  prometheus.Histogram
	admissions    *prometheus.CounterVec
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
}

// NewRecorder creates a Recorder with a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		pagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_fetched_total",
			Help:      "Pages fetched successfully.",
		}),
		fetchFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Failed page fetches by kind.",
		}, []string{"kind"}),
		fetchLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Latency of page fetches.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		}),
		admissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frontier_admissions_total",
			Help:      "Scored links by admission result.",
		}, []string{"result"}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Site audits by outcome.",
		}, []string{"outcome"}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock time of site audits.",
			Buckets:   []float64{1, 5, 10, 15, 30, 45, 60, 120},
		}),
	}
}

// ObserveFetch records one fetch.
func (r *Recorder) ObserveFetch(elapsed time.Duration, err error) {
	r.fetchLatency.Observe(elapsed.Seconds())
	if err == nil {
		r.pagesFetched.Inc()
		return
	}
	r.fetchFailures.WithLabelValues(FailureKind(err)).Inc()
}

// ObserveAdmission records one scored link.
func (r *Recorder) ObserveAdmission(accepted bool) {
	if accepted {
		r.admissions.WithLabelValues("accepted").Inc()
		return
	}
	r.admissions.WithLabelValues("rejected").Inc()
}

// ObserveRun records one finished audit.
func (r *Recorder) ObserveRun(outcome string, elapsed time.Duration) {
	r.runs.WithLabelValues(outcome).Inc()
	if outcome != OutcomeCached {
		r.runDuration.Observe(elapsed.Seconds())
	}
}

// WriteTextfile writes all metrics in the Prometheus text format to path,
// for pickup by a node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// FailureKind maps a fetch error to a failure label.
func FailureKind(err error) string {
	var fe *model.FetchError
	switch {
	case errors.Is(err, model.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	case errors.Is(err, context.Canceled):
		return FailureCanceled
	case errors.As(err, &fe):
		if fe.StatusCode < 200 || fe.StatusCode > 299 {
			return FailureStatus
		}
		return FailureContentType
	default:
		return FailureNetwork
	}
}
