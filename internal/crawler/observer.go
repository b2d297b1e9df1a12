package crawler

import "time"

// Observer receives crawl events, typically to export metrics.
// Implementations must be safe for concurrent use.
type Observer interface {
	// ObserveFetch is called once per fetch with its latency and result.
	ObserveFetch(elapsed time.Duration, err error)

	// ObserveAdmission is called for every scored link.
	ObserveAdmission(accepted bool)
}

type nopObserver struct{}

func (nopObserver) ObserveFetch(time.Duration, error) {}
func (nopObserver) ObserveAdmission(bool)             {}
