package model

import (
	"time"
)

// ScanReport is the structured result of one site analysis.
// Field names and slice order are stable; renderers rely on them.
type ScanReport struct {
	// RunID identifies the run that produced this report.
	RunID string `json:"run_id"`

	// Target is the normalized site URL.
	Target string `json:"target"`

	// DateScanned is when the run started.
	DateScanned time.Time `json:"date_scanned"`

	// Duration is the wall-clock time of the run.
	Duration time.Duration `json:"duration"`

	Coverage Coverage `json:"coverage"`

	// AttemptedPages lists every URL a fetch was started for, in dispatch order.
	AttemptedPages []string `json:"attempted_pages"`

	// SuccessfulPages lists URLs whose markup was fetched, in dispatch order.
	SuccessfulPages []string `json:"successful_pages"`

	// FrontierRemaining is the number of admitted links never fetched.
	FrontierRemaining int `json:"frontier_remaining"`

	// UsedFallback is true when the page set comes from the root retry.
	UsedFallback bool `json:"used_fallback"`

	// TimedOut is true when the total budget ended the crawl.
	TimedOut bool `json:"timed_out"`

	Metrics SiteMetrics `json:"metrics"`

	// Issues are in derivation order.
	Issues []Issue `json:"issues"`

	Assessment Assessment `json:"assessment"`

	Fingerprint ScanFingerprint `json:"fingerprint"`

	// Previous and Changes are nil on the first scan of a site.
	Previous *ScanFingerprint `json:"previous,omitempty"`
	Changes  *Change          `json:"changes,omitempty"`

	// Pages and Facts are the intermediate results of the pipeline.
	Pages []FetchedPage `json:"-"`
	Facts []*PageFacts  `json:"-"`
}

// NewScanReport creates a report for target.
func NewScanReport(target string) *ScanReport {
	return &ScanReport{
		Target:      target,
		DateScanned: time.Now(),
		Coverage:    CoverageLimited,
		Issues:      make([]Issue, 0),
	}
}

// HasIssue reports whether an issue with id was derived.
func (r *ScanReport) HasIssue(id string) bool {
	for _, is := range r.Issues {
		if is.ID == id {
			return true
		}
	}
	return false
}

// EvidenceRecord is the flat record handed to the evidence store.
type EvidenceRecord struct {
	RunID             string    `json:"run_id"`
	SiteURL           string    `json:"site_url"`
	ScannedAt         time.Time `json:"scanned_at"`
	PagesSampled      int       `json:"pages_sampled"`
	MissingAlt        int       `json:"missing_alt"`
	UnlabeledControls int       `json:"unlabeled_controls"`
	IssuesFound       int       `json:"issues_found"`
	Coverage          Coverage  `json:"coverage"`
	Severity          Severity  `json:"severity"`
	Fingerprint       string    `json:"fingerprint"`
}

// Evidence flattens the report into an EvidenceRecord.
func (r *ScanReport) Evidence() EvidenceRecord {
	return EvidenceRecord{
		RunID:             r.RunID,
		SiteURL:           r.Target,
		ScannedAt:         r.DateScanned,
		PagesSampled:      len(r.SuccessfulPages),
		MissingAlt:        r.Metrics.MissingAlt,
		UnlabeledControls: r.Metrics.Unlabeled,
		IssuesFound:       len(r.Issues),
		Coverage:          r.Coverage,
		Severity:          r.Assessment.Severity,
		Fingerprint:       r.Fingerprint.Hash,
	}
}
