package model

// Coverage tells how much of a site's structure a bounded crawl observed.
type Coverage string

const (
	// CoverageGood means a title plus at least two of links, forms and images were seen.
	CoverageGood Coverage = "Good"
	// CoveragePartial means a title plus at least one of them.
	CoveragePartial Coverage = "Partial"
	// CoverageLimited is everything else.
	CoverageLimited Coverage = "Limited"
)

// MaxWorstPages is the length of each worst-page ranking.
const MaxWorstPages = 5

// WorstPage is one entry of a worst-page ranking.
type WorstPage struct {
	URL   string `json:"url"`
	Count int    `json:"count"`
}

// SiteMetrics holds the aggregate counters of one run.
type SiteMetrics struct {
	PagesAnalyzed int `json:"pages_analyzed"`

	Images     int `json:"images"`
	MissingAlt int `json:"missing_alt"`

	Controls  int `json:"controls"`
	Unlabeled int `json:"unlabeled"`

	Forms int `json:"forms"`

	UniqueLinks   int `json:"unique_links"`
	InternalLinks int `json:"internal_links"`
	ExternalLinks int `json:"external_links"`

	// Title is the title of the earliest page that had one.
	Title string `json:"title,omitempty"`

	// Sections is the number of distinct first path segments among
	// attempted URLs.
	Sections int `json:"sections"`

	// InternalSamples and ExternalSamples are up to MaxLinkSamples links
	// for display, in page order.
	InternalSamples []string `json:"internal_samples,omitempty"`
	ExternalSamples []string `json:"external_samples,omitempty"`

	// WorstMissingAlt and WorstUnlabeled rank pages by defect count,
	// descending, ties broken by discovery order.
	WorstMissingAlt []WorstPage `json:"worst_missing_alt"`
	WorstUnlabeled  []WorstPage `json:"worst_unlabeled"`
}

// MetricVector is the tuple of the five counters a fingerprint covers.
type MetricVector struct {
	Images      int `json:"images"`
	MissingAlt  int `json:"missing_alt"`
	Controls    int `json:"controls"`
	Unlabeled   int `json:"unlabeled"`
	UniqueLinks int `json:"unique_links"`
}

// Vector returns the fingerprinted counters of m.
func (m *SiteMetrics) Vector() MetricVector {
	return MetricVector{
		Images:      m.Images,
		MissingAlt:  m.MissingAlt,
		Controls:    m.Controls,
		Unlabeled:   m.Unlabeled,
		UniqueLinks: m.UniqueLinks,
	}
}
