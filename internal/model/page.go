package model

// FetchedPage is the markup of one successfully fetched page.
type FetchedPage struct {
	// URL is the URL that was requested.
	URL string `json:"url"`

	// FinalURL is the URL after redirects.
	FinalURL string `json:"final_url"`

	// StatusCode is the HTTP status of the final response.
	StatusCode int `json:"status_code"`

	// ContentType is the response Content-Type.
	ContentType string `json:"content_type"`

	// Body is the (possibly truncated) markup.
	Body []byte `json:"-"`

	// Truncated is true when Body was cut at the byte ceiling.
	Truncated bool `json:"truncated"`

	// Order is the dispatch sequence of the page within its run.
	// It is the discovery-order tie breaker of worst-page rankings.
	Order int `json:"order"`
}

// MaxLinkSamples is the number of internal and external link samples
// kept per page.
const MaxLinkSamples = 5

// PageFacts holds the heuristic facts of one analyzed page.
// It is immutable once created.
type PageFacts struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
	Order int    `json:"order"`

	Images     int `json:"images"`
	MissingAlt int `json:"missing_alt"`

	Controls  int `json:"controls"`
	Unlabeled int `json:"unlabeled"`

	Forms int `json:"forms"`

	// InternalLinks and ExternalLinks are the full deduplicated canonical
	// link sets of the page, in first-seen order.
	InternalLinks []string `json:"internal_links,omitempty"`
	ExternalLinks []string `json:"external_links,omitempty"`

	// InternalSamples and ExternalSamples hold up to MaxLinkSamples entries.
	InternalSamples []string `json:"internal_samples,omitempty"`
	ExternalSamples []string `json:"external_samples,omitempty"`
}
