package aggregate

import (
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/nao1215/a11yscan/internal/model"
)

// Aggregator merges PageFacts into SiteMetrics.
// Facts may be added in any order and from several goroutines; Finalize
// sorts them by discovery order first, so the result does not depend on
// completion order.
type Aggregator struct {
	mu    sync.Mutex
	facts []*model.PageFacts
}

// New creates an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{}
}

// Add hands facts to the aggregator. Nil facts are ignored.
func (a *Aggregator) Add(facts *model.PageFacts) {
	if facts == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.facts = append(a.facts, facts)
}

// Len returns the number of pages added.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.facts)
}

// Finalize computes the site metrics. attempted is the list of URLs the
// crawl dispatched; it only feeds the section count.
func (a *Aggregator) Finalize(attempted []string) *model.SiteMetrics {
	a.mu.Lock()
	facts := make([]*model.PageFacts, len(a.facts))
	copy(facts, a.facts)
	a.mu.Unlock()

	sort.Slice(facts, func(i, j int) bool { return discoveredBefore(facts[i], facts[j]) })

	m := &model.SiteMetrics{
		PagesAnalyzed: len(facts),
		Sections:      countSections(attempted),
	}
	internal := make(map[string]struct{})
	external := make(map[string]struct{})
	var altRank, labelRank []rankedPage

	for _, f := range facts {
		m.Images += f.Images
		m.MissingAlt += f.MissingAlt
		m.Controls += f.Controls
		m.Unlabeled += f.Unlabeled
		m.Forms += f.Forms
		if m.Title == "" {
			m.Title = f.Title
		}

		for _, l := range f.InternalLinks {
			internal[l] = struct{}{}
		}
		for _, l := range f.ExternalLinks {
			external[l] = struct{}{}
		}
		m.InternalSamples = appendSamples(m.InternalSamples, f.InternalSamples)
		m.ExternalSamples = appendSamples(m.ExternalSamples, f.ExternalSamples)

		if f.MissingAlt > 0 {
			altRank = append(altRank, rankedPage{url: f.URL, order: f.Order, count: f.MissingAlt})
		}
		if f.Unlabeled > 0 {
			labelRank = append(labelRank, rankedPage{url: f.URL, order: f.Order, count: f.Unlabeled})
		}
	}

	// Classification depends on the host only, so the two sets are disjoint.
	m.UniqueLinks = len(internal) + len(external)
	m.InternalLinks = len(internal)
	m.ExternalLinks = len(external)

	m.WorstMissingAlt = worstPages(altRank)
	m.WorstUnlabeled = worstPages(labelRank)
	return m
}

// discoveredBefore orders facts by dispatch sequence, then URL.
func discoveredBefore(a, b *model.PageFacts) bool {
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	return a.URL < b.URL
}

// appendSamples adds unseen samples until the display cap is reached.
func appendSamples(dst, src []string) []string {
	for _, s := range src {
		if len(dst) >= model.MaxLinkSamples {
			return dst
		}
		dup := false
		for _, d := range dst {
			if d == s {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, s)
		}
	}
	return dst
}

type rankedPage struct {
	url   string
	order int
	count int
}

// worstPages returns the top MaxWorstPages entries by count, descending,
// ties broken by discovery order.
func worstPages(pages []rankedPage) []model.WorstPage {
	sort.SliceStable(pages, func(i, j int) bool {
		if pages[i].count != pages[j].count {
			return pages[i].count > pages[j].count
		}
		if pages[i].order != pages[j].order {
			return pages[i].order < pages[j].order
		}
		return pages[i].url < pages[j].url
	})
	if len(pages) > model.MaxWorstPages {
		pages = pages[:model.MaxWorstPages]
	}
	out := make([]model.WorstPage, 0, len(pages))
	for _, p := range pages {
		out = append(out, model.WorstPage{URL: p.url, Count: p.count})
	}
	return out
}

// countSections returns the number of distinct first path segments among
// urls. The site root counts as its own section.
func countSections(urls []string) int {
	sections := make(map[string]struct{})
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		sections[firstSegment(u.Path)] = struct{}{}
	}
	return len(sections)
}

func firstSegment(p string) string {
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			return "/" + strings.ToLower(seg)
		}
	}
	return "/"
}
