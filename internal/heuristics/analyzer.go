package heuristics

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/nao1215/a11yscan/internal/model"
)

// Analyzer extracts accessibility facts from the markup of one page.
// It performs no I/O and is safe for concurrent use.
type Analyzer struct {
	// root is the site root. Links are internal when their host is the
	// same site as root.
	root *url.URL
}

// NewAnalyzer creates an Analyzer for the site rooted at root.
func NewAnalyzer(root *url.URL) *Analyzer {
	return &Analyzer{root: root}
}

// Analyze parses body as the markup of pageURL and returns its facts.
// order is the dispatch sequence of the page and is carried into the
// facts for worst-page tie breaking.
//
// Errors wrap model.ErrParseFailure.
func (a *Analyzer) Analyze(body []byte, pageURL string, order int) (*model.PageFacts, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: page URL %q: %v", model.ErrParseFailure, pageURL, err) //nolint:errorlint
	}
	node, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrParseFailure, pageURL, err) //nolint:errorlint
	}
	doc := goquery.NewDocumentFromNode(node)

	facts := &model.PageFacts{
		URL:   pageURL,
		Order: order,
		Title: pageTitle(doc),
		Forms: doc.Find("form").Length(),
	}
	facts.Images, facts.MissingAlt = countImages(doc)
	facts.Controls, facts.Unlabeled = countControls(doc)
	a.collectLinks(doc, documentBase(doc, base), facts)

	return facts, nil
}

// pageTitle returns the whitespace-collapsed text of the first <title>.
func pageTitle(doc *goquery.Document) string {
	return strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")
}

// countImages counts <img> elements. An image misses its description only
// when the alt attribute is absent; alt="" marks a decorative image.
func countImages(doc *goquery.Document) (total, missing int) {
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		total++
		if _, ok := s.Attr("alt"); !ok {
			missing++
		}
	})
	return total, missing
}

// nonLabelableInputs are input types that never need a label.
var nonLabelableInputs = map[string]struct{}{
	"hidden": {},
	"submit": {},
	"button": {},
	"reset":  {},
}

// countControls counts form controls and the ones without an accessible name.
func countControls(doc *goquery.Document) (total, unlabeled int) {
	ids := make(map[string]struct{})
	doc.Find("[id]").Each(func(_ int, s *goquery.Selection) {
		if id := strings.TrimSpace(s.AttrOr("id", "")); id != "" {
			ids[id] = struct{}{}
		}
	})
	labelFor := make(map[string]struct{})
	doc.Find("label[for]").Each(func(_ int, s *goquery.Selection) {
		if id := strings.TrimSpace(s.AttrOr("for", "")); id != "" {
			labelFor[id] = struct{}{}
		}
	})

	doc.Find("input, select, textarea").Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "input" {
			typ := strings.ToLower(strings.TrimSpace(s.AttrOr("type", "text")))
			if _, skip := nonLabelableInputs[typ]; skip {
				return
			}
		}
		total++
		if !labeled(s, ids, labelFor) {
			unlabeled++
		}
	})
	return total, unlabeled
}

// labeled reports whether a control has an accessible name through
// aria-label, title, aria-labelledby, <label for> or a wrapping <label>.
// A placeholder alone is not a label.
func labeled(s *goquery.Selection, ids, labelFor map[string]struct{}) bool {
	if strings.TrimSpace(s.AttrOr("aria-label", "")) != "" {
		return true
	}
	if strings.TrimSpace(s.AttrOr("title", "")) != "" {
		return true
	}
	for _, ref := range strings.Fields(s.AttrOr("aria-labelledby", "")) {
		if _, ok := ids[ref]; ok {
			return true
		}
	}
	if id := strings.TrimSpace(s.AttrOr("id", "")); id != "" {
		if _, ok := labelFor[id]; ok {
			return true
		}
	}
	return s.ParentsFiltered("label").Length() > 0
}

// documentBase applies the first <base href> of the document to pageURL.
func documentBase(doc *goquery.Document, pageURL *url.URL) *url.URL {
	href, ok := doc.Find("base[href]").First().Attr("href")
	if !ok {
		return pageURL
	}
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return pageURL
	}
	return pageURL.ResolveReference(u)
}

// collectLinks classifies the anchors of doc as internal or external.
func (a *Analyzer) collectLinks(doc *goquery.Document, base *url.URL, facts *model.PageFacts) {
	seen := make(map[string]struct{})
	doc.Find("a[href], area[href]").Each(func(_ int, s *goquery.Selection) {
		link := model.ResolveLink(base, s.AttrOr("href", ""))
		if link == "" {
			return
		}
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}

		u, err := url.Parse(link)
		if err != nil {
			return
		}
		if model.SameSite(u.Hostname(), a.root.Hostname()) {
			facts.InternalLinks = append(facts.InternalLinks, link)
			if len(facts.InternalSamples) < model.MaxLinkSamples {
				facts.InternalSamples = append(facts.InternalSamples, link)
			}
			return
		}
		facts.ExternalLinks = append(facts.ExternalLinks, link)
		if len(facts.ExternalSamples) < model.MaxLinkSamples {
			facts.ExternalSamples = append(facts.ExternalSamples, link)
		}
	})
}
