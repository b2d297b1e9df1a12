package heuristics

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/nao1215/a11yscan/internal/model"
)

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	root, err := url.Parse("https://site.example/")
	if err != nil {
		t.Fatal(err)
	}
	return NewAnalyzer(root)
}

func analyze(t *testing.T, body string) *model.PageFacts {
	t.Helper()
	facts, err := newTestAnalyzer(t).Analyze([]byte(body), "https://site.example/page", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return facts
}

func TestAnalyzeImages(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		body        string
		wantImages  int
		wantMissing int
	}{
		{"no alt attribute is missing", `<img src="a.png">`, 1, 1},
		{"empty alt is decorative", `<img src="a.png" alt="">`, 1, 0},
		{"described image", `<img src="a.png" alt="A chart">`, 1, 0},
		{"mixed", `<img src="a"><img src="b" alt=""><img src="c" alt="c"><img src="d">`, 4, 2},
		{"no images", `<p>text</p>`, 0, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			facts := analyze(t, `<html><body>`+tc.body+`</body></html>`)
			if facts.Images != tc.wantImages || facts.MissingAlt != tc.wantMissing {
				t.Errorf("expected %d images / %d missing, got %d / %d",
					tc.wantImages, tc.wantMissing, facts.Images, facts.MissingAlt)
			}
		})
	}
}

func TestAnalyzeControls(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		body          string
		wantControls  int
		wantUnlabeled int
	}{
		{"wrapped in label", `<label><input type="text"></label>`, 1, 0},
		{"wrapped deeper in label", `<label>Name <span><input></span></label>`, 1, 0},
		{"placeholder only", `<input type="text" placeholder="Name">`, 1, 1},
		{"aria-label", `<input aria-label="Search">`, 1, 0},
		{"blank aria-label", `<input aria-label="  ">`, 1, 1},
		{"title", `<select title="Country"><option>a</option></select>`, 1, 0},
		{"label for", `<label for="email">Email</label><input id="email" type="email">`, 1, 0},
		{"label for other id", `<label for="other">Email</label><input id="email">`, 1, 1},
		{"aria-labelledby existing", `<span id="lbl">Comment</span><textarea aria-labelledby="missing lbl"></textarea>`, 1, 0},
		{"aria-labelledby dangling", `<textarea aria-labelledby="nowhere"></textarea>`, 1, 1},
		{"excluded input types", `<input type="hidden"><input type="SUBMIT"><input type="button"><input type="reset">`, 0, 0},
		{"checkbox counts", `<input type="checkbox">`, 1, 1},
		{"input without type is text", `<input name="q">`, 1, 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			facts := analyze(t, `<html><body><form>`+tc.body+`</form></body></html>`)
			if facts.Controls != tc.wantControls || facts.Unlabeled != tc.wantUnlabeled {
				t.Errorf("expected %d controls / %d unlabeled, got %d / %d",
					tc.wantControls, tc.wantUnlabeled, facts.Controls, facts.Unlabeled)
			}
		})
	}
}

func TestAnalyzeLinks(t *testing.T) {
	t.Parallel()

	t.Run("classifies internal and external", func(t *testing.T) {
		t.Parallel()

		facts := analyze(t, `<html><body>
			<a href="/about">about</a>
			<a href="https://www.site.example/news">news</a>
			<a href="contact#form">contact</a>
			<a href="contact">contact again</a>
			<a href="https://other.example/">other</a>
			<a href="mailto:a@site.example">mail</a>
			<a href="#top">top</a>
		</body></html>`)

		wantInternal := []string{
			"https://site.example/about",
			"https://www.site.example/news",
			"https://site.example/contact",
		}
		if strings.Join(facts.InternalLinks, ",") != strings.Join(wantInternal, ",") {
			t.Errorf("internal links: expected %v, got %v", wantInternal, facts.InternalLinks)
		}
		if len(facts.ExternalLinks) != 1 || facts.ExternalLinks[0] != "https://other.example/" {
			t.Errorf("unexpected external links %v", facts.ExternalLinks)
		}
		if total := len(facts.InternalLinks) + len(facts.ExternalLinks); total != 4 {
			t.Errorf("expected 4 links in total, got %d", total)
		}
	})

	t.Run("samples are capped", func(t *testing.T) {
		t.Parallel()

		var b strings.Builder
		for i := range 8 {
			fmt.Fprintf(&b, `<a href="/p%d">p</a><a href="https://ext%d.example/">e</a>`, i, i)
		}
		facts := analyze(t, `<html><body>`+b.String()+`</body></html>`)
		if len(facts.InternalLinks) != 8 || len(facts.ExternalLinks) != 8 {
			t.Errorf("expected full link sets of 8, got %d and %d", len(facts.InternalLinks), len(facts.ExternalLinks))
		}
		if len(facts.InternalSamples) != model.MaxLinkSamples || len(facts.ExternalSamples) != model.MaxLinkSamples {
			t.Errorf("expected %d samples, got %d and %d", model.MaxLinkSamples, len(facts.InternalSamples), len(facts.ExternalSamples))
		}
		if facts.InternalSamples[0] != "https://site.example/p0" {
			t.Errorf("samples not in first-seen order: %v", facts.InternalSamples)
		}
	})

	t.Run("base href", func(t *testing.T) {
		t.Parallel()

		facts := analyze(t, `<html><head><base href="/docs/"></head><body><a href="guide">g</a></body></html>`)
		if len(facts.InternalLinks) != 1 || facts.InternalLinks[0] != "https://site.example/docs/guide" {
			t.Errorf("unexpected links %v", facts.InternalLinks)
		}
	})

	t.Run("late base href still applies to earlier anchors", func(t *testing.T) {
		t.Parallel()

		facts := analyze(t, `<html><body><a href="x">x</a><base href="/sub/"></body></html>`)
		if len(facts.InternalLinks) != 1 || facts.InternalLinks[0] != "https://site.example/sub/x" {
			t.Errorf("unexpected links %v", facts.InternalLinks)
		}
	})
}

func TestAnalyzeContext(t *testing.T) {
	t.Parallel()

	facts := analyze(t, `<html><head><title>
		Welcome   to Site
	</title></head><body><form></form><form></form></body></html>`)
	if facts.Title != "Welcome to Site" {
		t.Errorf("unexpected title %q", facts.Title)
	}
	if facts.Forms != 2 {
		t.Errorf("expected 2 forms, got %d", facts.Forms)
	}
	if facts.URL != "https://site.example/page" || facts.Order != 3 {
		t.Errorf("unexpected identity %q/%d", facts.URL, facts.Order)
	}
}

func TestAnalyzeMalformedMarkup(t *testing.T) {
	t.Parallel()

	t.Run("broken markup is tolerated", func(t *testing.T) {
		t.Parallel()
		facts := analyze(t, `<html><body><img src=x><div><label><input></div><a href="/x">`)
		if facts.Images != 1 || facts.MissingAlt != 1 || facts.Controls != 1 {
			t.Errorf("unexpected facts %+v", facts)
		}
	})

	t.Run("invalid page URL is a parse failure", func(t *testing.T) {
		t.Parallel()
		_, err := newTestAnalyzer(t).Analyze([]byte(`<html></html>`), "http://[::1", 0)
		if !errors.Is(err, model.ErrParseFailure) {
			t.Errorf("expected ErrParseFailure, got %v", err)
		}
	})
}
