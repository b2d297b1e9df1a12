package model

import (
	"fmt"
	"net/url"
	"strings"
)

// CrawlTarget is a normalized site root. It does not change during a run.
type CrawlTarget struct {
	// Raw is the input as given by the user.
	Raw string `json:"raw"`

	// URL is the normalized absolute http(s) URL.
	URL *url.URL `json:"-"`
}

// String returns the normalized URL. It is the cache and fingerprint key.
func (t *CrawlTarget) String() string {
	return t.URL.String()
}

// Host returns the lowercase hostname of the target.
func (t *CrawlTarget) Host() string {
	return t.URL.Hostname()
}

// NormalizeTarget turns a URL or bare hostname into a CrawlTarget.
// Inputs without a scheme get "https://". Anything that is not a
// well-formed http(s) URL with a host fails with ErrInvalidInput.
func NormalizeTarget(raw string) (*CrawlTarget, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("%w: empty target", ErrInvalidInput)
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidInput, raw, err) //nolint:errorlint // one wrapped sentinel is enough
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidInput, u.Scheme)
	}
	if u.Hostname() == "" || strings.ContainsAny(u.Hostname(), " \t") {
		return nil, fmt.Errorf("%w: %q has no valid host", ErrInvalidInput, raw)
	}

	return &CrawlTarget{Raw: raw, URL: canonical(u)}, nil
}

// CanonicalURL normalizes an absolute URL for visited-set and link-set
// membership: lowercase scheme and host, empty path becomes "/", fragment
// dropped. It returns "" for unparsable or non-http(s) input.
func CanonicalURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Host == "" {
		return ""
	}
	return canonical(u).String()
}

func canonical(u *url.URL) *url.URL {
	c := *u
	c.Scheme = strings.ToLower(c.Scheme)
	c.Host = strings.ToLower(c.Host)
	c.Fragment = ""
	c.RawFragment = ""
	if c.Path == "" {
		c.Path = "/"
		c.RawPath = ""
	}
	return &c
}

// SameSite reports whether two hostnames belong to the same site.
// Comparison ignores case and a leading "www.".
func SameSite(a, b string) bool {
	trim := func(h string) string {
		return strings.TrimPrefix(strings.ToLower(h), "www.")
	}
	return a != "" && trim(a) == trim(b)
}

// ResolveLink resolves href against base and returns the canonical
// absolute URL, or "" when the link is not a crawlable http(s) URL.
func ResolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	lower := strings.ToLower(href)
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:", "sms:", "ftp:"} {
		if strings.HasPrefix(lower, prefix) {
			return ""
		}
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return CanonicalURL(base.ResolveReference(ref).String())
}
