package crawler

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"
)

// robotsRules answers whether a URL may be crawled. A nil *robotsRules
// allows everything.
type robotsRules struct {
	data      *robotstxt.RobotsData
	userAgent string
}

// loadRobots fetches /robots.txt of root. Any failure, including a
// non-200 status, yields nil (allow all).
func loadRobots(ctx context.Context, client *http.Client, root *url.URL, userAgent string, timeout time.Duration) *robotsRules {
	robotsURL := &url.URL{Scheme: root.Scheme, Host: root.Host, Path: "/robots.txt"}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return &robotsRules{data: data, userAgent: userAgent}
}

// allowed reports whether rawURL may be fetched.
func (r *robotsRules) allowed(rawURL string) bool {
	if r == nil {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return r.data.TestAgent(u.RequestURI(), r.userAgent)
}
