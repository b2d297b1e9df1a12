package pipeline

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/fingerprint"
)

const homePage = `<html><head><title>Home</title></head><body>
<img src="a.png"><img src="b.png" alt="">
<a href="/contact">Contact</a>
<a href="https://external.example/">Elsewhere</a>
</body></html>`

const contactPage = `<html><head><title>Contact</title></head><body>
<form>
<label>Name <input type="text" name="name"></label>
<input type="email" placeholder="Email">
<input type="submit" value="Send">
</form>
<img src="c.png">
</body></html>`

func writeHTML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(body)) //nolint:errcheck // test handler
}

// site is a two-page test site that counts requests per path.
type site struct {
	mu   sync.Mutex
	hits map[string]int
	home string
}

func newSite(t *testing.T) (*site, *httptest.Server) {
	t.Helper()

	s := &site{hits: make(map[string]int), home: homePage}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		home := s.home
		s.mu.Unlock()

		switch r.URL.Path {
		case "/":
			writeHTML(w, home)
		case "/contact":
			writeHTML(w, contactPage)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return s, server
}

func (s *site) setHome(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.home = body
}

func (s *site) count(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func testConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.RespectRobots = false
	cfg.Budget = 10 * time.Second
	cfg.PageTimeout = 2 * time.Second
	cfg.FallbackTimeout = 2 * time.Second
	return cfg
}

func testFactory(cfg *config.Config, store *fingerprint.Store) Factory {
	return NewFactory(cfg, Deps{Client: &http.Client{}, Store: store})
}
