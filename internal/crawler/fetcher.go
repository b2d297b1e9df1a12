package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/model"
)

// Fetcher performs single bounded page requests. It keeps no per-page
// state, so one Fetcher can serve many concurrent fetch units.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	headers     map[string]string
	cookie      string
	pacer       *rate.Limiter
	observer    Observer
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the body byte ceiling.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithHeaders adds request headers. They cannot override User-Agent.
func WithHeaders(headers map[string]string) FetcherOption {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithCookie sets the Cookie header.
func WithCookie(cookie string) FetcherOption {
	return func(f *Fetcher) {
		f.cookie = cookie
	}
}

// WithRateLimit paces requests to rps per second. Zero disables pacing.
func WithRateLimit(rps float64) FetcherOption {
	return func(f *Fetcher) {
		if rps <= 0 {
			f.pacer = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		f.pacer = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithFetchObserver reports every fetch to o.
func WithFetchObserver(o Observer) FetcherOption {
	return func(f *Fetcher) {
		if o != nil {
			f.observer = o
		}
	}
}

// NewFetcher creates a Fetcher on client. A nil client uses a client that
// follows up to 10 redirects, like http.DefaultClient.
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	f := &Fetcher{
		client:      client,
		userAgent:   config.DefaultUserAgent,
		maxBodySize: config.DefaultMaxBodySize,
		observer:    nopObserver{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch GETs rawURL within timeout.
//
// Errors:
//   - model.ErrTimeout when timeout elapsed first
//   - *model.FetchError (model.ErrFetchFailed) for non-2xx or non-HTML responses
//   - model.ErrFetchFailed wrapping the transport error otherwise
//
// Bodies above the ceiling are truncated, not rejected.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, timeout time.Duration) (page *model.FetchedPage, err error) {
	start := time.Now()
	defer func() {
		f.observer.ObserveFetch(time.Since(start), err)
	}()

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if f.pacer != nil {
		if err := f.pacer.Wait(reqCtx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %s waiting for rate limit", model.ErrTimeout, rawURL)
		}
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", model.ErrFetchFailed, rawURL, err)
	}
	f.setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, f.classify(ctx, reqCtx, rawURL, timeout, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.FetchError{URL: rawURL, StatusCode: resp.StatusCode, ContentType: resp.Header.Get("Content-Type")}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, f.classify(ctx, reqCtx, rawURL, timeout, err)
	}
	truncated := false
	if int64(len(body)) > f.maxBodySize {
		body = body[:f.maxBodySize]
		truncated = true
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTML(contentType, body) {
		return nil, &model.FetchError{URL: rawURL, StatusCode: resp.StatusCode, ContentType: contentType}
	}

	return &model.FetchedPage{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        toUTF8(body, contentType),
		Truncated:   truncated,
	}, nil
}

// toUTF8 converts body to UTF-8 using the Content-Type charset, a BOM or
// a <meta charset> declaration. Bodies that cannot be decoded are kept as is.
func toUTF8(body []byte, contentType string) []byte {
	enc, name, _ := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" {
		return body
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return body
	}
	return decoded
}

func (f *Fetcher) setHeaders(req *http.Request) {
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("User-Agent", f.userAgent)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	}
	if req.Header.Get("Accept-Language") == "" {
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	}
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}
}

// classify maps a transport error to the taxonomy. A request deadline
// becomes ErrTimeout; cancellation of the caller's ctx is returned as is.
func (f *Fetcher) classify(parent, reqCtx context.Context, rawURL string, timeout time.Duration, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s after %s", model.ErrTimeout, rawURL, timeout)
	}
	return fmt.Errorf("%w: %s: %w", model.ErrFetchFailed, rawURL, err)
}

// isHTML accepts text/html and application/xhtml+xml. Without a
// Content-Type header the body is sniffed.
func isHTML(contentType string, body []byte) bool {
	if strings.TrimSpace(contentType) == "" {
		contentType = http.DetectContentType(body)
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
