// Package crawler samples pages of a website within a page cap and a time
// budget.
//
// # Architecture
//
// The Spider type coordinates a crawl. A single goroutine owns the
// frontier (a priority queue ordered by Scorer) and the visited set; fetch
// units run under a Limiter and report their outcome on a channel.
//
// # Components
//
//   - Scorer: ranks candidate links for early discovery of content pages
//   - Limiter: bounds concurrent fetch units (FIFO admission)
//   - Fetcher: one bounded HTTP GET with body cap and HTML check
//   - Parser: extracts links from fetched HTML
//
// # Politeness
//
//   - robots.txt is honored for discovered links (configurable)
//   - optional requests-per-second pacing
//   - at most K fetches in flight
//
// # Usage
//
//	fetcher := crawler.NewFetcher(httpClient, crawler.WithUserAgent(ua))
//	spider := crawler.NewSpider(fetcher, crawler.WithMaxPages(20))
//	result, err := spider.Crawl(ctx, target)
//
// # Bounds
//
// A crawl never dispatches more than the page cap, never holds more than K
// fetches in flight and never outlives its budget. Pending work is discarded
// when the budget expires.
package crawler
