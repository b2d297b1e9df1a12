// Package model defines the data structures shared by the crawler, the
// heuristics analyzer, the aggregator and the report writers.
//
// The main types are:
//   - CrawlTarget: a normalized site root
//   - FetchedPage and PageFacts: one page before and after analysis
//   - SiteMetrics: aggregate counters and worst-page rankings
//   - Issue, Severity, Effort: derived findings and their classification
//   - ScanFingerprint and Change: trend against the previous scan
//   - ScanReport and EvidenceRecord: the structured and the flat result
//
// It also holds the error taxonomy of a scan.
package model
