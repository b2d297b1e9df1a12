// Package pipeline runs one site audit as a sequence of steps:
// crawl, analyze, aggregate and fingerprint. Each step receives the
// accumulated ScanReport and fills its part.
//
// Auditor wraps the pipeline with target normalization, the result cache
// and request collapsing, so concurrent audits of one site share a single
// run. BatchProcessor audits several targets with bounded concurrency
// using errgroup.
package pipeline
