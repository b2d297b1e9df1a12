// Package metrics records crawl and audit metrics with Prometheus.
//
// A Recorder owns its registry, so tests and concurrent audits never share
// global state. The CLI writes the registry to a text file after a scan
// when --metrics-out is given.
package metrics
