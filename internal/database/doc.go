// Package database provides SQLite-based storage for scan evidence.
//
// Each scan adds one row with the flat evidence record (pages sampled,
// missing alt, unlabeled controls, issues found, coverage, severity,
// fingerprint) plus the full report as JSON. The compare command reads the
// two latest rows of a site to show how it changed between runs.
//
// SQLite (via modernc.org/sqlite) keeps the store in a single CGO-free file
// under the XDG data directory. WAL mode is enabled by default.
package database
