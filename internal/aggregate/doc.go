// Package aggregate merges per-page facts into site-level metrics and
// derives coverage, issues and the severity/effort assessment.
//
// Merging is commutative: the same facts added in any order produce the
// same SiteMetrics. Issues are derived by fixed rules in a fixed order and
// the assessment comes from a single decision table (severity.go).
package aggregate
