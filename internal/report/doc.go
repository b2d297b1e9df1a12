// Package report renders scan reports.
//
// Writers for the supported output formats:
//   - SimpleWriter: human-readable text for terminal display (default)
//   - JSONWriter and FullJSONWriter: structured JSON for tool integration
//   - MarkdownWriter: Markdown with a mermaid pie chart of barrier counts
//   - CSVWriter: one row per report for spreadsheets
//
// All writers keep issues in derivation order and worst pages in rank
// order. Writers implement the Writer interface.
package report
