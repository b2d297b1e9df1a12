package report

import (
	"io"

	"github.com/nao1215/a11yscan/internal/model"
)

// Writer defines the interface for report output.
// Implementations write scan results in various formats.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.ScanReport) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// statusText describes how complete the run was.
func statusText(report *model.ScanReport) string {
	switch {
	case report.UsedFallback:
		return "Root page only (crawl fallback)"
	case report.TimedOut:
		return "Time budget exhausted (partial results)"
	default:
		return "Complete"
	}
}
