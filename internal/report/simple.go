package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/a11yscan/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether empty worst-page rankings are shown.
	showEmpty bool

	// verbose adds impact, fix and link samples.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.ScanReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeAssessment(&sb, report)
	w.writeMetrics(&sb, report)
	w.writeIssues(&sb, report)
	w.writeWorstPages(&sb, "worst pages: missing alt text", report.Metrics.WorstMissingAlt)
	w.writeWorstPages(&sb, "worst pages: unlabeled controls", report.Metrics.WorstUnlabeled)
	w.writeChanges(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(heading(title))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                    ACCESSIBILITY BARRIER REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Site:           %s\n", report.Target)
	if report.Metrics.Title != "" {
		fmt.Fprintf(sb, "Title:          %s\n", report.Metrics.Title)
	}
	fmt.Fprintf(sb, "Scan Date:      %s\n", report.DateScanned.Format("2006-01-02 15:04:05 MST"))
	if report.RunID != "" {
		fmt.Fprintf(sb, "Run ID:         %s\n", report.RunID)
	}
	fmt.Fprintf(sb, "Pages Sampled:  %d of %d attempted\n", len(report.SuccessfulPages), len(report.AttemptedPages))
	fmt.Fprintf(sb, "Coverage:       %s\n", report.Coverage)
	fmt.Fprintf(sb, "Status:         %s\n", statusText(report))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeAssessment(sb *strings.Builder, report *model.ScanReport) {
	section(sb, "assessment")
	fmt.Fprintf(sb, "  SEVERITY: %s\n", heading(report.Assessment.Severity.String()))
	fmt.Fprintf(sb, "  EFFORT:   %s\n", heading(report.Assessment.Effort.String()))
	if report.Assessment.Rationale != "" {
		fmt.Fprintf(sb, "\n  %s\n", report.Assessment.Rationale)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeMetrics(sb *strings.Builder, report *model.ScanReport) {
	m := report.Metrics
	section(sb, "metrics")
	fmt.Fprintf(sb, "  Images without alt:    %s\n", ratio(m.MissingAlt, m.Images))
	fmt.Fprintf(sb, "  Unlabeled controls:    %s\n", ratio(m.Unlabeled, m.Controls))
	fmt.Fprintf(sb, "  Forms:                 %d\n", m.Forms)
	fmt.Fprintf(sb, "  Unique links:          %d (%d internal, %d external)\n", m.UniqueLinks, m.InternalLinks, m.ExternalLinks)
	fmt.Fprintf(sb, "  Sections:              %d\n", m.Sections)
	if w.verbose {
		for _, l := range m.InternalSamples {
			fmt.Fprintf(sb, "    [internal] %s\n", l)
		}
		for _, l := range m.ExternalSamples {
			fmt.Fprintf(sb, "    [external] %s\n", l)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeIssues(sb *strings.Builder, report *model.ScanReport) {
	section(sb, "issues")
	if len(report.Issues) == 0 {
		sb.WriteString("  No barriers detected in the sampled pages\n\n")
		return
	}
	for _, issue := range report.Issues {
		fmt.Fprintf(sb, "  * %s\n", issue.Title)
		fmt.Fprintf(sb, "    %s\n", issue.Description)
		if w.verbose {
			fmt.Fprintf(sb, "    Impact: %s\n", issue.Impact)
			fmt.Fprintf(sb, "    Fix:    %s\n", issue.Fix)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeWorstPages(sb *strings.Builder, title string, pages []model.WorstPage) {
	if len(pages) == 0 && !w.showEmpty {
		return
	}
	section(sb, title)
	if len(pages) == 0 {
		sb.WriteString("  None\n\n")
		return
	}
	for i, p := range pages {
		fmt.Fprintf(sb, "  %d. %s (%d)\n", i+1, p.URL, p.Count)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeChanges(sb *strings.Builder, report *model.ScanReport) {
	section(sb, "changes since last scan")
	fmt.Fprintf(sb, "  Fingerprint: %s\n", report.Fingerprint.Hash)
	c := report.Changes
	if c == nil {
		sb.WriteString("  First scan, no baseline\n\n")
		return
	}
	fmt.Fprintf(sb, "  Since:       %s\n", c.Since.Format("2006-01-02 15:04:05 MST"))
	if !c.Changed {
		sb.WriteString("  No change in tracked counters\n\n")
		return
	}
	fmt.Fprintf(sb, "  Missing alt: %d -> %d (%s)\n", c.MissingAlt.Before, c.MissingAlt.After, signed(c.MissingAlt.Delta))
	fmt.Fprintf(sb, "  Unlabeled:   %d -> %d (%s)\n", c.Unlabeled.Before, c.Unlabeled.After, signed(c.Unlabeled.Delta))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Automated checks cover a subset of WCAG. Review manually before concluding.\n")
	sb.WriteString("Report generated by a11yscan\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
