package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/a11yscan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format for sharing in
// issues, pull requests and wikis.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeAssessment(md, report)
	w.writeMetrics(md, report)
	w.writeIssues(md, report)
	w.writeWorstPages(md, "Images without alt text", report.Metrics.WorstMissingAlt)
	w.writeWorstPages(md, "Unlabeled form controls", report.Metrics.WorstUnlabeled)
	w.writeChanges(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ScanReport) {
	md.H1("Accessibility Barrier Report")
	md.PlainText("")

	rows := [][]string{
		{"Site", "`" + report.Target + "`"},
	}
	if report.Metrics.Title != "" {
		rows = append(rows, []string{"Title", report.Metrics.Title})
	}
	rows = append(rows,
		[]string{"Scan Date", report.DateScanned.Format("2006-01-02 15:04:05 MST")},
		[]string{"Pages Sampled", strconv.Itoa(len(report.SuccessfulPages)) + " of " + strconv.Itoa(len(report.AttemptedPages)) + " attempted"},
		[]string{"Coverage", string(report.Coverage)},
		[]string{"Status", statusText(report)},
	)
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeAssessment(md *markdown.Markdown, report *model.ScanReport) {
	a := report.Assessment
	md.H2("Assessment")
	md.PlainText("")

	switch {
	case a.Severity == model.SeverityMedium:
		md.Warningf("Severity %s, effort %s. %s", a.Severity, a.Effort, a.Rationale)
	case len(report.Issues) > 0:
		md.Notef("Severity %s, effort %s. %s", a.Severity, a.Effort, a.Rationale)
	default:
		md.Tipf("No barriers detected in the sampled pages. %s", a.Rationale)
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeMetrics(md *markdown.Markdown, report *model.ScanReport) {
	m := report.Metrics
	md.H2("Metrics")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Images without alt", ratio(m.MissingAlt, m.Images)},
			{"Unlabeled controls", ratio(m.Unlabeled, m.Controls)},
			{"Forms", strconv.Itoa(m.Forms)},
			{"Unique links", strconv.Itoa(m.UniqueLinks)},
			{"Internal links", strconv.Itoa(m.InternalLinks)},
			{"External links", strconv.Itoa(m.ExternalLinks)},
			{"Sections", strconv.Itoa(m.Sections)},
		},
	})
	md.PlainText("")

	if m.MissingAlt+m.Unlabeled > 0 {
		w.writePieChart(md, m)
	}
}

// writePieChart writes a mermaid pie chart of the barrier counts.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, m model.SiteMetrics) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Barriers Found"),
		piechart.WithShowData(true),
	)
	if m.MissingAlt > 0 {
		chart.LabelAndIntValue("Images without alt", uint64(m.MissingAlt))
	}
	if m.Unlabeled > 0 {
		chart.LabelAndIntValue("Unlabeled controls", uint64(m.Unlabeled))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, report *model.ScanReport) {
	md.H2("Issues")
	md.PlainText("")

	if len(report.Issues) == 0 {
		md.PlainText("No barriers detected in the sampled pages.")
		md.PlainText("")
		return
	}

	for _, issue := range report.Issues {
		md.H3(issue.Title)
		md.PlainText("")
		md.PlainText(issue.Description)
		md.PlainText("")
		md.BulletList(
			"**Impact:** "+issue.Impact,
			"**Fix:** "+issue.Fix,
		)
		md.PlainText("")
		md.Details(issueLabel(issue.ID), "Rule `"+issue.ID+"`")
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeWorstPages(md *markdown.Markdown, title string, pages []model.WorstPage) {
	if len(pages) == 0 {
		return
	}
	md.H2("Worst Pages: " + title)
	md.PlainText("")

	rows := make([][]string, len(pages))
	for i, p := range pages {
		rows[i] = []string{strconv.Itoa(i + 1), p.URL, strconv.Itoa(p.Count)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Page", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeChanges(md *markdown.Markdown, report *model.ScanReport) {
	md.H2("Changes Since Last Scan")
	md.PlainText("")
	md.PlainTextf("Fingerprint: `%s`", report.Fingerprint.Hash)
	md.PlainText("")

	c := report.Changes
	if c == nil {
		md.PlainText("First scan, no baseline.")
		md.PlainText("")
		return
	}
	if !c.Changed {
		md.PlainTextf("No change in tracked counters since %s.", c.Since.Format("2006-01-02 15:04:05 MST"))
		md.PlainText("")
		return
	}
	md.Table(markdown.TableSet{
		Header: []string{"Counter", "Before", "After", "Delta"},
		Rows: [][]string{
			{"Images without alt", strconv.Itoa(c.MissingAlt.Before), strconv.Itoa(c.MissingAlt.After), signed(c.MissingAlt.Delta)},
			{"Unlabeled controls", strconv.Itoa(c.Unlabeled.Before), strconv.Itoa(c.Unlabeled.After), signed(c.Unlabeled.Delta)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [a11yscan](https://github.com/nao1215/a11yscan). Automated checks cover a subset of WCAG.*")
}
