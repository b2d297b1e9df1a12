package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/a11yscan/internal/model"
)

// createTestReport creates a report with sample data for testing.
func createTestReport() *model.ScanReport {
	report := model.NewScanReport("https://site.example/")
	report.RunID = "run-1"
	report.DateScanned = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	report.AttemptedPages = []string{"https://site.example/", "https://site.example/contact", "https://site.example/gone"}
	report.SuccessfulPages = []string{"https://site.example/", "https://site.example/contact"}
	report.Coverage = model.CoverageGood
	report.Metrics = model.SiteMetrics{
		PagesAnalyzed: 2,
		Images:        8,
		MissingAlt:    6,
		Controls:      4,
		Unlabeled:     4,
		Forms:         1,
		UniqueLinks:   12,
		InternalLinks: 10,
		ExternalLinks: 2,
		Title:         "Site, Inc.",
		Sections:      2,
		WorstMissingAlt: []model.WorstPage{
			{URL: "https://site.example/", Count: 5},
			{URL: "https://site.example/contact", Count: 1},
		},
		WorstUnlabeled: []model.WorstPage{{URL: "https://site.example/contact", Count: 4}},
	}
	report.Issues = []model.Issue{
		model.NewIssue(model.IssueFormLabels, "4 of 4 form controls on 2 sampled pages have no accessible label."),
		model.NewIssue(model.IssueImageAlt, "6 of 8 images on 2 sampled pages have no alt attribute."),
	}
	report.Assessment = model.Assessment{
		Severity:  model.SeverityMedium,
		Effort:    model.EffortModerate,
		Rationale: "Unlabeled form fields block task completion.",
	}
	report.Fingerprint = model.ScanFingerprint{Hash: "0123456789abcdef", Timestamp: report.DateScanned}
	return report
}

func withChanges(report *model.ScanReport) *model.ScanReport {
	report.Previous = &model.ScanFingerprint{Hash: "fedcba9876543210", Timestamp: report.DateScanned.Add(-time.Hour)}
	report.Changes = &model.Change{
		Since:      report.Previous.Timestamp,
		Changed:    true,
		MissingAlt: model.CounterDelta{Before: 10, After: 6, Delta: -4},
		Unlabeled:  model.CounterDelta{Before: 4, After: 4, Delta: 0},
	}
	return report
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and assessment", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"ACCESSIBILITY BARRIER REPORT",
			"https://site.example/",
			"Site, Inc.",
			"Pages Sampled:  2 of 3 attempted",
			"Coverage:       Good",
			"SEVERITY: MEDIUM",
			"EFFORT:   MODERATE",
			"Images without alt:    6 of 8 (75%)",
			"First scan, no baseline",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("issues keep derivation order", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatal(err)
		}
		output := buf.String()
		labels := strings.Index(output, "Form fields without labels")
		images := strings.Index(output, "Images without text alternatives")
		if labels < 0 || images < 0 || labels > images {
			t.Errorf("expected form labels before images, got %d and %d", labels, images)
		}
	})

	t.Run("worst pages in rank order", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatal(err)
		}
		output := buf.String()
		if !strings.Contains(output, "1. https://site.example/ (5)") || !strings.Contains(output, "2. https://site.example/contact (1)") {
			t.Errorf("unexpected worst pages:\n%s", output)
		}
	})

	t.Run("verbose adds impact and fix", func(t *testing.T) {
		t.Parallel()

		var quiet, verbose bytes.Buffer
		if _, err := NewSimpleWriter(&quiet).Write(createTestReport()); err != nil {
			t.Fatal(err)
		}
		if _, err := NewSimpleWriter(&verbose, WithVerbose(true)).Write(createTestReport()); err != nil {
			t.Fatal(err)
		}
		if strings.Contains(quiet.String(), "Impact:") {
			t.Error("expected no impact without verbose")
		}
		if !strings.Contains(verbose.String(), "Impact:") || !strings.Contains(verbose.String(), "Fix:") {
			t.Error("expected impact and fix with verbose")
		}
	})

	t.Run("empty rankings", func(t *testing.T) {
		t.Parallel()

		report := createTestReport()
		report.Metrics.WorstUnlabeled = nil

		var hidden, shown bytes.Buffer
		if _, err := NewSimpleWriter(&hidden).Write(report); err != nil {
			t.Fatal(err)
		}
		if _, err := NewSimpleWriter(&shown, WithShowEmpty(true)).Write(report); err != nil {
			t.Fatal(err)
		}
		if strings.Contains(hidden.String(), "UNLABELED CONTROLS") {
			t.Error("expected empty ranking to be hidden")
		}
		if !strings.Contains(shown.String(), "UNLABELED CONTROLS") {
			t.Error("expected empty ranking with WithShowEmpty")
		}
	})

	t.Run("changes block", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(withChanges(createTestReport())); err != nil {
			t.Fatal(err)
		}
		output := buf.String()
		if !strings.Contains(output, "Missing alt: 10 -> 6 (-4)") || !strings.Contains(output, "Unlabeled:   4 -> 4 (+0)") {
			t.Errorf("unexpected changes block:\n%s", output)
		}
	})

	t.Run("status", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name   string
			mutate func(*model.ScanReport)
			want   string
		}{
			{"complete", func(*model.ScanReport) {}, "Complete"},
			{"timed out", func(r *model.ScanReport) { r.TimedOut = true }, "Time budget exhausted"},
			{"fallback", func(r *model.ScanReport) { r.UsedFallback = true }, "Root page only"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				report := createTestReport()
				tt.mutate(report)
				var buf bytes.Buffer
				if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
					t.Fatal(err)
				}
				if !strings.Contains(buf.String(), "Status:         "+tt.want) {
					t.Errorf("expected status %q:\n%s", tt.want, buf.String())
				}
			})
		}
	})

	t.Run("no issues", func(t *testing.T) {
		t.Parallel()

		report := createTestReport()
		report.Issues = nil
		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "No barriers detected") {
			t.Error("expected no-barrier message")
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes stable field names", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewJSONWriter(&buf).Write(withChanges(createTestReport()))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes written, got %d", buf.Len(), n)
		}

		var decoded map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		for _, key := range []string{"target", "coverage", "attempted_pages", "successful_pages", "metrics", "issues", "assessment", "fingerprint", "changes"} {
			if _, ok := decoded[key]; !ok {
				t.Errorf("missing field %q", key)
			}
		}
		assessment, ok := decoded["assessment"].(map[string]any)
		if !ok || assessment["severity"] != "Medium" {
			t.Errorf("expected severity by name, got %v", decoded["assessment"])
		}
	})

	t.Run("first scan omits changes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatal(err)
		}
		if strings.Contains(buf.String(), `"changes"`) || strings.Contains(buf.String(), `"previous"`) {
			t.Errorf("expected no changes block: %s", buf.String())
		}
	})

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatal(err)
		}
		var decoded model.ScanReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatal(err)
		}
		if decoded.Assessment.Severity != model.SeverityMedium || len(decoded.Issues) != 2 || decoded.Issues[0].ID != model.IssueFormLabels {
			t.Errorf("unexpected decoded report %+v", decoded)
		}
	})
}

func TestWithIndent(t *testing.T) {
	t.Parallel()

	var compact, pretty, custom bytes.Buffer
	report := createTestReport()
	if _, err := NewJSONWriter(&compact).Write(report); err != nil {
		t.Fatal(err)
	}
	if _, err := NewJSONWriter(&pretty, WithPrettyPrint()).Write(report); err != nil {
		t.Fatal(err)
	}
	if _, err := NewJSONWriter(&custom, WithIndent("", "\t")).Write(report); err != nil {
		t.Fatal(err)
	}

	if strings.Count(compact.String(), "\n") != 1 {
		t.Error("expected compact output on one line")
	}
	if !strings.Contains(pretty.String(), "\n  \"target\"") {
		t.Error("expected two-space indentation")
	}
	if !strings.Contains(custom.String(), "\n\t\"target\"") {
		t.Error("expected tab indentation")
	}
}

func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewFullJSONWriter(&buf, "v1.2.3").Write(createTestReport()); err != nil {
		t.Fatal(err)
	}
	var wrapped JSONReport
	if err := json.Unmarshal(buf.Bytes(), &wrapped); err != nil {
		t.Fatal(err)
	}
	if wrapped.Version != "v1.2.3" || wrapped.Report == nil || wrapped.Report.RunID != "run-1" {
		t.Errorf("unexpected wrapper %+v", wrapped)
	}
}

func TestCSVWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewCSVWriter(&buf)
	if _, err := w.Write(createTestReport()); err != nil {
		t.Fatal(err)
	}
	second := withChanges(createTestReport())
	second.RunID = "run-2"
	if _, err := w.Write(second); err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header and 2 rows, got %d records", len(records))
	}
	if records[0][0] != "run_id" || len(records[0]) != len(csvHeader) {
		t.Errorf("unexpected header %v", records[0])
	}

	col := func(name string) int {
		for i, h := range csvHeader {
			if h == name {
				return i
			}
		}
		t.Fatalf("no column %q", name)
		return -1
	}
	first := records[1]
	if first[col("missing_alt")] != "6" || first[col("issues")] != "form-labels;image-alt" || first[col("severity")] != "Medium" {
		t.Errorf("unexpected row %v", first)
	}
	if first[col("changed")] != "" {
		t.Errorf("expected empty delta on first scan, got %q", first[col("changed")])
	}
	if records[2][col("missing_alt_delta")] != "-4" || records[2][col("changed")] != "true" {
		t.Errorf("unexpected delta row %v", records[2])
	}
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(withChanges(createTestReport())); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# Accessibility Barrier Report",
			"## Assessment",
			"[!WARNING]",
			"```mermaid",
			"pie",
			"### Form fields without labels",
			"Form Labels",
			"## Worst Pages: Images without alt text",
			"| 1 | https://site.example/ | 5 |",
			"-4",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("alert follows severity", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name     string
			severity model.Severity
			issues   bool
			want     string
		}{
			{"medium", model.SeverityMedium, true, "[!WARNING]"},
			{"low with issues", model.SeverityLow, true, "[!NOTE]"},
			{"clean", model.SeverityLow, false, "[!TIP]"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				report := createTestReport()
				report.Assessment.Severity = tt.severity
				if !tt.issues {
					report.Issues = nil
				}
				var buf bytes.Buffer
				if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
					t.Fatal(err)
				}
				if !strings.Contains(buf.String(), tt.want) {
					t.Errorf("expected %s alert:\n%s", tt.want, buf.String())
				}
			})
		}
	})

	t.Run("no chart without barriers", func(t *testing.T) {
		t.Parallel()

		report := createTestReport()
		report.Metrics.MissingAlt = 0
		report.Metrics.Unlabeled = 0
		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatal(err)
		}
		if strings.Contains(buf.String(), "```mermaid") {
			t.Error("expected no pie chart")
		}
		if !strings.Contains(buf.String(), "First scan, no baseline.") {
			t.Error("expected first-scan note")
		}
	})
}

func TestLabels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		got, want string
	}{
		{issueLabel("form-labels"), "Form Labels"},
		{issueLabel("script-rendered"), "Script Rendered"},
		{heading("changes since last scan"), "CHANGES SINCE LAST SCAN"},
		{signed(-4), "-4"},
		{signed(0), "+0"},
		{signed(3), "+3"},
		{ratio(1, 4), "1 of 4 (25%)"},
		{ratio(0, 0), "-"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}
