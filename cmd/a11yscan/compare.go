package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/database"
	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/report"
)

// Barrier trend directions.
const (
	directionWorsened  = "worsened"
	directionImproved  = "improved"
	directionUnchanged = "unchanged"
)

// NewCompareCmd creates the compare command.
// This command compares scan evidence stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [site]",
		Short: "Compare the latest two scans of a site",
		Long: `Compare shows the latest two scans of a site side by side.

The comparison covers pages sampled, images without alt text, unlabeled
form controls, the number of issues and the coverage level. Every scan is
stored in the evidence database unless 'a11yscan scan --no-save' was used.

Examples:
  # Compare the latest two scans of a site
  a11yscan compare example.com

  # List the scan history of a site
  a11yscan compare --list example.com

  # List all scanned sites
  a11yscan compare --list-sites

  # Output the comparison as JSON
  a11yscan compare --json example.com

  # Show a stored report by the run id from --list
  a11yscan compare --show 1f3a9c2e`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List scan history for the specified site")
	cmd.Flags().BoolP("list-sites", "L", false,
		"List all scanned sites in the database")
	cmd.Flags().IntP("limit", "n", 0,
		"Maximum number of history entries to list (0 means all)")
	cmd.Flags().StringP("show", "s", "",
		"Show the stored report of a run (full id or unique prefix)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	cmd.Flags().String("db-dir", "",
		"Directory of the evidence database (default: XDG data directory)")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	listSites, err := cmd.Flags().GetBool("list-sites")
	if err != nil {
		return err
	}

	showRunID, err := cmd.Flags().GetString("show")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return errors.New("conflicting output formats: choose one of --json, --markdown")
	}

	// Validate arguments before opening the database.
	var site string
	if !listSites && showRunID == "" {
		if len(args) == 0 {
			return errors.New("site is required (use --list-sites to see scanned sites)")
		}
		target, err := model.NormalizeTarget(args[0])
		if err != nil {
			return err
		}
		site = target.String()
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	db, err := database.Open(dbDir, database.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if listSites {
		return listScannedSites(ctx, out, db)
	}
	if showRunID != "" {
		return showStoredReport(ctx, out, db, showRunID, jsonOutput, markdownOutput)
	}

	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return err
		}
		return listScanHistory(ctx, out, db, site, limit)
	}

	result, err := runComparison(ctx, db, site)
	if err != nil {
		return err
	}

	switch {
	case jsonOutput:
		return outputComparisonJSON(out, result)
	case markdownOutput:
		return outputComparisonMarkdown(out, result)
	default:
		return outputComparisonText(out, result)
	}
}

// showStoredReport writes the stored report of a run in the chosen format.
func showStoredReport(ctx context.Context, out io.Writer, db *database.EvidenceDB, runID string, jsonOutput, markdownOutput bool) error {
	scanReport, err := db.GetReport(ctx, runID)
	if err != nil {
		return err
	}
	if scanReport == nil {
		return fmt.Errorf("no scan found with run id %s (use --list <site> to see run ids)", runID)
	}

	var writer report.Writer
	switch {
	case jsonOutput:
		writer = report.NewFullJSONWriter(out, getVersion(), report.WithPrettyPrint())
	case markdownOutput:
		writer = report.NewMarkdownWriter(out)
	default:
		writer = report.NewSimpleWriter(out)
	}
	_, err = writer.Write(scanReport)
	return err
}

// listScannedSites lists all sites that have evidence in the database.
func listScannedSites(ctx context.Context, out io.Writer, db *database.EvidenceDB) error {
	sites, err := db.ListSites(ctx)
	if err != nil {
		return err
	}

	if len(sites) == 0 {
		fmt.Fprintln(out, "No scanned sites found in the database.")
		fmt.Fprintln(out, "\nUse 'a11yscan scan <site>' to scan a site.")
		return nil
	}

	fmt.Fprintf(out, "Scanned sites (%d):\n\n", len(sites))
	for _, site := range sites {
		fmt.Fprintf(out, "  • %s\n", site)
	}
	fmt.Fprintln(out, "\nUse 'a11yscan compare --list <site>' to see the scan history of a site.")
	return nil
}

// listScanHistory lists the evidence rows of a site, newest first.
func listScanHistory(ctx context.Context, out io.Writer, db *database.EvidenceDB, site string, limit int) error {
	rows, err := db.History(ctx, site, limit)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		fmt.Fprintf(out, "No scan history found for %s\n", site)
		fmt.Fprintln(out, "\nUse 'a11yscan scan' to scan this site.")
		return nil
	}

	fmt.Fprintf(out, "Scan history for %s (%d scans):\n\n", site, len(rows))
	fmt.Fprintf(out, "  %-19s  %-8s  %5s  %11s  %9s  %6s  %-8s  %s\n",
		"Date", "Run", "Pages", "Missing Alt", "Unlabeled", "Issues", "Coverage", "Severity")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 88))

	for _, row := range rows {
		fmt.Fprintf(out, "  %-19s  %-8s  %5d  %11d  %9d  %6d  %-8s  %s\n",
			row.ScannedAt.Local().Format("2006-01-02 15:04:05"),
			shortRunID(row.RunID),
			row.PagesSampled,
			row.MissingAlt,
			row.UnlabeledControls,
			row.IssuesFound,
			row.Coverage,
			row.Severity,
		)
	}

	fmt.Fprintln(out, "\nUse 'a11yscan compare <site>' to compare the latest two scans.")
	return nil
}

// ComparisonResult holds the comparison of the latest two scans of a site.
type ComparisonResult struct {
	// Site is the normalized site URL.
	Site string `json:"site"`

	// PreviousScan is the older of the two scans.
	PreviousScan ScanSummary `json:"previous_scan"`

	// CurrentScan is the latest scan.
	CurrentScan ScanSummary `json:"current_scan"`

	// Deltas are current minus previous.
	Deltas Deltas `json:"deltas"`

	// CoverageChanged is true when the coverage level differs.
	CoverageChanged bool `json:"coverage_changed"`

	// FingerprintChanged is true when the metric fingerprints differ.
	FingerprintChanged bool `json:"fingerprint_changed"`

	// Direction is "improved", "worsened" or "unchanged", judged by the
	// total barrier count.
	Direction string `json:"direction"`
}

// ScanSummary is one side of a comparison.
type ScanSummary struct {
	RunID             string         `json:"run_id"`
	DateScanned       time.Time      `json:"date_scanned"`
	PagesSampled      int            `json:"pages_sampled"`
	MissingAlt        int            `json:"missing_alt"`
	UnlabeledControls int            `json:"unlabeled_controls"`
	IssuesFound       int            `json:"issues_found"`
	Coverage          model.Coverage `json:"coverage"`
	Severity          string         `json:"severity"`
	Fingerprint       string         `json:"fingerprint"`
}

// Deltas holds the signed change of each counter.
type Deltas struct {
	PagesSampled      int `json:"pages_sampled"`
	MissingAlt        int `json:"missing_alt"`
	UnlabeledControls int `json:"unlabeled_controls"`
	IssuesFound       int `json:"issues_found"`
}

// runComparison loads the latest two evidence rows of site and compares them.
func runComparison(ctx context.Context, db *database.EvidenceDB, site string) (*ComparisonResult, error) {
	latest, previous, err := db.LatestPair(ctx, site)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, fmt.Errorf("no scan history found for %s", site)
	}
	if previous == nil {
		return nil, fmt.Errorf("at least 2 scans are required for comparison (found 1 for %s)", site)
	}
	return compareEvidence(previous.EvidenceRecord, latest.EvidenceRecord), nil
}

// compareEvidence compares two evidence records of the same site.
func compareEvidence(previous, current model.EvidenceRecord) *ComparisonResult {
	result := &ComparisonResult{
		Site:         current.SiteURL,
		PreviousScan: summarize(previous),
		CurrentScan:  summarize(current),
		Deltas: Deltas{
			PagesSampled:      current.PagesSampled - previous.PagesSampled,
			MissingAlt:        current.MissingAlt - previous.MissingAlt,
			UnlabeledControls: current.UnlabeledControls - previous.UnlabeledControls,
			IssuesFound:       current.IssuesFound - previous.IssuesFound,
		},
		CoverageChanged:    current.Coverage != previous.Coverage,
		FingerprintChanged: current.Fingerprint != previous.Fingerprint,
	}
	result.Direction = barrierDirection(previous, current)
	return result
}

func summarize(ev model.EvidenceRecord) ScanSummary {
	return ScanSummary{
		RunID:             ev.RunID,
		DateScanned:       ev.ScannedAt,
		PagesSampled:      ev.PagesSampled,
		MissingAlt:        ev.MissingAlt,
		UnlabeledControls: ev.UnlabeledControls,
		IssuesFound:       ev.IssuesFound,
		Coverage:          ev.Coverage,
		Severity:          ev.Severity.String(),
		Fingerprint:       ev.Fingerprint,
	}
}

// barrierDirection judges the trend by the total barrier count.
func barrierDirection(previous, current model.EvidenceRecord) string {
	before := previous.MissingAlt + previous.UnlabeledControls
	after := current.MissingAlt + current.UnlabeledControls
	switch {
	case after < before:
		return directionImproved
	case after > before:
		return directionWorsened
	default:
		return directionUnchanged
	}
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(out io.Writer, result *ComparisonResult) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// comparisonRows returns the counter rows shared by the text and Markdown
// outputs: name, previous, current, change.
func comparisonRows(result *ComparisonResult) [][]string {
	prev, cur, d := result.PreviousScan, result.CurrentScan, result.Deltas
	return [][]string{
		{"Pages sampled", strconv.Itoa(prev.PagesSampled), strconv.Itoa(cur.PagesSampled), formatDelta(d.PagesSampled)},
		{"Missing alt", strconv.Itoa(prev.MissingAlt), strconv.Itoa(cur.MissingAlt), formatDelta(d.MissingAlt)},
		{"Unlabeled", strconv.Itoa(prev.UnlabeledControls), strconv.Itoa(cur.UnlabeledControls), formatDelta(d.UnlabeledControls)},
		{"Issues", strconv.Itoa(prev.IssuesFound), strconv.Itoa(cur.IssuesFound), formatDelta(d.IssuesFound)},
		{"Coverage", string(prev.Coverage), string(cur.Coverage), formatCoverageChange(result)},
		{"Severity", prev.Severity, cur.Severity, "-"},
	}
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(out io.Writer, result *ComparisonResult) error {
	md := markdown.NewMarkdown(out)
	md.H1f("Scan Comparison: %s", result.Site)
	md.PlainText("")
	md.PlainTextf("**Barrier Trend:** %s", formatDirection(result.Direction))
	md.PlainText("")

	rows := [][]string{{
		"Date",
		result.PreviousScan.DateScanned.Format("2006-01-02 15:04"),
		result.CurrentScan.DateScanned.Format("2006-01-02 15:04"),
		"-",
	}}
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows:   append(rows, comparisonRows(result)...),
	})
	md.PlainText("")

	if result.FingerprintChanged {
		md.PlainTextf("Fingerprint changed: `%s` -> `%s`", result.PreviousScan.Fingerprint, result.CurrentScan.Fingerprint)
	} else {
		md.PlainTextf("Fingerprint unchanged: `%s`", result.CurrentScan.Fingerprint)
	}
	return md.Build()
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(out io.Writer, result *ComparisonResult) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Scan Comparison: %s\n", result.Site)
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&sb, "\nBarrier Trend: %s\n", formatDirection(result.Direction))

	fmt.Fprintf(&sb, "\nPrevious scan: %s (%s)\n",
		result.PreviousScan.DateScanned.Local().Format("2006-01-02 15:04:05"), shortRunID(result.PreviousScan.RunID))
	fmt.Fprintf(&sb, "Current scan:  %s (%s)\n",
		result.CurrentScan.DateScanned.Local().Format("2006-01-02 15:04:05"), shortRunID(result.CurrentScan.RunID))

	sb.WriteString("\nSummary:\n")
	fmt.Fprintf(&sb, "  %-14s  %-10s  %-10s  %-10s\n", "Metric", "Previous", "Current", "Change")
	sb.WriteString("  " + strings.Repeat("-", 50) + "\n")
	for _, row := range comparisonRows(result) {
		fmt.Fprintf(&sb, "  %-14s  %-10s  %-10s  %-10s\n", row[0], row[1], row[2], row[3])
	}

	if result.FingerprintChanged {
		fmt.Fprintf(&sb, "\nFingerprint: %s -> %s\n", result.PreviousScan.Fingerprint, result.CurrentScan.Fingerprint)
	} else {
		fmt.Fprintf(&sb, "\nFingerprint: %s (unchanged)\n", result.CurrentScan.Fingerprint)
	}

	_, err := io.WriteString(out, sb.String())
	return err
}

// formatDirection formats the barrier trend for display.
func formatDirection(direction string) string {
	switch direction {
	case directionImproved:
		return "IMPROVED (fewer barriers)"
	case directionWorsened:
		return "WORSENED (more barriers)"
	default:
		return "UNCHANGED"
	}
}

func formatCoverageChange(result *ComparisonResult) string {
	if !result.CoverageChanged {
		return "-"
	}
	return "changed"
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}

// shortRunID returns the first eight characters of a run ID.
func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
