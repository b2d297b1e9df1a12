package report

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/a11yscan/internal/model"
)

// csvHeader is the column order of CSV reports. It is part of the output
// contract; append new columns at the end.
var csvHeader = []string{
	"run_id",
	"site_url",
	"scanned_at",
	"coverage",
	"pages_attempted",
	"pages_sampled",
	"images",
	"missing_alt",
	"controls",
	"unlabeled_controls",
	"forms",
	"unique_links",
	"issues",
	"severity",
	"effort",
	"fingerprint",
	"changed",
	"missing_alt_delta",
	"unlabeled_delta",
}

// CSVWriter outputs one row per report, for spreadsheets. The header row
// is written before the first report only.
type CSVWriter struct {
	baseWriter

	wroteHeader bool
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report as a CSV row.
func (w *CSVWriter) Write(report *model.ScanReport) (int, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if !w.wroteHeader {
		if err := cw.Write(csvHeader); err != nil {
			return 0, err
		}
	}
	if err := cw.Write(csvRow(report)); err != nil {
		return 0, err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, err
	}

	n, err := w.output.Write(buf.Bytes())
	if err == nil {
		w.wroteHeader = true
	}
	return n, err
}

func csvRow(report *model.ScanReport) []string {
	m := report.Metrics
	ids := make([]string, len(report.Issues))
	for i, issue := range report.Issues {
		ids[i] = issue.ID
	}

	changed, altDelta, labelDelta := "", "", ""
	if c := report.Changes; c != nil {
		changed = strconv.FormatBool(c.Changed)
		altDelta = strconv.Itoa(c.MissingAlt.Delta)
		labelDelta = strconv.Itoa(c.Unlabeled.Delta)
	}

	return []string{
		report.RunID,
		report.Target,
		report.DateScanned.UTC().Format(time.RFC3339),
		string(report.Coverage),
		strconv.Itoa(len(report.AttemptedPages)),
		strconv.Itoa(len(report.SuccessfulPages)),
		strconv.Itoa(m.Images),
		strconv.Itoa(m.MissingAlt),
		strconv.Itoa(m.Controls),
		strconv.Itoa(m.Unlabeled),
		strconv.Itoa(m.Forms),
		strconv.Itoa(m.UniqueLinks),
		strings.Join(ids, ";"),
		report.Assessment.Severity.String(),
		report.Assessment.Effort.String(),
		report.Fingerprint.Hash,
		changed,
		altDelta,
		labelDelta,
	}
}
