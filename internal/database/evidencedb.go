package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/a11yscan/internal/model"
)

// ErrAmbiguousRunID is returned when a run id prefix matches several scans.
var ErrAmbiguousRunID = errors.New("run id prefix matches several scans")

// DBFileName is the evidence database file inside the data directory.
const DBFileName = "a11yscan.db"

// timeLayout has a fixed width so that stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// EvidenceDB stores one evidence row and the full JSON report per scan.
type EvidenceDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures EvidenceDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the evidence database in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*EvidenceDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run a scan first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	edb := &EvidenceDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close() //nolint:errcheck
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if err := edb.createTables(); err != nil {
		_ = db.Close() //nolint:errcheck
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return edb, nil
}

// Path returns the database file path.
func (edb *EvidenceDB) Path() string {
	return edb.dbPath
}

// Close closes the database connection.
func (edb *EvidenceDB) Close() error {
	return edb.db.Close()
}

func (edb *EvidenceDB) createTables() error {
	schema := `
	-- One row per scan; the flat record handed over by the scanner
	CREATE TABLE IF NOT EXISTS evidence (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		site_url TEXT NOT NULL,
		scanned_at TEXT NOT NULL,
		pages_sampled INTEGER NOT NULL,
		missing_alt INTEGER NOT NULL,
		unlabeled_controls INTEGER NOT NULL,
		issues_found INTEGER NOT NULL,
		coverage TEXT NOT NULL,
		severity TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_evidence_site ON evidence(site_url);
	CREATE INDEX IF NOT EXISTS idx_evidence_scanned_at ON evidence(scanned_at);
	`
	_, err := edb.db.ExecContext(context.Background(), schema)
	return err
}

// EvidenceRow is a stored evidence record.
type EvidenceRow struct {
	ID int64
	model.EvidenceRecord
}

// SaveScan stores the evidence record and the JSON report of a scan.
// Saving the same run twice replaces the earlier row.
func (edb *EvidenceDB) SaveScan(ctx context.Context, report *model.ScanReport) error {
	if report.RunID == "" {
		return errors.New("report has no run ID")
	}
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}
	ev := report.Evidence()

	query := `
	INSERT INTO evidence (run_id, site_url, scanned_at, pages_sampled, missing_alt,
		unlabeled_controls, issues_found, coverage, severity, fingerprint, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id) DO UPDATE SET
		pages_sampled = excluded.pages_sampled,
		missing_alt = excluded.missing_alt,
		unlabeled_controls = excluded.unlabeled_controls,
		issues_found = excluded.issues_found,
		coverage = excluded.coverage,
		severity = excluded.severity,
		fingerprint = excluded.fingerprint,
		report_json = excluded.report_json
	`
	_, err = edb.db.ExecContext(ctx, query,
		ev.RunID,
		ev.SiteURL,
		ev.ScannedAt.UTC().Format(timeLayout),
		ev.PagesSampled,
		ev.MissingAlt,
		ev.UnlabeledControls,
		ev.IssuesFound,
		string(ev.Coverage),
		ev.Severity.String(),
		ev.Fingerprint,
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save scan: %w", err)
	}
	return nil
}

// History returns the evidence rows of site, newest first. limit <= 0
// returns all rows.
func (edb *EvidenceDB) History(ctx context.Context, site string, limit int) ([]EvidenceRow, error) {
	query := `
	SELECT id, run_id, site_url, scanned_at, pages_sampled, missing_alt,
		unlabeled_controls, issues_found, coverage, severity, fingerprint
	FROM evidence
	WHERE site_url = ?
	ORDER BY scanned_at DESC, id DESC
	`
	args := []any{site}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := edb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	defer rows.Close()

	var results []EvidenceRow
	for rows.Next() {
		var row EvidenceRow
		var scannedAt, coverage, severity string
		if err := rows.Scan(
			&row.ID,
			&row.RunID,
			&row.SiteURL,
			&scannedAt,
			&row.PagesSampled,
			&row.MissingAlt,
			&row.UnlabeledControls,
			&row.IssuesFound,
			&coverage,
			&severity,
			&row.Fingerprint,
		); err != nil {
			return nil, fmt.Errorf("failed to scan evidence row: %w", err)
		}
		row.ScannedAt = parseTimestamp(scannedAt)
		row.Coverage = model.Coverage(coverage)
		if row.Severity, err = model.ParseSeverity(severity); err != nil {
			return nil, fmt.Errorf("evidence row %d: %w", row.ID, err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// LatestPair returns the newest and the previous evidence rows of site.
// previous is nil when the site was scanned only once; both are nil when
// it was never scanned.
func (edb *EvidenceDB) LatestPair(ctx context.Context, site string) (latest, previous *EvidenceRow, err error) {
	rows, err := edb.History(ctx, site, 2)
	if err != nil {
		return nil, nil, err
	}
	switch len(rows) {
	case 0:
		return nil, nil, nil
	case 1:
		return &rows[0], nil, nil
	default:
		return &rows[0], &rows[1], nil
	}
}

// ListSites returns every scanned site URL, sorted.
func (edb *EvidenceDB) ListSites(ctx context.Context) ([]string, error) {
	rows, err := edb.db.QueryContext(ctx, `SELECT DISTINCT site_url FROM evidence ORDER BY site_url`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []string
	for rows.Next() {
		var site string
		if err := rows.Scan(&site); err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// GetReport returns the full report of a run, or nil if the run is unknown.
// runID may be a unique prefix of the stored id, such as the short id shown
// in the scan history.
func (edb *EvidenceDB) GetReport(ctx context.Context, runID string) (*model.ScanReport, error) {
	if runID == "" {
		return nil, nil
	}
	rows, err := edb.db.QueryContext(ctx,
		`SELECT report_json FROM evidence WHERE substr(run_id, 1, ?) = ? LIMIT 2`, len(runID), runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}
	defer rows.Close()

	var found []string
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		found = append(found, reportJSON)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}

	switch len(found) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousRunID, runID)
	}

	var report model.ScanReport
	if err := json.Unmarshal([]byte(found[0]), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp parses s with the known formats. It returns the zero
// time when none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
