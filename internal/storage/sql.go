package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"transcheck/internal/domain"
)

// Supported history drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// History stores run summaries and verdicts across runs.
type History interface {
	Append(ctx context.Context, report *domain.RunReport) error
	Recent(ctx context.Context, limit int) ([]RunSummary, error)
	CaseHistory(ctx context.Context, caseID string, limit int) ([]CaseResult, error)
	Close() error
}

// RunSummary is one row of the runs table.
type RunSummary struct {
	RunID             string
	Matrix            string
	TargetURL         string
	StartedAt         string
	Duration          time.Duration
	Total             int
	Passed            int
	Failed            int
	Indeterminate     int
	StructuralFailed  int
	TranslationFailed int
	Skipped           int
	Aborted           string
}

// CaseResult is the outcome of one case in a past run.
type CaseResult struct {
	RunID     string
	StartedAt string
	Expected  domain.Outcome
	Actual    domain.Outcome
	Observed  string
	Passed    bool
	Failure   domain.FailureKind
}

// Schema returns the statements creating the history tables. They are
// idempotent and valid for both drivers.
func Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id VARCHAR(36) NOT NULL PRIMARY KEY,
			matrix VARCHAR(255) NOT NULL,
			target_url TEXT NOT NULL,
			started_at VARCHAR(32) NOT NULL,
			duration_ms BIGINT NOT NULL,
			total INT NOT NULL,
			passed INT NOT NULL,
			failed INT NOT NULL,
			indeterminate INT NOT NULL,
			structural_failed INT NOT NULL,
			translation_failed INT NOT NULL,
			skipped INT NOT NULL,
			aborted TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS verdicts (
			run_id VARCHAR(36) NOT NULL,
			case_id VARCHAR(64) NOT NULL,
			partition_name VARCHAR(16) NOT NULL,
			category VARCHAR(32) NOT NULL,
			input_text TEXT NOT NULL,
			expected VARCHAR(16) NOT NULL,
			actual VARCHAR(16) NOT NULL,
			observed TEXT NOT NULL,
			passed BOOLEAN NOT NULL,
			failure VARCHAR(64) NOT NULL,
			diagnostics TEXT NOT NULL,
			duration_ms BIGINT NOT NULL,
			PRIMARY KEY (run_id, case_id)
		)`,
		`CREATE INDEX idx_verdicts_case ON verdicts (case_id)`,
	}
}

// SQLHistory is a History on database/sql, backed by SQLite or MySQL.
type SQLHistory struct {
	db     *sql.DB
	driver string
}

// OpenHistory opens the history database. For SQLite the parent directory of
// the database file is created.
func OpenHistory(driverName, dsn string) (*SQLHistory, error) {
	switch driverName {
	case DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	case DriverMySQL:
	default:
		return nil, fmt.Errorf("unsupported history driver %q", driverName)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	if driverName == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	return &SQLHistory{db: db, driver: driverName}, nil
}

// DB exposes the underlying handle for schema preparation.
func (h *SQLHistory) DB() *sql.DB {
	return h.db
}

// Driver returns the driver name.
func (h *SQLHistory) Driver() string {
	return h.driver
}

// EnsureSchema applies Schema, tolerating an already existing index.
func (h *SQLHistory) EnsureSchema(ctx context.Context) error {
	for _, stmt := range Schema() {
		if err := ApplyStatement(ctx, h.db, h.driver, stmt); err != nil {
			return err
		}
	}
	return nil
}

// ApplyStatement executes one schema statement. Index creation is skipped when
// the index exists since the drivers disagree on CREATE INDEX IF NOT EXISTS.
func ApplyStatement(ctx context.Context, db *sql.DB, driverName, stmt string) error {
	if name, table, ok := indexOf(stmt); ok {
		exists, err := indexExists(ctx, db, driverName, name, table)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
	}
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func indexOf(stmt string) (name, table string, ok bool) {
	f := strings.Fields(stmt)
	if len(f) >= 5 && f[0] == "CREATE" && f[1] == "INDEX" && f[3] == "ON" {
		return f[2], f[4], true
	}
	return "", "", false
}

func indexExists(ctx context.Context, db *sql.DB, driverName, name, table string) (bool, error) {
	var n int
	var err error
	if driverName == DriverMySQL {
		err = db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM information_schema.statistics WHERE table_schema = DATABASE() AND table_name = ? AND index_name = ?`,
			table, name).Scan(&n)
	} else {
		err = db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND tbl_name = ? AND name = ?`,
			table, name).Scan(&n)
	}
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", name, err)
	}
	return n > 0, nil
}

// Append stores a finalized report in one transaction.
func (h *SQLHistory) Append(ctx context.Context, report *domain.RunReport) error {
	if !report.Finalized() {
		return fmt.Errorf("append history: report %s is not finalized", report.Meta.RunID)
	}
	m := report.Meta

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, matrix, target_url, started_at, duration_ms, total, passed, failed,
			indeterminate, structural_failed, translation_failed, skipped, aborted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.RunID, m.Matrix, m.TargetURL, m.Timestamp, int64(m.DurationSeconds*1000), m.Total, m.Passed, m.Failed,
		m.Indeterminate, m.StructuralFailed, m.TranslationFailed, m.Skipped, m.Aborted)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO verdicts (run_id, case_id, partition_name, category, input_text, expected, actual,
			observed, passed, failure, diagnostics, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare verdict insert: %w", err)
	}
	defer stmt.Close()

	for _, v := range report.Verdicts {
		diags, err := json.Marshal(v.Diagnostics)
		if err != nil {
			return fmt.Errorf("marshal diagnostics of %s: %w", v.CaseID, err)
		}
		if _, err := stmt.ExecContext(ctx, m.RunID, v.CaseID, string(v.Partition), string(v.Category), v.Input,
			string(v.Expected), string(v.Actual), v.Observed, v.Passed, string(v.Failure), string(diags), v.DurationMS); err != nil {
			return fmt.Errorf("insert verdict %s: %w", v.CaseID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history: %w", err)
	}
	return nil
}

// Recent returns the latest runs, newest first.
func (h *SQLHistory) Recent(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT run_id, matrix, target_url, started_at, duration_ms, total, passed, failed,
			indeterminate, structural_failed, translation_failed, skipped, aborted
		FROM runs ORDER BY started_at DESC, run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var ms int64
		if err := rows.Scan(&r.RunID, &r.Matrix, &r.TargetURL, &r.StartedAt, &ms, &r.Total, &r.Passed, &r.Failed,
			&r.Indeterminate, &r.StructuralFailed, &r.TranslationFailed, &r.Skipped, &r.Aborted); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Duration = time.Duration(ms) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// CaseHistory returns the latest results of one case, newest first.
func (h *SQLHistory) CaseHistory(ctx context.Context, caseID string, limit int) ([]CaseResult, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT v.run_id, r.started_at, v.expected, v.actual, v.observed, v.passed, v.failure
		FROM verdicts v JOIN runs r ON r.run_id = v.run_id
		WHERE v.case_id = ? ORDER BY r.started_at DESC, v.run_id DESC LIMIT ?`, caseID, limit)
	if err != nil {
		return nil, fmt.Errorf("query case history: %w", err)
	}
	defer rows.Close()

	var results []CaseResult
	for rows.Next() {
		var (
			r                         CaseResult
			expected, actual, failure string
		)
		if err := rows.Scan(&r.RunID, &r.StartedAt, &expected, &actual, &r.Observed, &r.Passed, &failure); err != nil {
			return nil, fmt.Errorf("scan case result: %w", err)
		}
		r.Expected, r.Actual, r.Failure = domain.Outcome(expected), domain.Outcome(actual), domain.FailureKind(failure)
		results = append(results, r)
	}
	return results, rows.Err()
}

// Close closes the database.
func (h *SQLHistory) Close() error {
	return h.db.Close()
}
