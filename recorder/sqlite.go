package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/veyl/fundcalc"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists allocation runs to a SQLite database. Amounts
// are stored as decimal text, never as floating point.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so audit readers don't block a recording run.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS allocation_runs (
			run_id      TEXT PRIMARY KEY,
			fund        TEXT NOT NULL,
			version     INTEGER NOT NULL,
			recorded_at INTEGER NOT NULL,
			budget      TEXT NOT NULL,
			currency    TEXT NOT NULL,
			metric      TEXT NOT NULL,
			cap_policy  TEXT NOT NULL,
			unallocated TEXT NOT NULL,
			UNIQUE(fund, version)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_fund ON allocation_runs(fund)`,

		`CREATE TABLE IF NOT EXISTS allocation_rows (
			run_id     TEXT NOT NULL,
			rank       INTEGER NOT NULL,
			company_id TEXT NOT NULL,
			allocated  TEXT NOT NULL,
			rationale  TEXT NOT NULL,
			PRIMARY KEY (run_id, rank)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordAllocation stores one run. The per-fund version is assigned inside
// the insert transaction, so concurrent recorders never collide.
func (r *SQLiteRecorder) RecordAllocation(fund string, budget fundcalc.Money, policy fundcalc.AllocationPolicy, report *fundcalc.AllocationReport) (*AllocationRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var version int64
	if err := tx.QueryRow(
		`SELECT COALESCE(MAX(version), 0) + 1 FROM allocation_runs WHERE fund = ?`, fund,
	).Scan(&version); err != nil {
		return nil, fmt.Errorf("next version for %q: %w", fund, err)
	}

	run := &AllocationRun{
		RunID:       uuid.NewString(),
		Fund:        fund,
		Version:     version,
		RecordedAt:  time.Now(),
		Budget:      budget,
		Metric:      policy.Metric.String(),
		CapPolicy:   policy.Cap.String(),
		Rows:        report.Rows,
		Unallocated: report.Unallocated,
	}

	if _, err := tx.Exec(`INSERT INTO allocation_runs
		(run_id, fund, version, recorded_at, budget, currency, metric, cap_policy, unallocated)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		run.RunID, run.Fund, run.Version, run.RecordedAt.Unix(),
		budget.Decimal().String(), budget.Currency(),
		run.Metric, run.CapPolicy, report.Unallocated.Decimal().String(),
	); err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	for _, row := range report.Rows {
		if _, err := tx.Exec(`INSERT INTO allocation_rows
			(run_id, rank, company_id, allocated, rationale)
			VALUES (?,?,?,?,?)`,
			run.RunID, row.Rank, row.CompanyID, row.Allocated.Decimal().String(), row.Rationale,
		); err != nil {
			return nil, fmt.Errorf("insert row %d: %w", row.Rank, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return run, nil
}

// Runs returns the recorded runs for a fund, oldest version first, rows omitted.
func (r *SQLiteRecorder) Runs(fund string) ([]AllocationRun, error) {
	rows, err := r.db.Query(`SELECT run_id, fund, version, recorded_at, budget, currency, metric, cap_policy, unallocated
		FROM allocation_runs WHERE fund = ? ORDER BY version`, fund)
	if err != nil {
		return nil, fmt.Errorf("query runs for %q: %w", fund, err)
	}
	defer rows.Close()

	var out []AllocationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *run)
	}
	return out, rows.Err()
}

// Run loads one full run, ledger rows included, in rank order.
func (r *SQLiteRecorder) Run(runID string) (*AllocationRun, error) {
	row := r.db.QueryRow(`SELECT run_id, fund, version, recorded_at, budget, currency, metric, cap_policy, unallocated
		FROM allocation_runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if err != nil {
		return nil, fmt.Errorf("run %q: %w", runID, err)
	}

	rows, err := r.db.Query(`SELECT rank, company_id, allocated, rationale
		FROM allocation_rows WHERE run_id = ? ORDER BY rank`, runID)
	if err != nil {
		return nil, fmt.Errorf("query rows of %q: %w", runID, err)
	}
	defer rows.Close()

	cur := run.Budget.Currency()
	for rows.Next() {
		var lr fundcalc.AllocationLedgerRow
		var allocated string
		if err := rows.Scan(&lr.Rank, &lr.CompanyID, &allocated, &lr.Rationale); err != nil {
			return nil, fmt.Errorf("scan row of %q: %w", runID, err)
		}
		d, err := decimal.NewFromString(allocated)
		if err != nil {
			return nil, fmt.Errorf("corrupted allocated amount %q: %w", allocated, err)
		}
		lr.Allocated = fundcalc.M(d, cur)
		run.Rows = append(run.Rows, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return run, nil
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*AllocationRun, error) {
	var run AllocationRun
	var recordedAt int64
	var budget, currency, unallocated string
	if err := s.Scan(&run.RunID, &run.Fund, &run.Version, &recordedAt,
		&budget, &currency, &run.Metric, &run.CapPolicy, &unallocated); err != nil {
		return nil, err
	}
	run.RecordedAt = time.Unix(recordedAt, 0)

	b, err := decimal.NewFromString(budget)
	if err != nil {
		return nil, fmt.Errorf("corrupted budget %q: %w", budget, err)
	}
	u, err := decimal.NewFromString(unallocated)
	if err != nil {
		return nil, fmt.Errorf("corrupted unallocated amount %q: %w", unallocated, err)
	}
	run.Budget = fundcalc.M(b, currency)
	run.Unallocated = fundcalc.M(u, currency)
	return &run, nil
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
