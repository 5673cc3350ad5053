package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"media-convert/internal/logging"
	"media-convert/internal/metrics"
	"media-convert/internal/workers"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// Database stores the conversion job history.
type Database struct {
	db     *sql.DB
	dbPath string
}

// New opens (or creates) the job-history database. dbPath is the full
// path to the database file; the parent directory must already exist
// and be writable.
func New(ctx context.Context, dbPath string) (*Database, error) {
	logging.Info("Database path: %s", dbPath)

	// WAL mode and busy_timeout prevent "database is locked" errors
	// when several contexts record jobs concurrently
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// History queries are I/O-bound; size the connection pool accordingly
	db.SetMaxOpenConns(workers.ForIO(10))
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{db: db, dbPath: dbPath}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("Database initialized at %s", dbPath)
	return d, nil
}

func (d *Database) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS jobs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		operation TEXT NOT NULL,
		source_format TEXT NOT NULL,
		target_format TEXT NOT NULL,
		input_bytes INTEGER NOT NULL DEFAULT 0,
		output_bytes INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		message TEXT,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at);
	CREATE INDEX IF NOT EXISTS idx_jobs_operation ON jobs(operation);
	`

	start := time.Now()
	_, err := d.db.ExecContext(ctx, schema)
	observe("initialize_schema", start, err)
	return err
}

// Close closes the underlying connection pool.
func (d *Database) Close() error {
	return d.db.Close()
}

// JobRecord is one row of conversion history: a single job's terminal
// outcome.
type JobRecord struct {
	ID           int64     `json:"id"`
	Operation    string    `json:"operation"`
	SourceFormat string    `json:"sourceFormat"`
	TargetFormat string    `json:"targetFormat"`
	InputBytes   int64     `json:"inputBytes"`
	OutputBytes  int64     `json:"outputBytes"`
	DurationMs   int64     `json:"durationMs"`
	Status       string    `json:"status"`
	Message      string    `json:"message,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RecordJob inserts one terminal outcome.
func (d *Database) RecordJob(ctx context.Context, rec JobRecord) error {
	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	start := time.Now()
	_, err := d.db.ExecContext(opCtx, `
		INSERT INTO jobs (operation, source_format, target_format, input_bytes, output_bytes, duration_ms, status, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Operation, rec.SourceFormat, rec.TargetFormat,
		rec.InputBytes, rec.OutputBytes, rec.DurationMs,
		rec.Status, rec.Message,
	)
	observe("insert_job", start, err)
	if err != nil {
		return fmt.Errorf("recording job: %w", err)
	}
	return nil
}

// RecentJobs returns up to limit jobs, newest first.
func (d *Database) RecentJobs(ctx context.Context, limit int) ([]JobRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	start := time.Now()
	rows, err := d.db.QueryContext(opCtx, `
		SELECT id, operation, source_format, target_format, input_bytes, output_bytes, duration_ms, status, COALESCE(message, ''), created_at
		FROM jobs ORDER BY id DESC LIMIT ?`, limit)
	observe("recent_jobs", start, err)
	if err != nil {
		return nil, fmt.Errorf("querying job history: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.Warn("failed to close job history rows: %v", err)
		}
	}()

	var records []JobRecord
	for rows.Next() {
		var rec JobRecord
		var createdAt int64
		if err := rows.Scan(&rec.ID, &rec.Operation, &rec.SourceFormat, &rec.TargetFormat,
			&rec.InputBytes, &rec.OutputBytes, &rec.DurationMs, &rec.Status, &rec.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning job row: %w", err)
		}
		rec.CreatedAt = time.Unix(createdAt, 0).UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Prune deletes all but the newest keep rows.
func (d *Database) Prune(ctx context.Context, keep int) error {
	if keep <= 0 {
		keep = 1000
	}

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	start := time.Now()
	_, err := d.db.ExecContext(opCtx, `
		DELETE FROM jobs WHERE id NOT IN (SELECT id FROM jobs ORDER BY id DESC LIMIT ?)`, keep)
	observe("prune", start, err)
	if err != nil {
		return fmt.Errorf("pruning job history: %w", err)
	}
	return nil
}

func observe(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
