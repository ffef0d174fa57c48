package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"go-data-dashboard/internal/model"
)

var ErrExportNotFound = errors.New("store: export not found")

// Store keeps export history and exported rows in sqlite
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to the sqlite file at path and creates the tables
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// one writer at a time
	db.SetMaxOpenConns(1)

	exportTable := `
	CREATE TABLE IF NOT EXISTS exports (
		id TEXT PRIMARY KEY,
		dataset TEXT,
		type TEXT,
		path TEXT,
		record_count INTEGER,
		success BOOLEAN,
		error_message TEXT,
		created_at DATETIME
	);
	`
	rowTable := `
	CREATE TABLE IF NOT EXISTS export_rows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		export_id TEXT,
		series_key TEXT,
		period_start DATETIME,
		value REAL,
		derivative REAL
	);
	`
	for _, stmt := range []string{exportTable, rowTable} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error { return s.db.Close() }

// SaveExport records an export and, when rows are given, its rows, in one
// transaction.
func (s *Store) SaveExport(ctx context.Context, dataset string, res model.ExportResult, rows []model.AggregatedRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO exports (id, dataset, type, path, record_count, success, error_message, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID, dataset, res.Type, res.Path, res.RecordCount, res.Success, res.Error, res.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("failed to save export: %w", err)
	}

	if len(rows) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO export_rows (export_id, series_key, period_start, value, derivative) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx, res.ID, r.SeriesKey, r.PeriodStart.UTC(), nullable(r.Value), nullable(r.Derivative)); err != nil {
				return fmt.Errorf("failed to save export row: %w", err)
			}
		}
	}
	return tx.Commit()
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func pointer(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// ExportRecord is one row of the export history
type ExportRecord struct {
	model.ExportResult
	Dataset string `json:"dataset"`
}

// ListExports returns the export history, newest first
func (s *Store) ListExports(ctx context.Context) ([]ExportRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, dataset, type, path, record_count, success, error_message, created_at FROM exports ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExportRecord
	for rows.Next() {
		var rec ExportRecord
		if err := rows.Scan(&rec.ID, &rec.Dataset, &rec.Type, &rec.Path, &rec.RecordCount, &rec.Success, &rec.Error, &rec.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetExportRows returns the rows saved with an export
func (s *Store) GetExportRows(ctx context.Context, exportID string) ([]model.AggregatedRow, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exports WHERE id = ?`, exportID).Scan(&n); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrExportNotFound, exportID)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT series_key, period_start, value, derivative FROM export_rows WHERE export_id = ? ORDER BY id`, exportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.AggregatedRow{}
	for rows.Next() {
		var r model.AggregatedRow
		var value, derivative sql.NullFloat64
		var periodStart time.Time
		if err := rows.Scan(&r.SeriesKey, &periodStart, &value, &derivative); err != nil {
			return nil, err
		}
		r.PeriodStart = periodStart.UTC()
		r.Value = pointer(value)
		r.Derivative = pointer(derivative)
		out = append(out, r)
	}
	return out, rows.Err()
}
