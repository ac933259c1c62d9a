package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shandysiswandi/gobacktest/internal/dataset/entity"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS datasets (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	filename    TEXT    NOT NULL UNIQUE,
	symbol      TEXT    NOT NULL,
	uploaded_at INTEGER NOT NULL,
	row_count   INTEGER NOT NULL,
	size_bytes  INTEGER NOT NULL,
	status      TEXT    NOT NULL
)`

// SQLiteRegistry is a durable registry backed by a SQLite file. Insertion
// order is the autoincrement seq, which an upsert keeps. Every call goes
// through mu so a publish hook and its row change are one step to readers.
type SQLiteRegistry struct {
	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteRegistry opens (or creates) the database at dbPath and makes sure
// the datasets table exists. Use ":memory:" for a throwaway registry.
func NewSQLiteRegistry(ctx context.Context, dbPath string) (*SQLiteRegistry, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite registry: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite registry: %w", err)
	}

	return &SQLiteRegistry{db: db}, nil
}

func (r *SQLiteRegistry) Close() error {
	return r.db.Close()
}

func (r *SQLiteRegistry) Insert(ctx context.Context, ds entity.Dataset, publish func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	exists, err := r.exists(ctx, ds.Filename)
	if err != nil {
		return err
	}
	if exists {
		return entity.ErrDuplicateFilename
	}

	if err := runHook(publish); err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO datasets (filename, symbol, uploaded_at, row_count, size_bytes, status) VALUES (?, ?, ?, ?, ?, ?)`,
		ds.Filename, ds.Symbol, ds.UploadedAt.UnixNano(), ds.RowCount, ds.SizeBytes, string(ds.Status),
	)
	if err != nil {
		return fmt.Errorf("insert dataset: %w", err)
	}

	return nil
}

func (r *SQLiteRegistry) Upsert(ctx context.Context, ds entity.Dataset, publish func() error) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existed, err := r.exists(ctx, ds.Filename)
	if err != nil {
		return false, err
	}

	if err := runHook(publish); err != nil {
		return false, err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO datasets (filename, symbol, uploaded_at, row_count, size_bytes, status) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(filename) DO UPDATE SET
			symbol = excluded.symbol,
			uploaded_at = excluded.uploaded_at,
			row_count = excluded.row_count,
			size_bytes = excluded.size_bytes,
			status = excluded.status`,
		ds.Filename, ds.Symbol, ds.UploadedAt.UnixNano(), ds.RowCount, ds.SizeBytes, string(ds.Status),
	)
	if err != nil {
		return false, fmt.Errorf("upsert dataset: %w", err)
	}

	return existed, nil
}

func (r *SQLiteRegistry) List(ctx context.Context) ([]entity.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx,
		`SELECT filename, symbol, uploaded_at, row_count, size_bytes, status FROM datasets ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close()

	var out []entity.Dataset
	for rows.Next() {
		ds, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ds)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}

	return out, nil
}

func (r *SQLiteRegistry) Get(ctx context.Context, filename string) (entity.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row := r.db.QueryRowContext(ctx,
		`SELECT filename, symbol, uploaded_at, row_count, size_bytes, status FROM datasets WHERE filename = ?`, filename)

	ds, err := scanDataset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Dataset{}, entity.ErrNotFound
	}

	return ds, err
}

func (r *SQLiteRegistry) Exists(ctx context.Context, filename string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.exists(ctx, filename)
}

func (r *SQLiteRegistry) UpdateStatus(ctx context.Context, filename string, status entity.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, `UPDATE datasets SET status = ? WHERE filename = ?`, string(status), filename)
	if err != nil {
		return fmt.Errorf("update dataset status: %w", err)
	}

	return requireAffected(res)
}

func (r *SQLiteRegistry) Delete(ctx context.Context, filename string, unpublish func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	exists, err := r.exists(ctx, filename)
	if err != nil {
		return err
	}
	if !exists {
		return entity.ErrNotFound
	}

	if err := runHook(unpublish); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM datasets WHERE filename = ?`, filename)
	if err != nil {
		return fmt.Errorf("delete dataset: %w", err)
	}

	return requireAffected(res)
}

func (r *SQLiteRegistry) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM datasets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count datasets: %w", err)
	}

	return n, nil
}

func (r *SQLiteRegistry) exists(ctx context.Context, filename string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM datasets WHERE filename = ?`, filename).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup dataset: %w", err)
	}

	return true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDataset(row rowScanner) (entity.Dataset, error) {
	var (
		ds         entity.Dataset
		uploadedAt int64
		status     string
	)

	if err := row.Scan(&ds.Filename, &ds.Symbol, &uploadedAt, &ds.RowCount, &ds.SizeBytes, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Dataset{}, err
		}
		return entity.Dataset{}, fmt.Errorf("scan dataset: %w", err)
	}

	ds.UploadedAt = time.Unix(0, uploadedAt).UTC()
	ds.Status = entity.Status(status)

	return ds, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return entity.ErrNotFound
	}
	return nil
}
