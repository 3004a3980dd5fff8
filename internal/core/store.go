package core

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DBTX is the interface for database operations.
// Satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

const createPartsTable = `
CREATE TABLE IF NOT EXISTS parts (
	partNumber TEXT PRIMARY KEY,
	deviceName TEXT,
	deviceType TEXT,
	value TEXT,
	positiveTolerance TEXT,
	negativeTolerance TEXT,
	caseName TEXT,
	caseIdentifier TEXT
)`

const selectParts = `
SELECT
	partNumber,
	COALESCE(deviceType, ''),
	COALESCE(deviceName, ''),
	COALESCE(value, ''),
	COALESCE(positiveTolerance, ''),
	COALESCE(negativeTolerance, ''),
	COALESCE(caseName, ''),
	COALESCE(caseIdentifier, '')
FROM parts`

// PartStore persists PartRecords in a single-file sqlite database.
//
// The store keeps no idle connections: the database file is only held open
// while an operation runs, so the file can be copied or replaced between
// operations.
type PartStore struct {
	path string
	db   *sql.DB
}

// OpenStore opens (creating if needed) the sqlite database at path.
// The schema is not touched; call InitializeSchema.
func OpenStore(path string) (*PartStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &FileError{Op: "create store directory", Path: path, Err: err}
	}

	// Rollback journal keeps the whole database in one file, which the
	// backup copies byte for byte.
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(DELETE)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(0)

	return &PartStore{path: path, db: db}, nil
}

// Path returns the database file path.
func (s *PartStore) Path() string {
	return s.path
}

// Close releases the store.
func (s *PartStore) Close() error {
	return s.db.Close()
}

// InitializeSchema creates the parts table if it does not exist.
// Safe to call on every startup.
func (s *PartStore) InitializeSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createPartsTable); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	return nil
}

// Count returns the number of stored parts.
func (s *PartStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM parts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count parts: %w", err)
	}
	return n, nil
}

// GetPart returns the part with exactly this part number.
func (s *PartStore) GetPart(ctx context.Context, partNumber string) (PartRecord, bool, error) {
	return getPart(ctx, s.db, partNumber)
}

func getPart(ctx context.Context, db DBTX, partNumber string) (PartRecord, bool, error) {
	row := db.QueryRowContext(ctx, selectParts+` WHERE partNumber = ?`, partNumber)

	p, err := scanPart(row)
	if err == sql.ErrNoRows {
		return PartRecord{}, false, nil
	}
	if err != nil {
		return PartRecord{}, false, fmt.Errorf("get part %q: %w", partNumber, err)
	}
	return p, true, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPart(r rowScanner) (PartRecord, error) {
	var p PartRecord
	err := r.Scan(
		&p.PartNumber,
		&p.DeviceType,
		&p.DeviceName,
		&p.Value,
		&p.PositiveTolerance,
		&p.NegativeTolerance,
		&p.CaseName,
		&p.CaseIdentifier,
	)
	return p, err
}

// withTx runs fn inside a transaction. The transaction commits only when fn
// returns nil; any error rolls back every statement fn executed.
func (s *PartStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
