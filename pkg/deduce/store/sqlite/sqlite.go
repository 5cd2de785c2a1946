package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/deduce/pkg/deduce/internalerr"
	"github.com/cognicore/deduce/pkg/deduce/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS proofs (
	id TEXT PRIMARY KEY,
	system TEXT NOT NULL,
	target TEXT NOT NULL,
	status TEXT NOT NULL,
	axiom TEXT,
	result TEXT,
	rules TEXT NOT NULL,
	rounds INTEGER NOT NULL DEFAULT 0,
	explored INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_proofs_system ON proofs(system, id);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRecord inserts or replaces a record
func (s *sqliteStore) SaveRecord(ctx context.Context, r store.Record) error {
	if r.ID == "" {
		return fmt.Errorf("%w: record without ID", internalerr.ErrInvalidInput)
	}

	rules := r.Rules
	if rules == nil {
		rules = []string{}
	}
	rulesJSON, err := json.Marshal(rules)
	if err != nil {
		return err
	}

	const stmt = `
INSERT INTO proofs (id, system, target, status, axiom, result, rules, rounds, explored, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	system=excluded.system,
	target=excluded.target,
	status=excluded.status,
	axiom=excluded.axiom,
	result=excluded.result,
	rules=excluded.rules,
	rounds=excluded.rounds,
	explored=excluded.explored,
	created_at=excluded.created_at;
`

	_, err = s.db.ExecContext(
		ctx,
		stmt,
		r.ID,
		r.System,
		r.Target,
		r.Status,
		r.Axiom,
		r.Result,
		string(rulesJSON),
		r.Rounds,
		r.Explored,
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

const selectColumns = `id, system, target, status, axiom, result, rules, rounds, explored, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (store.Record, error) {
	var (
		r         store.Record
		axiom     sql.NullString
		result    sql.NullString
		rulesJSON string
		createdAt string
	)
	if err := row.Scan(&r.ID, &r.System, &r.Target, &r.Status, &axiom, &result, &rulesJSON, &r.Rounds, &r.Explored, &createdAt); err != nil {
		return store.Record{}, err
	}

	r.Axiom = axiom.String
	r.Result = result.String
	if err := json.Unmarshal([]byte(rulesJSON), &r.Rules); err != nil {
		return store.Record{}, fmt.Errorf("decode rules for %s: %w", r.ID, err)
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return store.Record{}, fmt.Errorf("decode created_at for %s: %w", r.ID, err)
	}
	r.CreatedAt = ts
	return r, nil
}

// GetRecord returns a record by ID
func (s *sqliteStore) GetRecord(ctx context.Context, id string) (store.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM proofs WHERE id = ?`, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Record{}, fmt.Errorf("record %s: %w", id, internalerr.ErrNotFound)
	}
	return r, err
}

// ListRecords returns records newest first
func (s *sqliteStore) ListRecords(ctx context.Context, system string, limit int) ([]store.Record, error) {
	query := `SELECT ` + selectColumns + ` FROM proofs`
	var args []any
	if system != "" {
		query += ` WHERE system = ?`
		args = append(args, system)
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
