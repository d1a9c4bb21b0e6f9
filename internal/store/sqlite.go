package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/JonMunkholm/ticketsheet/internal/core"
)

// SQLite stores tickets in a single-file database.
type SQLite struct {
	conn   *sql.DB
	table  string
	upsert string
}

// OpenSQLite opens (creating if needed) the database at path and ensures
// the ticket table exists.
func OpenSQLite(ctx context.Context, path, table string) (*SQLite, error) {
	table, err := validateTable(table)
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer at a time; WAL lets readers continue during a save.
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, `PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	s := &SQLite{
		conn:  conn,
		table: table,
		upsert: upsertSQL(table, func(int) string {
			return "?"
		}),
	}
	if err := s.init(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) init(ctx context.Context) error {
	schema := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  %s,
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_%s_owner ON %s(owner);
`, s.table, columnDDL(), s.table, s.table)

	_, err := s.conn.ExecContext(ctx, schema)
	return err
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// UpsertBatch writes records in one transaction.
func (s *SQLite) UpsertBatch(ctx context.Context, records []core.Record) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.upsert)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.ExecContext(ctx, recordArgs(rec)...); err != nil {
			return fmt.Errorf("upsert record %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// FetchAll returns every stored record in insertion order.
func (s *SQLite) FetchAll(ctx context.Context) ([]core.Record, error) {
	rows, err := s.conn.QueryContext(ctx, selectSQL(s.table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	n := len(columns())
	var out []core.Record
	for rows.Next() {
		values := make([]*string, n)
		dest := make([]any, n)
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, recordFromNullable(values))
	}
	return out, rows.Err()
}
