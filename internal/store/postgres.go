package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/ticketsheet/internal/core"
)

// Postgres stores tickets through a pgx connection pool.
type Postgres struct {
	pool   *pgxpool.Pool
	table  string
	upsert string
}

// NewPostgres wraps an open pool. Call EnsureSchema before first use.
func NewPostgres(pool *pgxpool.Pool, table string) (*Postgres, error) {
	table, err := validateTable(table)
	if err != nil {
		return nil, err
	}
	return &Postgres{
		pool:  pool,
		table: table,
		upsert: upsertSQL(table, func(n int) string {
			return "$" + strconv.Itoa(n)
		}),
	}, nil
}

// EnsureSchema creates the ticket table and indexes if they are missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
  id BIGSERIAL PRIMARY KEY,
  %s,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_%s_owner ON %s (owner);
`, p.table, columnDDL(), p.table, p.table)

	if _, err := p.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// UpsertBatch sends one statement per record in a single batch and
// transaction, so a chunk commits completely or not at all.
func (p *Postgres) UpsertBatch(ctx context.Context, records []core.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(p.upsert, recordArgs(rec)...)
	}

	br := tx.SendBatch(ctx, batch)
	for i := range records {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("upsert record %d: %w", i+1, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// FetchAll returns every stored record in insertion order.
func (p *Postgres) FetchAll(ctx context.Context) ([]core.Record, error) {
	rows, err := p.pool.Query(ctx, selectSQL(p.table))
	if err != nil {
		return nil, err
	}

	n := len(columns())
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Record, error) {
		values := make([]*string, n)
		dest := make([]any, n)
		for i := range values {
			dest[i] = &values[i]
		}
		if err := row.Scan(dest...); err != nil {
			return nil, err
		}
		return recordFromNullable(values), nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Ping checks connectivity for health endpoints.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}
