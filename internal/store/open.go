package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/ticketsheet/internal/config"
	"github.com/JonMunkholm/ticketsheet/internal/core"
)

// Open connects the store selected by cfg.Driver. The returned func
// releases it.
func Open(ctx context.Context, cfg config.StoreConfig) (core.RecordStore, func(), error) {
	switch strings.ToLower(cfg.Driver) {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg)

	case config.DriverSQLite:
		s, err := OpenSQLite(ctx, cfg.SQLitePath, cfg.Table)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		slog.Info("opened sqlite store", "path", cfg.SQLitePath, "table", cfg.Table)
		return s, func() { _ = s.Close() }, nil

	case config.DriverMemory:
		slog.Warn("using in-memory store; saved tickets are lost on exit")
		return NewMemory(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func openPostgres(ctx context.Context, cfg config.StoreConfig) (core.RecordStore, func(), error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	pg, err := NewPostgres(pool, cfg.Table)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	if err := pg.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"), "table", cfg.Table)
	} else {
		slog.Info("connected to database", "table", cfg.Table)
	}
	return pg, pool.Close, nil
}
