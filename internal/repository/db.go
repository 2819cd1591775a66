// Package repository persists finished combat sessions and per-player meta
// progression in postgres.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/gambition/combat-server-go/internal/config"
)

// DB wraps the pgx connection pool shared by the repositories.
type DB struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewDB connects a pool using the database configuration and verifies the
// connection with a ping.
func NewDB(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{pool: pool, logger: logger}, nil
}

// Close releases the pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Stats returns the pool statistics.
func (db *DB) Stats() *pgxpool.Stat {
	return db.pool.Stat()
}

// EnsureSchema creates the repository tables when they do not exist yet.
func (db *DB) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS combat_sessions (
			id            UUID PRIMARY KEY,
			player_name   TEXT NOT NULL,
			enemy_name    TEXT NOT NULL,
			outcome       TEXT NOT NULL,
			turns         INT NOT NULL,
			player_hp     INT NOT NULL,
			damage_dealt  INT NOT NULL,
			damage_taken  INT NOT NULL,
			ended_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS combat_sessions_player_idx
			ON combat_sessions (player_name, ended_at DESC)`,
		`CREATE TABLE IF NOT EXISTS player_meta (
			player_name        TEXT PRIMARY KEY,
			runs_played        INT NOT NULL DEFAULT 0,
			runs_won           INT NOT NULL DEFAULT 0,
			total_gold_earned  INT NOT NULL DEFAULT 0,
			permanent_hp_bonus INT NOT NULL DEFAULT 0
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	db.logger.Info("repository schema ensured")
	return nil
}
