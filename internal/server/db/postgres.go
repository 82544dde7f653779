package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Config struct {
	DSN      string `conf:"dsn" yaml:"dsn" json:"dsn"`
	MaxConns int32  `conf:"max_conns" yaml:"max_conns" json:"max_conns"`
	Debug    bool   `conf:"debug" yaml:"debug" json:"debug"`
}

// NewPool opens the PostgreSQL connection pool. Follows fail-fast startup:
// an unreachable or misconfigured database aborts the process.
func NewPool(cfg Config) *pgxpool.Pool {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		panic(fmt.Errorf("invalid database dsn: %w", err))
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		panic(fmt.Errorf("failed to create connection pool: %w", err))
	}

	return pool
}
