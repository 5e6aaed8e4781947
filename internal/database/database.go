// Package database provides PostgreSQL connection management using pgx
// and bootstraps the turnos schema.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/lucas-cardozo/turnos-service/internal/config"
)

// NewPool creates and validates a pgxpool connection pool.
// It retries up to 5 times to accommodate containers starting up.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= 5; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			if pingErr := pool.Ping(ctx); pingErr == nil {
				break
			} else {
				err = pingErr
			}
			pool.Close()
		}
		log.Warn("db connect attempt failed",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return pool, nil
}

// schema creates the turnos relation and the partial unique index that
// enforces the one-active-reservation-per-slot invariant. The index is
// the single serialization point for concurrent reserve calls: a plain
// INSERT either wins the slot or fails with SQLSTATE 23505.
const schema = `
CREATE TABLE IF NOT EXISTS turnos (
	id             UUID PRIMARY KEY,
	slot_date      DATE NOT NULL,
	slot_time      TIME NOT NULL,
	customer_name  TEXT NOT NULL,
	customer_email TEXT NOT NULL,
	status         VARCHAR(20) NOT NULL DEFAULT 'active',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS turnos_active_slot_uidx
	ON turnos (slot_date, slot_time)
	WHERE status = 'active';
`

// EnsureSchema applies the schema idempotently at startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
