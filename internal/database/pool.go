package database

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parth2411/sepa-iot-platform/internal/config"
)

// Connect creates a connection pool for the telemetry database.
func Connect(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(ConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// ConnString renders a validated DBConfig as a PostgreSQL URL. The
// password is percent-encoded; ssl_mode is omitted when unset, leaving the
// choice to the driver (config defaults normally fill it in first).
func ConnString(cfg config.DBConfig) string {
	s := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s",
		cfg.User,
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)
	if cfg.SSLMode != "" {
		s += "?sslmode=" + cfg.SSLMode
	}
	return s
}
