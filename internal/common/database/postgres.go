// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"carrier-matching/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient wraps the freight database pool the matching store reads from.
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres opens a pooled connection to the freight database, sized by
// opts. The pool is lazy; call Ping to verify connectivity.
func NewPostgres(cfg config.PostgresConfig, opts PoolOptions) (*PostgresClient, error) {
	db, err := sql.Open("postgres", postgresDSN(cfg, opts))
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	maxOpen := opts.maxOpen(cfg.MaxConnections)
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(opts.maxIdle(cfg.MaxIdle, maxOpen))
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// postgresDSN tags sessions with the service name and, when set, passes the
// statement timeout as a run-time parameter.
func postgresDSN(cfg config.PostgresConfig, opts PoolOptions) string {
	dsn := cfg.GetDSN() + " application_name=" + applicationName
	if opts.StatementTimeout > 0 {
		dsn += fmt.Sprintf(" statement_timeout=%d", opts.StatementTimeout.Milliseconds())
	}
	return dsn
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
