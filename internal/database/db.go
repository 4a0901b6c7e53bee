package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"trade-parser-bot/config"
)

// DB wraps the PostgreSQL connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// NewDB creates a new database connection pool and verifies it.
func NewDB(cfg config.DatabaseConfig) (*DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close closes the database connection pool.
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// RunMigrations creates the trade-row table when missing.
func (db *DB) RunMigrations(ctx context.Context, table string) error {
	migrations := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id SERIAL PRIMARY KEY,
			symbol VARCHAR(10) NOT NULL,
			"right" VARCHAR(4) NOT NULL,
			entry_cond VARCHAR(12) NOT NULL,
			entry_level DECIMAL(20, 8),
			entry_tf VARCHAR(8),
			stop_cond VARCHAR(12),
			stop_level DECIMAL(20, 8),
			stop_tf VARCHAR(8),
			target_level DECIMAL(20, 8) NOT NULL,
			trade_type VARCHAR(8) NOT NULL,
			note TEXT NOT NULL DEFAULT '',
			strike DECIMAL(20, 8),
			expiry DATE,
			quantity INTEGER,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_symbol ON %s(symbol)`, table, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_expiry ON %s(expiry)`, table, table),
	}

	for _, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
