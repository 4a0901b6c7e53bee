package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"trade-parser-bot/internal/engine"
)

// Repository stores trade rows in PostgreSQL.
type Repository struct {
	db     *DB
	table  string
	logger zerolog.Logger
}

// NewRepository creates a new repository writing to the given table.
func NewRepository(db *DB, table string, logger zerolog.Logger) *Repository {
	return &Repository{
		db:     db,
		table:  table,
		logger: logger.With().Str("component", "Repository").Logger(),
	}
}

func (r *Repository) Name() string { return "postgres" }

// HealthCheck performs a database health check.
func (r *Repository) HealthCheck(ctx context.Context) error {
	return r.db.Pool.Ping(ctx)
}

// SaveTrades inserts rows one at a time; a failed row is logged and counted
// but does not stop its siblings.
func (r *Repository) SaveTrades(ctx context.Context, rows []engine.TradeRow) (int, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (symbol, "right", entry_cond, entry_level, entry_tf,
			stop_cond, stop_level, stop_tf, target_level, trade_type, note,
			strike, expiry, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, r.table)

	inserted := 0
	var lastErr error
	for _, row := range rows {
		_, err := r.db.Pool.Exec(
			ctx, query,
			row.Symbol, string(row.Right), string(row.EntryCond), row.EntryLevel, row.EntryTF,
			row.StopCond, row.StopLevel, row.StopTF, row.TargetLevel, string(row.TradeType), row.Note,
			row.Strike, row.Expiry, row.Quantity,
		)
		if err != nil {
			lastErr = err
			r.logger.Error().Err(err).
				Str("symbol", row.Symbol).
				Float64("target", row.TargetLevel).
				Msg("trade row insert failed")
			continue
		}
		inserted++
	}
	return inserted, lastErr
}

// CountBySymbol returns how many stored rows exist for a symbol; used by the
// API's stats endpoint.
func (r *Repository) CountBySymbol(ctx context.Context, symbol string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE symbol = $1`, r.table)
	var count int
	if err := r.db.Pool.QueryRow(ctx, query, symbol).Scan(&count); err != nil {
		return 0, fmt.Errorf("count by symbol: %w", err)
	}
	return count, nil
}
