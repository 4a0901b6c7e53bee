package database

import (
	"context"

	"trade-parser-bot/internal/engine"
)

// TradeStore persists validated trade rows. Submission is fire-and-forget
// from the engine's point of view: per-row failures are reported back but
// never alter an envelope already produced. No uniqueness is enforced;
// duplicate submission on retry is the storage layer's concern.
type TradeStore interface {
	// SaveTrades attempts to persist each row and returns how many were
	// inserted alongside the last error seen, if any.
	SaveTrades(ctx context.Context, rows []engine.TradeRow) (int, error)
	Name() string
}

// NopStore discards rows; used when no storage backend is configured.
type NopStore struct{}

func (NopStore) SaveTrades(_ context.Context, rows []engine.TradeRow) (int, error) {
	return len(rows), nil
}

func (NopStore) Name() string { return "none" }
