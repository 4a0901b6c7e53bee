package database

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"trade-parser-bot/internal/engine"
)

// SupabaseStore inserts trade rows through the Supabase PostgREST endpoint,
// one POST per row, with the service-role key. Mirrors the REST-style upsert
// contract: no uniqueness constraint, per-row success/failure only.
type SupabaseStore struct {
	baseURL    string
	serviceKey string
	table      string
	client     *http.Client
	logger     zerolog.Logger
}

// NewSupabaseStore creates a store posting to {url}/rest/v1/{table}.
func NewSupabaseStore(url, serviceKey, table string, logger zerolog.Logger) *SupabaseStore {
	return &SupabaseStore{
		baseURL:    url,
		serviceKey: serviceKey,
		table:      table,
		client:     &http.Client{Timeout: 15 * time.Second},
		logger:     logger.With().Str("component", "SupabaseStore").Logger(),
	}
}

func (s *SupabaseStore) Name() string { return "supabase" }

// SaveTrades posts every row; a failed row is logged and counted but does
// not stop its siblings.
func (s *SupabaseStore) SaveTrades(ctx context.Context, rows []engine.TradeRow) (int, error) {
	inserted := 0
	var lastErr error
	for _, row := range rows {
		if err := s.insertRow(ctx, row); err != nil {
			lastErr = err
			s.logger.Error().Err(err).
				Str("symbol", row.Symbol).
				Float64("target", row.TargetLevel).
				Msg("trade row insert failed")
			continue
		}
		inserted++
	}
	return inserted, lastErr
}

func (s *SupabaseStore) insertRow(ctx context.Context, row engine.TradeRow) error {
	body, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("marshal row: %w", err)
	}

	url := fmt.Sprintf("%s/rest/v1/%s", s.baseURL, s.table)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post row: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("insert rejected: status %d: %s", resp.StatusCode, detail)
	}
}
