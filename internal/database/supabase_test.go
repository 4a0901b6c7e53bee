package database

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"trade-parser-bot/internal/engine"
)

func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }

func sampleRow() engine.TradeRow {
	return engine.TradeRow{
		Symbol:      "SPY",
		Right:       engine.RightCall,
		EntryCond:   engine.EntryCloseAbove,
		EntryLevel:  f64(683.90),
		EntryTF:     str("5m"),
		TargetLevel: 684.80,
		TradeType:   engine.TypeDay,
		Strike:      f64(684),
		Expiry:      str("2026-03-04"),
	}
}

func TestSupabaseStoreSaveTrades(t *testing.T) {
	var requests []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/new_trades" {
			t.Errorf("path = %q, want /rest/v1/new_trades", r.URL.Path)
		}
		if r.Header.Get("apikey") != "test-key" || r.Header.Get("Authorization") != "Bearer test-key" {
			t.Error("missing service-role headers")
		}
		var row map[string]any
		if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
			t.Errorf("decode body: %v", err)
		}
		requests = append(requests, row)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	store := NewSupabaseStore(srv.URL, "test-key", "new_trades", zerolog.Nop())
	inserted, err := store.SaveTrades(context.Background(), []engine.TradeRow{sampleRow(), sampleRow()})
	if err != nil {
		t.Fatalf("SaveTrades: %v", err)
	}
	if inserted != 2 {
		t.Errorf("inserted = %d, want 2", inserted)
	}
	if len(requests) != 2 {
		t.Fatalf("server saw %d requests, want 2", len(requests))
	}

	// the posted body is exactly the envelope row schema, nulls explicit
	row := requests[0]
	for _, key := range []string{"symbol", "right", "entry_cond", "entry_level", "entry_tf",
		"stop_cond", "stop_level", "stop_tf", "target_level", "trade_type", "note",
		"strike", "expiry", "quantity"} {
		if _, ok := row[key]; !ok {
			t.Errorf("posted row missing key %q", key)
		}
	}
	if row["stop_cond"] != nil {
		t.Errorf("stop_cond = %v, want explicit null", row["stop_cond"])
	}
}

func TestSupabaseStorePartialFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	store := NewSupabaseStore(srv.URL, "k", "new_trades", zerolog.Nop())
	inserted, err := store.SaveTrades(context.Background(), []engine.TradeRow{sampleRow(), sampleRow()})
	if err == nil {
		t.Error("expected an error for the rejected row")
	}
	if inserted != 1 {
		t.Errorf("inserted = %d, want 1", inserted)
	}
}
