package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

var testRefDate = time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC) // a Tuesday

func newTestEngine(cfg Config) *Engine {
	return New(cfg, zerolog.Nop())
}

func process(t *testing.T, cfg Config, text string) Result {
	t.Helper()
	return newTestEngine(cfg).Process(RawMessage{
		Text:             text,
		ReferenceDate:    testRefDate,
		DefaultTimeframe: "5m",
	})
}

func TestProcessBreakoutScenario(t *testing.T) {
	res := process(t, DefaultConfig(), "SPY\n🔼 Breakout 683.90 🔼 684.80, 685.60, 686.50")
	env := res.Envelope

	if !env.HasTrades {
		t.Fatalf("expected trades, got no-trade: %v", env.NoTradeReason)
	}
	if len(env.Trades) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(env.Trades))
	}

	wantTargets := []float64{684.80, 685.60, 686.50}
	for i, row := range env.Trades {
		if row.Symbol != "SPY" {
			t.Errorf("row %d symbol = %q, want SPY", i, row.Symbol)
		}
		if row.Right != RightCall {
			t.Errorf("row %d right = %q, want call", i, row.Right)
		}
		if row.EntryCond != EntryCloseAbove {
			t.Errorf("row %d entry_cond = %q, want close_above", i, row.EntryCond)
		}
		if row.EntryLevel == nil || *row.EntryLevel != 683.90 {
			t.Errorf("row %d entry_level = %v, want 683.90", i, row.EntryLevel)
		}
		if row.TargetLevel != wantTargets[i] {
			t.Errorf("row %d target_level = %v, want %v", i, row.TargetLevel, wantTargets[i])
		}
		if row.Strike == nil || *row.Strike != 684 {
			t.Errorf("row %d strike = %v, want 684", i, row.Strike)
		}
		if row.TradeType != TypeDay {
			t.Errorf("row %d trade_type = %q, want day", i, row.TradeType)
		}
	}
}

func TestProcessFreeformScenario(t *testing.T) {
	res := process(t, DefaultConfig(), "SPY bullish above 682 targeting 684, 686; stop below 680")
	env := res.Envelope

	if len(env.Trades) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(env.Trades))
	}
	wantTargets := []float64{684, 686}
	for i, row := range env.Trades {
		if row.EntryCond != EntryCloseAbove || row.EntryLevel == nil || *row.EntryLevel != 682 {
			t.Errorf("row %d entry = %q/%v, want close_above/682", i, row.EntryCond, row.EntryLevel)
		}
		if row.StopCond == nil || *row.StopCond != EntryCloseBelow || row.StopLevel == nil || *row.StopLevel != 680 {
			t.Errorf("row %d stop = %v/%v, want close_below/680", i, row.StopCond, row.StopLevel)
		}
		if row.TargetLevel != wantTargets[i] {
			t.Errorf("row %d target_level = %v, want %v", i, row.TargetLevel, wantTargets[i])
		}
	}
}

func TestProcessNoTradeScenario(t *testing.T) {
	res := process(t, DefaultConfig(), "watch 680 area")
	env := res.Envelope

	if env.HasTrades {
		t.Fatal("expected no-trade outcome")
	}
	if len(env.Trades) != 0 {
		t.Fatalf("expected empty trades, got %d", len(env.Trades))
	}
	if env.NoTradeReason == nil || *env.NoTradeReason == "" {
		t.Fatal("expected a non-empty no_trade_reason")
	}
}

func TestRowCountLaw(t *testing.T) {
	fullBlock := "SPY\n" +
		"Rejection 690.5 689, 688, 687\n" +
		"Breakdown 685 684, 683, 682\n" +
		"Breakout 695 696, 697, 698\n" +
		"Bounce 680 681, 682, 683"

	res := process(t, DefaultConfig(), fullBlock)
	if got := len(res.Envelope.Trades); got != 12 {
		t.Errorf("full block produced %d rows, want 12", got)
	}

	res = process(t, DefaultConfig(), "SPY\nBreakout 683.90 684.80, 685.60, 686.50")
	if got := len(res.Envelope.Trades); got != 3 {
		t.Errorf("breakout-only block produced %d rows, want 3", got)
	}
}

func TestRowOrderingWithinSymbol(t *testing.T) {
	// sheet lists kinds out of canonical order
	sheet := "SPY\nBounce 680 681\nBreakout 695 696\nRejection 690 689\nBreakdown 685 684"
	res := process(t, DefaultConfig(), sheet)

	wantConds := []EntryCond{EntryTouch, EntryCloseBelow, EntryCloseAbove, EntryTouch}
	wantRights := []Right{RightPut, RightPut, RightCall, RightCall}
	if len(res.Envelope.Trades) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(res.Envelope.Trades))
	}
	for i, row := range res.Envelope.Trades {
		if row.EntryCond != wantConds[i] || row.Right != wantRights[i] {
			t.Errorf("row %d = %s/%s, want %s/%s", i, row.Right, row.EntryCond, wantRights[i], wantConds[i])
		}
	}
}

func TestStructuralStops(t *testing.T) {
	sheet := "SPY\nBreakout 695 696\nBreakdown 685 684"
	res := process(t, DefaultConfig(), sheet)
	if len(res.Envelope.Trades) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(res.Envelope.Trades))
	}

	breakdown := res.Envelope.Trades[0] // rejection/breakdown order first
	breakout := res.Envelope.Trades[1]

	if breakdown.StopCond == nil || *breakdown.StopCond != EntryCloseAbove || *breakdown.StopLevel != 695 {
		t.Errorf("breakdown stop = %v/%v, want close_above/695", breakdown.StopCond, breakdown.StopLevel)
	}
	if breakout.StopCond == nil || *breakout.StopCond != EntryCloseBelow || *breakout.StopLevel != 685 {
		t.Errorf("breakout stop = %v/%v, want close_below/685", breakout.StopCond, breakout.StopLevel)
	}
}

// The structural invariants of §schema hold for every row the engine emits,
// whatever the input.
func TestRowInvariants(t *testing.T) {
	inputs := []string{
		"SPY\n🔼 Breakout 683.90 🔼 684.80, 685.60, 686.50",
		"SPY\nRejection 690.5 689, 688, 687\nBreakdown 685 684, 683, 682\nBreakout 695 696, 697, 698\nBounce 680 681, 682, 683",
		"SPY bullish above 682 targeting 684, 686; stop below 680",
		"long AAPL now, TP 232 and 234",
		"TSLA short under 240 targets 235, 230",
		"AMD bearish above 170 targeting 165",
		"swing idea: MSFT calls above 430 toward 440, 2 contracts",
	}

	for _, input := range inputs {
		res := process(t, DefaultConfig(), input)
		env := res.Envelope

		if env.HasTrades != (len(env.Trades) > 0) {
			t.Errorf("%q: has_trades=%v with %d trades", input, env.HasTrades, len(env.Trades))
		}
		if !env.HasTrades && env.NoTradeReason == nil {
			t.Errorf("%q: no-trade outcome without a reason", input)
		}
		if env.HasTrades && env.NoTradeReason != nil {
			t.Errorf("%q: has trades but carries a no_trade_reason", input)
		}

		for i, row := range env.Trades {
			// entry invariant
			isNow := row.EntryCond == EntryNow
			if isNow != (row.EntryLevel == nil && row.EntryTF == nil) {
				t.Errorf("%q row %d: entry invariant violated (%s, %v, %v)", input, i, row.EntryCond, row.EntryLevel, row.EntryTF)
			}
			// stop all-or-nothing
			set := 0
			for _, populated := range []bool{row.StopCond != nil, row.StopLevel != nil, row.StopTF != nil} {
				if populated {
					set++
				}
			}
			if set != 0 && set != 3 {
				t.Errorf("%q row %d: stop fields partially populated", input, i)
			}
			// direction consistency
			if !allowedEntryConds[row.Right][row.EntryCond] {
				t.Errorf("%q row %d: %s with entry_cond %s", input, i, row.Right, row.EntryCond)
			}
			if row.TargetLevel <= 0 {
				t.Errorf("%q row %d: target_level %v", input, i, row.TargetLevel)
			}
			if row.Strike == nil || *row.Strike <= 0 {
				t.Errorf("%q row %d: strike %v", input, i, row.Strike)
			}
		}
	}
}

func TestIdempotence(t *testing.T) {
	inputs := []string{
		"SPY\nRejection 690.5 689, 688\nBounce 680 681, 682",
		"SPY bullish above 682 targeting 684, 686; stop below 680",
		"watch 680 area",
	}
	for _, input := range inputs {
		first, err := json.Marshal(process(t, DefaultConfig(), input).Envelope)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		second, err := json.Marshal(process(t, DefaultConfig(), input).Envelope)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(first) != string(second) {
			t.Errorf("%q: envelopes differ between runs", input)
		}
	}
}

func TestNoTradeReasons(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"watch 680 area", ReasonNoSymbol},
		{"SPY looking interesting", ReasonNoTrigger},
		{"SPY bullish above 682", ReasonNoTarget},
	}
	for _, tt := range tests {
		res := process(t, DefaultConfig(), tt.input)
		if res.Envelope.HasTrades {
			t.Errorf("%q: expected no-trade", tt.input)
			continue
		}
		if got := *res.Envelope.NoTradeReason; got != tt.expected {
			t.Errorf("%q: reason = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestEnvelopeJSONShape(t *testing.T) {
	res := process(t, DefaultConfig(), "SPY\nBreakout 683.90 684.80")
	data, err := json.Marshal(res.Envelope)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"has_trades", "no_trade_reason", "trades"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("envelope missing key %q", key)
		}
	}

	trades := decoded["trades"].([]any)
	row := trades[0].(map[string]any)
	wantKeys := []string{
		"symbol", "right", "entry_cond", "entry_level", "entry_tf",
		"stop_cond", "stop_level", "stop_tf", "target_level", "trade_type",
		"note", "strike", "expiry", "quantity",
	}
	if len(row) != len(wantKeys) {
		t.Errorf("row has %d keys, want %d", len(row), len(wantKeys))
	}
	for _, key := range wantKeys {
		if _, ok := row[key]; !ok {
			t.Errorf("row missing key %q", key)
		}
	}
	// nulls are explicit: this row has no stop, so the keys exist with null
	if v, ok := row["stop_cond"]; !ok || v != nil {
		t.Errorf("stop_cond = %v, want explicit null", v)
	}
}

func TestZeroDTEPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExpiryPolicy = ExpiryZeroDTE

	res := process(t, cfg, "SPY\nRejection 690.5 689\nBreakout 695 696")
	for i, row := range res.Envelope.Trades {
		if row.Expiry == nil || *row.Expiry != "2026-03-03" {
			t.Errorf("row %d expiry = %v, want 2026-03-03", i, row.Expiry)
		}
	}
}

func TestOptionFieldsOptional(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RequireOptionFields = false

	// no option cue anywhere: contract fields stay null
	res := process(t, cfg, "SPY bullish above 682 targeting 684")
	row := res.Envelope.Trades[0]
	if row.Strike != nil || row.Expiry != nil {
		t.Errorf("strike/expiry = %v/%v, want null/null", row.Strike, row.Expiry)
	}

	// explicit option cue: contract fields are filled
	res = process(t, cfg, "SPY calls above 682 targeting 684")
	row = res.Envelope.Trades[0]
	if row.Strike == nil || row.Expiry == nil {
		t.Errorf("strike/expiry = %v/%v, want filled", row.Strike, row.Expiry)
	}
}
