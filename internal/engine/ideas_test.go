package engine

import (
	"reflect"
	"testing"
)

func TestExtractIdeas(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Idea
	}{
		{
			name:  "bullish with trigger, targets and stop",
			input: "SPY bullish above 682 targeting 684, 686; stop below 680",
			expected: []Idea{{
				Symbol:    "SPY",
				Direction: Bullish,
				Entry:     EntryPhrase{Kind: EntryPhraseAbove, Level: 682},
				Targets:   []float64{684, 686},
				Stop:      &StopPhrase{Above: false, Level: 680},
				TradeType: TypeDay,
			}},
		},
		{
			name:  "direction inferred from entry phrasing",
			input: "QQQ over 480 to 482",
			expected: []Idea{{
				Symbol:    "QQQ",
				Direction: Bullish,
				Entry:     EntryPhrase{Kind: EntryPhraseAbove, Level: 480},
				Targets:   []float64{482},
				TradeType: TypeDay,
			}},
		},
		{
			name:  "bearish short with under trigger",
			input: "TSLA short under 240 targets 235, 230",
			expected: []Idea{{
				Symbol:    "TSLA",
				Direction: Bearish,
				Entry:     EntryPhrase{Kind: EntryPhraseBelow, Level: 240},
				Targets:   []float64{235, 230},
				TradeType: TypeDay,
			}},
		},
		{
			name:  "immediate entry with explicit direction",
			input: "long AAPL now, TP 232 and 234",
			expected: []Idea{{
				Symbol:    "AAPL",
				Direction: Bullish,
				Entry:     EntryPhrase{Kind: EntryPhraseNow},
				Targets:   []float64{232, 234},
				TradeType: TypeDay,
			}},
		},
		{
			name:  "anomalous invalidation above on a bullish idea is kept",
			input: "SPY bullish above 682 targeting 684, stop above 690",
			expected: []Idea{{
				Symbol:    "SPY",
				Direction: Bullish,
				Entry:     EntryPhrase{Kind: EntryPhraseAbove, Level: 682},
				Targets:   []float64{684},
				Stop:      &StopPhrase{Above: true, Level: 690},
				TradeType: TypeDay,
			}},
		},
		{
			name:  "scalp cue",
			input: "scalping NVDA over 190.5 for 191.2, cut below 190",
			expected: []Idea{{
				Symbol:    "NVDA",
				Direction: Bullish,
				Entry:     EntryPhrase{Kind: EntryPhraseAbove, Level: 190.5},
				Targets:   []float64{191.2},
				Stop:      &StopPhrase{Above: false, Level: 190},
				TradeType: TypeScalp,
			}},
		},
		{
			name:  "swing cue with option quantity",
			input: "swing idea: MSFT calls above 430 toward 440, 2 contracts",
			expected: []Idea{{
				Symbol:    "MSFT",
				Direction: Bullish,
				Entry:     EntryPhrase{Kind: EntryPhraseAbove, Level: 430},
				Targets:   []float64{440},
				TradeType: TypeSwing,
				Quantity:  ptr(2),
				OptionCue: true,
			}},
		},
		{
			name:  "sentiment dominates conflicting trigger phrasing",
			input: "AMD bearish above 170 targeting 165",
			expected: []Idea{{
				Symbol:    "AMD",
				Direction: Bearish,
				Entry:     EntryPhrase{Kind: EntryPhraseAbove, Level: 170},
				Targets:   []float64{165},
				TradeType: TypeDay,
			}},
		},
		{
			name:     "no target produces no idea",
			input:    "SPY bullish above 682",
			expected: nil,
		},
		{
			name:     "no direction and no inferable trigger produces no idea",
			input:    "SPY at 682 for 684",
			expected: nil,
		},
		{
			name:  "two tickers parsed independently",
			input: "SPY bullish above 682 targeting 684. QQQ bearish below 478 targeting 476",
			expected: []Idea{
				{
					Symbol:    "SPY",
					Direction: Bullish,
					Entry:     EntryPhrase{Kind: EntryPhraseAbove, Level: 682},
					Targets:   []float64{684},
					TradeType: TypeDay,
				},
				{
					Symbol:    "QQQ",
					Direction: Bearish,
					Entry:     EntryPhrase{Kind: EntryPhraseBelow, Level: 478},
					Targets:   []float64{476},
					TradeType: TypeDay,
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractIdeas(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ExtractIdeas(%q) = %+v, want %+v", tt.input, got, tt.expected)
			}
		})
	}
}
