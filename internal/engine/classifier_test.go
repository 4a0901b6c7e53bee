package engine

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected MessageClass
	}{
		{
			name:     "labeled breakout block under symbol header",
			input:    "SPY\n🔼 Breakout 683.90 🔼 684.80, 685.60, 686.50",
			expected: ClassSetupSheet,
		},
		{
			name:     "multi symbol sheet",
			input:    "SPY\nRejection 690.5 689, 688\nQQQ\nBounce 480 481, 482",
			expected: ClassSetupSheet,
		},
		{
			name:     "freeform idea with direction and target",
			input:    "SPY bullish above 682 targeting 684, 686; stop below 680",
			expected: ClassFreeformIdea,
		},
		{
			name:     "freeform short idea",
			input:    "TSLA short under 240 to 235",
			expected: ClassFreeformIdea,
		},
		{
			name:     "no ticker",
			input:    "watch 680 area",
			expected: ClassUnparseable,
		},
		{
			name:     "ticker without numbers",
			input:    "SPY looking strong today",
			expected: ClassUnparseable,
		},
		{
			name:     "empty input",
			input:    "",
			expected: ClassUnparseable,
		},
		{
			name:     "setup keyword without header is not a sheet",
			input:    "possible breakout on SPY over 683 for 685",
			expected: ClassFreeformIdea,
		},
		{
			name:     "header with trigger but no targets reads as freeform",
			input:    "SPY\nBreakout 683.90",
			expected: ClassFreeformIdea,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.input); got != tt.expected {
				t.Errorf("Classify(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFirstTicker(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"SPY bullish above 682", "SPY"},
		{"$NVDA calls for 190", "NVDA"},
		{"TP at 684 for QQQ", "QQQ"},
		{"watch the open", ""},
		{"I am long AAPL now to 230", "AAPL"},
	}

	for _, tt := range tests {
		if got := firstTicker(tt.input); got != tt.expected {
			t.Errorf("firstTicker(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
