// Package engine converts unstructured trading messages into validated,
// schema-conformant trade rows. The pipeline is pure and synchronous:
// classify -> extract -> map direction -> expand rows -> select contract ->
// validate -> assemble envelope. It performs no I/O and never fails past its
// boundary; every input yields a well-formed ResultEnvelope.
package engine

import "time"

// MessageClass is the classifier verdict for an incoming message.
type MessageClass int

const (
	ClassUnparseable MessageClass = iota
	ClassSetupSheet
	ClassFreeformIdea
)

func (c MessageClass) String() string {
	switch c {
	case ClassSetupSheet:
		return "setup_sheet"
	case ClassFreeformIdea:
		return "freeform_idea"
	default:
		return "unparseable"
	}
}

// SetupKind identifies one of the four typed setup lines on a structured sheet.
type SetupKind string

const (
	KindRejection SetupKind = "rejection"
	KindBreakdown SetupKind = "breakdown"
	KindBreakout  SetupKind = "breakout"
	KindBounce    SetupKind = "bounce"
)

// Direction is the extracted trade sentiment.
type Direction string

const (
	Bullish Direction = "bullish"
	Bearish Direction = "bearish"
)

// Right is the option side.
type Right string

const (
	RightCall Right = "call"
	RightPut  Right = "put"
)

// EntryCond encodes how a position is triggered.
type EntryCond string

const (
	EntryNow        EntryCond = "now"
	EntryCloseAbove EntryCond = "close_above"
	EntryCloseBelow EntryCond = "close_below"
	EntryTouch      EntryCond = "touch"
)

// TradeType is the holding-window classification of a row.
type TradeType string

const (
	TypeScalp TradeType = "scalp"
	TypeDay   TradeType = "day"
	TypeSwing TradeType = "swing"
)

// ExpiryPolicy selects how contract expiries are derived.
type ExpiryPolicy string

const (
	// ExpiryNearTerm bands expiry by trade type: scalp 0-1 DTE, day 1-5, swing 14-30.
	ExpiryNearTerm ExpiryPolicy = "near_term"
	// ExpiryZeroDTE pins every expiry to the reference date.
	ExpiryZeroDTE ExpiryPolicy = "zero_dte"
)

// EntryPhraseKind distinguishes the entry phrasings a free-form idea can carry.
type EntryPhraseKind int

const (
	EntryPhraseNone EntryPhraseKind = iota
	EntryPhraseNow
	EntryPhraseAbove
	EntryPhraseBelow
)

// RawMessage is one inbound message plus the context needed to derive
// contract parameters. Created per invocation, never shared.
type RawMessage struct {
	Text             string
	ReferenceDate    time.Time
	DefaultTimeframe string
}

// Setup is one typed directional trigger extracted from a structured sheet.
type Setup struct {
	Symbol  string
	Kind    SetupKind
	Trigger float64
	Targets []float64 // 1-3, in sheet order
	Bias    string    // shared verbatim across all setups of the symbol
}

// EntryPhrase is the parsed entry trigger of a free-form idea.
type EntryPhrase struct {
	Kind  EntryPhraseKind
	Level float64 // set for Above/Below
}

// StopPhrase is the parsed invalidation clause of a free-form idea.
type StopPhrase struct {
	Above bool // "stop above X" vs "stop below X"
	Level float64
}

// Idea is one directional trade concept extracted from free-form text.
type Idea struct {
	Symbol    string
	Direction Direction
	Entry     EntryPhrase
	Targets   []float64 // 0-3, first-seen order
	Stop      *StopPhrase
	TradeType TradeType // from explicit cue, else day
	Quantity  *int      // explicit contract count, if stated
	OptionCue bool      // text explicitly mentions an option contract
}

// DraftRow is an in-progress trade record before contract fields are filled.
type DraftRow struct {
	Symbol      string
	Right       Right
	EntryCond   EntryCond
	EntryLevel  *float64
	EntryTF     *string
	StopCond    *EntryCond // close_above or close_below only
	StopLevel   *float64
	StopTF      *string
	TargetLevel float64
	TradeType   TradeType
	Note        string

	// carried through to the contract selector, never serialized
	Quantity  *int
	OptionCue bool
}

// TradeRow is the final, persistable unit: a DraftRow plus contract fields.
// JSON field set is fixed; absent values are explicit nulls.
type TradeRow struct {
	Symbol      string     `json:"symbol"`
	Right       Right      `json:"right"`
	EntryCond   EntryCond  `json:"entry_cond"`
	EntryLevel  *float64   `json:"entry_level"`
	EntryTF     *string    `json:"entry_tf"`
	StopCond    *EntryCond `json:"stop_cond"`
	StopLevel   *float64   `json:"stop_level"`
	StopTF      *string    `json:"stop_tf"`
	TargetLevel float64    `json:"target_level"`
	TradeType   TradeType  `json:"trade_type"`
	Note        string     `json:"note"`
	Strike      *float64   `json:"strike"`
	Expiry      *string    `json:"expiry"` // YYYY-MM-DD
	Quantity    *int       `json:"quantity"`
}

// ResultEnvelope is the engine's only output shape.
type ResultEnvelope struct {
	HasTrades     bool       `json:"has_trades"`
	NoTradeReason *string    `json:"no_trade_reason"`
	Trades        []TradeRow `json:"trades"`
}

// Result pairs the envelope with drop diagnostics for the caller's logs.
// Diagnostics never change the envelope.
type Result struct {
	Envelope ResultEnvelope
	Class    MessageClass
	Dropped  int
	Drops    map[string]int // drop reason -> count
}

// Config parameterizes one engine instance. The zero value is not usable;
// construct with DefaultConfig and override.
type Config struct {
	ExpiryPolicy        ExpiryPolicy
	RequireOptionFields bool
	DefaultTimeframe    string
}

// DefaultConfig returns the canonical engine configuration: near-term
// expiries, option fields on every row, 5-minute default timeframe.
func DefaultConfig() Config {
	return Config{
		ExpiryPolicy:        ExpiryNearTerm,
		RequireOptionFields: true,
		DefaultTimeframe:    "5m",
	}
}
