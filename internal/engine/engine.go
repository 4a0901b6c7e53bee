package engine

import (
	"github.com/rs/zerolog"
)

// No-trade reasons. Exactly one is chosen whenever zero rows survive.
const (
	ReasonNoSymbol  = "no identifiable symbol"
	ReasonNoTrigger = "no actionable entry trigger"
	ReasonNoTarget  = "no target level given"
	ReasonTooVague  = "message too vague to extract a rule"
)

// Engine is the trade-idea normalization and validation pipeline. It is
// stateless across calls; concurrent invocations need no coordination.
type Engine struct {
	cfg    Config
	logger zerolog.Logger
}

// New creates an engine with the given configuration.
func New(cfg Config, logger zerolog.Logger) *Engine {
	if cfg.DefaultTimeframe == "" {
		cfg.DefaultTimeframe = "5m"
	}
	if cfg.ExpiryPolicy == "" {
		cfg.ExpiryPolicy = ExpiryNearTerm
	}
	return &Engine{
		cfg:    cfg,
		logger: logger.With().Str("component", "Engine").Logger(),
	}
}

// Process runs one message through the full pipeline. It never fails: every
// input, however malformed, yields a well-formed envelope.
func (e *Engine) Process(msg RawMessage) Result {
	cfg := e.cfg
	if msg.DefaultTimeframe != "" {
		cfg.DefaultTimeframe = msg.DefaultTimeframe
	}

	class := Classify(msg.Text)
	optionCue := hasOptionCue(msg.Text)

	var drafts []DraftRow
	switch class {
	case ClassSetupSheet:
		drafts = expandSetups(ExtractSetups(msg.Text), cfg.DefaultTimeframe, optionCue)
	case ClassFreeformIdea:
		for _, idea := range ExtractIdeas(msg.Text) {
			drafts = append(drafts, expandIdea(idea, cfg.DefaultTimeframe)...)
		}
	}

	rows := selectContracts(drafts, msg.ReferenceDate, cfg)
	valid, drops := validateRows(rows, msg.ReferenceDate, cfg)

	result := Result{
		Envelope: assemble(valid, msg.Text),
		Class:    class,
		Drops:    drops,
	}
	for _, n := range drops {
		result.Dropped += n
	}

	evt := e.logger.Debug().
		Str("class", class.String()).
		Int("rows", len(valid)).
		Int("dropped", result.Dropped)
	if result.Dropped > 0 {
		evt = e.logger.Warn().
			Str("class", class.String()).
			Int("rows", len(valid)).
			Int("dropped", result.Dropped)
	}
	evt.Msg("message processed")

	return result
}

// assemble wraps the surviving rows into the output envelope. Row order is
// already stable from expansion (input symbol order, kind order within a
// symbol, target order as given); zero rows produce the no-trade outcome
// with a specific reason.
func assemble(rows []TradeRow, text string) ResultEnvelope {
	if len(rows) > 0 {
		return ResultEnvelope{HasTrades: true, Trades: rows}
	}
	return ResultEnvelope{
		HasTrades:     false,
		NoTradeReason: ptr(noTradeReason(text)),
		Trades:        []TradeRow{},
	}
}

// noTradeReason probes the text for the most specific thing that was
// missing: symbol first, then an actionable trigger, then a target level.
func noTradeReason(text string) string {
	switch {
	case !hasTicker(text):
		return ReasonNoSymbol
	case !hasDirectionOrTrigger(text):
		return ReasonNoTrigger
	case !targetWordRegex.MatchString(text) && !setupKeywordRegex.MatchString(text):
		return ReasonNoTarget
	default:
		return ReasonTooVague
	}
}
