package engine

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// "stop below 680", "invalidated above 695", "cut if below 12.50"
	stopClauseRegex = regexp.MustCompile(`(?i)\b(?:stop(?:\s*-?\s*loss)?|invalid(?:ation|ated|ates)?|cut)\b[^.;\n]*?\b(above|below)\b\s*\$?(\d+(?:\.\d+)?)`)

	entryAboveRegex = regexp.MustCompile(`(?i)\b(?:above|over|break(?:s|ing)?(?:\s+(?:above|over))?)\b\s*\$?(\d+(?:\.\d+)?)`)
	entryBelowRegex = regexp.MustCompile(`(?i)\b(?:below|under|lose(?:s|ing)?)\b\s*\$?(\d+(?:\.\d+)?)`)
	entryNowRegex   = regexp.MustCompile(`(?i)\b(?:now|at\s+open)\b`)

	bullishWordRegex = regexp.MustCompile(`(?i)\b(?:bullish|long|calls?)\b`)
	bearishWordRegex = regexp.MustCompile(`(?i)\b(?:bearish|short|puts?)\b`)

	scalpCueRegex = regexp.MustCompile(`(?i)\bscalp(?:s|ing)?\b`)
	swingCueRegex = regexp.MustCompile(`(?i)\b(?:swing|multi\s*-?\s*day)\b`)

	quantityRegex = regexp.MustCompile(`(?i)\b(\d+)\s*(?:contracts?|lots?)\b`)

	// numbers trailing a target keyword, tolerant of ", " / "and" / "/"
	targetListRegex = regexp.MustCompile(`(?i)\b(?:targeting|targets?|tp\s*\d*|towards?|to|for)\b[:\s]*((?:\$?\d+(?:\.\d+)?(?:\s*(?:,|and|/|then|\s)\s*)?)+)`)
)

// ExtractIdeas scans free-form text for directional trade ideas, one segment
// per ticker token in order of appearance. Extraction is best-effort per
// segment: a segment that cannot yield symbol, direction, and at least one
// target produces nothing, and its siblings continue.
func ExtractIdeas(text string) []Idea {
	segs := splitByTicker(text)
	var out []Idea
	for _, seg := range segs {
		if idea, ok := extractIdea(seg.symbol, seg.text); ok {
			out = append(out, idea)
		}
	}
	return out
}

type tickerSegment struct {
	symbol string
	text   string
}

// splitByTicker cuts the text at each distinct ticker token so multi-symbol
// sentences are handled independently. Text before the first ticker belongs
// to the first segment.
func splitByTicker(text string) []tickerSegment {
	type hit struct {
		symbol string
		start  int
	}
	var hits []hit
	seen := map[string]bool{}
	for _, loc := range tickerRegex.FindAllStringIndex(text, -1) {
		tok := strings.TrimPrefix(text[loc[0]:loc[1]], "$")
		if tickerStopwords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		hits = append(hits, hit{symbol: tok, start: loc[0]})
	}
	if len(hits) == 0 {
		return nil
	}

	segs := make([]tickerSegment, 0, len(hits))
	for i, h := range hits {
		start := h.start
		if i == 0 {
			start = 0
		}
		end := len(text)
		if i+1 < len(hits) {
			end = hits[i+1].start
		}
		segs = append(segs, tickerSegment{symbol: h.symbol, text: text[start:end]})
	}
	return segs
}

// extractIdea parses one ticker segment. The stop clause is located first and
// blanked out so its "above"/"below" cannot be mistaken for the entry trigger
// or a direction cue.
func extractIdea(symbol, seg string) (Idea, bool) {
	stop, rest := takeStopClause(seg)

	var quantity *int
	if m := quantityRegex.FindStringSubmatchIndex(rest); m != nil {
		if n, err := strconv.Atoi(rest[m[2]:m[3]]); err == nil && n > 0 {
			quantity = &n
		}
		// blank the clause so the count is not read as a target
		rest = rest[:m[0]] + strings.Repeat(" ", m[1]-m[0]) + rest[m[1]:]
	}

	entry := parseEntryPhrase(rest)
	dir, ok := parseDirection(rest, entry)
	if !ok {
		return Idea{}, false
	}

	targets := parseTargetList(rest)
	if len(targets) == 0 {
		return Idea{}, false
	}

	return Idea{
		Symbol:    symbol,
		Direction: dir,
		Entry:     entry,
		Targets:   targets,
		Stop:      stop,
		TradeType: parseTradeTypeCue(seg),
		Quantity:  quantity,
		OptionCue: hasOptionCue(seg),
	}, true
}

// takeStopClause extracts the first stop phrase and returns the segment with
// that span blanked out.
func takeStopClause(seg string) (*StopPhrase, string) {
	m := stopClauseRegex.FindStringSubmatchIndex(seg)
	if m == nil {
		return nil, seg
	}
	above := strings.EqualFold(seg[m[2]:m[3]], "above")
	level, err := strconv.ParseFloat(seg[m[4]:m[5]], 64)
	if err != nil || level <= 0 {
		return nil, seg
	}
	blanked := seg[:m[0]] + strings.Repeat(" ", m[1]-m[0]) + seg[m[1]:]
	return &StopPhrase{Above: above, Level: level}, blanked
}

// parseEntryPhrase finds the entry trigger. A level-bound trigger wins over a
// bare "now"; no recognizable phrase yields EntryPhraseNone and the idea, if
// otherwise complete, enters immediately.
func parseEntryPhrase(seg string) EntryPhrase {
	above := entryAboveRegex.FindStringSubmatchIndex(seg)
	below := entryBelowRegex.FindStringSubmatchIndex(seg)

	// earliest level-bound trigger wins when both read
	if above != nil && (below == nil || above[0] <= below[0]) {
		if v, err := strconv.ParseFloat(seg[above[2]:above[3]], 64); err == nil && v > 0 {
			return EntryPhrase{Kind: EntryPhraseAbove, Level: v}
		}
	}
	if below != nil {
		if v, err := strconv.ParseFloat(seg[below[2]:below[3]], 64); err == nil && v > 0 {
			return EntryPhrase{Kind: EntryPhraseBelow, Level: v}
		}
	}
	if entryNowRegex.MatchString(seg) {
		return EntryPhrase{Kind: EntryPhraseNow}
	}
	return EntryPhrase{Kind: EntryPhraseNone}
}

// parseDirection resolves sentiment: explicit words first, then inference
// from the entry phrasing. Once fixed it dominates any later phrasing.
func parseDirection(seg string, entry EntryPhrase) (Direction, bool) {
	bull := bullishWordRegex.FindStringIndex(seg)
	bear := bearishWordRegex.FindStringIndex(seg)
	switch {
	case bull != nil && (bear == nil || bull[0] < bear[0]):
		return Bullish, true
	case bear != nil:
		return Bearish, true
	}
	switch entry.Kind {
	case EntryPhraseAbove:
		return Bullish, true
	case EntryPhraseBelow:
		return Bearish, true
	}
	return "", false
}

// parseTargetList collects numbers following a target keyword, first-seen
// order, capped at three.
func parseTargetList(seg string) []float64 {
	var out []float64
	for _, m := range targetListRegex.FindAllStringSubmatch(seg, -1) {
		for _, v := range parseNumbers(m[1]) {
			if v <= 0 {
				continue
			}
			out = append(out, v)
			if len(out) == maxTargets {
				return out
			}
		}
	}
	return out
}

// parseTradeTypeCue maps explicit keywords to a trade type; absent a cue,
// free-form ideas default to day trades.
func parseTradeTypeCue(seg string) TradeType {
	switch {
	case scalpCueRegex.MatchString(seg):
		return TypeScalp
	case swingCueRegex.MatchString(seg):
		return TypeSwing
	default:
		return TypeDay
	}
}
