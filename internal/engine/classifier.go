package engine

import (
	"regexp"
	"strings"
)

// Lexical building blocks shared by the classifier and both extractors.
// Input is matched case-insensitively except for ticker tokens, which must be
// uppercase in the source text.
var (
	numberRegex = regexp.MustCompile(`\d+(?:\.\d+)?`)

	// A setup line carries one of the four kind keywords followed by a
	// numeric trigger and at least one numeric target.
	setupKeywordRegex = regexp.MustCompile(`(?i)\b(rejection|breakdown|breakout|bounce)\b`)

	// Ticker-like token: 1-5 uppercase letters, optional $ prefix.
	tickerRegex = regexp.MustCompile(`\$?\b[A-Z]{1,5}\b`)

	// A symbol header line is a ticker token standing alone (emoji and
	// punctuation around it are tolerated).
	headerLineRegex = regexp.MustCompile(`^\$?[A-Z]{1,5}$`)

	directionWordRegex = regexp.MustCompile(`(?i)\b(bullish|bearish|long|short|calls?|puts?)\b`)
	triggerWordRegex   = regexp.MustCompile(`(?i)\b(above|over|break(?:s|ing)?|below|under|lose(?:s|ing)?|now|at\s+open)\b`)
	targetWordRegex    = regexp.MustCompile(`(?i)\b(targeting|targets?|tp\s*\d*|towards?|to|for)\b`)

	optionCueRegex = regexp.MustCompile(`(?i)\b(calls?|puts?|strike|0\s*dte|options?|contracts?)\b`)
)

// Uppercase words that look like tickers but never are.
var tickerStopwords = map[string]bool{
	"A": true, "I": true, "AM": true, "PM": true, "TP": true, "PT": true,
	"SL": true, "DTE": true, "ATH": true, "ATL": true, "HOD": true, "LOD": true,
	"EMA": true, "SMA": true, "VWAP": true, "RSI": true, "OTM": true, "ITM": true,
	"BUY": true, "SELL": true, "LONG": true, "SHORT": true, "CALL": true,
	"CALLS": true, "PUT": true, "PUTS": true, "NOW": true, "STOP": true,
	"TO": true, "FOR": true, "AT": true, "IF": true, "ON": true, "THE": true,
	"AND": true, "OR": true, "UP": true, "DOWN": true, "OPEN": true,
}

// Classify inspects raw text and decides how it should be extracted. Pure
// function of the text; no side effects.
func Classify(text string) MessageClass {
	if hasLabeledSetupBlock(text) {
		return ClassSetupSheet
	}
	if hasTicker(text) && hasDirectionOrTrigger(text) && numberRegex.MatchString(text) {
		return ClassFreeformIdea
	}
	return ClassUnparseable
}

// hasLabeledSetupBlock reports whether at least one kind-labeled line with a
// trigger and a target appears under a symbol header.
func hasLabeledSetupBlock(text string) bool {
	underHeader := false
	for _, line := range strings.Split(text, "\n") {
		if isHeaderLine(line) {
			underHeader = true
			continue
		}
		if !underHeader {
			continue
		}
		if setupKeywordRegex.MatchString(line) && len(numberRegex.FindAllString(line, -1)) >= 2 {
			return true
		}
	}
	return false
}

// isHeaderLine reports whether a line is a bare symbol header once emoji and
// surrounding punctuation are stripped.
func isHeaderLine(line string) bool {
	return headerLineRegex.MatchString(stripDecoration(line))
}

// stripDecoration removes everything except letters, digits, '.' and '$' from
// the edges and interior separators of a line, so "📈 SPY:" reads as "SPY".
func stripDecoration(line string) string {
	var b strings.Builder
	for _, r := range line {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '$' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func hasTicker(text string) bool {
	return firstTicker(text) != ""
}

// firstTicker returns the first ticker-like token that is not a stopword.
func firstTicker(text string) string {
	for _, loc := range tickerRegex.FindAllStringIndex(text, -1) {
		tok := strings.TrimPrefix(text[loc[0]:loc[1]], "$")
		if !tickerStopwords[tok] {
			return tok
		}
	}
	return ""
}

func hasDirectionOrTrigger(text string) bool {
	return directionWordRegex.MatchString(text) ||
		triggerWordRegex.MatchString(text) ||
		setupKeywordRegex.MatchString(text)
}

func hasOptionCue(text string) bool {
	return optionCueRegex.MatchString(text)
}
