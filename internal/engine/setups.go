package engine

import (
	"regexp"
	"strconv"
	"strings"
)

// maxTargets caps the target list of a single setup or idea.
const maxTargets = 3

var biasLineRegex = regexp.MustCompile(`(?i)^\W*bias\b`)

// ExtractSetups splits a structured setup sheet into typed setups, one per
// kind-labeled line, grouped under symbol header lines. Symbols keep their
// sheet order; a setup line that cannot yield a numeric trigger plus at least
// one target is skipped while its siblings continue. A bias line is attached
// verbatim to every setup of its symbol.
func ExtractSetups(text string) []Setup {
	type section struct {
		symbol string
		setups []Setup
		bias   string
	}

	var sections []section
	var cur *section

	for _, line := range strings.Split(text, "\n") {
		if isHeaderLine(line) {
			sections = append(sections, section{symbol: strings.TrimPrefix(stripDecoration(line), "$")})
			cur = &sections[len(sections)-1]
			continue
		}
		if cur == nil {
			continue
		}
		if biasLineRegex.MatchString(line) {
			cur.bias = strings.TrimSpace(line)
			continue
		}
		if s, ok := parseSetupLine(cur.symbol, line); ok {
			cur.setups = append(cur.setups, s)
		}
	}

	var out []Setup
	for _, sec := range sections {
		for _, s := range sec.setups {
			s.Bias = sec.bias
			out = append(out, s)
		}
	}
	return out
}

// parseSetupLine parses one "Kind trigger, target, target, target" line. The
// first number after the keyword is the trigger; the following one to three
// are targets. Separators (commas, arrows, emoji) between numbers are
// tolerated.
func parseSetupLine(symbol, line string) (Setup, bool) {
	m := setupKeywordRegex.FindStringSubmatchIndex(line)
	if m == nil {
		return Setup{}, false
	}
	kind := SetupKind(strings.ToLower(line[m[2]:m[3]]))

	nums := parseNumbers(line[m[1]:])
	if len(nums) < 2 {
		// trigger or every target unparseable: skip this setup only
		return Setup{}, false
	}
	targets := nums[1:]
	if len(targets) > maxTargets {
		targets = targets[:maxTargets]
	}
	for _, v := range append([]float64{nums[0]}, targets...) {
		if v <= 0 {
			return Setup{}, false
		}
	}
	return Setup{Symbol: symbol, Kind: kind, Trigger: nums[0], Targets: targets}, true
}

// parseNumbers returns every decimal in s, in order.
func parseNumbers(s string) []float64 {
	var out []float64
	for _, tok := range numberRegex.FindAllString(s, -1) {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}
