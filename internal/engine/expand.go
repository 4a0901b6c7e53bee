package engine

import "sort"

// expandSetups turns extracted setups into draft rows, one row per target.
// Symbols keep their sheet order; within a symbol, setups are ordered
// rejection, breakdown, breakout, bounce. Stops are derived structurally:
// the close-confirmed kinds borrow the opposing kind's trigger, the
// scalp-style kinds stop at their own trigger.
func expandSetups(setups []Setup, tf string, optionCue bool) []DraftRow {
	bySymbol := map[string][]Setup{}
	var order []string
	for _, s := range setups {
		if _, ok := bySymbol[s.Symbol]; !ok {
			order = append(order, s.Symbol)
		}
		bySymbol[s.Symbol] = append(bySymbol[s.Symbol], s)
	}

	var rows []DraftRow
	for _, sym := range order {
		group := bySymbol[sym]
		sort.SliceStable(group, func(i, j int) bool {
			return kindRank[group[i].Kind] < kindRank[group[j].Kind]
		})

		triggers := map[SetupKind]float64{}
		for _, s := range group {
			if _, ok := triggers[s.Kind]; !ok {
				triggers[s.Kind] = s.Trigger
			}
		}

		for _, s := range group {
			rows = append(rows, expandSetup(s, triggers, tf, optionCue)...)
		}
	}
	return rows
}

func expandSetup(s Setup, triggers map[SetupKind]float64, tf string, optionCue bool) []DraftRow {
	dir := kindDirection[s.Kind]
	right := rightFor(dir)
	touch := touchEntryKinds[s.Kind]
	cond := entryCondFor(right, true, touch)

	tradeType := TypeDay
	if touch {
		tradeType = TypeScalp
	}

	base := DraftRow{
		Symbol:     s.Symbol,
		Right:      right,
		EntryCond:  cond,
		EntryLevel: ptr(s.Trigger),
		EntryTF:    ptr(tf),
		TradeType:  tradeType,
		Note:       s.Bias,
		OptionCue:  optionCue,
	}

	switch s.Kind {
	case KindBreakout:
		if lvl, ok := triggers[KindBreakdown]; ok {
			setStop(&base, EntryCloseBelow, lvl, tf)
		}
	case KindBounce:
		setStop(&base, EntryCloseBelow, s.Trigger, tf)
	case KindBreakdown:
		if lvl, ok := triggers[KindBreakout]; ok {
			setStop(&base, EntryCloseAbove, lvl, tf)
		}
	case KindRejection:
		setStop(&base, EntryCloseAbove, s.Trigger, tf)
	}

	rows := make([]DraftRow, 0, len(s.Targets))
	for _, target := range s.Targets {
		row := base
		row.TargetLevel = target
		rows = append(rows, row)
	}
	return rows
}

// expandIdea turns one free-form idea into draft rows, one per target. An
// idea with no targets contributes nothing. A stop phrase maps literally,
// including the anomalous invalidation-above on a call, which is recorded
// rather than rejected.
func expandIdea(idea Idea, tf string) []DraftRow {
	right := rightFor(idea.Direction)
	hasTrigger := idea.Entry.Kind == EntryPhraseAbove || idea.Entry.Kind == EntryPhraseBelow
	cond := entryCondFor(right, hasTrigger, false)

	base := DraftRow{
		Symbol:    idea.Symbol,
		Right:     right,
		EntryCond: cond,
		TradeType: idea.TradeType,
		Quantity:  idea.Quantity,
		OptionCue: idea.OptionCue,
	}
	if hasTrigger {
		base.EntryLevel = ptr(idea.Entry.Level)
		base.EntryTF = ptr(tf)
	}
	if idea.Stop != nil {
		stopCond := EntryCloseBelow
		if idea.Stop.Above {
			stopCond = EntryCloseAbove
		}
		setStop(&base, stopCond, idea.Stop.Level, tf)
	}

	rows := make([]DraftRow, 0, len(idea.Targets))
	for _, target := range idea.Targets {
		row := base
		row.TargetLevel = target
		rows = append(rows, row)
	}
	return rows
}

func setStop(row *DraftRow, cond EntryCond, level float64, tf string) {
	row.StopCond = ptr(cond)
	row.StopLevel = ptr(level)
	row.StopTF = ptr(tf)
}

func ptr[T any](v T) *T { return &v }
