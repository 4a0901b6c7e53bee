package engine

// kindDirection maps each setup kind to its fixed sentiment. A kind is
// bullish or bearish, never both.
var kindDirection = map[SetupKind]Direction{
	KindBreakout:  Bullish,
	KindBounce:    Bullish,
	KindRejection: Bearish,
	KindBreakdown: Bearish,
}

// kindRank fixes the assembly order of setups within a symbol:
// rejection, breakdown, breakout, bounce.
var kindRank = map[SetupKind]int{
	KindRejection: 0,
	KindBreakdown: 1,
	KindBreakout:  2,
	KindBounce:    3,
}

// touchEntryKinds are the scalp-style setups that enter on a touch of the
// trigger rather than a confirmed close beyond it.
var touchEntryKinds = map[SetupKind]bool{
	KindRejection: true,
	KindBounce:    true,
}

// rightFor maps sentiment to the option side. Sentiment, once fixed,
// dominates: this never flips on later phrasing.
func rightFor(d Direction) Right {
	if d == Bearish {
		return RightPut
	}
	return RightCall
}

// entryCondFor derives the entry-condition code from (right, trigger
// semantics). A call may only pair with close_above, touch or now; a put only
// with close_below, touch or now.
func entryCondFor(right Right, hasTrigger, touch bool) EntryCond {
	switch {
	case !hasTrigger:
		return EntryNow
	case touch:
		return EntryTouch
	case right == RightPut:
		return EntryCloseBelow
	default:
		return EntryCloseAbove
	}
}

// allowedEntryConds is the hard co-occurrence invariant between right and
// entry condition, enforced again by the validator.
var allowedEntryConds = map[Right]map[EntryCond]bool{
	RightCall: {EntryCloseAbove: true, EntryTouch: true, EntryNow: true},
	RightPut:  {EntryCloseBelow: true, EntryTouch: true, EntryNow: true},
}
