package engine

import (
	"math"
	"time"
)

// Drop reasons counted by the validator. These feed diagnostics only; a
// dropped row never aborts the batch.
const (
	dropEntryInvariant  = "entry_invariant"
	dropStopPartial     = "stop_partial"
	dropRightMismatch   = "right_entry_mismatch"
	dropBadStrike       = "bad_strike"
	dropBadExpiry       = "bad_expiry"
	dropMissingContract = "missing_contract_fields"
	dropBadTarget       = "bad_target"
	dropBadQuantity     = "bad_quantity"
)

// validateRows enforces the structural invariants on every row, repairing
// what the schema allows (defaulting timeframes) and silently dropping what
// it does not. Returns the surviving rows plus a per-reason drop count.
func validateRows(rows []TradeRow, refDate time.Time, cfg Config) ([]TradeRow, map[string]int) {
	drops := map[string]int{}
	valid := make([]TradeRow, 0, len(rows))
	for _, row := range rows {
		if reason, ok := validateRow(&row, refDate, cfg); !ok {
			drops[reason]++
			continue
		}
		valid = append(valid, row)
	}
	return valid, drops
}

func validateRow(row *TradeRow, refDate time.Time, cfg Config) (string, bool) {
	if row.Right != RightCall && row.Right != RightPut {
		return dropRightMismatch, false
	}
	if !allowedEntryConds[row.Right][row.EntryCond] {
		return dropRightMismatch, false
	}

	// entry co-occurrence: now means no level and no timeframe; anything
	// else needs a positive level and a timeframe (defaulted when unset)
	if row.EntryCond == EntryNow {
		if row.EntryLevel != nil || row.EntryTF != nil {
			return dropEntryInvariant, false
		}
	} else {
		if row.EntryLevel == nil || *row.EntryLevel <= 0 {
			return dropEntryInvariant, false
		}
		if row.EntryTF == nil || *row.EntryTF == "" {
			row.EntryTF = ptr(cfg.DefaultTimeframe)
		}
	}

	// stop fields are all-set or all-empty
	stopSet := 0
	if row.StopCond != nil {
		stopSet++
	}
	if row.StopLevel != nil {
		stopSet++
	}
	if row.StopTF == nil && row.StopCond != nil && row.StopLevel != nil {
		row.StopTF = ptr(cfg.DefaultTimeframe)
	}
	if row.StopTF != nil {
		stopSet++
	}
	if stopSet != 0 && stopSet != 3 {
		return dropStopPartial, false
	}
	if row.StopCond != nil {
		if *row.StopCond != EntryCloseAbove && *row.StopCond != EntryCloseBelow {
			return dropStopPartial, false
		}
		if *row.StopLevel <= 0 {
			return dropStopPartial, false
		}
	}

	if row.TargetLevel <= 0 {
		return dropBadTarget, false
	}

	if cfg.RequireOptionFields && (row.Strike == nil || row.Expiry == nil) {
		return dropMissingContract, false
	}
	if row.Strike != nil {
		if *row.Strike <= 0 || *row.Strike != math.Trunc(*row.Strike) {
			return dropBadStrike, false
		}
	}
	if row.Expiry != nil {
		exp, err := time.Parse(time.DateOnly, *row.Expiry)
		if err != nil {
			return dropBadExpiry, false
		}
		ref := time.Date(refDate.Year(), refDate.Month(), refDate.Day(), 0, 0, 0, 0, time.UTC)
		if exp.Before(ref) {
			return dropBadExpiry, false
		}
	}

	if row.Quantity != nil && *row.Quantity <= 0 {
		return dropBadQuantity, false
	}
	return "", true
}
