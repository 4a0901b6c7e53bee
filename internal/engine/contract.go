package engine

import (
	"math"
	"time"
)

// selectContracts fills strike and expiry on every draft row. The reference
// price is the entry level for level-triggered rows, the stop level for
// immediate entries with a stop, and the target level as last resort. Strike
// is the reference rounded to the nearest integer, ties up. Expiry derivation
// is pure calendar math driven by the configured policy; no market data is
// consulted.
//
// With RequireOptionFields disabled, rows whose source text carried no
// explicit option cue keep strike and expiry null.
func selectContracts(drafts []DraftRow, refDate time.Time, cfg Config) []TradeRow {
	rows := make([]TradeRow, 0, len(drafts))
	for _, d := range drafts {
		row := TradeRow{
			Symbol:      d.Symbol,
			Right:       d.Right,
			EntryCond:   d.EntryCond,
			EntryLevel:  d.EntryLevel,
			EntryTF:     d.EntryTF,
			StopCond:    d.StopCond,
			StopLevel:   d.StopLevel,
			StopTF:      d.StopTF,
			TargetLevel: d.TargetLevel,
			TradeType:   d.TradeType,
			Note:        d.Note,
			Quantity:    d.Quantity,
		}
		if cfg.RequireOptionFields || d.OptionCue {
			row.Strike = ptr(strikeFor(d))
			row.Expiry = ptr(expiryFor(refDate, d.TradeType, cfg.ExpiryPolicy).Format(time.DateOnly))
		}
		rows = append(rows, row)
	}
	return rows
}

// strikeFor rounds the row's reference price to the nearest integer strike,
// ties rounding up.
func strikeFor(d DraftRow) float64 {
	ref := d.TargetLevel
	switch {
	case d.EntryCond != EntryNow && d.EntryLevel != nil:
		ref = *d.EntryLevel
	case d.StopLevel != nil:
		ref = *d.StopLevel
	}
	return math.Floor(ref + 0.5)
}

// expiryFor derives a deterministic expiry date.
//
// Zero-DTE policy: always the reference date. Near-term policy bands by
// trade type against an every-weekday expiry calendar: scalp expires on the
// reference date rolled forward off a weekend, day trades on the next
// weekday, swings on the first Friday at least fourteen days out.
func expiryFor(refDate time.Time, tt TradeType, policy ExpiryPolicy) time.Time {
	ref := time.Date(refDate.Year(), refDate.Month(), refDate.Day(), 0, 0, 0, 0, time.UTC)
	if policy == ExpiryZeroDTE {
		return ref
	}
	switch tt {
	case TypeScalp:
		return nextWeekday(ref)
	case TypeSwing:
		return nextFriday(ref.AddDate(0, 0, 14))
	default:
		return nextWeekday(ref.AddDate(0, 0, 1))
	}
}

func nextWeekday(d time.Time) time.Time {
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func nextFriday(d time.Time) time.Time {
	for d.Weekday() != time.Friday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}
