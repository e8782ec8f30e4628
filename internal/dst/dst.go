// Package dst converts naive local timestamps to a reference time base,
// optionally correcting for daylight saving time with hard-coded calendar
// transition tables. Timestamps are treated as naive throughout: shifting
// is plain hour arithmetic and the result is the new naive representation.
package dst

import (
	"fmt"
	"time"
)

// Transition holds one year's DST transition instants in local clock time.
type Transition struct {
	Spring time.Time // clocks jump forward
	Fall   time.Time // clocks fall back
}

// TransitionTable maps a calendar year to its transitions. Years outside
// the table are unsupported and shifting them fails with a RulesetError.
type TransitionTable map[int]Transition

// RulesetError reports a shift request for a year the ruleset's transition
// table does not cover. The pipeline fails loudly on it rather than falling
// back to a flat shift, which would silently misalign timestamps.
type RulesetError struct {
	Ruleset string
	Year    int
}

func (e *RulesetError) Error() string {
	return fmt.Sprintf("dst: ruleset %q has no transition data for year %d", e.Ruleset, e.Year)
}

// Rule shifts a single timestamp. The two implementations, FlatOffset and
// Calendar, make the flat-vs-DST choice explicit at construction time so
// there is no silent fallback path.
type Rule interface {
	Shift(t time.Time) (time.Time, error)
}

// FlatOffset applies the same whole-hour offset to every timestamp.
type FlatOffset struct {
	Hours int
}

func (r FlatOffset) Shift(t time.Time) (time.Time, error) {
	return t.Add(time.Duration(r.Hours) * time.Hour), nil
}

// Calendar applies a DST-aware correction. BaseHours is the offset between
// local standard time and the reference; timestamps falling inside the DST
// window receive BaseHours-1 because the local clock runs one hour ahead.
//
// The window boundaries cover the full year with no gap:
//
//	[year start, spring)      -> BaseHours
//	[spring, fall - 1h)       -> BaseHours - 1
//	[fall - 1h, year end]     -> BaseHours
//
// The spring transition instant itself takes the DST offset; instants from
// one hour before the fall transition onward take the standard offset.
type Calendar struct {
	Name      string
	BaseHours int
	Table     TransitionTable
}

func (r Calendar) Shift(t time.Time) (time.Time, error) {
	tr, ok := r.Table[t.Year()]
	if !ok {
		return time.Time{}, &RulesetError{Ruleset: r.Name, Year: t.Year()}
	}

	hours := r.BaseHours
	dstEnd := tr.Fall.Add(-time.Hour)
	if !t.Before(tr.Spring) && t.Before(dstEnd) {
		hours = r.BaseHours - 1
	}
	return t.Add(time.Duration(hours) * time.Hour), nil
}

// ShiftAll shifts a series of timestamps with the given rule. The first
// failure aborts the whole series; a partially shifted series is worse
// than none.
func ShiftAll(ts []time.Time, r Rule) ([]time.Time, error) {
	out := make([]time.Time, len(ts))
	for i, t := range ts {
		shifted, err := r.Shift(t)
		if err != nil {
			return nil, err
		}
		out[i] = shifted
	}
	return out, nil
}
