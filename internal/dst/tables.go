package dst

import "time"

// Ruleset names accepted by FromName.
const (
	RulesetAmerican = "american"
	RulesetEuropean = "european"
)

// FromName returns the transition table for a named calendar ruleset.
func FromName(name string) (TransitionTable, bool) {
	switch name {
	case RulesetAmerican:
		return AmericanTable(), true
	case RulesetEuropean:
		return EuropeanTable(), true
	}
	return nil, false
}

// AmericanTable returns US DST transitions for 2008-2019: forward on the
// second Sunday of March at 02:00, back on the first Sunday of November
// at 02:00 local time.
func AmericanTable() TransitionTable {
	return TransitionTable{
		2008: {Spring: local(2008, time.March, 9, 2), Fall: local(2008, time.November, 2, 2)},
		2009: {Spring: local(2009, time.March, 8, 2), Fall: local(2009, time.November, 1, 2)},
		2010: {Spring: local(2010, time.March, 14, 2), Fall: local(2010, time.November, 7, 2)},
		2011: {Spring: local(2011, time.March, 13, 2), Fall: local(2011, time.November, 6, 2)},
		2012: {Spring: local(2012, time.March, 11, 2), Fall: local(2012, time.November, 4, 2)},
		2013: {Spring: local(2013, time.March, 10, 2), Fall: local(2013, time.November, 3, 2)},
		2014: {Spring: local(2014, time.March, 9, 2), Fall: local(2014, time.November, 2, 2)},
		2015: {Spring: local(2015, time.March, 8, 2), Fall: local(2015, time.November, 1, 2)},
		2016: {Spring: local(2016, time.March, 13, 2), Fall: local(2016, time.November, 6, 2)},
		2017: {Spring: local(2017, time.March, 12, 2), Fall: local(2017, time.November, 5, 2)},
		2018: {Spring: local(2018, time.March, 11, 2), Fall: local(2018, time.November, 4, 2)},
		2019: {Spring: local(2019, time.March, 10, 2), Fall: local(2019, time.November, 3, 2)},
	}
}

// EuropeanTable returns EU DST transitions for 2008-2019: forward on the
// last Sunday of March at 02:00, back on the last Sunday of October at
// 03:00 local time.
func EuropeanTable() TransitionTable {
	return TransitionTable{
		2008: {Spring: local(2008, time.March, 30, 2), Fall: local(2008, time.October, 26, 3)},
		2009: {Spring: local(2009, time.March, 29, 2), Fall: local(2009, time.October, 25, 3)},
		2010: {Spring: local(2010, time.March, 28, 2), Fall: local(2010, time.October, 31, 3)},
		2011: {Spring: local(2011, time.March, 27, 2), Fall: local(2011, time.October, 30, 3)},
		2012: {Spring: local(2012, time.March, 25, 2), Fall: local(2012, time.October, 28, 3)},
		2013: {Spring: local(2013, time.March, 31, 2), Fall: local(2013, time.October, 27, 3)},
		2014: {Spring: local(2014, time.March, 30, 2), Fall: local(2014, time.October, 26, 3)},
		2015: {Spring: local(2015, time.March, 29, 2), Fall: local(2015, time.October, 25, 3)},
		2016: {Spring: local(2016, time.March, 27, 2), Fall: local(2016, time.October, 30, 3)},
		2017: {Spring: local(2017, time.March, 26, 2), Fall: local(2017, time.October, 29, 3)},
		2018: {Spring: local(2018, time.March, 25, 2), Fall: local(2018, time.October, 28, 3)},
		2019: {Spring: local(2019, time.March, 31, 2), Fall: local(2019, time.October, 27, 3)},
	}
}

// local builds a naive local instant. Naive times are carried in UTC
// internally; the location is a representation detail, not a zone claim.
func local(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}
