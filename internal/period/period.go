// Package period builds the half-open time ranges the reporting queries are
// bounded by. Calendar boundaries are computed in the anchor's location and
// the week starts on Monday.
package period

import "time"

const (
	Day    Kind = "day"
	Week   Kind = "week"
	Month  Kind = "month"
	Year   Kind = "year"
	Custom Kind = "custom"
)

type (
	Kind string

	// Range is a half-open interval [Start, End). A transaction occurring
	// exactly at End belongs to the next period, never to both.
	Range struct {
		Start time.Time
		End   time.Time
	}
)

// Valid reports whether k is a known period kind.
func (k Kind) Valid() bool {
	switch k {
	case Day, Week, Month, Year, Custom:
		return true
	}
	return false
}

// For returns the period of the given kind containing anchor. Custom has no
// inherent width and falls back to the anchor's day, as callers supply
// explicit bounds for custom ranges.
func For(kind Kind, anchor time.Time) Range {
	d := midnight(anchor)
	switch kind {
	case Week:
		wd := (int(d.Weekday()) + 6) % 7 // Mon=0
		start := d.AddDate(0, 0, -wd)
		return Range{Start: start, End: start.AddDate(0, 0, 7)}
	case Month:
		start := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
		return Range{Start: start, End: start.AddDate(0, 1, 0)}
	case Year:
		start := time.Date(d.Year(), 1, 1, 0, 0, 0, 0, d.Location())
		return Range{Start: start, End: start.AddDate(1, 0, 0)}
	default:
		return Range{Start: d, End: d.AddDate(0, 0, 1)}
	}
}

// Between returns the custom half-open range covering the days of both
// endpoints, inclusive of the end date's day.
func Between(start, end time.Time) Range {
	s, e := midnight(start), midnight(end)
	if e.Before(s) {
		s, e = e, s
	}
	return Range{Start: s, End: e.AddDate(0, 0, 1)}
}

// StartSec and EndSec are the epoch-second bounds used in SQL.
func (r Range) StartSec() int64 { return r.Start.Unix() }
func (r Range) EndSec() int64   { return r.End.Unix() }

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Next returns an anchor in the following period. Navigation past the period
// containing now is refused: ok is false while anchor's period still holds
// or follows now.
func Next(kind Kind, anchor, now time.Time) (time.Time, bool) {
	cur := For(kind, anchor)
	if cur.End.After(now) {
		return anchor, false
	}
	return cur.End, true
}

// Prev returns an anchor in the preceding period.
func Prev(kind Kind, anchor time.Time) time.Time {
	return For(kind, anchor).Start.AddDate(0, 0, -1)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
