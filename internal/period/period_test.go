package period

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestForDay(t *testing.T) {
	anchor := time.Date(2025, time.March, 10, 15, 42, 7, 0, time.Local)
	r := For(Day, anchor)
	if !r.Start.Equal(date(2025, time.March, 10)) {
		t.Fatalf("start = %v", r.Start)
	}
	if !r.End.Equal(date(2025, time.March, 11)) {
		t.Fatalf("end = %v", r.End)
	}
}

func TestForWeekStartsMonday(t *testing.T) {
	cases := []struct {
		anchor    time.Time
		wantStart time.Time
	}{
		{date(2025, time.March, 10), date(2025, time.March, 10)}, // a Monday
		{date(2025, time.March, 12), date(2025, time.March, 10)}, // Wednesday
		{date(2025, time.March, 16), date(2025, time.March, 10)}, // Sunday belongs to the week before
	}
	for _, tc := range cases {
		r := For(Week, tc.anchor)
		if !r.Start.Equal(tc.wantStart) {
			t.Fatalf("week of %v: start = %v, want %v", tc.anchor, r.Start, tc.wantStart)
		}
		if !r.End.Equal(tc.wantStart.AddDate(0, 0, 7)) {
			t.Fatalf("week of %v: end = %v", tc.anchor, r.End)
		}
	}
}

func TestForMonthAndYearBoundaries(t *testing.T) {
	r := For(Month, date(2025, time.December, 31))
	if !r.Start.Equal(date(2025, time.December, 1)) || !r.End.Equal(date(2026, time.January, 1)) {
		t.Fatalf("month range = %v..%v", r.Start, r.End)
	}

	r = For(Year, date(2024, time.February, 29))
	if !r.Start.Equal(date(2024, time.January, 1)) || !r.End.Equal(date(2025, time.January, 1)) {
		t.Fatalf("year range = %v..%v", r.Start, r.End)
	}
}

func TestRangeHalfOpen(t *testing.T) {
	r := For(Day, date(2025, time.March, 10))
	if !r.Contains(r.Start) {
		t.Fatal("start instant must be included")
	}
	if r.Contains(r.End) {
		t.Fatal("end instant must be excluded")
	}
	if r.Contains(r.End.Add(-time.Second)) != true {
		t.Fatal("instant just before end must be included")
	}
}

func TestBetween(t *testing.T) {
	r := Between(date(2025, time.March, 5), date(2025, time.March, 7))
	if !r.Start.Equal(date(2025, time.March, 5)) || !r.End.Equal(date(2025, time.March, 8)) {
		t.Fatalf("range = %v..%v", r.Start, r.End)
	}

	// reversed endpoints are swapped, not an error
	rev := Between(date(2025, time.March, 7), date(2025, time.March, 5))
	if !rev.Start.Equal(r.Start) || !rev.End.Equal(r.End) {
		t.Fatalf("reversed range = %v..%v", rev.Start, rev.End)
	}
}

func TestNextRefusesFuture(t *testing.T) {
	now := time.Date(2025, time.March, 12, 9, 0, 0, 0, time.Local)

	// anchor in a past week: advancing is fine
	next, ok := Next(Week, date(2025, time.March, 3), now)
	if !ok {
		t.Fatal("expected navigation from a past week to be allowed")
	}
	if !next.Equal(date(2025, time.March, 10)) {
		t.Fatalf("next anchor = %v", next)
	}

	// anchor in the week containing now: no browsing into the future
	if _, ok := Next(Week, date(2025, time.March, 10), now); ok {
		t.Fatal("expected navigation past the current week to be refused")
	}
	if _, ok := Next(Day, now, now); ok {
		t.Fatal("expected navigation past today to be refused")
	}
}

func TestPrev(t *testing.T) {
	prev := Prev(Month, date(2025, time.March, 15))
	if For(Month, prev).Start != date(2025, time.February, 1) {
		t.Fatalf("prev month anchor = %v", prev)
	}
	prev = Prev(Week, date(2025, time.March, 10))
	if !For(Week, prev).Start.Equal(date(2025, time.March, 3)) {
		t.Fatalf("prev week anchor = %v", prev)
	}
}

func TestKindValid(t *testing.T) {
	for _, k := range []Kind{Day, Week, Month, Year, Custom} {
		if !k.Valid() {
			t.Fatalf("%s should be valid", k)
		}
	}
	if Kind("quarter").Valid() {
		t.Fatal("unknown kind accepted")
	}
}
