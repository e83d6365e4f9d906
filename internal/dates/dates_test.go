package dates

import (
	"testing"
	"time"

	"github.com/avandyck/shepherd/internal/config"
)

// Wednesday.
var now = time.Date(2026, 9, 2, 10, 30, 0, 0, time.UTC)

func mustResolve(t *testing.T, ref string) Range {
	t.Helper()
	r, ok := Resolve(ref, now, config.DefaultHolidays())
	if !ok {
		t.Fatalf("Resolve(%q) not recognized", ref)
	}
	return r
}

func TestResolveSingleDays(t *testing.T) {
	tests := []struct {
		ref  string
		want time.Time
	}{
		{"today", time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)},
		{"tomorrow", time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC)},
		{"yesterday", time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)},
		{"sunday", time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)},
		{"this sunday", time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)},
		{"next sunday", time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)},
		{"last sunday", time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)},
		{"this wednesday", time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)},
		{"next wednesday", time.Date(2026, 9, 9, 0, 0, 0, 0, time.UTC)},
		{"on friday", time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)},
		{"december 21st", time.Date(2026, 12, 21, 0, 0, 0, 0, time.UTC)},
		{"january 5, 2026", time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"january 15th", time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"august 1", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
		{"12/24", time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC)},
		{"1/15", time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"12/24/26", time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC)},
		{"christmas", time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)},
		{"christmas eve", time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC)},
		{"easter", time.Date(2027, 3, 28, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		r := mustResolve(t, tt.ref)
		if !r.Single() {
			t.Errorf("Resolve(%q) = range %v..%v, want single day", tt.ref, r.Start, r.End)
			continue
		}
		if !r.Start.Equal(tt.want) {
			t.Errorf("Resolve(%q) = %v, want %v", tt.ref, r.Start, tt.want)
		}
	}
}

func TestResolveRanges(t *testing.T) {
	tests := []struct {
		ref        string
		start, end time.Time
	}{
		{"this week", time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)},
		{"next week", time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC), time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)},
		{"last week", time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC), time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)},
		{"this weekend", time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC), time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)},
		{"next weekend", time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC), time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)},
		{"this month", time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)},
		{"last month", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		r := mustResolve(t, tt.ref)
		if !r.Start.Equal(tt.start) || !r.End.Equal(tt.end) {
			t.Errorf("Resolve(%q) = %v..%v, want %v..%v", tt.ref, r.Start, r.End, tt.start, tt.end)
		}
	}
}

func TestResolveWeekendOnSunday(t *testing.T) {
	sundayNow := time.Date(2026, 9, 6, 9, 0, 0, 0, time.UTC)
	r, ok := Resolve("this weekend", sundayNow, nil)
	if !ok {
		t.Fatal("weekend not recognized")
	}
	wantStart := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	if !r.Start.Equal(wantStart) {
		t.Errorf("weekend on a Sunday starts %v, want %v", r.Start, wantStart)
	}
}

func TestResolveUnknown(t *testing.T) {
	for _, ref := range []string{"", "whenever", "the retreat"} {
		if _, ok := Resolve(ref, now, config.DefaultHolidays()); ok {
			t.Errorf("Resolve(%q) recognized, want ok=false", ref)
		}
	}
}

func TestRangeOverlapInclusive(t *testing.T) {
	r := mustResolve(t, "this week") // Aug 30 .. Sep 5
	tests := []struct {
		start, end time.Time
		want       bool
	}{
		// touching the end bound counts
		{time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC), time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), true},
		// touching the start bound counts
		{time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC), time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC), time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), false},
		{time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), false},
	}
	for i, tt := range tests {
		if got := r.Overlaps(tt.start, tt.end); got != tt.want {
			t.Errorf("case %d: Overlaps(%v, %v) = %v, want %v", i, tt.start, tt.end, got, tt.want)
		}
	}
}

func TestRangeWiden(t *testing.T) {
	r := mustResolve(t, "this sunday").Widen(3)
	wantStart := time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, 9, 9, 0, 0, 0, 0, time.UTC)
	if !r.Start.Equal(wantStart) || !r.End.Equal(wantEnd) {
		t.Errorf("Widen(3) = %v..%v, want %v..%v", r.Start, r.End, wantStart, wantEnd)
	}
}

func TestEaster(t *testing.T) {
	tests := []struct {
		year       int
		month, day int
	}{
		{2024, 3, 31},
		{2025, 4, 20},
		{2026, 4, 5},
		{2027, 3, 28},
	}
	for _, tt := range tests {
		got := easterOf(tt.year, time.UTC)
		if int(got.Month()) != tt.month || got.Day() != tt.day {
			t.Errorf("easterOf(%d) = %v, want %d/%d", tt.year, got, tt.month, tt.day)
		}
	}
}

func TestFormatDay(t *testing.T) {
	if got := FormatDay(time.Date(2026, 12, 21, 0, 0, 0, 0, time.UTC)); got != "Monday, December 21" {
		t.Errorf("FormatDay = %q", got)
	}
}
