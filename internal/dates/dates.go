// Package dates resolves the date phrases found in messages
// ("this Sunday", "next weekend", "December 21st", "12/24", holiday
// names) into concrete calendar ranges.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/avandyck/shepherd/internal/config"
)

// Range is an inclusive day range. A single day has Start == End. Both
// bounds are midnight-truncated in the reference time's location.
type Range struct {
	Start time.Time
	End   time.Time
	Label string
}

// Single reports whether the range covers exactly one day.
func (r Range) Single() bool {
	return r.Start.Equal(r.End)
}

// Overlaps reports whether the range intersects [start, end], bounds
// inclusive on both sides.
func (r Range) Overlaps(start, end time.Time) bool {
	return !r.End.Before(day(start)) && !day(end).Before(r.Start)
}

// Contains reports whether t falls on a day inside the range.
func (r Range) Contains(t time.Time) bool {
	d := day(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Widen grows the range symmetrically by n days on each side, used
// when an exact-date lookup comes back empty.
func (r Range) Widen(n int) Range {
	return Range{
		Start: r.Start.AddDate(0, 0, -n),
		End:   r.End.AddDate(0, 0, n),
		Label: r.Label,
	}
}

// rollForwardAfter: a yearless date this many days in the past is
// assumed to mean the next occurrence, not the one that already went by.
const rollForwardAfter = 45

var (
	weekdays = map[string]time.Weekday{
		"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
		"wednesday": time.Wednesday, "thursday": time.Thursday,
		"friday": time.Friday, "saturday": time.Saturday,
	}
	months = map[string]time.Month{
		"january": time.January, "february": time.February, "march": time.March,
		"april": time.April, "may": time.May, "june": time.June, "july": time.July,
		"august": time.August, "september": time.September, "october": time.October,
		"november": time.November, "december": time.December,
	}

	relativeRe = regexp.MustCompile(`^(this|next|last) ([a-z]+)$`)
	monthDayRe = regexp.MustCompile(`^([a-z]+) (\d{1,2})(?:st|nd|rd|th)?(?:,? (\d{4}))?$`)
	numericRe  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?$`)
)

// Resolve turns a date phrase into a Range relative to now. ok is
// false when the phrase is not recognized.
func Resolve(ref string, now time.Time, holidays map[string]config.Holiday) (Range, bool) {
	phrase := strings.ToLower(strings.TrimSpace(ref))
	for _, prefix := range []string{"on ", "for ", "the "} {
		phrase = strings.TrimPrefix(phrase, prefix)
	}
	if phrase == "" {
		return Range{}, false
	}
	today := day(now)

	switch phrase {
	case "today":
		return singleDay(today, phrase), true
	case "tomorrow":
		return singleDay(today.AddDate(0, 0, 1), phrase), true
	case "yesterday":
		return singleDay(today.AddDate(0, 0, -1), phrase), true
	case "weekend":
		return weekendOf(today, 0, phrase), true
	}

	if wd, ok := weekdays[phrase]; ok {
		return singleDay(nextWeekday(today, wd, 0), phrase), true
	}

	if m := relativeRe.FindStringSubmatch(phrase); m != nil {
		if r, ok := resolveRelative(m[1], m[2], today, phrase); ok {
			return r, true
		}
	}

	if h, ok := holidays[phrase]; ok {
		return singleDay(yearless(time.Month(h.Month), h.Day, today), phrase), true
	}
	if phrase == "easter" {
		d := easterOf(today.Year(), today.Location())
		if today.Sub(d) > rollForwardAfter*24*time.Hour {
			d = easterOf(today.Year()+1, today.Location())
		}
		return singleDay(d, phrase), true
	}

	if m := monthDayRe.FindStringSubmatch(phrase); m != nil {
		month, known := months[m[1]]
		if known {
			dayNum, _ := strconv.Atoi(m[2])
			if m[3] != "" {
				year, _ := strconv.Atoi(m[3])
				return singleDay(time.Date(year, month, dayNum, 0, 0, 0, 0, today.Location()), phrase), true
			}
			return singleDay(yearless(month, dayNum, today), phrase), true
		}
	}

	if m := numericRe.FindStringSubmatch(phrase); m != nil {
		monthNum, _ := strconv.Atoi(m[1])
		dayNum, _ := strconv.Atoi(m[2])
		if monthNum >= 1 && monthNum <= 12 && dayNum >= 1 && dayNum <= 31 {
			if m[3] != "" {
				year, _ := strconv.Atoi(m[3])
				if year < 100 {
					year += 2000
				}
				return singleDay(time.Date(year, time.Month(monthNum), dayNum, 0, 0, 0, 0, today.Location()), phrase), true
			}
			return singleDay(yearless(time.Month(monthNum), dayNum, today), phrase), true
		}
	}

	return Range{}, false
}

func resolveRelative(qualifier, unit string, today time.Time, label string) (Range, bool) {
	if wd, ok := weekdays[unit]; ok {
		switch qualifier {
		case "this":
			return singleDay(nextWeekday(today, wd, 0), label), true
		case "next":
			return singleDay(nextWeekday(today, wd, 1), label), true
		case "last":
			return singleDay(prevWeekday(today, wd), label), true
		}
	}
	shift := map[string]int{"this": 0, "next": 1, "last": -1}[qualifier]
	switch unit {
	case "week":
		// Weeks run Sunday through Saturday.
		start := today.AddDate(0, 0, -int(today.Weekday())+7*shift)
		return Range{Start: start, End: start.AddDate(0, 0, 6), Label: label}, true
	case "weekend":
		return weekendOf(today, shift, label), true
	case "month":
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()).AddDate(0, shift, 0)
		return Range{Start: first, End: first.AddDate(0, 1, -1), Label: label}, true
	}
	return Range{}, false
}

// nextWeekday finds the occurrence of wd at least minAhead days from
// today; minAhead 0 allows today itself.
func nextWeekday(today time.Time, wd time.Weekday, minAhead int) time.Time {
	delta := (int(wd) - int(today.Weekday()) + 7) % 7
	if delta < minAhead {
		delta += 7
	}
	return today.AddDate(0, 0, delta)
}

func prevWeekday(today time.Time, wd time.Weekday) time.Time {
	delta := (int(today.Weekday()) - int(wd) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return today.AddDate(0, 0, -delta)
}

// weekendOf returns the Saturday-Sunday pair nearest ahead of today,
// shifted by whole weeks. On a Sunday "this weekend" is yesterday and
// today.
func weekendOf(today time.Time, shift int, label string) Range {
	var sat time.Time
	if today.Weekday() == time.Sunday {
		sat = today.AddDate(0, 0, -1)
	} else {
		sat = nextWeekday(today, time.Saturday, 0)
	}
	sat = sat.AddDate(0, 0, 7*shift)
	return Range{Start: sat, End: sat.AddDate(0, 0, 1), Label: label}
}

// yearless picks the occurrence of month/day nearest ahead: this year
// unless that date is stale, then next year.
func yearless(month time.Month, dayNum int, today time.Time) time.Time {
	d := time.Date(today.Year(), month, dayNum, 0, 0, 0, 0, today.Location())
	if today.Sub(d) > rollForwardAfter*24*time.Hour {
		d = d.AddDate(1, 0, 0)
	}
	return d
}

func singleDay(d time.Time, label string) Range {
	return Range{Start: d, End: d, Label: label}
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// FormatDay renders a date the way responses show it.
func FormatDay(t time.Time) string {
	return t.Format("Monday, January 2")
}
