package engagement

import (
	"fmt"
	"time"
)

// Day is a calendar date, independent of any zone until paired with a location.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf returns the calendar day t falls on in loc.
func DayOf(t time.Time, loc *time.Location) Day {
	y, m, d := t.In(loc).Date()
	return Day{Year: y, Month: m, Day: d}
}

// AddDays moves by whole calendar days. Noon UTC keeps the normalisation clear of DST.
func (d Day) AddDays(n int) Day {
	y, m, dd := time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.UTC).Date()
	return Day{Year: y, Month: m, Day: dd}
}

// Start is local midnight of d in loc. On days whose midnight is skipped by a DST jump
// this is the first instant that exists.
func (d Day) Start(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Day) Before(o Day) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// DayWindow returns [localMidnight(d), localMidnight(d+1)).
func DayWindow(d Day, loc *time.Location) (start, end time.Time) {
	return d.Start(loc), d.AddDays(1).Start(loc)
}

// Within reports whether t lies in [start, end).
func Within(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

// ResolveLocation loads an IANA zone name, returning fallback when the name is empty or unknown.
func ResolveLocation(name string, fallback *time.Location) *time.Location {
	if name == "" {
		return fallback
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fallback
	}
	return loc
}
