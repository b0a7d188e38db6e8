package engagement

import (
	"sort"
	"time"
)

// activeDays collects the distinct local days with at least one reading event.
func activeDays(reads []ReadingEvent, loc *time.Location) map[Day]struct{} {
	days := make(map[Day]struct{}, len(reads))
	for _, r := range reads {
		days[DayOf(r.ReadAt, loc)] = struct{}{}
	}
	return days
}

// CurrentStreak counts consecutive active days ending today. Today only breaks the streak
// once it is over, so when it has no reads yet the count starts from yesterday.
func CurrentStreak(reads []ReadingEvent, now time.Time, loc *time.Location) int {
	if len(reads) == 0 {
		return 0
	}
	days := activeDays(reads, loc)

	day := DayOf(now, loc)
	if _, ok := days[day]; !ok {
		day = day.AddDays(-1)
	}

	streak := 0
	for {
		if _, ok := days[day]; !ok {
			return streak
		}
		streak++
		day = day.AddDays(-1)
	}
}

// LongestStreak is the longest run of consecutive active days anywhere in the history.
func LongestStreak(reads []ReadingEvent, loc *time.Location) int {
	days := activeDays(reads, loc)
	if len(days) == 0 {
		return 0
	}

	ordered := make([]Day, 0, len(days))
	for d := range days {
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })

	longest, run := 1, 1
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].AddDays(1) == ordered[i] {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// ReadBeforeHour reports whether any read happened before the given local hour of its day.
func ReadBeforeHour(reads []ReadingEvent, hour int, loc *time.Location) bool {
	for _, r := range reads {
		if r.ReadAt.In(loc).Hour() < hour {
			return true
		}
	}
	return false
}
