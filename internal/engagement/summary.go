package engagement

import (
	"time"

	"github.com/google/uuid"
)

// Summarize rebuilds the cached summary from the ledgers alone:
// points = verses_read*ReadVersePoints + shared_reflections*ShareReflectionPoints + claimed mission points.
func Summarize(userID uuid.UUID, ledger Ledger, asOf time.Time, loc *time.Location) Summary {
	distinct := make(map[int64]struct{}, len(ledger.Reads))
	for _, r := range ledger.Reads {
		distinct[r.VerseID] = struct{}{}
	}
	versesRead := int64(len(distinct))

	shared := int64(SharedCount(ledger.Reflections))

	var awarded int64
	for _, a := range ledger.Awards {
		awarded += int64(a.Points)
	}

	return Summary{
		UserID:     userID,
		Points:     versesRead*ReadVersePoints + shared*ShareReflectionPoints + awarded,
		VersesRead: versesRead,
		StreakDays: CurrentStreak(ledger.Reads, asOf, loc),
		UpdatedAt:  asOf,
	}
}

// SharedCount counts reflections that were shared.
func SharedCount(reflections []ReflectionEvent) int {
	n := 0
	for _, r := range reflections {
		if r.Shared {
			n++
		}
	}
	return n
}

// Drifted reports whether a cached summary disagrees with a rebuilt one on any counter.
func Drifted(cached, rebuilt Summary) bool {
	return cached.Points != rebuilt.Points ||
		cached.VersesRead != rebuilt.VersesRead ||
		cached.StreakDays != rebuilt.StreakDays
}

// ReadsOn and ReflectionsOn filter a ledger to one local day.
func ReadsOn(reads []ReadingEvent, day Day, loc *time.Location) []ReadingEvent {
	start, end := DayWindow(day, loc)
	var out []ReadingEvent
	for _, r := range reads {
		if Within(r.ReadAt, start, end) {
			out = append(out, r)
		}
	}
	return out
}

func ReflectionsOn(reflections []ReflectionEvent, day Day, loc *time.Location) []ReflectionEvent {
	start, end := DayWindow(day, loc)
	var out []ReflectionEvent
	for _, r := range reflections {
		at := r.CreatedAt
		if r.SharedAt != nil {
			at = *r.SharedAt
		}
		if Within(at, start, end) {
			out = append(out, r)
		}
	}
	return out
}
