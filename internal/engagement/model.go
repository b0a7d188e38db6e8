// Package engagement derives points, streaks and daily windows from the reading and
// reflection ledgers. Everything here is pure: callers pass the events and a single "now".
package engagement

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReadVersePoints       = 10
	ShareReflectionPoints = 5
)

// ReadingEvent is one row of the reading ledger; at most one exists per (user, verse).
type ReadingEvent struct {
	UserID  uuid.UUID `json:"user_id"`
	VerseID int64     `json:"verse_id"`
	ReadAt  time.Time `json:"read_at"`
}

type ReflectionEvent struct {
	ID        int64      `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	VerseID   int64      `json:"verse_id"`
	Text      string     `json:"text"`
	Shared    bool       `json:"shared"`
	SharedAt  *time.Time `json:"shared_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// MissionAward records a claimed daily mission. Date is the user's local calendar day.
type MissionAward struct {
	UserID    uuid.UUID `json:"user_id"`
	MissionID string    `json:"mission_id"`
	Date      string    `json:"date"`
	Points    int       `json:"points"`
	AwardedAt time.Time `json:"awarded_at"`
}

// Summary is the cached projection stored in profiles. It can always be rebuilt with Summarize.
type Summary struct {
	UserID     uuid.UUID `json:"user_id"`
	Points     int64     `json:"points"`
	VersesRead int64     `json:"verses_read"`
	StreakDays int       `json:"streak_days"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Ledger bundles one user's event history.
type Ledger struct {
	Reads       []ReadingEvent
	Reflections []ReflectionEvent
	Awards      []MissionAward
}
