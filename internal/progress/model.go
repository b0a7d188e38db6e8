package progress

import (
	"errors"

	"github.com/taiwoajasa245/reading-engine-api/internal/corpus"
	"github.com/taiwoajasa245/reading-engine-api/internal/engagement"
	"github.com/taiwoajasa245/reading-engine-api/internal/growth"
	"github.com/taiwoajasa245/reading-engine-api/internal/mission"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflictIgnored signals an idempotent no-op: the event was already recorded.
	ErrConflictIgnored    = errors.New("already recorded")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// MaxReflectionLength caps reflection text, counted in runes.
const MaxReflectionLength = 5000

// Profile is the cached summary row plus the user's configured zone.
type Profile struct {
	Summary  engagement.Summary
	Timezone string
}

type ReadResult struct {
	Credited bool               `json:"credited"`
	Summary  engagement.Summary `json:"summary"`
}

type ReflectionResult struct {
	Reflection engagement.ReflectionEvent `json:"reflection"`
	Summary    engagement.Summary         `json:"summary"`
}

type ClaimResult struct {
	Credited bool               `json:"credited"`
	Mission  mission.Definition `json:"mission"`
	Summary  engagement.Summary `json:"summary"`
}

type MissionStatus struct {
	mission.Progress
	Claimed bool `json:"claimed"`
}

type RebuildResult struct {
	Before  engagement.Summary `json:"before"`
	After   engagement.Summary `json:"after"`
	Drifted bool               `json:"drifted"`
}

type Dashboard struct {
	Summary           engagement.Summary   `json:"summary"`
	CurrentStreak     int                  `json:"current_streak"`
	LongestStreak     int                  `json:"longest_streak"`
	SharedReflections int                  `json:"shared_reflections"`
	Level             growth.LevelProgress `json:"level"`
	Badges            []growth.Badge       `json:"badges"`
	Missions          []MissionStatus      `json:"missions"`
	Timezone          string               `json:"timezone"`
	Today             string               `json:"today"`
}

type NextVerse struct {
	Verse   corpus.Verse `json:"verse"`
	Ordinal int          `json:"ordinal"`
	// Restarted is set when every verse has been read and reading wrapped to the start.
	Restarted bool `json:"restarted"`
}

type MarkReadRequest struct {
	VerseID int64 `json:"verse_id" validate:"required,gt=0"`
}

type ShareReflectionRequest struct {
	VerseID int64  `json:"verse_id" validate:"required,gt=0"`
	Text    string `json:"text" validate:"required"`
}

type SetTimezoneRequest struct {
	Timezone string `json:"timezone" validate:"required,timezone"`
}
