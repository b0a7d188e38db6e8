package mission

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taiwoajasa245/reading-engine-api/internal/engagement"
)

var user = uuid.MustParse("0b6d7c1e-9a43-4c2b-8f6e-1d2c3b4a5e6f")

func progressByID(t *testing.T, progress []Progress, id string) Progress {
	t.Helper()
	for _, p := range progress {
		if p.Mission.ID == id {
			return p
		}
	}
	require.FailNow(t, "mission missing", id)
	return Progress{}
}

func TestTodayIgnoresYesterday(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)

	reads := []engagement.ReadingEvent{
		{UserID: user, VerseID: 1, ReadAt: yesterday},
		{UserID: user, VerseID: 2, ReadAt: yesterday.Add(time.Minute)},
		{UserID: user, VerseID: 3, ReadAt: yesterday.Add(2 * time.Minute)},
		{UserID: user, VerseID: 4, ReadAt: now},
	}

	got := Today(DailyCatalog, reads, nil, now, time.UTC)
	read := progressByID(t, got, "read_2_verses")
	assert.Equal(t, 1, read.Current)
	assert.False(t, read.Completed)

	anyRead := progressByID(t, got, "morning_reading")
	assert.Equal(t, 1, anyRead.Current)
	assert.True(t, anyRead.Completed)
}

func TestEvaluate(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	reads := []engagement.ReadingEvent{
		{UserID: user, VerseID: 1, ReadAt: now},
		{UserID: user, VerseID: 2, ReadAt: now},
		{UserID: user, VerseID: 3, ReadAt: now},
	}
	reflections := []engagement.ReflectionEvent{
		{UserID: user, VerseID: 1, Shared: true, SharedAt: &now, CreatedAt: now},
		{UserID: user, VerseID: 1, Shared: false, CreatedAt: now},
	}

	got := Evaluate(DailyCatalog, reads, reflections)
	require.Len(t, got, len(DailyCatalog))

	read := progressByID(t, got, "read_2_verses")
	assert.Equal(t, 3, read.Current)
	assert.True(t, read.Completed)

	share := progressByID(t, got, "share_interpretation")
	assert.Equal(t, 1, share.Current)
	assert.True(t, share.Completed)
}

func TestEvaluateNoActivity(t *testing.T) {
	for _, p := range Evaluate(DailyCatalog, nil, nil) {
		assert.Zero(t, p.Current, p.Mission.ID)
		assert.False(t, p.Completed, p.Mission.ID)
	}
}

func TestTodayUsesLocalDay(t *testing.T) {
	loc := time.FixedZone("UTC-03:00", -3*3600)
	// 02:00 UTC on the 10th is still the 9th locally.
	reads := []engagement.ReadingEvent{{UserID: user, VerseID: 1, ReadAt: time.Date(2024, 3, 10, 2, 0, 0, 0, time.UTC)}}
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, progressByID(t, Today(DailyCatalog, reads, nil, now, loc), "morning_reading").Current)
	assert.Equal(t, 1, progressByID(t, Today(DailyCatalog, reads, nil, now, time.UTC), "morning_reading").Current)
}

func TestFind(t *testing.T) {
	d, ok := Find(DailyCatalog, "share_interpretation")
	require.True(t, ok)
	assert.Equal(t, ReflectionCount, d.Requirement.Kind)

	_, ok = Find(DailyCatalog, "visit_light")
	assert.False(t, ok)
}
