package engagement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayAddDaysCrossesMonthAndYear(t *testing.T) {
	d := Day{Year: 2023, Month: time.December, Day: 31}
	assert.Equal(t, Day{Year: 2024, Month: time.January, Day: 1}, d.AddDays(1))
	assert.Equal(t, Day{Year: 2024, Month: time.February, Day: 29}, Day{Year: 2024, Month: time.March, Day: 1}.AddDays(-1))
	assert.Equal(t, "2023-12-31", d.String())
}

func TestDayWindow(t *testing.T) {
	loc := saoPaulo(t)
	start, end := DayWindow(Day{Year: 2024, Month: time.March, Day: 10}, loc)

	assert.Equal(t, time.Date(2024, 3, 10, 3, 0, 0, 0, time.UTC), start.UTC())
	assert.Equal(t, 24*time.Hour, end.Sub(start))

	assert.True(t, Within(start, start, end))
	assert.False(t, Within(end, start, end))
}

func TestDayWindowAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	start, end := DayWindow(Day{Year: 2024, Month: time.March, Day: 10}, ny)
	assert.Equal(t, 23*time.Hour, end.Sub(start))
}

func TestResolveLocation(t *testing.T) {
	fallback := time.FixedZone("UTC-03:00", -3*3600)
	assert.Equal(t, fallback, ResolveLocation("", fallback))
	assert.Equal(t, fallback, ResolveLocation("Mars/Olympus", fallback))
	assert.Equal(t, "Europe/Lisbon", ResolveLocation("Europe/Lisbon", fallback).String())
}

func TestBefore(t *testing.T) {
	a := Day{Year: 2024, Month: time.March, Day: 9}
	assert.True(t, a.Before(a.AddDays(1)))
	assert.False(t, a.AddDays(1).Before(a))
	assert.False(t, a.Before(a))
}
