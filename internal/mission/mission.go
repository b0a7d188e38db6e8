package mission

import (
	"time"

	"github.com/taiwoajasa245/reading-engine-api/internal/engagement"
)

type Kind string

const (
	ReadCount       Kind = "read_count"
	ReflectionCount Kind = "reflection_count"
	AnyReadToday    Kind = "any_read_today"
)

type Requirement struct {
	Kind  Kind `json:"kind"`
	Count int  `json:"count"`
}

type Definition struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Points      int         `json:"points"`
	Requirement Requirement `json:"requirement"`
}

type Progress struct {
	Mission   Definition `json:"mission"`
	Current   int        `json:"current"`
	Completed bool       `json:"completed"`
}

// DailyCatalog is the fixed set of daily missions.
var DailyCatalog = []Definition{
	{
		ID:          "read_2_verses",
		Title:       "Leia 2 versículos hoje",
		Description: "Continue sua jornada de leitura",
		Points:      20,
		Requirement: Requirement{Kind: ReadCount, Count: 2},
	},
	{
		ID:          "morning_reading",
		Title:       "Leitura matinal",
		Description: "Complete sua leitura antes do almoço",
		Points:      15,
		Requirement: Requirement{Kind: AnyReadToday, Count: 1},
	},
	{
		ID:          "share_interpretation",
		Title:       "Compartilhe uma reflexão",
		Description: "Escreva como um versículo te tocou",
		Points:      25,
		Requirement: Requirement{Kind: ReflectionCount, Count: 1},
	},
}

// Find returns the catalog entry with the given id.
func Find(catalog []Definition, id string) (Definition, bool) {
	for _, d := range catalog {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

// Evaluate scores each mission against today's events only. Callers must already have
// filtered the events to today's window; see Today.
func Evaluate(catalog []Definition, readsToday []engagement.ReadingEvent, reflectionsToday []engagement.ReflectionEvent) []Progress {
	reads := len(readsToday)
	shared := engagement.SharedCount(reflectionsToday)

	out := make([]Progress, 0, len(catalog))
	for _, d := range catalog {
		var current int
		switch d.Requirement.Kind {
		case ReadCount:
			current = reads
		case ReflectionCount:
			current = shared
		case AnyReadToday:
			if reads > 0 {
				current = 1
			}
		}
		out = append(out, Progress{
			Mission:   d,
			Current:   current,
			Completed: current >= d.Requirement.Count,
		})
	}
	return out
}

// Today narrows the ledgers to the local day containing now and evaluates the catalog.
// now is taken once so the window cannot shift mid-evaluation.
func Today(catalog []Definition, reads []engagement.ReadingEvent, reflections []engagement.ReflectionEvent, now time.Time, loc *time.Location) []Progress {
	day := engagement.DayOf(now, loc)
	return Evaluate(catalog,
		engagement.ReadsOn(reads, day, loc),
		engagement.ReflectionsOn(reflections, day, loc),
	)
}
