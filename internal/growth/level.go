package growth

import (
	"errors"
	"fmt"
	"math"
)

// Unbounded marks the open upper end of the top level.
const Unbounded int64 = math.MaxInt64

type Level struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MinPoints   int64  `json:"min_points"`
	MaxPoints   int64  `json:"max_points"`
}

// Levels must stay contiguous from zero with an unbounded top; Validate checks this.
var Levels = []Level{
	{ID: "seed", Name: "Semente", Description: "Iniciando a jornada", MinPoints: 0, MaxPoints: 100},
	{ID: "root", Name: "Raiz", Description: "Criando fundamentos", MinPoints: 101, MaxPoints: 500},
	{ID: "trunk", Name: "Tronco", Description: "Fortalecendo a fé", MinPoints: 501, MaxPoints: 1500},
	{ID: "flower", Name: "Flor", Description: "Florescendo espiritualmente", MinPoints: 1501, MaxPoints: 3000},
	{ID: "tree", Name: "Árvore", Description: "Maduro na palavra", MinPoints: 3001, MaxPoints: Unbounded},
}

// Validate checks that levels cover [0, ∞) without gaps or overlaps.
func Validate(levels []Level) error {
	if len(levels) == 0 {
		return errors.New("no levels defined")
	}
	if levels[0].MinPoints != 0 {
		return fmt.Errorf("level %q must start at 0, starts at %d", levels[0].ID, levels[0].MinPoints)
	}
	for i, l := range levels {
		if l.MaxPoints < l.MinPoints {
			return fmt.Errorf("level %q has max %d below min %d", l.ID, l.MaxPoints, l.MinPoints)
		}
		if i == 0 {
			continue
		}
		prev := levels[i-1]
		if prev.MaxPoints == Unbounded || l.MinPoints != prev.MaxPoints+1 {
			return fmt.Errorf("level %q does not follow %q contiguously", l.ID, prev.ID)
		}
	}
	if top := levels[len(levels)-1]; top.MaxPoints != Unbounded {
		return fmt.Errorf("top level %q must be unbounded", top.ID)
	}
	return nil
}

// LevelFor maps cumulative points to a level. Negative totals are treated as zero.
func LevelFor(points int64) Level {
	return levelIn(Levels, points)
}

func levelIn(levels []Level, points int64) Level {
	if points < 0 {
		points = 0
	}
	for _, l := range levels {
		if points >= l.MinPoints && points <= l.MaxPoints {
			return l
		}
	}
	return levels[len(levels)-1]
}

type LevelProgress struct {
	Current      Level  `json:"current"`
	Next         *Level `json:"next,omitempty"`
	PointsToNext int64  `json:"points_to_next"`
	Percent      int    `json:"percent"`
}

// ProgressFor reports how far points are through the current level.
func ProgressFor(points int64) LevelProgress {
	if points < 0 {
		points = 0
	}
	current := LevelFor(points)
	p := LevelProgress{Current: current, Percent: 100}

	for i, l := range Levels {
		if l.ID != current.ID || i == len(Levels)-1 {
			continue
		}
		next := Levels[i+1]
		p.Next = &next
		p.PointsToNext = next.MinPoints - points
		span := next.MinPoints - current.MinPoints
		p.Percent = int((points - current.MinPoints) * 100 / span)
	}
	return p
}
