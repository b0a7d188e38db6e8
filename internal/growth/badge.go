package growth

type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Stats are the derived figures badges are judged on.
type Stats struct {
	StreakDays        int
	VersesRead        int64
	SharedReflections int
	ReadBeforeEight   bool
}

type rule struct {
	badge  Badge
	earned func(Stats) bool
}

var badgeRules = []rule{
	{
		badge:  Badge{ID: "flame_alive", Name: "Chama Acesa", Description: "7 dias consecutivos de leitura"},
		earned: func(s Stats) bool { return s.StreakDays >= 7 },
	},
	{
		badge:  Badge{ID: "morning_star", Name: "Estrela da Manhã", Description: "Leitura antes das 8h"},
		earned: func(s Stats) bool { return s.ReadBeforeEight },
	},
	{
		badge:  Badge{ID: "scholar", Name: "Estudioso", Description: "50 versículos lidos"},
		earned: func(s Stats) bool { return s.VersesRead >= 50 },
	},
	{
		badge:  Badge{ID: "reflective", Name: "Reflexivo", Description: "20 interpretações compartilhadas"},
		earned: func(s Stats) bool { return s.SharedReflections >= 20 },
	},
}

// EarnedBadges returns the badges stats qualify for, in catalog order.
func EarnedBadges(s Stats) []Badge {
	out := []Badge{}
	for _, r := range badgeRules {
		if r.earned(s) {
			out = append(out, r.badge)
		}
	}
	return out
}
