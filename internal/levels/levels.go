// Package levels maps total XP onto the gamification level ladder.
package levels

// Level is one rung of the ladder. Max is -1 for the open-ended top level.
type Level struct {
	Number int
	Name   string
	Min    int
	Max    int
}

// Table is the level ladder, lowest first.
var Table = []Level{
	{Number: 1, Name: "iniciante", Min: 0, Max: 999},
	{Number: 2, Name: "explorador", Min: 1000, Max: 2999},
	{Number: 3, Name: "especialista", Min: 3000, Max: 6999},
	{Number: 4, Name: "mestre", Min: 7000, Max: 14999},
	{Number: 5, Name: "quantum_guardian", Min: 15000, Max: -1},
}

var displayNames = map[string]string{
	"iniciante":        "Iniciante",
	"explorador":       "Explorador",
	"especialista":     "Especialista",
	"mestre":           "Mestre",
	"quantum_guardian": "Quantum Guardian",
}

// DisplayName returns the label shown for a level name.
func DisplayName(name string) string {
	if d, ok := displayNames[name]; ok {
		return d
	}
	return name
}

// Stats is a user's position on the ladder.
type Stats struct {
	Level     Level
	TotalXP   int
	CurrentXP int // XP earned inside the current level
	Span      int // XP the current level spans; for the top level, CurrentXP or 1
	Remaining int // XP until the next level, 0 at the top
}

// Progress is CurrentXP as a fraction of Span.
func (s Stats) Progress() float64 {
	if s.Span <= 0 {
		return 0
	}
	p := float64(s.CurrentXP) / float64(s.Span)
	if p > 1 {
		return 1
	}
	return p
}

// Compute places totalXP on the ladder. Negative XP counts as zero.
func Compute(totalXP int) Stats {
	if totalXP < 0 {
		totalXP = 0
	}

	idx := 0
	for i, l := range Table {
		if totalXP >= l.Min && (l.Max < 0 || totalXP <= l.Max) {
			idx = i
			break
		}
	}
	cur := Table[idx]

	s := Stats{
		Level:     cur,
		TotalXP:   totalXP,
		CurrentXP: totalXP - cur.Min,
	}
	if idx+1 < len(Table) {
		next := Table[idx+1]
		s.Span = next.Min - cur.Min
		s.Remaining = next.Min - totalXP
	} else {
		s.Span = s.CurrentXP
		if s.Span == 0 {
			s.Span = 1
		}
	}
	return s
}
