package tournament

import (
	"sort"

	"territune/internal/model"
)

// StatLine is a running totals block, kept both globally and per bracket.
type StatLine struct {
	Games    int
	Wins     int
	Decisive int
	Turns    int
	Points   float64
	Bonus    float64
}

// ProfileStat accumulates one profile's results over a round.
type ProfileStat struct {
	StatLine
	Brackets map[model.BracketKind]*StatLine
	MapGames map[string]int
}

// AvgPoints is the profile's raw per-game point average.
func (s *StatLine) AvgPoints() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.Points / float64(s.Games)
}

// AvgBonus is the profile's per-game decisive-bonus average.
func (s *StatLine) AvgBonus() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.Bonus / float64(s.Games)
}

// AvgTurns is the mean turn count of the profile's games.
func (s *StatLine) AvgTurns() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Turns) / float64(s.Games)
}

// Aggregator folds match outcomes into per-profile statistics. It is not
// safe for concurrent use; the runner applies outcomes from a single
// goroutine.
type Aggregator struct {
	byProfile map[string]*ProfileStat
}

func NewAggregator() *Aggregator {
	return &Aggregator{byProfile: make(map[string]*ProfileStat)}
}

// Apply scores one match under its bracket's config and accumulates the
// result. Placement index i of P seats earns P-1-i base points; a decisive
// winner additionally earns a bonus scaled by how far under the turn cap the
// game ended.
func (a *Aggregator) Apply(out model.MatchOutcome, cfg model.BracketConfig) {
	p := len(out.PlacementOrder)
	for i, id := range out.PlacementOrder {
		points := float64(p - 1 - i)
		if points < 0 {
			points = 0
		}
		bonus := 0.0
		win := i == 0
		decisiveWin := win && out.WonDecisively
		if decisiveWin && cfg.MaxTurns > 0 {
			frac := float64(cfg.MaxTurns-out.TurnsPlayed) / float64(cfg.MaxTurns)
			if frac < 0 {
				frac = 0
			}
			bonus = frac * cfg.WinBonus
		}

		stat := a.stat(id)
		apply := func(line *StatLine) {
			line.Games++
			if win {
				line.Wins++
			}
			if decisiveWin {
				line.Decisive++
			}
			line.Turns += out.TurnsPlayed
			line.Points += points
			line.Bonus += bonus
		}
		apply(&stat.StatLine)
		apply(a.bracketLine(stat, cfg.Kind))
		stat.MapGames[out.MapType]++
	}
}

func (a *Aggregator) stat(id string) *ProfileStat {
	s, ok := a.byProfile[id]
	if !ok {
		s = &ProfileStat{
			Brackets: make(map[model.BracketKind]*StatLine),
			MapGames: make(map[string]int),
		}
		a.byProfile[id] = s
	}
	return s
}

func (a *Aggregator) bracketLine(s *ProfileStat, kind model.BracketKind) *StatLine {
	line, ok := s.Brackets[kind]
	if !ok {
		line = &StatLine{}
		s.Brackets[kind] = line
	}
	return line
}

// Stat returns the accumulated stats for a profile, or nil if it never
// played.
func (a *Aggregator) Stat(id string) *ProfileStat {
	return a.byProfile[id]
}

// ProfileIDs returns every profile seen so far, sorted.
func (a *Aggregator) ProfileIDs() []string {
	ids := make([]string, 0, len(a.byProfile))
	for id := range a.byProfile {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
