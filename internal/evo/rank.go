package evo

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"territune/internal/model"
	"territune/internal/rng"
	"territune/internal/tournament"
)

// stdFloor is the variance threshold below which a bracket is treated as
// carrying no signal.
const stdFloor = 1e-6

// Rank turns the round's accumulated statistics into the official ordering.
// Per active bracket every profile's raw point average is z-scored against
// the round's population; the composite score is the mean of those z-scores
// over the active brackets. Order: composite descending, then raw win count
// descending, then average turns ascending. The pool is pre-shuffled with
// the round stream so exact ties break reproducibly but without positional
// bias.
func Rank(pop []model.Profile, agg *tournament.Aggregator, brackets []model.BracketConfig, stream *rng.Stream) []model.RankedProfile {
	entries := make([]model.RankedProfile, 0, len(pop))
	for _, p := range pop {
		e := model.RankedProfile{
			Profile:  p,
			Brackets: map[string]model.BracketScore{},
		}
		if s := agg.Stat(p.ID); s != nil {
			e.Games = s.Games
			e.Wins = s.Wins
			e.Decisive = s.Decisive
			e.AvgTurns = s.AvgTurns()
			e.AvgPoints = s.AvgPoints()
			e.MapGames = copyCounts(s.MapGames)
		}
		entries = append(entries, e)
	}

	var active int
	for _, cfg := range brackets {
		if !cfg.Active() {
			continue
		}
		active++
		normalizeBracket(entries, agg, cfg)
	}
	if active > 0 {
		for i := range entries {
			var zSum, bSum float64
			for _, cfg := range brackets {
				if !cfg.Active() {
					continue
				}
				bs := entries[i].Brackets[string(cfg.Kind)]
				zSum += bs.NormScore
				bSum += bs.BonusStrength
			}
			entries[i].Composite = zSum / float64(active)
			entries[i].BonusStrength = bSum / float64(active)
		}
	}

	stream.Shuffle(len(entries), func(i, j int) { entries[i], entries[j] = entries[j], entries[i] })
	sort.SliceStable(entries, func(a, b int) bool {
		if entries[a].Composite != entries[b].Composite {
			return entries[a].Composite > entries[b].Composite
		}
		if entries[a].Wins != entries[b].Wins {
			return entries[a].Wins > entries[b].Wins
		}
		return entries[a].AvgTurns < entries[b].AvgTurns
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// normalizeBracket fills every entry's per-bracket score block for one
// bracket. A near-zero standard deviation means no signal: all normalized
// scores are 0 rather than blowing up the division.
func normalizeBracket(entries []model.RankedProfile, agg *tournament.Aggregator, cfg model.BracketConfig) {
	raws := make([]float64, len(entries))
	bonuses := make([]float64, len(entries))
	lines := make([]*tournament.StatLine, len(entries))
	for i := range entries {
		if s := agg.Stat(entries[i].Profile.ID); s != nil {
			if line, ok := s.Brackets[cfg.Kind]; ok {
				lines[i] = line
				raws[i] = line.AvgPoints()
				bonuses[i] = line.AvgBonus()
			}
		}
	}

	mean, std := stat.MeanStdDev(raws, nil)
	usable := !math.IsNaN(std) && std > stdFloor
	_, bonusStd := stat.MeanStdDev(bonuses, nil)
	bonusUsable := !math.IsNaN(bonusStd) && bonusStd > stdFloor

	for i := range entries {
		bs := model.BracketScore{AvgPoints: raws[i]}
		if line := lines[i]; line != nil {
			bs.Games = line.Games
			bs.Wins = line.Wins
			bs.Decisive = line.Decisive
		}
		if usable {
			bs.NormScore = (raws[i] - mean) / std
		}
		if bonusUsable {
			// one-sided signal: scaled by its own spread but not centered
			bs.BonusStrength = bonuses[i] / bonusStd
		}
		entries[i].Brackets[string(cfg.Kind)] = bs
	}
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
