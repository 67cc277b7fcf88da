// Package tournament schedules and runs the bracketed evaluation of one
// round's population: group formation under a per-profile match quota,
// positional-fairness seat rotation, deterministic per-match seeds, scoring,
// and per-profile statistics.
package tournament

import (
	"fmt"
	"sort"

	"territune/internal/match"
	"territune/internal/model"
	"territune/internal/rng"
)

// Task is one independently runnable match within a bracket.
type Task struct {
	Index   int
	Group   int
	Bracket model.BracketKind
	Spec    match.Spec
}

// Strategy forms groups of population positions. Implementations must be
// deterministic functions of their arguments.
type Strategy interface {
	Name() string
	// NextGroup returns playerCount positions in [0,n) for group groupIndex.
	// counts holds the matches already scheduled per position and quota is
	// the per-position match quota the planner is filling toward.
	NextGroup(n, playerCount, groupIndex, quota int, counts []int) []int
}

// CoprimeRotation strides through the shuffled population with a step
// coprime to its size, so consecutive groups cycle through every start
// position before any repeats. When the stride lands on a group that would
// re-cover a position already past quota while others still lag, the group
// is formed from the least-played positions instead, so no position ends up
// more than one group's worth of matches over quota.
type CoprimeRotation struct{}

func (CoprimeRotation) Name() string { return "coprime" }

func (CoprimeRotation) NextGroup(n, playerCount, groupIndex, quota int, counts []int) []int {
	step := rotationStep(n)
	start := (groupIndex * step) % n
	members := make([]int, playerCount)
	for j := range members {
		members[j] = (start + j) % n
	}
	for _, m := range members {
		if counts[m] > quota {
			return LeastGamesFirst{}.NextGroup(n, playerCount, groupIndex, quota, counts)
		}
	}
	return members
}

// rotationStep picks the smallest step >= n/2+1 with gcd(step, n) == 1.
func rotationStep(n int) int {
	if n <= 1 {
		return 1
	}
	for step := n/2 + 1; ; step++ {
		if gcd(step, n) == 1 {
			return step
		}
	}
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// LeastGamesFirst always groups the positions furthest behind quota,
// breaking count ties by position.
type LeastGamesFirst struct{}

func (LeastGamesFirst) Name() string { return "least_games" }

func (LeastGamesFirst) NextGroup(n, playerCount, _, _ int, counts []int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if counts[order[a]] != counts[order[b]] {
			return counts[order[a]] < counts[order[b]]
		}
		return order[a] < order[b]
	})
	return order[:playerCount]
}

// StrategyByName resolves a configured scheduler name. Empty means coprime.
func StrategyByName(name string) (Strategy, error) {
	switch name {
	case "", "coprime":
		return CoprimeRotation{}, nil
	case "least_games":
		return LeastGamesFirst{}, nil
	default:
		return nil, fmt.Errorf("unknown scheduler strategy: %s", name)
	}
}

// PlanBracket expands one bracket into its full deterministic task list:
// groups are formed until every profile has at least cfg.MatchQuota matches
// scheduled, and each group plays every map type under every seat rotation.
// Match seeds derive from (runSeed, round, group, map, rotation, seats), so
// the plan is a pure function of its inputs.
func PlanBracket(pop []model.Profile, cfg model.BracketConfig, mapTypes []string, strategy Strategy, stream *rng.Stream, runSeed uint32, round int) ([]Task, error) {
	n := len(pop)
	p := cfg.PlayerCount
	if p > n {
		return nil, fmt.Errorf("bracket %s needs %d players but population has only %d profiles", cfg.Kind, p, n)
	}
	if !cfg.Active() {
		return nil, nil
	}
	if len(mapTypes) == 0 {
		return nil, fmt.Errorf("bracket %s has no map types", cfg.Kind)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	stream.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })

	perGroup := len(mapTypes) * p
	counts := make([]int, n)
	var tasks []Task

	for groupIndex := 0; belowQuota(counts, cfg.MatchQuota); groupIndex++ {
		members := strategy.NextGroup(n, p, groupIndex, cfg.MatchQuota, counts)
		group := make([]model.Profile, p)
		for j, pos := range members {
			group[j] = pop[order[pos]]
		}
		for mapIdx, mapType := range mapTypes {
			for rot := 0; rot < p; rot++ {
				seed := rng.DeriveSeed(runSeed,
					uint32(round), uint32(groupIndex), uint32(mapIdx), uint32(rot), uint32(p))
				tasks = append(tasks, Task{
					Index:   len(tasks),
					Group:   groupIndex,
					Bracket: cfg.Kind,
					Spec: match.Spec{
						Profiles:    group,
						Seed:        seed,
						MapType:     mapType,
						BoardWidth:  cfg.BoardWidth,
						BoardHeight: cfg.BoardHeight,
						MaxTurns:    cfg.MaxTurns,
						Rotation:    rot,
					},
				})
			}
		}
		for _, pos := range members {
			counts[pos] += perGroup
		}
	}
	return tasks, nil
}

func belowQuota(counts []int, quota int) bool {
	for _, c := range counts {
		if c < quota {
			return true
		}
	}
	return false
}
