// Package evo holds the generation-building and selection machinery of the
// tuning harness: bounded multiplicative mutation, cross-bracket ranking,
// diversity-aware reordering, and survivor labeling.
package evo

import (
	"fmt"
	"math"

	"territune/internal/model"
	"territune/internal/rng"
	"territune/internal/weights"
)

const (
	// MaxBases is how many champions seed a round.
	MaxBases = 4
	// variants mutated from each base, on top of the base itself
	variantsPerBase = 2
	// variants mutated from the pure default vector each round
	defaultAnchored = 4
	// weightFloor keeps every mutated weight strictly positive; a zero or
	// negative weight makes the heuristic degenerate.
	weightFloor = 0.01
)

// BuildPopulation expands up to MaxBases base profiles into a round's
// population: each base plus two jittered variants of it, plus four variants
// of the pure default vector under the larger defaultJitter range. The
// default-anchored variants reintroduce diversity around the defaults every
// round so the search cannot collapse onto an early local optimum.
func BuildPopulation(bases []model.Profile, round int, baseJitter, defaultJitter float64, stream *rng.Stream) []model.Profile {
	if len(bases) > MaxBases {
		bases = bases[:MaxBases]
	}

	pop := make([]model.Profile, 0, len(bases)*(1+variantsPerBase)+defaultAnchored)
	for i, base := range bases {
		pop = append(pop, base)
		source := weights.Effective(base.Overrides)
		for v := 0; v < variantsPerBase; v++ {
			id := fmt.Sprintf("r%d-b%d-v%d", round, i, v)
			pop = append(pop, mutated(id, source, baseJitter, stream))
		}
	}
	pure := weights.Defaults()
	for d := 0; d < defaultAnchored; d++ {
		id := fmt.Sprintf("r%d-d%d", round, d)
		pop = append(pop, mutated(id, pure, defaultJitter, stream))
	}
	return pop
}

// mutated jitters every weight key multiplicatively: delta uniform in
// [-jitter, +jitter], next = max(floor, v*(1+delta)), rounded to 3 decimals.
func mutated(id string, source map[string]float64, jitter float64, stream *rng.Stream) model.Profile {
	overrides := make(map[string]float64, len(weights.Keys))
	for _, k := range weights.Keys {
		delta := stream.Range(-jitter, jitter)
		next := source[k] * (1 + delta)
		if next < weightFloor {
			next = weightFloor
		}
		overrides[k] = math.Round(next*1000) / 1000
	}
	return model.Profile{ID: id, Overrides: overrides}
}

// Rebase re-identifies the top selections of a round as the next round's
// base profiles, copying weights verbatim.
func Rebase(selected []model.RankedProfile, nextRound int) []model.Profile {
	n := len(selected)
	if n > MaxBases {
		n = MaxBases
	}
	bases := make([]model.Profile, 0, n)
	for i := 0; i < n; i++ {
		overrides := make(map[string]float64, len(selected[i].Profile.Overrides))
		for k, v := range selected[i].Profile.Overrides {
			overrides[k] = v
		}
		bases = append(bases, model.Profile{
			ID:        fmt.Sprintf("r%d-b%d", nextRound, i),
			Overrides: overrides,
		})
	}
	return bases
}
