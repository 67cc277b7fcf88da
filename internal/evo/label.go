package evo

import (
	"hash/fnv"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"territune/internal/model"
	"territune/internal/weights"
)

// Trait is one of the archetype categories survivors are labeled with.
type Trait string

const (
	TraitWarlord    Trait = "warlord"
	TraitSettler    Trait = "settler"
	TraitMagnate    Trait = "magnate"
	TraitWarden     Trait = "warden"
	TraitGambler    Trait = "gambler"
	TraitStrategist Trait = "strategist"
)

// traitOrder fixes iteration order for all trait computations.
var traitOrder = []Trait{
	TraitWarlord, TraitSettler, TraitMagnate,
	TraitWarden, TraitGambler, TraitStrategist,
}

// traitKeys maps each trait to the weight-key pair whose default-relative
// ratios define the trait score.
var traitKeys = map[Trait][2]string{
	TraitWarlord:    {weights.Attack, weights.FocusFire},
	TraitSettler:    {weights.Expansion, weights.Frontier},
	TraitMagnate:    {weights.Income, weights.LandValue},
	TraitWarden:     {weights.Defense, weights.CapitalGuard},
	TraitGambler:    {weights.Risk, weights.Noise},
	TraitStrategist: {weights.Patience, weights.Endgame},
}

var jobsByTrait = map[Trait][]string{
	TraitWarlord:    {"Warlord", "Marshal", "Brigadier", "Raider"},
	TraitSettler:    {"Settler", "Pioneer", "Homesteader", "Surveyor"},
	TraitMagnate:    {"Magnate", "Broker", "Merchant", "Tycoon"},
	TraitWarden:     {"Warden", "Sentinel", "Castellan", "Bulwark"},
	TraitGambler:    {"Gambler", "Trickster", "Maverick", "Wildcard"},
	TraitStrategist: {"Strategist", "Sage", "Chancellor", "Tactician"},
}

var firstNames = []string{
	"Ada", "Boris", "Cleo", "Dmitri", "Edda", "Felix", "Greta", "Hugo",
	"Iris", "Jasper", "Kira", "Lazlo", "Mira", "Nils", "Olga", "Pavel",
	"Quinn", "Rosa", "Sven", "Tilda", "Ulric", "Vera", "Wren", "Yuri",
}

// traitScore is the profile's affinity for a trait: the average of its two
// trait keys' ratios against their defaults.
func traitScore(overrides map[string]float64, trait Trait) float64 {
	keys := traitKeys[trait]
	var sum float64
	for _, k := range keys {
		def := weights.Default(k)
		if def == 0 {
			continue
		}
		sum += weights.Get(overrides, k) / def
	}
	return sum / 2
}

// AssignLabels gives each profile a stable archetype label of the form
// "<Job> <Name>". Trait z-scores are computed across the batch; profiles
// claim traits in descending order of their strongest affinity so the batch
// spreads over distinct archetypes, then a deterministic hash of profile id
// and trait picks the words. Labels already in used are avoided by bounded
// probing; exhaustion falls back to the hashed pair rather than failing.
func AssignLabels(profiles []model.Profile, used map[string]bool) []model.Profile {
	if used == nil {
		used = map[string]bool{}
	}
	n := len(profiles)
	if n == 0 {
		return nil
	}

	// z-score each trait across the batch
	zs := make([]map[Trait]float64, n)
	for i := range zs {
		zs[i] = make(map[Trait]float64, len(traitOrder))
	}
	for _, trait := range traitOrder {
		scores := make([]float64, n)
		for i, p := range profiles {
			scores[i] = traitScore(p.Overrides, trait)
		}
		mean, std := stat.MeanStdDev(scores, nil)
		for i := range profiles {
			if math.IsNaN(std) || std < stdFloor {
				zs[i][trait] = 0
				continue
			}
			zs[i][trait] = (scores[i] - mean) / std
		}
	}

	bestZ := func(i int) float64 {
		best := math.Inf(-1)
		for _, trait := range traitOrder {
			if zs[i][trait] > best {
				best = zs[i][trait]
			}
		}
		return best
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return bestZ(order[a]) > bestZ(order[b])
	})

	out := make([]model.Profile, n)
	copy(out, profiles)
	claimed := map[Trait]bool{}
	for _, i := range order {
		trait := pickTrait(zs[i], claimed)
		claimed[trait] = true
		label := labelFor(out[i].ID, trait, used)
		used[label] = true
		out[i].Label = label
	}
	return out
}

// pickTrait returns the profile's highest-z unclaimed trait, or its best
// trait outright when every category is already taken.
func pickTrait(z map[Trait]float64, claimed map[Trait]bool) Trait {
	ranked := append([]Trait(nil), traitOrder...)
	sort.SliceStable(ranked, func(a, b int) bool {
		return z[ranked[a]] > z[ranked[b]]
	})
	for _, trait := range ranked {
		if !claimed[trait] {
			return trait
		}
	}
	return ranked[0]
}

// labelFor hashes profileID+":"+trait into a job/name pair and steps
// forward through names, then jobs, until the label is unused. If the whole
// cross-product is taken it falls back to the trait's first job and first
// name; a duplicate label must never block producing tuned weights.
func labelFor(profileID string, trait Trait, used map[string]bool) string {
	jobs := jobsByTrait[trait]
	h := fnv.New64a()
	h.Write([]byte(profileID + ":" + string(trait)))
	sum := h.Sum64()
	j0 := int(sum % uint64(len(jobs)))
	n0 := int((sum / uint64(len(jobs))) % uint64(len(firstNames)))

	total := len(jobs) * len(firstNames)
	for step := 0; step < total; step++ {
		name := firstNames[(n0+step)%len(firstNames)]
		job := jobs[(j0+step/len(firstNames))%len(jobs)]
		label := job + " " + name
		if !used[label] {
			return label
		}
	}
	return jobs[0] + " " + firstNames[0]
}
