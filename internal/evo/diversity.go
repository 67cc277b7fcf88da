package evo

import (
	"math"

	"territune/internal/model"
	"territune/internal/weights"
)

// Distance is the normalized average absolute deviation between two weight
// vectors: the mean over every key of |a-b| scaled by the key's default.
// Missing overrides fall back to defaults, so unmutated keys contribute 0.
func Distance(a, b map[string]float64) float64 {
	if len(weights.Keys) == 0 {
		return 0
	}
	var sum float64
	for _, k := range weights.Keys {
		def := weights.Default(k)
		if def == 0 {
			continue
		}
		sum += math.Abs(weights.Get(a, k)-weights.Get(b, k)) / def
	}
	return sum / float64(len(weights.Keys))
}

// Diversify greedily reorders a ranked pool to trade fitness against
// novelty: the top-ranked entry is taken first, then each step picks the
// remaining candidate maximizing composite + diversityWeight * (minimum
// distance to the already selected), recording that realized distance. The
// result is a permutation of the input.
func Diversify(ranked []model.RankedProfile, diversityWeight float64) []model.RankedProfile {
	if len(ranked) == 0 {
		return nil
	}

	remaining := append([]model.RankedProfile(nil), ranked...)
	vectors := make([]map[string]float64, len(remaining))
	for i := range remaining {
		vectors[i] = remaining[i].Profile.Overrides
	}

	selected := make([]model.RankedProfile, 0, len(remaining))
	var selectedVecs []map[string]float64

	take := func(idx int, dist float64) {
		entry := remaining[idx]
		entry.Diversity = dist
		selected = append(selected, entry)
		selectedVecs = append(selectedVecs, vectors[idx])
		remaining = append(remaining[:idx], remaining[idx+1:]...)
		vectors = append(vectors[:idx], vectors[idx+1:]...)
	}

	take(0, 0)
	for len(remaining) > 0 {
		bestIdx := 0
		bestScore := math.Inf(-1)
		bestDist := 0.0
		for i := range remaining {
			minDist := math.Inf(1)
			for _, sv := range selectedVecs {
				if d := Distance(vectors[i], sv); d < minDist {
					minDist = d
				}
			}
			score := remaining[i].Composite + diversityWeight*minDist
			if score > bestScore {
				bestScore = score
				bestIdx = i
				bestDist = minDist
			}
		}
		take(bestIdx, bestDist)
	}

	for i := range selected {
		selected[i].Rank = i + 1
	}
	return selected
}
