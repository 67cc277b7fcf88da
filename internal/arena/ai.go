package arena

import "territune/internal/weights"

type move struct {
	fromX, fromY int
	toX, toY     int
	score        float64
}

var directions = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// pickMove scores every legal single-step move for the seat and returns the
// best one. Scoring is entirely weight-driven; this is the surface the
// harness tunes.
func (g *Game) pickMove(seat string) (move, bool) {
	w := g.seatWeights(seat)
	span := float64(g.width + g.height)
	ownCap := g.capitals[seat]

	best := move{score: 0}
	found := false
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			src := &g.grid[y][x]
			if src.Owner != seat || src.Army < 2 {
				continue
			}
			moving := src.Army - 1
			for _, d := range directions {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || nx >= g.width || ny >= g.height {
					continue
				}
				dst := &g.grid[ny][nx]
				if dst.Terrain == Wall {
					continue
				}
				score := g.scoreMove(seat, w, src, dst, moving, nx, ny, span, ownCap)
				if !found || score > best.score {
					best = move{fromX: x, fromY: y, toX: nx, toY: ny, score: score}
					found = true
				}
			}
		}
	}
	return best, found
}

func (g *Game) scoreMove(seat string, w map[string]float64, src, dst *Cell, moving int, nx, ny int, span float64, ownCap [2]int) float64 {
	var score float64

	switch {
	case dst.Owner == seat:
		score += weights.Get(w, weights.Reinforce)
		score += weights.Get(w, weights.Consolidate) * 0.5
		if dst.Capital {
			score += weights.Get(w, weights.CapitalGuard)
		}
		score -= weights.Get(w, weights.SplitPenalty)
	case dst.Owner == "":
		score += weights.Get(w, weights.Expansion)
		score += weights.Get(w, weights.LandValue) * 0.5
		score += weights.Get(w, weights.OpenSpace) * g.freeNeighborRatio(nx, ny)
		score += weights.Get(w, weights.Explore) * 0.3
		if g.touchesEnemy(seat, nx, ny) {
			score += weights.Get(w, weights.Frontier)
		}
	default:
		diff := float64(moving - dst.Army)
		if diff > 0 {
			score += weights.Get(w, weights.Attack)
			score += weights.Get(w, weights.FocusFire) * min64(diff, 10) / 10
			score += weights.Get(w, weights.BorderPressure) * 0.5
		} else {
			score += weights.Get(w, weights.Risk) * 0.5
			score -= weights.Get(w, weights.OverextendPenalty)
			score += weights.Get(w, weights.Counterattack) * 0.3
		}
		if dst.Capital {
			score += weights.Get(w, weights.Siege)*2 + weights.Get(w, weights.Raid)
		}
	}

	// positional shaping
	score += weights.Get(w, weights.EnemyDistance) * (1 - g.enemyCapitalDistance(seat, nx, ny)/span)
	score -= weights.Get(w, weights.CapitalDistance) * manhattan(nx, ny, ownCap[0], ownCap[1]) / span
	score += weights.Get(w, weights.Tempo) * min64(float64(moving), 20) / 20
	score += weights.Get(w, weights.ArmyMass) * min64(float64(src.Army), 40) / 40
	if g.capitalThreatened(seat) && manhattan(nx, ny, ownCap[0], ownCap[1]) <= 2 {
		score += weights.Get(w, weights.Defense) + weights.Get(w, weights.Retreat)*0.5
	}

	// tie-jitter
	score += weights.Get(w, weights.Noise) * g.stream.Range(-1, 1)
	return score
}

func (g *Game) freeNeighborRatio(x, y int) float64 {
	free := 0
	for _, d := range directions {
		nx, ny := x+d[0], y+d[1]
		if nx < 0 || ny < 0 || nx >= g.width || ny >= g.height {
			continue
		}
		c := &g.grid[ny][nx]
		if c.Terrain != Wall && c.Owner == "" {
			free++
		}
	}
	return float64(free) / 4
}

func (g *Game) touchesEnemy(seat string, x, y int) bool {
	for _, d := range directions {
		nx, ny := x+d[0], y+d[1]
		if nx < 0 || ny < 0 || nx >= g.width || ny >= g.height {
			continue
		}
		owner := g.grid[ny][nx].Owner
		if owner != "" && owner != seat {
			return true
		}
	}
	return false
}

func (g *Game) enemyCapitalDistance(seat string, x, y int) float64 {
	best := float64(g.width + g.height)
	for other, cap := range g.capitals {
		if other == seat || !g.isActive(other) {
			continue
		}
		if d := manhattan(x, y, cap[0], cap[1]); d < best {
			best = d
		}
	}
	return best
}

func (g *Game) capitalThreatened(seat string) bool {
	cap := g.capitals[seat]
	for _, d := range directions {
		nx, ny := cap[0]+d[0], cap[1]+d[1]
		if nx < 0 || ny < 0 || nx >= g.width || ny >= g.height {
			continue
		}
		owner := g.grid[ny][nx].Owner
		if owner != "" && owner != seat {
			return true
		}
	}
	return false
}

func (g *Game) isActive(seat string) bool {
	for _, s := range g.active {
		if s == seat {
			return true
		}
	}
	return false
}

func manhattan(x1, y1, x2, y2 int) float64 {
	dx := x1 - x2
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y2
	if dy < 0 {
		dy = -dy
	}
	return float64(dx + dy)
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
