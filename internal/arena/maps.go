package arena

import (
	"fmt"
	"math"

	"territune/internal/rng"
)

// Map types supported by the engine.
const (
	MapOpen    = "open"
	MapWalls   = "walls"
	MapIslands = "islands"
)

// MapTypes lists every supported map type.
var MapTypes = []string{MapOpen, MapWalls, MapIslands}

func generateMap(mapType string, w, h int, stream *rng.Stream) ([][]Cell, error) {
	grid := make([][]Cell, h)
	for y := range grid {
		grid[y] = make([]Cell, w)
	}

	switch mapType {
	case MapOpen:
	case MapWalls:
		// scattered rubble, roughly one cell in eight
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if stream.Float64() < 0.12 {
					grid[y][x].Terrain = Wall
				}
			}
		}
	case MapIslands:
		// wall bands split the board into rooms joined by random gaps
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				onBand := x%5 == 2 || y%5 == 2
				if onBand && stream.Float64() < 0.7 {
					grid[y][x].Terrain = Wall
				}
			}
		}
	default:
		return nil, fmt.Errorf("unknown map type: %s", mapType)
	}
	return grid, nil
}

// placeCapitals spreads the seats around a ring centered on the board and
// carves each landing spot free of walls.
func (g *Game) placeCapitals() {
	cx := float64(g.width-1) / 2
	cy := float64(g.height-1) / 2
	rx := cx * 0.8
	ry := cy * 0.8
	phase := g.stream.Float64() * 2 * math.Pi

	for i, seat := range g.seats {
		angle := phase + 2*math.Pi*float64(i)/float64(len(g.seats))
		x := clampInt(int(math.Round(cx+rx*math.Cos(angle))), 0, g.width-1)
		y := clampInt(int(math.Round(cy+ry*math.Sin(angle))), 0, g.height-1)
		x, y = g.nearestUnclaimed(x, y)
		c := &g.grid[y][x]
		c.Terrain = Plain
		c.Owner = seat
		c.Army = capitalStartArmy
		c.Capital = true
		g.capitals[seat] = [2]int{x, y}
	}
}

// nearestUnclaimed finds the closest cell not already holding a capital,
// scanning outward in growing rings. Rounding on small boards can land two
// seats on the same square.
func (g *Game) nearestUnclaimed(x, y int) (int, int) {
	if !g.grid[y][x].Capital {
		return x, y
	}
	for radius := 1; radius < g.width+g.height; radius++ {
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= g.width || ny >= g.height {
					continue
				}
				if !g.grid[ny][nx].Capital {
					return nx, ny
				}
			}
		}
	}
	return x, y
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
