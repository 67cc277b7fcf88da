// Package arena implements the turn-based territory-capture engine the
// tuning harness plays its matches on. Seats start from capitals on a grid,
// grow armies, and capture land; a seat is eliminated when its capital falls
// or it holds no land. The game consumes only the random stream it was
// constructed with, so a match is a pure function of its seed.
package arena

import (
	"errors"
	"fmt"

	"territune/internal/rng"
	"territune/internal/weights"
)

// Terrain classifies a grid cell.
type Terrain byte

const (
	Plain Terrain = iota
	Wall
)

// Cell is one grid square. Owner is a seat id, or empty for neutral ground.
type Cell struct {
	Owner   string
	Army    int
	Terrain Terrain
	Capital bool
}

// Options configures a new game.
type Options struct {
	Width  int
	Height int
}

const (
	capitalStartArmy = 10
	// every reinforceCycle full turn cycles, all owned land gains one army
	reinforceCycle = 16
)

// Game is one match in progress.
type Game struct {
	width, height int
	grid          [][]Cell
	seats         []string
	active        []string
	profiles      map[string]map[string]float64
	capitals      map[string][2]int
	stream        *rng.Stream

	next    int // index into active of the seat to move
	cycle   int // completed full turn cycles
	started bool
}

// New builds a game for the given seats on a freshly generated map. The seat
// list fixes the initial turn order.
func New(seats []string, mapType string, stream *rng.Stream, opts Options) (*Game, error) {
	if len(seats) < 2 {
		return nil, fmt.Errorf("need at least 2 seats, got %d", len(seats))
	}
	if stream == nil {
		return nil, errors.New("random stream is required")
	}
	if opts.Width < 6 || opts.Height < 6 {
		return nil, fmt.Errorf("board %dx%d too small", opts.Width, opts.Height)
	}
	grid, err := generateMap(mapType, opts.Width, opts.Height, stream)
	if err != nil {
		return nil, err
	}

	g := &Game{
		width:    opts.Width,
		height:   opts.Height,
		grid:     grid,
		seats:    append([]string(nil), seats...),
		profiles: make(map[string]map[string]float64, len(seats)),
		capitals: make(map[string][2]int, len(seats)),
		stream:   stream,
	}
	g.placeCapitals()
	return g, nil
}

// SetProfiles injects the effective weight vector each seat plays with.
// Seats without an entry fall back to the default vector.
func (g *Game) SetProfiles(bySeat map[string]map[string]float64) {
	for seat, w := range bySeat {
		g.profiles[seat] = w
	}
}

// Start activates all seats in their initial order.
func (g *Game) Start() error {
	if g.started {
		return errors.New("game already started")
	}
	g.started = true
	g.active = append([]string(nil), g.seats...)
	return nil
}

// Over reports whether at most one seat remains.
func (g *Game) Over() bool {
	return g.started && len(g.active) <= 1
}

// TurnCount returns the number of completed full turn cycles.
func (g *Game) TurnCount() int {
	return g.cycle
}

// SeatOrder returns the remaining seats in current turn order. The slice
// shrinks as seats are eliminated.
func (g *Game) SeatOrder() []string {
	return append([]string(nil), g.active...)
}

// Grid exposes the board for land tallying. Callers must not modify it.
func (g *Game) Grid() [][]Cell {
	return g.grid
}

// AdvanceOneAITurn lets the next seat in order take one heuristic action.
func (g *Game) AdvanceOneAITurn() error {
	if !g.started {
		return errors.New("game not started")
	}
	if g.Over() {
		return errors.New("game is over")
	}

	seat := g.active[g.next]
	g.applyIncome(seat)
	if mv, ok := g.pickMove(seat); ok {
		g.executeMove(seat, mv)
	}

	g.advanceCursor(seat)
	return nil
}

func (g *Game) applyIncome(seat string) {
	cap := g.capitals[seat]
	if c := &g.grid[cap[1]][cap[0]]; c.Owner == seat {
		c.Army++
	}
	// reinforcement wave: all owned land grows once per reinforceCycle cycles
	if g.cycle > 0 && g.cycle%reinforceCycle == 0 {
		for y := 0; y < g.height; y++ {
			for x := 0; x < g.width; x++ {
				c := &g.grid[y][x]
				if c.Owner == seat && !c.Capital {
					c.Army++
				}
			}
		}
	}
}

// advanceCursor moves to the next active seat, accounting for eliminations
// that may have shifted or shrunk the active list during seat's move.
func (g *Game) advanceCursor(moved string) {
	idx := -1
	for i, s := range g.active {
		if s == moved {
			idx = i
			break
		}
	}
	if idx < 0 {
		// mover was eliminated by its own action (suicidal capital trade)
		if g.next >= len(g.active) {
			g.next = 0
			g.cycle++
		}
		return
	}
	g.next = idx + 1
	if g.next >= len(g.active) {
		g.next = 0
		g.cycle++
	}
}

func (g *Game) executeMove(seat string, mv move) {
	src := &g.grid[mv.fromY][mv.fromX]
	dst := &g.grid[mv.toY][mv.toX]
	moving := src.Army - 1
	src.Army = 1

	switch {
	case dst.Owner == seat:
		dst.Army += moving
	case moving > dst.Army:
		loser := dst.Owner
		wasCapital := dst.Capital
		dst.Owner = seat
		dst.Army = moving - dst.Army
		dst.Capital = false
		if wasCapital && loser != "" {
			g.annex(seat, loser)
		} else if loser != "" && g.landCount(loser) == 0 {
			g.eliminate(loser)
		}
	default:
		dst.Army -= moving
	}
}

// annex transfers every cell of the fallen seat to the conqueror at half
// strength, then removes the seat from play.
func (g *Game) annex(winner, loser string) {
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			c := &g.grid[y][x]
			if c.Owner == loser {
				c.Owner = winner
				c.Army = (c.Army + 1) / 2
				c.Capital = false
			}
		}
	}
	g.eliminate(loser)
}

func (g *Game) eliminate(seat string) {
	for i, s := range g.active {
		if s == seat {
			if i < g.next {
				g.next--
			}
			g.active = append(g.active[:i], g.active[i+1:]...)
			return
		}
	}
}

func (g *Game) landCount(seat string) int {
	n := 0
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if g.grid[y][x].Owner == seat {
				n++
			}
		}
	}
	return n
}

func (g *Game) seatWeights(seat string) map[string]float64 {
	if w, ok := g.profiles[seat]; ok {
		return w
	}
	return weights.Defaults()
}
