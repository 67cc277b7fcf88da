// Package match adapts the territory-capture engine to the tournament
// harness: it assigns profiles to seats with a fairness rotation, drives one
// game under a bounded turn budget, and converts the end state into a
// MatchOutcome with the harness's placement rules.
package match

import (
	"fmt"

	"territune/internal/arena"
	"territune/internal/model"
	"territune/internal/rng"
	"territune/internal/weights"
)

// Simulator is the boundary the adapter drives. The built-in arena engine
// satisfies it; tests substitute scripted fakes.
type Simulator interface {
	SetProfiles(bySeat map[string]map[string]float64)
	Start() error
	AdvanceOneAITurn() error
	Over() bool
	TurnCount() int
	SeatOrder() []string
	Grid() [][]arena.Cell
}

// Spec fully determines one match.
type Spec struct {
	Profiles    []model.Profile // in base seat order, one per seat
	Seed        uint32
	MapType     string
	BoardWidth  int
	BoardHeight int
	MaxTurns    int
	Rotation    int // cyclic shift of the profile-to-seat assignment
}

// Runner plays matches. NewGame is the engine constructor; the zero value is
// unusable, use Default.
type Runner struct {
	NewGame func(seats []string, mapType string, stream *rng.Stream, opts arena.Options) (Simulator, error)
}

// Default returns a runner backed by the built-in arena engine.
func Default() Runner {
	return Runner{
		NewGame: func(seats []string, mapType string, stream *rng.Stream, opts arena.Options) (Simulator, error) {
			return arena.New(seats, mapType, stream, opts)
		},
	}
}

// Play runs one match to completion or turn cap and reports the outcome.
//
// Placement: on a decisive end the survivors list is just the winner; on a
// turn-cap stop survivors are ranked by owned land descending with ties
// broken by current turn order. Either way the earlier a seat was
// eliminated, the later it places.
func (r Runner) Play(spec Spec) (model.MatchOutcome, error) {
	p := len(spec.Profiles)
	if p < 2 {
		return model.MatchOutcome{}, fmt.Errorf("match needs at least 2 profiles, got %d", p)
	}
	if spec.MaxTurns <= 0 {
		return model.MatchOutcome{}, fmt.Errorf("max turns must be positive, got %d", spec.MaxTurns)
	}

	seats := make([]string, p)
	seatProfile := make(map[string]string, p)
	bySeat := make(map[string]map[string]float64, p)
	for i := range seats {
		seat := fmt.Sprintf("s%d", i)
		seats[i] = seat
		prof := spec.Profiles[(i+spec.Rotation)%p]
		seatProfile[seat] = prof.ID
		bySeat[seat] = weights.Effective(prof.Overrides)
	}

	var out model.MatchOutcome
	err := rng.Scoped(spec.Seed, func(stream *rng.Stream) error {
		sim, err := r.NewGame(seats, spec.MapType, stream, arena.Options{
			Width:  spec.BoardWidth,
			Height: spec.BoardHeight,
		})
		if err != nil {
			return err
		}
		sim.SetProfiles(bySeat)
		if err := sim.Start(); err != nil {
			return err
		}

		var eliminated []string
		prev := sim.SeatOrder()
		budget := spec.MaxTurns * p
		for step := 0; step < budget && !sim.Over(); step++ {
			if err := sim.AdvanceOneAITurn(); err != nil {
				return err
			}
			cur := sim.SeatOrder()
			if len(cur) < len(prev) {
				eliminated = append(eliminated, missingSeats(prev, cur)...)
			}
			prev = cur
		}

		survivors := sim.SeatOrder()
		land := landBySeat(sim.Grid())
		if !sim.Over() {
			survivors = rankSurvivors(survivors, land)
		}

		placement := make([]string, 0, p)
		for _, seat := range survivors {
			placement = append(placement, seatProfile[seat])
		}
		for i := len(eliminated) - 1; i >= 0; i-- {
			placement = append(placement, seatProfile[eliminated[i]])
		}

		landByProfile := make(map[string]int, p)
		for seat, id := range seatProfile {
			landByProfile[id] = land[seat]
		}

		out = model.MatchOutcome{
			Seed:           spec.Seed,
			MapType:        spec.MapType,
			TurnsPlayed:    sim.TurnCount(),
			SeatProfiles:   seatProfile,
			PlacementOrder: placement,
			LandByProfile:  landByProfile,
			WonDecisively:  sim.Over(),
		}
		return nil
	})
	if err != nil {
		return model.MatchOutcome{}, fmt.Errorf("match seed %d: %w", spec.Seed, err)
	}
	return out, nil
}

// missingSeats returns the seats present in prev but not in cur, in prev
// order, so simultaneous eliminations keep their turn-order ranking.
func missingSeats(prev, cur []string) []string {
	alive := make(map[string]bool, len(cur))
	for _, s := range cur {
		alive[s] = true
	}
	var gone []string
	for _, s := range prev {
		if !alive[s] {
			gone = append(gone, s)
		}
	}
	return gone
}

func landBySeat(grid [][]arena.Cell) map[string]int {
	land := map[string]int{}
	for _, row := range grid {
		for _, c := range row {
			if c.Owner != "" {
				land[c.Owner]++
			}
		}
	}
	return land
}

// rankSurvivors orders turn-cap survivors by land count descending. The sort
// is stable over the current turn order, which is exactly the tie-break the
// harness defines.
func rankSurvivors(order []string, land map[string]int) []string {
	out := append([]string(nil), order...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && land[out[j]] > land[out[j-1]]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
