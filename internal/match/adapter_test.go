package match

import (
	"errors"
	"fmt"
	"testing"

	"territune/internal/arena"
	"territune/internal/model"
	"territune/internal/rng"
)

// scriptedGame eliminates seats at scripted step numbers and optionally ends
// the game when one seat remains.
type scriptedGame struct {
	order      []string
	step       int
	eliminate  map[int]string // step -> seat removed after that step
	land       map[string]int
	failAtStep int // 0 = never
	turnsPer   int // seats per full cycle
}

func (s *scriptedGame) SetProfiles(map[string]map[string]float64) {}
func (s *scriptedGame) Start() error                              { return nil }
func (s *scriptedGame) Over() bool                                { return len(s.order) <= 1 }
func (s *scriptedGame) TurnCount() int                            { return s.step / s.turnsPer }
func (s *scriptedGame) SeatOrder() []string                       { return append([]string(nil), s.order...) }

func (s *scriptedGame) AdvanceOneAITurn() error {
	s.step++
	if s.failAtStep > 0 && s.step == s.failAtStep {
		return errors.New("engine fault")
	}
	if seat, ok := s.eliminate[s.step]; ok {
		for i, cur := range s.order {
			if cur == seat {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	return nil
}

func (s *scriptedGame) Grid() [][]arena.Cell {
	// one row, land[seat] cells per seat
	var row []arena.Cell
	for seat, n := range s.land {
		for i := 0; i < n; i++ {
			row = append(row, arena.Cell{Owner: seat})
		}
	}
	return [][]arena.Cell{row}
}

func runnerFor(game *scriptedGame) Runner {
	return Runner{
		NewGame: func(seats []string, mapType string, stream *rng.Stream, opts arena.Options) (Simulator, error) {
			game.order = append([]string(nil), seats...)
			game.turnsPer = len(seats)
			return game, nil
		},
	}
}

func profiles(ids ...string) []model.Profile {
	out := make([]model.Profile, len(ids))
	for i, id := range ids {
		out[i] = model.Profile{ID: id}
	}
	return out
}

func TestDecisiveTwoPlayerMatch(t *testing.T) {
	// B (seat s1) falls on step 40 = full turn 20 of 50
	game := &scriptedGame{eliminate: map[int]string{40: "s1"}}
	out, err := runnerFor(game).Play(Spec{
		Profiles: profiles("A", "B"),
		Seed:     7, MapType: arena.MapOpen,
		BoardWidth: 14, BoardHeight: 12,
		MaxTurns: 50,
	})
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if !out.WonDecisively {
		t.Fatal("expected decisive win")
	}
	if out.TurnsPlayed != 20 {
		t.Fatalf("turns played = %d, want 20", out.TurnsPlayed)
	}
	if len(out.PlacementOrder) != 2 || out.PlacementOrder[0] != "A" || out.PlacementOrder[1] != "B" {
		t.Fatalf("placement = %v, want [A B]", out.PlacementOrder)
	}
}

func TestTurnCapDrawRanksSurvivorsByLand(t *testing.T) {
	game := &scriptedGame{
		land: map[string]int{"s0": 5, "s1": 9, "s2": 5, "s3": 2},
	}
	out, err := runnerFor(game).Play(Spec{
		Profiles: profiles("A", "B", "C", "D"),
		Seed:     11, MapType: arena.MapOpen,
		BoardWidth: 14, BoardHeight: 12,
		MaxTurns: 10,
	})
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if out.WonDecisively {
		t.Fatal("turn-cap stop must not be decisive")
	}
	// land: B=9 first; A and C tie at 5, turn order keeps A before C; D last
	want := []string{"B", "A", "C", "D"}
	for i, id := range want {
		if out.PlacementOrder[i] != id {
			t.Fatalf("placement = %v, want %v", out.PlacementOrder, want)
		}
	}
}

func TestEliminationOrderRanksLast(t *testing.T) {
	game := &scriptedGame{
		eliminate: map[int]string{3: "s2", 9: "s0"},
		land:      map[string]int{"s1": 4, "s3": 4},
	}
	out, err := runnerFor(game).Play(Spec{
		Profiles: profiles("A", "B", "C", "D"),
		Seed:     3, MapType: arena.MapOpen,
		BoardWidth: 14, BoardHeight: 12,
		MaxTurns: 5,
	})
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	// survivors B,D (tied land, turn order); eliminated A after C, so A
	// places above C
	want := []string{"B", "D", "A", "C"}
	for i, id := range want {
		if out.PlacementOrder[i] != id {
			t.Fatalf("placement = %v, want %v", out.PlacementOrder, want)
		}
	}
}

func TestRotationCoversEverySeat(t *testing.T) {
	p := 4
	seatsSeen := map[string]map[string]bool{} // profile -> seats occupied
	for rot := 0; rot < p; rot++ {
		game := &scriptedGame{land: map[string]int{}}
		out, err := runnerFor(game).Play(Spec{
			Profiles: profiles("A", "B", "C", "D"),
			Seed:     5, MapType: arena.MapOpen,
			BoardWidth: 14, BoardHeight: 12,
			MaxTurns: 1, Rotation: rot,
		})
		if err != nil {
			t.Fatalf("rotation %d: %v", rot, err)
		}
		for seat, prof := range out.SeatProfiles {
			if seatsSeen[prof] == nil {
				seatsSeen[prof] = map[string]bool{}
			}
			if seatsSeen[prof][seat] {
				t.Fatalf("profile %s repeated seat %s across rotations", prof, seat)
			}
			seatsSeen[prof][seat] = true
		}
	}
	for prof, seats := range seatsSeen {
		if len(seats) != p {
			t.Fatalf("profile %s occupied %d distinct seats, want %d", prof, len(seats), p)
		}
	}
}

func TestEngineFaultPropagates(t *testing.T) {
	game := &scriptedGame{failAtStep: 4}
	_, err := runnerFor(game).Play(Spec{
		Profiles: profiles("A", "B"),
		Seed:     9, MapType: arena.MapOpen,
		BoardWidth: 14, BoardHeight: 12,
		MaxTurns: 50,
	})
	if err == nil {
		t.Fatal("expected engine fault to propagate")
	}
}

func TestPlayAgainstRealEngineIsDeterministic(t *testing.T) {
	spec := Spec{
		Profiles: profiles("A", "B"),
		Seed:     1234, MapType: arena.MapWalls,
		BoardWidth: 14, BoardHeight: 12,
		MaxTurns: 40,
	}
	a, err := Default().Play(spec)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	b, err := Default().Play(spec)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if fmt.Sprintf("%+v", a) != fmt.Sprintf("%+v", b) {
		t.Fatalf("same seed gave different outcomes:\n%+v\n%+v", a, b)
	}
}
