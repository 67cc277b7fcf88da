// Package platform drives the round-based evolutionary loop: build a
// population from the current bases, evaluate it across brackets, rank and
// diversify, and carry the top selections into the next round.
package platform

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"territune/internal/evo"
	"territune/internal/model"
	"territune/internal/rng"
	"territune/internal/tournament"
)

// State is the loop's lifecycle phase.
type State string

const (
	StateSeeding    State = "seeding"
	StateBuilding   State = "building"
	StateEvaluating State = "evaluating"
	StateRanking    State = "ranking"
	StateAdvancing  State = "advancing"
	StateDone       State = "done"
)

// Config parametrizes one evolution run.
type Config struct {
	Seed            uint32
	Rounds          int
	Brackets        []model.BracketConfig
	MapTypes        []string
	BaseJitter      float64
	DefaultJitter   float64
	DiversityWeight float64
	Scheduler       tournament.Strategy
	Workers         int
	// InitialPool seeds round 0; empty means default-profile bases.
	InitialPool []model.Profile
	Runner      *tournament.Runner
	Logger      zerolog.Logger
}

// Result is the loop's final output: every round's official report and the
// surviving bases, unlabeled.
type Result struct {
	Rounds []model.RoundReport
	Final  []model.Profile
}

// Loop is the evolution state machine.
type Loop struct {
	cfg    Config
	runner tournament.Runner
	state  State
	log    zerolog.Logger
}

// NewLoop validates the configuration. At least one bracket must be active
// and every active bracket must fit inside the population the mutation
// builder will produce.
func NewLoop(cfg Config) (*Loop, error) {
	if cfg.Rounds <= 0 {
		return nil, fmt.Errorf("rounds must be positive, got %d", cfg.Rounds)
	}
	if len(cfg.MapTypes) == 0 {
		return nil, fmt.Errorf("at least one map type is required")
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = tournament.CoprimeRotation{}
	}

	popSize := evo.MaxBases*3 + 4
	anyActive := false
	for _, b := range cfg.Brackets {
		if !b.Active() {
			continue
		}
		anyActive = true
		if b.PlayerCount > popSize {
			return nil, fmt.Errorf("bracket %s needs %d players but rounds produce at most %d profiles", b.Kind, b.PlayerCount, popSize)
		}
	}
	if !anyActive {
		return nil, fmt.Errorf("no active brackets configured")
	}

	runner := tournament.NewRunner(cfg.Workers)
	if cfg.Runner != nil {
		runner = *cfg.Runner
	}
	return &Loop{cfg: cfg, runner: runner, state: StateSeeding, log: cfg.Logger}, nil
}

// State reports the loop's current phase.
func (l *Loop) State() State {
	return l.state
}

// Run executes the configured number of rounds and returns the reports plus
// the final bases.
func (l *Loop) Run(ctx context.Context) (Result, error) {
	bases := l.seedBases()
	l.log.Info().
		Uint32("seed", l.cfg.Seed).
		Int("rounds", l.cfg.Rounds).
		Int("bases", len(bases)).
		Msg("evolution run starting")

	var result Result
	for round := 0; round < l.cfg.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		report, nextBases, err := l.runRound(ctx, round, bases)
		if err != nil {
			return Result{}, fmt.Errorf("round %d: %w", round, err)
		}
		result.Rounds = append(result.Rounds, report)
		bases = nextBases
	}

	l.state = StateDone
	result.Final = bases
	l.log.Info().Int("survivors", len(result.Final)).Msg("evolution run finished")
	return result, nil
}

func (l *Loop) runRound(ctx context.Context, round int, bases []model.Profile) (model.RoundReport, []model.Profile, error) {
	stream := rng.New(rng.DeriveSeed(l.cfg.Seed, uint32(round)))

	l.state = StateBuilding
	pop := evo.BuildPopulation(bases, round, l.cfg.BaseJitter, l.cfg.DefaultJitter, stream)

	l.state = StateEvaluating
	agg := tournament.NewAggregator()
	matches := 0
	for _, cfg := range l.cfg.Brackets {
		if !cfg.Active() {
			continue
		}
		tasks, err := tournament.PlanBracket(pop, cfg, l.cfg.MapTypes, l.cfg.Scheduler, stream, l.cfg.Seed, round)
		if err != nil {
			return model.RoundReport{}, nil, err
		}
		played, err := l.runner.RunBracket(ctx, tasks, cfg, agg)
		if err != nil {
			return model.RoundReport{}, nil, err
		}
		matches += played
		l.log.Debug().
			Int("round", round).
			Str("bracket", string(cfg.Kind)).
			Int("matches", played).
			Msg("bracket evaluated")
	}

	l.state = StateRanking
	ranked := evo.Rank(pop, agg, l.cfg.Brackets, stream)
	selected := evo.Diversify(ranked, l.cfg.DiversityWeight)

	l.state = StateAdvancing
	next := evo.Rebase(selected, round+1)

	l.log.Info().
		Int("round", round).
		Int("population", len(pop)).
		Int("matches", matches).
		Str("best", selected[0].Profile.ID).
		Float64("best_composite", selected[0].Composite).
		Msg("round complete")

	return model.RoundReport{Round: round, Matches: matches, Ranked: selected}, next, nil
}

// seedBases takes the first MaxBases profiles of the configured pool, or
// default-vector copies when no pool is configured, re-identified with
// round-0 ids.
func (l *Loop) seedBases() []model.Profile {
	pool := l.cfg.InitialPool
	if len(pool) > evo.MaxBases {
		pool = pool[:evo.MaxBases]
	}

	bases := make([]model.Profile, 0, evo.MaxBases)
	for i, p := range pool {
		overrides := make(map[string]float64, len(p.Overrides))
		for k, v := range p.Overrides {
			overrides[k] = v
		}
		bases = append(bases, model.Profile{
			ID:        fmt.Sprintf("r0-b%d", i),
			Overrides: overrides,
		})
	}
	for i := len(bases); i < evo.MaxBases; i++ {
		bases = append(bases, model.Profile{ID: fmt.Sprintf("r0-b%d", i)})
	}
	return bases
}
