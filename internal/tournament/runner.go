package tournament

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/iter"

	"territune/internal/match"
	"territune/internal/model"
)

// Runner executes bracket task lists. Matches are independent units of work:
// each one reads only its own seeded stream, so they fan out to a bounded
// worker pool and fan back in through a single aggregation pass that applies
// outcomes in task order.
type Runner struct {
	Match   match.Runner
	Workers int
}

// NewRunner returns a runner over the built-in engine. workers <= 0 means
// one worker per CPU.
func NewRunner(workers int) Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return Runner{Match: match.Default(), Workers: workers}
}

// RunBracket plays every task and folds the outcomes into agg. The first
// engine fault aborts the bracket.
func (r Runner) RunBracket(ctx context.Context, tasks []Task, cfg model.BracketConfig, agg *Aggregator) (int, error) {
	if len(tasks) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	mapper := iter.Mapper[Task, model.MatchOutcome]{MaxGoroutines: r.Workers}
	outcomes, err := mapper.MapErr(tasks, func(t *Task) (model.MatchOutcome, error) {
		if err := ctx.Err(); err != nil {
			return model.MatchOutcome{}, err
		}
		return r.Match.Play(t.Spec)
	})
	if err != nil {
		return 0, fmt.Errorf("bracket %s: %w", cfg.Kind, err)
	}

	for _, out := range outcomes {
		agg.Apply(out, cfg)
	}
	return len(outcomes), nil
}
