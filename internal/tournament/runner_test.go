package tournament

import (
	"context"
	"testing"

	"territune/internal/model"
	"territune/internal/rng"
)

func TestRunBracketAggregatesEveryTask(t *testing.T) {
	pop := testPopulation(4)
	cfg := model.BracketConfig{
		Kind: model.BracketDuel, PlayerCount: 2,
		BoardWidth: 10, BoardHeight: 8,
		MatchQuota: 2, MaxTurns: 15, WinBonus: 2,
	}
	tasks, err := PlanBracket(pop, cfg, []string{"open"}, CoprimeRotation{}, rng.New(4), 77, 0)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}

	agg := NewAggregator()
	played, err := NewRunner(4).RunBracket(context.Background(), tasks, cfg, agg)
	if err != nil {
		t.Fatalf("run bracket: %v", err)
	}
	if played != len(tasks) {
		t.Fatalf("played %d of %d tasks", played, len(tasks))
	}

	planned := matchCounts(tasks)
	for _, p := range pop {
		stat := agg.Stat(p.ID)
		if stat == nil {
			t.Fatalf("profile %s never aggregated", p.ID)
		}
		if stat.Games != planned[p.ID] {
			t.Fatalf("profile %s played %d games, planned %d", p.ID, stat.Games, planned[p.ID])
		}
		if stat.Games < cfg.MatchQuota {
			t.Fatalf("profile %s below quota: %d < %d", p.ID, stat.Games, cfg.MatchQuota)
		}
	}
}

func TestRunBracketDeterministicAcrossWorkerCounts(t *testing.T) {
	pop := testPopulation(4)
	cfg := model.BracketConfig{
		Kind: model.BracketDuel, PlayerCount: 2,
		BoardWidth: 10, BoardHeight: 8,
		MatchQuota: 1, MaxTurns: 10, WinBonus: 1,
	}

	run := func(workers int) map[string]float64 {
		tasks, err := PlanBracket(pop, cfg, []string{"open", "walls"}, CoprimeRotation{}, rng.New(6), 13, 2)
		if err != nil {
			t.Fatalf("plan: %v", err)
		}
		agg := NewAggregator()
		if _, err := NewRunner(workers).RunBracket(context.Background(), tasks, cfg, agg); err != nil {
			t.Fatalf("run: %v", err)
		}
		points := map[string]float64{}
		for _, id := range agg.ProfileIDs() {
			points[id] = agg.Stat(id).Points + agg.Stat(id).Bonus
		}
		return points
	}

	serial := run(1)
	parallel := run(8)
	if len(serial) != len(parallel) {
		t.Fatalf("profile sets differ: %v vs %v", serial, parallel)
	}
	for id, pts := range serial {
		if parallel[id] != pts {
			t.Fatalf("profile %s scored %v serial vs %v parallel", id, pts, parallel[id])
		}
	}
}

func TestRunBracketHonorsCancellation(t *testing.T) {
	pop := testPopulation(4)
	cfg := duelConfig(2)
	tasks, err := PlanBracket(pop, cfg, []string{"open"}, CoprimeRotation{}, rng.New(2), 5, 0)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewRunner(2).RunBracket(ctx, tasks, cfg, NewAggregator()); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
