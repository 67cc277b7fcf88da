package territune

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"territune/internal/model"
)

func testRequest() RunRequest {
	return RunRequest{
		RunID:  "run-test-1",
		Seed:   31337,
		Rounds: 2,
		Brackets: []model.BracketConfig{
			{Kind: model.BracketDuel, PlayerCount: 2, BoardWidth: 10, BoardHeight: 8, MatchQuota: 1, MaxTurns: 8, WinBonus: 2},
		},
		MapTypes: []string{"open"},
		Workers:  4,
	}
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(Options{
		StoreKind:    "memory",
		ArtifactsDir: filepath.Join(t.TempDir(), "runs"),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestClientRunShowAndList(t *testing.T) {
	client := newTestClient(t)

	result, err := client.Run(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.RunID != "run-test-1" {
		t.Fatalf("unexpected run id: %s", result.RunID)
	}
	if len(result.Report.Rounds) != 2 {
		t.Fatalf("got %d rounds, want 2", len(result.Report.Rounds))
	}
	if len(result.Profiles) != 4 {
		t.Fatalf("got %d tuned profiles, want 4", len(result.Profiles))
	}
	for _, p := range result.Profiles {
		if p.Label == "" {
			t.Fatalf("profile %s has no label", p.ID)
		}
	}
	for _, file := range []string{"report.json", "profiles.json", "rounds.csv"} {
		if _, err := os.Stat(filepath.Join(result.ArtifactsDir, file)); err != nil {
			t.Fatalf("expected artifact %s: %v", file, err)
		}
	}

	report, tuned, err := client.Show(context.Background(), "run-test-1")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if report.RunID != "run-test-1" || tuned.RunID != "run-test-1" {
		t.Fatalf("show mismatch: report=%s tuned=%s", report.RunID, tuned.RunID)
	}
	if len(tuned.Profiles) != len(result.Profiles) {
		t.Fatalf("show returned %d profiles, want %d", len(tuned.Profiles), len(result.Profiles))
	}

	runs, err := client.Runs(context.Background(), 5)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != "run-test-1" {
		t.Fatalf("unexpected run list: %+v", runs)
	}
	if runs[0].Matches == 0 {
		t.Fatal("run listing lost the match count")
	}
}

func TestClientRunIsReproducible(t *testing.T) {
	runOnce := func(id string) RunResult {
		client := newTestClient(t)
		req := testRequest()
		req.RunID = id
		result, err := client.Run(context.Background(), req)
		if err != nil {
			t.Fatalf("run %s: %v", id, err)
		}
		return result
	}

	a, b := runOnce("run-a"), runOnce("run-b")
	if len(a.Profiles) != len(b.Profiles) {
		t.Fatalf("profile counts diverged: %d vs %d", len(a.Profiles), len(b.Profiles))
	}
	for i := range a.Profiles {
		if a.Profiles[i].ID != b.Profiles[i].ID {
			t.Fatalf("profile %d diverged: %s vs %s", i, a.Profiles[i].ID, b.Profiles[i].ID)
		}
		if a.Profiles[i].Label != b.Profiles[i].Label {
			t.Fatalf("label %d diverged: %s vs %s", i, a.Profiles[i].Label, b.Profiles[i].Label)
		}
	}
}

func TestClientRunGeneratesRunID(t *testing.T) {
	client := newTestClient(t)
	req := testRequest()
	req.RunID = ""
	result, err := client.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.RunID == "" {
		t.Fatal("expected generated run id")
	}
}

func TestClientRunRejectsUnknownScheduler(t *testing.T) {
	client := newTestClient(t)
	req := testRequest()
	req.Scheduler = "bogus"
	if _, err := client.Run(context.Background(), req); err == nil {
		t.Fatal("expected unknown scheduler error")
	}
}

func TestClientRunRejectsOversizedBracket(t *testing.T) {
	client := newTestClient(t)
	req := testRequest()
	req.Brackets = []model.BracketConfig{
		{Kind: model.BracketMelee, PlayerCount: 99, BoardWidth: 24, BoardHeight: 18, MatchQuota: 1, MaxTurns: 10, WinBonus: 2},
	}
	if _, err := client.Run(context.Background(), req); err == nil {
		t.Fatal("expected oversized bracket error")
	}
}

func TestClientShowMissingRun(t *testing.T) {
	client := newTestClient(t)
	if _, _, err := client.Show(context.Background(), "absent"); err == nil {
		t.Fatal("expected missing run error")
	}
}

func TestDefaultBracketsAllActive(t *testing.T) {
	for _, b := range DefaultBrackets() {
		if !b.Active() {
			t.Fatalf("bracket %s inactive by default", b.Kind)
		}
		if b.PlayerCount < 2 {
			t.Fatalf("bracket %s player count %d", b.Kind, b.PlayerCount)
		}
	}
}
