package stats

import (
	"os"
	"path/filepath"
	"testing"

	"territune/internal/model"
)

func sampleReport(runID string) model.RunReport {
	return model.RunReport{
		RunID: runID,
		Options: model.RunOptions{
			Seed:     11,
			Rounds:   2,
			MapTypes: []string{"open"},
		},
		Rounds: []model.RoundReport{
			{
				Round:   0,
				Matches: 6,
				Ranked: []model.RankedProfile{
					{Profile: model.Profile{ID: "r0-b0-v1"}, Rank: 1, Wins: 5, Composite: 1.4},
				},
			},
			{
				Round:   1,
				Matches: 6,
				Ranked: []model.RankedProfile{
					{Profile: model.Profile{ID: "r1-b2"}, Rank: 1, Wins: 4, Composite: 0.9},
				},
			},
		},
		Final:     []model.Profile{{ID: "r2-b0"}},
		ElapsedMS: 250,
	}
}

func TestWriteRunArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	report := sampleReport("run-123")
	tuned := model.TunedProfiles{
		RunID:    "run-123",
		Profiles: []model.Profile{{ID: "r2-b0", Label: "Ivar the Raider"}},
	}

	runDir, err := WriteRunArtifacts(baseDir, report, tuned)
	if err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	for _, file := range []string{"report.json", "profiles.json", "rounds.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, file)); err != nil {
			t.Fatalf("expected file %s: %v", file, err)
		}
	}

	loaded, ok, err := ReadRunReport(baseDir, "run-123")
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted report")
	}
	if loaded.RunID != "run-123" || len(loaded.Rounds) != 2 {
		t.Fatalf("unexpected report: %+v", loaded)
	}

	profiles, ok, err := ReadTunedProfiles(baseDir, "run-123")
	if err != nil {
		t.Fatalf("read profiles: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted profiles")
	}
	if len(profiles.Profiles) != 1 || profiles.Profiles[0].Label != "Ivar the Raider" {
		t.Fatalf("unexpected profiles: %+v", profiles)
	}
}

func TestWriteRunArtifactsRequiresRunID(t *testing.T) {
	_, err := WriteRunArtifacts(t.TempDir(), model.RunReport{}, model.TunedProfiles{})
	if err == nil {
		t.Fatal("expected error for empty run id")
	}
}

func TestRoundSeriesRoundTrip(t *testing.T) {
	baseDir := t.TempDir()
	report := sampleReport("run-series")
	if _, err := WriteRunArtifacts(baseDir, report, model.TunedProfiles{RunID: "run-series"}); err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	series, ok, err := ReadRoundSeries(baseDir, "run-series")
	if err != nil {
		t.Fatalf("read series: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted series")
	}
	if len(series) != 2 {
		t.Fatalf("got %d rows, want 2", len(series))
	}
	if series[0].BestProfileID != "r0-b0-v1" || series[0].BestComposite != 1.4 || series[0].BestWins != 5 {
		t.Fatalf("unexpected first row: %+v", series[0])
	}
	if series[1].Round != 1 || series[1].Matches != 6 {
		t.Fatalf("unexpected second row: %+v", series[1])
	}
}

func TestReadRunReportMissing(t *testing.T) {
	_, ok, err := ReadRunReport(t.TempDir(), "absent")
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if ok {
		t.Fatal("expected missing report")
	}
}

func TestRunIndexAppendAndList(t *testing.T) {
	baseDir := t.TempDir()

	entries := []RunIndexEntry{
		{RunID: "run-old", Seed: 1, Rounds: 2, BestProfile: "r2-b0", CreatedAtUTC: "2026-08-30T10:00:00Z"},
		{RunID: "run-new", Seed: 2, Rounds: 3, BestProfile: "r3-b0", CreatedAtUTC: "2026-08-31T10:00:00Z"},
	}
	for _, entry := range entries {
		if err := AppendRunIndex(baseDir, entry); err != nil {
			t.Fatalf("append %s: %v", entry.RunID, err)
		}
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list index: %v", err)
	}
	if len(index) != 2 {
		t.Fatalf("got %d entries, want 2", len(index))
	}
	if index[0].RunID != "run-new" || index[1].RunID != "run-old" {
		t.Fatalf("index not newest first: %+v", index)
	}
}

func TestRunIndexReplacesExistingEntry(t *testing.T) {
	baseDir := t.TempDir()

	entry := RunIndexEntry{RunID: "run-1", Matches: 10, CreatedAtUTC: "2026-08-31T10:00:00Z"}
	if err := AppendRunIndex(baseDir, entry); err != nil {
		t.Fatalf("append: %v", err)
	}
	entry.Matches = 20
	if err := AppendRunIndex(baseDir, entry); err != nil {
		t.Fatalf("replace: %v", err)
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list index: %v", err)
	}
	if len(index) != 1 {
		t.Fatalf("got %d entries, want 1", len(index))
	}
	if index[0].Matches != 20 {
		t.Fatalf("entry not replaced: %+v", index[0])
	}
}

func TestRunIndexMissingFileIsEmpty(t *testing.T) {
	index, err := ListRunIndex(t.TempDir())
	if err != nil {
		t.Fatalf("list index: %v", err)
	}
	if len(index) != 0 {
		t.Fatalf("expected empty index, got %+v", index)
	}
}

func TestRunIndexRequiresRunID(t *testing.T) {
	if err := AppendRunIndex(t.TempDir(), RunIndexEntry{}); err == nil {
		t.Fatal("expected error for empty run id")
	}
}
