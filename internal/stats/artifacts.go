// Package stats writes and reads the on-disk artifacts of finished runs:
// per-run report and profile JSON, a per-round CSV series, and the shared
// run index.
package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"territune/internal/model"
)

const runIndexFile = "run_index.json"

// RoundSummary is one row of the rounds.csv series.
type RoundSummary struct {
	Round         int
	Matches       int
	BestProfileID string
	BestComposite float64
	BestWins      int
}

// RunIndexEntry is one line of the shared run index, newest first.
type RunIndexEntry struct {
	RunID        string  `json:"run_id"`
	Seed         uint32  `json:"seed"`
	Rounds       int     `json:"rounds"`
	Matches      int     `json:"matches"`
	BestProfile  string  `json:"best_profile"`
	BestLabel    string  `json:"best_label,omitempty"`
	BestScore    float64 `json:"best_score"`
	CreatedAtUTC string  `json:"created_at_utc"`
}

// WriteRunArtifacts writes report.json, profiles.json and rounds.csv under
// baseDir/<run id> and returns the run directory.
func WriteRunArtifacts(baseDir string, report model.RunReport, tuned model.TunedProfiles) (string, error) {
	if report.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, report.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "report.json"), report); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "profiles.json"), tuned); err != nil {
		return "", err
	}
	if err := writeRoundSeries(runDir, report.Rounds); err != nil {
		return "", err
	}

	return runDir, nil
}

// ReadRunReport loads a persisted run report, reporting absence without
// error.
func ReadRunReport(baseDir, runID string) (model.RunReport, bool, error) {
	path := filepath.Join(baseDir, runID, "report.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.RunReport{}, false, nil
		}
		return model.RunReport{}, false, err
	}

	var report model.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return model.RunReport{}, false, err
	}
	return report, true, nil
}

// ReadTunedProfiles loads the labeled survivor set of a run.
func ReadTunedProfiles(baseDir, runID string) (model.TunedProfiles, bool, error) {
	path := filepath.Join(baseDir, runID, "profiles.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.TunedProfiles{}, false, nil
		}
		return model.TunedProfiles{}, false, err
	}

	var tuned model.TunedProfiles
	if err := json.Unmarshal(data, &tuned); err != nil {
		return model.TunedProfiles{}, false, err
	}
	return tuned, true, nil
}

// AppendRunIndex inserts or replaces the index entry for entry.RunID.
func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns every indexed run, newest first. A missing index file
// is an empty index.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

// ReadRoundSeries loads the per-round CSV series of a run.
func ReadRoundSeries(baseDir, runID string) ([]RoundSummary, bool, error) {
	path := filepath.Join(baseDir, runID, "rounds.csv")
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []RoundSummary{}, true, nil
		}
		return nil, false, err
	}
	if len(header) < 5 {
		return nil, false, fmt.Errorf("round series header must have at least 5 columns")
	}

	series := make([]RoundSummary, 0, 16)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		if len(record) < 5 {
			return nil, false, fmt.Errorf("round series row must have at least 5 columns")
		}
		round, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, false, err
		}
		matches, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, false, err
		}
		composite, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, false, err
		}
		wins, err := strconv.Atoi(record[4])
		if err != nil {
			return nil, false, err
		}
		series = append(series, RoundSummary{
			Round:         round,
			Matches:       matches,
			BestProfileID: record[2],
			BestComposite: composite,
			BestWins:      wins,
		})
	}
	return series, true, nil
}

func writeRoundSeries(runDir string, rounds []model.RoundReport) error {
	path := filepath.Join(runDir, "rounds.csv")
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"round", "matches", "best_profile", "best_composite", "best_wins"}); err != nil {
		return err
	}
	for _, round := range rounds {
		best := model.RankedProfile{}
		if len(round.Ranked) > 0 {
			best = round.Ranked[0]
		}
		if err := writer.Write([]string{
			strconv.Itoa(round.Round),
			strconv.Itoa(round.Matches),
			best.Profile.ID,
			strconv.FormatFloat(best.Composite, 'f', -1, 64),
			strconv.Itoa(best.Wins),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
