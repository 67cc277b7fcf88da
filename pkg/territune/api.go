// Package territune is the public API of the tuning harness. A Client owns a
// store and an artifacts directory and runs complete evolution rounds from a
// single request.
package territune

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"territune/internal/arena"
	"territune/internal/evo"
	"territune/internal/model"
	"territune/internal/platform"
	"territune/internal/stats"
	"territune/internal/storage"
	"territune/internal/tournament"
)

const defaultArtifactsDir = "runs"

type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
	Logger       zerolog.Logger
}

type Client struct {
	store        storage.Store
	artifactsDir string
	log          zerolog.Logger
}

// RunRequest carries every knob of one evolution run. Zero values select
// defaults.
type RunRequest struct {
	RunID           string
	Seed            uint32
	Rounds          int
	MapTypes        []string
	Brackets        []model.BracketConfig
	BaseJitter      float64
	DefaultJitter   float64
	DiversityWeight float64
	Scheduler       string
	Workers         int
	InitialPool     []model.Profile
}

// RunResult is the outcome of a finished run: the persisted report, the
// labeled survivors, and where the artifacts landed.
type RunResult struct {
	RunID        string
	ArtifactsDir string
	Report       model.RunReport
	Profiles     []model.Profile
}

// RunItem is one row of the run listing, newest first.
type RunItem struct {
	RunID        string
	Seed         uint32
	Rounds       int
	Matches      int
	BestProfile  string
	BestLabel    string
	BestScore    float64
	CreatedAtUTC string
}

func New(opts Options) (*Client, error) {
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}

	store, err := storage.NewStore(opts.StoreKind, opts.DBPath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(context.Background()); err != nil {
		return nil, err
	}

	return &Client{
		store:        store,
		artifactsDir: artifactsDir,
		log:          opts.Logger,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// DefaultBrackets is the bracket set used when a request names none: all
// three player counts active, larger boards and turn caps for the crowded
// brackets.
func DefaultBrackets() []model.BracketConfig {
	return []model.BracketConfig{
		{Kind: model.BracketDuel, PlayerCount: 2, BoardWidth: 12, BoardHeight: 10, MatchQuota: 6, MaxTurns: 120, WinBonus: 2},
		{Kind: model.BracketSkirmish, PlayerCount: 4, BoardWidth: 18, BoardHeight: 14, MatchQuota: 4, MaxTurns: 160, WinBonus: 3},
		{Kind: model.BracketMelee, PlayerCount: 8, BoardWidth: 24, BoardHeight: 18, MatchQuota: 2, MaxTurns: 200, WinBonus: 4},
	}
}

// Run executes one full evolution run, labels the survivors, persists the
// report and profiles, and writes the run artifacts.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	if req.RunID == "" {
		req.RunID = uuid.New().String()
	}
	if req.Seed == 0 {
		req.Seed = uint32(time.Now().UnixNano())
	}
	if req.Rounds <= 0 {
		req.Rounds = 3
	}
	if len(req.MapTypes) == 0 {
		req.MapTypes = append([]string(nil), arena.MapTypes...)
	}
	if len(req.Brackets) == 0 {
		req.Brackets = DefaultBrackets()
	}
	if req.BaseJitter <= 0 {
		req.BaseJitter = 0.15
	}
	if req.DefaultJitter <= 0 {
		req.DefaultJitter = 0.5
	}
	if req.DiversityWeight < 0 {
		return RunResult{}, fmt.Errorf("diversity weight must be >= 0, got %v", req.DiversityWeight)
	}
	if req.DiversityWeight == 0 {
		req.DiversityWeight = 0.25
	}

	strategy, err := tournament.StrategyByName(req.Scheduler)
	if err != nil {
		return RunResult{}, err
	}

	loop, err := platform.NewLoop(platform.Config{
		Seed:            req.Seed,
		Rounds:          req.Rounds,
		Brackets:        req.Brackets,
		MapTypes:        req.MapTypes,
		BaseJitter:      req.BaseJitter,
		DefaultJitter:   req.DefaultJitter,
		DiversityWeight: req.DiversityWeight,
		Scheduler:       strategy,
		Workers:         req.Workers,
		InitialPool:     req.InitialPool,
		Logger:          c.log,
	})
	if err != nil {
		return RunResult{}, err
	}

	started := time.Now()
	result, err := loop.Run(ctx)
	if err != nil {
		return RunResult{}, err
	}
	elapsed := time.Since(started)

	labeled := evo.AssignLabels(result.Final, map[string]bool{})
	for i := range labeled {
		labeled[i].VersionedRecord = storage.Stamp()
	}

	report := model.RunReport{
		VersionedRecord: storage.Stamp(),
		RunID:           req.RunID,
		Options: model.RunOptions{
			Seed:            req.Seed,
			Rounds:          req.Rounds,
			MapTypes:        req.MapTypes,
			Brackets:        req.Brackets,
			BaseJitter:      req.BaseJitter,
			DefaultJitter:   req.DefaultJitter,
			DiversityWeight: req.DiversityWeight,
			Scheduler:       req.Scheduler,
			Workers:         req.Workers,
		},
		Rounds:    result.Rounds,
		Final:     labeled,
		ElapsedMS: elapsed.Milliseconds(),
	}
	tuned := model.TunedProfiles{
		VersionedRecord: storage.Stamp(),
		RunID:           req.RunID,
		Profiles:        labeled,
	}

	if err := c.store.SaveRun(ctx, report); err != nil {
		return RunResult{}, fmt.Errorf("save run %s: %w", req.RunID, err)
	}
	if err := c.store.SaveProfiles(ctx, tuned); err != nil {
		return RunResult{}, fmt.Errorf("save profiles %s: %w", req.RunID, err)
	}

	runDir, err := stats.WriteRunArtifacts(c.artifactsDir, report, tuned)
	if err != nil {
		return RunResult{}, fmt.Errorf("write artifacts %s: %w", req.RunID, err)
	}
	if err := stats.AppendRunIndex(c.artifactsDir, indexEntry(report, labeled)); err != nil {
		return RunResult{}, fmt.Errorf("index run %s: %w", req.RunID, err)
	}

	return RunResult{
		RunID:        req.RunID,
		ArtifactsDir: runDir,
		Report:       report,
		Profiles:     labeled,
	}, nil
}

// Runs lists stored runs, newest first, up to limit when limit > 0.
func (c *Client) Runs(_ context.Context, limit int) ([]RunItem, error) {
	index, err := stats.ListRunIndex(c.artifactsDir)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(index) > limit {
		index = index[:limit]
	}

	items := make([]RunItem, 0, len(index))
	for _, entry := range index {
		items = append(items, RunItem{
			RunID:        entry.RunID,
			Seed:         entry.Seed,
			Rounds:       entry.Rounds,
			Matches:      entry.Matches,
			BestProfile:  entry.BestProfile,
			BestLabel:    entry.BestLabel,
			BestScore:    entry.BestScore,
			CreatedAtUTC: entry.CreatedAtUTC,
		})
	}
	return items, nil
}

// Show loads one stored run with its labeled profiles.
func (c *Client) Show(ctx context.Context, runID string) (model.RunReport, model.TunedProfiles, error) {
	report, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return model.RunReport{}, model.TunedProfiles{}, err
	}
	if !ok {
		// fall back to the artifacts directory for runs stored by an
		// earlier process with a memory-backed store
		report, ok, err = stats.ReadRunReport(c.artifactsDir, runID)
		if err != nil {
			return model.RunReport{}, model.TunedProfiles{}, err
		}
		if !ok {
			return model.RunReport{}, model.TunedProfiles{}, fmt.Errorf("run %s not found", runID)
		}
	}

	tuned, ok, err := c.store.GetProfiles(ctx, runID)
	if err != nil {
		return model.RunReport{}, model.TunedProfiles{}, err
	}
	if !ok {
		tuned, _, err = stats.ReadTunedProfiles(c.artifactsDir, runID)
		if err != nil {
			return model.RunReport{}, model.TunedProfiles{}, err
		}
	}
	return report, tuned, nil
}

func indexEntry(report model.RunReport, labeled []model.Profile) stats.RunIndexEntry {
	matches := 0
	for _, round := range report.Rounds {
		matches += round.Matches
	}

	entry := stats.RunIndexEntry{
		RunID:        report.RunID,
		Seed:         report.Options.Seed,
		Rounds:       report.Options.Rounds,
		Matches:      matches,
		CreatedAtUTC: time.Now().UTC().Format(time.RFC3339),
	}
	if n := len(report.Rounds); n > 0 && len(report.Rounds[n-1].Ranked) > 0 {
		best := report.Rounds[n-1].Ranked[0]
		entry.BestProfile = best.Profile.ID
		entry.BestScore = best.Composite
	}
	if len(labeled) > 0 {
		entry.BestLabel = labeled[0].Label
	}
	return entry
}
