package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"territune/internal/model"
	"territune/pkg/territune"
)

const artifactsDir = "runs"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runRun(ctx, args[1:])
	case "show":
		return runShow(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config JSON path")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	seed := fs.Uint("seed", 0, "rng seed (0 picks a time-based seed)")
	rounds := fs.Int("rounds", 3, "evolution round count")
	maps := fs.String("maps", "open,walls,islands", "comma-separated map types")
	duelQuota := fs.Int("duel-quota", 6, "per-profile match quota in the 2p bracket (0 skips)")
	duelTurns := fs.Int("duel-turns", 120, "turn cap in the 2p bracket")
	duelBonus := fs.Float64("duel-bonus", 2, "decisive win bonus multiplier in the 2p bracket")
	skirmishQuota := fs.Int("skirmish-quota", 4, "per-profile match quota in the 4p bracket (0 skips)")
	skirmishTurns := fs.Int("skirmish-turns", 160, "turn cap in the 4p bracket")
	skirmishBonus := fs.Float64("skirmish-bonus", 3, "decisive win bonus multiplier in the 4p bracket")
	meleeQuota := fs.Int("melee-quota", 2, "per-profile match quota in the 8p bracket (0 skips)")
	meleeTurns := fs.Int("melee-turns", 200, "turn cap in the 8p bracket")
	meleeBonus := fs.Float64("melee-bonus", 4, "decisive win bonus multiplier in the 8p bracket")
	baseJitter := fs.Float64("base-jitter", 0.15, "mutation range around surviving bases")
	defaultJitter := fs.Float64("default-jitter", 0.5, "mutation range around the default vector")
	diversity := fs.Float64("diversity", 0.25, "diversity weight in survivor selection")
	scheduler := fs.String("scheduler", "coprime", "group scheduling strategy: coprime|least_games")
	workers := fs.Int("workers", 0, "parallel match workers (0 uses all CPUs)")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "territune.db", "sqlite database path")
	outDir := fs.String("out", artifactsDir, "artifacts output directory")
	verbose := fs.Bool("verbose", false, "log per-bracket progress")
	quiet := fs.Bool("quiet", false, "suppress progress logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadOrDefaultRunRequest(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" {
		req = territune.RunRequest{
			RunID:           *runID,
			Seed:            uint32(*seed),
			Rounds:          *rounds,
			MapTypes:        splitMaps(*maps),
			Brackets:        bracketsFromFlags(*duelQuota, *duelTurns, *duelBonus, *skirmishQuota, *skirmishTurns, *skirmishBonus, *meleeQuota, *meleeTurns, *meleeBonus),
			BaseJitter:      *baseJitter,
			DefaultJitter:   *defaultJitter,
			DiversityWeight: *diversity,
			Scheduler:       *scheduler,
			Workers:         *workers,
		}
	} else {
		overrideFromFlags(&req, setFlags, map[string]any{
			"run-id":         *runID,
			"seed":           uint32(*seed),
			"rounds":         *rounds,
			"maps":           *maps,
			"base-jitter":    *baseJitter,
			"default-jitter": *defaultJitter,
			"diversity":      *diversity,
			"scheduler":      *scheduler,
			"workers":        *workers,
		})
	}

	client, err := territune.New(territune.Options{
		StoreKind:    *storeKind,
		DBPath:       *dbPath,
		ArtifactsDir: *outDir,
		Logger:       newLogger(*verbose, *quiet),
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	result, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	printRunSummary(result)
	return nil
}

func runShow(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id to show")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "territune.db", "sqlite database path")
	outDir := fs.String("out", artifactsDir, "artifacts directory")
	jsonOut := fs.Bool("json", false, "emit the full report as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("run-id is required")
	}

	client, err := territune.New(territune.Options{
		StoreKind:    *storeKind,
		DBPath:       *dbPath,
		ArtifactsDir: *outDir,
		Logger:       newLogger(false, true),
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	report, tuned, err := client.Show(ctx, *runID)
	if err != nil {
		return err
	}

	if *jsonOut {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(struct {
			Report   model.RunReport     `json:"report"`
			Profiles model.TunedProfiles `json:"profiles"`
		}{report, tuned})
	}

	printReport(report, tuned)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	outDir := fs.String("out", artifactsDir, "artifacts directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := territune.New(territune.Options{
		StoreKind:    "memory",
		ArtifactsDir: *outDir,
		Logger:       newLogger(false, true),
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx, *limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	fmt.Printf("%-38s %-22s %8s %8s %10s  %s\n", "RUN", "CREATED", "ROUNDS", "MATCHES", "BEST", "LABEL")
	for _, item := range runs {
		fmt.Printf("%-38s %-22s %8d %8s %10.3f  %s\n",
			item.RunID,
			item.CreatedAtUTC,
			item.Rounds,
			humanize.Comma(int64(item.Matches)),
			item.BestScore,
			item.BestLabel,
		)
	}
	return nil
}

func printRunSummary(result territune.RunResult) {
	matches := 0
	for _, round := range result.Report.Rounds {
		matches += round.Matches
	}
	elapsed := time.Duration(result.Report.ElapsedMS) * time.Millisecond

	fmt.Printf("run %s finished: %s matches across %d rounds in %s\n",
		result.RunID,
		humanize.Comma(int64(matches)),
		len(result.Report.Rounds),
		elapsed.Round(time.Millisecond),
	)
	fmt.Printf("artifacts: %s\n", result.ArtifactsDir)
	fmt.Println("tuned profiles:")
	for _, p := range result.Profiles {
		fmt.Printf("  %-12s %s\n", p.ID, p.Label)
	}
}

func printReport(report model.RunReport, tuned model.TunedProfiles) {
	fmt.Printf("run %s  seed=%d rounds=%d elapsed=%s\n",
		report.RunID,
		report.Options.Seed,
		report.Options.Rounds,
		(time.Duration(report.ElapsedMS) * time.Millisecond).Round(time.Millisecond),
	)
	for _, round := range report.Rounds {
		fmt.Printf("round %d: %s matches\n", round.Round, humanize.Comma(int64(round.Matches)))
		for _, entry := range round.Ranked {
			if entry.Rank > 4 {
				break
			}
			fmt.Printf("  #%d %-12s composite=%.3f wins=%d games=%d avg_turns=%.1f\n",
				entry.Rank, entry.Profile.ID, entry.Composite, entry.Wins, entry.Games, entry.AvgTurns)
		}
	}
	if len(tuned.Profiles) > 0 {
		fmt.Println("tuned profiles:")
		for _, p := range tuned.Profiles {
			fmt.Printf("  %-12s %s\n", p.ID, p.Label)
		}
	}
}

func newLogger(verbose, quiet bool) zerolog.Logger {
	if quiet {
		return zerolog.Nop()
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func splitMaps(list string) []string {
	parts := strings.Split(list, ",")
	maps := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			maps = append(maps, trimmed)
		}
	}
	return maps
}

func bracketsFromFlags(duelQuota, duelTurns int, duelBonus float64, skirmishQuota, skirmishTurns int, skirmishBonus float64, meleeQuota, meleeTurns int, meleeBonus float64) []model.BracketConfig {
	brackets := territune.DefaultBrackets()
	for i := range brackets {
		switch brackets[i].Kind {
		case model.BracketDuel:
			brackets[i].MatchQuota = duelQuota
			brackets[i].MaxTurns = duelTurns
			brackets[i].WinBonus = duelBonus
		case model.BracketSkirmish:
			brackets[i].MatchQuota = skirmishQuota
			brackets[i].MaxTurns = skirmishTurns
			brackets[i].WinBonus = skirmishBonus
		case model.BracketMelee:
			brackets[i].MatchQuota = meleeQuota
			brackets[i].MaxTurns = meleeTurns
			brackets[i].WinBonus = meleeBonus
		}
	}
	return brackets
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: territunectl <run|show|runs> [flags]", msg)
}
