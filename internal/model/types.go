package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Profile is a named, partially overridden weight vector for the heuristic
// agent. Overrides are sparse; any key absent here resolves to the
// process-wide default. Immutable after creation except for label assignment.
type Profile struct {
	VersionedRecord
	ID        string             `json:"id"`
	Label     string             `json:"label,omitempty"`
	Overrides map[string]float64 `json:"overrides,omitempty"`
}

// MatchOutcome records one finished simulated match. Never mutated after the
// match completes.
type MatchOutcome struct {
	Seed           uint32            `json:"seed"`
	MapType        string            `json:"map_type"`
	TurnsPlayed    int               `json:"turns_played"`
	SeatProfiles   map[string]string `json:"seat_profiles"`
	PlacementOrder []string          `json:"placement_order"`
	LandByProfile  map[string]int    `json:"land_by_profile"`
	WonDecisively  bool              `json:"won_decisively"`
}

// BracketKind is the closed set of supported player-count brackets.
type BracketKind string

const (
	BracketDuel     BracketKind = "2p"
	BracketSkirmish BracketKind = "4p"
	BracketMelee    BracketKind = "8p"
)

// BracketKinds lists every bracket kind in evaluation order.
var BracketKinds = []BracketKind{BracketDuel, BracketSkirmish, BracketMelee}

// BracketConfig is one player-count bracket of the tournament. A bracket
// with MatchQuota == 0 is skipped entirely.
type BracketConfig struct {
	Kind        BracketKind `json:"kind"`
	PlayerCount int         `json:"player_count"`
	BoardWidth  int         `json:"board_width"`
	BoardHeight int         `json:"board_height"`
	MatchQuota  int         `json:"match_quota"`
	MaxTurns    int         `json:"max_turns"`
	WinBonus    float64     `json:"win_bonus"`
}

// Active reports whether the bracket takes part in evaluation.
func (c BracketConfig) Active() bool {
	return c.MatchQuota > 0
}

// BracketScore is one profile's finalized result inside a single bracket.
type BracketScore struct {
	Games         int     `json:"games"`
	Wins          int     `json:"wins"`
	Decisive      int     `json:"decisive"`
	AvgPoints     float64 `json:"avg_points"`
	NormScore     float64 `json:"norm_score"`
	BonusStrength float64 `json:"bonus_strength"`
}

// RankedProfile is one entry of a round's official result, in final order.
type RankedProfile struct {
	Profile       Profile                 `json:"profile"`
	Rank          int                     `json:"rank"`
	Games         int                     `json:"games"`
	Wins          int                     `json:"wins"`
	Decisive      int                     `json:"decisive"`
	AvgTurns      float64                 `json:"avg_turns"`
	AvgPoints     float64                 `json:"avg_points"`
	Composite     float64                 `json:"composite"`
	BonusStrength float64                 `json:"bonus_strength"`
	Diversity     float64                 `json:"diversity"`
	Brackets      map[string]BracketScore `json:"brackets,omitempty"`
	MapGames      map[string]int          `json:"map_games,omitempty"`
}

// RoundReport is the official result of one evolution round.
type RoundReport struct {
	Round   int             `json:"round"`
	Matches int             `json:"matches"`
	Ranked  []RankedProfile `json:"ranked"`
}

// RunOptions captures every knob a run was started with, for the report.
type RunOptions struct {
	Seed            uint32          `json:"seed"`
	Rounds          int             `json:"rounds"`
	MapTypes        []string        `json:"map_types"`
	Brackets        []BracketConfig `json:"brackets"`
	BaseJitter      float64         `json:"base_jitter"`
	DefaultJitter   float64         `json:"default_jitter"`
	DiversityWeight float64         `json:"diversity_weight"`
	Scheduler       string          `json:"scheduler"`
	Workers         int             `json:"workers"`
}

// RunReport is the structured record persisted for one harness run.
type RunReport struct {
	VersionedRecord
	RunID     string        `json:"run_id"`
	Options   RunOptions    `json:"options"`
	Rounds    []RoundReport `json:"rounds"`
	Final     []Profile     `json:"final"`
	ElapsedMS int64         `json:"elapsed_ms"`
}

// TunedProfiles is the final labeled survivor set of a run.
type TunedProfiles struct {
	VersionedRecord
	RunID    string    `json:"run_id"`
	Profiles []Profile `json:"profiles"`
}
