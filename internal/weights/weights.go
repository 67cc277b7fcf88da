// Package weights defines the named scoring parameters that drive the
// heuristic agent, their process-wide defaults, and the sparse-override
// merge used by tuned profiles.
package weights

// Key names one scoring parameter of the heuristic agent.
type Key = string

const (
	Income            Key = "income"
	Upkeep            Key = "upkeep"
	Expansion         Key = "expansion"
	Frontier          Key = "frontier"
	Attack            Key = "attack"
	Counterattack     Key = "counterattack"
	Defense           Key = "defense"
	CapitalGuard      Key = "capital_guard"
	Reinforce         Key = "reinforce"
	Consolidate       Key = "consolidate"
	ArmyMass          Key = "army_mass"
	SplitPenalty      Key = "split_penalty"
	LandValue         Key = "land_value"
	BorderPressure    Key = "border_pressure"
	EnemyDistance     Key = "enemy_distance"
	CapitalDistance   Key = "capital_distance"
	ChokeHold         Key = "choke_hold"
	OpenSpace         Key = "open_space"
	Risk              Key = "risk"
	Retreat           Key = "retreat"
	OverextendPenalty Key = "overextend_penalty"
	Tempo             Key = "tempo"
	Endgame           Key = "endgame"
	Siege             Key = "siege"
	Raid              Key = "raid"
	FocusFire         Key = "focus_fire"
	Patience          Key = "patience"
	Explore           Key = "explore"
	Noise             Key = "noise"
)

// Keys lists every weight key in a fixed order. All deterministic iteration
// over weight vectors goes through this slice, never over map keys.
var Keys = []Key{
	Income,
	Upkeep,
	Expansion,
	Frontier,
	Attack,
	Counterattack,
	Defense,
	CapitalGuard,
	Reinforce,
	Consolidate,
	ArmyMass,
	SplitPenalty,
	LandValue,
	BorderPressure,
	EnemyDistance,
	CapitalDistance,
	ChokeHold,
	OpenSpace,
	Risk,
	Retreat,
	OverextendPenalty,
	Tempo,
	Endgame,
	Siege,
	Raid,
	FocusFire,
	Patience,
	Explore,
	Noise,
}

var defaults = map[Key]float64{
	Income:            1.2,
	Upkeep:            0.3,
	Expansion:         1.5,
	Frontier:          0.8,
	Attack:            1.0,
	Counterattack:     0.6,
	Defense:           0.9,
	CapitalGuard:      1.4,
	Reinforce:         0.7,
	Consolidate:       0.5,
	ArmyMass:          0.6,
	SplitPenalty:      0.4,
	LandValue:         1.0,
	BorderPressure:    0.5,
	EnemyDistance:     0.4,
	CapitalDistance:   0.3,
	ChokeHold:         0.2,
	OpenSpace:         0.4,
	Risk:              0.5,
	Retreat:           0.4,
	OverextendPenalty: 0.6,
	Tempo:             0.8,
	Endgame:           0.5,
	Siege:             0.3,
	Raid:              0.4,
	FocusFire:         0.7,
	Patience:          0.5,
	Explore:           0.6,
	Noise:             0.15,
}

// Default returns the process-wide default for a key, or 0 for an unknown key.
func Default(key Key) float64 {
	return defaults[key]
}

// Defaults returns a fresh copy of the full default vector.
func Defaults() map[Key]float64 {
	out := make(map[Key]float64, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	return out
}

// Effective merges a sparse override map over the defaults. The override wins
// per key; unknown override keys are ignored. The result always contains
// every key in Keys.
func Effective(overrides map[Key]float64) map[Key]float64 {
	out := make(map[Key]float64, len(defaults))
	for _, k := range Keys {
		if v, ok := overrides[k]; ok {
			out[k] = v
			continue
		}
		out[k] = defaults[k]
	}
	return out
}

// Get resolves a single key against an override map, falling back to the
// default when no override is present.
func Get(overrides map[Key]float64, key Key) float64 {
	if v, ok := overrides[key]; ok {
		return v
	}
	return defaults[key]
}
