package main

import (
	"encoding/json"
	"fmt"
	"os"

	"territune/internal/model"
	"territune/pkg/territune"
)

// loadRunRequestFromConfig reads a run request from a JSON file. Coercion is
// tolerant: missing or mistyped values are skipped and the request keeps its
// zero value for that knob, which the facade later replaces with a default.
func loadRunRequestFromConfig(path string) (territune.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return territune.RunRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return territune.RunRequest{}, err
	}

	var req territune.RunRequest
	if v, ok := asString(raw["run_id"]); ok {
		req.RunID = v
	}
	if v, ok := asUint32(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["rounds"]); ok {
		req.Rounds = v
	}
	if v, ok := asStringList(raw["map_types"]); ok {
		req.MapTypes = v
	}
	if v, ok := asFloat64(raw["base_jitter"]); ok {
		req.BaseJitter = v
	}
	if v, ok := asFloat64(raw["default_jitter"]); ok {
		req.DefaultJitter = v
	}
	if v, ok := asFloat64(raw["diversity_weight"]); ok {
		req.DiversityWeight = v
	}
	if v, ok := asString(raw["scheduler"]); ok {
		req.Scheduler = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		req.Workers = v
	}

	if list, ok := raw["brackets"].([]any); ok {
		brackets := make([]model.BracketConfig, 0, len(list))
		for _, item := range list {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			bracket, ok := bracketFromMap(entry)
			if !ok {
				continue
			}
			brackets = append(brackets, bracket)
		}
		if len(brackets) > 0 {
			req.Brackets = brackets
		}
	}

	if list, ok := raw["initial_pool"].([]any); ok {
		pool := make([]model.Profile, 0, len(list))
		for _, item := range list {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			profile := model.Profile{}
			if v, ok := asString(entry["id"]); ok {
				profile.ID = v
			}
			if overrides, ok := entry["overrides"].(map[string]any); ok {
				profile.Overrides = make(map[string]float64, len(overrides))
				for key, value := range overrides {
					if v, ok := asFloat64(value); ok {
						profile.Overrides[key] = v
					}
				}
			}
			pool = append(pool, profile)
		}
		if len(pool) > 0 {
			req.InitialPool = pool
		}
	}

	return req, nil
}

func bracketFromMap(entry map[string]any) (model.BracketConfig, bool) {
	kind, ok := asString(entry["kind"])
	if !ok {
		return model.BracketConfig{}, false
	}

	var bracket model.BracketConfig
	found := false
	for _, b := range territune.DefaultBrackets() {
		if string(b.Kind) == kind {
			bracket = b
			found = true
			break
		}
	}
	if !found {
		return model.BracketConfig{}, false
	}

	if v, ok := asInt(entry["board_width"]); ok {
		bracket.BoardWidth = v
	}
	if v, ok := asInt(entry["board_height"]); ok {
		bracket.BoardHeight = v
	}
	if v, ok := asInt(entry["match_quota"]); ok {
		bracket.MatchQuota = v
	}
	if v, ok := asInt(entry["max_turns"]); ok {
		bracket.MaxTurns = v
	}
	if v, ok := asFloat64(entry["win_bonus"]); ok {
		bracket.WinBonus = v
	}
	return bracket, true
}

func loadOrDefaultRunRequest(configPath string) (territune.RunRequest, error) {
	if configPath == "" {
		return territune.RunRequest{}, nil
	}
	req, err := loadRunRequestFromConfig(configPath)
	if err != nil {
		return territune.RunRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}

func overrideFromFlags(req *territune.RunRequest, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "run-id":
			req.RunID = v.(string)
		case "seed":
			req.Seed = v.(uint32)
		case "rounds":
			req.Rounds = v.(int)
		case "maps":
			req.MapTypes = splitMaps(v.(string))
		case "base-jitter":
			req.BaseJitter = v.(float64)
		case "default-jitter":
			req.DefaultJitter = v.(float64)
		case "diversity":
			req.DiversityWeight = v.(float64)
		case "scheduler":
			req.Scheduler = v.(string)
		case "workers":
			req.Workers = v.(int)
		}
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asUint32(v any) (uint32, bool) {
	switch x := v.(type) {
	case int:
		if x < 0 {
			return 0, false
		}
		return uint32(x), true
	case float64:
		if x < 0 {
			return 0, false
		}
		return uint32(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

func asStringList(v any) ([]string, bool) {
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}
