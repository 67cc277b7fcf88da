package storage

import (
	"context"
	"sort"
	"sync"

	"territune/internal/model"
)

type MemoryStore struct {
	mu       sync.RWMutex
	runs     map[string]model.RunReport
	profiles map[string]model.TunedProfiles
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = make(map[string]model.RunReport)
	s.profiles = make(map[string]model.TunedProfiles)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, report model.RunReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[report.RunID] = report
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, runID string) (model.RunReport, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.runs[runID]
	return report, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.runs))
	for id := range s.runs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) SaveProfiles(_ context.Context, tuned model.TunedProfiles) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.Profile, len(tuned.Profiles))
	copy(copied, tuned.Profiles)
	tuned.Profiles = copied
	s.profiles[tuned.RunID] = tuned
	return nil
}

func (s *MemoryStore) GetProfiles(_ context.Context, runID string) (model.TunedProfiles, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tuned, ok := s.profiles[runID]
	if !ok {
		return model.TunedProfiles{}, false, nil
	}
	copied := make([]model.Profile, len(tuned.Profiles))
	copy(copied, tuned.Profiles)
	tuned.Profiles = copied
	return tuned, true, nil
}
