package storage

import (
	"context"

	"territune/internal/model"
)

// Store defines persistence operations for finished runs and their tuned
// profile sets.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, report model.RunReport) error
	GetRun(ctx context.Context, runID string) (model.RunReport, bool, error)
	ListRuns(ctx context.Context) ([]string, error)
	SaveProfiles(ctx context.Context, tuned model.TunedProfiles) error
	GetProfiles(ctx context.Context, runID string) (model.TunedProfiles, bool, error)
}
