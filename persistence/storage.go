package persistence

import (
	"context"
	"errors"
	"sort"

	"deadgrid/server/models"
)

var (
	// ErrNotFound is returned when a run id is unknown.
	ErrNotFound = errors.New("run not found")
	// ErrAlreadyExists is returned when a run id is saved twice.
	ErrAlreadyExists = errors.New("run already exists")
)

// Storage persists finished runs for the leaderboard.
type Storage interface {
	SaveRun(ctx context.Context, run models.RunRecord) error
	LoadRun(ctx context.Context, id string) (models.RunRecord, error)
	// TopRuns returns at most limit runs, best first.
	TopRuns(ctx context.Context, limit int) ([]models.RunRecord, error)
	Close() error
}

// SortRuns orders runs best first. Runs that tie on every ranking field are
// ordered by id so the order matches the SQL stores.
func SortRuns(runs []models.RunRecord) {
	sort.Slice(runs, func(i, j int) bool {
		switch {
		case runs[i].RanksAbove(runs[j]):
			return true
		case runs[j].RanksAbove(runs[i]):
			return false
		}
		return runs[i].ID < runs[j].ID
	})
}
