package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/sirupsen/logrus"

	"deadgrid/server/models"
	"deadgrid/server/persistence"
)

// Leaderboard page sizes.
const (
	DefaultTopLimit = 10
	MaxTopLimit     = 100
)

// RunService records finished runs and serves the leaderboard
type RunService struct {
	db    persistence.Storage
	cache *ristretto.Cache[string, []models.RunRecord]
	ttl   time.Duration
	log   *logrus.Entry

	// generation is part of every cache key; bumping it on Record orphans
	// every cached page at once.
	generation atomic.Uint64
}

// NewRunService creates a run service. A ttl of zero disables caching.
func NewRunService(db persistence.Storage, ttl time.Duration, log *logrus.Entry) (*RunService, error) {
	cache, err := ristretto.NewCache[string, []models.RunRecord](&ristretto.Config[string, []models.RunRecord]{
		NumCounters: 10000,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create leaderboard cache: %w", err)
	}
	return &RunService{
		db:    db,
		cache: cache,
		ttl:   ttl,
		log:   log,
	}, nil
}

// ClampLimit maps a requested page size onto [1, MaxTopLimit]; anything
// below 1 means the default.
func ClampLimit(limit int) int {
	switch {
	case limit < 1:
		return DefaultTopLimit
	case limit > MaxTopLimit:
		return MaxTopLimit
	default:
		return limit
	}
}

// Record stores a finished run and invalidates the cached leaderboard
func (rs *RunService) Record(ctx context.Context, run models.RunRecord) error {
	if err := rs.db.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	rs.generation.Add(1)
	rs.log.WithFields(logrus.Fields{
		"run_id":        run.ID,
		"player":        run.PlayerName,
		"days_survived": run.DaysSurvived,
		"kills":         run.Kills,
	}).Info("run recorded")
	return nil
}

// Get loads one run
func (rs *RunService) Get(ctx context.Context, id string) (models.RunRecord, error) {
	return rs.db.LoadRun(ctx, id)
}

// Top returns the best runs, served from cache when fresh
func (rs *RunService) Top(ctx context.Context, limit int) ([]models.RunRecord, error) {
	limit = ClampLimit(limit)
	key := fmt.Sprintf("%d|%d", rs.generation.Load(), limit)

	if rs.ttl > 0 {
		if runs, ok := rs.cache.Get(key); ok {
			return runs, nil
		}
	}

	runs, err := rs.db.TopRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	if rs.ttl > 0 {
		rs.cache.SetWithTTL(key, runs, int64(len(runs))+1, rs.ttl)
		rs.cache.Wait()
	}
	return runs, nil
}

// Close releases the cache
func (rs *RunService) Close() {
	rs.cache.Close()
}
