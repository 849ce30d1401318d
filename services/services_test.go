package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"deadgrid/server/game"
	"deadgrid/server/logging"
	"deadgrid/server/models"
	"deadgrid/server/persistence"
)

// countingStore counts leaderboard reads and can fail the next SaveRun.
type countingStore struct {
	persistence.Storage
	topCalls atomic.Int32
	failSave atomic.Bool
}

func (c *countingStore) TopRuns(ctx context.Context, limit int) ([]models.RunRecord, error) {
	c.topCalls.Add(1)
	return c.Storage.TopRuns(ctx, limit)
}

func (c *countingStore) SaveRun(ctx context.Context, run models.RunRecord) error {
	if c.failSave.CompareAndSwap(true, false) {
		return errors.New("disk full")
	}
	return c.Storage.SaveRun(ctx, run)
}

func newStore(t *testing.T) *countingStore {
	t.Helper()
	js, err := persistence.NewJSONStore(filepath.Join(t.TempDir(), "runs.json"))
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}
	return &countingStore{Storage: js}
}

func newRunService(t *testing.T, store persistence.Storage, ttl time.Duration) *RunService {
	t.Helper()
	rs, err := NewRunService(store, ttl, logging.Component(logging.Discard(), "runs"))
	if err != nil {
		t.Fatalf("NewRunService: %v", err)
	}
	t.Cleanup(rs.Close)
	return rs
}

// doomedRules starve the player to death on the first EndDay.
func doomedRules() game.Rules {
	r := game.DefaultRules()
	r.StartFood = 0
	r.StartHealth = 10
	return r
}

func newSessionService(t *testing.T, rules game.Rules, store persistence.Storage) *SessionService {
	t.Helper()
	rs := newRunService(t, store, time.Minute)
	return NewSessionService(rules, rs, 10, logging.Component(logging.Discard(), "sessions"))
}

func TestSessionRecordsRunOnce(t *testing.T) {
	store := newStore(t)
	ss := newSessionService(t, doomedRules(), store)
	ctx := context.Background()

	sess, snap, err := ss.Start(StartOptions{PlayerName: "  Ada  "})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sess.PlayerName != "Ada" || snap.Player.Health != 10 {
		t.Fatalf("session %+v, snapshot health %d", sess, snap.Player.Health)
	}

	res, err := ss.Apply(ctx, sess.ID, game.Action{Kind: game.ActionEndDay})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !res.Over || res.Run == nil {
		t.Fatalf("result = %+v, want a recorded game over", res)
	}
	if res.Run.DaysSurvived != 1 || res.Run.SessionID != sess.ID || res.Run.Seed != sess.Seed {
		t.Errorf("run = %+v", res.Run)
	}

	res, err = ss.Apply(ctx, sess.ID, game.Action{Kind: game.ActionEndDay})
	if !errors.Is(err, game.ErrGameOver) {
		t.Fatalf("Apply after game over: %v", err)
	}
	if res.Run != nil {
		t.Error("run recorded twice")
	}

	runs, err := ss.runs.Top(ctx, 10)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(runs) != 1 || runs[0].PlayerName != "Ada" {
		t.Errorf("leaderboard = %+v", runs)
	}
}

func TestSessionRetriesFailedRecord(t *testing.T) {
	store := newStore(t)
	store.failSave.Store(true)
	ss := newSessionService(t, doomedRules(), store)
	ctx := context.Background()

	sess, _, err := ss.Start(StartOptions{PlayerName: "Bo"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	res, err := ss.Apply(ctx, sess.ID, game.Action{Kind: game.ActionEndDay})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !res.Over || res.Run != nil {
		t.Fatalf("result = %+v, want game over without a run", res)
	}

	res, err = ss.Apply(ctx, sess.ID, game.Action{Kind: game.ActionLoot})
	if !errors.Is(err, game.ErrGameOver) {
		t.Fatalf("Apply: %v", err)
	}
	if res.Run == nil {
		t.Fatal("retry did not record the run")
	}
}

func TestSessionRejectionKeepsState(t *testing.T) {
	ss := newSessionService(t, game.DefaultRules(), newStore(t))
	sess, before, err := ss.Start(StartOptions{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sess.PlayerName != "survivor" {
		t.Errorf("default name = %q", sess.PlayerName)
	}

	res, err := ss.Apply(context.Background(), sess.ID, game.Action{Kind: game.ActionShoot, TargetID: "nobody"})
	if !errors.Is(err, game.ErrTargetNotFound) {
		t.Fatalf("Apply: %v", err)
	}
	if res.Snapshot.Turn != before.Turn || res.Snapshot.Player.Ammo != before.Player.Ammo {
		t.Errorf("rejection changed state: %+v -> %+v", before.Turn, res.Snapshot.Turn)
	}
	if len(res.Outcome.Events) != 0 {
		t.Errorf("rejection produced %d events", len(res.Outcome.Events))
	}
}

func TestPlayerName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", "survivor"},
		{"   ", "survivor"},
		{"  Ada  ", "Ada"},
		{strings.Repeat("a", 31) + "é", strings.Repeat("a", 31) + "é"},
		{strings.Repeat("a", 31) + "éé", strings.Repeat("a", 31) + "é"},
		{strings.Repeat("ж", 40), strings.Repeat("ж", 32)},
		{"Bo\xc3", "Bo"},
	}
	for _, tt := range tests {
		got := playerName(tt.raw)
		if got != tt.want {
			t.Errorf("playerName(%q) = %q, want %q", tt.raw, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("playerName(%q) = %q is not valid UTF-8", tt.raw, got)
		}
	}
}

func TestSessionMultiByteNameIsRecordedIntact(t *testing.T) {
	store := newStore(t)
	ss := newSessionService(t, doomedRules(), store)
	name := strings.Repeat("a", 31) + "éx"
	sess, _, err := ss.Start(StartOptions{PlayerName: name})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	res, err := ss.Apply(context.Background(), sess.ID, game.Action{Kind: game.ActionEndDay})
	if err != nil || res.Run == nil {
		t.Fatalf("Apply: run %v, err %v", res.Run, err)
	}
	want := strings.Repeat("a", 31) + "é"
	if res.Run.PlayerName != want || !utf8.ValidString(res.Run.PlayerName) {
		t.Errorf("recorded name = %q, want %q", res.Run.PlayerName, want)
	}
}

func TestSessionSeedReplays(t *testing.T) {
	ss := newSessionService(t, game.DefaultRules(), newStore(t))
	seed := int64(1234)

	_, a, err := ss.Start(StartOptions{Seed: &seed})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	_, b, err := ss.Start(StartOptions{Seed: &seed})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(a.Zombies) != len(b.Zombies) {
		t.Fatalf("zombie counts differ: %d vs %d", len(a.Zombies), len(b.Zombies))
	}
	for i := range a.Zombies {
		if a.Zombies[i].Position != b.Zombies[i].Position || a.Zombies[i].Kind != b.Zombies[i].Kind {
			t.Fatalf("zombie %d differs", i)
		}
	}
}

func TestSessionLookupAndEnd(t *testing.T) {
	ss := newSessionService(t, game.DefaultRules(), newStore(t))
	sess, _, err := ss.Start(StartOptions{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := ss.Snapshot(sess.ID); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	ss.End(sess.ID)
	if ss.Count() != 0 {
		t.Errorf("count = %d after End", ss.Count())
	}
	if _, err := ss.Snapshot(sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Snapshot after End: %v", err)
	}
	if _, err := ss.Apply(context.Background(), sess.ID, game.Action{Kind: game.ActionLoot}); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Apply after End: %v", err)
	}
}

func TestSessionCap(t *testing.T) {
	rs := newRunService(t, newStore(t), 0)
	ss := NewSessionService(game.DefaultRules(), rs, 1, logging.Component(logging.Discard(), "sessions"))
	if _, _, err := ss.Start(StartOptions{}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, _, err := ss.Start(StartOptions{}); !errors.Is(err, ErrTooManySessions) {
		t.Fatalf("second Start: %v", err)
	}
}

func TestPruneIdle(t *testing.T) {
	ss := newSessionService(t, game.DefaultRules(), newStore(t))
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ss.now = func() time.Time { return clock }

	old, _, _ := ss.Start(StartOptions{})
	clock = clock.Add(20 * time.Minute)
	fresh, _, _ := ss.Start(StartOptions{})
	clock = clock.Add(15 * time.Minute)

	if n := ss.PruneIdle(30 * time.Minute); n != 1 {
		t.Fatalf("pruned %d, want 1", n)
	}
	if _, err := ss.Get(old.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Error("idle session survived")
	}
	if _, err := ss.Get(fresh.ID); err != nil {
		t.Errorf("active session pruned: %v", err)
	}
}

func TestRunServiceCachesTop(t *testing.T) {
	store := newStore(t)
	rs := newRunService(t, store, time.Minute)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := rs.Record(ctx, models.RunRecord{ID: "a", DaysSurvived: 2, EndedAt: now}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	for i := 0; i < 3; i++ {
		runs, err := rs.Top(ctx, 5)
		if err != nil {
			t.Fatalf("Top: %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("Top = %d runs, want 1", len(runs))
		}
	}
	if got := store.topCalls.Load(); got != 1 {
		t.Errorf("store read %d times, want 1", got)
	}

	if err := rs.Record(ctx, models.RunRecord{ID: "b", DaysSurvived: 4, EndedAt: now}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	runs, err := rs.Top(ctx, 5)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "b" {
		t.Errorf("Top after Record = %+v", runs)
	}
	if got := store.topCalls.Load(); got != 2 {
		t.Errorf("store read %d times, want 2", got)
	}
}

func TestRunServiceWithoutCache(t *testing.T) {
	store := newStore(t)
	rs := newRunService(t, store, 0)
	for i := 0; i < 2; i++ {
		if _, err := rs.Top(context.Background(), 0); err != nil {
			t.Fatalf("Top: %v", err)
		}
	}
	if got := store.topCalls.Load(); got != 2 {
		t.Errorf("store read %d times, want 2", got)
	}
}

func TestRunServiceGet(t *testing.T) {
	rs := newRunService(t, newStore(t), time.Minute)
	ctx := context.Background()
	if err := rs.Record(ctx, models.RunRecord{ID: "x", PlayerName: "Cy"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	run, err := rs.Get(ctx, "x")
	if err != nil || run.PlayerName != "Cy" {
		t.Fatalf("Get = %+v, %v", run, err)
	}
	if _, err := rs.Get(ctx, "y"); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("Get(missing) = %v", err)
	}
}

func TestClampLimit(t *testing.T) {
	for in, want := range map[int]int{-3: 10, 0: 10, 1: 1, 50: 50, 100: 100, 101: 100} {
		if got := ClampLimit(in); got != want {
			t.Errorf("ClampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}
