package persistence

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"deadgrid/server/models"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func run(id string, days, kills int, endedAfter time.Duration) models.RunRecord {
	return models.RunRecord{
		ID:           id,
		SessionID:    "session-" + id,
		PlayerName:   "survivor",
		Seed:         42,
		DaysSurvived: days,
		Kills:        kills,
		CampLevel:    1,
		Inventory:    []string{"Ammo", "Food x5"},
		EndedAt:      epoch.Add(endedAfter),
	}
}

// exerciseStorage runs the behaviour every Storage must share.
func exerciseStorage(t *testing.T, store Storage) {
	t.Helper()
	ctx := context.Background()

	runs := []models.RunRecord{
		run("a", 3, 10, 0),
		run("b", 5, 2, time.Minute),
		run("c", 5, 7, 2*time.Minute),
		run("d", 5, 7, time.Minute),
		run("e", 1, 0, 0),
	}
	for _, r := range runs {
		if err := store.SaveRun(ctx, r); err != nil {
			t.Fatalf("SaveRun(%s): %v", r.ID, err)
		}
	}

	if err := store.SaveRun(ctx, runs[0]); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("duplicate SaveRun error = %v, want ErrAlreadyExists", err)
	}

	got, err := store.LoadRun(ctx, "c")
	if err != nil {
		t.Fatalf("LoadRun: %v", err)
	}
	if got.PlayerName != "survivor" || got.Seed != 42 || got.Kills != 7 || !got.EndedAt.Equal(runs[2].EndedAt) {
		t.Errorf("LoadRun = %+v", got)
	}
	if len(got.Inventory) != 2 || got.Inventory[1] != "Food x5" {
		t.Errorf("inventory = %v", got.Inventory)
	}

	if _, err := store.LoadRun(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadRun(missing) error = %v, want ErrNotFound", err)
	}

	top, err := store.TopRuns(ctx, 3)
	if err != nil {
		t.Fatalf("TopRuns: %v", err)
	}
	var ids []string
	for _, r := range top {
		ids = append(ids, r.ID)
	}
	if fmt.Sprint(ids) != "[d c b]" {
		t.Errorf("TopRuns(3) = %v, want [d c b]", ids)
	}

	all, err := store.TopRuns(ctx, 100)
	if err != nil {
		t.Fatalf("TopRuns: %v", err)
	}
	if len(all) != len(runs) {
		t.Errorf("TopRuns(100) returned %d runs, want %d", len(all), len(runs))
	}
}

func TestJSONStore(t *testing.T) {
	store, err := NewJSONStore(filepath.Join(t.TempDir(), "runs.json"))
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}
	exerciseStorage(t, store)
}

func TestJSONStoreReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.json")
	store, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}
	if err := store.SaveRun(context.Background(), run("kept", 2, 1, 0)); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	reopened, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, err := reopened.LoadRun(context.Background(), "kept"); err != nil {
		t.Fatalf("LoadRun after reopen: %v", err)
	}
}

func TestJSONStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewJSONStore(path); err == nil {
		t.Fatal("opened a corrupt store")
	}
}

func TestJSONStoreHonoursContext(t *testing.T) {
	store, err := NewJSONStore(filepath.Join(t.TempDir(), "runs.json"))
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.SaveRun(ctx, run("x", 1, 0, 0)); !errors.Is(err, context.Canceled) {
		t.Errorf("SaveRun with cancelled context = %v", err)
	}
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer store.Close()
	exerciseStorage(t, store)
}

func TestSQLiteStoreInMemory(t *testing.T) {
	store, err := NewSQLiteStore(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer store.Close()
	exerciseStorage(t, store)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("DEADGRID_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("DEADGRID_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	store, err := NewPostgresStore(ctx, dsn)
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}
	defer store.Close()
	if _, err := store.db.ExecContext(ctx, `TRUNCATE runs`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	exerciseStorage(t, store)

	// Ids from the service layer are uuids.
	id := uuid.NewString()
	if err := store.SaveRun(ctx, run(id, 9, 9, 0)); err != nil {
		t.Fatalf("SaveRun(uuid): %v", err)
	}
}

func TestSortRuns(t *testing.T) {
	runs := []models.RunRecord{
		run("z", 2, 1, 0),
		run("y", 2, 1, 0),
		run("x", 2, 3, 0),
		run("w", 4, 0, time.Hour),
	}
	SortRuns(runs)
	var ids []string
	for _, r := range runs {
		ids = append(ids, r.ID)
	}
	if fmt.Sprint(ids) != "[w x y z]" {
		t.Errorf("SortRuns = %v, want [w x y z]", ids)
	}
}
