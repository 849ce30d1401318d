package game

import (
	"errors"
	"testing"

	"deadgrid/server/models"
)

// scriptedSource replays fixed rolls. Once a queue runs dry Intn yields 0 and
// Float64 yields 0.99, which reads as "small zombie, no counter, no loot".
type scriptedSource struct {
	ints   []int
	floats []float64
}

func (s *scriptedSource) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v < 0 || v >= n {
		panic("scripted Intn value out of range")
	}
	return v
}

func (s *scriptedSource) Float64() float64 {
	if len(s.floats) == 0 {
		return 0.99
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func script(ints []int, floats ...float64) *scriptedSource {
	return &scriptedSource{ints: ints, floats: floats}
}

// newEmptyState returns a world with the player at (12,9), no zombies and no
// lootables. Building it consumes nothing from src.
func newEmptyState(t *testing.T, src Source) *State {
	t.Helper()
	rules := DefaultRules()
	rules.InitialZombies = 0
	rules.LootablesBase = 0
	rules.LootablesSpread = 0
	s := New(rules, WithSource(src))
	if len(s.Zombies) != 0 || len(s.Lootables) != 0 {
		t.Fatalf("expected empty world, got %d zombies, %d lootables", len(s.Zombies), len(s.Lootables))
	}
	return s
}

func at(x, y int) models.Position {
	return models.Position{X: x, Y: y}
}

func (s *State) placeLootable(p models.Position) *models.Lootable {
	l := &models.Lootable{ID: s.newID("loot"), Variant: "trash", Position: p}
	s.Lootables = append(s.Lootables, l)
	return l
}

func wantReason(t *testing.T, err error, want error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("error = %v, want %v", err, want)
	}
}
