package game

import (
	"fmt"

	"deadgrid/server/models"
)

// Phase is the turn controller's state.
type Phase string

const (
	PhasePlayerTurn       Phase = "player_turn"
	PhaseResolvingZombies Phase = "resolving_zombies"
)

// Turn tracks the action budget and day counter.
type Turn struct {
	Phase            Phase `json:"phase"`
	ActionsRemaining int   `json:"actions_remaining"`
	MaxActionsPerDay int   `json:"max_actions_per_day"`
	Day              int   `json:"day"`
}

// Stats counts zombies over the whole session.
type Stats struct {
	Spawned int `json:"spawned"`
	Kills   int `json:"kills"`
}

// FinalStats is what a finished session reports.
type FinalStats struct {
	DaysSurvived int `json:"days_survived"`
	Kills        int `json:"kills"`
	CampLevel    int `json:"camp_level"`
}

// State is the whole simulation: grid, player, zombies, lootables, camp and
// turn state. It is not safe for concurrent use; callers serialize access.
type State struct {
	rules Rules
	grid  Grid
	rng   Source

	Player    *models.Player
	Zombies   []*models.Zombie // spawn order
	Lootables []*models.Lootable
	Camp      *models.Camp
	CampOpen  bool
	Turn      Turn
	Stats     Stats

	over      bool
	busy      bool
	nextID    int
	listeners []Listener
	pending   []Event
}

// Option configures a new State.
type Option func(*State)

// WithSource sets the random source. Without it a crypto-seeded source is used.
func WithSource(src Source) Option {
	return func(s *State) { s.rng = src }
}

// WithListener subscribes l to every event, including those emitted while
// the world is being populated.
func WithListener(l Listener) Option {
	return func(s *State) { s.listeners = append(s.listeners, l) }
}

// New builds a fresh world: the player in the middle of the grid, the
// initial zombie wave and the ground lootables.
func New(rules Rules, opts ...Option) *State {
	s := &State{
		rules: rules,
		grid:  Grid{Width: rules.GridWidth, Height: rules.GridHeight},
		Player: &models.Player{
			ID:        "player",
			Position:  models.Position{X: rules.GridWidth / 2, Y: rules.GridHeight / 2},
			Health:    rules.StartHealth,
			MaxHealth: rules.MaxHealth,
			Ammo:      rules.StartAmmo,
			Inventory: []string{},
			Resources: models.Resources{
				Food:      rules.StartFood,
				Water:     rules.StartWater,
				Medicine:  rules.StartMedicine,
				Materials: rules.StartMaterials,
			},
		},
		Turn: Turn{
			Phase:            PhasePlayerTurn,
			ActionsRemaining: rules.ActionsPerDay,
			MaxActionsPerDay: rules.ActionsPerDay,
			Day:              1,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		seed, err := NewSeed()
		if err != nil {
			panic(err)
		}
		s.rng = NewSource(seed)
	}

	s.spawnInitialWave()
	s.placeLootables()
	s.drain()
	return s
}

// Subscribe adds a listener for subsequent events.
func (s *State) Subscribe(l Listener) {
	s.listeners = append(s.listeners, l)
}

// Rules returns the rules the state was built with.
func (s *State) Rules() Rules { return s.rules }

// Grid returns the grid bounds.
func (s *State) Grid() Grid { return s.grid }

// Over reports whether the game has ended.
func (s *State) Over() bool { return s.over }

// FinalStats returns days survived, kills and camp level (0 without a camp).
func (s *State) FinalStats() FinalStats {
	level := 0
	if s.Camp != nil {
		level = s.Camp.Level
	}
	return FinalStats{
		DaysSurvived: s.Turn.Day,
		Kills:        s.Stats.Kills,
		CampLevel:    level,
	}
}

// Zombie looks up a live zombie by id.
func (s *State) Zombie(id string) *models.Zombie {
	for _, z := range s.Zombies {
		if z.ID == id && z.Alive() {
			return z
		}
	}
	return nil
}

// lootableAt returns the unconsumed lootable on p, if any.
func (s *State) lootableAt(p models.Position) *models.Lootable {
	for _, l := range s.Lootables {
		if !l.Consumed && l.Position == p {
			return l
		}
	}
	return nil
}

func (s *State) newID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

// Snapshot is a read-only copy of the state for the presentation layer.
type Snapshot struct {
	Grid      Grid              `json:"grid"`
	Player    models.Player     `json:"player"`
	Zombies   []models.Zombie   `json:"zombies"`
	Lootables []models.Lootable `json:"lootables"`
	Camp      *models.Camp      `json:"camp,omitempty"`
	CampOpen  bool              `json:"camp_open"`
	Turn      Turn              `json:"turn"`
	Stats     Stats             `json:"stats"`
	GameOver  bool              `json:"game_over"`
}

// Snapshot copies the current state. Consumed lootables are left out.
func (s *State) Snapshot() Snapshot {
	player := *s.Player
	player.Inventory = append([]string(nil), s.Player.Inventory...)

	zombies := make([]models.Zombie, 0, len(s.Zombies))
	for _, z := range s.Zombies {
		zombies = append(zombies, *z)
	}
	lootables := make([]models.Lootable, 0, len(s.Lootables))
	for _, l := range s.Lootables {
		if !l.Consumed {
			lootables = append(lootables, *l)
		}
	}
	var camp *models.Camp
	if s.Camp != nil {
		c := *s.Camp
		camp = &c
	}
	return Snapshot{
		Grid:      s.grid,
		Player:    player,
		Zombies:   zombies,
		Lootables: lootables,
		Camp:      camp,
		CampOpen:  s.CampOpen,
		Turn:      s.Turn,
		Stats:     s.Stats,
		GameOver:  s.over,
	}
}
