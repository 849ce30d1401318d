package game

import (
	"fmt"

	"deadgrid/server/models"
)

// sampleAttemptsPerCell bounds rejection sampling so a crowded grid cannot
// loop forever.
const sampleAttemptsPerCell = 8

// sampleCell draws uniformly random cells until accept passes or the attempt
// budget runs out.
func (s *State) sampleCell(accept func(models.Position) bool) (models.Position, bool) {
	attempts := s.grid.Width * s.grid.Height * sampleAttemptsPerCell
	for i := 0; i < attempts; i++ {
		p := models.Position{X: s.rng.Intn(s.grid.Width), Y: s.rng.Intn(s.grid.Height)}
		if accept(p) {
			return p, true
		}
	}
	return models.Position{}, false
}

// initialWaveSize is 5 + floor(day/2) with the default rules.
func (s *State) initialWaveSize() int {
	return s.rules.InitialZombies + s.Turn.Day/2
}

// spawnInitialWave places the opening zombies away from the player: never in
// the box |dx| < clearance and |dy| < clearance, never on an occupied cell.
func (s *State) spawnInitialWave() {
	clearance := s.rules.SpawnClearance
	player := s.Player.Position
	for i := 0; i < s.initialWaveSize(); i++ {
		pos, ok := s.sampleCell(func(p models.Position) bool {
			if abs(p.X-player.X) < clearance && abs(p.Y-player.Y) < clearance {
				return false
			}
			return !s.occupied(p)
		})
		if !ok {
			return
		}
		s.spawnZombie(pos)
	}
}

// spawnEdgeWave attempts count spawns on random border cells and returns how
// many landed. An attempt whose cell is taken is dropped, not retried.
func (s *State) spawnEdgeWave(count int) int {
	placed := 0
	for i := 0; i < count; i++ {
		if s.spawnAtEdge() {
			placed++
		}
	}
	return placed
}

func (s *State) spawnAtEdge() bool {
	w, h := s.grid.Width, s.grid.Height
	var pos models.Position
	switch s.rng.Intn(4) {
	case 0:
		pos = models.Position{X: 0, Y: s.rng.Intn(h)}
	case 1:
		pos = models.Position{X: w - 1, Y: s.rng.Intn(h)}
	case 2:
		pos = models.Position{X: s.rng.Intn(w), Y: 0}
	default:
		pos = models.Position{X: s.rng.Intn(w), Y: h - 1}
	}
	if s.occupied(pos) {
		return false
	}
	s.spawnZombie(pos)
	return true
}

// spawnZombie rolls the zombie's tier and places it on pos.
func (s *State) spawnZombie(pos models.Position) *models.Zombie {
	kind := models.ZombieSmall
	if chance(s.rng, s.rules.BigZombieChance) {
		kind = models.ZombieBig
	}
	return s.addZombie(pos, kind)
}

// addZombie places a zombie of the given kind on pos. The cell must be free.
func (s *State) addZombie(pos models.Position, kind models.ZombieKind) *models.Zombie {
	health := s.rules.SmallZombieHealth
	if kind == models.ZombieBig {
		health = s.rules.BigZombieHealth
	}
	z := &models.Zombie{
		ID:        s.newID("zombie"),
		Kind:      kind,
		Position:  pos,
		Health:    health,
		MaxHealth: health,
	}
	s.Zombies = append(s.Zombies, z)
	s.Stats.Spawned++
	s.emit(Event{
		Type:     EventZombieSpawned,
		EntityID: z.ID,
		Position: posPtr(pos),
		Health:   health,
		Message:  fmt.Sprintf("%s zombie appeared", kind),
	})
	return z
}
