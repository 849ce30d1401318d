package game

import (
	"fmt"

	"deadgrid/server/models"
)

// Grid is the bounded coordinate space. It stores nothing; occupancy is
// always derived from the live entity set held by State.
type Grid struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// InBounds reports whether p lies inside the grid.
func (g Grid) InBounds(p models.Position) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// Clamp offsets p by dx, dy and clamps the result to the grid.
func (g Grid) Clamp(p models.Position, dx, dy int) models.Position {
	return models.Position{
		X: clampInt(p.X+dx, 0, g.Width-1),
		Y: clampInt(p.Y+dy, 0, g.Height-1),
	}
}

// OnEdge reports whether p lies on one of the four border lines.
func (g Grid) OnEdge(p models.Position) bool {
	return p.X == 0 || p.Y == 0 || p.X == g.Width-1 || p.Y == g.Height-1
}

// Manhattan returns |dx| + |dy| between a and b.
func Manhattan(a, b models.Position) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// OccupantKind tells which kind of entity holds a cell.
type OccupantKind string

const (
	OccupantPlayer OccupantKind = "player"
	OccupantZombie OccupantKind = "zombie"
)

// Occupant is the entity found on a cell.
type Occupant struct {
	Kind   OccupantKind
	Player *models.Player
	Zombie *models.Zombie
}

// ID returns the occupant's entity id.
func (o Occupant) ID() string {
	if o.Kind == OccupantPlayer {
		return o.Player.ID
	}
	return o.Zombie.ID
}

// OccupantAt returns the entity standing on p. Asking about a cell outside the
// grid is a programming error: callers clamp before they look up.
func (s *State) OccupantAt(p models.Position) (Occupant, bool) {
	if !s.grid.InBounds(p) {
		panic(fmt.Sprintf("game: occupancy lookup out of bounds at (%d,%d)", p.X, p.Y))
	}
	if s.Player.Position == p {
		return Occupant{Kind: OccupantPlayer, Player: s.Player}, true
	}
	if z := s.zombieAt(p); z != nil {
		return Occupant{Kind: OccupantZombie, Zombie: z}, true
	}
	return Occupant{}, false
}

func (s *State) occupied(p models.Position) bool {
	_, ok := s.OccupantAt(p)
	return ok
}

func (s *State) zombieAt(p models.Position) *models.Zombie {
	for _, z := range s.Zombies {
		if z.Alive() && z.Position == p {
			return z
		}
	}
	return nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
