package models

// Position is a cell on the game grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the position offset by dx, dy.
func (p Position) Add(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Entity interface for anything that occupies a cell on the map
type Entity interface {
	GetPosition() Position
	GetID() string
}

// Resources are the player's independent supply pools. None of them may go
// below zero.
type Resources struct {
	Food      int `json:"food"`
	Water     int `json:"water"`
	Medicine  int `json:"medicine"`
	Materials int `json:"materials"`
}

type Player struct {
	ID        string    `json:"id"`
	Position  Position  `json:"position"`
	Health    int       `json:"health"`
	MaxHealth int       `json:"max_health"`
	Ammo      int       `json:"ammo"`
	Inventory []string  `json:"inventory"` // Acquired item labels, oldest first
	Resources Resources `json:"resources"`
}

func (p *Player) GetPosition() Position { return p.Position }
func (p *Player) GetID() string         { return p.ID }

// ZombieKind selects a zombie's health tier.
type ZombieKind string

const (
	ZombieSmall ZombieKind = "small"
	ZombieBig   ZombieKind = "big"
)

type Zombie struct {
	ID        string     `json:"id"`
	Kind      ZombieKind `json:"kind"`
	Position  Position   `json:"position"`
	Health    int        `json:"health"`
	MaxHealth int        `json:"max_health"`
}

func (z *Zombie) GetPosition() Position { return z.Position }
func (z *Zombie) GetID() string         { return z.ID }

// Alive reports whether the zombie still has health left.
func (z *Zombie) Alive() bool { return z.Health > 0 }

// Camp is the player's base. It is founded once and never destroyed.
type Camp struct {
	Position  Position `json:"position"`
	Level     int      `json:"level"`
	Survivors int      `json:"survivors"`
	Defense   int      `json:"defense"`
	Supplies  int      `json:"supplies"`
}

// Lootable is a world-placed container that yields loot exactly once.
// Lootables do not occupy their cell.
type Lootable struct {
	ID       string   `json:"id"`
	Variant  string   `json:"variant"` // barrel-red, barrel-blue, trash
	Position Position `json:"position"`
	Consumed bool     `json:"consumed"`
}
