package game

import (
	"fmt"

	"deadgrid/server/models"
)

// Resource is a kind of reward a loot roll can grant.
type Resource string

const (
	ResourceNone      Resource = ""
	ResourceAmmo      Resource = "ammo"
	ResourceFood      Resource = "food"
	ResourceWater     Resource = "water"
	ResourceMedicine  Resource = "medicine"
	ResourceMaterials Resource = "materials"
)

// LootEntry grants Base + uniform_int(0, Spread) of Resource when the roll
// falls below Below and above every earlier entry's bound.
type LootEntry struct {
	Below    float64
	Resource Resource
	Base     int
	Spread   int
}

// LootTable is an ordered list of cumulative thresholds over U[0,1). A roll
// past the last bound yields nothing.
type LootTable []LootEntry

// KillLoot is rolled once per zombie killed.
var KillLoot = LootTable{
	{Below: 0.3, Resource: ResourceAmmo, Base: 3, Spread: 4},
	{Below: 0.5, Resource: ResourceMaterials, Base: 2},
}

// GroundLoot is rolled once per lootable searched.
var GroundLoot = LootTable{
	{Below: 0.25, Resource: ResourceAmmo, Base: 5, Spread: 9},
	{Below: 0.5, Resource: ResourceFood, Base: 3, Spread: 4},
	{Below: 0.7, Resource: ResourceWater, Base: 3, Spread: 4},
	{Below: 0.85, Resource: ResourceMedicine, Base: 1},
	{Below: 1.0, Resource: ResourceMaterials, Base: 2, Spread: 3},
}

// Roll draws one outcome from the table. It returns ResourceNone and 0 when
// the roll lands past every entry.
func (t LootTable) Roll(src Source) (Resource, int) {
	r := src.Float64()
	for _, e := range t {
		if r < e.Below {
			return e.Resource, roll(src, e.Base, e.Spread)
		}
	}
	return ResourceNone, 0
}

// grant credits amount of res to the player and logs it in the inventory.
// label controls the inventory entry; an empty label uses "Name xN".
func (s *State) grant(res Resource, amount int, label string) {
	if res == ResourceNone || amount <= 0 {
		return
	}
	p := s.Player
	switch res {
	case ResourceAmmo:
		p.Ammo += amount
	case ResourceFood:
		p.Resources.Food += amount
	case ResourceWater:
		p.Resources.Water += amount
	case ResourceMedicine:
		p.Resources.Medicine += amount
	case ResourceMaterials:
		p.Resources.Materials += amount
	}
	if label == "" {
		label = inventoryLabel(res, amount)
	}
	p.Inventory = append(p.Inventory, label)
	s.emit(Event{
		Type:     EventLootFound,
		EntityID: p.ID,
		Resource: res,
		Amount:   amount,
		Message:  fmt.Sprintf("Found %d %s", amount, res),
	})
}

func inventoryLabel(res Resource, amount int) string {
	name := resourceName(res)
	if res == ResourceMedicine && amount == 1 {
		return name
	}
	return fmt.Sprintf("%s x%d", name, amount)
}

func resourceName(res Resource) string {
	switch res {
	case ResourceAmmo:
		return "Ammo"
	case ResourceFood:
		return "Food"
	case ResourceWater:
		return "Water"
	case ResourceMedicine:
		return "Medicine"
	case ResourceMaterials:
		return "Materials"
	default:
		return string(res)
	}
}

// rollKillLoot grants the single kill-loot outcome for a dead zombie. Kill
// loot is logged without a count.
func (s *State) rollKillLoot() {
	res, amount := KillLoot.Roll(s.rng)
	s.grant(res, amount, resourceName(res))
}

// Loot searches the lootable on the player's cell. It costs one action.
func (s *State) Loot() (Outcome, error) {
	if err := s.readyForAction(); err != nil {
		return Outcome{}, err
	}
	defer s.enter()()
	l := s.lootableAt(s.Player.Position)
	if l == nil {
		return Outcome{}, reject(ReasonNoLootable, "nothing to loot at (%d,%d)", s.Player.Position.X, s.Player.Position.Y)
	}
	l.Consumed = true
	res, amount := GroundLoot.Roll(s.rng)
	s.grant(res, amount, "")
	s.spendAction()
	return s.drain(), nil
}

var lootVariants = []string{"barrel-red", "barrel-blue", "trash"}

// placeLootables scatters the ground lootables over cells holding no entity
// and no other lootable.
func (s *State) placeLootables() {
	count := roll(s.rng, s.rules.LootablesBase, s.rules.LootablesSpread)
	for i := 0; i < count; i++ {
		pos, ok := s.sampleCell(func(p models.Position) bool {
			return !s.occupied(p) && s.lootableAt(p) == nil
		})
		if !ok {
			return
		}
		s.Lootables = append(s.Lootables, &models.Lootable{
			ID:       s.newID("loot"),
			Variant:  lootVariants[s.rng.Intn(len(lootVariants))],
			Position: pos,
		})
	}
}
