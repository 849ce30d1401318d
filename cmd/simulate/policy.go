package main

import (
	"deadgrid/server/game"
	"deadgrid/server/models"
)

// chooseAction is the scripted survivor. Founding and tending the camp come
// first, then zombies in reach, then loot.
func chooseAction(snap game.Snapshot, rules game.Rules) game.Action {
	p := snap.Player

	if snap.Camp == nil && p.Resources.Materials >= rules.CampCost {
		return game.Action{Kind: game.ActionCamp}
	}
	if snap.Camp != nil {
		if kind, ok := campUpkeep(p, rules); ok {
			return game.Action{Kind: game.ActionCampAction, CampAction: kind}
		}
	}

	if z, dist, ok := nearestZombie(snap); ok {
		if dist <= rules.MeleeRange {
			return game.Action{Kind: game.ActionMelee, TargetID: z.ID}
		}
		if dist <= rules.ShootRange && p.Ammo >= rules.ShotAmmoCost {
			return game.Action{Kind: game.ActionShoot, TargetID: z.ID}
		}
	}

	target, ok := nearestLootable(snap)
	if ok && target.Position == p.Position {
		return game.Action{Kind: game.ActionLoot}
	}
	if ok {
		dx, dy := stepToward(p.Position, target.Position)
		return game.Action{Kind: game.ActionMove, DX: dx, DY: dy}
	}
	return game.Action{Kind: game.ActionEndDay}
}

// campUpkeep picks an affordable camp action. Each one spends resources,
// so repeated calls run dry.
func campUpkeep(p models.Player, rules game.Rules) (game.CampActionKind, bool) {
	r := p.Resources
	switch {
	case p.Health*2 <= p.MaxHealth && r.Medicine > 0:
		return game.CampHealAll, true
	case p.Ammo < rules.ShotAmmoCost && r.Materials >= rules.CraftAmmoCost:
		return game.CampCraftAmmo, true
	case r.Materials >= rules.UpgradeCost:
		return game.CampUpgradeDefenses, true
	case r.Food >= 2*rules.RecruitFood && r.Water >= 2*rules.RecruitWater:
		return game.CampRecruitSurvivor, true
	}
	return 0, false
}

func nearestZombie(snap game.Snapshot) (models.Zombie, int, bool) {
	var best models.Zombie
	bestDist, found := 0, false
	for _, z := range snap.Zombies {
		if !z.Alive() {
			continue
		}
		d := game.Manhattan(snap.Player.Position, z.Position)
		if !found || d < bestDist {
			best, bestDist, found = z, d, true
		}
	}
	return best, bestDist, found
}

func nearestLootable(snap game.Snapshot) (models.Lootable, bool) {
	var best models.Lootable
	bestDist, found := 0, false
	for _, l := range snap.Lootables {
		if l.Consumed {
			continue
		}
		d := game.Manhattan(snap.Player.Position, l.Position)
		if !found || d < bestDist {
			best, bestDist, found = l, d, true
		}
	}
	return best, found
}

// stepToward moves along the axis with the larger gap, x on ties.
func stepToward(from, to models.Position) (int, int) {
	dx, dy := to.X-from.X, to.Y-from.Y
	if absInt(dx) >= absInt(dy) {
		return sign(dx), 0
	}
	return 0, sign(dy)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
