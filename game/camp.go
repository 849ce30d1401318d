package game

import (
	"fmt"

	"deadgrid/server/models"
)

// CampActionKind numbers the camp menu entries.
type CampActionKind int

const (
	CampUpgradeDefenses CampActionKind = iota + 1
	CampRecruitSurvivor
	CampScavengingParty
	CampCraftAmmo
	CampHealAll
)

func (k CampActionKind) String() string {
	switch k {
	case CampUpgradeDefenses:
		return "upgrade_defenses"
	case CampRecruitSurvivor:
		return "recruit_survivor"
	case CampScavengingParty:
		return "scavenging_party"
	case CampCraftAmmo:
		return "craft_ammo"
	case CampHealAll:
		return "heal_all"
	default:
		return fmt.Sprintf("camp_action_%d", int(k))
	}
}

// FoundOrToggleCamp founds a camp on the player's cell when there is none
// and enough materials; with a camp it opens or closes the camp panel.
// Neither spends an action.
func (s *State) FoundOrToggleCamp() (Outcome, error) {
	if err := s.readyForCommand(); err != nil {
		return Outcome{}, err
	}
	defer s.enter()()
	if s.Camp != nil {
		s.CampOpen = !s.CampOpen
		s.emit(Event{Type: EventCampToggled, Message: fmt.Sprintf("camp panel open: %t", s.CampOpen)})
		return s.drain(), nil
	}
	p := s.Player
	if p.Resources.Materials < s.rules.CampCost {
		return Outcome{}, reject(ReasonInsufficientResources, "need %d materials to establish camp", s.rules.CampCost)
	}
	p.Resources.Materials -= s.rules.CampCost
	s.Camp = &models.Camp{
		Position:  p.Position,
		Level:     1,
		Survivors: 1,
		Defense:   s.rules.CampDefense,
	}
	s.Turn.MaxActionsPerDay++
	s.emit(Event{
		Type:     EventCampFounded,
		Position: posPtr(p.Position),
		Message:  "Camp established! +1 action per day!",
	})
	return s.drain(), nil
}

// CampAction performs one camp menu entry. A failed action changes nothing.
// Camp actions never spend the action budget.
func (s *State) CampAction(kind CampActionKind) (Outcome, error) {
	if err := s.readyForCommand(); err != nil {
		return Outcome{}, err
	}
	defer s.enter()()
	if s.Camp == nil {
		return Outcome{}, reject(ReasonNoCamp, "no camp established")
	}
	p := s.Player
	c := s.Camp
	switch kind {
	case CampUpgradeDefenses:
		if p.Resources.Materials < s.rules.UpgradeCost {
			return Outcome{}, reject(ReasonInsufficientResources, "need %d materials", s.rules.UpgradeCost)
		}
		p.Resources.Materials -= s.rules.UpgradeCost
		c.Defense += s.rules.UpgradeDefense
		c.Level++
		s.emit(Event{Type: EventCampUpdated, Amount: c.Defense, Message: fmt.Sprintf("Defenses upgraded to level %d", c.Level)})

	case CampRecruitSurvivor:
		if p.Resources.Food < s.rules.RecruitFood || p.Resources.Water < s.rules.RecruitWater {
			return Outcome{}, reject(ReasonInsufficientResources, "need %d food and %d water", s.rules.RecruitFood, s.rules.RecruitWater)
		}
		p.Resources.Food -= s.rules.RecruitFood
		p.Resources.Water -= s.rules.RecruitWater
		c.Survivors++
		s.Turn.MaxActionsPerDay++
		s.emit(Event{Type: EventCampUpdated, Amount: c.Survivors, Message: "Survivor recruited! +1 action per day!"})

	case CampScavengingParty:
		if c.Survivors <= 1 {
			return Outcome{}, reject(ReasonInsufficientResources, "need more survivors")
		}
		found := roll(s.rng, s.rules.ScavengeBase, s.rules.ScavengeSpread)
		c.Supplies += found
		s.emit(Event{Type: EventCampUpdated, Amount: found, Message: fmt.Sprintf("Scavenging party found %d supplies!", found)})

	case CampCraftAmmo:
		if p.Resources.Materials < s.rules.CraftAmmoCost {
			return Outcome{}, reject(ReasonInsufficientResources, "need %d materials", s.rules.CraftAmmoCost)
		}
		p.Resources.Materials -= s.rules.CraftAmmoCost
		p.Ammo += s.rules.CraftAmmoYield
		s.emit(Event{Type: EventCampUpdated, Resource: ResourceAmmo, Amount: s.rules.CraftAmmoYield, Message: fmt.Sprintf("Crafted %d ammo!", s.rules.CraftAmmoYield)})

	case CampHealAll:
		if p.Resources.Medicine <= 0 {
			return Outcome{}, reject(ReasonInsufficientResources, "no medicine")
		}
		s.healPlayer(s.rules.CampHeal)
		p.Resources.Medicine--

	default:
		return Outcome{}, reject(ReasonUnknownAction, "unknown camp action %d", int(kind))
	}
	return s.drain(), nil
}
