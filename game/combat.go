package game

import (
	"fmt"

	"deadgrid/server/models"
)

// Melee attacks an adjacent zombie. It costs one action.
func (s *State) Melee(targetID string) (Outcome, error) {
	if err := s.readyForAction(); err != nil {
		return Outcome{}, err
	}
	defer s.enter()()
	z, err := s.targetInRange(targetID, s.rules.MeleeRange)
	if err != nil {
		return Outcome{}, err
	}
	s.meleeAttack(z)
	s.spendAction()
	return s.drain(), nil
}

// Shoot fires at a zombie within shooting range. Every shot costs the full
// ammo price whether or not it kills, plus one action.
func (s *State) Shoot(targetID string) (Outcome, error) {
	if err := s.readyForAction(); err != nil {
		return Outcome{}, err
	}
	defer s.enter()()
	z, err := s.targetInRange(targetID, s.rules.ShootRange)
	if err != nil {
		return Outcome{}, err
	}
	if s.Player.Ammo < s.rules.ShotAmmoCost {
		return Outcome{}, reject(ReasonInsufficientResources, "need %d ammo, have %d", s.rules.ShotAmmoCost, s.Player.Ammo)
	}
	s.Player.Ammo -= s.rules.ShotAmmoCost
	damage := roll(s.rng, s.rules.ShotDamage, s.rules.ShotSpread)
	s.damageZombie(z, damage)
	s.spendAction()
	return s.drain(), nil
}

func (s *State) targetInRange(targetID string, maxRange int) (*models.Zombie, error) {
	z := s.Zombie(targetID)
	if z == nil {
		return nil, reject(ReasonTargetNotFound, "no zombie %q", targetID)
	}
	if d := Manhattan(s.Player.Position, z.Position); d > maxRange {
		return nil, reject(ReasonOutOfRange, "%s is %d cells away, range %d", targetID, d, maxRange)
	}
	return z, nil
}

// meleeAttack strikes z. A survivor may counter-attack.
func (s *State) meleeAttack(z *models.Zombie) {
	damage := roll(s.rng, s.rules.MeleeDamage, s.rules.MeleeSpread)
	if killed := s.damageZombie(z, damage); killed {
		return
	}
	if chance(s.rng, s.rules.CounterChance) {
		s.emit(Event{
			Type:     EventCounterAttack,
			EntityID: z.ID,
			Position: posPtr(z.Position),
			Message:  "Zombie counters!",
		})
		s.damagePlayer(s.rules.CounterDamage)
	}
}

// damageZombie applies damage and kills the zombie at zero health. It
// reports whether the zombie died.
func (s *State) damageZombie(z *models.Zombie, damage int) bool {
	z.Health -= damage
	s.emit(Event{
		Type:     EventZombieDamaged,
		EntityID: z.ID,
		Position: posPtr(z.Position),
		Amount:   damage,
		Health:   z.Health,
	})
	if z.Health > 0 {
		return false
	}
	s.killZombie(z)
	return true
}

func (s *State) killZombie(z *models.Zombie) {
	for i, live := range s.Zombies {
		if live == z {
			s.Zombies = append(s.Zombies[:i], s.Zombies[i+1:]...)
			break
		}
	}
	s.Stats.Kills++
	s.emit(Event{
		Type:     EventZombieKilled,
		EntityID: z.ID,
		Position: posPtr(z.Position),
	})
	s.rollKillLoot()
}

// mitigate applies camp defense: each full DefensePerPoint of defense blocks
// one point of damage, but a hit always lands for at least 1.
func (s *State) mitigate(amount int) int {
	if s.Camp == nil || s.Camp.Defense <= 0 || s.rules.DefensePerPoint <= 0 {
		return amount
	}
	return max(1, amount-s.Camp.Defense/s.rules.DefensePerPoint)
}

// damagePlayer is the single path every hit on the player goes through. It
// returns the damage actually taken.
func (s *State) damagePlayer(amount int) int {
	if s.over {
		return 0
	}
	amount = s.mitigate(amount)
	s.Player.Health -= amount
	s.emit(Event{
		Type:     EventPlayerDamaged,
		EntityID: s.Player.ID,
		Amount:   amount,
		Health:   s.Player.Health,
		Message:  fmt.Sprintf("-%d HP", amount),
	})
	if s.Player.Health <= 0 {
		s.gameOver()
	}
	return amount
}

func (s *State) healPlayer(limit int) int {
	heal := min(limit, s.Player.MaxHealth-s.Player.Health)
	if heal < 0 {
		heal = 0
	}
	s.Player.Health += heal
	s.emit(Event{
		Type:     EventPlayerHealed,
		EntityID: s.Player.ID,
		Amount:   heal,
		Health:   s.Player.Health,
		Message:  fmt.Sprintf("+%d HP", heal),
	})
	return heal
}

func (s *State) gameOver() {
	s.over = true
	stats := s.FinalStats()
	s.emit(Event{
		Type:    EventGameOver,
		Day:     stats.DaysSurvived,
		Amount:  stats.Kills,
		Message: fmt.Sprintf("Survived %d days, killed %d zombies", stats.DaysSurvived, stats.Kills),
	})
}
