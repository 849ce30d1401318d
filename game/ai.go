package game

import "deadgrid/server/models"

// DecisionKind is what a zombie chose to do this turn.
type DecisionKind string

const (
	DecisionIdle    DecisionKind = "idle"
	DecisionAttack  DecisionKind = "attack"
	DecisionMove    DecisionKind = "move"
	DecisionBlocked DecisionKind = "blocked"
)

// Decision is a zombie's choice for one zombie phase.
type Decision struct {
	Kind DecisionKind
	To   models.Position // destination for DecisionMove and DecisionBlocked
}

// decide picks z's action from its distance to the player: idle beyond
// sight, attack when adjacent, otherwise one greedy step along the axis with
// the larger gap. Equal gaps are broken uniformly at random. A step onto an
// occupied cell is dropped rather than rerouted.
func (s *State) decide(z *models.Zombie) Decision {
	target := s.Player.Position
	d := Manhattan(z.Position, target)
	switch {
	case d > s.rules.ZombieSight:
		return Decision{Kind: DecisionIdle}
	case d <= 1:
		return Decision{Kind: DecisionAttack}
	}

	dx := target.X - z.Position.X
	dy := target.Y - z.Position.Y
	alongX := abs(dx) > abs(dy)
	if abs(dx) == abs(dy) {
		alongX = s.rng.Intn(2) == 0
	}
	to := z.Position
	if alongX {
		to.X += sign(dx)
	} else {
		to.Y += sign(dy)
	}
	if s.occupied(to) {
		return Decision{Kind: DecisionBlocked, To: to}
	}
	return Decision{Kind: DecisionMove, To: to}
}

// resolveZombies runs the zombie phase: every zombie alive when the phase
// starts acts once, in spawn order, each seeing the moves of those before
// it. The phase stops early if the player dies.
func (s *State) resolveZombies() {
	s.setPhase(PhaseResolvingZombies)
	order := append([]*models.Zombie(nil), s.Zombies...)
	for _, z := range order {
		if s.over {
			return
		}
		if !z.Alive() {
			continue
		}
		s.actZombie(z)
	}
}

func (s *State) actZombie(z *models.Zombie) {
	dec := s.decide(z)
	switch dec.Kind {
	case DecisionAttack:
		damage := roll(s.rng, s.rules.ZombieDamage, s.rules.ZombieSpread)
		s.emit(Event{
			Type:     EventZombieAttacked,
			EntityID: z.ID,
			Position: posPtr(z.Position),
			Amount:   damage,
		})
		s.damagePlayer(damage)
	case DecisionMove:
		z.Position = dec.To
		s.emit(Event{
			Type:     EventZombieMoved,
			EntityID: z.ID,
			Position: posPtr(z.Position),
			Health:   z.Health,
		})
	}
}
