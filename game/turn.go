package game

import (
	"fmt"

	"deadgrid/server/models"
)

// ActionKind names a request from the input layer.
type ActionKind string

const (
	ActionMove       ActionKind = "move"
	ActionMelee      ActionKind = "melee"
	ActionShoot      ActionKind = "shoot"
	ActionLoot       ActionKind = "loot"
	ActionEndDay     ActionKind = "end_day"
	ActionCamp       ActionKind = "camp"
	ActionCampAction ActionKind = "camp_action"
)

// Action is one input-layer request. Only the fields its Kind uses are read.
type Action struct {
	Kind       ActionKind     `json:"kind"`
	DX         int            `json:"dx,omitempty"`
	DY         int            `json:"dy,omitempty"`
	TargetID   string         `json:"target_id,omitempty"`
	CampAction CampActionKind `json:"camp_action,omitempty"`
}

// Apply dispatches a to the matching operation.
func (s *State) Apply(a Action) (Outcome, error) {
	switch a.Kind {
	case ActionMove:
		return s.Move(a.DX, a.DY)
	case ActionMelee:
		return s.Melee(a.TargetID)
	case ActionShoot:
		return s.Shoot(a.TargetID)
	case ActionLoot:
		return s.Loot()
	case ActionEndDay:
		return s.EndDay()
	case ActionCamp:
		return s.FoundOrToggleCamp()
	case ActionCampAction:
		return s.CampAction(a.CampAction)
	default:
		return Outcome{}, reject(ReasonUnknownAction, "unknown action %q", a.Kind)
	}
}

// readyForCommand gates requests that do not spend the action budget: the
// game must be running, it must be the player's turn and no other request
// may be in progress.
func (s *State) readyForCommand() error {
	if s.over {
		return ErrGameOver
	}
	if s.Turn.Phase != PhasePlayerTurn {
		return reject(ReasonWrongPhase, "zombies are moving")
	}
	if s.busy {
		return reject(ReasonWrongPhase, "another request is being applied")
	}
	return nil
}

// enter marks a request as in progress until the returned func runs.
// Listeners called meanwhile cannot start another one.
func (s *State) enter() func() {
	s.busy = true
	return func() { s.busy = false }
}

// readyForAction additionally requires a remaining action.
func (s *State) readyForAction() error {
	if err := s.readyForCommand(); err != nil {
		return err
	}
	if s.Turn.ActionsRemaining <= 0 {
		return reject(ReasonNoActionsRemaining, "no actions remaining")
	}
	return nil
}

// spendAction charges one action. The last action hands the turn to the
// zombies, who are all resolved before this returns.
func (s *State) spendAction() {
	s.Turn.ActionsRemaining--
	if s.over || s.Turn.ActionsRemaining > 0 {
		return
	}
	s.resolveZombies()
	if s.over {
		return
	}
	s.Turn.ActionsRemaining = s.Turn.MaxActionsPerDay
	s.setPhase(PhasePlayerTurn)
}

func (s *State) setPhase(p Phase) {
	s.Turn.Phase = p
	s.emit(Event{Type: EventPhaseChanged, Phase: p, Day: s.Turn.Day})
}

// Move steps the player one cell orthogonally. Stepping into a zombie is a
// melee attack on it. Both cost one action.
func (s *State) Move(dx, dy int) (Outcome, error) {
	if err := s.readyForAction(); err != nil {
		return Outcome{}, err
	}
	defer s.enter()()
	if abs(dx)+abs(dy) != 1 {
		return Outcome{}, reject(ReasonInvalidMove, "step (%d,%d) is not a single orthogonal move", dx, dy)
	}
	from := s.Player.Position
	to := s.grid.Clamp(from, dx, dy)
	if to == from {
		return Outcome{}, reject(ReasonBlocked, "edge of the map")
	}
	if z := s.zombieAt(to); z != nil {
		s.meleeAttack(z)
		s.spendAction()
		return s.drain(), nil
	}
	s.Player.Position = to
	s.emit(Event{
		Type:     EventPlayerMoved,
		EntityID: s.Player.ID,
		Position: posPtr(to),
		Message:  moveMessage(from, to),
	})
	s.spendAction()
	return s.drain(), nil
}

func moveMessage(from, to models.Position) string {
	return fmt.Sprintf("(%d,%d) -> (%d,%d)", from.X, from.Y, to.X, to.Y)
}
