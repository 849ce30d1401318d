package game

import "deadgrid/server/models"

// EventType names a state change the presentation layer may care about.
type EventType string

const (
	EventPlayerMoved    EventType = "player_moved"
	EventPlayerDamaged  EventType = "player_damaged"
	EventPlayerHealed   EventType = "player_healed"
	EventZombieSpawned  EventType = "zombie_spawned"
	EventZombieMoved    EventType = "zombie_moved"
	EventZombieAttacked EventType = "zombie_attacked"
	EventZombieDamaged  EventType = "zombie_damaged"
	EventZombieKilled   EventType = "zombie_killed"
	EventCounterAttack  EventType = "counter_attack"
	EventLootFound      EventType = "loot_found"
	EventStarvation     EventType = "starvation"
	EventPhaseChanged   EventType = "phase_changed"
	EventDayStarted     EventType = "day_started"
	EventCampFounded    EventType = "camp_founded"
	EventCampUpdated    EventType = "camp_updated"
	EventCampToggled    EventType = "camp_toggled"
	EventGameOver       EventType = "game_over"
)

// Event is one committed state change. Events are emitted in the order the
// simulation applied them; by the time a listener sees an event the state it
// describes is already final.
type Event struct {
	Type     EventType        `json:"type"`
	EntityID string           `json:"entity_id,omitempty"`
	Position *models.Position `json:"position,omitempty"`
	Amount   int              `json:"amount,omitempty"`
	Health   int              `json:"health,omitempty"`
	Resource Resource         `json:"resource,omitempty"`
	Phase    Phase            `json:"phase,omitempty"`
	Day      int              `json:"day,omitempty"`
	Message  string           `json:"message,omitempty"`
}

// Listener is a read-only subscriber to simulation events.
type Listener interface {
	OnEvent(event Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(event Event)

func (f ListenerFunc) OnEvent(event Event) { f(event) }

// Outcome carries the events produced by a single request.
type Outcome struct {
	Events []Event `json:"events"`
}

// Has reports whether the outcome contains an event of type t.
func (o Outcome) Has(t EventType) bool {
	for _, e := range o.Events {
		if e.Type == t {
			return true
		}
	}
	return false
}

// Count returns how many events of type t the outcome contains.
func (o Outcome) Count(t EventType) int {
	n := 0
	for _, e := range o.Events {
		if e.Type == t {
			n++
		}
	}
	return n
}

func (s *State) emit(e Event) {
	s.pending = append(s.pending, e)
	for _, l := range s.listeners {
		l.OnEvent(e)
	}
}

func (s *State) drain() Outcome {
	out := Outcome{Events: s.pending}
	s.pending = nil
	return out
}

func posPtr(p models.Position) *models.Position {
	return &p
}
