package game

import "fmt"

// EndDay closes the current day: the player eats and drinks, the camp
// gathers supplies, medicine patches the player up, the day advances with a
// full action budget and a new wave shambles in from the map edges.
//
// EndDay is not gated by the action budget, only by the turn phase. If
// starvation kills the player the day does not advance.
func (s *State) EndDay() (Outcome, error) {
	if err := s.readyForCommand(); err != nil {
		return Outcome{}, err
	}
	defer s.enter()()
	p := s.Player
	survivors := 0
	if s.Camp != nil {
		survivors = s.Camp.Survivors
	}

	foodCost := s.rules.DailyFood + survivors
	waterCost := s.rules.DailyWater + survivors
	p.Resources.Food -= foodCost
	p.Resources.Water -= waterCost
	if p.Resources.Food < 0 || p.Resources.Water < 0 {
		p.Resources.Food = max(0, p.Resources.Food)
		p.Resources.Water = max(0, p.Resources.Water)
		s.emit(Event{Type: EventStarvation, EntityID: p.ID, Message: "Starvation!"})
		s.damagePlayer(s.rules.StarvationDamage)
		if s.over {
			return s.drain(), nil
		}
	}

	if s.Camp != nil {
		gathered := s.Camp.Survivors * s.rules.SupplyPerSurvivor
		s.Camp.Supplies += gathered
		s.emit(Event{Type: EventCampUpdated, Amount: gathered, Message: fmt.Sprintf("Camp gathered %d supplies", gathered)})
	}

	if p.Resources.Medicine > 0 && p.Health < p.MaxHealth {
		s.healPlayer(s.rules.MedicineHeal)
		p.Resources.Medicine--
	}

	// The wave is sized from the day that is ending.
	waveDay := s.Turn.Day
	s.Turn.Day++
	s.Turn.ActionsRemaining = s.Turn.MaxActionsPerDay
	s.setPhase(PhasePlayerTurn)

	attempts := s.edgeWaveSize(waveDay)
	placed := s.spawnEdgeWave(attempts)
	s.emit(Event{
		Type:    EventDayStarted,
		Day:     s.Turn.Day,
		Amount:  placed,
		Message: fmt.Sprintf("Day %d - %d zombies approaching!", s.Turn.Day, attempts),
	})
	return s.drain(), nil
}

// edgeWaveSize is floor(day/2) + uniform_int(0,2) with the default rules.
func (s *State) edgeWaveSize(day int) int {
	return roll(s.rng, day/2, s.rules.EdgeSpawnSpread)
}
