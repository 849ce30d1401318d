package models

import "time"

// RunRecord holds the final stats of a finished game session.
type RunRecord struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	PlayerName   string    `json:"player_name"`
	Seed         int64     `json:"seed"`
	DaysSurvived int       `json:"days_survived"`
	Kills        int       `json:"kills"`
	CampLevel    int       `json:"camp_level"`
	Inventory    []string  `json:"inventory"`
	EndedAt      time.Time `json:"ended_at"`
}

// RanksAbove reports whether r places higher than other on the leaderboard:
// more days first, then more kills, then whoever finished earlier.
func (r RunRecord) RanksAbove(other RunRecord) bool {
	if r.DaysSurvived != other.DaysSurvived {
		return r.DaysSurvived > other.DaysSurvived
	}
	if r.Kills != other.Kills {
		return r.Kills > other.Kills
	}
	return r.EndedAt.Before(other.EndedAt)
}
