package main

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"deadgrid/server/game"
	"deadgrid/server/models"
)

func baseSnapshot() game.Snapshot {
	rules := game.DefaultRules()
	return game.Snapshot{
		Grid: game.Grid{Width: rules.GridWidth, Height: rules.GridHeight},
		Player: models.Player{
			ID:        "player",
			Position:  models.Position{X: 12, Y: 9},
			Health:    100,
			MaxHealth: 100,
			Ammo:      50,
		},
		Turn: game.Turn{Phase: game.PhasePlayerTurn, ActionsRemaining: 3, MaxActionsPerDay: 3, Day: 1},
	}
}

func TestChooseAction(t *testing.T) {
	rules := game.DefaultRules()
	zombie := func(x, y int) models.Zombie {
		return models.Zombie{ID: "zombie-1", Position: models.Position{X: x, Y: y}, Health: 20, MaxHealth: 20}
	}
	crate := func(x, y int) models.Lootable {
		return models.Lootable{ID: "loot-1", Position: models.Position{X: x, Y: y}}
	}

	tests := []struct {
		name   string
		modify func(*game.Snapshot)
		want   game.Action
	}{
		{
			name:   "adjacent zombie is clubbed",
			modify: func(s *game.Snapshot) { s.Zombies = []models.Zombie{zombie(13, 9)} },
			want:   game.Action{Kind: game.ActionMelee, TargetID: "zombie-1"},
		},
		{
			name:   "zombie in range is shot",
			modify: func(s *game.Snapshot) { s.Zombies = []models.Zombie{zombie(12, 13)} },
			want:   game.Action{Kind: game.ActionShoot, TargetID: "zombie-1"},
		},
		{
			name: "no ammo means walking to the crate",
			modify: func(s *game.Snapshot) {
				s.Player.Ammo = 0
				s.Zombies = []models.Zombie{zombie(12, 13)}
				s.Lootables = []models.Lootable{crate(9, 9)}
			},
			want: game.Action{Kind: game.ActionMove, DX: -1},
		},
		{
			name:   "crate underfoot is looted",
			modify: func(s *game.Snapshot) { s.Lootables = []models.Lootable{crate(12, 9)} },
			want:   game.Action{Kind: game.ActionLoot},
		},
		{
			name:   "materials found a camp",
			modify: func(s *game.Snapshot) { s.Player.Resources.Materials = rules.CampCost },
			want:   game.Action{Kind: game.ActionCamp},
		},
		{
			name:   "walks along the longer axis",
			modify: func(s *game.Snapshot) { s.Lootables = []models.Lootable{crate(13, 4)} },
			want:   game.Action{Kind: game.ActionMove, DY: -1},
		},
		{
			name:   "nothing to do ends the day",
			modify: func(s *game.Snapshot) {},
			want:   game.Action{Kind: game.ActionEndDay},
		},
		{
			name: "wounded at camp heals",
			modify: func(s *game.Snapshot) {
				s.Player.Health = 40
				s.Player.Resources.Medicine = 1
				s.Camp = &models.Camp{Level: 1}
				s.Zombies = []models.Zombie{zombie(13, 9)}
			},
			want: game.Action{Kind: game.ActionCampAction, CampAction: game.CampHealAll},
		},
		{
			name: "wounded without medicine fights on",
			modify: func(s *game.Snapshot) {
				s.Player.Health = 40
				s.Camp = &models.Camp{Level: 1}
				s.Zombies = []models.Zombie{zombie(13, 9)}
			},
			want: game.Action{Kind: game.ActionMelee, TargetID: "zombie-1"},
		},
		{
			name: "out of ammo at camp crafts",
			modify: func(s *game.Snapshot) {
				s.Player.Ammo = 0
				s.Player.Resources.Materials = rules.CraftAmmoCost
				s.Camp = &models.Camp{Level: 1}
			},
			want: game.Action{Kind: game.ActionCampAction, CampAction: game.CampCraftAmmo},
		},
		{
			name: "spare materials upgrade the camp",
			modify: func(s *game.Snapshot) {
				s.Player.Resources.Materials = rules.UpgradeCost
				s.Camp = &models.Camp{Level: 1}
			},
			want: game.Action{Kind: game.ActionCampAction, CampAction: game.CampUpgradeDefenses},
		},
		{
			name: "plenty of supplies recruits",
			modify: func(s *game.Snapshot) {
				s.Player.Resources.Food = 2 * rules.RecruitFood
				s.Player.Resources.Water = 2 * rules.RecruitWater
				s.Camp = &models.Camp{Level: 1}
			},
			want: game.Action{Kind: game.ActionCampAction, CampAction: game.CampRecruitSurvivor},
		},
		{
			name: "camp with nothing to do ends the day",
			modify: func(s *game.Snapshot) {
				s.Camp = &models.Camp{Level: 1}
			},
			want: game.Action{Kind: game.ActionEndDay},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := baseSnapshot()
			tt.modify(&snap)
			if got := chooseAction(snap, rules); got != tt.want {
				t.Fatalf("chooseAction = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSimulateIsDeterministic(t *testing.T) {
	rules := game.DefaultRules()
	first := simulate(1, 7, rules, 10)
	second := simulate(1, 7, rules, 10)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same seed gave different runs:\n%+v\n%+v", first, second)
	}
}

func TestSimulateStopsAtMaxDays(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		res := simulate(1, seed, game.DefaultRules(), 3)
		if !res.over && res.final.DaysSurvived != 4 {
			t.Errorf("seed %d: survivor stopped on day %d, want 4", seed, res.final.DaysSurvived)
		}
		if res.final.DaysSurvived > 4 {
			t.Errorf("seed %d: ran to day %d", seed, res.final.DaysSurvived)
		}
	}
}

func TestSimulateStarvation(t *testing.T) {
	rules := game.DefaultRules()
	rules.StartFood = 0
	rules.StartWater = 0
	rules.StartHealth = 10
	rules.DailyFood = 1000

	res := simulate(1, 3, rules, 10)
	if !res.over {
		t.Fatal("player survived starvation")
	}
	if res.final.DaysSurvived != 1 {
		t.Errorf("days = %d, want 1", res.final.DaysSurvived)
	}
	if res.events[game.EventGameOver] != 1 {
		t.Errorf("game_over events = %d, want 1", res.events[game.EventGameOver])
	}
}

func TestSimulateTendsTheCamp(t *testing.T) {
	rules := game.DefaultRules()
	rules.StartMaterials = rules.CampCost + rules.UpgradeCost

	for seed := int64(1); seed <= 5; seed++ {
		res := simulate(1, seed, rules, 3)
		if res.events[game.EventCampFounded] != 1 {
			t.Errorf("seed %d: camp_founded = %d, want 1", seed, res.events[game.EventCampFounded])
		}
		if res.events[game.EventCampUpdated] == 0 {
			t.Errorf("seed %d: no camp_updated events", seed)
		}
		if res.final.CampLevel < 2 {
			t.Errorf("seed %d: camp level %d, want at least 2", seed, res.final.CampLevel)
		}
	}
}

func TestPrintAggregate(t *testing.T) {
	var buf bytes.Buffer
	printAggregate(&buf, []runResult{
		{over: true, final: game.FinalStats{DaysSurvived: 2, Kills: 4}},
		{final: game.FinalStats{DaysSurvived: 6, Kills: 2, CampLevel: 1}},
	})
	out := buf.String()
	for _, want := range []string{"runs=2 deaths=1 camps_founded=1", "avg_days=4.0 median_days=6 avg_kills=3.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestFormatCounts(t *testing.T) {
	got := formatCounts(map[game.EventType]int{game.EventZombieKilled: 2, game.EventDayStarted: 1})
	if got != "day_started=1 zombie_killed=2" {
		t.Errorf("formatCounts = %q", got)
	}
}
