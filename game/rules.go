package game

// Rules holds every tunable constant of the simulation. The env tags let the
// server override them; DefaultRules returns the same defaults.
type Rules struct {
	GridWidth  int `env:"GRID_WIDTH" envDefault:"25"`
	GridHeight int `env:"GRID_HEIGHT" envDefault:"18"`

	StartHealth    int `env:"START_HEALTH" envDefault:"100"`
	MaxHealth      int `env:"MAX_HEALTH" envDefault:"100"`
	StartAmmo      int `env:"START_AMMO" envDefault:"50"`
	StartFood      int `env:"START_FOOD" envDefault:"15"`
	StartWater     int `env:"START_WATER" envDefault:"15"`
	StartMedicine  int `env:"START_MEDICINE" envDefault:"3"`
	StartMaterials int `env:"START_MATERIALS" envDefault:"0"`
	ActionsPerDay  int `env:"ACTIONS_PER_DAY" envDefault:"3"`

	// Combat. Every "spread" is the inclusive upper bound of a
	// uniform_int(0, spread) roll added to the matching base.
	MeleeRange        int     `env:"MELEE_RANGE" envDefault:"1"`
	ShootRange        int     `env:"SHOOT_RANGE" envDefault:"5"`
	ShotAmmoCost      int     `env:"SHOT_AMMO_COST" envDefault:"5"`
	MeleeDamage       int     `env:"MELEE_DAMAGE" envDefault:"10"`
	MeleeSpread       int     `env:"MELEE_SPREAD" envDefault:"5"`
	ShotDamage        int     `env:"SHOT_DAMAGE" envDefault:"15"`
	ShotSpread        int     `env:"SHOT_SPREAD" envDefault:"5"`
	ZombieDamage      int     `env:"ZOMBIE_DAMAGE" envDefault:"5"`
	ZombieSpread      int     `env:"ZOMBIE_SPREAD" envDefault:"5"`
	CounterChance     float64 `env:"COUNTER_CHANCE" envDefault:"0.4"`
	CounterDamage     int     `env:"COUNTER_DAMAGE" envDefault:"5"`
	DefensePerPoint   int     `env:"DEFENSE_PER_POINT" envDefault:"5"`
	ZombieSight       int     `env:"ZOMBIE_SIGHT" envDefault:"6"`
	SmallZombieHealth int     `env:"SMALL_ZOMBIE_HEALTH" envDefault:"20"`
	BigZombieHealth   int     `env:"BIG_ZOMBIE_HEALTH" envDefault:"30"`
	BigZombieChance   float64 `env:"BIG_ZOMBIE_CHANCE" envDefault:"0.3"`

	// Spawning.
	InitialZombies  int `env:"INITIAL_ZOMBIES" envDefault:"5"`
	SpawnClearance  int `env:"SPAWN_CLEARANCE" envDefault:"4"`
	EdgeSpawnSpread int `env:"EDGE_SPAWN_SPREAD" envDefault:"2"`
	LootablesBase   int `env:"LOOTABLES_BASE" envDefault:"8"`
	LootablesSpread int `env:"LOOTABLES_SPREAD" envDefault:"4"`

	// Day cycle.
	DailyFood         int `env:"DAILY_FOOD" envDefault:"2"`
	DailyWater        int `env:"DAILY_WATER" envDefault:"2"`
	StarvationDamage  int `env:"STARVATION_DAMAGE" envDefault:"20"`
	MedicineHeal      int `env:"MEDICINE_HEAL" envDefault:"30"`
	SupplyPerSurvivor int `env:"SUPPLY_PER_SURVIVOR" envDefault:"2"`

	// Camp.
	CampCost       int `env:"CAMP_COST" envDefault:"10"`
	CampDefense    int `env:"CAMP_DEFENSE" envDefault:"5"`
	UpgradeCost    int `env:"UPGRADE_COST" envDefault:"10"`
	UpgradeDefense int `env:"UPGRADE_DEFENSE" envDefault:"5"`
	RecruitFood    int `env:"RECRUIT_FOOD" envDefault:"20"`
	RecruitWater   int `env:"RECRUIT_WATER" envDefault:"20"`
	ScavengeBase   int `env:"SCAVENGE_BASE" envDefault:"5"`
	ScavengeSpread int `env:"SCAVENGE_SPREAD" envDefault:"9"`
	CraftAmmoCost  int `env:"CRAFT_AMMO_COST" envDefault:"5"`
	CraftAmmoYield int `env:"CRAFT_AMMO_YIELD" envDefault:"20"`
	CampHeal       int `env:"CAMP_HEAL" envDefault:"50"`
}

// DefaultRules returns the standard game balance.
func DefaultRules() Rules {
	return Rules{
		GridWidth:  25,
		GridHeight: 18,

		StartHealth:    100,
		MaxHealth:      100,
		StartAmmo:      50,
		StartFood:      15,
		StartWater:     15,
		StartMedicine:  3,
		StartMaterials: 0,
		ActionsPerDay:  3,

		MeleeRange:        1,
		ShootRange:        5,
		ShotAmmoCost:      5,
		MeleeDamage:       10,
		MeleeSpread:       5,
		ShotDamage:        15,
		ShotSpread:        5,
		ZombieDamage:      5,
		ZombieSpread:      5,
		CounterChance:     0.4,
		CounterDamage:     5,
		DefensePerPoint:   5,
		ZombieSight:       6,
		SmallZombieHealth: 20,
		BigZombieHealth:   30,
		BigZombieChance:   0.3,

		InitialZombies:  5,
		SpawnClearance:  4,
		EdgeSpawnSpread: 2,
		LootablesBase:   8,
		LootablesSpread: 4,

		DailyFood:         2,
		DailyWater:        2,
		StarvationDamage:  20,
		MedicineHeal:      30,
		SupplyPerSurvivor: 2,

		CampCost:       10,
		CampDefense:    5,
		UpgradeCost:    10,
		UpgradeDefense: 5,
		RecruitFood:    20,
		RecruitWater:   20,
		ScavengeBase:   5,
		ScavengeSpread: 9,
		CraftAmmoCost:  5,
		CraftAmmoYield: 20,
		CampHeal:       50,
	}
}
