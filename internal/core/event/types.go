package event

// Notifications consumed by presentation and persistence.

type MoneyChanged struct {
	Money int
}

type RoundChanged struct {
	Round      int
	InProgress bool
}

type GameStarted struct {
	StartingRound int
}

type GameOver struct {
	Round int
	Money int
}

// RoundStarted carries the parameters chosen for a round.
type RoundStarted struct {
	Round         int
	TotalEnemies  int
	HealthMult    float64
	SpeedMult     float64
	DamageMult    float64
	IntervalMult  float64
	SpawnsPerTick int
	LaneCount     int
}

// RoundCompleted fires once every lane has drained.
type RoundCompleted struct {
	Round   int
	Spawned int
	Killed  int
	Escaped int
}

type ActorSpawned struct {
	Lane   int
	TypeID int
	Round  int
}

type ActorDied struct {
	Lane    int
	TypeID  int
	Round   int
	Escaped bool
}
