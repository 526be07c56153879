package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Engine    EngineConfig    `toml:"engine"`
	Economy   EconomyConfig   `toml:"economy"`
	Rounds    RoundsConfig    `toml:"rounds"`
	Spawner   SpawnerConfig   `toml:"spawner"`
	Pool      PoolConfig      `toml:"pool"`
	Tower     TowerConfig     `toml:"tower"`
	Data      DataConfig      `toml:"data"`
	Scripting ScriptingConfig `toml:"scripting"`
	Database  DatabaseConfig  `toml:"database"`
	Logging   LoggingConfig   `toml:"logging"`
}

// Engine modes.
const (
	ModeRounds     = "rounds"
	ModeContinuous = "continuous"
)

type EngineConfig struct {
	TickRate  time.Duration `toml:"tick_rate"`
	Seed      string        `toml:"seed"` // seed phrase, empty = time based
	Mode      string        `toml:"mode"` // "rounds" or "continuous"
	AutoStart bool          `toml:"auto_start"`
	MaxTicks  int           `toml:"max_ticks"` // 0 = run until game over or signal
}

type EconomyConfig struct {
	StartingMoney int `toml:"starting_money"`
	RewardPerKill int `toml:"reward_per_kill"`
}

type RoundsConfig struct {
	StartingRound              int           `toml:"starting_round"`
	StartDelay                 time.Duration `toml:"start_delay"`
	BaseEnemies                int           `toml:"base_enemies"`
	EnemiesIncrement           int           `toml:"enemies_increment"`
	HealthPerRound             float64       `toml:"health_per_round"`
	MaxHealthBonus             float64       `toml:"max_health_bonus"`
	SpeedPerRound              float64       `toml:"speed_per_round"`
	MaxSpeedBonus              float64       `toml:"max_speed_bonus"`
	DamagePerRound             float64       `toml:"damage_per_round"`
	MaxDamageBonus             float64       `toml:"max_damage_bonus"`
	SpawnIntervalReduction     float64       `toml:"spawn_interval_reduction"`
	MinSpawnIntervalMultiplier float64       `toml:"min_spawn_interval_multiplier"`
	ExtraSpawnsPerRound        float64       `toml:"extra_spawns_per_round"`
	MaxExtraSpawns             float64       `toml:"max_extra_spawns"`
}

type SpawnerConfig struct {
	SpawnInterval          time.Duration `toml:"spawn_interval"`
	OnePerInterval         bool          `toml:"one_per_interval"`
	Speed                  float64       `toml:"speed"`
	MaxHealth              float64       `toml:"max_health"`
	DamageToTower          float64       `toml:"damage_to_tower"`
	DefenderAttackRange    float64       `toml:"defender_attack_range"`
	DefenderAttackInterval float64       `toml:"defender_attack_interval"`
	DamageToDefender       float64       `toml:"damage_to_defender"`
}

type PoolConfig struct {
	Enabled bool `toml:"enabled"`
	WarmUp  int  `toml:"warm_up"` // handles pre-built per catalog type
}

type TowerConfig struct {
	MaxHealth      float64 `toml:"max_health"`
	AttackInterval float64 `toml:"attack_interval"` // seconds
	DamagePerShot  float64 `toml:"damage_per_shot"`
	Range          float64 `toml:"range"` // 0 = unlimited
}

type DataConfig struct {
	EnemyList    string `toml:"enemy_list"`
	DefenderList string `toml:"defender_list"`
	PathList     string `toml:"path_list"`
}

type ScriptingConfig struct {
	Dir string `toml:"dir"` // empty disables scripts
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // empty disables run history
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes TOML over the defaults. name is only used in errors.
func Parse(data []byte, name string) (*Config, error) {
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", name, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", name, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaults()
}

func (c *Config) validate() error {
	switch c.Engine.Mode {
	case ModeRounds, ModeContinuous:
	default:
		return fmt.Errorf("engine.mode %q: want %q or %q", c.Engine.Mode, ModeRounds, ModeContinuous)
	}
	if c.Engine.TickRate <= 0 {
		return fmt.Errorf("engine.tick_rate must be positive, got %s", c.Engine.TickRate)
	}
	if c.Spawner.SpawnInterval <= 0 {
		return fmt.Errorf("spawner.spawn_interval must be positive, got %s", c.Spawner.SpawnInterval)
	}
	if c.Rounds.StartDelay < 0 {
		return fmt.Errorf("rounds.start_delay must not be negative, got %s", c.Rounds.StartDelay)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Engine: EngineConfig{
			TickRate:  50 * time.Millisecond,
			Mode:      ModeRounds,
			AutoStart: true,
		},
		Economy: EconomyConfig{
			StartingMoney: 200,
			RewardPerKill: 50,
		},
		Rounds: RoundsConfig{
			StartingRound:              1,
			StartDelay:                 2 * time.Second,
			BaseEnemies:                3,
			EnemiesIncrement:           2,
			HealthPerRound:             0.15,
			MaxHealthBonus:             2.0,
			SpeedPerRound:              0.05,
			MaxSpeedBonus:              0.6,
			DamagePerRound:             0.1,
			MaxDamageBonus:             1.5,
			SpawnIntervalReduction:     0.03,
			MinSpawnIntervalMultiplier: 0.35,
			ExtraSpawnsPerRound:        0.05,
			MaxExtraSpawns:             2,
		},
		Spawner: SpawnerConfig{
			SpawnInterval:          2 * time.Second,
			OnePerInterval:         true,
			Speed:                  2,
			MaxHealth:              5,
			DamageToTower:          1,
			DefenderAttackRange:    1.2,
			DefenderAttackInterval: 0.6,
			DamageToDefender:       1,
		},
		Pool: PoolConfig{
			Enabled: true,
			WarmUp:  8,
		},
		Tower: TowerConfig{
			MaxHealth:      20,
			AttackInterval: 0.5,
			DamagePerShot:  1,
			Range:          6,
		},
		Data: DataConfig{
			EnemyList:    "data/yaml/enemy_list.yaml",
			DefenderList: "data/yaml/defender_list.yaml",
			PathList:     "data/yaml/path_list.yaml",
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
