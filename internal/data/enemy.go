package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AttackPriority selects what an enemy attacks first when both are in reach.
type AttackPriority string

const (
	TowerFirst    AttackPriority = "tower_first"
	DefenderFirst AttackPriority = "defender_first"
)

// UntypedID marks the shared pool and the default enemy used when no catalog
// entry can be selected.
const UntypedID = -1

// EnrageParams describes the low-health behaviour switch of an enemy type.
type EnrageParams struct {
	TriggerFraction    float64 `yaml:"trigger_fraction"`    // health fraction at or below which enrage activates (0 = never)
	SpeedBonus         float64 `yaml:"speed_bonus"`         // additive fraction, 0.5 = +50%
	DamageBonus        float64 `yaml:"damage_bonus"`        // additive fraction
	IntervalMultiplier float64 `yaml:"interval_multiplier"` // applied to attack interval, <=0 treated as 1
}

// EnemyType holds static data for an enemy kind loaded from YAML.
type EnemyType struct {
	TypeID                   int            `yaml:"type_id"`
	Name                     string         `yaml:"name"`
	SpawnWeight              float64        `yaml:"spawn_weight"`
	SpeedMultiplier          float64        `yaml:"speed_multiplier"`
	HealthMultiplier         float64        `yaml:"health_multiplier"`
	TowerDamageMultiplier    float64        `yaml:"tower_damage_multiplier"`
	DefenderDamageMultiplier float64        `yaml:"defender_damage_multiplier"`
	OverrideAttackRange      bool           `yaml:"override_attack_range"`
	AttackRange              float64        `yaml:"attack_range"`
	OverrideAttackInterval   bool           `yaml:"override_attack_interval"`
	AttackInterval           float64        `yaml:"attack_interval"`
	AttackPriority           AttackPriority `yaml:"attack_priority"`
	DamageTakenMultiplier    float64        `yaml:"damage_taken_multiplier"`
	Enrage                   EnrageParams   `yaml:"enrage"`
}

// Normalize replaces out-of-range values with their neutral defaults:
// non-positive multipliers become 1, damage taken is clamped to (0,1].
func (e *EnemyType) Normalize() {
	e.SpeedMultiplier = positiveOr1(e.SpeedMultiplier)
	e.HealthMultiplier = positiveOr1(e.HealthMultiplier)
	e.TowerDamageMultiplier = positiveOr1(e.TowerDamageMultiplier)
	e.DefenderDamageMultiplier = positiveOr1(e.DefenderDamageMultiplier)
	e.DamageTakenMultiplier = positiveOr1(e.DamageTakenMultiplier)
	if e.DamageTakenMultiplier > 1 {
		e.DamageTakenMultiplier = 1
	}
	if e.AttackPriority != DefenderFirst {
		e.AttackPriority = TowerFirst
	}
	if e.Enrage.TriggerFraction < 0 {
		e.Enrage.TriggerFraction = 0
	}
	if e.Enrage.TriggerFraction > 1 {
		e.Enrage.TriggerFraction = 1
	}
	e.Enrage.IntervalMultiplier = positiveOr1(e.Enrage.IntervalMultiplier)
}

func positiveOr1(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}

type enemyListFile struct {
	Enemies []EnemyType `yaml:"enemies"`
}

// EnemyTable holds the enemy catalog in file order, indexed by TypeID.
type EnemyTable struct {
	ordered []*EnemyType
	byID    map[int]*EnemyType
}

// NewEnemyTable builds a table from in-memory definitions. Later duplicates
// of a TypeID are dropped so catalog order stays stable.
func NewEnemyTable(types []EnemyType) *EnemyTable {
	t := &EnemyTable{
		ordered: make([]*EnemyType, 0, len(types)),
		byID:    make(map[int]*EnemyType, len(types)),
	}
	for i := range types {
		e := types[i]
		if e.TypeID == UntypedID {
			continue
		}
		if _, dup := t.byID[e.TypeID]; dup {
			continue
		}
		e.Normalize()
		t.ordered = append(t.ordered, &e)
		t.byID[e.TypeID] = &e
	}
	return t
}

// LoadEnemyTable loads enemy definitions from a YAML file.
func LoadEnemyTable(path string) (*EnemyTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read enemy_list: %w", err)
	}
	var f enemyListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse enemy_list: %w", err)
	}
	return NewEnemyTable(f.Enemies), nil
}

// Get returns an enemy type by ID, or nil if not found.
func (t *EnemyTable) Get(typeID int) *EnemyType {
	if t == nil {
		return nil
	}
	return t.byID[typeID]
}

// All returns definitions in catalog order.
func (t *EnemyTable) All() []*EnemyType {
	if t == nil {
		return nil
	}
	return t.ordered
}

// Count returns the number of loaded definitions.
func (t *EnemyTable) Count() int {
	if t == nil {
		return 0
	}
	return len(t.ordered)
}
