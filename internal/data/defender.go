package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const minUpgradeMultiplier = 0.1

// UpgradeStep is one purchasable improvement of a placed defender.
type UpgradeStep struct {
	Label            string  `yaml:"label"`
	Cost             int     `yaml:"cost"`
	HealthMultiplier float64 `yaml:"health_multiplier"`
	DamageMultiplier float64 `yaml:"damage_multiplier"`
}

// DefenderDef is a purchasable defender with its ordered upgrade chain.
type DefenderDef struct {
	Name     string        `yaml:"name"`
	Cost     int           `yaml:"cost"`
	Upgrades []UpgradeStep `yaml:"upgrades"`
}

type defenderListFile struct {
	Defenders []DefenderDef `yaml:"defenders"`
}

// DefenderTable holds defender definitions indexed by name.
type DefenderTable struct {
	defs map[string]*DefenderDef
}

// NewDefenderTable builds a table from in-memory definitions.
func NewDefenderTable(defs []DefenderDef) *DefenderTable {
	t := &DefenderTable{defs: make(map[string]*DefenderDef, len(defs))}
	for i := range defs {
		d := defs[i]
		if d.Cost < 0 {
			d.Cost = 0
		}
		d.Upgrades = append([]UpgradeStep(nil), d.Upgrades...)
		for j := range d.Upgrades {
			u := &d.Upgrades[j]
			if u.Label == "" {
				u.Label = "Upgrade"
			}
			if u.Cost < 0 {
				u.Cost = 0
			}
			if u.HealthMultiplier < minUpgradeMultiplier {
				u.HealthMultiplier = minUpgradeMultiplier
			}
			if u.DamageMultiplier < minUpgradeMultiplier {
				u.DamageMultiplier = minUpgradeMultiplier
			}
		}
		t.defs[d.Name] = &d
	}
	return t
}

// LoadDefenderTable loads defender definitions from a YAML file.
func LoadDefenderTable(path string) (*DefenderTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read defender_list: %w", err)
	}
	var f defenderListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse defender_list: %w", err)
	}
	return NewDefenderTable(f.Defenders), nil
}

// Get returns a defender by name, or nil if not found.
func (t *DefenderTable) Get(name string) *DefenderDef {
	return t.defs[name]
}

// Count returns the number of loaded defenders.
func (t *DefenderTable) Count() int {
	return len(t.defs)
}
