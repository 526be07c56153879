package spawn

import (
	"github.com/siegeline/siege/internal/data"
)

// Rand is the slice of *rand.Rand the selector needs.
type Rand interface {
	Float64() float64
}

// Selector picks enemy types by weight. Only entries with a positive
// weight and a registered factory take part; with none left every draw
// yields data.UntypedID.
type Selector struct {
	valid []*data.EnemyType
	total float64
	rng   Rand
}

// NewSelector builds the valid set from table in catalog order. hasFactory
// may be nil when every type is known to be constructible.
func NewSelector(table *data.EnemyTable, hasFactory func(typeID int) bool, rng Rand) *Selector {
	s := &Selector{rng: rng}
	for _, def := range table.All() {
		if def.SpawnWeight <= 0 {
			continue
		}
		if hasFactory != nil && !hasFactory(def.TypeID) {
			continue
		}
		s.valid = append(s.valid, def)
		s.total += def.SpawnWeight
	}
	return s
}

// Next draws a type id.
func (s *Selector) Next() int {
	if len(s.valid) == 0 || s.total <= 0 {
		return data.UntypedID
	}
	draw := s.rng.Float64() * s.total
	cumulative := 0.0
	for _, def := range s.valid {
		cumulative += def.SpawnWeight
		if cumulative >= draw {
			return def.TypeID
		}
	}
	// rounding pushed draw past the last cumulative total
	return s.valid[len(s.valid)-1].TypeID
}

// Valid returns the selectable definitions in catalog order.
func (s *Selector) Valid() []*data.EnemyType {
	return s.valid
}

// TotalWeight returns the summed weight of the valid set.
func (s *Selector) TotalWeight() float64 {
	return s.total
}
