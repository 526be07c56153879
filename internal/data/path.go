package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Waypoint is one point of a lane path in world units.
type Waypoint struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// LanePath is a named, ordered waypoint sequence. The first waypoint is the
// spawn location, the last one sits at the tower.
type LanePath struct {
	Name      string     `yaml:"name"`
	Waypoints []Waypoint `yaml:"waypoints"`
}

type pathListFile struct {
	Lanes []LanePath `yaml:"lanes"`
}

// PathTable serves static lane paths loaded from YAML. It satisfies the
// spawn package's path provider contract.
type PathTable struct {
	lanes []LanePath
}

func NewPathTable(lanes []LanePath) *PathTable {
	return &PathTable{lanes: lanes}
}

// LoadPathTable loads lane paths from a YAML file.
func LoadPathTable(path string) (*PathTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read path_list: %w", err)
	}
	var f pathListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse path_list: %w", err)
	}
	return &PathTable{lanes: f.Lanes}, nil
}

// Paths returns one waypoint sequence per lane, in file order. Slices are
// copies; callers may keep them.
func (t *PathTable) Paths() [][]Waypoint {
	out := make([][]Waypoint, len(t.lanes))
	for i, l := range t.lanes {
		out[i] = append([]Waypoint(nil), l.Waypoints...)
	}
	return out
}

// Count returns the number of lanes.
func (t *PathTable) Count() int {
	return len(t.lanes)
}
