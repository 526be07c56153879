// Package scripting hosts the Lua hooks that let content authors reshape
// rounds without rebuilding the binary.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/siegeline/siege/internal/difficulty"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// HookAdjustRound is the global Lua function consulted at each round start.
const HookAdjustRound = "adjust_round"

// Engine wraps a single gopher-lua VM.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every script under scriptsDir.
// Missing directories are skipped.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if scriptsDir == "" {
		return e, nil
	}

	// Shared helpers first, then round scripts
	for _, sub := range []string{"core", "round"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LoadString runs a chunk of Lua source in the engine's VM.
func (e *Engine) LoadString(src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("load lua chunk: %w", err)
	}
	return nil
}

// Has reports whether a global Lua function with the given name exists.
func (e *Engine) Has(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// AdjustRound calls the Lua adjust_round function with the computed round
// parameters. Fields present in the returned table override the input;
// the result is normalized again. Any failure returns p unchanged.
func (e *Engine) AdjustRound(p difficulty.RoundParameters) difficulty.RoundParameters {
	fn := e.vm.GetGlobal(HookAdjustRound)
	if fn == lua.LNil {
		e.log.Error("lua function adjust_round not found")
		return p
	}

	t := e.vm.NewTable()
	t.RawSetString("round", lua.LNumber(p.Round))
	t.RawSetString("round_index", lua.LNumber(p.RoundIndex))
	t.RawSetString("total_enemies", lua.LNumber(p.TotalEnemies))
	t.RawSetString("health_multiplier", lua.LNumber(p.HealthMultiplier))
	t.RawSetString("speed_multiplier", lua.LNumber(p.SpeedMultiplier))
	t.RawSetString("damage_multiplier", lua.LNumber(p.DamageMultiplier))
	t.RawSetString("spawn_interval_multiplier", lua.LNumber(p.SpawnIntervalMultiplier))
	t.RawSetString("spawns_per_tick", lua.LNumber(p.SpawnsPerTick))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua adjust_round error", zap.Int("round", p.Round), zap.Error(err))
		return p
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("lua adjust_round returned non-table", zap.String("type", result.Type().String()))
		return p
	}

	out := p
	if v, ok := lNum(rt, "total_enemies"); ok {
		out.TotalEnemies = int(v)
	}
	if v, ok := lNum(rt, "health_multiplier"); ok {
		out.HealthMultiplier = v
	}
	if v, ok := lNum(rt, "speed_multiplier"); ok {
		out.SpeedMultiplier = v
	}
	if v, ok := lNum(rt, "damage_multiplier"); ok {
		out.DamageMultiplier = v
	}
	if v, ok := lNum(rt, "spawn_interval_multiplier"); ok {
		out.SpawnIntervalMultiplier = v
	}
	if v, ok := lNum(rt, "spawns_per_tick"); ok {
		out.SpawnsPerTick = int(v)
	}
	return out.Normalize()
}

// lNum reads a numeric field; absent or non-numeric fields report false.
func lNum(t *lua.LTable, key string) (float64, bool) {
	n, ok := t.RawGetString(key).(lua.LNumber)
	return float64(n), ok
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
