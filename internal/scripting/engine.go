package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM holding the tunable combat and
// progression formulas. Designers iterate on the Lua side without recompiling
// the client. Single-goroutine access only (simulation thread).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates the engine and loads every script under scriptsDir.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	for _, sub := range []string{"core", "combat"} {
		if err := e.loadDir(filepath.Join(scriptsDir, sub)); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

func (e *Engine) Close() {
	e.vm.Close()
}

func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
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

// AbilityContext holds pre-packed data for an ability damage calculation.
type AbilityContext struct {
	Weapon      string
	Slot        int
	PlayerLevel int
	ComboStep   int     // 0 when not a combo swing
	Charge      float64 // 0..1 committed charge, 0 for uncharged abilities
}

// AbilityDamage calls the Lua ability_damage function. Falls back to a
// harmless floor value if the script is missing or errors, so a bad script
// never stalls the simulation.
func (e *Engine) AbilityDamage(ctx AbilityContext) int {
	fn := e.vm.GetGlobal("ability_damage")
	if fn == lua.LNil {
		e.log.Error("lua function ability_damage not found")
		return 1
	}

	t := e.vm.NewTable()
	t.RawSetString("weapon", lua.LString(ctx.Weapon))
	t.RawSetString("slot", lua.LNumber(ctx.Slot))
	t.RawSetString("level", lua.LNumber(ctx.PlayerLevel))
	t.RawSetString("combo_step", lua.LNumber(ctx.ComboStep))
	t.RawSetString("charge", lua.LNumber(ctx.Charge))

	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, t); err != nil {
		e.log.Error("lua ability_damage error", zap.Error(err))
		return 1
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)

	dmg := int(lua.LVAsNumber(result))
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

// ResourceCapacity calls the Lua resource_capacity function: the maximum
// mana/energy/rage pool for a player at the given level.
func (e *Engine) ResourceCapacity(kind string, level int) int {
	fn := e.vm.GetGlobal("resource_capacity")
	if fn == lua.LNil {
		e.log.Error("lua function resource_capacity not found")
		return 100
	}
	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true},
		lua.LString(kind), lua.LNumber(level)); err != nil {
		e.log.Error("lua resource_capacity error", zap.Error(err))
		return 100
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)

	capacity := int(lua.LVAsNumber(result))
	if capacity < 1 {
		capacity = 1
	}
	return capacity
}
