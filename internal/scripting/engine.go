package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/novaengine/novasim/internal/behavior"
	"github.com/novaengine/novasim/internal/component"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Prefix marks effect names served by the Lua engine in tree files.
const Prefix = "lua:"

// Engine wraps a single gopher-lua VM for maneuver scripts.
// Single-goroutine access only (sim thread).
type Engine struct {
	vm     *lua.LState
	log    *zap.Logger
	dir    string
	chunks []chunk // inline chunks replayed by Reset
}

type chunk struct {
	name string
	src  string
}

// NewEngine creates a Lua engine and loads every .lua file in scriptsDir.
// A missing directory yields an engine with no scripts.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{log: log, dir: scriptsDir}
	vm, err := e.boot()
	if err != nil {
		return nil, err
	}
	e.vm = vm
	return e, nil
}

// Reset replaces the VM with a fresh one holding the same scripts, so
// globals a script mutated start over. On error the old VM stays.
func (e *Engine) Reset() error {
	vm, err := e.boot()
	if err != nil {
		return err
	}
	e.vm.Close()
	e.vm = vm
	e.log.Debug("lua state reset", zap.Int("chunks", len(e.chunks)))
	return nil
}

// boot builds a VM with the sandboxed libraries, the scripts directory and
// every inline chunk loaded so far.
func (e *Engine) boot() (*lua.LState, error) {
	vm := lua.NewState(lua.Options{SkipOpenLibs: true})
	if err := openLibs(vm); err != nil {
		vm.Close()
		return nil, err
	}
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	if e.dir != "" {
		if err := e.loadDir(vm, e.dir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	for _, c := range e.chunks {
		if err := runChunk(vm, c.name, c.src); err != nil {
			vm.Close()
			return nil, err
		}
	}
	return vm, nil
}

// openLibs opens the pure libraries only. math.random is removed: a script
// drawing its own random numbers would break replay.
func openLibs(vm *lua.LState) error {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := vm.CallByParam(lua.P{
			Fn:      vm.NewFunction(lib.fn),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			return fmt.Errorf("open lua %s: %w", lib.name, err)
		}
	}
	if m, ok := vm.GetGlobal(lua.MathLibName).(*lua.LTable); ok {
		m.RawSetString("random", lua.LNil)
		m.RawSetString("randomseed", lua.LNil)
	}
	for _, name := range []string{"dofile", "loadfile", "collectgarbage"} {
		vm.SetGlobal(name, lua.LNil)
	}
	return nil
}

// loadDir loads all .lua files in a directory in name order.
func (e *Engine) loadDir(vm *lua.LState, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LoadString runs an inline chunk, typically to define maneuver functions.
// The chunk is run again on every Reset.
func (e *Engine) LoadString(name, src string) error {
	if err := runChunk(e.vm, name, src); err != nil {
		return err
	}
	e.chunks = append(e.chunks, chunk{name: name, src: src})
	return nil
}

func runChunk(vm *lua.LState, name, src string) error {
	fn, err := vm.LoadString(src)
	if err != nil {
		return fmt.Errorf("compile %s: %w", name, err)
	}
	vm.Push(fn)
	if err := vm.PCall(0, lua.MultRet, nil); err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}
	return nil
}

// Has reports whether a global Lua function named fn exists.
func (e *Engine) Has(fn string) bool {
	_, ok := e.vm.GetGlobal(fn).(*lua.LFunction)
	return ok
}

// Effect wraps the Lua function fn as a navigation effect. The function
// receives a table
//
//	{throttle, yaw, pitch, has_target, target_x, target_y, target_z}
//
// and returns a table with any subset of the same keys. Missing keys keep
// their value. On a Lua error the state is returned unchanged.
func (e *Engine) Effect(fn string) behavior.Effect {
	return func(nav component.NavigationState) component.NavigationState {
		f, ok := e.vm.GetGlobal(fn).(*lua.LFunction)
		if !ok {
			e.log.Error("lua maneuver not found", zap.String("func", fn))
			return nav
		}

		t := e.vm.NewTable()
		t.RawSetString("throttle", lua.LNumber(nav.Throttle))
		t.RawSetString("yaw", lua.LNumber(nav.Yaw))
		t.RawSetString("pitch", lua.LNumber(nav.Pitch))
		t.RawSetString("has_target", lua.LBool(nav.HasTarget))
		t.RawSetString("target_x", lua.LNumber(nav.TargetPosition.X))
		t.RawSetString("target_y", lua.LNumber(nav.TargetPosition.Y))
		t.RawSetString("target_z", lua.LNumber(nav.TargetPosition.Z))

		if err := e.vm.CallByParam(lua.P{
			Fn:      f,
			NRet:    1,
			Protect: true,
		}, t); err != nil {
			e.log.Error("lua maneuver error", zap.String("func", fn), zap.Error(err))
			return nav
		}
		result := e.vm.Get(-1)
		e.vm.Pop(1)

		rt, ok := result.(*lua.LTable)
		if !ok {
			e.log.Error("lua maneuver returned non-table", zap.String("func", fn))
			return nav
		}
		nav.Throttle = lNum(rt, "throttle", nav.Throttle)
		nav.Yaw = lNum(rt, "yaw", nav.Yaw)
		nav.Pitch = lNum(rt, "pitch", nav.Pitch)
		if v := rt.RawGetString("has_target"); v != lua.LNil {
			nav.HasTarget = lua.LVAsBool(v)
		}
		nav.TargetPosition.X = lNum(rt, "target_x", nav.TargetPosition.X)
		nav.TargetPosition.Y = lNum(rt, "target_y", nav.TargetPosition.Y)
		nav.TargetPosition.Z = lNum(rt, "target_z", nav.TargetPosition.Z)
		return nav
	}
}

// Resolver serves "lua:<func>" effect names for behavior tree files.
func (e *Engine) Resolver() behavior.EffectResolver {
	return func(name string) (behavior.Effect, bool) {
		fn, ok := strings.CutPrefix(name, Prefix)
		if !ok || !e.Has(fn) {
			return nil, false
		}
		return e.Effect(fn), true
	}
}

func lNum(t *lua.LTable, key string, def float64) float64 {
	if n, ok := t.RawGetString(key).(lua.LNumber); ok {
		return float64(n)
	}
	return def
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
