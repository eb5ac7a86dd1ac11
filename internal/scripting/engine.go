package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// DefaultAIFunc is the global called when a template names no function.
const DefaultAIFunc = "npc_ai"

// Engine wraps a single gopher-lua VM. Game loop goroutine only.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a VM and loads every .lua file in dir, then dir/ai.
// Missing directories are skipped.
func NewEngine(dir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	for _, d := range []string{dir, filepath.Join(dir, "ai")} {
		if err := e.loadDir(d); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	return e, nil
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

// Has reports whether a global Lua function named fn exists.
func (e *Engine) Has(fn string) bool {
	_, ok := e.vm.GetGlobal(fn).(*lua.LFunction)
	return ok
}

// AIContext is the snapshot of an NPC a script decides from.
type AIContext struct {
	ID        int32
	Kind      string
	X, Y, Z   int32
	HP, MaxHP int32
	Level     int32
	SpawnDist int32 // Chebyshev distance from the spawn point
}

// AICommand is one action returned by a script.
type AICommand struct {
	Type   string // "move", "heal", "idle"
	DX, DY int32
	Amount int32
}

// RunNpcAI calls fn(ctx) and parses the returned command list. Script errors
// are logged and yield no commands.
func (e *Engine) RunNpcAI(fn string, ctx AIContext) []AICommand {
	f := e.vm.GetGlobal(fn)
	if f == lua.LNil {
		return nil
	}

	t := e.vm.NewTable()
	t.RawSetString("id", lua.LNumber(ctx.ID))
	t.RawSetString("kind", lua.LString(ctx.Kind))
	t.RawSetString("x", lua.LNumber(ctx.X))
	t.RawSetString("y", lua.LNumber(ctx.Y))
	t.RawSetString("z", lua.LNumber(ctx.Z))
	t.RawSetString("hp", lua.LNumber(ctx.HP))
	t.RawSetString("max_hp", lua.LNumber(ctx.MaxHP))
	t.RawSetString("level", lua.LNumber(ctx.Level))
	t.RawSetString("spawn_dist", lua.LNumber(ctx.SpawnDist))

	if err := e.vm.CallByParam(lua.P{
		Fn:      f,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua npc_ai error", zap.Error(err), zap.String("fn", fn), zap.Int32("npc_id", ctx.ID))
		return nil
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		return nil
	}
	var cmds []AICommand
	rt.ForEach(func(_, v lua.LValue) {
		if row, ok := v.(*lua.LTable); ok {
			cmds = append(cmds, AICommand{
				Type:   lStr(row, "type"),
				DX:     lInt(row, "dx"),
				DY:     lInt(row, "dy"),
				Amount: lInt(row, "amount"),
			})
		}
	})
	return cmds
}

// lInt reads a numeric field from a Lua table.
func lInt(t *lua.LTable, key string) int32 {
	return int32(lua.LVAsNumber(t.RawGetString(key)))
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

func (e *Engine) Close() {
	e.vm.Close()
}
