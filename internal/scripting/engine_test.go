package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/l1jgo/worldcore/internal/entity"
	"go.uber.org/zap/zaptest"
)

const wanderScript = `
function npc_ai(ctx)
  if ctx.hp < ctx.max_hp then
    return {{type = "heal", amount = 10}}
  end
  if ctx.spawn_dist >= 2 then
    return {{type = "idle"}}
  end
  return {{type = "move", dx = 1, dy = 0}}
end

function broken_ai(ctx)
  error("nope")
end
`

type moveLog struct {
	moves []entity.Pos
	apply func(entity.Pos)
}

func (m *moveLog) Move(_ entity.Handle, pos entity.Pos) error {
	m.moves = append(m.moves, pos)
	if m.apply != nil {
		m.apply(pos)
	}
	return nil
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "ai"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ai", "wander.lua"), []byte(wanderScript), 0o644); err != nil {
		t.Fatal(err)
	}
	e, err := NewEngine(dir, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestHookMovesAndHeals(t *testing.T) {
	e := newTestEngine(t)
	npc := entity.NewCombatNPC(entity.SpawnParams{ID: 200_000_001, Pos: entity.Pos{X: 10, Y: 10}}, 400, 5)
	mv := &moveLog{apply: npc.SetPosition}

	hook := e.Hook(npc, "", mv)
	if hook == nil {
		t.Fatalf("Hook returned nil for a loaded npc_ai")
	}
	npc.SetAI(hook)

	npc.StepAI()
	npc.StepAI()
	npc.StepAI()
	if len(mv.moves) != 2 {
		t.Fatalf("moves = %v, want two steps then idle", mv.moves)
	}
	if got := npc.Position(); got != (entity.Pos{X: 12, Y: 10}) {
		t.Fatalf("position = %+v, want {12 10 0}", got)
	}

	npc.Damage(100)
	npc.StepAI()
	if npc.Health() != 310 {
		t.Fatalf("health = %d, want 310", npc.Health())
	}
}

func TestHookMissingFunction(t *testing.T) {
	e := newTestEngine(t)
	npc := entity.NewCombatNPC(entity.SpawnParams{ID: 1}, 100, 1)
	if h := e.Hook(npc, "no_such_ai", &moveLog{}); h != nil {
		t.Fatalf("Hook for a missing function = %v, want nil", h)
	}
}

func TestScriptErrorYieldsNoCommands(t *testing.T) {
	e := newTestEngine(t)
	if cmds := e.RunNpcAI("broken_ai", AIContext{ID: 1}); cmds != nil {
		t.Fatalf("cmds = %v, want nil", cmds)
	}
	// The VM stays usable after a protected error.
	if cmds := e.RunNpcAI("npc_ai", AIContext{HP: 1, MaxHP: 1}); len(cmds) != 1 || cmds[0].Type != "move" {
		t.Fatalf("cmds = %v", cmds)
	}
}

func TestNewEngineRejectsBadScript(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.lua"), []byte("function ("), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewEngine(dir, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("NewEngine accepted a syntax error")
	}
}

func TestNewEngineMissingDir(t *testing.T) {
	e, err := NewEngine(filepath.Join(t.TempDir(), "absent"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	if e.Has(DefaultAIFunc) {
		t.Fatalf("empty engine reports npc_ai")
	}
}
