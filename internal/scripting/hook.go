package scripting

import (
	"github.com/l1jgo/worldcore/internal/entity"
	"go.uber.org/zap"
)

// Mover relocates an entity through the world so observers hear about it.
type Mover interface {
	Move(h entity.Handle, pos entity.Pos) error
}

type aiHook struct {
	e   *Engine
	fn  string
	npc *entity.CombatNPC
	mv  Mover
}

// Hook binds npc to the Lua function fn (DefaultAIFunc if empty). It returns
// nil when no such function is loaded, which leaves the NPC without AI.
func (e *Engine) Hook(npc *entity.CombatNPC, fn string, mv Mover) entity.Stepper {
	if fn == "" {
		fn = DefaultAIFunc
	}
	if !e.Has(fn) {
		return nil
	}
	return &aiHook{e: e, fn: fn, npc: npc, mv: mv}
}

func (h *aiHook) Step() {
	n := h.npc
	pos := n.Position()
	ctx := AIContext{
		ID:        n.ID(),
		Kind:      n.Kind().String(),
		X:         pos.X,
		Y:         pos.Y,
		Z:         pos.Z,
		HP:        n.Health(),
		MaxHP:     n.MaxHealth,
		Level:     n.Level,
		SpawnDist: max(abs32(pos.X-n.Spawn.X), abs32(pos.Y-n.Spawn.Y)),
	}
	for _, cmd := range h.e.RunNpcAI(h.fn, ctx) {
		switch cmd.Type {
		case "move":
			p := n.Position()
			p.X += cmd.DX
			p.Y += cmd.DY
			if err := h.mv.Move(n.Handle(), p); err != nil {
				h.e.log.Debug("ai move failed", zap.Int32("npc_id", n.ID()), zap.Error(err))
			}
		case "heal":
			n.Heal(cmd.Amount)
		case "idle", "":
		default:
			h.e.log.Debug("unknown ai command", zap.String("type", cmd.Type), zap.Int32("npc_id", n.ID()))
		}
	}
}

func abs32(n int32) int32 {
	if n < 0 {
		return -n
	}
	return n
}
