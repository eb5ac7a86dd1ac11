package system

import (
	"time"

	"github.com/l1jgo/worldcore/internal/core/event"
	coresys "github.com/l1jgo/worldcore/internal/core/system"
	"github.com/l1jgo/worldcore/internal/entity"
	"github.com/l1jgo/worldcore/internal/world"
	"go.uber.org/zap"
)

type pendingRespawn struct {
	c  world.Combatant
	at time.Time
}

// DeathSystem despawns combatants whose health reached zero and brings them
// back at their spawn point after the respawn delay, under the same id.
// Mobs use their own delay; combat NPCs use the default. A delay <= 0 means
// the combatant stays gone. Phase 3 (PostUpdate).
type DeathSystem struct {
	world   *world.State
	delay   time.Duration
	now     func() time.Time
	pending []pendingRespawn
	log     *zap.Logger
}

func NewDeathSystem(ws *world.State, defaultDelay time.Duration, now func() time.Time, log *zap.Logger) *DeathSystem {
	if now == nil {
		now = time.Now
	}
	return &DeathSystem{world: ws, delay: defaultDelay, now: now, log: log}
}

func (s *DeathSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *DeathSystem) Update(_ time.Duration) {
	now := s.now()
	for _, c := range s.world.Combatants() {
		if !c.IsAlive() {
			s.kill(c, now)
		}
	}

	kept := s.pending[:0]
	for _, p := range s.pending {
		if now.Before(p.at) {
			kept = append(kept, p)
			continue
		}
		p.c.Reset()
		if err := s.world.Spawn(p.c); err != nil {
			s.log.Error("NPC 重生失敗", zap.Stringer("handle", p.c.Handle()), zap.Error(err))
			continue
		}
		s.log.Debug("NPC 重生", zap.Stringer("handle", p.c.Handle()))
	}
	s.pending = kept
}

func (s *DeathSystem) kill(c world.Combatant, now time.Time) {
	h := c.Handle()
	delay := s.delay
	if m, ok := c.(*entity.Mob); ok {
		m.Kill(now)
		if m.RespawnDelay > 0 {
			delay = m.RespawnDelay
		}
	}
	if _, err := s.world.Despawn(h); err != nil {
		s.log.Error("NPC 移除失敗", zap.Stringer("handle", h), zap.Error(err))
		return
	}
	var at time.Time
	if delay > 0 {
		at = now.Add(delay)
		s.pending = append(s.pending, pendingRespawn{c: c, at: at})
	}
	event.Emit(s.world.Bus(), event.CombatantDied{Handle: h, RespawnAt: at})
}

// Pending returns how many combatants wait to respawn.
func (s *DeathSystem) Pending() int { return len(s.pending) }
