package system

import (
	"time"

	"github.com/l1jgo/worldcore/internal/core/event"
	coresys "github.com/l1jgo/worldcore/internal/core/system"
	"github.com/l1jgo/worldcore/internal/world"
	"go.uber.org/zap"
)

// EggSystem polls consumed eggs and respawns those whose timer elapsed. The
// egg announces itself to the cells that kept it in view while dead.
// Phase 3 (PostUpdate).
type EggSystem struct {
	world *world.State
	now   func() time.Time
	log   *zap.Logger
}

func NewEggSystem(ws *world.State, now func() time.Time, log *zap.Logger) *EggSystem {
	if now == nil {
		now = time.Now
	}
	return &EggSystem{world: ws, now: now, log: log}
}

func (s *EggSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *EggSystem) Update(_ time.Duration) {
	now := s.now()
	for _, egg := range s.world.Eggs() {
		if !egg.Respawn(now) {
			continue
		}
		event.Emit(s.world.Bus(), event.EggRespawned{Handle: egg.Handle()})
		s.log.Debug("蛋重生", zap.Stringer("egg", egg.Handle()))
	}
}
