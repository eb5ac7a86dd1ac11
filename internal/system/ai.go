package system

import (
	"slices"
	"time"

	coresys "github.com/l1jgo/worldcore/internal/core/system"
	"github.com/l1jgo/worldcore/internal/world"
)

// AISystem steps the AI hook of every live combat NPC and mob once per
// tick, in handle order. Phase 2 (Update).
type AISystem struct {
	world *world.State
}

func NewAISystem(ws *world.State) *AISystem {
	return &AISystem{world: ws}
}

func (s *AISystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *AISystem) Update(_ time.Duration) {
	cs := s.world.Combatants()
	slices.SortFunc(cs, func(a, b world.Combatant) int {
		return a.Handle().Compare(b.Handle())
	})
	for _, c := range cs {
		if c.IsAlive() {
			c.StepAI()
		}
	}
}
