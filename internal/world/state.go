package world

import (
	"errors"
	"fmt"
	"time"

	"github.com/l1jgo/worldcore/internal/core/event"
	"github.com/l1jgo/worldcore/internal/entity"
	"github.com/l1jgo/worldcore/internal/registry"
	"go.uber.org/zap"
)

// Combatant is what the AI and death sweeps need from CombatNPC and Mob.
type Combatant interface {
	entity.Entity
	StepAI()
	Reset()
	Health() int32
}

var (
	_ Combatant = (*entity.CombatNPC)(nil)
	_ Combatant = (*entity.Mob)(nil)
)

// State ties the registry, the grid and the event bus together. Every
// spawn, despawn and move goes through it so the three never disagree.
// Single-goroutine access only (game loop); the registry it wraps is the
// part other goroutines may read.
type State struct {
	grid *Grid
	reg  *registry.Registry
	bus  *event.Bus
	log  *zap.Logger
}

func NewState(grid *Grid, reg *registry.Registry, bus *event.Bus, log *zap.Logger) *State {
	return &State{grid: grid, reg: reg, bus: bus, log: log}
}

func (s *State) Grid() *Grid                  { return s.grid }
func (s *State) Registry() *registry.Registry { return s.reg }
func (s *State) Bus() *event.Bus              { return s.bus }

// Spawn registers a non-player entity and places it in the grid.
func (s *State) Spawn(e entity.Entity) error {
	if e.Kind() == entity.KindPlayer {
		return fmt.Errorf("spawn %s: players join through Connect", e.Handle())
	}
	if err := s.reg.Add(e); err != nil {
		return fmt.Errorf("spawn: %w", err)
	}
	s.grid.Add(e)
	b := e.Record()
	event.Emit(s.bus, event.EntitySpawned{Handle: e.Handle(), Instance: b.Instance(), Pos: b.Position()})
	return nil
}

// Despawn takes a non-player entity out of view and out of the registry.
// The handle resolves to nothing afterwards.
func (s *State) Despawn(h entity.Handle) (entity.Entity, error) {
	id, ok := h.ID()
	if !ok {
		return nil, fmt.Errorf("despawn %s: not a simulation handle", h)
	}
	e, err := entity.Resolve(s.reg, h)
	if err != nil {
		return nil, fmt.Errorf("despawn: %w", err)
	}
	s.grid.Remove(e)
	s.reg.Remove(id)
	s.checkDetached(e)
	event.Emit(s.bus, event.EntityDespawned{Handle: h, Instance: e.Record().Instance()})
	return e, nil
}

// Connect brings a player's entity into the world.
func (s *State) Connect(p *entity.Player) error {
	if err := s.reg.Connect(p); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	s.grid.Add(p)
	event.Emit(s.bus, event.PlayerConnected{Handle: p.Handle(), Name: p.Name})
	s.log.Info("玩家進入世界", zap.String("name", p.Name), zap.Stringer("handle", p.Handle()))
	return nil
}

// Disconnect removes the player bound to conn. Unknown conns are a no-op;
// sessions die asynchronously and may be reported more than once.
func (s *State) Disconnect(conn entity.ConnID) (*entity.Player, bool) {
	p, ok := s.reg.PlayerByConn(conn)
	if !ok {
		return nil, false
	}
	s.grid.Remove(p)
	s.reg.Disconnect(conn)
	s.checkDetached(p)
	event.Emit(s.bus, event.PlayerDisconnected{Handle: p.Handle(), Name: p.Name})
	s.log.Info("玩家離開世界", zap.String("name", p.Name))
	return p, true
}

// Move relocates whatever h names. A stale handle is reported, not fatal.
func (s *State) Move(h entity.Handle, pos entity.Pos) error {
	e, err := entity.Resolve(s.reg, h)
	if err != nil {
		return fmt.Errorf("move: %w", err)
	}
	s.grid.Move(e, pos)
	return nil
}

// Transfer moves an entity to another instance: it leaves every cell of the
// old one before it appears in the new one.
func (s *State) Transfer(h entity.Handle, instance uint64, pos entity.Pos) error {
	e, err := entity.Resolve(s.reg, h)
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	s.grid.Remove(e)
	b := e.Record()
	b.SetInstance(instance)
	b.SetPosition(pos)
	s.grid.Add(e)
	return nil
}

// ConsumeEgg kills an egg for delay. It returns false if the egg was
// already dead.
func (s *State) ConsumeEgg(h entity.Handle, now time.Time, delay time.Duration) (bool, error) {
	e, err := entity.Resolve(s.reg, h)
	if err != nil {
		return false, fmt.Errorf("consume egg: %w", err)
	}
	egg, ok := e.(*entity.Egg)
	if !ok {
		return false, fmt.Errorf("consume egg: %s is a %s", h, e.Kind())
	}
	if !egg.Consume(now, delay) {
		return false, nil
	}
	event.Emit(s.bus, event.EggConsumed{Handle: h, DeadUntil: egg.DeadUntil})
	return true, nil
}

// Eggs returns every registered egg.
func (s *State) Eggs() []*entity.Egg {
	var out []*entity.Egg
	s.reg.EachEntity(func(e entity.Entity) {
		if egg, ok := e.(*entity.Egg); ok {
			out = append(out, egg)
		}
	})
	return out
}

// Combatants returns every registered combat NPC and mob.
func (s *State) Combatants() []Combatant {
	var out []Combatant
	s.reg.EachEntity(func(e entity.Entity) {
		if c, ok := e.(Combatant); ok {
			out = append(out, c)
		}
	})
	return out
}

// TearDownInstance despawns every non-player entity of an instance and
// returns how many went. Players must be transferred out first; any still
// inside are left alone and reported.
func (s *State) TearDownInstance(instance uint64) (int, error) {
	var victims []entity.Handle
	s.reg.EachEntity(func(e entity.Entity) {
		if e.Record().Instance() == instance {
			victims = append(victims, e.Handle())
		}
	})
	var errs []error
	for _, h := range victims {
		if _, err := s.Despawn(h); err != nil {
			errs = append(errs, err)
		}
	}
	stranded := 0
	s.reg.EachPlayer(func(p *entity.Player) {
		if p.Instance() == instance {
			stranded++
		}
	})
	if stranded > 0 {
		s.log.Warn("副本銷毀時仍有玩家", zap.Uint64("instance", instance), zap.Int("players", stranded))
	}
	return len(victims) - len(errs), errors.Join(errs...)
}

// checkDetached logs a leaked observer set. Reaching it means the grid lost
// track of a cell; tests assert it never happens.
func (s *State) checkDetached(e entity.Entity) {
	if n := e.Record().ObserverCount(); n != 0 {
		s.log.Error("實體移除後仍被觀察", zap.Stringer("handle", e.Handle()), zap.Int("observers", n))
	}
}
