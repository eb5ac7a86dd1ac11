package entity

import "time"

// EggState is the lifecycle position of an egg.
type EggState uint8

const (
	EggDormant EggState = iota
	EggSummoned
	EggDead
)

func (s EggState) String() string {
	switch s {
	case EggDormant:
		return "dormant"
	case EggSummoned:
		return "summoned"
	case EggDead:
		return "dead"
	default:
		return "unknown"
	}
}

// Egg is a consumable world object that respawns after a delay. While dead it
// stays in the grid and keeps its observer set current, but observers are
// told nothing.
type Egg struct {
	NPC
	Summoned  bool
	Dead      bool
	DeadUntil time.Time
}

// NewEgg builds an egg. Eggs always face angle 0.
func NewEgg(p SpawnParams, summoned bool) *Egg {
	p.Angle = 0
	e := &Egg{Summoned: summoned}
	e.NPC.init(KindEgg, p)
	return e
}

// IsAlive reports whether the egg has not been consumed.
func (e *Egg) IsAlive() bool { return !e.Dead }

func (e *Egg) EggState() EggState {
	switch {
	case e.Dead:
		return EggDead
	case e.Summoned:
		return EggSummoned
	default:
		return EggDormant
	}
}

// Summon moves a dormant egg into the world. It does nothing to a dead egg.
func (e *Egg) Summon() {
	if !e.Dead {
		e.Summoned = true
	}
}

// Consume kills the egg until now+delay. Current observers are told it
// disappeared before the flag flips; afterwards it is silent until Respawn.
// It reports false if the egg was already dead.
func (e *Egg) Consume(now time.Time, delay time.Duration) bool {
	if e.Dead {
		return false
	}
	e.broadcast(e.disappearance())
	e.Dead = true
	e.DeadUntil = now.Add(delay)
	return true
}

// ReadyToRespawn reports whether a dead egg's timer has elapsed.
func (e *Egg) ReadyToRespawn(now time.Time) bool {
	return e.Dead && !now.Before(e.DeadUntil)
}

// Respawn brings a dead egg back once its timer has elapsed and announces it
// to the cells that kept it in view. It reports whether the egg came back.
func (e *Egg) Respawn(now time.Time) bool {
	if !e.ReadyToRespawn(now) {
		return false
	}
	e.Dead = false
	e.DeadUntil = time.Time{}
	e.Summoned = true
	e.broadcast(e.appearance())
	return true
}

func (e *Egg) EnterView(o Observer) { e.enterView(e, o) }
func (e *Egg) LeaveView(o Observer) { e.leaveView(e, o) }

func (e *Egg) visible() bool { return !e.Dead }
