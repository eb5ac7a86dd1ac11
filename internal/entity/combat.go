package entity

import (
	"time"

	"github.com/l1jgo/worldcore/internal/net/packet"
)

// Stepper is the AI capability a behavior system installs on a combatant.
type Stepper interface {
	Step()
}

// StepFunc adapts a plain function to Stepper.
type StepFunc func()

func (f StepFunc) Step() { f() }

// CombatNPC is an NPC that can take damage and may run scripted AI. Health is
// kept in the appearance record, not duplicated.
type CombatNPC struct {
	NPC
	MaxHealth int32
	Spawn     Pos
	Level     int32

	ai Stepper
}

// NewCombatNPC builds a CombatNPC at full health.
func NewCombatNPC(p SpawnParams, maxHealth, level int32) *CombatNPC {
	c := &CombatNPC{}
	c.init(KindCombatNPC, p, maxHealth, level)
	return c
}

func (c *CombatNPC) init(kind Kind, p SpawnParams, maxHealth, level int32) {
	c.NPC.init(kind, p)
	c.MaxHealth = maxHealth
	c.Spawn = p.Pos
	c.Level = level
	c.app.HP = maxHealth
}

// IsAlive reports whether health is above zero.
func (c *CombatNPC) IsAlive() bool { return c.app.HP > 0 }

func (c *CombatNPC) Health() int32 { return c.app.HP }

// SetHealth clamps hp to [0, MaxHealth].
func (c *CombatNPC) SetHealth(hp int32) {
	if hp < 0 {
		hp = 0
	}
	if c.MaxHealth > 0 && hp > c.MaxHealth {
		hp = c.MaxHealth
	}
	c.app.HP = hp
}

// Damage subtracts n and returns the remaining health.
func (c *CombatNPC) Damage(n int32) int32 {
	c.SetHealth(c.app.HP - n)
	return c.app.HP
}

// Heal adds n, capped at MaxHealth.
func (c *CombatNPC) Heal(n int32) int32 {
	c.SetHealth(c.app.HP + n)
	return c.app.HP
}

// Reset puts the combatant back at its spawn point with full health. The
// caller owns re-registering it with the grid.
func (c *CombatNPC) Reset() {
	c.pos = c.Spawn
	c.app.HP = c.MaxHealth
}

// SetAI installs the per-tick hook. A nil Stepper clears it.
func (c *CombatNPC) SetAI(s Stepper) { c.ai = s }
func (c *CombatNPC) ClearAI()        { c.ai = nil }
func (c *CombatNPC) HasAI() bool     { return c.ai != nil }

// StepAI runs the hook once. It is called once per tick by the scheduler;
// no hook is not an error.
func (c *CombatNPC) StepAI() {
	if c.ai != nil {
		c.ai.Step()
	}
}

func (c *CombatNPC) EnterView(o Observer) { c.enterView(c, o) }
func (c *CombatNPC) LeaveView(o Observer) { c.leaveView(c, o) }

func (c *CombatNPC) appearance() [][]byte {
	status := packet.StatusNormal
	if !c.IsAlive() {
		status = packet.StatusDead
	}
	a := c.Appearance()
	return [][]byte{
		buildPutObject(c.id, a, status, c.name),
		buildHPMeter(c.id, a.HP, c.MaxHealth, a.Condition),
	}
}

// MobState is the coarse behavior state of a mob.
type MobState uint8

const (
	MobIdle MobState = iota
	MobRoaming
	MobCombat
	MobRetreat
	MobDead
)

func (s MobState) String() string {
	switch s {
	case MobIdle:
		return "idle"
	case MobRoaming:
		return "roaming"
	case MobCombat:
		return "combat"
	case MobRetreat:
		return "retreat"
	case MobDead:
		return "dead"
	default:
		return "unknown"
	}
}

// Mob is a hostile combatant. Its behavior lives in the AI hook; it only adds
// the bookkeeping that hook and the respawn sweep share.
type Mob struct {
	CombatNPC
	State        MobState
	Target       Handle
	RespawnDelay time.Duration
	KilledAt     time.Time
}

// NewMob builds an idle mob.
func NewMob(p SpawnParams, maxHealth, level int32, respawn time.Duration) *Mob {
	m := &Mob{RespawnDelay: respawn}
	m.CombatNPC.init(KindMob, p, maxHealth, level)
	return m
}

// Kill marks the mob dead at now. Health is forced to zero.
func (m *Mob) Kill(now time.Time) {
	m.app.HP = 0
	m.State = MobDead
	m.Target = Handle{}
	m.KilledAt = now
}

// ReadyToRespawn reports whether a dead mob's respawn delay has passed.
func (m *Mob) ReadyToRespawn(now time.Time) bool {
	return m.State == MobDead && !now.Before(m.KilledAt.Add(m.RespawnDelay))
}

// Reset extends CombatNPC.Reset with mob state.
func (m *Mob) Reset() {
	m.CombatNPC.Reset()
	m.State = MobIdle
	m.Target = Handle{}
	m.KilledAt = time.Time{}
}

func (m *Mob) EnterView(o Observer) { m.enterView(m, o) }
func (m *Mob) LeaveView(o Observer) { m.leaveView(m, o) }
