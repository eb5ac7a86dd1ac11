package entity

import (
	"testing"
	"time"
)

func TestCombatNPCIsAlive(t *testing.T) {
	c := NewCombatNPC(SpawnParams{ID: 1}, 400, 1)
	if !c.IsAlive() || c.Health() != 400 {
		t.Fatalf("fresh combatant alive=%v hp=%d", c.IsAlive(), c.Health())
	}
	c.SetHealth(1)
	if !c.IsAlive() {
		t.Fatalf("hp 1 should be alive")
	}
	c.SetHealth(0)
	if c.IsAlive() {
		t.Fatalf("hp 0 should be dead")
	}
}

func TestCombatNPCHealthClamp(t *testing.T) {
	c := NewCombatNPC(SpawnParams{ID: 1}, 400, 1)
	if got := c.Damage(1000); got != 0 {
		t.Fatalf("overkill hp = %d, want 0", got)
	}
	if got := c.Heal(1000); got != 400 {
		t.Fatalf("overheal hp = %d, want 400", got)
	}
}

func TestCombatNPCReset(t *testing.T) {
	c := NewCombatNPC(SpawnParams{ID: 1, Pos: Pos{X: 5, Y: 5}}, 50, 1)
	c.SetPosition(Pos{X: 90, Y: 90})
	c.Damage(50)
	c.Reset()
	if c.Position() != (Pos{X: 5, Y: 5}) || c.Health() != 50 {
		t.Fatalf("reset pos=%+v hp=%d", c.Position(), c.Health())
	}
}

func TestStepAI(t *testing.T) {
	c := NewCombatNPC(SpawnParams{ID: 1}, 10, 1)
	c.StepAI() // no hook: no-op

	calls := 0
	c.SetAI(StepFunc(func() { calls++ }))
	if !c.HasAI() {
		t.Fatalf("HasAI = false after SetAI")
	}
	c.StepAI()
	c.StepAI()
	if calls != 2 {
		t.Fatalf("hook calls = %d, want 2", calls)
	}
	c.ClearAI()
	c.StepAI()
	if calls != 2 || c.HasAI() {
		t.Fatalf("hook ran after ClearAI")
	}
}

func TestDeadCombatantLeavesAllObservers(t *testing.T) {
	c := NewCombatNPC(SpawnParams{ID: 77}, 400, 1)
	cells := []*recorder{{}, {}, {}}
	for _, o := range cells {
		c.EnterView(o)
	}
	c.SetHealth(0)
	if c.IsAlive() {
		t.Fatalf("combatant alive at hp 0")
	}
	for _, o := range c.Observers() {
		c.LeaveView(o)
	}
	for i, o := range cells {
		if n := len(o.pkts); n != 3 {
			t.Fatalf("cell %d got %d packets, want enter(2)+leave(1)", i, n)
		}
	}
	if !c.Detached() {
		t.Fatalf("observers left after despawn: %d", c.ObserverCount())
	}
}

func TestMobLifecycle(t *testing.T) {
	now := time.Unix(1000, 0)
	m := NewMob(SpawnParams{ID: 2, Pos: Pos{X: 1}}, 100, 3, 30*time.Second)
	if m.Kind() != KindMob || m.Handle() != IDHandle(KindMob, 2) {
		t.Fatalf("mob kind/handle = %s/%v", m.Kind(), m.Handle())
	}
	m.State = MobCombat
	m.Target = ConnHandle(4)
	m.Kill(now)
	if m.IsAlive() || m.State != MobDead || !m.Target.IsZero() {
		t.Fatalf("killed mob alive=%v state=%s target=%v", m.IsAlive(), m.State, m.Target)
	}
	if m.ReadyToRespawn(now.Add(29 * time.Second)) {
		t.Fatalf("ready before delay")
	}
	if !m.ReadyToRespawn(now.Add(30 * time.Second)) {
		t.Fatalf("not ready after delay")
	}
	m.Reset()
	if !m.IsAlive() || m.State != MobIdle {
		t.Fatalf("reset mob alive=%v state=%s", m.IsAlive(), m.State)
	}
}
