package system

import (
	gonet "net"
	"testing"
	"time"

	"github.com/l1jgo/worldcore/internal/config"
	"github.com/l1jgo/worldcore/internal/core/event"
	"github.com/l1jgo/worldcore/internal/entity"
	"github.com/l1jgo/worldcore/internal/handler"
	"github.com/l1jgo/worldcore/internal/net"
	"github.com/l1jgo/worldcore/internal/net/packet"
	"github.com/l1jgo/worldcore/internal/registry"
	"github.com/l1jgo/worldcore/internal/world"
	"go.uber.org/zap/zaptest"
)

type fakeSource struct {
	fresh chan *net.Session
	dead  chan entity.ConnID
}

func newFakeSource() *fakeSource {
	return &fakeSource{fresh: make(chan *net.Session, 8), dead: make(chan entity.ConnID, 8)}
}

func (f *fakeSource) NewSessions() <-chan *net.Session   { return f.fresh }
func (f *fakeSource) DeadSessions() <-chan entity.ConnID { return f.dead }

func newWorld(t *testing.T) *world.State {
	t.Helper()
	log := zaptest.NewLogger(t)
	return world.NewState(world.NewGrid(20, 1), registry.New(log), event.NewBus(), log)
}

func newSession(t *testing.T, id entity.ConnID) *net.Session {
	t.Helper()
	a, b := gonet.Pipe()
	t.Cleanup(func() { a.Close(); b.Close() })
	return net.NewSession(b, id, net.SessionConfig{InQueue: 8, OutQueue: 64}, zaptest.NewLogger(t))
}

func newInput(t *testing.T, ws *world.State, src SessionSource) *InputSystem {
	t.Helper()
	log := zaptest.NewLogger(t)
	reg := packet.NewRegistry[*net.Session](log)
	handler.RegisterAll(reg, &handler.Deps{Config: &config.Config{}, Log: log, World: ws})
	return NewInputSystem(src, reg, net.NewSessionStore(), ws, 4, log)
}

func enterPacket(name string) []byte {
	w := packet.NewWriterWithOpcode(packet.C_OPCODE_ENTER_WORLD)
	w.WriteS(name)
	return w.Bytes()
}

func TestInputAdmitsAndDispatches(t *testing.T) {
	ws := newWorld(t)
	src := newFakeSource()
	in := newInput(t, ws, src)

	s := newSession(t, 3)
	src.fresh <- s
	s.InQueue <- enterPacket("mage")
	in.Update(0)

	if in.SessionCount() != 1 {
		t.Fatalf("sessions = %d, want 1", in.SessionCount())
	}
	p, ok := ws.Registry().PlayerByConn(3)
	if !ok || p.Name != "mage" {
		t.Fatalf("player not created from queued packet")
	}
	if s.State() != packet.StateInWorld {
		t.Fatalf("state = %s", s.State())
	}
}

func TestInputRetiresDeadSession(t *testing.T) {
	ws := newWorld(t)
	src := newFakeSource()
	in := newInput(t, ws, src)

	s := newSession(t, 4)
	src.fresh <- s
	s.InQueue <- enterPacket("elf")
	in.Update(0)

	src.dead <- 4
	src.dead <- 4
	in.Update(0)
	if in.SessionCount() != 0 {
		t.Fatalf("dead session kept")
	}
	if _, ok := ws.Registry().PlayerByConn(4); ok {
		t.Fatalf("player of a dead session still registered")
	}
}

func TestInputRetiresClosedSession(t *testing.T) {
	ws := newWorld(t)
	src := newFakeSource()
	in := newInput(t, ws, src)

	s := newSession(t, 5)
	src.fresh <- s
	s.InQueue <- enterPacket("dk")
	in.Update(0)
	s.Close()
	in.Update(0)
	if ws.Registry().PlayerCount() != 0 {
		t.Fatalf("closed session's player still in world")
	}
}

func TestInputCapsPacketsPerTick(t *testing.T) {
	ws := newWorld(t)
	src := newFakeSource()
	in := newInput(t, ws, src)

	s := newSession(t, 6)
	src.fresh <- s
	for i := 0; i < 6; i++ {
		s.InQueue <- []byte{0xFE}
	}
	in.Update(0)
	if got := len(s.InQueue); got != 2 {
		t.Fatalf("left in queue = %d, want 2", got)
	}
}

func TestOutputFlushes(t *testing.T) {
	store := net.NewSessionStore()
	s := newSession(t, 1)
	store.Add(s)
	s.Send([]byte{1, 2, 3})
	NewOutputSystem(store).Update(0)
	if s.Pending() != 0 || len(s.OutQueue) != 1 {
		t.Fatalf("pending = %d, queued = %d", s.Pending(), len(s.OutQueue))
	}
}

func TestEventDispatchDeliversLastTick(t *testing.T) {
	bus := event.NewBus()
	var got int
	event.Subscribe(bus, func(event.EggRespawned) { got++ })
	sys := NewEventDispatchSystem(bus)

	event.Emit(bus, event.EggRespawned{})
	sys.Update(0)
	if got != 1 {
		t.Fatalf("delivered %d events, want 1", got)
	}
	sys.Update(0)
	if got != 1 {
		t.Fatalf("event delivered twice")
	}
}

func TestAIStepsLiveCombatantsInHandleOrder(t *testing.T) {
	ws := newWorld(t)
	var order []int32
	var combatants []*entity.CombatNPC
	for i := 0; i < 3; i++ {
		c := entity.NewCombatNPC(entity.SpawnParams{ID: ws.Registry().NextID()}, 50, 1)
		id := c.ID()
		c.SetAI(entity.StepFunc(func() { order = append(order, id) }))
		combatants = append(combatants, c)
	}
	// Registered out of order on purpose.
	for _, i := range []int{2, 0, 1} {
		if err := ws.Spawn(combatants[i]); err != nil {
			t.Fatal(err)
		}
	}
	combatants[1].Damage(50)

	NewAISystem(ws).Update(0)
	want := []int32{combatants[0].ID(), combatants[2].ID()}
	if len(order) != len(want) || order[0] != want[0] || order[1] != want[1] {
		t.Fatalf("order = %v, want %v", order, want)
	}
}

func TestDeathDespawnsAndRespawnsMob(t *testing.T) {
	ws := newWorld(t)
	now := time.Unix(1_700_000_000, 0)
	clock := func() time.Time { return now }
	sys := NewDeathSystem(ws, time.Minute, clock, zaptest.NewLogger(t))

	var died []event.CombatantDied
	event.Subscribe(ws.Bus(), func(e event.CombatantDied) { died = append(died, e) })

	m := entity.NewMob(entity.SpawnParams{ID: ws.Registry().NextID(), Pos: entity.Pos{X: 10, Y: 10}}, 100, 5, 10*time.Second)
	if err := ws.Spawn(m); err != nil {
		t.Fatal(err)
	}
	ws.Move(m.Handle(), entity.Pos{X: 40, Y: 40})
	m.Damage(100)

	sys.Update(0)
	if m.Handle().IsValid(ws.Registry()) {
		t.Fatalf("dead mob still registered")
	}
	if m.State != entity.MobDead || !m.KilledAt.Equal(now) {
		t.Fatalf("mob state = %s killed at %v", m.State, m.KilledAt)
	}
	if sys.Pending() != 1 {
		t.Fatalf("pending = %d", sys.Pending())
	}
	ws.Bus().SwapBuffers()
	ws.Bus().DispatchAll()
	if len(died) != 1 || !died[0].RespawnAt.Equal(now.Add(10*time.Second)) {
		t.Fatalf("died = %+v", died)
	}

	now = now.Add(9 * time.Second)
	sys.Update(0)
	if m.Handle().IsValid(ws.Registry()) {
		t.Fatalf("mob respawned early")
	}

	now = now.Add(time.Second)
	sys.Update(0)
	if !m.Handle().IsValid(ws.Registry()) {
		t.Fatalf("mob did not respawn")
	}
	if !m.IsAlive() || m.Position() != (entity.Pos{X: 10, Y: 10}) || m.State != entity.MobIdle {
		t.Fatalf("respawned mob hp=%d pos=%+v state=%s", m.Health(), m.Position(), m.State)
	}
	if sys.Pending() != 0 {
		t.Fatalf("pending = %d after respawn", sys.Pending())
	}
}

func TestDeathWithoutDelayStaysGone(t *testing.T) {
	ws := newWorld(t)
	sys := NewDeathSystem(ws, 0, nil, zaptest.NewLogger(t))
	c := entity.NewCombatNPC(entity.SpawnParams{ID: ws.Registry().NextID()}, 10, 1)
	ws.Spawn(c)
	c.Damage(10)
	sys.Update(0)
	if sys.Pending() != 0 || ws.Registry().EntityCount() != 0 {
		t.Fatalf("pending = %d, entities = %d", sys.Pending(), ws.Registry().EntityCount())
	}
}

func TestEggRespawnsWhenDue(t *testing.T) {
	ws := newWorld(t)
	now := time.Unix(1_700_000_000, 0)
	sys := NewEggSystem(ws, func() time.Time { return now }, zaptest.NewLogger(t))

	var respawned int
	event.Subscribe(ws.Bus(), func(event.EggRespawned) { respawned++ })

	egg := entity.NewEgg(entity.SpawnParams{ID: ws.Registry().NextID()}, false)
	ws.Spawn(egg)
	if _, err := ws.ConsumeEgg(egg.Handle(), now, 5*time.Second); err != nil {
		t.Fatal(err)
	}

	sys.Update(0)
	if !egg.Dead {
		t.Fatalf("egg respawned before its timer")
	}
	now = now.Add(5 * time.Second)
	sys.Update(0)
	if egg.Dead {
		t.Fatalf("egg still dead after its timer")
	}
	sys.Update(0)

	ws.Bus().SwapBuffers()
	ws.Bus().DispatchAll()
	if respawned != 1 {
		t.Fatalf("respawn events = %d, want 1", respawned)
	}
}
