package event

import (
	"testing"

	"github.com/l1jgo/worldcore/internal/entity"
)

func TestBusDeliversNextTick(t *testing.T) {
	b := NewBus()
	var got []entity.Handle
	Subscribe(b, func(ev EntitySpawned) { got = append(got, ev.Handle) })

	Emit(b, EntitySpawned{Handle: entity.IDHandle(entity.KindMob, 1)})
	b.DispatchAll()
	if len(got) != 0 {
		t.Fatalf("event delivered in the emitting tick")
	}
	if b.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", b.Pending())
	}

	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 1 || got[0] != entity.IDHandle(entity.KindMob, 1) {
		t.Fatalf("delivered = %v", got)
	}

	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 1 {
		t.Fatalf("event delivered twice")
	}
}

func TestBusRoutesByType(t *testing.T) {
	b := NewBus()
	spawned, gone := 0, 0
	Subscribe(b, func(EntitySpawned) { spawned++ })
	Subscribe(b, func(EntityDespawned) { gone++ })
	Emit(b, EntityDespawned{})
	Emit(b, EntityDespawned{})
	b.SwapBuffers()
	b.DispatchAll()
	if spawned != 0 || gone != 2 {
		t.Fatalf("spawned=%d gone=%d, want 0 and 2", spawned, gone)
	}
}
