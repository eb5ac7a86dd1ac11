package entity

import (
	"errors"
	"slices"
	"testing"
)

type fakeResolver struct {
	players map[ConnID]Entity
	npcs    map[int32]Entity
}

func (r *fakeResolver) Player(conn ConnID) (Entity, bool) {
	e, ok := r.players[conn]
	return e, ok
}

func (r *fakeResolver) Lookup(kind Kind, id int32) (Entity, bool) {
	e, ok := r.npcs[id]
	if !ok || e.Kind() != kind {
		return nil, false
	}
	return e, true
}

func TestHandleEquality(t *testing.T) {
	if ConnHandle(7) != ConnHandle(7) {
		t.Fatalf("same conn handles differ")
	}
	if !IDHandle(KindMob, 42).Equal(IDHandle(KindMob, 42)) {
		t.Fatalf("same id handles differ")
	}
	if ConnHandle(7) == ConnHandle(8) {
		t.Fatalf("different conns compare equal")
	}

	mob := IDHandle(KindMob, 42)
	npc := IDHandle(KindSimpleNPC, 42)
	if mob == npc || mob.Equal(npc) {
		t.Fatalf("handles of different kinds compare equal")
	}
	// kind first: SimpleNPC sorts before Mob whatever the ids are
	if !npc.Less(mob) || mob.Less(npc) {
		t.Fatalf("ordering = npc<mob %v, mob<npc %v; want true, false", npc.Less(mob), mob.Less(npc))
	}
	if !IDHandle(KindMob, 1000).Less(IDHandle(KindEgg, 1)) {
		t.Fatalf("mob#1000 should sort before egg#1")
	}

	// a player conn and an npc id with the same bits never match
	if ConnHandle(42).Equal(IDHandle(KindSimpleNPC, 42)) {
		t.Fatalf("player handle equals npc handle")
	}
}

func TestIDHandleRejectsPlayerKind(t *testing.T) {
	for _, k := range []Kind{KindInvalid, KindPlayer, Kind(99)} {
		if h := IDHandle(k, 5); !h.IsZero() {
			t.Fatalf("IDHandle(%s) = %v, want zero handle", k, h)
		}
	}
	if _, ok := ConnHandle(3).ID(); ok {
		t.Fatalf("player handle exposes an id")
	}
	if _, ok := IDHandle(KindEgg, 3).Conn(); ok {
		t.Fatalf("egg handle exposes a conn")
	}
}

func TestHandleSortAndMapKey(t *testing.T) {
	hs := []Handle{
		IDHandle(KindTransport, 1),
		IDHandle(KindMob, 9),
		ConnHandle(20),
		IDHandle(KindMob, 3),
		ConnHandle(2),
	}
	slices.SortFunc(hs, Handle.Compare)
	want := []Handle{ConnHandle(2), ConnHandle(20), IDHandle(KindMob, 3), IDHandle(KindMob, 9), IDHandle(KindTransport, 1)}
	if !slices.Equal(hs, want) {
		t.Fatalf("sorted = %v, want %v", hs, want)
	}

	m := map[Handle]int{ConnHandle(2): 1}
	m[ConnHandle(2)]++
	if m[ConnHandle(2)] != 2 || len(m) != 1 {
		t.Fatalf("map keyed by handle = %v", m)
	}
}

func TestHandleResolveStale(t *testing.T) {
	p := NewPlayer(7, 1, "alice", Pos{}, 1, nil)
	n := NewNPC(SpawnParams{ID: 200000001})
	r := &fakeResolver{
		players: map[ConnID]Entity{7: p},
		npcs:    map[int32]Entity{200000001: n},
	}

	ph, nh := p.Handle(), n.Handle()
	if got, ok := ph.Entity(r); !ok || got != p {
		t.Fatalf("player resolve = %v, %v", got, ok)
	}
	if !nh.IsValid(r) {
		t.Fatalf("npc handle should resolve")
	}

	delete(r.players, 7)
	delete(r.npcs, 200000001)
	if got, ok := ph.Entity(r); ok || got != nil {
		t.Fatalf("stale player resolve = %v, %v; want nil, false", got, ok)
	}
	if nh.IsValid(r) {
		t.Fatalf("stale npc handle still valid")
	}
	if _, err := Resolve(r, nh); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Resolve err = %v, want ErrNotFound", err)
	}
	if _, ok := (Handle{}).Entity(r); ok {
		t.Fatalf("zero handle resolved")
	}
}

func TestHandleResolveWrongKind(t *testing.T) {
	n := NewNPC(SpawnParams{ID: 5})
	r := &fakeResolver{npcs: map[int32]Entity{5: n}}
	if IDHandle(KindMob, 5).IsValid(r) {
		t.Fatalf("mob handle resolved to a simple npc")
	}
}

func TestHandleString(t *testing.T) {
	cases := map[Handle]string{
		ConnHandle(7):         "player#7",
		IDHandle(KindMob, 12): "mob#12",
		IDHandle(KindEgg, -1): "egg#-1",
		{}:                    "invalid",
	}
	for h, want := range cases {
		if got := h.String(); got != want {
			t.Fatalf("String() = %q, want %q", got, want)
		}
	}
}
