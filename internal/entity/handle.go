package entity

import (
	"cmp"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Resolve when a handle no longer names a live entity.
var ErrNotFound = errors.New("entity not found")

// ConnID identifies a network session. The session may close at any moment;
// holding a ConnID keeps nothing alive.
type ConnID uint64

// Handle names an entity without pointing at it. It is a small comparable
// value, safe to copy, store in maps and hand across goroutines. Player
// handles carry a ConnID, every other kind carries an int32 simulation id.
// The zero Handle is invalid.
type Handle struct {
	kind Kind
	conn ConnID
	id   int32
}

// ConnHandle returns the handle of the player bound to conn.
func ConnHandle(conn ConnID) Handle {
	return Handle{kind: KindPlayer, conn: conn}
}

// IDHandle returns the handle of a non-player entity. Player and Invalid kinds
// have no numeric id and yield the zero Handle.
func IDHandle(kind Kind, id int32) Handle {
	if !kind.IsNPC() {
		return Handle{}
	}
	return Handle{kind: kind, id: id}
}

func (h Handle) Kind() Kind     { return h.kind }
func (h Handle) IsZero() bool   { return h.kind == KindInvalid }
func (h Handle) IsPlayer() bool { return h.kind == KindPlayer }

// Conn returns the connection payload; ok is false for non-player handles.
func (h Handle) Conn() (ConnID, bool) {
	return h.conn, h.kind == KindPlayer
}

// ID returns the numeric payload; ok is false for player and zero handles.
func (h Handle) ID() (int32, bool) {
	return h.id, h.kind.IsNPC()
}

// Equal reports whether both handles name the same entity slot.
func (h Handle) Equal(o Handle) bool {
	if h.kind != o.kind {
		return false
	}
	if h.kind == KindPlayer {
		return h.conn == o.conn
	}
	return h.id == o.id
}

// Compare orders handles by kind, then by connection or id. The order carries
// no meaning beyond letting handles key sorted containers.
func (h Handle) Compare(o Handle) int {
	if c := cmp.Compare(h.kind, o.kind); c != 0 {
		return c
	}
	if h.kind == KindPlayer {
		return cmp.Compare(h.conn, o.conn)
	}
	return cmp.Compare(h.id, o.id)
}

func (h Handle) Less(o Handle) bool { return h.Compare(o) < 0 }

func (h Handle) String() string {
	switch {
	case h.kind == KindPlayer:
		return fmt.Sprintf("player#%d", h.conn)
	case h.kind.IsNPC():
		return fmt.Sprintf("%s#%d", h.kind, h.id)
	default:
		return "invalid"
	}
}

// Resolver is the lookup side of the connection and simulation registries.
// Both methods must be non-blocking and report a miss instead of waiting.
type Resolver interface {
	Player(conn ConnID) (Entity, bool)
	Lookup(kind Kind, id int32) (Entity, bool)
}

// Entity looks the handle up again. Nothing is cached: a handle that resolved
// a moment ago can miss now.
func (h Handle) Entity(r Resolver) (Entity, bool) {
	switch {
	case h.kind == KindPlayer:
		return r.Player(h.conn)
	case h.kind.IsNPC():
		return r.Lookup(h.kind, h.id)
	default:
		return nil, false
	}
}

// IsValid reports whether the handle currently resolves.
func (h Handle) IsValid(r Resolver) bool {
	_, ok := h.Entity(r)
	return ok
}

// Resolve is Entity with an error result for callers that propagate misses.
func Resolve(r Resolver, h Handle) (Entity, error) {
	e, ok := h.Entity(r)
	if !ok {
		return nil, fmt.Errorf("resolve %s: %w", h, ErrNotFound)
	}
	return e, nil
}
