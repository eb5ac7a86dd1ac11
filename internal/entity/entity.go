package entity

// Pos is an integer world coordinate.
type Pos struct {
	X, Y, Z int32
}

// CellKey identifies one spatial cell of one world instance.
type CellKey struct {
	Instance uint64
	CX, CY   int32
}

// Sender is a network sink: a single session, or every session of a cell.
type Sender interface {
	Send(data []byte)
}

// Observer is a spatial cell that can have entities in view. Implementations
// must be comparable (pointer types); the observer set keys on identity.
type Observer interface {
	Sender
}

// Entity is the contract shared by every variant. The unexported methods
// close the set: only the types in this package are entities.
type Entity interface {
	Kind() Kind
	Handle() Handle
	ObjectID() int32
	Record() *Base
	IsAlive() bool

	// EnterView announces the entity to o and records o as an observer.
	EnterView(o Observer)
	// LeaveView tells o the entity is gone and forgets o.
	LeaveView(o Observer)

	visible() bool
	appearance() [][]byte
	disappearance() [][]byte
}

// Base is the record every variant embeds. It has no view protocol of its own
// and so never satisfies Entity by itself.
type Base struct {
	kind     Kind
	pos      Pos
	instance uint64
	cell     CellKey

	observers map[Observer]struct{}
}

func newBase(kind Kind, pos Pos, instance uint64) Base {
	return Base{
		kind:      kind,
		pos:       pos,
		instance:  instance,
		observers: make(map[Observer]struct{}, 9),
	}
}

func (b *Base) Kind() Kind           { return b.kind }
func (b *Base) Record() *Base        { return b }
func (b *Base) Position() Pos        { return b.pos }
func (b *Base) Instance() uint64     { return b.instance }
func (b *Base) Cell() CellKey        { return b.cell }
func (b *Base) SetPosition(p Pos)    { b.pos = p }
func (b *Base) SetCell(k CellKey)    { b.cell = k }
func (b *Base) ObserverCount() int   { return len(b.observers) }
func (b *Base) Detached() bool       { return len(b.observers) == 0 }
func (b *Base) SetInstance(i uint64) { b.instance = i }

// IsAlive is the default liveness rule: the entity exists.
func (b *Base) IsAlive() bool { return true }

// ObservedBy reports whether o currently has the entity in view.
func (b *Base) ObservedBy(o Observer) bool {
	_, ok := b.observers[o]
	return ok
}

// Observers returns a snapshot of the observing cells. Order is unspecified.
func (b *Base) Observers() []Observer {
	out := make([]Observer, 0, len(b.observers))
	for o := range b.observers {
		out = append(out, o)
	}
	return out
}

// enterView sends e's appearance to o and then records o. A repeated enter for
// a current observer is dropped so the client never sees a duplicate.
func (b *Base) enterView(e Entity, o Observer) {
	if _, ok := b.observers[o]; ok {
		return
	}
	if e.visible() {
		for _, pkt := range e.appearance() {
			o.Send(pkt)
		}
	}
	if b.observers == nil {
		b.observers = make(map[Observer]struct{}, 9)
	}
	b.observers[o] = struct{}{}
}

func (b *Base) leaveView(e Entity, o Observer) {
	if _, ok := b.observers[o]; !ok {
		return
	}
	if e.visible() {
		for _, pkt := range e.disappearance() {
			o.Send(pkt)
		}
	}
	delete(b.observers, o)
}

// broadcast sends pkts to every current observer without changing the set.
func (b *Base) broadcast(pkts [][]byte) {
	for o := range b.observers {
		for _, pkt := range pkts {
			o.Send(pkt)
		}
	}
}

// Show pushes e's appearance to a single sink, leaving every observer set
// untouched. Invisible entities send nothing.
func Show(e Entity, s Sender) {
	if !e.visible() {
		return
	}
	for _, pkt := range e.appearance() {
		s.Send(pkt)
	}
}

// Hide is the counterpart of Show.
func Hide(e Entity, s Sender) {
	if !e.visible() {
		return
	}
	for _, pkt := range e.disappearance() {
		s.Send(pkt)
	}
}

var (
	_ Entity = (*Player)(nil)
	_ Entity = (*NPC)(nil)
	_ Entity = (*CombatNPC)(nil)
	_ Entity = (*Mob)(nil)
	_ Entity = (*Egg)(nil)
	_ Entity = (*Transport)(nil)
)
