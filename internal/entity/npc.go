package entity

import "github.com/l1jgo/worldcore/internal/net/packet"

// DefaultNPCHealth is the health every NPC starts with unless its template
// says otherwise.
const DefaultNPCHealth = 400

// Appearance is what a new observer needs to draw an NPC.
type Appearance struct {
	Pos        Pos
	TypeCode   int32
	HP         int32
	Angle      int32
	Condition  int32 // bit flags
	BarkerType int32
	DefID      int32
}

// SpawnParams are the inputs shared by every NPC constructor.
type SpawnParams struct {
	ID       int32 // simulation id, allocated by the registry
	Pos      Pos
	Angle    int32
	Instance uint64
	TypeCode int32
	DefID    int32
	Name     string
}

// NPC is a simple, non-combat NPC (merchants, guards without AI, signs).
type NPC struct {
	Base
	id   int32
	name string
	app  Appearance
}

// NewNPC builds a SimpleNPC.
func NewNPC(p SpawnParams) *NPC {
	n := &NPC{}
	n.init(KindSimpleNPC, p)
	return n
}

func (n *NPC) init(kind Kind, p SpawnParams) {
	n.Base = newBase(kind, p.Pos, p.Instance)
	n.id = p.ID
	n.name = p.Name
	n.app = Appearance{
		Pos:      p.Pos,
		TypeCode: p.TypeCode,
		HP:       DefaultNPCHealth,
		Angle:    p.Angle,
		DefID:    p.DefID,
	}
}

func (n *NPC) ID() int32       { return n.id }
func (n *NPC) ObjectID() int32 { return n.id }
func (n *NPC) Name() string    { return n.name }
func (n *NPC) Handle() Handle  { return IDHandle(n.kind, n.id) }

// Appearance returns a copy of the appearance record at the current position.
func (n *NPC) Appearance() Appearance {
	a := n.app
	a.Pos = n.pos
	return a
}

// SetAngle changes the facing sent to future observers.
func (n *NPC) SetAngle(angle int32) { n.app.Angle = angle }

// SetCondition replaces the condition bit flags.
func (n *NPC) SetCondition(flags int32) { n.app.Condition = flags }

// SetBarker sets the dialogue type.
func (n *NPC) SetBarker(t int32) { n.app.BarkerType = t }

func (n *NPC) EnterView(o Observer) { n.enterView(n, o) }
func (n *NPC) LeaveView(o Observer) { n.leaveView(n, o) }

func (n *NPC) visible() bool { return true }

func (n *NPC) appearance() [][]byte {
	return [][]byte{buildPutObject(n.id, n.Appearance(), packet.StatusNormal, n.name)}
}

func (n *NPC) disappearance() [][]byte {
	return [][]byte{buildRemoveObject(n.id)}
}
