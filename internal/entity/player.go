package entity

import "github.com/l1jgo/worldcore/internal/net/packet"

// Player is the in-world half of a connected session. It never holds the
// session itself, only the ConnID and a Sender for its own packets.
type Player struct {
	Base
	conn   ConnID
	out    Sender
	CharID int32 // object id shown to other clients
	Name   string
	Level  int32
	HP     int32
	MaxHP  int32
	Gfx    int32
}

// NewPlayer builds a player bound to conn. out receives the packets every
// cell the player stands in broadcasts.
func NewPlayer(conn ConnID, charID int32, name string, pos Pos, instance uint64, out Sender) *Player {
	return &Player{
		Base:   newBase(KindPlayer, pos, instance),
		conn:   conn,
		out:    out,
		CharID: charID,
		Name:   name,
	}
}

func (p *Player) Conn() ConnID    { return p.conn }
func (p *Player) ObjectID() int32 { return p.CharID }
func (p *Player) Handle() Handle  { return ConnHandle(p.conn) }

// Send forwards data to the player's session. A player built without a
// sink drops it.
func (p *Player) Send(data []byte) {
	if p.out != nil {
		p.out.Send(data)
	}
}

func (p *Player) EnterView(o Observer) { p.enterView(p, o) }
func (p *Player) LeaveView(o Observer) { p.leaveView(p, o) }

func (p *Player) visible() bool { return true }

func (p *Player) appearance() [][]byte {
	a := Appearance{
		Pos:      p.pos,
		TypeCode: p.Gfx,
		HP:       p.HP,
	}
	return [][]byte{
		buildPutObject(p.CharID, a, packet.StatusNormal, p.Name),
		buildHPMeter(p.CharID, p.HP, p.MaxHP, 0),
	}
}

func (p *Player) disappearance() [][]byte {
	return [][]byte{buildRemoveObject(p.CharID)}
}
