package entity

// Transport is a moving carrier (bus, ferry). It holds no state beyond NPC
// but is announced under its own opcodes.
type Transport struct {
	NPC
}

func NewTransport(p SpawnParams) *Transport {
	t := &Transport{}
	t.NPC.init(KindTransport, p)
	return t
}

func (t *Transport) EnterView(o Observer) { t.enterView(t, o) }
func (t *Transport) LeaveView(o Observer) { t.leaveView(t, o) }

func (t *Transport) appearance() [][]byte {
	return [][]byte{buildPutTransport(t.id, t.Appearance(), t.instance)}
}

func (t *Transport) disappearance() [][]byte {
	return [][]byte{buildRemoveTransport(t.id)}
}
