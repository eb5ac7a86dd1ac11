package entity

import "github.com/l1jgo/worldcore/internal/net/packet"

// buildPutObject encodes the generic appearance packet shared by NPCs, combat
// NPCs, mobs, eggs and players.
func buildPutObject(objID int32, a Appearance, status byte, name string) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_PUT_OBJECT)
	w.WriteD(objID)
	w.WriteD(a.Pos.X)
	w.WriteD(a.Pos.Y)
	w.WriteD(a.Pos.Z)
	w.WriteD(a.TypeCode)
	w.WriteH(uint16(a.Angle))
	w.WriteC(status)
	w.WriteD(a.Condition)
	w.WriteC(byte(a.BarkerType))
	w.WriteD(a.DefID)
	w.WriteS(name)
	return w.Bytes()
}

// buildHPMeter encodes the health bar a newcomer needs for a combatant.
func buildHPMeter(objID int32, hp, maxHP, condition int32) []byte {
	var ratio byte = 0xFF // unknown max: client hides the bar
	if maxHP > 0 {
		pct := min(max(int64(hp)*100/int64(maxHP), 0), 100)
		ratio = byte(pct)
	}
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_HP_METER)
	w.WriteD(objID)
	w.WriteC(ratio)
	w.WriteD(hp)
	w.WriteD(maxHP)
	w.WriteD(condition)
	return w.Bytes()
}

func buildRemoveObject(objID int32) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_REMOVE_OBJECT)
	w.WriteD(objID)
	return w.Bytes()
}

// buildPutTransport encodes a transport. Transports are drawn from their own
// table on the client, so they do not share S_OPCODE_PUT_OBJECT.
func buildPutTransport(objID int32, a Appearance, instance uint64) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_PUT_TRANSPORT)
	w.WriteD(objID)
	w.WriteD(a.TypeCode)
	w.WriteQ(instance)
	w.WriteD(a.Pos.X)
	w.WriteD(a.Pos.Y)
	w.WriteD(a.Pos.Z)
	w.WriteH(uint16(a.Angle))
	w.WriteD(a.Condition)
	return w.Bytes()
}

func buildRemoveTransport(objID int32) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_REMOVE_TRANSPORT)
	w.WriteD(objID)
	return w.Bytes()
}

// MovePacket encodes e's current position for observers that already know it.
func MovePacket(e Entity) []byte {
	p := e.Record().Position()
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_MOVE_OBJECT)
	w.WriteD(e.ObjectID())
	w.WriteD(p.X)
	w.WriteD(p.Y)
	w.WriteD(p.Z)
	return w.Bytes()
}
