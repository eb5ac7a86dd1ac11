package packet

// Server → client opcodes.
const (
	S_OPCODE_INITPACKET       byte = 150
	S_OPCODE_PUT_OBJECT       byte = 87
	S_OPCODE_REMOVE_OBJECT    byte = 21
	S_OPCODE_HP_METER         byte = 128
	S_OPCODE_MOVE_OBJECT      byte = 10
	S_OPCODE_PUT_TRANSPORT    byte = 95
	S_OPCODE_REMOVE_TRANSPORT byte = 96
	S_OPCODE_DISCONNECT       byte = 18
)

// Client → server opcodes.
const (
	C_OPCODE_ENTER_WORLD byte = 131
	C_OPCODE_MOVE        byte = 29
	C_OPCODE_USE_OBJECT  byte = 44
	C_OPCODE_QUIT        byte = 104
)

// Object status bytes carried by S_OPCODE_PUT_OBJECT.
const (
	StatusNormal byte = 0
	StatusDead   byte = 8
)
