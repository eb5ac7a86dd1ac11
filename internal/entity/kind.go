package entity

import "fmt"

// Kind tags which variant an entity is. The zero value is KindInvalid and
// never belongs to a live entity. Declaration order is also the primary sort
// key of Handle.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindPlayer
	KindSimpleNPC
	KindCombatNPC
	KindMob
	KindEgg
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindPlayer:
		return "player"
	case KindSimpleNPC:
		return "npc"
	case KindCombatNPC:
		return "combat"
	case KindMob:
		return "mob"
	case KindEgg:
		return "egg"
	case KindTransport:
		return "transport"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// IsNPC reports whether entities of this kind are addressed by a numeric
// simulation id rather than a connection.
func (k Kind) IsNPC() bool {
	return k > KindPlayer && k <= KindTransport
}
