package handler

import (
	"time"

	"github.com/l1jgo/worldcore/internal/config"
	"github.com/l1jgo/worldcore/internal/data"
	"github.com/l1jgo/worldcore/internal/net"
	"github.com/l1jgo/worldcore/internal/net/packet"
	"github.com/l1jgo/worldcore/internal/world"
	"go.uber.org/zap"
)

// Deps holds shared dependencies injected into all packet handlers.
type Deps struct {
	Config *config.Config
	Log    *zap.Logger
	World  *world.State
	Npcs   *data.NpcTable
	Now    func() time.Time
}

// Registry is the handler table for client sessions.
type Registry = packet.Registry[*net.Session]

// RegisterAll registers all packet handlers into the registry.
func RegisterAll(reg *Registry, deps *Deps) {
	reg.Register(packet.C_OPCODE_ENTER_WORLD,
		[]packet.SessionState{packet.StateConnected},
		func(sess *net.Session, r *packet.Reader) error {
			return HandleEnterWorld(sess, r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_MOVE,
		[]packet.SessionState{packet.StateInWorld},
		func(sess *net.Session, r *packet.Reader) error {
			return HandleMove(sess, r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_USE_OBJECT,
		[]packet.SessionState{packet.StateInWorld},
		func(sess *net.Session, r *packet.Reader) error {
			return HandleUseObject(sess, r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_QUIT,
		[]packet.SessionState{packet.StateConnected, packet.StateInWorld},
		func(sess *net.Session, r *packet.Reader) error {
			return HandleQuit(sess, r, deps)
		},
	)
}
