package handler

import (
	"fmt"

	"github.com/l1jgo/worldcore/internal/entity"
	"github.com/l1jgo/worldcore/internal/net"
	"github.com/l1jgo/worldcore/internal/net/packet"
)

// maxNameLen is in bytes of the decoded name.
const maxNameLen = 32

// HandleEnterWorld processes C_ENTER_WORLD: [S name]. It binds the session to
// a fresh player at the configured start point and moves it to StateInWorld.
// An empty name gets a generated one.
func HandleEnterWorld(sess *net.Session, r *packet.Reader, deps *Deps) error {
	name := r.ReadS()
	if err := r.Err(); err != nil {
		return err
	}
	if len(name) > maxNameLen {
		return fmt.Errorf("enter world: name too long (%d bytes)", len(name))
	}
	if name == "" {
		name = fmt.Sprintf("guest%d", sess.ID)
	}

	ws := deps.World
	wc := deps.Config.World
	p := entity.NewPlayer(
		sess.ID,
		ws.Registry().NextID(),
		name,
		entity.Pos{X: wc.StartX, Y: wc.StartY, Z: wc.StartZ},
		wc.StartInstance,
		sess,
	)
	p.Level = 1
	p.HP = entity.DefaultNPCHealth
	p.MaxHP = entity.DefaultNPCHealth
	if err := ws.Connect(p); err != nil {
		return fmt.Errorf("enter world: %w", err)
	}
	sess.SetState(packet.StateInWorld)
	return nil
}
