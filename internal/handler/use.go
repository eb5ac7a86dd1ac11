package handler

import (
	"fmt"
	"time"

	"github.com/l1jgo/worldcore/internal/entity"
	"github.com/l1jgo/worldcore/internal/net"
	"github.com/l1jgo/worldcore/internal/net/packet"
	"go.uber.org/zap"
)

// HandleUseObject processes C_USE_OBJECT: [D object id]. Only eggs react:
// the player consumes one it can currently see.
func HandleUseObject(sess *net.Session, r *packet.Reader, deps *Deps) error {
	objID := r.ReadD()
	if err := r.Err(); err != nil {
		return err
	}

	ws := deps.World
	p, ok := ws.Registry().PlayerByConn(sess.ID)
	if !ok {
		return fmt.Errorf("use object: %w", entity.ErrNotFound)
	}
	h, ok := ws.Registry().HandleFor(objID)
	if !ok || h.Kind() != entity.KindEgg {
		return nil
	}
	e, err := entity.Resolve(ws.Registry(), h)
	if err != nil {
		return fmt.Errorf("use object: %w", err)
	}
	cell := ws.Grid().CellAt(p.Cell())
	if cell == nil || !e.Record().ObservedBy(cell) {
		deps.Log.Debug("使用距離外的物件", zap.Stringer("player", p.Handle()), zap.Stringer("target", h))
		return nil
	}

	ok, err = ws.ConsumeEgg(h, deps.now(), deps.eggDelay(e.(*entity.Egg)))
	if err != nil {
		return fmt.Errorf("use object: %w", err)
	}
	if ok {
		deps.Log.Debug("蛋被消耗", zap.Stringer("egg", h), zap.String("by", p.Name))
	}
	return nil
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// eggDelay is the template's respawn delay, falling back to the config.
func (d *Deps) eggDelay(egg *entity.Egg) time.Duration {
	if d.Npcs != nil {
		if t := d.Npcs.Get(egg.Appearance().DefID); t != nil && t.RespawnDelay > 0 {
			return t.Respawn()
		}
	}
	return d.Config.NPC.EggRespawnDelay
}
