package handler

import (
	"fmt"

	"github.com/l1jgo/worldcore/internal/entity"
	"github.com/l1jgo/worldcore/internal/net"
	"github.com/l1jgo/worldcore/internal/net/packet"
)

// Direction deltas indexed by heading (0-7).
var headingDX = [8]int32{0, 1, 1, 1, 0, -1, -1, -1}
var headingDY = [8]int32{-1, -1, 0, 1, 1, 1, 0, -1}

// HandleMove processes C_MOVE: [C heading]. The client's own coordinates are
// never trusted; the step is applied to the server-tracked position.
func HandleMove(sess *net.Session, r *packet.Reader, deps *Deps) error {
	heading := r.ReadC()
	if err := r.Err(); err != nil {
		return err
	}
	if heading > 7 {
		return fmt.Errorf("move: bad heading %d", heading)
	}

	ws := deps.World
	p, ok := ws.Registry().PlayerByConn(sess.ID)
	if !ok {
		return fmt.Errorf("move: %w", entity.ErrNotFound)
	}
	pos := p.Position()
	pos.X += headingDX[heading]
	pos.Y += headingDY[heading]
	return ws.Move(p.Handle(), pos)
}
