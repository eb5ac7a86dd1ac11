package handler

import (
	"github.com/l1jgo/worldcore/internal/net"
	"github.com/l1jgo/worldcore/internal/net/packet"
	"go.uber.org/zap"
)

// HandleQuit processes C_QUIT. It only closes the session; InputSystem does
// the world cleanup when it sees the session closed.
func HandleQuit(sess *net.Session, _ *packet.Reader, deps *Deps) error {
	deps.Log.Info("玩家登出", zap.Uint64("session", uint64(sess.ID)))
	sess.Close()
	return nil
}
