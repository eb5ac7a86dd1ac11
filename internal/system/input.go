package system

import (
	"time"

	coresys "github.com/l1jgo/worldcore/internal/core/system"
	"github.com/l1jgo/worldcore/internal/entity"
	"github.com/l1jgo/worldcore/internal/handler"
	"github.com/l1jgo/worldcore/internal/net"
	"github.com/l1jgo/worldcore/internal/world"
	"go.uber.org/zap"
)

// SessionSource is the part of net.Server the game loop consumes.
type SessionSource interface {
	NewSessions() <-chan *net.Session
	DeadSessions() <-chan entity.ConnID
}

// InputSystem admits new sessions, retires dead ones and drains each
// session's inbound queue through the packet registry. Phase 0 (Input).
type InputSystem struct {
	src        SessionSource
	handlers   *handler.Registry
	store      *net.SessionStore
	world      *world.State
	maxPerTick int
	log        *zap.Logger
}

func NewInputSystem(
	src SessionSource,
	handlers *handler.Registry,
	store *net.SessionStore,
	ws *world.State,
	maxPerTick int,
	log *zap.Logger,
) *InputSystem {
	return &InputSystem{
		src:        src,
		handlers:   handlers,
		store:      store,
		world:      ws,
		maxPerTick: maxPerTick,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	for done := false; !done; {
		select {
		case sess := <-s.src.NewSessions():
			s.store.Add(sess)
		default:
			done = true
		}
	}
	for done := false; !done; {
		select {
		case id := <-s.src.DeadSessions():
			s.retire(id)
		default:
			done = true
		}
	}

	s.store.ForEach(func(sess *net.Session) {
		if sess.IsClosed() {
			s.retire(sess.ID)
			return
		}
		s.drain(sess)
	})

	// Early flush: packets produced by input go out while the later phases
	// run. OutputSystem flushes the rest.
	s.store.ForEach(func(sess *net.Session) {
		sess.FlushOutput()
	})
}

func (s *InputSystem) drain(sess *net.Session) {
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case data := <-sess.InQueue:
			if err := s.handlers.Dispatch(sess, sess.State(), data); err != nil {
				s.log.Debug("封包分派錯誤",
					zap.Uint64("session", uint64(sess.ID)),
					zap.Error(err),
				)
			}
		default:
			return
		}
	}
}

// retire removes a session and its player. Safe to call twice for one id.
func (s *InputSystem) retire(id entity.ConnID) {
	if s.store.Get(id) == nil {
		return
	}
	s.store.Remove(id)
	s.world.Disconnect(id)
}

// SessionCount returns the current number of live sessions.
func (s *InputSystem) SessionCount() int {
	return s.store.Count()
}

// Store exposes the session set for OutputSystem.
func (s *InputSystem) Store() *net.SessionStore { return s.store }
