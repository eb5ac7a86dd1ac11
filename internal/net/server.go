package net

import (
	"net"
	"sync/atomic"

	"github.com/l1jgo/worldcore/internal/entity"
	"go.uber.org/zap"
)

// Server accepts TCP connections and creates Sessions. New and dead sessions
// reach the game loop through channels.
type Server struct {
	listener net.Listener
	nextID   atomic.Uint64
	newConns chan *Session
	deadCh   chan entity.ConnID
	cfg      SessionConfig
	log      *zap.Logger
	closeCh  chan struct{}
}

func NewServer(bindAddr string, cfg SessionConfig, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: ln,
		newConns: make(chan *Session, 64),
		deadCh:   make(chan entity.ConnID, 64),
		cfg:      cfg,
		log:      log,
		closeCh:  make(chan struct{}),
	}, nil
}

// AcceptLoop runs in its own goroutine until Shutdown.
func (s *Server) AcceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closeCh:
				return
			default:
			}
			s.log.Error("連線接受失敗", zap.Error(err))
			continue
		}

		id := entity.ConnID(s.nextID.Add(1))
		sess := NewSession(conn, id, s.cfg, s.log)
		sess.OnClose(func() { s.NotifyDead(id) })
		sess.Start()

		s.log.Info("玩家連線", zap.Uint64("session", uint64(id)), zap.String("ip", sess.IP))

		select {
		case s.newConns <- sess:
		default:
			s.log.Warn("連線佇列已滿，拒絕新連線")
			sess.Close()
		}
	}
}

// NewSessions returns the channel of newly connected sessions.
func (s *Server) NewSessions() <-chan *Session {
	return s.newConns
}

// NotifyDead reports a dead session to the game loop. Sessions created by
// AcceptLoop call it themselves on close.
func (s *Server) NotifyDead(id entity.ConnID) {
	select {
	case s.deadCh <- id:
	default:
	}
}

// DeadSessions returns the channel of dead session ids.
func (s *Server) DeadSessions() <-chan entity.ConnID {
	return s.deadCh
}

// Shutdown stops accepting new connections.
func (s *Server) Shutdown() {
	close(s.closeCh)
	s.listener.Close()
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
