package net

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/l1jgo/worldcore/internal/entity"
	"github.com/l1jgo/worldcore/internal/net/packet"
	"go.uber.org/zap"
)

const writeTimeout = 10 * time.Second

// SessionConfig sizes a session's queues and limits.
type SessionConfig struct {
	InQueue   int // inbound packets buffered for the game loop
	OutQueue  int // outbound packets buffered for the writer
	PktPerSec int // inbound packet rate limit, 0 = unlimited
	MaxFrame  int // largest inbound frame accepted
}

// Session is one client connection. Network I/O runs in dedicated goroutines;
// outBuf and the bound player are touched only from the game loop.
type Session struct {
	ID   entity.ConnID
	conn net.Conn

	state atomic.Int32 // packet.SessionState

	InQueue  chan []byte // game loop reads packets from here
	OutQueue chan []byte // writer goroutine reads from here

	IP string

	outBuf [][]byte

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	onClose   func()

	// readLoop only
	pktPerSec  int
	pktCount   int
	pktResetAt int64
	maxFrame   int

	log *zap.Logger
}

var _ entity.Sender = (*Session)(nil)

func NewSession(conn net.Conn, id entity.ConnID, cfg SessionConfig, log *zap.Logger) *Session {
	s := &Session{
		ID:        id,
		conn:      conn,
		InQueue:   make(chan []byte, cfg.InQueue),
		OutQueue:  make(chan []byte, cfg.OutQueue),
		IP:        conn.RemoteAddr().String(),
		closeCh:   make(chan struct{}),
		pktPerSec: cfg.PktPerSec,
		maxFrame:  cfg.MaxFrame,
		log:       log.With(zap.Uint64("session", uint64(id))),
	}
	s.state.Store(int32(packet.StateConnected))
	return s
}

func (s *Session) State() packet.SessionState {
	return packet.SessionState(s.state.Load())
}

func (s *Session) SetState(st packet.SessionState) {
	s.state.Store(int32(st))
}

// Start writes the init packet carrying the connection id and launches the
// reader and writer goroutines.
func (s *Session) Start() {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_INITPACKET)
	w.WriteD(int32(s.ID))

	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := WriteFrame(s.conn, w.RawBytes()); err != nil {
		s.log.Error("初始封包發送失敗", zap.Error(err))
		s.Close()
		return
	}

	go s.readLoop()
	go s.writeLoop()
}

// Send buffers a packet. Nothing reaches the socket until FlushOutput.
// Game loop only.
func (s *Session) Send(data []byte) {
	if s.closed.Load() {
		return
	}
	s.outBuf = append(s.outBuf, data)
}

// FlushOutput hands buffered packets to the writer. It never blocks: a full
// OutQueue means a slow client, which is disconnected.
func (s *Session) FlushOutput() {
	for _, data := range s.outBuf {
		select {
		case s.OutQueue <- data:
		default:
			s.log.Warn("輸出佇列已滿，斷開慢速連線")
			s.Close()
			s.outBuf = s.outBuf[:0]
			return
		}
	}
	s.outBuf = s.outBuf[:0]
}

// Pending returns how many packets wait for FlushOutput.
func (s *Session) Pending() int { return len(s.outBuf) }

// OnClose sets a callback run once when the session closes, from whichever
// goroutine closes it. Set it before Start.
func (s *Session) OnClose(fn func()) { s.onClose = fn }

func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.SetState(packet.StateDisconnecting)
		close(s.closeCh)
		s.conn.Close()
		if s.onClose != nil {
			s.onClose()
		}
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

func (s *Session) readLoop() {
	defer s.Close()

	for {
		payload, err := ReadFrame(s.conn, s.maxFrame)
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("讀取錯誤", zap.Error(err))
			}
			return
		}

		if s.pktPerSec > 0 {
			now := time.Now().Unix()
			if now != s.pktResetAt {
				s.pktCount = 0
				s.pktResetAt = now
			}
			s.pktCount++
			if s.pktCount > s.pktPerSec {
				s.log.Warn("封包速率超限，斷開連線", zap.Int("pps", s.pktCount))
				return
			}
		}

		// Block rather than drop: a lost move desyncs the client for good,
		// and only this session's reader waits.
		select {
		case s.InQueue <- payload:
		case <-s.closeCh:
			return
		}
	}
}

func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case data := <-s.OutQueue:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := WriteFrame(s.conn, data); err != nil {
				if !s.closed.Load() {
					s.log.Debug("寫入錯誤", zap.Error(err))
				}
				return
			}
		case <-s.closeCh:
			return
		}
	}
}
