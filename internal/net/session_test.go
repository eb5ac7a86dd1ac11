package net

import (
	"bytes"
	"encoding/binary"
	gonet "net"
	"testing"
	"time"

	"github.com/l1jgo/worldcore/internal/entity"
	"github.com/l1jgo/worldcore/internal/net/packet"
	"go.uber.org/zap/zaptest"
)

func testConfig() SessionConfig {
	return SessionConfig{InQueue: 4, OutQueue: 4}
}

func readInit(t *testing.T, c gonet.Conn, want uint32) {
	t.Helper()
	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	pkt, err := ReadFrame(c, 0)
	if err != nil {
		t.Fatal(err)
	}
	if pkt[0] != packet.S_OPCODE_INITPACKET {
		t.Fatalf("opcode = %d, want init", pkt[0])
	}
	if got := binary.LittleEndian.Uint32(pkt[1:5]); got != want {
		t.Fatalf("init id = %d, want %d", got, want)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	client, server := gonet.Pipe()
	defer client.Close()
	s := NewSession(server, 7, testConfig(), zaptest.NewLogger(t))
	defer s.Close()

	go s.Start()
	readInit(t, client, 7)

	out := []byte{packet.S_OPCODE_MOVE_OBJECT, 1, 2, 3}
	s.Send(out)
	if s.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", s.Pending())
	}
	s.FlushOutput()
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	got, err := ReadFrame(client, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, out) {
		t.Fatalf("got % x, want % x", got, out)
	}

	in := []byte{packet.C_OPCODE_QUIT, 0, 0, 0}
	if err := WriteFrame(client, in); err != nil {
		t.Fatal(err)
	}
	select {
	case data := <-s.InQueue:
		if !bytes.Equal(data, in) {
			t.Fatalf("inbound % x, want % x", data, in)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("inbound packet never queued")
	}
}

func TestFlushBackpressureCloses(t *testing.T) {
	client, server := gonet.Pipe()
	defer client.Close()
	s := NewSession(server, 1, SessionConfig{InQueue: 1, OutQueue: 1}, zaptest.NewLogger(t))

	s.Send([]byte{1})
	s.Send([]byte{2})
	s.FlushOutput()
	if !s.IsClosed() {
		t.Fatalf("session survived a full out queue")
	}
	if s.State() != packet.StateDisconnecting {
		t.Fatalf("state = %s", s.State())
	}
	s.Send([]byte{3})
	if s.Pending() != 0 {
		t.Fatalf("closed session buffered a packet")
	}
}

func TestServerAccepts(t *testing.T) {
	srv, err := NewServer("127.0.0.1:0", testConfig(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Shutdown()
	go srv.AcceptLoop()

	c, err := gonet.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	readInit(t, c, 1)

	select {
	case sess := <-srv.NewSessions():
		if sess.ID != 1 {
			t.Fatalf("session id = %d, want 1", sess.ID)
		}
		sess.Close()
	case <-time.After(2 * time.Second):
		t.Fatalf("no session delivered")
	}
}

func TestOnCloseRunsOnce(t *testing.T) {
	client, server := gonet.Pipe()
	defer client.Close()
	s := NewSession(server, 4, testConfig(), zaptest.NewLogger(t))
	calls := 0
	s.OnClose(func() { calls++ })
	s.Close()
	s.Close()
	if calls != 1 {
		t.Fatalf("onClose calls = %d, want 1", calls)
	}
}

func TestSessionStoreOrder(t *testing.T) {
	st := NewSessionStore()
	for _, id := range []uint64{3, 1, 2} {
		_, server := gonet.Pipe()
		st.Add(NewSession(server, entity.ConnID(id), testConfig(), zaptest.NewLogger(t)))
	}
	var got []uint64
	st.ForEach(func(s *Session) {
		got = append(got, uint64(s.ID))
		if s.ID == 2 {
			st.Remove(s.ID)
		}
	})
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("order = %v, want [1 2 3]", got)
	}
	if st.Count() != 2 || st.Get(2) != nil {
		t.Fatalf("Remove inside ForEach did not stick")
	}
}
