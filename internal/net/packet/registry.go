package packet

import (
	"fmt"

	"go.uber.org/zap"
)

// SessionState is the session's protocol phase.
type SessionState int

const (
	StateConnected     SessionState = iota // init packet sent, no player yet
	StateInWorld                           // bound to a player entity
	StateDisconnecting                     // closing; only cleanup runs
)

func (s SessionState) String() string {
	switch s {
	case StateConnected:
		return "Connected"
	case StateInWorld:
		return "InWorld"
	case StateDisconnecting:
		return "Disconnecting"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// HandlerFunc handles one client packet for a session of type S.
type HandlerFunc[S any] func(sess S, r *Reader) error

type handlerEntry[S any] struct {
	fn            HandlerFunc[S]
	allowedStates map[SessionState]bool
}

// Registry maps opcodes to handlers with state-based access control. S is
// the session type; keeping it a parameter lets this package stay below net.
type Registry[S any] struct {
	handlers map[byte]*handlerEntry[S]
	log      *zap.Logger
}

func NewRegistry[S any](log *zap.Logger) *Registry[S] {
	return &Registry[S]{
		handlers: make(map[byte]*handlerEntry[S]),
		log:      log,
	}
}

// Register maps an opcode to a handler, restricted to the given session states.
func (reg *Registry[S]) Register(opcode byte, states []SessionState, fn HandlerFunc[S]) {
	allowed := make(map[SessionState]bool, len(states))
	for _, s := range states {
		allowed[s] = true
	}
	reg.handlers[opcode] = &handlerEntry[S]{
		fn:            fn,
		allowedStates: allowed,
	}
}

// Dispatch finds the handler for data[0], checks the session state and runs
// it. Unknown opcodes are ignored.
func (reg *Registry[S]) Dispatch(sess S, state SessionState, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty packet")
	}
	opcode := data[0]

	entry, ok := reg.handlers[opcode]
	if !ok {
		reg.log.Debug("未知操作碼", zap.Uint8("opcode", opcode), zap.Stringer("state", state))
		return nil
	}

	if !entry.allowedStates[state] {
		reg.log.Warn("操作碼在此狀態下不允許",
			zap.Uint8("opcode", opcode),
			zap.Stringer("state", state),
		)
		return fmt.Errorf("opcode %d not allowed in state %s", opcode, state)
	}

	return reg.safeCall(entry.fn, sess, NewReader(data), opcode)
}

// safeCall runs a handler with panic recovery so one bad packet cannot take
// down the game loop.
func (reg *Registry[S]) safeCall(fn HandlerFunc[S], sess S, r *Reader, opcode byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("處理器 panic 已恢復",
				zap.Uint8("opcode", opcode),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("handler panic for opcode %d: %v", opcode, rec)
		}
	}()
	if err := fn(sess, r); err != nil {
		return fmt.Errorf("opcode %d: %w", opcode, err)
	}
	return nil
}
