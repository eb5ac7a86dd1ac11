package system

import "time"

// Phase orders systems within one tick. Lower phases run first.
type Phase int

const (
	PhaseInput      Phase = iota // 0: sessions, inbound packets
	PhasePreUpdate               // 1: last tick's events
	PhaseUpdate                  // 2: AI
	PhasePostUpdate              // 3: death, respawn, egg timers
	PhaseOutput                  // 4: flush session buffers
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhaseOutput:
		return "output"
	default:
		return "phase?"
	}
}

// System is one step of the game loop.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
