package system

import (
	"cmp"
	"slices"
	"time"
)

// Runner executes systems in phase order each tick. Systems sharing a phase
// run in registration order.
type Runner struct {
	systems []System
	sorted  bool
	ticks   uint64
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 8),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		s.Update(dt)
	}
	r.ticks++
}

// TickPhase runs only the systems of one phase. The main loop uses it to
// poll input between full ticks.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}

// Ticks is the number of completed full ticks.
func (r *Runner) Ticks() uint64 { return r.ticks }

func (r *Runner) ensureSorted() {
	if !r.sorted {
		slices.SortStableFunc(r.systems, func(a, b System) int {
			return cmp.Compare(a.Phase(), b.Phase())
		})
		r.sorted = true
	}
}
