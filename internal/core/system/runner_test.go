package system

import (
	"testing"
	"time"
)

type probe struct {
	name  string
	phase Phase
	log   *[]string
}

func (p probe) Phase() Phase           { return p.phase }
func (p probe) Update(_ time.Duration) { *p.log = append(*p.log, p.name) }

func TestRunnerOrdersByPhase(t *testing.T) {
	var got []string
	r := NewRunner()
	r.Register(probe{"output", PhaseOutput, &got})
	r.Register(probe{"ai", PhaseUpdate, &got})
	r.Register(probe{"input", PhaseInput, &got})
	r.Register(probe{"ai2", PhaseUpdate, &got})

	r.Tick(time.Millisecond)
	want := []string{"input", "ai", "ai2", "output"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if r.Ticks() != 1 {
		t.Fatalf("ticks = %d, want 1", r.Ticks())
	}
}

func TestTickPhaseRunsOnlyThatPhase(t *testing.T) {
	var got []string
	r := NewRunner()
	r.Register(probe{"input", PhaseInput, &got})
	r.Register(probe{"ai", PhaseUpdate, &got})

	r.TickPhase(PhaseInput, 0)
	if len(got) != 1 || got[0] != "input" {
		t.Fatalf("got %v, want [input]", got)
	}
	if r.Ticks() != 0 {
		t.Fatalf("TickPhase counted as a full tick")
	}
}
