package data

import (
	"fmt"
	"math/rand"

	"github.com/l1jgo/worldcore/internal/entity"
)

// IDSource hands out simulation ids; *registry.Registry is one.
type IDSource interface {
	NextID() int32
}

// Spawned pairs a built entity with the template it came from.
type Spawned struct {
	Entity   entity.Entity
	Template *NpcTemplate
}

// Spawner turns spawn entries into entities. It does not place them in the
// world.
type Spawner struct {
	npcs *NpcTable
	ids  IDSource
	rng  *rand.Rand
}

func NewSpawner(npcs *NpcTable, ids IDSource, seed int64) *Spawner {
	return &Spawner{npcs: npcs, ids: ids, rng: rand.New(rand.NewSource(seed))}
}

// Build creates entry.Count entities (at least one), each scattered within
// RandomX/RandomY of the entry's position.
func (s *Spawner) Build(entry SpawnEntry) ([]Spawned, error) {
	tmpl := s.npcs.Get(entry.NpcID)
	if tmpl == nil {
		return nil, fmt.Errorf("spawn: unknown npc %d", entry.NpcID)
	}
	n := max(entry.Count, 1)
	out := make([]Spawned, 0, n)
	for i := 0; i < n; i++ {
		p := entity.SpawnParams{
			ID:       s.ids.NextID(),
			Pos:      entity.Pos{X: entry.X + s.jitter(entry.RandomX), Y: entry.Y + s.jitter(entry.RandomY), Z: entry.Z},
			Angle:    entry.Angle,
			Instance: entry.Instance,
			TypeCode: tmpl.TypeCode,
			DefID:    tmpl.NpcID,
			Name:     tmpl.Name,
		}
		e, err := s.build(tmpl, entry, p)
		if err != nil {
			return nil, err
		}
		out = append(out, Spawned{Entity: e, Template: tmpl})
	}
	return out, nil
}

func (s *Spawner) build(t *NpcTemplate, entry SpawnEntry, p entity.SpawnParams) (entity.Entity, error) {
	switch t.Impl {
	case ImplNPC:
		n := entity.NewNPC(p)
		n.SetBarker(t.Barker)
		return n, nil
	case ImplCombat:
		return entity.NewCombatNPC(p, t.MaxHP(), t.Level), nil
	case ImplMob:
		return entity.NewMob(p, t.MaxHP(), t.Level, t.Respawn()), nil
	case ImplEgg:
		return entity.NewEgg(p, entry.Summoned), nil
	case ImplTransport:
		return entity.NewTransport(p), nil
	}
	return nil, fmt.Errorf("spawn npc %d: unknown impl %q", t.NpcID, t.Impl)
}

func (s *Spawner) jitter(r int32) int32 {
	if r <= 0 {
		return 0
	}
	return s.rng.Int31n(2*r+1) - r
}
