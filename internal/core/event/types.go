package event

import (
	"time"

	"github.com/l1jgo/worldcore/internal/entity"
)

// --- Session lifecycle events ---

type PlayerConnected struct {
	Handle entity.Handle
	Name   string
}

type PlayerDisconnected struct {
	Handle entity.Handle
	Name   string
}

// --- Entity lifecycle events (emitted by world.State) ---

type EntitySpawned struct {
	Handle   entity.Handle
	Instance uint64
	Pos      entity.Pos
}

// EntityDespawned is emitted after the entity left every observer's view.
// The handle is already stale when subscribers see it.
type EntityDespawned struct {
	Handle   entity.Handle
	Instance uint64
}

// CombatantDied is emitted by DeathSystem before the body is removed.
type CombatantDied struct {
	Handle    entity.Handle
	RespawnAt time.Time
}

type EggConsumed struct {
	Handle    entity.Handle
	DeadUntil time.Time
}

type EggRespawned struct {
	Handle entity.Handle
}
