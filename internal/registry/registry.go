package registry

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/l1jgo/worldcore/internal/entity"
	"go.uber.org/zap"
)

// FirstNpcID is where simulation ids start. Character DB ids stay below it,
// so a numeric object id never names both a player and an NPC.
const FirstNpcID = 200_000_000

var (
	ErrDuplicate = errors.New("already registered")
	ErrNoID      = errors.New("entity has no simulation id")
)

// Registry is the connection registry and the simulation registry in one.
// Mutation happens on the game loop; lookups may come from any goroutine,
// so both sides sit behind an RWMutex and never block on anything else.
type Registry struct {
	mu       sync.RWMutex
	players  *Store[entity.ConnID, *entity.Player]
	entities *Store[int32, entity.Entity]

	nextID atomic.Int32
	log    *zap.Logger
}

func New(log *zap.Logger) *Registry {
	r := &Registry{
		players:  NewStore[entity.ConnID, *entity.Player](256),
		entities: NewStore[int32, entity.Entity](1024),
		log:      log,
	}
	r.nextID.Store(FirstNpcID)
	return r
}

// NextID returns a fresh simulation id.
func (r *Registry) NextID() int32 {
	return r.nextID.Add(1)
}

// Connect binds a player to its connection.
func (r *Registry) Connect(p *entity.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.players.Has(p.Conn()) {
		return fmt.Errorf("connect %s: %w", p.Handle(), ErrDuplicate)
	}
	r.players.Set(p.Conn(), p)
	return nil
}

// Disconnect drops the player bound to conn. Handles naming it go stale.
func (r *Registry) Disconnect(conn entity.ConnID) (*entity.Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.players.Remove(conn)
}

// Add registers a non-player entity under its simulation id.
func (r *Registry) Add(e entity.Entity) error {
	id, ok := e.Handle().ID()
	if !ok {
		return fmt.Errorf("add %s: %w", e.Handle(), ErrNoID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entities.Has(id) {
		return fmt.Errorf("add %s: %w", e.Handle(), ErrDuplicate)
	}
	r.entities.Set(id, e)
	return nil
}

// Remove drops a non-player entity.
func (r *Registry) Remove(id int32) (entity.Entity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entities.Remove(id)
}

// Player implements entity.Resolver.
func (r *Registry) Player(conn entity.ConnID) (entity.Entity, bool) {
	p, ok := r.PlayerByConn(conn)
	if !ok {
		return nil, false
	}
	return p, true
}

// PlayerByConn is Player with the concrete type.
func (r *Registry) PlayerByConn(conn entity.ConnID) (*entity.Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.players.Get(conn)
}

// Lookup implements entity.Resolver. An id that now belongs to another kind
// is a miss.
func (r *Registry) Lookup(kind entity.Kind, id int32) (entity.Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entities.Get(id)
	if !ok || e.Kind() != kind {
		return nil, false
	}
	return e, true
}

// HandleFor builds the handle of whatever kind is registered under id.
func (r *Registry) HandleFor(id int32) (entity.Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entities.Get(id)
	if !ok {
		return entity.Handle{}, false
	}
	return entity.IDHandle(e.Kind(), id), true
}

func (r *Registry) PlayerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.players.Len()
}

func (r *Registry) EntityCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entities.Len()
}

// EachPlayer calls fn on a snapshot; fn may mutate the registry.
func (r *Registry) EachPlayer(fn func(*entity.Player)) {
	r.mu.RLock()
	ps := r.players.Values()
	r.mu.RUnlock()
	for _, p := range ps {
		fn(p)
	}
}

// EachEntity calls fn on a snapshot of the non-player entities.
func (r *Registry) EachEntity(fn func(entity.Entity)) {
	r.mu.RLock()
	es := r.entities.Values()
	r.mu.RUnlock()
	for _, e := range es {
		fn(e)
	}
}

// Clear forgets everything. Used on shutdown.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log.Info("registry cleared",
		zap.Int("players", r.players.Len()),
		zap.Int("entities", r.entities.Len()),
	)
	r.players.Clear()
	r.entities.Clear()
}

var _ entity.Resolver = (*Registry)(nil)
