package net

import (
	"cmp"
	"slices"

	"github.com/l1jgo/worldcore/internal/entity"
)

// SessionStore indexes live sessions by id. Game loop only.
type SessionStore struct {
	sessions map[entity.ConnID]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[entity.ConnID]*Session)}
}

func (st *SessionStore) Add(s *Session)                { st.sessions[s.ID] = s }
func (st *SessionStore) Remove(id entity.ConnID)       { delete(st.sessions, id) }
func (st *SessionStore) Count() int                    { return len(st.sessions) }
func (st *SessionStore) Get(id entity.ConnID) *Session { return st.sessions[id] }

// ForEach visits sessions in id order, so output is flushed in a stable order.
// fn may Remove the session it is given.
func (st *SessionStore) ForEach(fn func(*Session)) {
	ids := make([]entity.ConnID, 0, len(st.sessions))
	for id := range st.sessions {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, cmp.Compare[entity.ConnID])
	for _, id := range ids {
		if s, ok := st.sessions[id]; ok {
			fn(s)
		}
	}
}
