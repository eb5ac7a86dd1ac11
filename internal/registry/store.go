package registry

// Store is a typed map keyed by connection or simulation id. No locking of
// its own; Registry guards every store it owns.
type Store[K comparable, V any] struct {
	data map[K]V
}

func NewStore[K comparable, V any](capacity int) *Store[K, V] {
	return &Store[K, V]{
		data: make(map[K]V, capacity),
	}
}

func (s *Store[K, V]) Set(k K, v V) {
	s.data[k] = v
}

func (s *Store[K, V]) Get(k K) (V, bool) {
	v, ok := s.data[k]
	return v, ok
}

func (s *Store[K, V]) Remove(k K) (V, bool) {
	v, ok := s.data[k]
	if ok {
		delete(s.data, k)
	}
	return v, ok
}

func (s *Store[K, V]) Has(k K) bool {
	_, ok := s.data[k]
	return ok
}

func (s *Store[K, V]) Len() int {
	return len(s.data)
}

// Values copies every value out, so callers can iterate without the lock.
func (s *Store[K, V]) Values() []V {
	out := make([]V, 0, len(s.data))
	for _, v := range s.data {
		out = append(out, v)
	}
	return out
}

func (s *Store[K, V]) Clear() {
	clear(s.data)
}
