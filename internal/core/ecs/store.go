package ecs

// Removable is implemented by every component store so the Registry can strip
// an entity's data from all stores when it is destroyed.
type Removable interface {
	Remove(id EntityID)
}

// Store is a generic typed component table. No reflection, no interface{} on
// the access path; pure generics over a map keyed by entity.
//
// Stores support add/remove observers so dependent systems (collision
// broad-phase indexing, interpolation buffers) can index and deindex lazily
// instead of scanning every entity per tick.
type Store[T any] struct {
	data     map[EntityID]*T
	onAdd    []func(EntityID, *T)
	onRemove []func(EntityID)
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{
		data: make(map[EntityID]*T, 128),
	}
}

// OnAdd registers a hook fired whenever a component is attached to an entity
// that did not previously have one.
func (s *Store[T]) OnAdd(fn func(EntityID, *T)) {
	s.onAdd = append(s.onAdd, fn)
}

// OnRemove registers a hook fired when a component is detached, including
// detachment through entity destruction.
func (s *Store[T]) OnRemove(fn func(EntityID)) {
	s.onRemove = append(s.onRemove, fn)
}

func (s *Store[T]) Set(id EntityID, c *T) {
	_, existed := s.data[id]
	s.data[id] = c
	if !existed {
		for _, fn := range s.onAdd {
			fn(id, c)
		}
	}
}

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *Store[T]) Remove(id EntityID) {
	if _, ok := s.data[id]; !ok {
		return
	}
	delete(s.data, id)
	for _, fn := range s.onRemove {
		fn(id)
	}
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *Store[T]) Len() int {
	return len(s.data)
}

func (s *Store[T]) Each(fn func(EntityID, *T)) {
	for id, c := range s.data {
		fn(id, c)
	}
}
