package ecs

// World is the top-level ECS container: the entity pool, the component store
// registry, and a deferred destruction queue.
//
// Systems must never destroy entities while iterating component stores; they
// call MarkForDestruction and the cleanup phase flushes the queue at end of
// tick. Destroy observers fire during the flush, before component data is
// stripped, so cross-cutting registries (timed effects, the server entity
// mapping) can cancel anything still pointing at the doomed entity while its
// components are readable.
type World struct {
	pool         *EntityPool
	registry     *Registry
	destroyQueue []EntityID
	queued       map[EntityID]struct{}
	onDestroy    []func(EntityID)
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		destroyQueue: make([]EntityID, 0, 64),
		queued:       make(map[EntityID]struct{}, 64),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// ObserveDestroy registers a hook invoked for every entity destroyed by
// FlushDestroyQueue, before its components are removed.
func (w *World) ObserveDestroy(fn func(EntityID)) {
	w.onDestroy = append(w.onDestroy, fn)
}

// MarkForDestruction queues an entity for end-of-tick cleanup. Marking the
// same entity twice, or a dead entity, is harmless.
func (w *World) MarkForDestruction(id EntityID) {
	if !w.pool.Alive(id) {
		return
	}
	if _, dup := w.queued[id]; dup {
		return
	}
	w.queued[id] = struct{}{}
	w.destroyQueue = append(w.destroyQueue, id)
}

// FlushDestroyQueue destroys all queued entities: destroy observers fire
// first, then component stores are cleared, then the slot is freed. Called by
// the cleanup system at the end of each tick.
func (w *World) FlushDestroyQueue() {
	// Observers may queue further destructions; process until drained.
	for len(w.destroyQueue) > 0 {
		batch := w.destroyQueue
		w.destroyQueue = make([]EntityID, 0, 16)
		for _, id := range batch {
			delete(w.queued, id)
			if !w.pool.Alive(id) {
				continue
			}
			for _, fn := range w.onDestroy {
				fn(id)
			}
			w.registry.RemoveAll(id)
			w.pool.Destroy(id)
		}
	}
}
