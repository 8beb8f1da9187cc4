package world

import (
	"github.com/emberveil/client/internal/component"
	"github.com/emberveil/client/internal/core/ecs"
)

// EntityMapping is the single owner of the serverID↔EntityID relation. At most
// one live local entity exists per server ID.
//
// Mutation contract: Bind on first sighting; MarkGone when the server reports
// the actor departed. MarkGone zeroes the mirror's health and queues the
// entity for end-of-tick reaping instead of destroying it mid-frame; the
// destroy observer then drops the mapping entry and the actor record.
//
// Both the network layer and per-tick systems read this structure, so it is
// only ever mutated on the simulation goroutine.
type EntityMapping struct {
	toLocal  map[int64]ecs.EntityID
	toServer map[ecs.EntityID]int64

	world   *ecs.World
	actors  *Actors
	healths *ecs.Store[component.Health]
}

func NewEntityMapping(w *ecs.World, actors *Actors, healths *ecs.Store[component.Health]) *EntityMapping {
	m := &EntityMapping{
		toLocal:  make(map[int64]ecs.EntityID, 64),
		toServer: make(map[ecs.EntityID]int64, 64),
		world:    w,
		actors:   actors,
		healths:  healths,
	}
	w.ObserveDestroy(m.onEntityDestroyed)
	return m
}

// Bind records the relation for a freshly mirrored entity. A second bind for a
// live server ID is rejected (returns false); the caller is seeing a
// duplicate join.
func (m *EntityMapping) Bind(serverID int64, local ecs.EntityID) bool {
	if _, taken := m.toLocal[serverID]; taken {
		return false
	}
	m.toLocal[serverID] = local
	m.toServer[local] = serverID
	return true
}

// Resolve maps a server ID to its local entity.
func (m *EntityMapping) Resolve(serverID int64) (ecs.EntityID, bool) {
	id, ok := m.toLocal[serverID]
	return id, ok
}

// ResolveServer maps a local entity back to its server ID, for outbound
// damage attribution.
func (m *EntityMapping) ResolveServer(local ecs.EntityID) (int64, bool) {
	sid, ok := m.toServer[local]
	return sid, ok
}

// MarkGone handles a server-reported departure: the mirrored entity is marked
// dead (health→0) and queued for reaping. The mapping entry survives until the
// reap so racing messages still resolve to a dead and therefore inert target.
func (m *EntityMapping) MarkGone(serverID int64) bool {
	local, ok := m.toLocal[serverID]
	if !ok {
		return false
	}
	if h, ok := m.healths.Get(local); ok {
		h.Current = 0
		h.Dead = true
	}
	m.world.MarkForDestruction(local)
	return true
}

// onEntityDestroyed drops the mapping entry and actor record exactly when the
// mirrored entity is reaped.
func (m *EntityMapping) onEntityDestroyed(id ecs.EntityID) {
	sid, ok := m.toServer[id]
	if !ok {
		return
	}
	delete(m.toServer, id)
	delete(m.toLocal, sid)
	m.actors.Remove(sid)
}

func (m *EntityMapping) Len() int {
	return len(m.toLocal)
}
