package world

import (
	"github.com/go-gl/mathgl/mgl64"
)

// NetworkedActor mirrors a remote player or enemy as the server last reported
// it. It is owned by the network translation layer, not the ECS; the ECS
// entity for the same actor exists only for collision/damage purposes and is
// looked up through the EntityMapping.
//
// Accessed only from the simulation goroutine; no locks.
type NetworkedActor struct {
	ServerID    int64
	DisplayName string
	Weapon      string // weapon/subclass id from the weapon table
	IsEnemy     bool
	EnemyKind   string
	EnemyTier   int

	Pos mgl64.Vec3
	Rot mgl64.Quat

	Health    int
	MaxHealth int
	Shield    int
	MaxShield int

	// Resource currencies, mirrored for display only.
	Mana    int
	Energy  int
	Rage    int
	Essence int

	Experience int64
	Kills      int

	// Cosmetic state.
	Stealthed bool
	AnimClip  string
	Upgrades  []string
}

// Actors is the registry of all known remote actors keyed by server ID.
type Actors struct {
	byID map[int64]*NetworkedActor
}

func NewActors() *Actors {
	return &Actors{
		byID: make(map[int64]*NetworkedActor, 64),
	}
}

// Get returns the actor for a server ID, or nil if unknown.
func (a *Actors) Get(serverID int64) *NetworkedActor {
	return a.byID[serverID]
}

// Add registers an actor on first sighting. Re-adding an existing ID returns
// the already-known record unchanged.
func (a *Actors) Add(actor *NetworkedActor) *NetworkedActor {
	if existing, ok := a.byID[actor.ServerID]; ok {
		return existing
	}
	a.byID[actor.ServerID] = actor
	return actor
}

// Remove forgets an actor. Called after its mirrored entity has been reaped.
func (a *Actors) Remove(serverID int64) {
	delete(a.byID, serverID)
}

func (a *Actors) Len() int {
	return len(a.byID)
}

func (a *Actors) Each(fn func(*NetworkedActor)) {
	for _, actor := range a.byID {
		fn(actor)
	}
}
