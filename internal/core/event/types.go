package event

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/emberveil/client/internal/core/ecs"
)

// EntityDied fires exactly once per entity, on the alive→dead health edge.
type EntityDied struct {
	Entity   ecs.EntityID
	Source   ecs.EntityID
	Position mgl64.Vec3
}

// DamageDealt fires when a locally rolled hit lands, after crit resolution.
// Feeds outbound hit reporting; server-verdict damage never emits it.
type DamageDealt struct {
	Source     ecs.EntityID
	Target     ecs.EntityID
	Amount     int
	Critical   bool
	DamageType string
}

// EffectExpired fires when a timed effect runs out or is cancelled.
type EffectExpired struct {
	Target    ecs.EntityID
	Kind      string
	Cancelled bool
}

// ActorDeparted fires when the server reports a remote actor gone and its
// mirrored entity has been marked dead for reaping.
type ActorDeparted struct {
	ServerID int64
	Entity   ecs.EntityID
}

// ProjectileExpired fires when a projectile dies by lifetime or distance,
// without hitting anything.
type ProjectileExpired struct {
	Entity ecs.EntityID
}
