package component

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/emberveil/client/internal/core/ecs"
)

// Projectile is the motion and hit state of a short-lived projectile entity.
// Position lives in the entity's Transform; the projectile component owns
// everything else.
type Projectile struct {
	Owner      ecs.EntityID // attributed damage source
	Velocity   mgl64.Vec3
	Speed      float64
	Radius     float64
	Mask       Layer // layers this projectile collides with
	Damage     int
	DamageType string
	Piercing   bool
	LocalShot  bool // spawned by the local player (crit-eligible damage)

	// Optional effect applied to targets on hit.
	EffectKind     string
	EffectDuration time.Duration

	Lifetime    time.Duration // remaining; <= 0 expires
	MaxDistance float64       // 0 = unlimited
	Travelled   float64

	// Homing arms only once the designated target carries the trigger
	// status; until then the projectile flies straight.
	HomingTarget ecs.EntityID
	HomingArmed  bool
	TurnRate     float64 // max radians per second once armed

	hits map[ecs.EntityID]struct{}
}

// MarkHit records a target so piercing projectiles never damage the same
// entity twice. Returns false if the target was already hit.
func (p *Projectile) MarkHit(target ecs.EntityID) bool {
	if p.hits == nil {
		p.hits = make(map[ecs.EntityID]struct{}, 4)
	}
	if _, seen := p.hits[target]; seen {
		return false
	}
	p.hits[target] = struct{}{}
	return true
}

func (p *Projectile) AlreadyHit(target ecs.EntityID) bool {
	_, seen := p.hits[target]
	return seen
}
