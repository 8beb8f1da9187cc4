package system

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/emberveil/client/internal/component"
	"github.com/emberveil/client/internal/core/ecs"
	"github.com/emberveil/client/internal/core/event"
	coresys "github.com/emberveil/client/internal/core/system"
)

// ProjectileSpawn describes a projectile to create.
type ProjectileSpawn struct {
	Owner      ecs.EntityID
	Origin     mgl64.Vec3
	Direction  mgl64.Vec3
	Speed      float64
	Radius     float64
	Mask       component.Layer
	Damage     int
	DamageType string
	Piercing   bool
	LocalShot  bool

	Lifetime    time.Duration
	MaxDistance float64

	HomingTarget ecs.EntityID
	TurnRate     float64

	EffectKind     string
	EffectDuration time.Duration
}

// ProjectileSystem advances projectile motion, expires them by lifetime or
// travel distance, and resolves hits against the collision grid. Runs after
// the combat phase so hits land through the same pipeline next to everything
// else this frame produced.
type ProjectileSystem struct {
	world     *ecs.World
	tables    *component.Tables
	collision *CollisionSystem
	combat    *CombatSystem
	effects   *EffectSystem
	bus       *event.Bus

	candidates []ecs.EntityID // reused hit-test scratch
}

func NewProjectileSystem(w *ecs.World, tables *component.Tables, collision *CollisionSystem,
	combat *CombatSystem, effects *EffectSystem, bus *event.Bus) *ProjectileSystem {
	return &ProjectileSystem{
		world:     w,
		tables:    tables,
		collision: collision,
		combat:    combat,
		effects:   effects,
		bus:       bus,
	}
}

func (s *ProjectileSystem) Phase() coresys.Phase { return coresys.PhaseProjectile }

// Spawn creates a projectile entity. Direction is normalized; zero direction
// is rejected.
func (s *ProjectileSystem) Spawn(spawn ProjectileSpawn) (ecs.EntityID, bool) {
	if spawn.Direction.Len() < 1e-9 {
		return 0, false
	}
	dir := spawn.Direction.Normalize()

	id := s.world.CreateEntity()
	s.tables.Transforms.Set(id, &component.Transform{
		Pos: spawn.Origin,
		Rot: mgl64.QuatIdent(),
	})
	s.tables.Projectiles.Set(id, &component.Projectile{
		Owner:          spawn.Owner,
		Velocity:       dir.Mul(spawn.Speed),
		Speed:          spawn.Speed,
		Radius:         spawn.Radius,
		Mask:           spawn.Mask,
		Damage:         spawn.Damage,
		DamageType:     spawn.DamageType,
		Piercing:       spawn.Piercing,
		LocalShot:      spawn.LocalShot,
		Lifetime:       spawn.Lifetime,
		MaxDistance:    spawn.MaxDistance,
		HomingTarget:   spawn.HomingTarget,
		TurnRate:       spawn.TurnRate,
		EffectKind:     spawn.EffectKind,
		EffectDuration: spawn.EffectDuration,
	})
	return id, true
}

func (s *ProjectileSystem) Update(dt time.Duration) {
	ecs.Each2(s.tables.Projectiles, s.tables.Transforms,
		func(id ecs.EntityID, p *component.Projectile, tr *component.Transform) {
			s.step(id, p, tr, dt)
		})
}

func (s *ProjectileSystem) step(id ecs.EntityID, p *component.Projectile, tr *component.Transform, dt time.Duration) {
	s.steerHoming(p, tr, dt)

	stepVec := p.Velocity.Mul(dt.Seconds())
	tr.Pos = tr.Pos.Add(stepVec)
	p.Travelled += stepVec.Len()

	if p.Lifetime > 0 {
		p.Lifetime -= dt
		if p.Lifetime <= 0 {
			s.expire(id)
			return
		}
	}
	if p.MaxDistance > 0 && p.Travelled >= p.MaxDistance {
		s.expire(id)
		return
	}

	s.resolveHits(id, p, tr)
}

// steerHoming turns the projectile toward its designated target, but only
// once the target carries the corrupted mark. A destroyed target clears the
// reference; the generation check makes a stale handle harmless.
func (s *ProjectileSystem) steerHoming(p *component.Projectile, tr *component.Transform, dt time.Duration) {
	if p.HomingTarget.IsZero() {
		return
	}
	if !s.world.Alive(p.HomingTarget) {
		p.HomingTarget = 0
		p.HomingArmed = false
		return
	}
	if !p.HomingArmed {
		mv, ok := s.tables.Movements.Get(p.HomingTarget)
		if !ok || !mv.HasFlag(component.StatusCorrupted) {
			return
		}
		p.HomingArmed = true
	}

	targetTr, ok := s.tables.Transforms.Get(p.HomingTarget)
	if !ok {
		return
	}
	toTarget := targetTr.Pos.Sub(tr.Pos)
	if toTarget.Len() < 1e-9 {
		return
	}
	current := p.Velocity.Normalize()
	desired := toTarget.Normalize()

	// Clamp the turn to TurnRate radians per second.
	cos := mgl64.Clamp(current.Dot(desired), -1, 1)
	angle := math.Acos(cos)
	maxTurn := p.TurnRate * dt.Seconds()
	if angle > maxTurn && angle > 1e-9 {
		t := maxTurn / angle
		blended := current.Mul(1 - t).Add(desired.Mul(t))
		if blended.Len() < 1e-9 {
			blended = desired
		}
		desired = blended.Normalize()
	}
	p.Velocity = desired.Mul(p.Speed)
}

func (s *ProjectileSystem) resolveHits(id ecs.EntityID, p *component.Projectile, tr *component.Transform) {
	s.candidates = s.candidates[:0]
	s.collision.QuerySphere(tr.Pos, p.Radius, p.Mask, func(hit ecs.EntityID) {
		s.candidates = append(s.candidates, hit)
	})

	for _, target := range s.candidates {
		if target == id || target == p.Owner {
			continue
		}
		if h, ok := s.tables.Healths.Get(target); !ok || h.Dead {
			continue
		}
		if !p.MarkHit(target) {
			continue // piercing projectiles never re-hit a target
		}
		s.combat.ApplyDamage(DamageEvent{
			Source:     p.Owner,
			Target:     target,
			Amount:     p.Damage,
			DamageType: p.DamageType,
			LocalRoll:  p.LocalShot,
		})
		if p.EffectKind != "" {
			s.effects.Apply(target, p.EffectKind, p.EffectDuration, EffectPayload{Position: tr.Pos})
		}
		if !p.Piercing {
			// First hit consumes the projectile; nothing behind it can
			// be damaged even if already overlapping.
			s.world.MarkForDestruction(id)
			return
		}
	}
}

func (s *ProjectileSystem) expire(id ecs.EntityID) {
	s.world.MarkForDestruction(id)
	event.Emit(s.bus, event.ProjectileExpired{Entity: id})
}
