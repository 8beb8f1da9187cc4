package system

import (
	"time"

	"github.com/emberveil/client/internal/component"
	"github.com/emberveil/client/internal/core/ecs"
	coresys "github.com/emberveil/client/internal/core/system"
	"github.com/emberveil/client/internal/data"
)

// MovementSystem integrates velocity for locally simulated entities. Status
// flags gate it: frozen entities do not move at all, slowed entities move at
// the effect table's multiplier. Knockback impulses ride on top of regular
// velocity and decay over their duration.
//
// Remote entities are skipped; interpolation owns their position.
type MovementSystem struct {
	tables *component.Tables
	defs   *data.EffectTable
}

func NewMovementSystem(tables *component.Tables, defs *data.EffectTable) *MovementSystem {
	return &MovementSystem{tables: tables, defs: defs}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseMovement }

func (s *MovementSystem) Update(dt time.Duration) {
	ecs.Each2(s.tables.Movements, s.tables.Transforms,
		func(id ecs.EntityID, mv *component.Movement, tr *component.Transform) {
			if s.tables.Remotes.Has(id) {
				return
			}

			vel := mv.Velocity
			if speed := vel.Len(); speed > mv.MaxSpeed && mv.MaxSpeed > 0 {
				vel = vel.Mul(mv.MaxSpeed / speed)
			}
			vel = vel.Mul(s.speedMultiplier(mv))

			if mv.Knockback.Remaining > 0 {
				vel = vel.Add(mv.Knockback.Dir.Mul(mv.Knockback.Speed))
				mv.Knockback.Remaining -= dt
				if mv.Knockback.Remaining <= 0 {
					mv.Knockback = component.Knockback{}
				}
			}

			tr.Pos = tr.Pos.Add(vel.Mul(dt.Seconds()))
		})
}

func (s *MovementSystem) speedMultiplier(mv *component.Movement) float64 {
	if mv.HasFlag(component.StatusFrozen) {
		return 0
	}
	if mv.HasFlag(component.StatusSlowed) {
		if def := s.defs.Get("slowed"); def != nil {
			return def.SpeedMultiplier
		}
		return 0.5
	}
	return 1
}
