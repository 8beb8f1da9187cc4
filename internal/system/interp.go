package system

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/emberveil/client/internal/component"
	"github.com/emberveil/client/internal/config"
	"github.com/emberveil/client/internal/core/ecs"
	coresys "github.com/emberveil/client/internal/core/system"
)

// InterpolationSystem renders server-mirrored entities slightly in the past:
// each tick it picks a render time behind the newest snapshot and blends the
// two bracketing snapshots (linear position, spherical rotation). Through
// packet loss it extrapolates from the last known velocity for a bounded
// grace period, then holds.
type InterpolationSystem struct {
	tables *component.Tables
	clock  *coresys.Clock
	cfg    config.InterpConfig
}

func NewInterpolationSystem(tables *component.Tables, clock *coresys.Clock, cfg config.InterpConfig) *InterpolationSystem {
	return &InterpolationSystem{tables: tables, clock: clock, cfg: cfg}
}

func (s *InterpolationSystem) Phase() coresys.Phase { return coresys.PhaseInterpolation }

// Feed appends a network snapshot for a mirrored entity. A snapshot that
// jumps farther than the configured snap distance is treated as a desync
// teleport: the history is dropped and the entity snaps to the new position
// instead of sweeping across the interval.
func (s *InterpolationSystem) Feed(id ecs.EntityID, at time.Time, pos mgl64.Vec3, rot mgl64.Quat) {
	buf, ok := s.tables.Interps.Get(id)
	if !ok {
		return
	}
	if newest, has := buf.Newest(); has {
		if pos.Sub(newest.Pos).Len() > s.cfg.SnapDistance {
			buf.Reset()
			if tr, ok := s.tables.Transforms.Get(id); ok {
				tr.Pos = pos
				tr.Rot = rot
			}
		}
	}
	buf.Push(component.Snapshot{At: at, Pos: pos, Rot: rot})
}

func (s *InterpolationSystem) Update(_ time.Duration) {
	renderTime := s.clock.Now().Add(-s.cfg.RenderDelay)

	ecs.Each3(s.tables.Remotes, s.tables.Interps, s.tables.Transforms,
		func(id ecs.EntityID, _ *component.Remote, buf *component.InterpBuffer, tr *component.Transform) {
			// Stale collision impulses must not accumulate drift on
			// mirrored entities: the server owns their motion.
			if mv, ok := s.tables.Movements.Get(id); ok {
				mv.Velocity = mgl64.Vec3{}
			}
			if pos, rot, ok := s.Sample(buf, renderTime); ok {
				tr.Pos = pos
				tr.Rot = rot
			}
		})
}

// Sample evaluates a buffer at render time t. Returns false when no snapshot
// has arrived yet.
func (s *InterpolationSystem) Sample(buf *component.InterpBuffer, t time.Time) (mgl64.Vec3, mgl64.Quat, bool) {
	before, after, ok := buf.Bracket(t)
	if ok {
		span := after.At.Sub(before.At)
		if span <= 0 {
			return after.Pos, after.Rot, true
		}
		frac := float64(t.Sub(before.At)) / float64(span)
		pos := before.Pos.Add(after.Pos.Sub(before.Pos).Mul(frac))
		rot := mgl64.QuatSlerp(before.Rot, after.Rot, frac)
		return pos, rot, true
	}

	// Past the newest snapshot: bounded extrapolation, then hold.
	newest, has := buf.Newest()
	if !has {
		return mgl64.Vec3{}, mgl64.QuatIdent(), false
	}
	over := t.Sub(newest.At)
	if over > s.cfg.ExtrapolationGrace {
		over = s.cfg.ExtrapolationGrace
	}
	pos := newest.Pos.Add(buf.VelocityEstimate().Mul(over.Seconds()))
	return pos, newest.Rot, true
}
