package component

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Layer classifies what a collider is; Mask declares what it collides with.
// A pair is only tested when the filter passes in both directions.
type Layer uint8

const (
	LayerEnvironment Layer = 1 << iota
	LayerPlayer
	LayerEnemy
)

// StatusFlag bits on Movement, set and cleared by the timed-effect registry.
type StatusFlag uint8

const (
	StatusFrozen StatusFlag = 1 << iota
	StatusSlowed
	StatusCorrupted
)

// Transform is world-space position and orientation.
type Transform struct {
	Pos mgl64.Vec3
	Rot mgl64.Quat
}

// Knockback is a decaying impulse applied by the movement system on top of
// regular velocity. Remaining counts down to zero.
type Knockback struct {
	Dir       mgl64.Vec3
	Speed     float64
	Remaining time.Duration
}

// Movement carries velocity and the status flags that gate it.
type Movement struct {
	Velocity  mgl64.Vec3
	MaxSpeed  float64
	Flags     StatusFlag
	Knockback Knockback
}

func (m *Movement) HasFlag(f StatusFlag) bool { return m.Flags&f != 0 }
func (m *Movement) SetFlag(f StatusFlag)      { m.Flags |= f }
func (m *Movement) ClearFlag(f StatusFlag)    { m.Flags &^= f }

// Health tracks hit points and the single alive→dead transition. Dead is set
// exactly once by the combat pipeline; entities are reaped later, so systems
// must treat Dead entities as inert rather than assume they are gone.
type Health struct {
	Current         int
	Max             int
	Dead            bool
	InvulnRemaining time.Duration
}

func (h *Health) Invulnerable() bool { return h.InvulnRemaining > 0 }

// Shield absorbs damage before health. SinceHit counts time since the shield
// last took damage; regeneration starts once it exceeds RegenDelay.
type Shield struct {
	Current    int
	Max        int
	RegenRate  float64 // points per second
	RegenDelay time.Duration
	SinceHit   time.Duration
	regenAcc   float64
}

// Regen advances shield regeneration by dt and returns whether the value
// changed. Called by the combat system each tick.
func (s *Shield) Regen(dt time.Duration) bool {
	s.SinceHit += dt
	if s.SinceHit < s.RegenDelay || s.Current >= s.Max || s.RegenRate <= 0 {
		return false
	}
	s.regenAcc += s.RegenRate * dt.Seconds()
	gained := int(s.regenAcc)
	if gained == 0 {
		return false
	}
	s.regenAcc -= float64(gained)
	s.Current += gained
	if s.Current > s.Max {
		s.Current = s.Max
	}
	return true
}

// Collider is a sphere collider with layer/mask filtering. Trigger colliders
// report overlap without physical separation. Weight controls how overlap
// resolution is split between a solid pair; weight <= 0 means immovable.
type Collider struct {
	Radius  float64
	Offset  mgl64.Vec3
	Layer   Layer
	Mask    Layer
	Trigger bool
	Weight  float64
}

// EnemyTag marks server-mirrored hostile entities.
type EnemyTag struct {
	Kind string
	Tier int
}

// Remote marks an entity as server-mirrored. Remote entities are driven by
// interpolation, never displaced by local collision resolution.
type Remote struct {
	ServerID int64
}
