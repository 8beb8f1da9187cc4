package system

import "time"

// Phase fixes the execution order of systems within one frame. The simulation
// depends on this order: collision results feed combat, combat resolves before
// projectiles advance, and effect expiry sweeps after everything that could
// have applied an effect this frame.
type Phase int

const (
	PhaseInput         Phase = iota // drain network inbox + local input
	PhaseMovement                   // integrate local velocity, knockback
	PhaseCollision                  // rebuild grid, broad + narrow phase
	PhaseCombat                     // damage/heal application, shield regen
	PhaseProjectile                 // projectile motion and hits
	PhaseInterpolation              // remote snapshot interpolation
	PhaseEffects                    // timed-effect expiry sweep
	PhaseOutput                     // rate-limited outbound broadcast
	PhaseCleanup                    // flush entity destroy queue
)

// System is the interface every per-frame simulation system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
