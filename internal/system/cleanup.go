package system

import (
	"time"

	"github.com/emberveil/client/internal/core/ecs"
	coresys "github.com/emberveil/client/internal/core/system"
)

// CleanupSystem flushes deferred entity destruction at the end of the frame,
// after every other system has finished reading component state.
type CleanupSystem struct {
	world *ecs.World
}

func NewCleanupSystem(w *ecs.World) *CleanupSystem {
	return &CleanupSystem{world: w}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(time.Duration) {
	s.world.FlushDestroyQueue()
}
