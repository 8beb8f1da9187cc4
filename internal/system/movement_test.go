package system

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"

	"github.com/emberveil/client/internal/component"
)

func TestMovementClampsToMaxSpeed(t *testing.T) {
	r := newRig()
	id := r.spawnPlayer(mgl64.Vec3{})
	mv, _ := r.tables.Movements.Get(id)
	mv.Velocity = mgl64.Vec3{60, 0, 0} // 10x the max of 6

	r.movement.Update(time.Second)

	tr, _ := r.tables.Transforms.Get(id)
	assert.InDelta(t, 6.0, tr.Pos.X(), 1e-9)
}

func TestFrozenStopsMovement(t *testing.T) {
	r := newRig()
	id := r.spawnPlayer(mgl64.Vec3{})
	mv, _ := r.tables.Movements.Get(id)
	mv.Velocity = mgl64.Vec3{5, 0, 0}
	mv.SetFlag(component.StatusFrozen)

	r.movement.Update(time.Second)

	tr, _ := r.tables.Transforms.Get(id)
	assert.Equal(t, 0.0, tr.Pos.X())
}

func TestSlowedUsesTableMultiplier(t *testing.T) {
	r := newRig()
	id := r.spawnPlayer(mgl64.Vec3{})
	mv, _ := r.tables.Movements.Get(id)
	mv.Velocity = mgl64.Vec3{4, 0, 0}
	mv.SetFlag(component.StatusSlowed)

	r.movement.Update(time.Second)

	tr, _ := r.tables.Transforms.Get(id)
	assert.InDelta(t, 2.0, tr.Pos.X(), 1e-9)
}

func TestKnockbackRidesOnTopAndDecays(t *testing.T) {
	r := newRig()
	id := r.spawnPlayer(mgl64.Vec3{})
	mv, _ := r.tables.Movements.Get(id)
	mv.Knockback = component.Knockback{
		Dir:       mgl64.Vec3{0, 0, 1},
		Speed:     8,
		Remaining: 250 * time.Millisecond,
	}

	r.movement.Update(250 * time.Millisecond)
	tr, _ := r.tables.Transforms.Get(id)
	assert.InDelta(t, 2.0, tr.Pos.Z(), 1e-9)
	assert.Equal(t, component.Knockback{}, mv.Knockback, "impulse cleared")

	r.movement.Update(250 * time.Millisecond)
	assert.InDelta(t, 2.0, tr.Pos.Z(), 1e-9, "no residual push")
}

func TestRemoteEntitiesNotLocallyIntegrated(t *testing.T) {
	r := newRig()
	id := r.spawnRemote(3, mgl64.Vec3{})
	mv, _ := r.tables.Movements.Get(id)
	mv.Velocity = mgl64.Vec3{5, 0, 0}

	r.movement.Update(time.Second)

	tr, _ := r.tables.Transforms.Get(id)
	assert.Equal(t, 0.0, tr.Pos.X())
}
