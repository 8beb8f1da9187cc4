package system

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"

	"github.com/emberveil/client/internal/component"
	"github.com/emberveil/client/internal/core/ecs"
)

func (r *rig) spawnSolid(pos mgl64.Vec3, radius, weight float64, layer, mask component.Layer) ecs.EntityID {
	id := r.world.CreateEntity()
	r.tables.Transforms.Set(id, &component.Transform{Pos: pos, Rot: mgl64.QuatIdent()})
	r.tables.Colliders.Set(id, &component.Collider{
		Radius: radius,
		Layer:  layer,
		Mask:   mask,
		Weight: weight,
	})
	return id
}

func TestSeparationSplitsByInverseWeight(t *testing.T) {
	r := newRig()
	all := component.LayerPlayer | component.LayerEnemy | component.LayerEnvironment
	a := r.spawnSolid(mgl64.Vec3{0, 0, 0}, 1, 1, component.LayerPlayer, all)
	b := r.spawnSolid(mgl64.Vec3{1, 0, 0}, 1, 1, component.LayerPlayer, all)

	r.collision.Update(16 * time.Millisecond)

	// Overlap depth 1, equal weights: half a unit each, in opposite
	// directions along the centre axis.
	trA, _ := r.tables.Transforms.Get(a)
	trB, _ := r.tables.Transforms.Get(b)
	assert.InDelta(t, -0.5, trA.Pos.X(), 1e-9)
	assert.InDelta(t, 1.5, trB.Pos.X(), 1e-9)
}

func TestImmovableColliderNeverMoves(t *testing.T) {
	r := newRig()
	all := component.LayerPlayer | component.LayerEnvironment
	wall := r.spawnSolid(mgl64.Vec3{1, 0, 0}, 1, 0, component.LayerEnvironment, all)
	body := r.spawnSolid(mgl64.Vec3{0, 0, 0}, 1, 1, component.LayerPlayer, all)

	r.collision.Update(16 * time.Millisecond)

	trWall, _ := r.tables.Transforms.Get(wall)
	trBody, _ := r.tables.Transforms.Get(body)
	assert.Equal(t, 1.0, trWall.Pos.X())
	assert.InDelta(t, -1.0, trBody.Pos.X(), 1e-9, "movable side takes the full depth")
}

func TestRemoteEntityImmovableLocally(t *testing.T) {
	r := newRig()
	all := component.LayerPlayer | component.LayerEnemy
	local := r.spawnSolid(mgl64.Vec3{0, 0, 0}, 1, 1, component.LayerPlayer, all)
	remote := r.spawnSolid(mgl64.Vec3{1, 0, 0}, 1, 1, component.LayerEnemy, all)
	r.tables.Remotes.Set(remote, &component.Remote{ServerID: 9})

	r.collision.Update(16 * time.Millisecond)

	trRemote, _ := r.tables.Transforms.Get(remote)
	trLocal, _ := r.tables.Transforms.Get(local)
	assert.Equal(t, 1.0, trRemote.Pos.X(), "server owns remote positions")
	assert.InDelta(t, -1.0, trLocal.Pos.X(), 1e-9)
}

func TestMaskFilterMustPassBothWays(t *testing.T) {
	r := newRig()
	// a collides with enemies only; b collides with players only. The
	// pair passes one way but not the other, so nothing happens.
	a := r.spawnSolid(mgl64.Vec3{0, 0, 0}, 1, 1, component.LayerPlayer, component.LayerEnemy)
	b := r.spawnSolid(mgl64.Vec3{1, 0, 0}, 1, 1, component.LayerPlayer, component.LayerPlayer)

	r.collision.Update(16 * time.Millisecond)

	trA, _ := r.tables.Transforms.Get(a)
	trB, _ := r.tables.Transforms.Get(b)
	assert.Equal(t, 0.0, trA.Pos.X())
	assert.Equal(t, 1.0, trB.Pos.X())
}

func TestTriggerOverlapRecordedWithoutSeparation(t *testing.T) {
	r := newRig()
	player := r.spawnPlayer(mgl64.Vec3{})
	enemy := r.spawnEnemy(mgl64.Vec3{0.5, 0, 0})

	r.collision.Update(16 * time.Millisecond)

	overlaps := r.collision.Overlaps()
	assert.Len(t, overlaps, 1)
	got := overlaps[0]
	assert.True(t, (got.A == player && got.B == enemy) || (got.A == enemy && got.B == player))

	trP, _ := r.tables.Transforms.Get(player)
	assert.Equal(t, mgl64.Vec3{}, trP.Pos)
}

func TestCoincidentCentresStillSeparate(t *testing.T) {
	r := newRig()
	all := component.LayerPlayer
	a := r.spawnSolid(mgl64.Vec3{5, 5, 5}, 1, 1, component.LayerPlayer, all)
	b := r.spawnSolid(mgl64.Vec3{5, 5, 5}, 1, 1, component.LayerPlayer, all)

	r.collision.Update(16 * time.Millisecond)

	trA, _ := r.tables.Transforms.Get(a)
	trB, _ := r.tables.Transforms.Get(b)
	assert.NotEqual(t, trA.Pos, trB.Pos, "arbitrary but stable axis applies")
}

func TestQuerySphereRespectsMask(t *testing.T) {
	r := newRig()
	r.spawnPlayer(mgl64.Vec3{1, 0, 0})
	enemy := r.spawnEnemy(mgl64.Vec3{-1, 0, 0})
	r.spawnEnemy(mgl64.Vec3{30, 0, 0})

	r.collision.Update(16 * time.Millisecond)

	var hits []ecs.EntityID
	r.collision.QuerySphere(mgl64.Vec3{}, 3, component.LayerEnemy, func(id ecs.EntityID) {
		hits = append(hits, id)
	})
	assert.Equal(t, []ecs.EntityID{enemy}, hits)
}

func TestColliderIndexFollowsAttachAndDetach(t *testing.T) {
	r := newRig()
	all := component.LayerPlayer | component.LayerEnemy | component.LayerEnvironment
	a := r.spawnSolid(mgl64.Vec3{0, 0, 0}, 1, 1, component.LayerPlayer, all)
	b := r.spawnSolid(mgl64.Vec3{1, 0, 0}, 1, 1, component.LayerPlayer, all)

	// Detaching b's collider drops it from the broad phase; the pair is
	// never tested and a stays put.
	r.tables.Colliders.Remove(b)
	r.collision.Update(16 * time.Millisecond)
	trA, _ := r.tables.Transforms.Get(a)
	assert.Equal(t, mgl64.Vec3{}, trA.Pos)

	// Re-attaching restores the pair and separation resumes.
	r.tables.Colliders.Set(b, &component.Collider{Radius: 1, Layer: component.LayerPlayer, Mask: all, Weight: 1})
	r.collision.Update(16 * time.Millisecond)
	trA, _ = r.tables.Transforms.Get(a)
	assert.InDelta(t, -0.5, trA.Pos.X(), 1e-9)
}

func TestDestroyedEntityLeavesColliderIndex(t *testing.T) {
	r := newRig()
	all := component.LayerPlayer | component.LayerEnemy | component.LayerEnvironment
	a := r.spawnSolid(mgl64.Vec3{0, 0, 0}, 1, 1, component.LayerPlayer, all)
	b := r.spawnSolid(mgl64.Vec3{1, 0, 0}, 1, 1, component.LayerPlayer, all)

	r.world.MarkForDestruction(b)
	r.world.FlushDestroyQueue()

	r.collision.Update(16 * time.Millisecond)
	trA, _ := r.tables.Transforms.Get(a)
	assert.Equal(t, mgl64.Vec3{}, trA.Pos, "reaped bodies never reach the broad phase")
}

func TestCollidersPresentBeforeSystemAreIndexed(t *testing.T) {
	w := ecs.NewWorld()
	tables := component.NewTables(w.Registry())
	all := component.LayerPlayer | component.LayerEnemy
	id := w.CreateEntity()
	tables.Transforms.Set(id, &component.Transform{Rot: mgl64.QuatIdent()})
	tables.Colliders.Set(id, &component.Collider{Radius: 1, Layer: component.LayerPlayer, Mask: all, Weight: 1})

	col := NewCollisionSystem(tables, 4)
	col.Update(16 * time.Millisecond)

	found := 0
	col.QuerySphere(mgl64.Vec3{}, 0.5, component.LayerPlayer, func(ecs.EntityID) { found++ })
	assert.Equal(t, 1, found)
}
