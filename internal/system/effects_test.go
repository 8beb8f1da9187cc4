package system

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"

	"github.com/emberveil/client/internal/component"
	"github.com/emberveil/client/internal/core/event"
)

func TestReapplyExtendsExistingEntry(t *testing.T) {
	r := newRig()
	target := r.spawnEnemy(mgl64.Vec3{})

	r.effects.Apply(target, "frozen", 5*time.Second, EffectPayload{})
	assert.Equal(t, 1, r.effects.ActiveCount())

	mv, _ := r.tables.Movements.Get(target)
	assert.True(t, mv.HasFlag(component.StatusFrozen))

	// Re-application two seconds in extends the single entry instead of
	// stacking a second one.
	r.advance(2 * time.Second)
	r.effects.Apply(target, "frozen", 5*time.Second, EffectPayload{})
	assert.Equal(t, 1, r.effects.ActiveCount())
	assert.Equal(t, 5*time.Second, r.effects.Remaining(target, "frozen"))
}

func TestReapplyNeverShortensRemaining(t *testing.T) {
	r := newRig()
	target := r.spawnEnemy(mgl64.Vec3{})

	r.effects.Apply(target, "frozen", 10*time.Second, EffectPayload{})
	r.effects.Apply(target, "frozen", time.Second, EffectPayload{})
	assert.Equal(t, 10*time.Second, r.effects.Remaining(target, "frozen"))
}

func TestExpiryRevertsConsequenceOnce(t *testing.T) {
	r := newRig()
	target := r.spawnEnemy(mgl64.Vec3{})

	expired := 0
	event.Subscribe(r.bus, func(ev event.EffectExpired) {
		assert.False(t, ev.Cancelled)
		expired++
	})

	r.effects.Apply(target, "frozen", 2*time.Second, EffectPayload{})
	r.advance(3 * time.Second)
	r.effects.Update(0)

	mv, _ := r.tables.Movements.Get(target)
	assert.False(t, mv.HasFlag(component.StatusFrozen))
	assert.Equal(t, 0, r.effects.ActiveCount())
	assert.False(t, r.effects.Has(target, "frozen"))

	r.bus.SwapBuffers()
	r.bus.DispatchAll()
	assert.Equal(t, 1, expired)
}

func TestSharedFlagSurvivesPartialExpiry(t *testing.T) {
	r := newRig()
	target := r.spawnEnemy(mgl64.Vec3{})

	// frozen and stunned both set the frozen movement flag.
	r.effects.Apply(target, "frozen", 2*time.Second, EffectPayload{})
	r.effects.Apply(target, "stunned", 5*time.Second, EffectPayload{})

	r.advance(3 * time.Second)
	r.effects.Update(0)

	mv, _ := r.tables.Movements.Get(target)
	assert.True(t, mv.HasFlag(component.StatusFrozen), "stunned still holds the flag")

	r.advance(3 * time.Second)
	r.effects.Update(0)
	assert.False(t, mv.HasFlag(component.StatusFrozen))
}

func TestDefaultDurationWhenUnspecified(t *testing.T) {
	r := newRig()
	target := r.spawnEnemy(mgl64.Vec3{})

	r.effects.Apply(target, "frozen", 0, EffectPayload{})
	assert.Equal(t, 5*time.Second, r.effects.Remaining(target, "frozen"))
}

func TestBurningPulsesUntilExpiry(t *testing.T) {
	r := newRig()
	target := r.spawnEnemy(mgl64.Vec3{})
	h, _ := r.tables.Healths.Get(target)

	r.effects.Apply(target, "burning", 3500*time.Millisecond, EffectPayload{})

	// Pulses land at t=1s, 2s, 3s; the 3.5s expiry cuts the fourth.
	for i := 0; i < 5; i++ {
		r.advance(time.Second)
		r.effects.Update(0)
	}
	assert.Equal(t, 50-3*6, h.Current)
	assert.Equal(t, 0, r.effects.ActiveCount())
}

func TestTotemPulseHealsPlayersAndBurnsEnemies(t *testing.T) {
	r := newRig()
	player := r.spawnPlayer(mgl64.Vec3{1, 0, 0})
	enemy := r.spawnEnemy(mgl64.Vec3{-1, 0, 0})
	far := r.spawnPlayer(mgl64.Vec3{40, 0, 0})

	hp, _ := r.tables.Healths.Get(player)
	hp.Current = 60
	hfar, _ := r.tables.Healths.Get(far)
	hfar.Current = 60

	r.collision.Update(0) // pulses query the grid built this tick
	r.effects.Apply(player, "heal_totem", 6*time.Second, EffectPayload{Position: mgl64.Vec3{}})

	r.advance(time.Second)
	r.effects.Update(0)

	he, _ := r.tables.Healths.Get(enemy)
	assert.Equal(t, 72, hp.Current)
	assert.Equal(t, 42, he.Current)
	assert.Equal(t, 60, hfar.Current, "outside the pulse radius")
}

func TestDestroyCancelsWithoutRevert(t *testing.T) {
	r := newRig()
	target := r.spawnEnemy(mgl64.Vec3{})

	cancelled := 0
	event.Subscribe(r.bus, func(ev event.EffectExpired) {
		if ev.Cancelled {
			cancelled++
		}
	})

	r.effects.Apply(target, "burning", 10*time.Second, EffectPayload{})
	r.effects.Apply(target, "frozen", 10*time.Second, EffectPayload{})
	assert.Equal(t, 2, r.effects.ActiveCount())

	r.world.MarkForDestruction(target)
	r.world.FlushDestroyQueue()
	assert.Equal(t, 0, r.effects.ActiveCount())

	// Nothing left to pulse or expire against the freed slot.
	r.advance(2 * time.Second)
	r.effects.Update(0)

	r.bus.SwapBuffers()
	r.bus.DispatchAll()
	assert.Equal(t, 2, cancelled)
}

func TestApplyToDeadEntityIsNoop(t *testing.T) {
	r := newRig()
	target := r.spawnEnemy(mgl64.Vec3{})
	r.world.MarkForDestruction(target)
	r.world.FlushDestroyQueue()

	eff := r.effects.Apply(target, "frozen", time.Second, EffectPayload{})
	assert.Nil(t, eff)
	assert.Equal(t, 0, r.effects.ActiveCount())
}
