package input

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestPressLatchesEdgeUntilConsumed(t *testing.T) {
	s := NewState()
	s.Press(2)

	assert.True(t, s.SlotPressed(2))
	assert.False(t, s.SlotPressed(2), "edge consumed by the first read")
	assert.True(t, s.SlotHeld(2), "held survives edge consumption")
}

func TestReleaseClearsHeldOnly(t *testing.T) {
	s := NewState()
	s.Press(3)
	s.Release(3)

	assert.False(t, s.SlotHeld(3))
	assert.True(t, s.SlotPressed(3), "a tap between ticks still registers")
}

func TestMoveDir(t *testing.T) {
	s := NewState()
	assert.Equal(t, mgl64.Vec3{}, s.MoveDir())
	s.SetMove(mgl64.Vec3{0, 0, 1})
	assert.Equal(t, mgl64.Vec3{0, 0, 1}, s.MoveDir())
}
