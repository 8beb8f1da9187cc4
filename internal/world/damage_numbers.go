package world

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// DamageNumber is one cosmetic floating-number record. The stream is consumed
// by the presentation layer and never feeds back into gameplay state.
type DamageNumber struct {
	Value      int
	Pos        mgl64.Vec3
	Critical   bool
	Healing    bool
	DamageType string
	At         time.Time
}

// DamageNumbers is a capped ring buffer of cosmetic records. When full, the
// oldest record is overwritten; the renderer missing a number under burst
// load is acceptable, unbounded growth is not.
type DamageNumbers struct {
	ring  []DamageNumber
	head  int
	count int
}

func NewDamageNumbers(capacity int) *DamageNumbers {
	if capacity <= 0 {
		capacity = 64
	}
	return &DamageNumbers{
		ring: make([]DamageNumber, capacity),
	}
}

func (d *DamageNumbers) Push(n DamageNumber) {
	if d.count < len(d.ring) {
		d.ring[(d.head+d.count)%len(d.ring)] = n
		d.count++
		return
	}
	d.ring[d.head] = n
	d.head = (d.head + 1) % len(d.ring)
}

func (d *DamageNumbers) Len() int { return d.count }

// Drain hands every buffered record to fn in oldest-first order and empties
// the buffer. Called once per render frame.
func (d *DamageNumbers) Drain(fn func(DamageNumber)) {
	for i := 0; i < d.count; i++ {
		fn(d.ring[(d.head+i)%len(d.ring)])
	}
	d.head = 0
	d.count = 0
}
