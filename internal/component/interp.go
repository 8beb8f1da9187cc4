package component

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// interpBufferCap bounds the snapshot history per remote entity. At typical
// server send rates this covers well over the render delay window.
const interpBufferCap = 16

// Snapshot is one timestamped position/rotation sample from the network.
type Snapshot struct {
	At  time.Time
	Pos mgl64.Vec3
	Rot mgl64.Quat
}

// InterpBuffer is a fixed-capacity ring of snapshots for one remote entity.
// The backing array is reused for the entity's lifetime; pushing never
// allocates.
type InterpBuffer struct {
	ring  [interpBufferCap]Snapshot
	head  int // index of oldest
	count int
}

// Push appends a snapshot, evicting the oldest when full. Out-of-order
// arrivals older than the newest snapshot are dropped.
func (b *InterpBuffer) Push(s Snapshot) {
	if b.count > 0 && !s.At.After(b.newestRef().At) {
		return
	}
	if b.count < interpBufferCap {
		b.ring[(b.head+b.count)%interpBufferCap] = s
		b.count++
		return
	}
	b.ring[b.head] = s
	b.head = (b.head + 1) % interpBufferCap
}

// Reset drops all history. Used on desync teleports so interpolation restarts
// from the new position instead of sweeping across the map.
func (b *InterpBuffer) Reset() {
	b.head = 0
	b.count = 0
}

func (b *InterpBuffer) Len() int { return b.count }

func (b *InterpBuffer) at(i int) Snapshot {
	return b.ring[(b.head+i)%interpBufferCap]
}

func (b *InterpBuffer) newestRef() *Snapshot {
	return &b.ring[(b.head+b.count-1)%interpBufferCap]
}

// Newest returns the most recent snapshot.
func (b *InterpBuffer) Newest() (Snapshot, bool) {
	if b.count == 0 {
		return Snapshot{}, false
	}
	return *b.newestRef(), true
}

// Bracket returns the two snapshots surrounding render time t. ok is false
// when t is newer than every snapshot (caller extrapolates or holds). When t
// precedes all history both returns equal the oldest snapshot.
func (b *InterpBuffer) Bracket(t time.Time) (before, after Snapshot, ok bool) {
	if b.count == 0 {
		return Snapshot{}, Snapshot{}, false
	}
	if t.After(b.newestRef().At) {
		return Snapshot{}, Snapshot{}, false
	}
	// First snapshot at or after t; exists because t <= newest.
	for i := 0; i < b.count; i++ {
		s := b.at(i)
		if !s.At.Before(t) {
			if i == 0 {
				return s, s, true
			}
			return b.at(i - 1), s, true
		}
	}
	n := *b.newestRef()
	return n, n, true
}

// VelocityEstimate derives velocity from the two newest snapshots, used for
// bounded extrapolation through packet loss.
func (b *InterpBuffer) VelocityEstimate() mgl64.Vec3 {
	if b.count < 2 {
		return mgl64.Vec3{}
	}
	a := b.at(b.count - 2)
	z := b.at(b.count - 1)
	dt := z.At.Sub(a.At).Seconds()
	if dt <= 0 {
		return mgl64.Vec3{}
	}
	return z.Pos.Sub(a.Pos).Mul(1 / dt)
}
