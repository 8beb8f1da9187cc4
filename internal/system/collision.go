package system

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/emberveil/client/internal/component"
	"github.com/emberveil/client/internal/core/ecs"
	coresys "github.com/emberveil/client/internal/core/system"
)

type cellKey struct {
	x, y, z int32
}

// Overlap is one trigger overlap reported by the narrow phase. Consumed the
// same tick by the combat system (contact damage volumes).
type Overlap struct {
	A, B ecs.EntityID
}

// CollisionSystem rebuilds a uniform grid from collider positions each tick,
// then runs broad phase (shared cell neighbourhood) and narrow phase
// (sphere-sphere) over candidate pairs. The cell size must be at least the
// largest collider diameter so the 3x3x3 neighbourhood covers all candidates.
//
// Solid pairs are separated along the centre axis proportional to inverse
// weight. Server-mirrored entities are never displaced locally; the server
// owns their position and a local push would only fight interpolation.
type CollisionSystem struct {
	tables   *component.Tables
	cellSize float64

	// bodies is kept current through collider store observers, so the grid
	// rebuild walks a stable slice instead of scanning the store map, and
	// iteration order stays deterministic across ticks.
	bodies []ecs.EntityID
	slot   map[ecs.EntityID]int

	cells    map[cellKey][]ecs.EntityID
	overlaps []Overlap
}

func NewCollisionSystem(tables *component.Tables, cellSize float64) *CollisionSystem {
	if cellSize <= 0 {
		cellSize = 4.0
	}
	s := &CollisionSystem{
		tables:   tables,
		cellSize: cellSize,
		slot:     make(map[ecs.EntityID]int, 256),
		cells:    make(map[cellKey][]ecs.EntityID, 256),
	}
	tables.Colliders.Each(func(id ecs.EntityID, _ *component.Collider) {
		s.track(id)
	})
	tables.Colliders.OnAdd(func(id ecs.EntityID, _ *component.Collider) {
		s.track(id)
	})
	tables.Colliders.OnRemove(s.untrack)
	return s
}

func (s *CollisionSystem) track(id ecs.EntityID) {
	if _, dup := s.slot[id]; dup {
		return
	}
	s.slot[id] = len(s.bodies)
	s.bodies = append(s.bodies, id)
}

// untrack swap-removes to keep the slice dense.
func (s *CollisionSystem) untrack(id ecs.EntityID) {
	i, ok := s.slot[id]
	if !ok {
		return
	}
	last := len(s.bodies) - 1
	s.bodies[i] = s.bodies[last]
	s.slot[s.bodies[i]] = i
	s.bodies = s.bodies[:last]
	delete(s.slot, id)
}

func (s *CollisionSystem) Phase() coresys.Phase { return coresys.PhaseCollision }

// Overlaps returns the trigger overlaps found this tick. Valid until the next
// collision update.
func (s *CollisionSystem) Overlaps() []Overlap {
	return s.overlaps
}

func (s *CollisionSystem) cell(p mgl64.Vec3) cellKey {
	return cellKey{
		x: int32(math.Floor(p.X() / s.cellSize)),
		y: int32(math.Floor(p.Y() / s.cellSize)),
		z: int32(math.Floor(p.Z() / s.cellSize)),
	}
}

func (s *CollisionSystem) Update(_ time.Duration) {
	// Rebuild the grid. Keep bucket slices allocated across ticks.
	for k, bucket := range s.cells {
		s.cells[k] = bucket[:0]
	}
	s.overlaps = s.overlaps[:0]

	for _, id := range s.bodies {
		col, okC := s.tables.Colliders.Get(id)
		tr, okT := s.tables.Transforms.Get(id)
		if !okC || !okT {
			continue
		}
		k := s.cell(tr.Pos.Add(col.Offset))
		s.cells[k] = append(s.cells[k], id)
	}

	// Broad phase: each tracked body against its own and neighbouring cells.
	// Pair order (a < b) deduplicates.
	for _, a := range s.bodies {
		colA, okC := s.tables.Colliders.Get(a)
		trA, okT := s.tables.Transforms.Get(a)
		if !okC || !okT {
			continue
		}
		center := s.cell(trA.Pos.Add(colA.Offset))
		for dx := int32(-1); dx <= 1; dx++ {
			for dy := int32(-1); dy <= 1; dy++ {
				for dz := int32(-1); dz <= 1; dz++ {
					k := cellKey{center.x + dx, center.y + dy, center.z + dz}
					for _, b := range s.cells[k] {
						if b <= a {
							continue
						}
						s.testPair(a, b)
					}
				}
			}
		}
	}
}

func (s *CollisionSystem) testPair(a, b ecs.EntityID) {
	colA, okA := s.tables.Colliders.Get(a)
	colB, okB := s.tables.Colliders.Get(b)
	if !okA || !okB {
		return
	}
	// Layer/mask filter must pass in both directions.
	if colA.Mask&colB.Layer == 0 || colB.Mask&colA.Layer == 0 {
		return
	}
	trA, okA := s.tables.Transforms.Get(a)
	trB, okB := s.tables.Transforms.Get(b)
	if !okA || !okB {
		return
	}

	posA := trA.Pos.Add(colA.Offset)
	posB := trB.Pos.Add(colB.Offset)
	delta := posB.Sub(posA)
	distSq := delta.Dot(delta)
	radSum := colA.Radius + colB.Radius
	if distSq >= radSum*radSum {
		return
	}

	if colA.Trigger || colB.Trigger {
		s.overlaps = append(s.overlaps, Overlap{A: a, B: b})
		return
	}
	s.separate(a, b, colA, colB, trA, trB, delta, distSq, radSum)
}

func (s *CollisionSystem) separate(a, b ecs.EntityID, colA, colB *component.Collider,
	trA, trB *component.Transform, delta mgl64.Vec3, distSq, radSum float64) {

	invA := inverseWeight(colA, s.tables.Remotes.Has(a))
	invB := inverseWeight(colB, s.tables.Remotes.Has(b))
	total := invA + invB
	if total == 0 {
		return // both immovable
	}

	dist := math.Sqrt(distSq)
	var axis mgl64.Vec3
	if dist > 1e-9 {
		axis = delta.Mul(1 / dist)
	} else {
		axis = mgl64.Vec3{1, 0, 0} // coincident centres: arbitrary but stable axis
	}
	depth := radSum - dist

	trA.Pos = trA.Pos.Sub(axis.Mul(depth * invA / total))
	trB.Pos = trB.Pos.Add(axis.Mul(depth * invB / total))
}

// inverseWeight returns 1/weight for movable colliders and 0 for immovable
// ones. Remote entities are always immovable locally.
func inverseWeight(c *component.Collider, remote bool) float64 {
	if remote || c.Weight <= 0 {
		return 0
	}
	return 1 / c.Weight
}

// QuerySphere visits every collidable entity whose collider sphere intersects
// the given sphere, respecting the mask filter against the entity's layer.
// Used by the projectile system and area pulses; reuses the grid built this
// tick.
func (s *CollisionSystem) QuerySphere(pos mgl64.Vec3, radius float64, mask component.Layer, fn func(ecs.EntityID)) {
	min := s.cell(pos.Sub(mgl64.Vec3{radius, radius, radius}))
	max := s.cell(pos.Add(mgl64.Vec3{radius, radius, radius}))
	for cx := min.x; cx <= max.x; cx++ {
		for cy := min.y; cy <= max.y; cy++ {
			for cz := min.z; cz <= max.z; cz++ {
				for _, id := range s.cells[cellKey{cx, cy, cz}] {
					col, ok := s.tables.Colliders.Get(id)
					if !ok || mask&col.Layer == 0 {
						continue
					}
					tr, ok := s.tables.Transforms.Get(id)
					if !ok {
						continue
					}
					d := tr.Pos.Add(col.Offset).Sub(pos)
					r := radius + col.Radius
					if d.Dot(d) < r*r {
						fn(id)
					}
				}
			}
		}
	}
}
