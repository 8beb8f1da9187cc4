package ecs

// EntityID packs a 32-bit slot index in the lower half and a 32-bit generation
// in the upper half. The generation increments when the slot is freed, so a
// stale handle to a destroyed entity can never address its reused slot.
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

// EntityPool allocates entity slots from a free list with generational
// indices. Destroy is idempotent: a second destroy of the same handle is a
// no-op because the generation no longer matches.
type EntityPool struct {
	generations []uint32
	freeList    []uint32
	nextIndex   uint32
	live        int
}

func NewEntityPool() *EntityPool {
	p := &EntityPool{
		generations: make([]uint32, 1, 512),
		freeList:    make([]uint32, 0, 128),
		nextIndex:   1,
	}
	// Slot 0 is burned so the zero EntityID is never a live handle and can
	// serve as the "no entity" sentinel.
	p.generations[0] = 1
	return p
}

func (p *EntityPool) Create() EntityID {
	p.live++
	if n := len(p.freeList); n > 0 {
		idx := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		return NewEntityID(idx, p.generations[idx])
	}
	idx := p.nextIndex
	p.nextIndex++
	if int(idx) >= len(p.generations) {
		p.generations = append(p.generations, 0)
	}
	return NewEntityID(idx, p.generations[idx])
}

// Alive reports whether the handle still refers to a live slot.
func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	return idx < p.nextIndex && p.generations[idx] == id.Generation()
}

func (p *EntityPool) Destroy(id EntityID) {
	idx := id.Index()
	if idx >= p.nextIndex || p.generations[idx] != id.Generation() {
		return
	}
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
	p.live--
}

// Live returns the number of currently allocated entities.
func (p *EntityPool) Live() int { return p.live }
