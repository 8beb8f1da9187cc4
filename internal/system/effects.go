package system

import (
	"container/heap"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emberveil/client/internal/component"
	"github.com/emberveil/client/internal/core/ecs"
	"github.com/emberveil/client/internal/core/event"
	coresys "github.com/emberveil/client/internal/core/system"
	"github.com/emberveil/client/internal/data"
)

// EffectPayload is the per-instance data carried by a timed effect.
type EffectPayload struct {
	Source   ecs.EntityID
	Position mgl64.Vec3
	Stacks   int
}

// TimedEffect is one active entry in the registry. For a given (target, kind)
// at most one entry exists; re-application extends it.
type TimedEffect struct {
	ID       uuid.UUID
	Target   ecs.EntityID
	Kind     string
	Start    time.Time
	ExpireAt time.Time
	Payload  EffectPayload

	nextPulse time.Time
	heapIdx   int
}

// expiryHeap is a min-heap on ExpireAt. Cancellation removes by heapIdx in
// O(log n) instead of scheduling fire-and-forget timers that could write into
// a reused entity slot.
type expiryHeap []*TimedEffect

func (h expiryHeap) Len() int            { return len(h) }
func (h expiryHeap) Less(i, j int) bool  { return h[i].ExpireAt.Before(h[j].ExpireAt) }
func (h expiryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].heapIdx = i; h[j].heapIdx = j }
func (h *expiryHeap) Push(x any)         { e := x.(*TimedEffect); e.heapIdx = len(*h); *h = append(*h, e) }
func (h *expiryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// EffectSystem is the generic timed-effect registry: debuffs, channelled
// effects, and anything else with a start time and a duration. Expiry is a
// per-frame sweep over the heap; nothing is scheduled, nothing fires after
// its target is gone.
type EffectSystem struct {
	world   *ecs.World
	tables  *component.Tables
	defs    *data.EffectTable
	combat  *CombatSystem
	clock   *coresys.Clock
	bus     *event.Bus
	log     *zap.Logger

	byTarget map[ecs.EntityID]map[string]*TimedEffect
	expiry   expiryHeap
}

func NewEffectSystem(w *ecs.World, tables *component.Tables, defs *data.EffectTable,
	combat *CombatSystem, clock *coresys.Clock, bus *event.Bus, log *zap.Logger) *EffectSystem {

	s := &EffectSystem{
		world:    w,
		tables:   tables,
		defs:     defs,
		combat:   combat,
		clock:    clock,
		bus:      bus,
		log:      log,
		byTarget: make(map[ecs.EntityID]map[string]*TimedEffect, 64),
	}
	// Destroying an entity cancels its effects synchronously, before the
	// slot can be reused.
	w.ObserveDestroy(s.CancelAll)
	return s
}

func (s *EffectSystem) Phase() coresys.Phase { return coresys.PhaseEffects }

// Apply creates or extends the (target, kind) effect. An existing entry's
// expiry moves to max(existing remaining, new duration) and its payload is
// refreshed; a second indicator is never created.
func (s *EffectSystem) Apply(target ecs.EntityID, kind string, duration time.Duration, payload EffectPayload) *TimedEffect {
	if !s.world.Alive(target) {
		return nil // stale target: no-op, not an error
	}
	def := s.defs.Get(kind)
	if def == nil {
		s.log.Warn("unknown effect kind", zap.String("kind", kind))
		return nil
	}
	if duration <= 0 {
		duration = def.DefaultDuration
	}
	now := s.clock.Now()
	newExpire := now.Add(duration)

	if existing, ok := s.byTarget[target][kind]; ok {
		if newExpire.After(existing.ExpireAt) {
			existing.ExpireAt = newExpire
			heap.Fix(&s.expiry, existing.heapIdx)
		}
		if payload.Stacks > existing.Payload.Stacks {
			existing.Payload.Stacks = payload.Stacks
		}
		if payload.Source != 0 {
			existing.Payload.Source = payload.Source
		}
		return existing
	}

	eff := &TimedEffect{
		ID:       uuid.New(),
		Target:   target,
		Kind:     kind,
		Start:    now,
		ExpireAt: newExpire,
		Payload:  payload,
	}
	if def.TickInterval > 0 {
		eff.nextPulse = now.Add(def.TickInterval)
	}

	kinds := s.byTarget[target]
	if kinds == nil {
		kinds = make(map[string]*TimedEffect, 4)
		s.byTarget[target] = kinds
	}
	kinds[kind] = eff
	heap.Push(&s.expiry, eff)

	s.applyConsequence(target, def)
	return eff
}

// Has reports whether an active (target, kind) entry exists.
func (s *EffectSystem) Has(target ecs.EntityID, kind string) bool {
	_, ok := s.byTarget[target][kind]
	return ok
}

// Remaining returns the time left on an active effect, zero if absent.
func (s *EffectSystem) Remaining(target ecs.EntityID, kind string) time.Duration {
	eff, ok := s.byTarget[target][kind]
	if !ok {
		return 0
	}
	rem := eff.ExpireAt.Sub(s.clock.Now())
	if rem < 0 {
		return 0
	}
	return rem
}

// ActiveCount returns the number of live entries (all targets).
func (s *EffectSystem) ActiveCount() int { return len(s.expiry) }

// CancelAll drops every effect on a target without reverting consequences.
// Used on entity destruction, where the component data is about to be
// stripped anyway and must not be touched afterwards.
func (s *EffectSystem) CancelAll(target ecs.EntityID) {
	kinds, ok := s.byTarget[target]
	if !ok {
		return
	}
	for kind, eff := range kinds {
		heap.Remove(&s.expiry, eff.heapIdx)
		event.Emit(s.bus, event.EffectExpired{Target: target, Kind: kind, Cancelled: true})
	}
	delete(s.byTarget, target)
}

// Update pulses periodic effects and sweeps expired entries. Each expiry
// reverts its gameplay consequence exactly once.
func (s *EffectSystem) Update(_ time.Duration) {
	now := s.clock.Now()

	for _, kinds := range s.byTarget {
		for _, eff := range kinds {
			def := s.defs.Get(eff.Kind)
			if def == nil || def.TickInterval <= 0 {
				continue
			}
			for !eff.nextPulse.After(now) && eff.nextPulse.Before(eff.ExpireAt) {
				s.pulse(eff, def)
				eff.nextPulse = eff.nextPulse.Add(def.TickInterval)
			}
		}
	}

	for len(s.expiry) > 0 && !s.expiry[0].ExpireAt.After(now) {
		eff := heap.Pop(&s.expiry).(*TimedEffect)
		kinds := s.byTarget[eff.Target]
		delete(kinds, eff.Kind)
		if len(kinds) == 0 {
			delete(s.byTarget, eff.Target)
		}
		if def := s.defs.Get(eff.Kind); def != nil {
			s.revertConsequence(eff.Target, def)
		}
		event.Emit(s.bus, event.EffectExpired{Target: eff.Target, Kind: eff.Kind})
	}
}

// pulse applies one periodic tick: single-target damage/heal, or an area
// pulse around the payload position (heal totem heals players and burns
// enemies in radius).
func (s *EffectSystem) pulse(eff *TimedEffect, def *data.EffectDef) {
	if def.PulseRadius <= 0 {
		if def.TickDamage > 0 {
			s.combat.ApplyDamage(DamageEvent{
				Source:     eff.Payload.Source,
				Target:     eff.Target,
				Amount:     def.TickDamage,
				DamageType: def.DamageType,
			})
		}
		if def.TickHeal > 0 {
			s.combat.ApplyHealing(eff.Target, def.TickHeal, def.Kind)
		}
		return
	}

	center := eff.Payload.Position
	if def.TickHeal > 0 {
		s.combat.collision.QuerySphere(center, def.PulseRadius, component.LayerPlayer, func(id ecs.EntityID) {
			s.combat.ApplyHealing(id, def.TickHeal, def.Kind)
		})
	}
	if def.TickDamage > 0 {
		s.combat.collision.QuerySphere(center, def.PulseRadius, component.LayerEnemy, func(id ecs.EntityID) {
			s.combat.ApplyDamage(DamageEvent{
				Source:     eff.Payload.Source,
				Target:     id,
				Amount:     def.TickDamage,
				DamageType: def.DamageType,
			})
		})
	}
}

func (s *EffectSystem) applyConsequence(target ecs.EntityID, def *data.EffectDef) {
	flag, ok := flagFor(def.Flag)
	if !ok {
		return
	}
	if mv, ok := s.tables.Movements.Get(target); ok {
		mv.SetFlag(flag)
	}
}

// revertConsequence clears the movement flag unless another active effect on
// the same target still sets it (frozen and stunned share a flag).
func (s *EffectSystem) revertConsequence(target ecs.EntityID, def *data.EffectDef) {
	flag, ok := flagFor(def.Flag)
	if !ok {
		return
	}
	for kind := range s.byTarget[target] {
		if other := s.defs.Get(kind); other != nil {
			if f, ok := flagFor(other.Flag); ok && f == flag {
				return
			}
		}
	}
	if mv, ok := s.tables.Movements.Get(target); ok {
		mv.ClearFlag(flag)
	}
}

func flagFor(name string) (component.StatusFlag, bool) {
	switch name {
	case "frozen":
		return component.StatusFrozen, true
	case "slowed":
		return component.StatusSlowed, true
	case "corrupted":
		return component.StatusCorrupted, true
	}
	return 0, false
}
