package system

import (
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/emberveil/client/internal/component"
	"github.com/emberveil/client/internal/config"
	"github.com/emberveil/client/internal/core/ecs"
	"github.com/emberveil/client/internal/core/event"
	coresys "github.com/emberveil/client/internal/core/system"
	"github.com/emberveil/client/internal/data"
	"github.com/emberveil/client/internal/world"
)

// DamageEvent is a transient damage request. It produces at most one
// health/shield mutation and at most one cosmetic damage number.
type DamageEvent struct {
	Source     ecs.EntityID
	Target     ecs.EntityID
	Amount     int
	DamageType string

	// Critical is the pre-rolled flag on server-reported damage. Local rolls
	// happen only when LocalRoll is set (the local player is the source and
	// this client is authoritative for the cosmetic crit).
	Critical  bool
	LocalRoll bool

	BypassInvuln bool
}

// CritRunes is the local player's equipped crit rune counts.
type CritRunes struct {
	ChanceRunes int
	DamageRunes int
}

// CombatSystem is the single entry point for all damage and healing. Handlers
// and systems either call ApplyDamage directly (run-to-completion on the sim
// thread) or queue events drained in the combat phase.
type CombatSystem struct {
	tables    *component.Tables
	enemies   *data.EnemyTable
	numbers   *world.DamageNumbers
	bus       *event.Bus
	clock     *coresys.Clock
	collision *CollisionSystem
	log       *zap.Logger

	cfg  config.CombatConfig
	coop bool
	rng  *rand.Rand

	Runes CritRunes

	queue []DamageEvent
}

func NewCombatSystem(tables *component.Tables, enemies *data.EnemyTable,
	numbers *world.DamageNumbers, bus *event.Bus, clock *coresys.Clock,
	collision *CollisionSystem, cfg config.CombatConfig, coop bool,
	rng *rand.Rand, log *zap.Logger) *CombatSystem {

	return &CombatSystem{
		tables:    tables,
		enemies:   enemies,
		numbers:   numbers,
		bus:       bus,
		clock:     clock,
		collision: collision,
		log:       log,
		cfg:       cfg,
		coop:      coop,
		rng:       rng,
	}
}

func (s *CombatSystem) Phase() coresys.Phase { return coresys.PhaseCombat }

// QueueDamage defers a damage event to this tick's combat phase.
func (s *CombatSystem) QueueDamage(ev DamageEvent) {
	s.queue = append(s.queue, ev)
}

func (s *CombatSystem) Update(dt time.Duration) {
	s.tickTimers(dt)
	s.contactDamage()
	for _, ev := range s.queue {
		s.ApplyDamage(ev)
	}
	s.queue = s.queue[:0]
}

// tickTimers advances invulnerability windows and shield regeneration.
func (s *CombatSystem) tickTimers(dt time.Duration) {
	s.tables.Healths.Each(func(_ ecs.EntityID, h *component.Health) {
		if h.InvulnRemaining > 0 {
			h.InvulnRemaining -= dt
			if h.InvulnRemaining < 0 {
				h.InvulnRemaining = 0
			}
		}
	})
	ecs.Each2(s.tables.Shields, s.tables.Healths,
		func(_ ecs.EntityID, sh *component.Shield, h *component.Health) {
			if !h.Dead {
				sh.Regen(dt)
			}
		})
}

// contactDamage converts enemy trigger-volume overlaps with players into
// damage events using the enemy template's contact damage.
func (s *CombatSystem) contactDamage() {
	for _, ov := range s.collision.Overlaps() {
		s.contactPair(ov.A, ov.B)
		s.contactPair(ov.B, ov.A)
	}
}

// contactInvulnWindow is granted to a player after a contact hit lands, so a
// sustained overlap deals damage once per window instead of once per tick.
const contactInvulnWindow = 500 * time.Millisecond

func (s *CombatSystem) contactPair(enemy, target ecs.EntityID) {
	tag, ok := s.tables.EnemyTags.Get(enemy)
	if !ok {
		return
	}
	col, ok := s.tables.Colliders.Get(target)
	if !ok || col.Layer != component.LayerPlayer {
		return
	}
	h, ok := s.tables.Healths.Get(target)
	if !ok || h.Dead || h.Invulnerable() {
		return
	}
	def := s.enemies.Get(tag.Kind, tag.Tier)
	if def == nil || def.ContactDamage <= 0 {
		return
	}
	s.ApplyDamage(DamageEvent{
		Source:     enemy,
		Target:     target,
		Amount:     def.ContactDamage,
		DamageType: def.DamageType,
	})
	h.InvulnRemaining = contactInvulnWindow
}

// ApplyDamage resolves one damage event: dead/invulnerable gating, friendly
// fire suppression, shield absorption, crit roll, health mutation, the single
// alive→dead edge, and the cosmetic damage number.
//
// Addressing an already-dead target is a no-op, not an error; death and
// damage notifications for the same actor may arrive on different channels in
// either order.
func (s *CombatSystem) ApplyDamage(ev DamageEvent) {
	h, ok := s.tables.Healths.Get(ev.Target)
	if !ok || h.Dead {
		return
	}
	if h.Invulnerable() && !ev.BypassInvuln {
		return
	}
	if ev.Amount <= 0 {
		return
	}
	// Co-op: player-to-player damage is suppressed at the gate. Enemy and
	// boss damage is unaffected.
	if s.coop && s.playerOwned(ev.Source) && s.playerOwned(ev.Target) {
		return
	}

	amount := float64(ev.Amount)
	crit := ev.Critical
	if ev.LocalRoll {
		chance := s.cfg.CritBaseChance + float64(s.Runes.ChanceRunes)*s.cfg.CritRuneIncrement
		if s.rng.Float64() < chance {
			crit = true
			amount *= s.cfg.CritBaseMult + float64(s.Runes.DamageRunes)*s.cfg.CritMultIncrement
		}
	}
	remaining := int(amount) // floored

	// Shield absorbs first; overflow continues to health.
	if sh, ok := s.tables.Shields.Get(ev.Target); ok && sh.Current > 0 {
		absorbed := remaining
		if absorbed > sh.Current {
			absorbed = sh.Current
		}
		sh.Current -= absorbed
		sh.SinceHit = 0
		remaining -= absorbed
	}

	total := int(amount)
	if remaining > 0 {
		h.Current -= remaining
		if h.Current < 0 {
			h.Current = 0
		}
	}

	s.pushNumber(ev.Target, total, crit, false, ev.DamageType)

	if ev.LocalRoll {
		event.Emit(s.bus, event.DamageDealt{
			Source:     ev.Source,
			Target:     ev.Target,
			Amount:     total,
			Critical:   crit,
			DamageType: ev.DamageType,
		})
	}

	if h.Current == 0 && !h.Dead {
		s.kill(ev.Target, ev.Source, h)
	}
}

// ReconcileHealth overwrites a mirror's health with the server's post-verdict
// value. Killed forces the death edge even when the local mirror still shows
// health; the edge fires at most once either way.
func (s *CombatSystem) ReconcileHealth(target ecs.EntityID, newHealth int, killed bool) {
	h, ok := s.tables.Healths.Get(target)
	if !ok || h.Dead {
		return
	}
	if killed || newHealth < 0 {
		newHealth = 0
	}
	if newHealth > h.Max {
		newHealth = h.Max
	}
	h.Current = newHealth
	if h.Current == 0 {
		s.kill(target, 0, h)
	}
}

// kill flips the single alive→dead edge and announces it.
func (s *CombatSystem) kill(target, source ecs.EntityID, h *component.Health) {
	h.Dead = true
	var pos mgl64.Vec3
	if tr, ok := s.tables.Transforms.Get(target); ok {
		pos = tr.Pos
	}
	event.Emit(s.bus, event.EntityDied{
		Entity:   target,
		Source:   source,
		Position: pos,
	})
	s.log.Debug("entity died",
		zap.Uint64("entity", uint64(target)),
		zap.Uint64("source", uint64(source)))
}

// ApplyHealing increases shield-less health (and overheal spills into the
// shield when one exists). Healing never crits and never wakes the dead, but
// still emits a cosmetic number.
func (s *CombatSystem) ApplyHealing(target ecs.EntityID, amount int, healType string) {
	if amount <= 0 {
		return
	}
	h, ok := s.tables.Healths.Get(target)
	if !ok || h.Dead {
		return
	}
	h.Current += amount
	if h.Current > h.Max {
		overflow := h.Current - h.Max
		h.Current = h.Max
		if sh, ok := s.tables.Shields.Get(target); ok {
			sh.Current += overflow
			if sh.Current > sh.Max {
				sh.Current = sh.Max
			}
		}
	}
	s.pushNumber(target, amount, false, true, healType)
}

func (s *CombatSystem) playerOwned(id ecs.EntityID) bool {
	col, ok := s.tables.Colliders.Get(id)
	return ok && col.Layer == component.LayerPlayer
}

func (s *CombatSystem) pushNumber(target ecs.EntityID, value int, crit, healing bool, kind string) {
	var pos mgl64.Vec3
	if tr, ok := s.tables.Transforms.Get(target); ok {
		pos = tr.Pos
	}
	s.numbers.Push(world.DamageNumber{
		Value:      value,
		Pos:        pos,
		Critical:   crit,
		Healing:    healing,
		DamageType: kind,
		At:         s.clock.Now(),
	})
}
