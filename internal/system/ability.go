package system

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/emberveil/client/internal/component"
	"github.com/emberveil/client/internal/core/ecs"
	coresys "github.com/emberveil/client/internal/core/system"
	"github.com/emberveil/client/internal/data"
	"github.com/emberveil/client/internal/scripting"
)

// InputSource is the read-only view of the player's input the ability system
// polls each frame. The concrete input manager lives outside the core.
type InputSource interface {
	// SlotPressed reports a trigger edge for an ability slot this frame.
	SlotPressed(slot int) bool
	// SlotHeld reports whether the slot's button is currently held.
	SlotHeld(slot int) bool
	// MoveDir is the normalized requested movement direction, zero when idle.
	MoveDir() mgl64.Vec3
}

// DamageCalc is the formula surface the ability system needs from the
// scripting engine.
type DamageCalc interface {
	AbilityDamage(ctx scripting.AbilityContext) int
	ResourceCapacity(kind string, level int) int
}

// AbilityEventSender broadcasts a locally triggered ability, immediately and
// exactly once per trigger.
type AbilityEventSender interface {
	SendAbilityEvent(slot int, name string, pos, dir mgl64.Vec3)
}

// Resource regeneration rules per currency kind. Rage does not regenerate:
// it builds on melee hits and decays after an idle window.
const (
	manaRegenPerSec   = 8.0
	energyRegenPerSec = 12.0
	rageGainPerHit    = 6.0
	rageDecayPerSec   = 10.0
	rageIdleWindow    = 3 * time.Second

	meleeReach = 2.5
)

type resourcePool struct {
	kind      string
	current   float64
	capacity  float64
	sinceUsed time.Duration
}

func (p *resourcePool) spend(cost float64) bool {
	if p.current < cost {
		return false
	}
	p.current -= cost
	p.sinceUsed = 0
	return true
}

func (p *resourcePool) tick(dt time.Duration) {
	p.sinceUsed += dt
	switch p.kind {
	case "mana":
		p.current += manaRegenPerSec * dt.Seconds()
	case "energy":
		p.current += energyRegenPerSec * dt.Seconds()
	case "rage":
		if p.sinceUsed > rageIdleWindow {
			p.current -= rageDecayPerSec * dt.Seconds()
		}
	}
	if p.current > p.capacity {
		p.current = p.capacity
	}
	if p.current < 0 {
		p.current = 0
	}
}

type slotState struct {
	def      *data.AbilityDef
	cooldown time.Duration

	charging bool
	charge   float64 // 0..1 while held

	comboStep       int
	sinceComboSwing time.Duration

	toggleActive bool
}

// AbilitySystem runs the local player's per-weapon ability state machines:
// cooldowns, resource pools, charge-ups, combo chains, and toggled auras.
// All waiting is state compared against elapsed time; nothing suspends.
type AbilitySystem struct {
	world     *ecs.World
	tables    *component.Tables
	collision *CollisionSystem
	combat    *CombatSystem
	projs     *ProjectileSystem
	effects   *EffectSystem
	calc      DamageCalc
	input     InputSource
	sender    AbilityEventSender
	log       *zap.Logger

	player ecs.EntityID
	weapon *data.WeaponDef
	level  int
	pool   resourcePool
	slots  map[int]*slotState
}

func NewAbilitySystem(w *ecs.World, tables *component.Tables, collision *CollisionSystem,
	combat *CombatSystem, projs *ProjectileSystem, effects *EffectSystem,
	calc DamageCalc, input InputSource, sender AbilityEventSender, log *zap.Logger) *AbilitySystem {

	return &AbilitySystem{
		world:     w,
		tables:    tables,
		collision: collision,
		combat:    combat,
		projs:     projs,
		effects:   effects,
		calc:      calc,
		input:     input,
		sender:    sender,
		log:       log,
		slots:     make(map[int]*slotState),
	}
}

func (s *AbilitySystem) Phase() coresys.Phase { return coresys.PhaseInput }

// Equip binds the local player entity and weapon, resetting all slot state.
func (s *AbilitySystem) Equip(player ecs.EntityID, weapon *data.WeaponDef, level int) {
	s.player = player
	s.weapon = weapon
	s.level = level
	s.slots = make(map[int]*slotState, len(weapon.Abilities))
	for i := range weapon.Abilities {
		def := &weapon.Abilities[i]
		s.slots[def.Slot] = &slotState{def: def}
	}
	capacity := float64(s.calc.ResourceCapacity(weapon.Resource, level))
	s.pool = resourcePool{kind: weapon.Resource, capacity: capacity}
	if weapon.Resource != "rage" {
		s.pool.current = capacity // rage starts empty, mana/energy start full
	}
}

// SetLevel rescales the resource capacity when the player levels up.
func (s *AbilitySystem) SetLevel(level int) {
	s.level = level
	if s.weapon == nil {
		return
	}
	s.pool.capacity = float64(s.calc.ResourceCapacity(s.weapon.Resource, level))
}

// --- read-only queries, safe to poll every render frame ---

func (s *AbilitySystem) CooldownRemaining(slot int) time.Duration {
	if st, ok := s.slots[slot]; ok {
		return st.cooldown
	}
	return 0
}

func (s *AbilitySystem) ChargeProgress(slot int) float64 {
	if st, ok := s.slots[slot]; ok && st.charging {
		return st.charge
	}
	return 0
}

func (s *AbilitySystem) IsToggleActive(slot int) bool {
	st, ok := s.slots[slot]
	return ok && st.toggleActive
}

func (s *AbilitySystem) ComboStep(slot int) int {
	if st, ok := s.slots[slot]; ok {
		return st.comboStep
	}
	return 0
}

func (s *AbilitySystem) Resource() (current, capacity float64) {
	return s.pool.current, s.pool.capacity
}

// --- per-frame update ---

func (s *AbilitySystem) Update(dt time.Duration) {
	if s.weapon == nil || !s.world.Alive(s.player) {
		return
	}
	s.pool.tick(dt)

	interrupted := s.interrupted()
	for _, st := range s.slots {
		if st.cooldown > 0 {
			st.cooldown -= dt
			if st.cooldown < 0 {
				st.cooldown = 0
			}
		}
		if st.def.ComboSteps > 0 && st.comboStep > 0 {
			st.sinceComboSwing += dt
			if st.sinceComboSwing > st.def.ComboWindow {
				st.comboStep = 0 // miss-timed: chain resets
			}
		}
		s.tickCharge(st, dt, interrupted)
		s.tickToggle(st, dt)
	}

	if interrupted {
		return // frozen or dead players trigger nothing
	}
	for _, st := range s.slots {
		if s.input.SlotPressed(st.def.Slot) {
			s.trigger(st)
		}
	}

	// Local movement intent, applied by the movement system this tick.
	if mv, ok := s.tables.Movements.Get(s.player); ok {
		mv.Velocity = s.input.MoveDir().Mul(mv.MaxSpeed)
	}
}

func (s *AbilitySystem) interrupted() bool {
	if h, ok := s.tables.Healths.Get(s.player); ok && h.Dead {
		return true
	}
	if mv, ok := s.tables.Movements.Get(s.player); ok && mv.HasFlag(component.StatusFrozen) {
		return true
	}
	return false
}

func (s *AbilitySystem) tickCharge(st *slotState, dt time.Duration, interrupted bool) {
	if !st.charging {
		return
	}
	if interrupted {
		st.charging = false // cancelled, cost already spent
		st.charge = 0
		return
	}
	if s.input.SlotHeld(st.def.Slot) {
		if st.def.ChargeTime > 0 {
			st.charge += float64(dt) / float64(st.def.ChargeTime)
			if st.charge > 1 {
				st.charge = 1
			}
		}
		return
	}
	// Released: commit the charge.
	s.commitCharge(st)
}

func (s *AbilitySystem) tickToggle(st *slotState, dt time.Duration) {
	if !st.toggleActive {
		return
	}
	s.pool.current -= st.def.Drain * dt.Seconds()
	s.pool.sinceUsed = 0
	if s.pool.current <= 0 {
		s.pool.current = 0
		st.toggleActive = false // exhausted: aura drops on its own
	}
}

func (s *AbilitySystem) trigger(st *slotState) {
	def := st.def
	if st.cooldown > 0 || st.charging {
		return
	}
	if def.Kind == "toggle" {
		s.triggerToggle(st)
		return
	}
	if def.Cost > 0 && !s.pool.spend(float64(def.Cost)) {
		return
	}

	switch def.Kind {
	case "charge":
		st.charging = true
		st.charge = 0
		// Cooldown starts at commit, not at the start of the hold.
		return
	case "projectile":
		s.fireProjectile(st, 0)
	case "combo":
		s.meleeSwing(st)
	case "debuff":
		s.applyTargetedDebuff(st)
	case "totem":
		s.placeTotem(st)
	default:
		s.meleeSwing(st)
	}

	st.cooldown = def.Cooldown
	s.announce(st)
}

func (s *AbilitySystem) triggerToggle(st *slotState) {
	if st.toggleActive {
		st.toggleActive = false
		st.cooldown = st.def.Cooldown
		return
	}
	if s.pool.current <= 0 {
		return // nothing to drain
	}
	st.toggleActive = true
	st.cooldown = st.def.Cooldown
	s.announce(st)
}

func (s *AbilitySystem) commitCharge(st *slotState) {
	charge := st.charge
	st.charging = false
	st.charge = 0
	st.cooldown = st.def.Cooldown
	s.fireProjectile(st, charge)
	s.announce(st)
}

func (s *AbilitySystem) fireProjectile(st *slotState, charge float64) {
	def := st.def
	pos, dir, ok := s.aim()
	if !ok {
		return
	}
	dmg := s.calc.AbilityDamage(scripting.AbilityContext{
		Weapon:      s.weapon.ID,
		Slot:        def.Slot,
		PlayerLevel: s.level,
		Charge:      charge,
	})
	var homing ecs.EntityID
	if def.Homing {
		homing = s.nearestEnemy(pos, def.ProjMaxDist)
	}
	s.projs.Spawn(ProjectileSpawn{
		Owner:          s.player,
		Origin:         pos,
		Direction:      dir,
		Speed:          def.ProjSpeed,
		Radius:         def.ProjRadius,
		Mask:           component.LayerEnemy | component.LayerEnvironment,
		Damage:         dmg,
		DamageType:     def.DamageType,
		Piercing:       def.Piercing,
		LocalShot:      true,
		Lifetime:       def.ProjLifetime,
		MaxDistance:    def.ProjMaxDist,
		HomingTarget:   homing,
		TurnRate:       def.TurnRate,
		EffectKind:     def.EffectKind,
		EffectDuration: def.EffectDuration,
	})
}

// meleeSwing advances the combo chain and damages enemies within reach in
// front of the player. Rage weapons build rage per connected swing.
func (s *AbilitySystem) meleeSwing(st *slotState) {
	def := st.def
	if def.ComboSteps > 0 {
		st.comboStep = st.comboStep%def.ComboSteps + 1
		st.sinceComboSwing = 0
	}
	pos, dir, ok := s.aim()
	if !ok {
		return
	}
	dmg := s.calc.AbilityDamage(scripting.AbilityContext{
		Weapon:      s.weapon.ID,
		Slot:        def.Slot,
		PlayerLevel: s.level,
		ComboStep:   st.comboStep,
	})
	center := pos.Add(dir.Mul(meleeReach * 0.5))
	hitAny := false
	// Queued rather than applied inline so melee hits resolve in the combat
	// phase alongside contact damage, after this tick's input settles.
	s.collision.QuerySphere(center, meleeReach, component.LayerEnemy, func(target ecs.EntityID) {
		s.combat.QueueDamage(DamageEvent{
			Source:     s.player,
			Target:     target,
			Amount:     dmg,
			DamageType: def.DamageType,
			LocalRoll:  true,
		})
		hitAny = true
	})
	if hitAny && s.pool.kind == "rage" {
		s.pool.current += rageGainPerHit
		if s.pool.current > s.pool.capacity {
			s.pool.current = s.pool.capacity
		}
	}
}

func (s *AbilitySystem) applyTargetedDebuff(st *slotState) {
	def := st.def
	pos, _, ok := s.aim()
	if !ok {
		return
	}
	target := s.nearestEnemy(pos, 12)
	if target.IsZero() {
		return
	}
	s.effects.Apply(target, def.EffectKind, def.EffectDuration, EffectPayload{Source: s.player})
}

func (s *AbilitySystem) placeTotem(st *slotState) {
	def := st.def
	pos, _, ok := s.aim()
	if !ok {
		return
	}
	s.effects.Apply(s.player, def.EffectKind, def.EffectDuration,
		EffectPayload{Source: s.player, Position: pos})
}

func (s *AbilitySystem) aim() (pos, dir mgl64.Vec3, ok bool) {
	tr, found := s.tables.Transforms.Get(s.player)
	if !found {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	forward := tr.Rot.Rotate(mgl64.Vec3{0, 0, 1})
	if forward.Len() < 1e-9 {
		forward = mgl64.Vec3{0, 0, 1}
	}
	return tr.Pos, forward.Normalize(), true
}

func (s *AbilitySystem) nearestEnemy(from mgl64.Vec3, radius float64) ecs.EntityID {
	if radius <= 0 {
		radius = 20
	}
	var best ecs.EntityID
	bestDist := radius * radius
	ecs.Each2(s.tables.EnemyTags, s.tables.Transforms,
		func(id ecs.EntityID, _ *component.EnemyTag, tr *component.Transform) {
			if h, ok := s.tables.Healths.Get(id); ok && h.Dead {
				return
			}
			d := tr.Pos.Sub(from)
			if dd := d.Dot(d); dd < bestDist {
				bestDist = dd
				best = id
			}
		})
	return best
}

func (s *AbilitySystem) announce(st *slotState) {
	if s.sender == nil {
		return
	}
	pos, dir, ok := s.aim()
	if !ok {
		return
	}
	s.sender.SendAbilityEvent(st.def.Slot, st.def.Name, pos, dir)
}
