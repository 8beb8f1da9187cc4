package handler

import (
	"time"

	"go.uber.org/zap"

	"github.com/emberveil/client/internal/component"
	"github.com/emberveil/client/internal/core/ecs"
	"github.com/emberveil/client/internal/core/event"
	"github.com/emberveil/client/internal/net/message"
	"github.com/emberveil/client/internal/system"
	"github.com/emberveil/client/internal/world"
)

const remotePlayerRadius = 0.5

// handleWelcome adopts the server-assigned identity for the local player:
// binds the local entity into the mapping so inbound verdicts resolve to it,
// and repoints the broadcast identity away from the placeholder zero ID.
func (d *Deps) handleWelcome(env *message.Envelope) error {
	p, err := decode[message.Welcome](env)
	if err != nil {
		return err
	}
	if d.LocalPlayer.IsZero() {
		d.Log.Warn("welcome before local player spawn", zap.Int64("server_id", p.ID))
		return nil
	}
	if !d.Mapping.Bind(p.ID, d.LocalPlayer) {
		d.Log.Warn("welcome for an already bound id", zap.Int64("server_id", p.ID))
		return nil
	}
	d.LocalServerID = p.ID
	if d.Broadcast != nil {
		d.Broadcast.BindLocal(d.LocalPlayer, p.ID)
	}
	d.Log.Info("server identity assigned",
		zap.Int64("server_id", p.ID), zap.String("name", p.Name))
	return nil
}

func (d *Deps) handleJoin(env *message.Envelope) error {
	p, err := decode[message.Join](env)
	if err != nil {
		return err
	}
	if _, exists := d.Mapping.Resolve(p.ID); exists {
		d.Log.Debug("duplicate join ignored", zap.Int64("server_id", p.ID))
		return nil
	}

	id := d.World.CreateEntity()
	d.Tables.Transforms.Set(id, &component.Transform{Pos: p.Pos.Vec3(), Rot: p.Rot.Quat()})
	d.Tables.Remotes.Set(id, &component.Remote{ServerID: p.ID})
	d.Tables.Interps.Set(id, &component.InterpBuffer{})
	d.Tables.Healths.Set(id, &component.Health{Current: p.Health, Max: p.MaxHealth})
	if p.MaxShield > 0 {
		d.Tables.Shields.Set(id, &component.Shield{Current: p.Shield, Max: p.MaxShield})
	}

	actor := &world.NetworkedActor{
		ServerID:    p.ID,
		DisplayName: p.Name,
		Weapon:      p.Weapon,
		IsEnemy:     p.IsEnemy,
		EnemyKind:   p.EnemyKind,
		EnemyTier:   p.EnemyTier,
		Pos:         p.Pos.Vec3(),
		Rot:         p.Rot.Quat(),
		Health:      p.Health,
		MaxHealth:   p.MaxHealth,
		Shield:      p.Shield,
		MaxShield:   p.MaxShield,
	}

	if p.IsEnemy {
		radius := 0.6
		speed := 3.0
		if def := d.Enemies.Get(p.EnemyKind, p.EnemyTier); def != nil {
			radius = def.Radius
			speed = def.MoveSpeed
		} else {
			d.Log.Warn("enemy kind missing from table",
				zap.String("kind", p.EnemyKind), zap.Int("tier", p.EnemyTier))
		}
		d.Tables.EnemyTags.Set(id, &component.EnemyTag{Kind: p.EnemyKind, Tier: p.EnemyTier})
		d.Tables.Movements.Set(id, &component.Movement{MaxSpeed: speed})
		d.Tables.Colliders.Set(id, &component.Collider{
			Radius: radius,
			Layer:  component.LayerEnemy,
			Mask:   component.LayerPlayer | component.LayerEnemy | component.LayerEnvironment,
			Weight: 2,
		})
	} else {
		d.Tables.Movements.Set(id, &component.Movement{MaxSpeed: 6})
		d.Tables.Colliders.Set(id, &component.Collider{
			Radius: remotePlayerRadius,
			Layer:  component.LayerPlayer,
			Mask:   component.LayerPlayer | component.LayerEnemy | component.LayerEnvironment,
			Weight: 1,
		})
	}

	d.Actors.Add(actor)
	d.Mapping.Bind(p.ID, id)
	d.Log.Debug("actor joined",
		zap.Int64("server_id", p.ID), zap.String("name", p.Name), zap.Bool("enemy", p.IsEnemy))
	return nil
}

func (d *Deps) handleLeave(env *message.Envelope) error {
	p, err := decode[message.Leave](env)
	if err != nil {
		return err
	}
	local, known := d.Mapping.Resolve(p.ID)
	if !d.Mapping.MarkGone(p.ID) {
		d.Log.Debug("leave for unknown actor", zap.Int64("server_id", p.ID))
		return nil
	}
	if known {
		event.Emit(d.Bus, event.ActorDeparted{ServerID: p.ID, Entity: local})
	}
	return nil
}

func (d *Deps) handlePosition(env *message.Envelope) error {
	p, err := decode[message.Position](env)
	if err != nil {
		return err
	}
	id, ok := d.resolve(p.ID)
	if !ok {
		d.Log.Debug("position for unknown actor", zap.Int64("server_id", p.ID))
		return nil
	}
	at := time.UnixMilli(p.At)
	d.Interp.Feed(id, at, p.Pos.Vec3(), p.Rot.Quat())
	if a := d.Actors.Get(p.ID); a != nil {
		a.Pos = p.Pos.Vec3()
		a.Rot = p.Rot.Quat()
	}
	return nil
}

func (d *Deps) handleAnimation(env *message.Envelope) error {
	p, err := decode[message.Animation](env)
	if err != nil {
		return err
	}
	a := d.Actors.Get(p.ID)
	if a == nil {
		return nil
	}
	a.AnimClip = p.Clip
	return nil
}

func (d *Deps) handleAttack(env *message.Envelope) error {
	p, err := decode[message.Attack](env)
	if err != nil {
		return err
	}
	a := d.Actors.Get(p.ID)
	if a == nil {
		d.Log.Debug("attack from unknown actor", zap.Int64("server_id", p.ID))
		return nil
	}
	// The swing itself is cosmetic; the authoritative hit arrives as a
	// damage message. Mirror the animation so the actor visibly swings.
	clip := p.Name
	if clip == "" {
		clip = "attack"
	}
	a.AnimClip = clip
	return nil
}

// handleAbilityUsed replays a remote cast's visual. Remote projectiles fly
// with zero damage; the authoritative hit arrives as a damage message.
func (d *Deps) handleAbilityUsed(env *message.Envelope) error {
	p, err := decode[message.AbilityUsed](env)
	if err != nil {
		return err
	}
	owner, ok := d.resolve(p.ID)
	if !ok {
		d.Log.Debug("ability from unknown actor", zap.Int64("server_id", p.ID))
		return nil
	}
	a := d.Actors.Get(p.ID)
	if a == nil || a.Weapon == "" {
		return nil
	}
	wpn := d.Weapons.Get(a.Weapon)
	if wpn == nil {
		return nil
	}
	def := wpn.Ability(p.Slot)
	if def == nil || (def.Kind != "projectile" && def.Kind != "charge") {
		return nil
	}
	d.Projectiles.Spawn(system.ProjectileSpawn{
		Owner:       owner,
		Origin:      p.Pos.Vec3(),
		Direction:   p.Dir.Vec3(),
		Speed:       def.ProjSpeed,
		Radius:      def.ProjRadius,
		Mask:        component.LayerEnvironment,
		Piercing:    def.Piercing,
		Lifetime:    def.ProjLifetime,
		MaxDistance: def.ProjMaxDist,
	})
	return nil
}

func (d *Deps) handleDamage(env *message.Envelope) error {
	p, err := decode[message.Damage](env)
	if err != nil {
		return err
	}
	target, ok := d.resolve(p.Target)
	if !ok {
		return nil // target already despawning
	}
	source, _ := d.resolve(p.Source)
	d.Combat.ApplyDamage(system.DamageEvent{
		Source:       source,
		Target:       target,
		Amount:       p.Amount,
		DamageType:   p.DamageType,
		Critical:     p.Critical,
		BypassInvuln: true,
	})
	// Snap to the server's post-verdict outcome. Local application alone
	// drifts whenever the server saw different shields or modifiers. A
	// zero NewHealth without the kill flag means the field was absent.
	if p.WasKilled || p.NewHealth > 0 {
		d.Combat.ReconcileHealth(target, p.NewHealth, p.WasKilled)
	}
	d.syncActorHealth(p.Target, target)
	return nil
}

func (d *Deps) handleHealing(env *message.Envelope) error {
	p, err := decode[message.Healing](env)
	if err != nil {
		return err
	}
	target, ok := d.resolve(p.Target)
	if !ok {
		return nil
	}
	d.Combat.ApplyHealing(target, p.Amount, p.HealType)
	d.syncActorHealth(p.Target, target)
	return nil
}

func (d *Deps) handleDebuff(env *message.Envelope) error {
	p, err := decode[message.Debuff](env)
	if err != nil {
		return err
	}
	target, ok := d.resolve(p.Target)
	if !ok {
		return nil
	}
	source, _ := d.resolve(p.Source)
	d.Effects.Apply(target, p.Effect,
		time.Duration(p.DurationMs)*time.Millisecond,
		system.EffectPayload{Source: source})
	return nil
}

func (d *Deps) handleStealth(env *message.Envelope) error {
	p, err := decode[message.Stealth](env)
	if err != nil {
		return err
	}
	if a := d.Actors.Get(p.ID); a != nil {
		a.Stealthed = p.Active
	}
	return nil
}

func (d *Deps) handleKnockback(env *message.Envelope) error {
	p, err := decode[message.Knockback](env)
	if err != nil {
		return err
	}
	target, ok := d.resolve(p.Target)
	if !ok {
		return nil
	}
	dir := p.Dir.Vec3()
	if dir.Len() < 1e-9 {
		return nil
	}
	mv, found := d.Tables.Movements.Get(target)
	if !found {
		return nil
	}
	mv.Knockback = component.Knockback{
		Dir:       dir.Normalize(),
		Speed:     p.Speed,
		Remaining: time.Duration(p.DurationMs) * time.Millisecond,
	}
	return nil
}

func (d *Deps) handleShieldChanged(env *message.Envelope) error {
	p, err := decode[message.ShieldChanged](env)
	if err != nil {
		return err
	}
	target, ok := d.resolve(p.ID)
	if !ok {
		return nil
	}
	sh, found := d.Tables.Shields.Get(target)
	if !found {
		sh = &component.Shield{}
		d.Tables.Shields.Set(target, sh)
	}
	sh.Current = p.Shield
	sh.Max = p.MaxShield
	if a := d.Actors.Get(p.ID); a != nil {
		a.Shield = p.Shield
		a.MaxShield = p.MaxShield
	}
	return nil
}

func (d *Deps) handleEssenceChanged(env *message.Envelope) error {
	p, err := decode[message.EssenceChanged](env)
	if err != nil {
		return err
	}
	a := d.Actors.Get(p.ID)
	if a == nil {
		return nil
	}
	switch p.Kind {
	case "mana":
		a.Mana = p.Current
	case "energy":
		a.Energy = p.Current
	case "rage":
		a.Rage = p.Current
	case "essence":
		a.Essence = p.Current
	}
	return nil
}

func (d *Deps) handleExperienceGained(env *message.Envelope) error {
	p, err := decode[message.ExperienceGained](env)
	if err != nil {
		return err
	}
	if a := d.Actors.Get(p.ID); a != nil {
		a.Experience = p.Total
	}
	if p.ID == d.LocalServerID && d.Ability != nil && p.Level > 0 {
		d.Ability.SetLevel(p.Level)
	}
	return nil
}

func (d *Deps) handleKill(env *message.Envelope) error {
	p, err := decode[message.Kill](env)
	if err != nil {
		return err
	}
	if a := d.Actors.Get(p.Killer); a != nil {
		a.Kills++
	}
	return nil
}

// syncActorHealth mirrors post-damage entity health back onto the actor
// registry for HUD consumers.
func (d *Deps) syncActorHealth(serverID int64, target ecs.EntityID) {
	a := d.Actors.Get(serverID)
	if a == nil {
		return
	}
	if h, ok := d.Tables.Healths.Get(target); ok {
		a.Health = h.Current
		a.MaxHealth = h.Max
	}
	if sh, ok := d.Tables.Shields.Get(target); ok {
		a.Shield = sh.Current
		a.MaxShield = sh.Max
	}
}
