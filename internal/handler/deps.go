// Package handler translates server messages into simulation state. Each
// message kind gets one handler closing over the shared Deps.
package handler

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/emberveil/client/internal/component"
	"github.com/emberveil/client/internal/config"
	"github.com/emberveil/client/internal/core/ecs"
	"github.com/emberveil/client/internal/core/event"
	"github.com/emberveil/client/internal/data"
	"github.com/emberveil/client/internal/net/message"
	"github.com/emberveil/client/internal/system"
	"github.com/emberveil/client/internal/world"
)

// LevelSetter receives progression updates for the local player.
type LevelSetter interface {
	SetLevel(level int)
}

// IdentityBinder rebinds the published identity once the server assigns the
// local player's ID. Satisfied by system.BroadcastSystem.
type IdentityBinder interface {
	BindLocal(player ecs.EntityID, serverID int64)
}

// Deps bundles everything the message handlers touch.
type Deps struct {
	Log    *zap.Logger
	Cfg    *config.Config
	World  *ecs.World
	Tables *component.Tables

	Actors  *world.Actors
	Mapping *world.EntityMapping
	Bus     *event.Bus

	Combat      *system.CombatSystem
	Effects     *system.EffectSystem
	Projectiles *system.ProjectileSystem
	Interp      *system.InterpolationSystem

	Weapons *data.WeaponTable
	Enemies *data.EnemyTable

	// LocalPlayer is the locally simulated entity. LocalServerID starts at
	// zero and is assigned by the welcome message, which also binds the
	// entity into Mapping so server verdicts can address it. Ability and
	// Broadcast may be nil (no loadout equipped, offline mode).
	LocalPlayer   ecs.EntityID
	LocalServerID int64
	Ability       LevelSetter
	Broadcast     IdentityBinder
}

// RegisterAll binds every inbound message kind.
func RegisterAll(reg *message.Registry, d *Deps) {
	reg.Register(message.KindWelcome, d.handleWelcome)
	reg.Register(message.KindJoin, d.handleJoin)
	reg.Register(message.KindLeave, d.handleLeave)
	reg.Register(message.KindPosition, d.handlePosition)
	reg.Register(message.KindAnimation, d.handleAnimation)
	reg.Register(message.KindAttack, d.handleAttack)
	reg.Register(message.KindAbilityUsed, d.handleAbilityUsed)
	reg.Register(message.KindDamage, d.handleDamage)
	reg.Register(message.KindHealing, d.handleHealing)
	reg.Register(message.KindDebuff, d.handleDebuff)
	reg.Register(message.KindStealth, d.handleStealth)
	reg.Register(message.KindKnockback, d.handleKnockback)
	reg.Register(message.KindShieldChanged, d.handleShieldChanged)
	reg.Register(message.KindEssenceChanged, d.handleEssenceChanged)
	reg.Register(message.KindExperienceGained, d.handleExperienceGained)
	reg.Register(message.KindKill, d.handleKill)
}

func decode[T any](env *message.Envelope) (*T, error) {
	var p T
	if err := json.Unmarshal(env.Data, &p); err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.Kind, err)
	}
	return &p, nil
}

// resolve maps a server ID to a live local entity. Unknown or despawning
// actors return false; callers treat that as a stale target and no-op.
func (d *Deps) resolve(serverID int64) (ecs.EntityID, bool) {
	id, ok := d.Mapping.Resolve(serverID)
	if !ok || !d.World.Alive(id) {
		return 0, false
	}
	return id, true
}
