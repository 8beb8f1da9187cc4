// Package message defines the wire envelope and typed payloads exchanged
// with the game server, plus the kind-keyed dispatch registry.
package message

import (
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Message kinds carried on the wire.
const (
	KindWelcome          = "welcome"
	KindJoin             = "join"
	KindLeave            = "leave"
	KindPosition         = "position"
	KindAnimation        = "animation"
	KindAttack           = "attack"
	KindAbilityUsed      = "ability_used"
	KindDamage           = "damage"
	KindHealing          = "healing"
	KindDebuff           = "debuff"
	KindStealth          = "stealth"
	KindKnockback        = "knockback"
	KindShieldChanged    = "shield_changed"
	KindEssenceChanged   = "essence_changed"
	KindExperienceGained = "experience_gained"
	KindKill             = "kill"
)

// Envelope wraps every message; Data decodes per Kind.
type Envelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Encode builds the wire bytes for one payload.
func Encode(kind string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	return json.Marshal(Envelope{Kind: kind, Data: data})
}

// Decode parses the envelope without touching the payload.
func Decode(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Kind == "" {
		return nil, fmt.Errorf("decode envelope: missing kind")
	}
	return &env, nil
}

// Vec3 is the wire form of a position or direction.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func FromVec3(v mgl64.Vec3) Vec3  { return Vec3{X: v.X(), Y: v.Y(), Z: v.Z()} }
func (v Vec3) Vec3() mgl64.Vec3   { return mgl64.Vec3{v.X, v.Y, v.Z} }

// Quat is the wire form of an orientation.
type Quat struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func FromQuat(q mgl64.Quat) Quat { return Quat{W: q.W, X: q.X(), Y: q.Y(), Z: q.Z()} }
func (q Quat) Quat() mgl64.Quat  { return mgl64.Quat{W: q.W, V: mgl64.Vec3{q.X, q.Y, q.Z}} }

// Welcome is the server's session acknowledgement assigning the local
// player's identity. Until it arrives the client broadcasts with a zero ID
// and cannot be addressed by server verdicts.
type Welcome struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// Join announces an actor entering the local player's area.
type Join struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Weapon    string `json:"weapon,omitempty"`
	IsEnemy   bool   `json:"is_enemy,omitempty"`
	EnemyKind string `json:"enemy_kind,omitempty"`
	EnemyTier int    `json:"enemy_tier,omitempty"`
	Pos       Vec3   `json:"pos"`
	Rot       Quat   `json:"rot"`
	Health    int    `json:"health"`
	MaxHealth int    `json:"max_health"`
	Shield    int    `json:"shield,omitempty"`
	MaxShield int    `json:"max_shield,omitempty"`
}

// Leave announces an actor leaving the area or despawning.
type Leave struct {
	ID int64 `json:"id"`
}

// Position is a movement snapshot stamped with server time (unix ms).
type Position struct {
	ID  int64 `json:"id"`
	Pos Vec3  `json:"pos"`
	Rot Quat  `json:"rot"`
	At  int64 `json:"at"`
}

// Animation reports a remote actor's animation clip change.
type Animation struct {
	ID    int64   `json:"id"`
	Clip  string  `json:"clip"`
	Speed float64 `json:"speed,omitempty"`
}

// Attack reports a basic attack swing (cosmetic; damage arrives separately).
type Attack struct {
	ID   int64  `json:"id"`
	Slot int    `json:"slot"`
	Name string `json:"name,omitempty"`
	Pos  Vec3   `json:"pos"`
	Dir  Vec3   `json:"dir"`
}

// AbilityUsed reports an ability trigger, including enough to replay its
// visual (projectile spawn, swing arc) on observers.
type AbilityUsed struct {
	ID   int64  `json:"id"`
	Slot int    `json:"slot"`
	Name string `json:"name,omitempty"`
	Pos  Vec3   `json:"pos"`
	Dir  Vec3   `json:"dir"`
}

// Damage is the server-authoritative damage verdict.
type Damage struct {
	Source     int64  `json:"source,omitempty"`
	Target     int64  `json:"target"`
	Amount     int    `json:"amount"`
	DamageType string `json:"damage_type,omitempty"`
	Critical   bool   `json:"critical,omitempty"`

	// Server verdicts carry the post-damage outcome so mirrors reconcile
	// instead of drifting on client-side reapplication. Outbound hit
	// reports leave both zero.
	WasKilled bool `json:"was_killed,omitempty"`
	NewHealth int  `json:"new_health,omitempty"`
}

// Healing is the server-authoritative healing verdict.
type Healing struct {
	Source   int64  `json:"source,omitempty"`
	Target   int64  `json:"target"`
	Amount   int    `json:"amount"`
	HealType string `json:"heal_type,omitempty"`
}

// Debuff applies a timed effect to a target.
type Debuff struct {
	Source     int64  `json:"source,omitempty"`
	Target     int64  `json:"target"`
	Effect     string `json:"effect"`
	DurationMs int    `json:"duration_ms"`
}

// Stealth toggles an actor's stealth visual.
type Stealth struct {
	ID     int64 `json:"id"`
	Active bool  `json:"active"`
}

// Knockback displaces a target over a short duration.
type Knockback struct {
	Target     int64   `json:"target"`
	Dir        Vec3    `json:"dir"`
	Speed      float64 `json:"speed"`
	DurationMs int     `json:"duration_ms"`
}

// ShieldChanged reconciles a target's shield values.
type ShieldChanged struct {
	ID        int64 `json:"id"`
	Shield    int   `json:"shield"`
	MaxShield int   `json:"max_shield"`
}

// EssenceChanged reconciles a resource currency mirror.
type EssenceChanged struct {
	ID       int64  `json:"id"`
	Kind     string `json:"kind"`
	Current  int    `json:"current"`
	Capacity int    `json:"capacity"`
}

// ExperienceGained reports progression; Level carries the post-gain level.
type ExperienceGained struct {
	ID     int64 `json:"id"`
	Amount int64 `json:"amount"`
	Total  int64 `json:"total"`
	Level  int   `json:"level"`
}

// Kill credits a kill to an actor. The victim's death itself arrives through
// the damage/health stream; this message only moves the scoreboard.
type Kill struct {
	Killer int64 `json:"killer"`
	Victim int64 `json:"victim"`
}
