package data

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AbilityDef is the static template for one ability slot of a weapon.
type AbilityDef struct {
	Slot       int
	Name       string
	Kind       string // "attack", "projectile", "charge", "toggle", "combo", "debuff", "totem"
	Cooldown   time.Duration
	Cost       int     // resource cost per trigger (toggles use Drain instead)
	Drain      float64 // resource per second while a toggle is active
	ChargeTime time.Duration

	ComboSteps  int           // combo chain length (0 = not a combo ability)
	ComboWindow time.Duration // max gap between successive combo swings

	// Projectile parameters, used when Kind is "projectile" or "charge".
	ProjSpeed    float64
	ProjRadius   float64
	ProjLifetime time.Duration
	ProjMaxDist  float64
	Piercing     bool
	Homing       bool
	TurnRate     float64 // radians/second once homing arms
	DamageType   string

	// Effect parameters, used when Kind is "debuff" or "totem".
	EffectKind     string
	EffectDuration time.Duration
}

// WeaponDef is one weapon/subclass template.
type WeaponDef struct {
	ID        string
	Name      string
	Resource  string // "mana", "energy", "rage"
	Abilities []AbilityDef
}

// Ability returns the ability in the given slot, or nil.
func (w *WeaponDef) Ability(slot int) *AbilityDef {
	for i := range w.Abilities {
		if w.Abilities[i].Slot == slot {
			return &w.Abilities[i]
		}
	}
	return nil
}

// WeaponTable holds all weapon templates indexed by ID.
type WeaponTable struct {
	weapons map[string]*WeaponDef
}

// NewWeaponTable builds a table from in-memory templates.
func NewWeaponTable(defs ...*WeaponDef) *WeaponTable {
	t := &WeaponTable{weapons: make(map[string]*WeaponDef, len(defs))}
	for _, d := range defs {
		t.weapons[d.ID] = d
	}
	return t
}

func (t *WeaponTable) Get(id string) *WeaponDef {
	return t.weapons[id]
}

func (t *WeaponTable) Count() int {
	return len(t.weapons)
}

// --- YAML loading ---

type abilityEntry struct {
	Slot          int     `yaml:"slot"`
	Name          string  `yaml:"name"`
	Kind          string  `yaml:"kind"`
	CooldownMs    int     `yaml:"cooldown_ms"`
	Cost          int     `yaml:"cost"`
	Drain         float64 `yaml:"drain"`
	ChargeTimeMs  int     `yaml:"charge_time_ms"`
	ComboSteps    int     `yaml:"combo_steps"`
	ComboWindowMs int     `yaml:"combo_window_ms"`
	ProjSpeed     float64 `yaml:"proj_speed"`
	ProjRadius    float64 `yaml:"proj_radius"`
	ProjLifeMs    int     `yaml:"proj_lifetime_ms"`
	ProjMaxDist   float64 `yaml:"proj_max_distance"`
	Piercing      bool    `yaml:"piercing"`
	Homing        bool    `yaml:"homing"`
	TurnRate      float64 `yaml:"turn_rate"`
	DamageType    string  `yaml:"damage_type"`
	EffectKind    string  `yaml:"effect_kind"`
	EffectDurMs   int     `yaml:"effect_duration_ms"`
}

type weaponEntry struct {
	ID        string         `yaml:"id"`
	Name      string         `yaml:"name"`
	Resource  string         `yaml:"resource"`
	Abilities []abilityEntry `yaml:"abilities"`
}

// LoadWeaponTable loads weapon templates from a YAML file.
func LoadWeaponTable(path string) (*WeaponTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weapon table %s: %w", path, err)
	}
	var entries []weaponEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse weapon table %s: %w", path, err)
	}

	t := &WeaponTable{weapons: make(map[string]*WeaponDef, len(entries))}
	for _, e := range entries {
		w := &WeaponDef{
			ID:        e.ID,
			Name:      e.Name,
			Resource:  e.Resource,
			Abilities: make([]AbilityDef, 0, len(e.Abilities)),
		}
		for _, a := range e.Abilities {
			w.Abilities = append(w.Abilities, AbilityDef{
				Slot:           a.Slot,
				Name:           a.Name,
				Kind:           a.Kind,
				Cooldown:       time.Duration(a.CooldownMs) * time.Millisecond,
				Cost:           a.Cost,
				Drain:          a.Drain,
				ChargeTime:     time.Duration(a.ChargeTimeMs) * time.Millisecond,
				ComboSteps:     a.ComboSteps,
				ComboWindow:    time.Duration(a.ComboWindowMs) * time.Millisecond,
				ProjSpeed:      a.ProjSpeed,
				ProjRadius:     a.ProjRadius,
				ProjLifetime:   time.Duration(a.ProjLifeMs) * time.Millisecond,
				ProjMaxDist:    a.ProjMaxDist,
				Piercing:       a.Piercing,
				Homing:         a.Homing,
				TurnRate:       a.TurnRate,
				DamageType:     a.DamageType,
				EffectKind:     a.EffectKind,
				EffectDuration: time.Duration(a.EffectDurMs) * time.Millisecond,
			})
		}
		t.weapons[w.ID] = w
	}
	return t, nil
}
