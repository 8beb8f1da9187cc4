package data

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EffectDef is the static template for one timed-effect kind: which movement
// flag it sets, how it throttles speed, and whether it pulses periodically
// (burning damage, totem heal).
type EffectDef struct {
	Kind            string
	Flag            string // "frozen", "slowed", "corrupted", "" = none
	SpeedMultiplier float64
	DefaultDuration time.Duration

	// Periodic pulse while active. Interval 0 = no pulse.
	TickInterval time.Duration
	TickDamage   int
	TickHeal     int
	PulseRadius  float64 // 0 = target only; >0 = area pulse around effect position
	DamageType   string
}

// EffectTable holds effect templates indexed by kind.
type EffectTable struct {
	effects map[string]*EffectDef
}

// NewEffectTable builds a table from in-memory templates.
func NewEffectTable(defs ...*EffectDef) *EffectTable {
	t := &EffectTable{effects: make(map[string]*EffectDef, len(defs))}
	for _, d := range defs {
		t.effects[d.Kind] = d
	}
	return t
}

func (t *EffectTable) Get(kind string) *EffectDef {
	return t.effects[kind]
}

func (t *EffectTable) Count() int {
	return len(t.effects)
}

type effectEntry struct {
	Kind           string  `yaml:"kind"`
	Flag           string  `yaml:"flag"`
	SpeedMult      float64 `yaml:"speed_multiplier"`
	DefaultDurMs   int     `yaml:"default_duration_ms"`
	TickIntervalMs int     `yaml:"tick_interval_ms"`
	TickDamage     int     `yaml:"tick_damage"`
	TickHeal       int     `yaml:"tick_heal"`
	PulseRadius    float64 `yaml:"pulse_radius"`
	DamageType     string  `yaml:"damage_type"`
}

// LoadEffectTable loads effect templates from a YAML file.
func LoadEffectTable(path string) (*EffectTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read effect table %s: %w", path, err)
	}
	var entries []effectEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse effect table %s: %w", path, err)
	}
	t := &EffectTable{effects: make(map[string]*EffectDef, len(entries))}
	for _, e := range entries {
		t.effects[e.Kind] = &EffectDef{
			Kind:            e.Kind,
			Flag:            e.Flag,
			SpeedMultiplier: e.SpeedMult,
			DefaultDuration: time.Duration(e.DefaultDurMs) * time.Millisecond,
			TickInterval:    time.Duration(e.TickIntervalMs) * time.Millisecond,
			TickDamage:      e.TickDamage,
			TickHeal:        e.TickHeal,
			PulseRadius:     e.PulseRadius,
			DamageType:      e.DamageType,
		}
	}
	return t, nil
}
