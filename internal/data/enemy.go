package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EnemyDef is the static template for one enemy kind/tier.
type EnemyDef struct {
	Kind          string
	Tier          int
	Radius        float64
	MaxHealth     int
	MoveSpeed     float64
	ContactDamage int    // dealt when the enemy's trigger volume overlaps a player
	DamageType    string // tag on contact damage
}

// EnemyTable holds enemy templates indexed by kind and tier.
type EnemyTable struct {
	enemies map[enemyKey]*EnemyDef
}

type enemyKey struct {
	kind string
	tier int
}

// NewEnemyTable builds a table from in-memory templates.
func NewEnemyTable(defs ...*EnemyDef) *EnemyTable {
	t := &EnemyTable{enemies: make(map[enemyKey]*EnemyDef, len(defs))}
	for _, d := range defs {
		t.enemies[enemyKey{kind: d.Kind, tier: d.Tier}] = d
	}
	return t
}

func (t *EnemyTable) Get(kind string, tier int) *EnemyDef {
	return t.enemies[enemyKey{kind: kind, tier: tier}]
}

func (t *EnemyTable) Count() int {
	return len(t.enemies)
}

type enemyEntry struct {
	Kind          string  `yaml:"kind"`
	Tier          int     `yaml:"tier"`
	Radius        float64 `yaml:"radius"`
	MaxHealth     int     `yaml:"max_health"`
	MoveSpeed     float64 `yaml:"move_speed"`
	ContactDamage int     `yaml:"contact_damage"`
	DamageType    string  `yaml:"damage_type"`
}

// LoadEnemyTable loads enemy templates from a YAML file.
func LoadEnemyTable(path string) (*EnemyTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read enemy table %s: %w", path, err)
	}
	var entries []enemyEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse enemy table %s: %w", path, err)
	}
	t := &EnemyTable{enemies: make(map[enemyKey]*EnemyDef, len(entries))}
	for _, e := range entries {
		t.enemies[enemyKey{kind: e.Kind, tier: e.Tier}] = &EnemyDef{
			Kind:          e.Kind,
			Tier:          e.Tier,
			Radius:        e.Radius,
			MaxHealth:     e.MaxHealth,
			MoveSpeed:     e.MoveSpeed,
			ContactDamage: e.ContactDamage,
			DamageType:    e.DamageType,
		}
	}
	return t, nil
}
