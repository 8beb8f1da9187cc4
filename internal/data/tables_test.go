package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func writeYAML(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestLoadWeaponTable(t *testing.T) {
	path := writeYAML(t, "weapons.yaml", `
- id: frostbow
  name: Frostbow
  resource: energy
  abilities:
    - slot: 1
      name: Piercing Shot
      kind: projectile
      cooldown_ms: 900
      cost: 10
      proj_speed: 40
      proj_radius: 0.3
      proj_lifetime_ms: 2000
      piercing: true
    - slot: 2
      name: Glacial Arrow
      kind: charge
      charge_time_ms: 1500
      homing: true
      turn_rate: 2.5
`)
	table, err := LoadWeaponTable(path)
	assert.NoError(t, err)
	assert.Equal(t, 1, table.Count())

	w := table.Get("frostbow")
	assert.NotNil(t, w)
	assert.Equal(t, "energy", w.Resource)

	shot := w.Ability(1)
	assert.NotNil(t, shot)
	assert.Equal(t, "projectile", shot.Kind)
	assert.Equal(t, 900*time.Millisecond, shot.Cooldown)
	assert.Equal(t, 2*time.Second, shot.ProjLifetime)
	assert.True(t, shot.Piercing)

	arrow := w.Ability(2)
	assert.Equal(t, 1500*time.Millisecond, arrow.ChargeTime)
	assert.True(t, arrow.Homing)
	assert.Equal(t, 2.5, arrow.TurnRate)

	assert.Nil(t, w.Ability(9))
	assert.Nil(t, table.Get("warhammer"))
}

func TestLoadEffectTable(t *testing.T) {
	path := writeYAML(t, "effects.yaml", `
- kind: burning
  default_duration_ms: 4000
  tick_interval_ms: 1000
  tick_damage: 6
  damage_type: fire
- kind: slowed
  flag: slowed
  speed_multiplier: 0.5
  default_duration_ms: 3000
`)
	table, err := LoadEffectTable(path)
	assert.NoError(t, err)
	assert.Equal(t, 2, table.Count())

	burning := table.Get("burning")
	assert.Equal(t, time.Second, burning.TickInterval)
	assert.Equal(t, 6, burning.TickDamage)

	slowed := table.Get("slowed")
	assert.Equal(t, "slowed", slowed.Flag)
	assert.Equal(t, 0.5, slowed.SpeedMultiplier)
}

func TestLoadEnemyTableKeysByKindAndTier(t *testing.T) {
	path := writeYAML(t, "enemies.yaml", `
- kind: husk
  tier: 1
  radius: 0.6
  max_health: 50
  move_speed: 3
  contact_damage: 12
  damage_type: physical
- kind: husk
  tier: 2
  radius: 0.8
  max_health: 120
  move_speed: 3.5
  contact_damage: 20
  damage_type: physical
`)
	table, err := LoadEnemyTable(path)
	assert.NoError(t, err)
	assert.Equal(t, 2, table.Count())

	assert.Equal(t, 50, table.Get("husk", 1).MaxHealth)
	assert.Equal(t, 120, table.Get("husk", 2).MaxHealth)
	assert.Nil(t, table.Get("husk", 3))
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := writeYAML(t, "bad.yaml", "{ not: [valid")
	_, err := LoadWeaponTable(path)
	assert.Error(t, err)
}

func TestShippedTablesParse(t *testing.T) {
	weapons, err := LoadWeaponTable(filepath.Join("..", "..", "data", "yaml", "weapon_list.yaml"))
	assert.NoError(t, err)
	assert.Equal(t, 4, weapons.Count())

	effects, err := LoadEffectTable(filepath.Join("..", "..", "data", "yaml", "effect_list.yaml"))
	assert.NoError(t, err)
	assert.Greater(t, effects.Count(), 0)

	enemies, err := LoadEnemyTable(filepath.Join("..", "..", "data", "yaml", "enemy_list.yaml"))
	assert.NoError(t, err)
	assert.Greater(t, enemies.Count(), 0)
}
