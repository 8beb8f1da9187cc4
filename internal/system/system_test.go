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
	gw "github.com/emberveil/client/internal/world"
)

// rig builds one fully wired simulation for tests: fixed clock, seeded rng,
// in-memory data tables.
type rig struct {
	world   *ecs.World
	tables  *component.Tables
	numbers *gw.DamageNumbers
	bus     *event.Bus
	clock   *coresys.Clock

	collision   *CollisionSystem
	combat      *CombatSystem
	effects     *EffectSystem
	projectiles *ProjectileSystem
	interp      *InterpolationSystem
	movement    *MovementSystem

	effectTable *data.EffectTable
	enemyTable  *data.EnemyTable
}

func newRig() *rig {
	return newRigCoop(true)
}

func newRigCoop(coop bool) *rig {
	w := ecs.NewWorld()
	tables := component.NewTables(w.Registry())
	numbers := gw.NewDamageNumbers(256)
	bus := event.NewBus()
	clock := coresys.NewClock(time.Unix(1_000_000, 0))
	rng := rand.New(rand.NewSource(1))
	log := zap.NewNop()
	cfg := config.Defaults()

	effectTable := data.NewEffectTable(
		&data.EffectDef{Kind: "frozen", Flag: "frozen", SpeedMultiplier: 0, DefaultDuration: 5 * time.Second},
		&data.EffectDef{Kind: "stunned", Flag: "frozen", DefaultDuration: 3 * time.Second},
		&data.EffectDef{Kind: "slowed", Flag: "slowed", SpeedMultiplier: 0.5, DefaultDuration: 4 * time.Second},
		&data.EffectDef{Kind: "corrupted", Flag: "corrupted", DefaultDuration: 8 * time.Second},
		&data.EffectDef{Kind: "burning", DefaultDuration: 4 * time.Second,
			TickInterval: time.Second, TickDamage: 6, DamageType: "fire"},
		&data.EffectDef{Kind: "heal_totem", DefaultDuration: 6 * time.Second,
			TickInterval: time.Second, TickHeal: 12, TickDamage: 8, PulseRadius: 6},
	)
	enemyTable := data.NewEnemyTable(
		&data.EnemyDef{Kind: "husk", Tier: 1, Radius: 0.6, MaxHealth: 50,
			MoveSpeed: 3, ContactDamage: 12, DamageType: "physical"},
	)

	collision := NewCollisionSystem(tables, cfg.Simulation.GridCellSize)
	combat := NewCombatSystem(tables, enemyTable, numbers, bus, clock,
		collision, cfg.Combat, coop, rng, log)
	effects := NewEffectSystem(w, tables, effectTable, combat, clock, bus, log)
	projectiles := NewProjectileSystem(w, tables, collision, combat, effects, bus)
	interp := NewInterpolationSystem(tables, clock, cfg.Interp)
	movement := NewMovementSystem(tables, effectTable)

	return &rig{
		world:       w,
		tables:      tables,
		numbers:     numbers,
		bus:         bus,
		clock:       clock,
		collision:   collision,
		combat:      combat,
		effects:     effects,
		projectiles: projectiles,
		interp:      interp,
		movement:    movement,
		effectTable: effectTable,
		enemyTable:  enemyTable,
	}
}

func (r *rig) advance(dt time.Duration) {
	r.clock.Advance(dt)
}

func (r *rig) spawnPlayer(pos mgl64.Vec3) ecs.EntityID {
	id := r.world.CreateEntity()
	r.tables.Transforms.Set(id, &component.Transform{Pos: pos, Rot: mgl64.QuatIdent()})
	r.tables.Movements.Set(id, &component.Movement{MaxSpeed: 6})
	r.tables.Healths.Set(id, &component.Health{Current: 100, Max: 100})
	r.tables.Colliders.Set(id, &component.Collider{
		Radius: 0.5,
		Layer:  component.LayerPlayer,
		Mask:   component.LayerPlayer | component.LayerEnemy | component.LayerEnvironment,
		Weight: 1,
	})
	return id
}

func (r *rig) spawnEnemy(pos mgl64.Vec3) ecs.EntityID {
	id := r.world.CreateEntity()
	r.tables.Transforms.Set(id, &component.Transform{Pos: pos, Rot: mgl64.QuatIdent()})
	r.tables.Movements.Set(id, &component.Movement{MaxSpeed: 3})
	r.tables.Healths.Set(id, &component.Health{Current: 50, Max: 50})
	r.tables.EnemyTags.Set(id, &component.EnemyTag{Kind: "husk", Tier: 1})
	r.tables.Colliders.Set(id, &component.Collider{
		Radius:  0.6,
		Layer:   component.LayerEnemy,
		Mask:    component.LayerPlayer | component.LayerEnemy,
		Trigger: true,
		Weight:  2,
	})
	return id
}
