package component

import "github.com/emberveil/client/internal/core/ecs"

// Tables bundles every component store. One per-kind typed table, all
// registered with the world registry so destroy strips an entity everywhere.
type Tables struct {
	Transforms  *ecs.Store[Transform]
	Movements   *ecs.Store[Movement]
	Healths     *ecs.Store[Health]
	Shields     *ecs.Store[Shield]
	Colliders   *ecs.Store[Collider]
	EnemyTags   *ecs.Store[EnemyTag]
	Remotes     *ecs.Store[Remote]
	Projectiles *ecs.Store[Projectile]
	Interps     *ecs.Store[InterpBuffer]
}

func NewTables(reg *ecs.Registry) *Tables {
	t := &Tables{
		Transforms:  ecs.NewStore[Transform](),
		Movements:   ecs.NewStore[Movement](),
		Healths:     ecs.NewStore[Health](),
		Shields:     ecs.NewStore[Shield](),
		Colliders:   ecs.NewStore[Collider](),
		EnemyTags:   ecs.NewStore[EnemyTag](),
		Remotes:     ecs.NewStore[Remote](),
		Projectiles: ecs.NewStore[Projectile](),
		Interps:     ecs.NewStore[InterpBuffer](),
	}
	reg.Register(t.Transforms)
	reg.Register(t.Movements)
	reg.Register(t.Healths)
	reg.Register(t.Shields)
	reg.Register(t.Colliders)
	reg.Register(t.EnemyTags)
	reg.Register(t.Remotes)
	reg.Register(t.Projectiles)
	reg.Register(t.Interps)
	return t
}
