package systems

import (
	"testing"

	"github.com/decker502/actioncombo/internal/clip"
	"github.com/decker502/actioncombo/internal/geom"
	"github.com/decker502/actioncombo/pkg/action"
	"github.com/decker502/actioncombo/pkg/components"
	"github.com/decker502/actioncombo/pkg/ecs"
)

func effect(em *ecs.EntityManager, id int) (*components.EffectComponent, bool) {
	return ecs.GetComponent[*components.EffectComponent](em, ecs.EntityID(id))
}

func TestEffectFollowsOwner(t *testing.T) {
	em := ecs.NewEntityManager()
	system := NewEffectSystem(em)
	owner := spawn(em, fighter{})
	fx := system.For(owner)

	local := geom.NewTransform(geom.V(0, 1, 1))
	dynamic := fx.AddEffect("trail", local, action.EffectLifetime{Kind: clip.EffectDynamic})
	fixed := fx.AddEffect("crack", local, action.EffectLifetime{Kind: clip.EffectFixed})

	tr, _ := ecs.GetComponent[*components.TransformComponent](em, owner)
	tr.Transform.Position = geom.V(5, 0, 0)
	system.Update(1.0 / 60)

	d, _ := effect(em, dynamic)
	if got := d.World.Position; got != geom.V(5, 1, 1) {
		t.Errorf("Dynamic effect should follow its owner, at %+v", got)
	}
	f, _ := effect(em, fixed)
	if got := f.World.Position; got != geom.V(0, 1, 1) {
		t.Errorf("Fixed effect should stay where it spawned, at %+v", got)
	}
}

func TestEffectRemoveLingers(t *testing.T) {
	em := ecs.NewEntityManager()
	system := NewEffectSystem(em)
	owner := spawn(em, fighter{})
	fx := system.For(owner)

	id := fx.AddEffect("spark", geom.NewTransform(geom.Vec3{}), action.EffectLifetime{StartLifetime: 0.2, SimulationSpeed: 2})
	fx.RemoveEffect(id)
	fx.RemoveEffect(id)

	c, ok := effect(em, id)
	if !ok || !c.Stopped {
		t.Fatal("Removed effect should stop emitting and linger")
	}

	// 模拟速度 2 倍：0.05 秒消耗 0.1 秒的存活时间
	system.Update(0.05)
	em.RemoveMarkedEntities()
	if !em.Exists(ecs.EntityID(id)) {
		t.Fatal("Effect should still linger")
	}

	system.Update(0.05)
	em.RemoveMarkedEntities()
	if em.Exists(ecs.EntityID(id)) {
		t.Error("Effect should be destroyed after its lifetime")
	}
}

func TestEffectExpiresAfterDuration(t *testing.T) {
	em := ecs.NewEntityManager()
	system := NewEffectSystem(em)
	owner := spawn(em, fighter{})

	id := system.For(owner).AddEffect("burst", geom.NewTransform(geom.Vec3{}), action.EffectLifetime{Duration: 0.1})
	system.Update(0.05)
	em.RemoveMarkedEntities()
	if !em.Exists(ecs.EntityID(id)) {
		t.Fatal("Effect should still be emitting")
	}
	system.Update(0.05)
	em.RemoveMarkedEntities()
	if em.Exists(ecs.EntityID(id)) {
		t.Error("Effect without lifetime should be destroyed when its duration ends")
	}
}
