package systems

import (
	"reflect"
	"testing"

	"github.com/decker502/actioncombo/internal/clip"
	"github.com/decker502/actioncombo/internal/geom"
	"github.com/decker502/actioncombo/pkg/components"
	"github.com/decker502/actioncombo/pkg/ecs"
	"github.com/decker502/actioncombo/pkg/probe"
)

func TestCollisionOverlap_Sphere(t *testing.T) {
	em := ecs.NewEntityManager()
	system := NewCollisionSystem(em)
	near := spawn(em, fighter{pos: geom.V(0, 0, 0)})
	spawn(em, fighter{pos: geom.V(0, 0, 5)})

	hits := system.Overlap(probe.Query{Kind: clip.ShapeSphere, Center: geom.V(0, 1, 0.8), Radius: 0.5, Mask: probe.AllLayers})
	if got := colliderIDs(hits); !reflect.DeepEqual(got, []ecs.EntityID{near}) {
		t.Errorf("Expected only entity %d, got %v", near, got)
	}
}

func TestCollisionOverlap_OrientedBox(t *testing.T) {
	em := ecs.NewEntityManager()
	system := NewCollisionSystem(em)
	ahead := spawn(em, fighter{pos: geom.V(0, 0, 3.5)})
	side := spawn(em, fighter{pos: geom.V(1.5, 0, 2)})

	q := probe.Query{
		Kind:        clip.ShapeBox,
		Center:      geom.V(0, 1, 2),
		Rotation:    geom.Euler(geom.Vec3{}),
		HalfExtents: geom.V(0.2, 0.2, 2),
		Mask:        probe.AllLayers,
	}
	if got := colliderIDs(system.Overlap(q)); !reflect.DeepEqual(got, []ecs.EntityID{ahead}) {
		t.Errorf("Unrotated box: expected [%d], got %v", ahead, got)
	}

	q.Rotation = geom.Euler(geom.Vec3{Y: 90})
	if got := colliderIDs(system.Overlap(q)); !reflect.DeepEqual(got, []ecs.EntityID{side}) {
		t.Errorf("Rotated box: expected [%d], got %v", side, got)
	}
}

func TestCollisionOverlap_MaskAndDisabled(t *testing.T) {
	em := ecs.NewEntityManager()
	system := NewCollisionSystem(em)
	a := spawn(em, fighter{weapon: 1})
	b := spawn(em, fighter{pos: geom.V(0, 0, 0.2)})

	everything := probe.Query{Kind: clip.ShapeSphere, Center: geom.V(0, 1, 0.5), Radius: 2, Mask: probe.AllLayers}
	if got := system.Overlap(everything); len(got) != 3 {
		t.Fatalf("Expected 2 bodies and 1 weapon, got %v", colliderIDs(got))
	}

	bodies := everything
	bodies.Mask = probe.Layer(bodyLayer)
	if got := colliderIDs(system.Overlap(bodies)); !reflect.DeepEqual(got, []ecs.EntityID{a, b}) {
		t.Errorf("Expected bodies [%d %d], got %v", a, b, got)
	}

	col, _ := ecs.GetComponent[*components.ColliderComponent](em, b)
	col.Disabled = true
	if got := colliderIDs(system.Overlap(bodies)); !reflect.DeepEqual(got, []ecs.EntityID{a}) {
		t.Errorf("Disabled collider should be skipped, got %v", got)
	}
}

func TestCollisionBoundContacts(t *testing.T) {
	em := ecs.NewEntityManager()
	system := NewCollisionSystem(em)
	attacker := spawn(em, fighter{weapon: 1.2})
	target := spawn(em, fighter{pos: geom.V(0, 0, 1.5), faction: 1})
	spawn(em, fighter{pos: geom.V(0, 0, -3), faction: 1})

	weapon, ok := system.Owner(attacker).HitVolume(probe.VolumeWeapon)
	if !ok {
		t.Fatal("Expected attacker to have a weapon volume")
	}

	var contacts []ecs.EntityID
	detach := system.Attach(weapon, probe.Layer(bodyLayer), func(c probe.Collider) {
		contacts = append(contacts, ecs.EntityID(c.ColliderID()))
	})

	system.Update(1.0 / 60)
	system.Update(1.0 / 60)
	if want := []ecs.EntityID{target, target}; !reflect.DeepEqual(contacts, want) {
		t.Errorf("Expected one contact per frame with %d (never own body), got %v", target, contacts)
	}

	detach()
	system.Update(1.0 / 60)
	if len(contacts) != 2 {
		t.Errorf("Detached subscription still received contacts: %v", contacts)
	}
}

func TestCollisionBoundContacts_DetachDuringCallback(t *testing.T) {
	em := ecs.NewEntityManager()
	system := NewCollisionSystem(em)
	attacker := spawn(em, fighter{weapon: 3})
	spawn(em, fighter{pos: geom.V(0, 0, 1.5), faction: 1})
	spawn(em, fighter{pos: geom.V(0, 0, 2.5), faction: 1})

	weapon, _ := system.Owner(attacker).HitVolume(probe.VolumeWeapon)
	calls := 0
	var detach func()
	detach = system.Attach(weapon, probe.AllLayers, func(probe.Collider) {
		calls++
		detach()
	})
	system.Update(1.0 / 60)
	if calls != 1 {
		t.Errorf("Expected delivery to stop after detach, got %d calls", calls)
	}
}

func TestCollisionHitVolume(t *testing.T) {
	em := ecs.NewEntityManager()
	system := NewCollisionSystem(em)

	t.Run("没有武器时回退到身体", func(t *testing.T) {
		id := spawn(em, fighter{})
		owner := system.Owner(id)
		if _, ok := owner.HitVolume(probe.VolumeWeapon); ok {
			t.Error("Expected no weapon volume")
		}
		if _, ok := owner.HitVolume(probe.VolumeAttack); ok {
			t.Error("Expected no attack volume")
		}
		body, ok := owner.HitVolume(probe.VolumeBody)
		if !ok || ecs.EntityID(body.ColliderID()) != id {
			t.Errorf("Expected body volume %d, got %v", id, body)
		}
	})

	t.Run("默认攻击体", func(t *testing.T) {
		id := spawn(em, fighter{})
		attack := em.CreateEntity()
		ecs.AddComponent(em, attack, &components.ColliderComponent{Shape: components.ColliderSphere, Radius: 1, Owner: id})
		cc, _ := ecs.GetComponent[*components.CombatantComponent](em, id)
		cc.AttackBody = attack

		v, ok := system.Owner(id).HitVolume(probe.VolumeAttack)
		if !ok || ecs.EntityID(v.ColliderID()) != attack {
			t.Errorf("Expected attack volume %d, got %v", attack, v)
		}
	})

	t.Run("禁用的武器不可用", func(t *testing.T) {
		id := spawn(em, fighter{weapon: 1})
		cc, _ := ecs.GetComponent[*components.CombatantComponent](em, id)
		col, _ := ecs.GetComponent[*components.ColliderComponent](em, cc.Weapon)
		col.Disabled = true
		if _, ok := system.Owner(id).HitVolume(probe.VolumeWeapon); ok {
			t.Error("Expected disabled weapon to be unavailable")
		}
	})
}

func TestCollisionResolveTarget(t *testing.T) {
	em := ecs.NewEntityManager()
	system := NewCollisionSystem(em)
	id := spawn(em, fighter{weapon: 1, faction: 2})
	cc, _ := ecs.GetComponent[*components.CombatantComponent](em, id)

	target, ok := system.ResolveTarget(system.Collider(cc.Weapon))
	if !ok {
		t.Fatal("Expected weapon collider to resolve to its owner")
	}
	if target.CombatantID() != uint64(id) || target.Faction() != 2 {
		t.Errorf("Unexpected combatant %d (faction %d)", target.CombatantID(), target.Faction())
	}
	if c := target.Center(); c != geom.V(0, 1, 0) {
		t.Errorf("Expected center (0,1,0), got %+v", c)
	}

	prop := em.CreateEntity()
	ecs.AddComponent(em, prop, components.NewTransformComponent(geom.Vec3{}))
	ecs.AddComponent(em, prop, &components.ColliderComponent{Shape: components.ColliderSphere, Radius: 1})
	if _, ok := system.ResolveTarget(system.Collider(prop)); ok {
		t.Error("A collider without combatant should not resolve")
	}
	if _, ok := system.ResolveTarget(nil); ok {
		t.Error("nil collider should not resolve")
	}
}

func TestCollisionClosestPoint(t *testing.T) {
	em := ecs.NewEntityManager()
	system := NewCollisionSystem(em)
	id := spawn(em, fighter{pos: geom.V(0, 0, 2)})

	c := system.Collider(id)
	got := c.ClosestPoint(geom.V(0, 1, 0))
	if d := got.Sub(geom.V(0, 1, 1.5)).Len(); d > 1e-9 {
		t.Errorf("Expected closest point (0,1,1.5), got %+v", got)
	}
	inside := geom.V(0, 1.1, 2)
	if got := c.ClosestPoint(inside); got != inside {
		t.Errorf("A point inside the sphere is its own closest point, got %+v", got)
	}
}

func TestCollisionColliders(t *testing.T) {
	em := ecs.NewEntityManager()
	system := NewCollisionSystem(em)
	a := spawn(em, fighter{pos: geom.V(1, 0, 0), yaw: 90, weapon: 1})
	b := spawn(em, fighter{pos: geom.V(0, 0, 4)})

	cc, _ := ecs.GetComponent[*components.CombatantComponent](em, a)
	col, _ := ecs.GetComponent[*components.ColliderComponent](em, b)
	col.Disabled = true

	views := system.Colliders()
	if len(views) != 2 {
		t.Fatalf("Expected body and weapon of %d, got %+v", a, views)
	}
	for _, v := range views {
		if v.Owner != a {
			t.Errorf("Collider %d: owner %d, want %d", v.Entity, v.Owner, a)
		}
		switch v.Entity {
		case a:
			if v.Box || v.Radius != 0.5 || v.Center.Sub(geom.V(1, 1, 0)).Len() > 1e-9 {
				t.Errorf("Body view wrong: %+v", v)
			}
		case cc.Weapon:
			// 朝向 +X，武器中心在身体前方 1 米
			if !v.Box || v.Layer != weaponLayer || v.Center.Sub(geom.V(2, 1, 0)).Len() > 1e-9 {
				t.Errorf("Weapon view wrong: %+v", v)
			}
		default:
			t.Errorf("Unexpected collider %d", v.Entity)
		}
	}
}
