package systems

import (
	"log"
	"math"

	"github.com/decker502/actioncombo/internal/clip"
	"github.com/decker502/actioncombo/internal/geom"
	"github.com/decker502/actioncombo/pkg/combo"
	"github.com/decker502/actioncombo/pkg/components"
	"github.com/decker502/actioncombo/pkg/ecs"
	"github.com/decker502/actioncombo/pkg/probe"
)

// colliderRef 是碰撞系统交给探针的碰撞体句柄，几何形状在使用时实时计算
type colliderRef struct {
	sys *CollisionSystem
	id  ecs.EntityID
}

func (c colliderRef) ColliderID() uint64 { return uint64(c.id) }

func (c colliderRef) ClosestPoint(p geom.Vec3) geom.Vec3 {
	ws, ok := c.sys.worldShape(c.id)
	if !ok {
		return p
	}
	return ws.closestPoint(p)
}

// worldShape 是碰撞体在世界空间中的形状
type worldShape struct {
	shape  components.ColliderShape
	center geom.Vec3
	radius float64
	box    geom.OBB
}

func (w worldShape) closestPoint(p geom.Vec3) geom.Vec3 {
	if w.shape == components.ColliderBox {
		return w.box.ClosestPoint(p)
	}
	d := p.Sub(w.center)
	if d.Len() <= w.radius {
		return p
	}
	return w.center.Add(d.Normalize().Scale(w.radius))
}

func (w worldShape) overlaps(o worldShape) bool {
	switch {
	case w.shape == components.ColliderBox && o.shape == components.ColliderBox:
		return w.box.OverlapsOBB(o.box)
	case w.shape == components.ColliderBox:
		return w.box.OverlapsSphere(o.center, o.radius)
	case o.shape == components.ColliderBox:
		return o.box.OverlapsSphere(w.center, w.radius)
	default:
		return w.center.Sub(o.center).Len() <= w.radius+o.radius
	}
}

// contactSubscription 是一个绑定型探针对某个命中体的接触订阅
type contactSubscription struct {
	volume    ecs.EntityID
	mask      probe.LayerMask
	onContact func(probe.Collider)
	detached  bool
}

// CollisionSystem 在 ECS 世界上实现探针宿主
//
// 形状探针通过 Overlap 查询；绑定型探针通过 Attach 订阅命中体的接触，
// 每次 Update 时对所有订阅逐一回调当前接触的碰撞体。
// 查询与回调都按实体创建顺序进行。
type CollisionSystem struct {
	entityManager *ecs.EntityManager
	subscriptions []*contactSubscription
}

// NewCollisionSystem 创建碰撞系统
func NewCollisionSystem(em *ecs.EntityManager) *CollisionSystem {
	return &CollisionSystem{entityManager: em}
}

// Collider 返回实体碰撞体的句柄
func (s *CollisionSystem) Collider(id ecs.EntityID) probe.Collider {
	return colliderRef{sys: s, id: id}
}

// Overlap 实现 probe.Host
func (s *CollisionSystem) Overlap(q probe.Query) []probe.Collider {
	query := worldShape{shape: components.ColliderSphere, center: q.Center, radius: q.Radius}
	if q.Kind == clip.ShapeBox {
		query = worldShape{
			shape:  components.ColliderBox,
			center: q.Center,
			box:    geom.OBB{Center: q.Center, HalfExtents: q.HalfExtents, Rotation: q.Rotation},
		}
	}

	var hits []probe.Collider
	for _, id := range ecs.GetEntitiesWith1[*components.ColliderComponent](s.entityManager) {
		col, _ := ecs.GetComponent[*components.ColliderComponent](s.entityManager, id)
		if col.Disabled || !q.Mask.Has(col.Layer) {
			continue
		}
		ws, ok := s.worldShape(id)
		if ok && query.overlaps(ws) {
			hits = append(hits, colliderRef{sys: s, id: id})
		}
	}
	return hits
}

// Attach 实现 probe.Host
func (s *CollisionSystem) Attach(volume probe.Collider, mask probe.LayerMask, onContact func(probe.Collider)) func() {
	sub := &contactSubscription{
		volume:    ecs.EntityID(volume.ColliderID()),
		mask:      mask,
		onContact: onContact,
	}
	s.subscriptions = append(s.subscriptions, sub)
	return func() { sub.detached = true }
}

// Update 为所有绑定型订阅派发本帧的接触
func (s *CollisionSystem) Update(deltaTime float64) {
	live := s.subscriptions[:0]
	for _, sub := range s.subscriptions {
		if !sub.detached && s.entityManager.Exists(sub.volume) {
			live = append(live, sub)
		}
	}
	clear(s.subscriptions[len(live):])
	s.subscriptions = live

	// 回调中可能新增订阅，只处理本帧开始时已有的订阅
	for _, sub := range live[:len(live):len(live)] {
		if sub.detached {
			continue
		}
		for _, c := range s.contacts(sub.volume, sub.mask) {
			if sub.detached {
				break
			}
			sub.onContact(c)
		}
	}
}

// contacts 返回与 volume 接触的碰撞体，不包括同一角色的碰撞体
func (s *CollisionSystem) contacts(volume ecs.EntityID, mask probe.LayerMask) []probe.Collider {
	self, ok := s.worldShape(volume)
	if !ok {
		return nil
	}
	owner := s.ownerOf(volume)

	var out []probe.Collider
	for _, id := range ecs.GetEntitiesWith1[*components.ColliderComponent](s.entityManager) {
		if id == volume || s.ownerOf(id) == owner {
			continue
		}
		col, _ := ecs.GetComponent[*components.ColliderComponent](s.entityManager, id)
		if col.Disabled || !mask.Has(col.Layer) {
			continue
		}
		if ws, ok := s.worldShape(id); ok && self.overlaps(ws) {
			out = append(out, colliderRef{sys: s, id: id})
		}
	}
	return out
}

// ownerOf 返回碰撞体所属的角色，身体碰撞体属于自身
func (s *CollisionSystem) ownerOf(id ecs.EntityID) ecs.EntityID {
	col, ok := ecs.GetComponent[*components.ColliderComponent](s.entityManager, id)
	if !ok || col.Owner == 0 {
		return id
	}
	return col.Owner
}

// worldShape 计算碰撞体当前的世界形状
func (s *CollisionSystem) worldShape(id ecs.EntityID) (worldShape, bool) {
	col, ok := ecs.GetComponent[*components.ColliderComponent](s.entityManager, id)
	if !ok {
		return worldShape{}, false
	}
	tr, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
	if !ok {
		tr, ok = ecs.GetComponent[*components.TransformComponent](s.entityManager, col.Owner)
	}
	if !ok {
		return worldShape{}, false
	}

	center := tr.Transform.Point(col.Offset)
	if col.Shape == components.ColliderBox {
		return worldShape{
			shape:  components.ColliderBox,
			center: center,
			box:    geom.OBB{Center: center, HalfExtents: col.HalfExtents, Rotation: tr.Transform.Rotation},
		}, true
	}
	return worldShape{shape: components.ColliderSphere, center: center, radius: math.Abs(col.Radius)}, true
}

// ColliderView 是碰撞体当前的世界形状，供调试显示使用
type ColliderView struct {
	Entity ecs.EntityID
	Owner  ecs.EntityID // 所属角色，身体碰撞体为自身
	Layer  int
	Box    bool
	Center geom.Vec3
	Radius float64
	OBB    geom.OBB
}

// Colliders 返回所有启用的碰撞体，按实体顺序
func (s *CollisionSystem) Colliders() []ColliderView {
	var views []ColliderView
	for _, id := range ecs.GetEntitiesWith1[*components.ColliderComponent](s.entityManager) {
		col, _ := ecs.GetComponent[*components.ColliderComponent](s.entityManager, id)
		if col.Disabled {
			continue
		}
		ws, ok := s.worldShape(id)
		if !ok {
			continue
		}
		views = append(views, ColliderView{
			Entity: id,
			Owner:  s.ownerOf(id),
			Layer:  col.Layer,
			Box:    ws.shape == components.ColliderBox,
			Center: ws.center,
			Radius: ws.radius,
			OBB:    ws.box,
		})
	}
	return views
}

// ResolveTarget 实现 combo.TargetResolver：把碰撞体映射到所属的战斗角色
func (s *CollisionSystem) ResolveTarget(c probe.Collider) (combo.Combatant, bool) {
	if c == nil {
		return nil, false
	}
	owner := s.ownerOf(ecs.EntityID(c.ColliderID()))
	if !ecs.HasComponent[*components.CombatantComponent](s.entityManager, owner) {
		return nil, false
	}
	return EntityCombatant{em: s.entityManager, id: owner}, true
}

// Owner 返回实体作为探针父节点的适配器
func (s *CollisionSystem) Owner(id ecs.EntityID) probe.Owner {
	return entityOwner{sys: s, id: id}
}

// entityOwner 实现 probe.Owner
type entityOwner struct {
	sys *CollisionSystem
	id  ecs.EntityID
}

func (o entityOwner) WorldTransform() geom.Transform {
	if tr, ok := ecs.GetComponent[*components.TransformComponent](o.sys.entityManager, o.id); ok {
		return tr.Transform
	}
	log.Printf("[CollisionSystem] Warning: entity %d has no transform", o.id)
	return geom.Transform{}
}

func (o entityOwner) HitVolume(kind probe.VolumeKind) (probe.Collider, bool) {
	em := o.sys.entityManager
	var id ecs.EntityID
	switch kind {
	case probe.VolumeWeapon, probe.VolumeAttack:
		cc, ok := ecs.GetComponent[*components.CombatantComponent](em, o.id)
		if !ok {
			return nil, false
		}
		id = cc.Weapon
		if kind == probe.VolumeAttack {
			id = cc.AttackBody
		}
	case probe.VolumeBody:
		id = o.id
	}
	col, ok := ecs.GetComponent[*components.ColliderComponent](em, id)
	if id == 0 || !ok || col.Disabled {
		return nil, false
	}
	return colliderRef{sys: o.sys, id: id}, true
}
