package systems

import (
	"log"

	"github.com/decker502/actioncombo/internal/clip"
	"github.com/decker502/actioncombo/internal/geom"
	"github.com/decker502/actioncombo/pkg/action"
	"github.com/decker502/actioncombo/pkg/components"
	"github.com/decker502/actioncombo/pkg/ecs"
)

// EffectSystem 管理动作片段生成的特效实体
//
// 每个特效是一个独立实体，特效 id 即实体 id。
type EffectSystem struct {
	entityManager *ecs.EntityManager
}

// NewEffectSystem 创建特效系统
func NewEffectSystem(em *ecs.EntityManager) *EffectSystem {
	return &EffectSystem{entityManager: em}
}

// For 返回挂在 owner 上的特效能力
func (s *EffectSystem) For(owner ecs.EntityID) action.EffectAbility {
	return entityEffects{sys: s, owner: owner}
}

// spawn 创建特效实体
func (s *EffectSystem) spawn(owner ecs.EntityID, prefab string, local geom.Transform, lt action.EffectLifetime) ecs.EntityID {
	id := s.entityManager.CreateEntity()
	fx := &components.EffectComponent{
		Prefab:        prefab,
		Owner:         owner,
		Kind:          lt.Kind,
		Local:         local,
		SimSpeed:      lt.SimulationSpeed,
		Duration:      lt.Duration,
		StartLifetime: lt.StartLifetime,
	}
	if fx.SimSpeed <= 0 {
		fx.SimSpeed = 1
	}
	fx.World = s.ownerTransform(owner).Compose(local)
	ecs.AddComponent(s.entityManager, id, fx)
	return id
}

// stop 停止特效发射，粒子存活 StartLifetime 秒后销毁
func (s *EffectSystem) stop(id ecs.EntityID) {
	fx, ok := ecs.GetComponent[*components.EffectComponent](s.entityManager, id)
	if !ok || fx.Stopped {
		return
	}
	fx.Stopped = true
	fx.Linger = fx.StartLifetime
	if fx.Linger <= 0 {
		s.entityManager.DestroyEntity(id)
	}
}

// Update 推进特效：动态特效跟随所属角色，超时或停止后逐步清理
func (s *EffectSystem) Update(deltaTime float64) {
	for _, id := range ecs.GetEntitiesWith1[*components.EffectComponent](s.entityManager) {
		fx, _ := ecs.GetComponent[*components.EffectComponent](s.entityManager, id)

		if fx.Kind == clip.EffectDynamic && s.entityManager.Exists(fx.Owner) {
			fx.World = s.ownerTransform(fx.Owner).Compose(fx.Local)
		}

		step := deltaTime * fx.SimSpeed
		fx.Age += step
		if !fx.Stopped && fx.Duration > 0 && fx.Age >= fx.Duration {
			s.stop(id)
			continue
		}
		if fx.Stopped {
			fx.Linger -= step
			if fx.Linger <= 0 {
				s.entityManager.DestroyEntity(id)
			}
		}
	}
}

func (s *EffectSystem) ownerTransform(owner ecs.EntityID) geom.Transform {
	if tr, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, owner); ok {
		return tr.Transform
	}
	return geom.Transform{}
}

// entityEffects 实现 action.EffectAbility
type entityEffects struct {
	sys   *EffectSystem
	owner ecs.EntityID
}

func (e entityEffects) AddEffect(prefab string, local geom.Transform, lifetime action.EffectLifetime) int {
	id := e.sys.spawn(e.owner, prefab, local, lifetime)
	log.Printf("[EffectSystem] entity %d spawned %s (%v) as %d", e.owner, prefab, lifetime.Kind, id)
	return int(id)
}

func (e entityEffects) RemoveEffect(id int) {
	e.sys.stop(ecs.EntityID(id))
}
