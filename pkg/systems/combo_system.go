package systems

import (
	"log"

	"github.com/decker502/actioncombo/pkg/action"
	"github.com/decker502/actioncombo/pkg/combo"
	"github.com/decker502/actioncombo/pkg/components"
	"github.com/decker502/actioncombo/pkg/ecs"
	"github.com/decker502/actioncombo/pkg/probe"
)

// TimeScaler 是带有效缩放查询的时间缩放注册表
type TimeScaler interface {
	combo.TimeScaleRegistry
	// Scale 返回当前生效的时间缩放
	Scale() float64
}

// ComboLibrary 按名称查找连招配置
type ComboLibrary interface {
	Combo(name string) (*combo.Config, bool)
}

// ComboSystemDeps 是连招系统需要的协作者，除 Collision 外都可以为 nil
type ComboSystemDeps struct {
	Collision *CollisionSystem
	Status    *StatusSystem
	Animation *AnimationSystem
	Effects   *EffectSystem
	Damage    *DamageSystem
	Audio     action.AudioAbility

	TimeScale   TimeScaler
	CameraShake combo.CameraShakeRegistry
	Arbiter     *combo.GroupArbiter
	Library     ComboLibrary

	// HitMask 是连招探针可以命中的层
	HitMask probe.LayerMask
}

// ComboSystem 驱动所有角色正在播放的连招
//
// 每帧：按时间缩放（顿帧）换算 dt，开启新的共享组仲裁帧，
// 按实体顺序推进连招，结束的连招被移除或切换到排队的下一段。
type ComboSystem struct {
	entityManager *ecs.EntityManager
	deps          ComboSystemDeps
}

// NewComboSystem 创建连招系统
func NewComboSystem(em *ecs.EntityManager, deps ComboSystemDeps) *ComboSystem {
	if deps.HitMask == 0 {
		deps.HitMask = probe.AllLayers
	}
	if deps.Arbiter == nil {
		deps.Arbiter = combo.NewGroupArbiter()
	}
	return &ComboSystem{entityManager: em, deps: deps}
}

// Arbiter 返回共享组仲裁者
func (s *ComboSystem) Arbiter() *combo.GroupArbiter { return s.deps.Arbiter }

// Play 让实体立即播放连招，正在播放的连招会被停止
// 硬直或死亡的角色不能出招，返回 nil
func (s *ComboSystem) Play(id ecs.EntityID, cfg *combo.Config) *combo.Player {
	if cfg == nil || !s.canAct(id) {
		return nil
	}
	if cur, ok := ecs.GetComponent[*components.ComboComponent](s.entityManager, id); ok && cur.Player != nil {
		cur.Player.Stop()
	}

	p := combo.NewPlayer(cfg, NewEntityCombatant(s.entityManager, id), s.collaborators(id))
	ecs.AddComponent(s.entityManager, id, &components.ComboComponent{Player: p})
	log.Printf("[ComboSystem] entity %d plays %s (%s)", id, cfg.Name, p.ID())
	p.Start()
	return p
}

// PlayByName 通过连招库查找并播放
func (s *ComboSystem) PlayByName(id ecs.EntityID, name string) *combo.Player {
	cfg, ok := s.lookup(name)
	if !ok {
		return nil
	}
	return s.Play(id, cfg)
}

// Queue 在当前连招结束后接着播放 name；没有连招在播放时立即播放
func (s *ComboSystem) Queue(id ecs.EntityID, name string) bool {
	cur, ok := ecs.GetComponent[*components.ComboComponent](s.entityManager, id)
	if !ok || cur.Player == nil || cur.Player.Finished() {
		return s.PlayByName(id, name) != nil
	}
	if _, ok := s.lookup(name); !ok {
		return false
	}
	cur.Queued = name
	return true
}

// Current 返回实体当前的连招
func (s *ComboSystem) Current(id ecs.EntityID) *combo.Player {
	if cur, ok := ecs.GetComponent[*components.ComboComponent](s.entityManager, id); ok {
		return cur.Player
	}
	return nil
}

// Interrupt 实现 Interrupter：停止实体的连招并清空排队
func (s *ComboSystem) Interrupt(id ecs.EntityID) bool {
	cur, ok := ecs.GetComponent[*components.ComboComponent](s.entityManager, id)
	if !ok || cur.Player == nil || cur.Player.Finished() {
		return false
	}
	cur.Queued = ""
	cur.Player.Stop()
	log.Printf("[ComboSystem] entity %d interrupted in %s", id, cur.Player.Name())
	return true
}

// Update 推进所有连招，deltaTime 为真实时间
func (s *ComboSystem) Update(deltaTime float64) {
	dt := deltaTime
	if s.deps.TimeScale != nil {
		dt *= s.deps.TimeScale.Scale()
	}

	s.deps.Arbiter.BeginFrame()
	s.deps.Arbiter.Update(dt)

	for _, id := range ecs.GetEntitiesWith1[*components.ComboComponent](s.entityManager) {
		cur, _ := ecs.GetComponent[*components.ComboComponent](s.entityManager, id)
		if cur.Player == nil {
			ecs.RemoveComponent[*components.ComboComponent](s.entityManager, id)
			continue
		}
		if !cur.Player.Finished() {
			cur.Player.Tick(dt)
		}
		if !cur.Player.Finished() {
			continue
		}

		next := cur.Queued
		if next != "" && cur.Player.Stage() == action.StageEnd {
			if s.PlayByName(id, next) != nil {
				continue
			}
		}
		ecs.RemoveComponent[*components.ComboComponent](s.entityManager, id)
	}
}

func (s *ComboSystem) collaborators(id ecs.EntityID) combo.Collaborators {
	d := s.deps
	co := combo.Collaborators{
		Abilities:     action.Abilities{Audio: d.Audio},
		Arbiter:       d.Arbiter,
		CollisionMask: d.HitMask,
	}
	if d.Collision != nil {
		co.Targets = d.Collision
		co.ProbeHost = d.Collision
		co.ProbeOwner = d.Collision.Owner(id)
	}
	if d.Animation != nil {
		co.Abilities.Animation = d.Animation.For(id)
	}
	if d.Effects != nil {
		co.Abilities.Effect = d.Effects.For(id)
	}
	if d.Status != nil {
		co.State = d.Status.For(id)
	}
	if d.Damage != nil {
		co.Damage = d.Damage
	}
	if d.TimeScale != nil {
		co.TimeScale = d.TimeScale
	}
	if d.CameraShake != nil {
		co.CameraShake = d.CameraShake
	}
	return co
}

func (s *ComboSystem) canAct(id ecs.EntityID) bool {
	if !s.entityManager.Exists(id) {
		return false
	}
	if hp, ok := ecs.GetComponent[*components.HealthComponent](s.entityManager, id); ok && hp.Dead {
		return false
	}
	if st, ok := ecs.GetComponent[*components.StatusComponent](s.entityManager, id); ok && st.Staggered() {
		log.Printf("[ComboSystem] entity %d is staggered, combo refused", id)
		return false
	}
	return true
}

func (s *ComboSystem) lookup(name string) (*combo.Config, bool) {
	if s.deps.Library == nil {
		return nil, false
	}
	cfg, ok := s.deps.Library.Combo(name)
	if !ok {
		log.Printf("[ComboSystem] Warning: combo %q not found", name)
	}
	return cfg, ok
}
