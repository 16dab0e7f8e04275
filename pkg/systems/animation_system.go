package systems

import (
	"github.com/decker502/actioncombo/pkg/action"
	"github.com/decker502/actioncombo/pkg/components"
	"github.com/decker502/actioncombo/pkg/ecs"
)

// AnimationSystem 实现角色的动画能力并推进动作播放时间
type AnimationSystem struct {
	entityManager *ecs.EntityManager
}

// NewAnimationSystem 创建动画系统
func NewAnimationSystem(em *ecs.EntityManager) *AnimationSystem {
	return &AnimationSystem{entityManager: em}
}

// For 返回实体的动画能力
func (s *AnimationSystem) For(id ecs.EntityID) action.AnimationAbility {
	return entityAnimation{sys: s, id: id}
}

// Update 按播放速度推进所有动作
func (s *AnimationSystem) Update(deltaTime float64) {
	for _, id := range ecs.GetEntitiesWith1[*components.AnimationComponent](s.entityManager) {
		anim, _ := ecs.GetComponent[*components.AnimationComponent](s.entityManager, id)
		if anim.Transition != "" {
			anim.Time += deltaTime * anim.Speed
		}
	}
}

func (s *AnimationSystem) component(id ecs.EntityID) *components.AnimationComponent {
	anim, ok := ecs.GetComponent[*components.AnimationComponent](s.entityManager, id)
	if !ok {
		anim = &components.AnimationComponent{Speed: 1}
		ecs.AddComponent(s.entityManager, id, anim)
	}
	return anim
}

// entityAnimation 实现 action.AnimationAbility
type entityAnimation struct {
	sys *AnimationSystem
	id  ecs.EntityID
}

func (a entityAnimation) PlayAction(transition string) action.AnimationHandle {
	anim := a.sys.component(a.id)
	anim.Serial++
	anim.Transition = transition
	anim.Speed = 1
	anim.Time = 0
	return &animationHandle{anim: anim, serial: anim.Serial}
}

// StopAction 只在句柄仍对应当前动作时回到待机
func (a entityAnimation) StopAction(h action.AnimationHandle) {
	handle, ok := h.(*animationHandle)
	if !ok || !handle.current() {
		return
	}
	handle.anim.Transition = ""
	handle.anim.Time = 0
}

// animationHandle 是一次 PlayAction 的句柄，被新动作取代后失效
type animationHandle struct {
	anim   *components.AnimationComponent
	serial int
}

func (h *animationHandle) current() bool { return h.anim.Serial == h.serial }

func (h *animationHandle) SetSpeed(speed float64) {
	if h.current() {
		h.anim.Speed = speed
	}
}
