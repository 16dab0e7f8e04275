package systems

import (
	"log"
	"math"

	"github.com/decker502/actioncombo/pkg/combo"
	"github.com/decker502/actioncombo/pkg/components"
	"github.com/decker502/actioncombo/pkg/ecs"
)

// StatusSystem 管理霸体、不破防、硬直以及韧性恢复
type StatusSystem struct {
	entityManager *ecs.EntityManager
}

// NewStatusSystem 创建状态系统
func NewStatusSystem(em *ecs.EntityManager) *StatusSystem {
	return &StatusSystem{entityManager: em}
}

// For 返回实体的状态能力，连招通过它开启/关闭霸体与不破防
func (s *StatusSystem) For(id ecs.EntityID) combo.StateAbility {
	return entityState{sys: s, id: id}
}

// status 获取实体的状态组件，没有时自动添加
func (s *StatusSystem) status(id ecs.EntityID) *components.StatusComponent {
	st, ok := ecs.GetComponent[*components.StatusComponent](s.entityManager, id)
	if !ok {
		st = components.NewStatusComponent()
		ecs.AddComponent(s.entityManager, id, st)
	}
	return st
}

// Update 推进有限时长的状态、硬直计时与韧性恢复
func (s *StatusSystem) Update(deltaTime float64) {
	for _, id := range ecs.GetEntitiesWith1[*components.StatusComponent](s.entityManager) {
		st, _ := ecs.GetComponent[*components.StatusComponent](s.entityManager, id)
		tickStates(st.Endure, deltaTime)
		tickStates(st.Unbreakable, deltaTime)
		if st.Stagger > 0 {
			st.Stagger = math.Max(0, st.Stagger-deltaTime)
		}
	}

	for _, id := range ecs.GetEntitiesWith1[*components.PoiseComponent](s.entityManager) {
		poise, _ := ecs.GetComponent[*components.PoiseComponent](s.entityManager, id)
		poise.SinceHit += deltaTime
		if poise.SinceHit >= poise.RecoveryDelay && poise.Current < poise.Max {
			poise.Current = math.Min(poise.Max, poise.Current+poise.RecoveryRate*deltaTime)
		}
	}
}

func tickStates(states map[string]float64, dt float64) {
	for name, remaining := range states {
		if math.IsInf(remaining, 1) {
			continue
		}
		remaining -= dt
		if remaining <= 0 {
			delete(states, name)
			continue
		}
		states[name] = remaining
	}
}

// entityState 实现 combo.StateAbility
type entityState struct {
	sys *StatusSystem
	id  ecs.EntityID
}

func (e entityState) StartEndure(name string, duration float64) {
	if duration <= 0 {
		return
	}
	e.sys.status(e.id).Endure[name] = duration
	log.Printf("[StatusSystem] entity %d endure %q on", e.id, name)
}

func (e entityState) StopEndure(name string) {
	delete(e.sys.status(e.id).Endure, name)
}

func (e entityState) StartUnbreakable(name string, duration float64) {
	if duration <= 0 {
		return
	}
	e.sys.status(e.id).Unbreakable[name] = duration
	log.Printf("[StatusSystem] entity %d unbreakable %q on", e.id, name)
}

func (e entityState) StopUnbreakable(name string) {
	delete(e.sys.status(e.id).Unbreakable, name)
}
