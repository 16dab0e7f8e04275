package systems

import (
	"log"
	"math/rand/v2"

	"github.com/decker502/actioncombo/pkg/combo"
	"github.com/decker502/actioncombo/pkg/components"
	"github.com/decker502/actioncombo/pkg/ecs"
)

const (
	// CritMultiplier 暴击伤害倍率
	CritMultiplier = 1.5
	// StaggerDuration 韧性被打空后的硬直时间（秒）
	StaggerDuration = 0.6
	// FlashDuration 受击闪白时间（秒）
	FlashDuration = 0.12
)

// DamageEvent 是伤害系统结算后的一次伤害
type DamageEvent struct {
	Hit         combo.Hit
	Target      ecs.EntityID
	Amount      float64
	Crit        bool
	PoiseBroken bool
	Staggered   bool
	Interrupted bool
	Killed      bool
}

// Interrupter 打断角色当前的连招，没有连招时返回 false
type Interrupter interface {
	Interrupt(id ecs.EntityID) bool
}

// DamageSystem 实现 combo.DamageDispatcher
//
// 连招命中时伤害只入队，Update 时统一结算，避免在连招推进途中打断其他连招。
// 结算规则：
//   - 暴击时伤害乘以 CritMultiplier
//   - 不处于不破防时，韧性按 伤害×资源倍率 扣除，打空后进入硬直并回满
//   - 不处于霸体时，受击会打断目标当前的连招
type DamageSystem struct {
	entityManager *ecs.EntityManager
	interrupter   Interrupter
	rng           *rand.Rand

	pending   []combo.Hit
	listeners []func(DamageEvent)
}

// NewDamageSystem 创建伤害系统，seed 决定暴击判定序列
func NewDamageSystem(em *ecs.EntityManager, seed uint64) *DamageSystem {
	return &DamageSystem{
		entityManager: em,
		rng:           rand.New(rand.NewPCG(seed, seed+1)),
	}
}

// SetInterrupter 设置受击打断连招的处理者
func (s *DamageSystem) SetInterrupter(i Interrupter) {
	s.interrupter = i
}

// OnDamage 注册伤害结算回调
func (s *DamageSystem) OnDamage(fn func(DamageEvent)) {
	s.listeners = append(s.listeners, fn)
}

// AddDamage 实现 combo.DamageDispatcher
func (s *DamageSystem) AddDamage(h combo.Hit) {
	s.pending = append(s.pending, h)
}

// Pending 返回尚未结算的伤害数量
func (s *DamageSystem) Pending() int { return len(s.pending) }

// Update 按入队顺序结算所有伤害
func (s *DamageSystem) Update(deltaTime float64) {
	if len(s.pending) == 0 {
		return
	}
	pending := s.pending
	s.pending = nil
	for _, h := range pending {
		s.apply(h)
	}
}

func (s *DamageSystem) apply(h combo.Hit) {
	target := ecs.EntityID(h.Target.CombatantID())
	health, ok := ecs.GetComponent[*components.HealthComponent](s.entityManager, target)
	if !ok || health.Dead {
		return
	}

	ev := DamageEvent{Hit: h, Target: target, Amount: h.Value}
	if h.CritRate > 0 && s.rng.Float64() < h.CritRate {
		ev.Crit = true
		ev.Amount *= CritMultiplier
	}

	health.Current -= ev.Amount
	if health.Current <= 0 {
		health.Current = 0
		health.Dead = true
		ev.Killed = true
	}

	status, hasStatus := ecs.GetComponent[*components.StatusComponent](s.entityManager, target)
	unbreakable := hasStatus && status.IsUnbreakable()
	enduring := hasStatus && status.Enduring()

	if poise, ok := ecs.GetComponent[*components.PoiseComponent](s.entityManager, target); ok && !unbreakable {
		poise.SinceHit = 0
		poise.Current -= ev.Amount * h.ResourceMultiplier
		if poise.Current <= 0 {
			poise.Current = poise.Max
			ev.PoiseBroken = true
			if !hasStatus {
				status = components.NewStatusComponent()
				ecs.AddComponent(s.entityManager, target, status)
			}
			status.Stagger = StaggerDuration
			ev.Staggered = true
		}
	}

	if !enduring && s.interrupter != nil {
		ev.Interrupted = s.interrupter.Interrupt(target)
	}

	intensity := 0.6
	if ev.Crit {
		intensity = 1
	}
	ecs.AddComponent(s.entityManager, target, &components.FlashEffectComponent{Duration: FlashDuration, Intensity: intensity})

	log.Printf("[DamageSystem] %s hit entity %d for %.1f (crit=%v, channel=%d, hp=%.1f)",
		h.Method, target, ev.Amount, ev.Crit, h.Channel, health.Current)
	for _, fn := range s.listeners {
		fn(ev)
	}
}
