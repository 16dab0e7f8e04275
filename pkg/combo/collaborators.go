package combo

import (
	"github.com/decker502/actioncombo/internal/geom"
	"github.com/decker502/actioncombo/pkg/action"
	"github.com/decker502/actioncombo/pkg/probe"
)

// Combatant 可以造成或承受连招命中的角色
type Combatant interface {
	CombatantID() uint64
	Faction() int
	Center() geom.Vec3
	AttackPower() float64
	CritRate() float64
	// PrimaryPlayer 是否为玩家操控的角色
	PrimaryPlayer() bool
	// WeaponMethod 由所持武器决定的攻击方式
	WeaponMethod() string
}

// TargetResolver 把探针命中的碰撞体映射到所属角色
type TargetResolver interface {
	ResolveTarget(c probe.Collider) (Combatant, bool)
}

// StateAbility 按名称授予霸体和不破状态
// Stop 调用必须是幂等的
type StateAbility interface {
	StartEndure(name string, duration float64)
	StopEndure(name string)
	StartUnbreakable(name string, duration float64)
	StopUnbreakable(name string)
}

// Hit 一次有效命中产生的伤害请求
type Hit struct {
	Source             Combatant
	Target             Combatant
	Method             string
	Type               string
	Value              float64
	ResourceMultiplier float64
	CritRate           float64
	// Direction 攻击者指向命中点的水平方向
	Direction geom.Vec3
	Point     geom.Vec3
	// Channel 产生命中的碰撞组
	Channel int
}

// DamageDispatcher 接收有效命中
type DamageDispatcher interface {
	AddDamage(h Hit)
}

// TimeScaleRegistry 按 ID 管理时间缩放命令，重复添加同一 ID 会刷新命令
type TimeScaleRegistry interface {
	AddTimeScale(id string, scale, duration float64)
	RemoveTimeScale(id string)
}

// CameraShakeRegistry 按 ID 管理镜头震动，方向为零向量表示全向震动
type CameraShakeRegistry interface {
	AddShake(id string, amplitude, frequency, duration float64, direction geom.Vec3)
	RemoveShake(id string)
}

// SharedGroupArbiter 决定共享组上的命中是否有效
// 所有者的全部连招共用一个仲裁器，同步调用
type SharedGroupArbiter interface {
	TryClaim(group int, c probe.Collider) bool
}

// Collaborators 连招依赖的外部系统，每个字段都可以为空
type Collaborators struct {
	Abilities   action.Abilities
	State       StateAbility
	Damage      DamageDispatcher
	TimeScale   TimeScaleRegistry
	CameraShake CameraShakeRegistry
	Arbiter     SharedGroupArbiter
	Targets     TargetResolver

	ProbeHost     probe.Host
	ProbeOwner    probe.Owner
	CollisionMask probe.LayerMask
}
