package components

import "github.com/decker502/actioncombo/pkg/ecs"

// CombatantComponent 标记可以参与战斗的角色
type CombatantComponent struct {
	Name         string
	Faction      int     // 阵营，同阵营之间不会互相命中
	AttackPower  float64 // 攻击力，参与伤害计算
	CritRate     float64 // 暴击率（0-1）
	Primary      bool    // 是否为玩家操控的主角
	WeaponMethod string  // 当前武器对应的攻击方式，例如 "sword"
	CenterHeight float64 // 角色中心相对于脚底的高度

	// 命中体实体，0 表示没有
	Weapon     ecs.EntityID
	AttackBody ecs.EntityID
}
