package systems

import (
	"github.com/decker502/actioncombo/internal/geom"
	"github.com/decker502/actioncombo/pkg/components"
	"github.com/decker502/actioncombo/pkg/ecs"
)

// EntityCombatant 把拥有 CombatantComponent 的实体适配为 combo.Combatant
type EntityCombatant struct {
	em *ecs.EntityManager
	id ecs.EntityID
}

// NewEntityCombatant 创建实体的战斗角色适配器
func NewEntityCombatant(em *ecs.EntityManager, id ecs.EntityID) EntityCombatant {
	return EntityCombatant{em: em, id: id}
}

// Entity 返回被适配的实体
func (c EntityCombatant) Entity() ecs.EntityID { return c.id }

func (c EntityCombatant) CombatantID() uint64 { return uint64(c.id) }

func (c EntityCombatant) Faction() int {
	if cc, ok := c.component(); ok {
		return cc.Faction
	}
	return -1
}

// Center 返回角色中心点：脚底位置向上 CenterHeight
func (c EntityCombatant) Center() geom.Vec3 {
	tr, ok := ecs.GetComponent[*components.TransformComponent](c.em, c.id)
	if !ok {
		return geom.Vec3{}
	}
	h := 0.0
	if cc, ok := c.component(); ok {
		h = cc.CenterHeight
	}
	return tr.Transform.Position.Add(geom.Up.Scale(h))
}

func (c EntityCombatant) AttackPower() float64 {
	if cc, ok := c.component(); ok {
		return cc.AttackPower
	}
	return 0
}

func (c EntityCombatant) CritRate() float64 {
	if cc, ok := c.component(); ok {
		return cc.CritRate
	}
	return 0
}

func (c EntityCombatant) PrimaryPlayer() bool {
	cc, ok := c.component()
	return ok && cc.Primary
}

func (c EntityCombatant) WeaponMethod() string {
	if cc, ok := c.component(); ok {
		return cc.WeaponMethod
	}
	return ""
}

func (c EntityCombatant) component() (*components.CombatantComponent, bool) {
	return ecs.GetComponent[*components.CombatantComponent](c.em, c.id)
}
