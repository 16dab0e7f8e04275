package components

import (
	"github.com/decker502/actioncombo/internal/geom"
	"github.com/decker502/actioncombo/pkg/ecs"
)

// ColliderShape 碰撞体形状
type ColliderShape int

const (
	// ColliderSphere 球体，使用 Radius
	ColliderSphere ColliderShape = iota
	// ColliderBox 随所属实体旋转的长方体，使用 HalfExtents
	ColliderBox
)

// ColliderComponent 定义实体的碰撞体
//
// 碰撞体可以挂在角色自身（身体），也可以是独立实体（武器、攻击判定体），
// 此时 Owner 指向所属角色；没有 TransformComponent 的碰撞体跟随 Owner 的位姿。
type ColliderComponent struct {
	Shape       ColliderShape
	Radius      float64   // 球体半径
	HalfExtents geom.Vec3 // 长方体半尺寸
	Offset      geom.Vec3 // 相对于位姿的局部偏移
	Layer       int       // 所在层（0-31）
	Owner       ecs.EntityID
	Disabled    bool // 禁用后不参与查询与接触
}
