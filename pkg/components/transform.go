package components

import "github.com/decker502/actioncombo/internal/geom"

// TransformComponent 存储实体在世界空间中的位姿
// 角色、独立碰撞体和固定特效都使用它
type TransformComponent struct {
	Transform geom.Transform
	Velocity  geom.Vec3 // 每秒位移（世界坐标）
}

// NewTransformComponent 创建位于 pos、朝向 +Z 的位姿组件
func NewTransformComponent(pos geom.Vec3) *TransformComponent {
	return &TransformComponent{Transform: geom.NewTransform(pos)}
}
