// Package probe 实现动作片段为每个碰撞轨道区间生成的碰撞探针。
//
// 探针按 clip.CollisionShape 分类：绑定型探针借用所有者自身的碰撞体，
// 由物理宿主的接触回调驱动；盒形、球形和扇形探针每个 tick 向宿主发起一次重叠查询。
// 探针每个 tick 都报告所有重叠的碰撞体，重复命中的去重由连招层负责。
package probe

import (
	"github.com/decker502/actioncombo/internal/clip"
	"github.com/decker502/actioncombo/internal/geom"
)

// LayerMask 查询可见的碰撞层
type LayerMask uint32

// AllLayers 匹配所有层
const AllLayers LayerMask = 0xFFFFFFFF

// Has 判断第 l 层是否被选中
func (m LayerMask) Has(layer int) bool {
	if layer < 0 || layer > 31 {
		return false
	}
	return m&(1<<uint(layer)) != 0
}

// Layer 返回只包含一层的掩码
func Layer(layer int) LayerMask {
	return 1 << uint(layer)
}

// Collider 物理宿主可以报告为重叠的对象
type Collider interface {
	// ColliderID 碰撞体标识，在其生命周期内不变
	ColliderID() uint64
	// ClosestPoint 返回碰撞体上或内部距离 p 最近的点
	ClosestPoint(p geom.Vec3) geom.Vec3
}

// VolumeKind 绑定型探针使用所有者的哪个碰撞体
type VolumeKind int

const (
	// VolumeWeapon 当前所持武器的碰撞体
	VolumeWeapon VolumeKind = iota
	// VolumeAttack 角色默认的攻击碰撞体
	VolumeAttack
	// VolumeBody 角色身体碰撞体
	VolumeBody
)

// bindPreference 绑定型探针查找碰撞体的顺序
var bindPreference = []VolumeKind{VolumeWeapon, VolumeAttack, VolumeBody}

// Owner 探针挂载的角色
type Owner interface {
	WorldTransform() geom.Transform
	HitVolume(kind VolumeKind) (Collider, bool)
}

// Query 在世界坐标中向宿主发起的一次重叠查询
// Kind 只会是 clip.ShapeBox 或 clip.ShapeSphere，扇形探针用包围球查询后自行过滤。
type Query struct {
	Kind        clip.ShapeKind
	Center      geom.Vec3
	Rotation    geom.Quat
	HalfExtents geom.Vec3
	Radius      float64
	Mask        LayerMask
}

// Host 物理宿主，负责回答重叠查询并为绑定的碰撞体提供接触回调
type Host interface {
	// Overlap 返回 Mask 内与查询形状相交的所有碰撞体
	Overlap(q Query) []Collider
	// Attach 订阅碰撞体与 mask 内其他碰撞体的接触，返回取消订阅的函数
	Attach(volume Collider, mask LayerMask, onContact func(Collider)) (detach func())
}
