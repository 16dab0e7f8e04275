package components

import "math"

// StatusComponent 存储角色的霸体、不破防与硬直状态
//
// 霸体与不破防以名称为键，可以由多个来源同时开启，
// 剩余时间为 +Inf 的状态只能被显式关闭。
type StatusComponent struct {
	Endure      map[string]float64
	Unbreakable map[string]float64

	Stagger float64 // 剩余硬直时间（秒）
}

// NewStatusComponent 创建空状态组件
func NewStatusComponent() *StatusComponent {
	return &StatusComponent{
		Endure:      make(map[string]float64),
		Unbreakable: make(map[string]float64),
	}
}

// Enduring 是否处于霸体（受击不会被打断）
func (s *StatusComponent) Enduring() bool { return len(s.Endure) > 0 }

// IsUnbreakable 是否处于不破防（韧性不受损、不会硬直）
func (s *StatusComponent) IsUnbreakable() bool { return len(s.Unbreakable) > 0 }

// Staggered 是否处于硬直
func (s *StatusComponent) Staggered() bool { return s.Stagger > 0 }

// Forever 表示只能显式关闭的状态时长
var Forever = math.Inf(1)
