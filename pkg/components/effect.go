package components

import (
	"github.com/decker502/actioncombo/internal/clip"
	"github.com/decker502/actioncombo/internal/geom"
	"github.com/decker502/actioncombo/pkg/ecs"
)

// EffectComponent 表示动作片段生成的一个特效实例
//
// 动态特效每帧跟随所属角色；固定特效只在生成时计算一次世界位姿。
// 特效被移除后停止发射，再经过 StartLifetime 秒后销毁。
type EffectComponent struct {
	Prefab   string
	Owner    ecs.EntityID
	Kind     clip.EffectKind
	Local    geom.Transform
	World    geom.Transform
	SimSpeed float64

	Age           float64 // 按模拟速度累计的时间（秒）
	Duration      float64 // 发射时长（秒）
	StartLifetime float64 // 粒子存活时长（秒）

	Stopped bool    // 是否已停止发射
	Linger  float64 // 停止后剩余的存活时间（秒）
}
