package action

import (
	"github.com/decker502/actioncombo/internal/clip"
	"github.com/decker502/actioncombo/internal/geom"
)

// AnimationHandle PlayAction 启动的动画句柄
type AnimationHandle interface {
	SetSpeed(speed float64)
}

// AnimationAbility 在所属角色上播放动画过渡
type AnimationAbility interface {
	PlayAction(transition string) AnimationHandle
	StopAction(handle AnimationHandle)
}

// AudioAbility 播放挂在所属角色上的音效
type AudioAbility interface {
	// PlaySound 播放音效并返回供 StopSound 使用的 ID，0 表示未播放
	PlaySound(clip string, loop bool, volume float64) int
	StopSound(id int)
}

// EffectLifetime 特效的生命周期与运动方式
type EffectLifetime struct {
	Kind clip.EffectKind
	// StartLifetime 特效预热时间（秒）
	StartLifetime float64
	// SimulationSpeed 特效自身时钟的倍率
	SimulationSpeed float64
	// Duration 区间时长（秒），区间结束时播放器总会移除特效
	Duration float64
}

// EffectAbility 相对所属角色生成视觉特效
type EffectAbility interface {
	// AddEffect 生成特效并返回供 RemoveEffect 使用的 ID，0 表示未生成
	AddEffect(prefab string, local geom.Transform, lifetime EffectLifetime) int
	RemoveEffect(id int)
}

// Abilities 播放器驱动的可选角色能力
// 任何一项都可以为 nil，对应的轨道会被跳过
type Abilities struct {
	Animation AnimationAbility
	Audio     AudioAbility
	Effect    EffectAbility
}
