// Package clip 提供动作片段的数据模型和解析器。
// 动作片段是预先制作、不可变、固定帧率的时间轴，包含五类轨道：
// 动画、音频、特效、碰撞和事件。
//
// 轨道条目总是以指针持有。运行时的特效句柄、探针和命中去重表都以条目地址为键，
// 因此片段构造完成后不能再复制条目。
package clip

import (
	"fmt"

	"github.com/decker502/actioncombo/internal/geom"
)

// Clip 动作片段的根结构
type Clip struct {
	// Name 片段名称，例如 "sword_light_1"
	Name string

	// FrameRate 每秒 tick 数
	FrameRate int

	// DurationTicks 总长度，最后一个 tick 就是 DurationTicks
	DurationTicks int

	// Process 前摇、判定、后摇阶段的起点
	Process Process

	AnimationTrack []*AnimationEntry
	AudioTrack     []*AudioEntry
	EffectTrack    []*EffectEntry
	CollisionTrack []*CollisionEntry
	EventTrack     []*EventEntry
}

// Process 播放进入各战斗阶段的 tick
// 约定为非递减，但不做强制检查
type Process struct {
	AnticipationTick int
	JudgmentTick     int
	RecoveryTick     int
}

// TickDuration 返回一个 tick 的秒数
func (c *Clip) TickDuration() float64 {
	if c.FrameRate <= 0 {
		return 0
	}
	return 1.0 / float64(c.FrameRate)
}

// Duration 返回片段时长（秒）
func (c *Clip) Duration() float64 {
	return float64(c.DurationTicks) * c.TickDuration()
}

// EventTick 返回第一个名为 name 的事件所在 tick
func (c *Clip) EventTick(name string) (int, bool) {
	for _, ev := range c.EventTrack {
		if ev.Name == name {
			return ev.Tick, true
		}
	}
	return 0, false
}

// TrackKind 五种轨道类型
type TrackKind int

const (
	TrackAnimation TrackKind = iota
	TrackAudio
	TrackEffect
	TrackCollision
	TrackEvent
)

func (k TrackKind) String() string {
	switch k {
	case TrackAnimation:
		return "animation"
	case TrackAudio:
		return "audio"
	case TrackEffect:
		return "effect"
	case TrackCollision:
		return "collision"
	case TrackEvent:
		return "event"
	default:
		return fmt.Sprintf("TrackKind(%d)", int(k))
	}
}

// Window 区间轨道条目的 tick 范围
//
// 区间左闭右开。时长为 0 的条目也会存活一个 tick，
// 创建和销毁发生在相邻的两个 tick，而不是同一个 tick。
type Window struct {
	StartTick     int
	DurationTicks int
}

// EndTick 返回条目失效的第一个 tick
func (w Window) EndTick() int {
	d := w.DurationTicks
	if d < 1 {
		d = 1
	}
	return w.StartTick + d
}

// Contains 判断 tick 是否在生效区间内
func (w Window) Contains(tick int) bool {
	return tick >= w.StartTick && tick < w.EndTick()
}

// Expired 判断区间在 tick 时是否已结束
func (w Window) Expired(tick int) bool {
	return tick >= w.EndTick()
}

// AnimationEntry 把唯一的动画槽切换到指定过渡
type AnimationEntry struct {
	Window
	// Transition 角色上的动画状态或过渡名称
	Transition string
	// Speed 应用到动画句柄的播放速度倍率
	Speed float64
}

// AudioEntry 在区间内播放音效
// Clip 与 Randomizer 有且只有一个
type AudioEntry struct {
	Window
	Clip       string
	Randomizer *AudioRandomizer
	Volume     float64
}

// AudioRandomizer 每次播放时从列表中随机选取一个音效
type AudioRandomizer struct {
	Name         string
	Clips        []string
	VolumeJitter float64
}

// EffectKind 特效与所有者的关系
type EffectKind int

const (
	// EffectDynamic 挂在所有者身上并跟随移动
	EffectDynamic EffectKind = iota
	// EffectFixed 生成时固定在世界坐标
	EffectFixed
)

func (k EffectKind) String() string {
	if k == EffectFixed {
		return "fixed"
	}
	return "dynamic"
}

// EffectEntry 在区间内生成视觉特效
type EffectEntry struct {
	Window
	Prefab         string
	Kind           EffectKind
	LocalTransform geom.Transform
	// StartLifetime 特效预热的秒数
	StartLifetime float64
	// SimSpeed 特效模拟速度倍率
	SimSpeed float64
}

// CollisionEntry 在区间内保持一个碰撞探针
type CollisionEntry struct {
	Window
	// Group 碰撞组 ID，用于命中去重和共享组仲裁
	Group int
	Shape CollisionShape
}

// EventEntry 在某一 tick 触发带类型数据的命名事件
type EventEntry struct {
	Tick    int
	Name    string
	Payload EventPayload
}
