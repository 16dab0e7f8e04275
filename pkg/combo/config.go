// Package combo 在动作片段播放之上叠加战斗语义：
// 霸体与不破窗口、命中去重、共享碰撞组仲裁以及命中反馈分发。
package combo

import (
	"github.com/decker502/actioncombo/internal/clip"
	"github.com/decker502/actioncombo/pkg/action"
)

// GroupRule 单个碰撞组的命中节流规则
type GroupRule struct {
	// Interval 目标被命中后保持记录的秒数
	Interval float64
	// Maximum 该组同时能记录的目标数量，小于等于 0 表示不限
	Maximum int
}

// WindowMode 霸体或不破窗口的触发方式
type WindowMode int

const (
	WindowNone WindowMode = iota
	// WindowProcess 由两个阶段控制
	WindowProcess
	// WindowEvent 由片段中的两个命名事件控制
	WindowEvent
)

func (m WindowMode) String() string {
	switch m {
	case WindowProcess:
		return "process"
	case WindowEvent:
		return "event"
	default:
		return "none"
	}
}

// WindowConfig 霸体或不破窗口配置
type WindowConfig struct {
	Mode WindowMode

	StartStage action.Stage
	EndStage   action.Stage

	StartEvent string
	EndEvent   string
}

// HitAudio 命中时播放的音效
type HitAudio struct {
	Clip   string
	Volume float64
}

// HitFreeze 命中时发出的顿帧命令
type HitFreeze struct {
	Duration  float64
	TimeScale float64
}

// HitShake 命中时的镜头震动
// Directional 为 true 且玩家角色参与时，震动沿命中方向
type HitShake struct {
	Amplitude   float64
	Frequency   float64
	Duration    float64
	Directional bool
}

// DamageParams 每次有效命中造成的伤害
type DamageParams struct {
	Fixed              float64
	Multiplier         float64
	ResourceMultiplier float64
	Type               string
}

// Config 连招的运行时配置
type Config struct {
	Name string
	Clip *clip.Clip
	Loop bool

	// Default 适用于 Groups 中没有单独配置的组
	Default GroupRule
	Groups  map[int]GroupRule
	// SharedGroups 在所有播放中的连招之间仲裁
	SharedGroups map[int]bool

	Endure      WindowConfig
	Unbreakable WindowConfig

	HitAudios []HitAudio
	HitFreeze HitFreeze
	HitShake  HitShake
	Damage    DamageParams
}

// Rule 返回 group 的节流规则
func (c *Config) Rule(group int) GroupRule {
	if r, ok := c.Groups[group]; ok {
		return r
	}
	return c.Default
}

// Shared 判断 group 是否为全局共享组
func (c *Config) Shared(group int) bool {
	return c.SharedGroups[group]
}
