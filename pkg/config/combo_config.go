package config

import (
	"fmt"

	"github.com/decker502/actioncombo/internal/clip"
	"github.com/decker502/actioncombo/pkg/action"
	"github.com/decker502/actioncombo/pkg/combo"
)

// ComboFileConfig 连招配置文件的顶层结构
//
// 一个文件可以定义多个连招，global 可以省略；
// 多个文件都定义 global 时，后加载的非零字段覆盖先加载的。
type ComboFileConfig struct {
	Global ComboGlobalConfig `yaml:"global"`
	Combos []ComboConfig     `yaml:"combos"`
}

// ComboGlobalConfig 全局配置
type ComboGlobalConfig struct {
	Playback PlaybackConfig `yaml:"playback"`
	// SharedGroupCooldown 共享碰撞组的冷却（秒），键为组号
	SharedGroupCooldown map[int]float64 `yaml:"shared_group_cooldown,omitempty"`
}

// PlaybackConfig 播放配置
type PlaybackConfig struct {
	TPS int `yaml:"tps"` // 游戏目标 TPS，0 表示使用默认值 60
}

// ComboConfig 单个连招的配置
type ComboConfig struct {
	Name string `yaml:"name"`
	Clip string `yaml:"clip"` // 片段文件路径，相对于配置文件系统根目录
	Loop bool   `yaml:"loop,omitempty"`

	CollisionInterval float64           `yaml:"collision_interval"`          // 同一目标再次命中的间隔（秒）
	CollisionMaximum  int               `yaml:"collision_maximum,omitempty"` // 同时记录的目标上限，<=0 不限
	Groups            []GroupRuleConfig `yaml:"groups,omitempty"`
	SharedGroups      []int             `yaml:"shared_groups,omitempty"`

	Endure      *WindowConfig `yaml:"endure,omitempty"`
	Unbreakable *WindowConfig `yaml:"unbreakable,omitempty"`

	HitAudios []HitAudioConfig `yaml:"hit_audios,omitempty"`
	HitFreeze *HitFreezeConfig `yaml:"hit_freeze,omitempty"`
	HitShake  *HitShakeConfig  `yaml:"hit_shake,omitempty"`
	Damage    DamageConfig     `yaml:"damage"`
}

// GroupRuleConfig 覆盖某个碰撞组的命中节流
type GroupRuleConfig struct {
	Group    int     `yaml:"group"`
	Interval float64 `yaml:"interval"`
	Maximum  int     `yaml:"maximum,omitempty"`
}

// WindowConfig 霸体/不破防窗口
//
// mode 为 process 时使用 start_stage/end_stage，
// mode 为 event 时使用 start_event/end_event。
type WindowConfig struct {
	Mode       string `yaml:"mode"`
	StartStage string `yaml:"start_stage,omitempty"`
	EndStage   string `yaml:"end_stage,omitempty"`
	StartEvent string `yaml:"start_event,omitempty"`
	EndEvent   string `yaml:"end_event,omitempty"`
}

// HitAudioConfig 命中音效
type HitAudioConfig struct {
	Clip   string   `yaml:"clip"`
	Volume *float64 `yaml:"volume,omitempty"` // 默认 1.0
}

// HitFreezeConfig 命中顿帧
type HitFreezeConfig struct {
	Duration  float64 `yaml:"duration"`
	TimeScale float64 `yaml:"time_scale"`
}

// HitShakeConfig 命中震屏
type HitShakeConfig struct {
	Amplitude   float64 `yaml:"amplitude"`
	Frequency   float64 `yaml:"frequency,omitempty"`
	Duration    float64 `yaml:"duration"`
	Directional bool    `yaml:"directional,omitempty"`
}

// DamageConfig 伤害参数：最终伤害 = fixed + 攻击力 × multiplier
type DamageConfig struct {
	Fixed              float64  `yaml:"fixed,omitempty"`
	Multiplier         float64  `yaml:"multiplier,omitempty"`
	ResourceMultiplier *float64 `yaml:"resource_multiplier,omitempty"` // 默认 1.0
	Type               string   `yaml:"type,omitempty"`
}

// Build 把配置转换为运行时连招配置
func (c *ComboConfig) Build(cl *clip.Clip) (*combo.Config, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("连招缺少 'name' 字段")
	}
	if cl == nil {
		return nil, fmt.Errorf("连招 %s 缺少片段", c.Name)
	}

	cfg := &combo.Config{
		Name:         c.Name,
		Clip:         cl,
		Loop:         c.Loop,
		Default:      combo.GroupRule{Interval: c.CollisionInterval, Maximum: c.CollisionMaximum},
		Groups:       make(map[int]combo.GroupRule, len(c.Groups)),
		SharedGroups: make(map[int]bool, len(c.SharedGroups)),
		Damage: combo.DamageParams{
			Fixed:              c.Damage.Fixed,
			Multiplier:         c.Damage.Multiplier,
			ResourceMultiplier: orDefault(c.Damage.ResourceMultiplier, 1),
			Type:               c.Damage.Type,
		},
	}
	if c.CollisionInterval < 0 {
		return nil, fmt.Errorf("连招 %s 的 collision_interval 不能为负数", c.Name)
	}

	for _, g := range c.Groups {
		if _, dup := cfg.Groups[g.Group]; dup {
			return nil, fmt.Errorf("连招 %s 重复配置了碰撞组 %d", c.Name, g.Group)
		}
		cfg.Groups[g.Group] = combo.GroupRule{Interval: g.Interval, Maximum: g.Maximum}
	}
	for _, g := range c.SharedGroups {
		cfg.SharedGroups[g] = true
	}

	var err error
	if cfg.Endure, err = c.Endure.build(); err != nil {
		return nil, fmt.Errorf("连招 %s 的霸体窗口: %w", c.Name, err)
	}
	if cfg.Unbreakable, err = c.Unbreakable.build(); err != nil {
		return nil, fmt.Errorf("连招 %s 的不破防窗口: %w", c.Name, err)
	}

	for _, a := range c.HitAudios {
		if a.Clip == "" {
			return nil, fmt.Errorf("连招 %s 的命中音效缺少 'clip' 字段", c.Name)
		}
		cfg.HitAudios = append(cfg.HitAudios, combo.HitAudio{Clip: a.Clip, Volume: orDefault(a.Volume, 1)})
	}
	if f := c.HitFreeze; f != nil {
		cfg.HitFreeze = combo.HitFreeze{Duration: f.Duration, TimeScale: f.TimeScale}
	}
	if s := c.HitShake; s != nil {
		cfg.HitShake = combo.HitShake{
			Amplitude:   s.Amplitude,
			Frequency:   s.Frequency,
			Duration:    s.Duration,
			Directional: s.Directional,
		}
	}
	return cfg, nil
}

func (w *WindowConfig) build() (combo.WindowConfig, error) {
	if w == nil {
		return combo.WindowConfig{}, nil
	}
	switch w.Mode {
	case "", "none":
		return combo.WindowConfig{}, nil
	case "process":
		start, err := action.ParseStage(w.StartStage)
		if err != nil {
			return combo.WindowConfig{}, fmt.Errorf("start_stage: %w", err)
		}
		end, err := action.ParseStage(w.EndStage)
		if err != nil {
			return combo.WindowConfig{}, fmt.Errorf("end_stage: %w", err)
		}
		return combo.WindowConfig{Mode: combo.WindowProcess, StartStage: start, EndStage: end}, nil
	case "event":
		// 事件缺失由连招播放器在启动时处理（禁用窗口），这里不报错
		return combo.WindowConfig{Mode: combo.WindowEvent, StartEvent: w.StartEvent, EndEvent: w.EndEvent}, nil
	}
	return combo.WindowConfig{}, fmt.Errorf("未知的窗口模式 %q (支持: none, process, event)", w.Mode)
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
