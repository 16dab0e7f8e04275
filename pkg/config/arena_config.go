package config

import (
	"fmt"
	"io/fs"
	"sort"

	"github.com/decker502/actioncombo/internal/geom"
	"github.com/decker502/actioncombo/pkg/game"
	"gopkg.in/yaml.v3"
)

// ArenaConfig 演示场景配置：出场角色与出招脚本
type ArenaConfig struct {
	Name     string             `yaml:"name"`
	Seed     uint64             `yaml:"seed,omitempty"`     // 暴击判定种子
	Duration float64            `yaml:"duration,omitempty"` // 脚本总时长（秒），0 表示按最后一步推算
	Fighters []FighterConfig    `yaml:"fighters"`
	Script   []ScriptStepConfig `yaml:"script,omitempty"`
}

// FighterConfig 角色配置
type FighterConfig struct {
	Name         string    `yaml:"name"`
	Faction      int       `yaml:"faction"`
	Position     []float64 `yaml:"position,omitempty"` // [x, y, z]
	Yaw          float64   `yaml:"yaw,omitempty"`      // 朝向（度）
	Health       float64   `yaml:"health,omitempty"`
	Poise        float64   `yaml:"poise,omitempty"`
	AttackPower  float64   `yaml:"attack_power,omitempty"`
	CritRate     float64   `yaml:"crit_rate,omitempty"`
	Primary      bool      `yaml:"primary,omitempty"`
	WeaponMethod string    `yaml:"weapon_method,omitempty"`
	BodyRadius   float64   `yaml:"body_radius,omitempty"`
	CenterHeight float64   `yaml:"center_height,omitempty"`
	WeaponLength float64   `yaml:"weapon_length,omitempty"`
}

// ScriptStepConfig 在 at 秒让 fighter 出招
type ScriptStepConfig struct {
	At      float64 `yaml:"at"`
	Fighter string  `yaml:"fighter"`
	Combo   string  `yaml:"combo"`
	Queue   bool    `yaml:"queue,omitempty"` // true 时排在当前连招之后
}

// LoadArenaConfig 从文件系统加载演示场景配置
func LoadArenaConfig(fsys fs.FS, configPath string) (*ArenaConfig, error) {
	data, err := fs.ReadFile(fsys, configPath)
	if err != nil {
		return nil, fmt.Errorf("无法读取场景配置 %s: %w", configPath, err)
	}
	var arena ArenaConfig
	if err := yaml.Unmarshal(data, &arena); err != nil {
		return nil, fmt.Errorf("无法解析场景配置 %s: %w", configPath, err)
	}
	if err := arena.Validate(); err != nil {
		return nil, fmt.Errorf("场景配置 %s 无效: %w", configPath, err)
	}
	return &arena, nil
}

// Validate 检查角色名唯一、脚本引用的角色存在，并按时间排序脚本
func (a *ArenaConfig) Validate() error {
	if len(a.Fighters) == 0 {
		return fmt.Errorf("场景至少需要一个角色")
	}
	names := make(map[string]bool, len(a.Fighters))
	for i, f := range a.Fighters {
		if f.Name == "" {
			return fmt.Errorf("角色 #%d 缺少 'name' 字段", i)
		}
		if names[f.Name] {
			return fmt.Errorf("重复的角色名称 %s", f.Name)
		}
		if len(f.Position) != 0 && len(f.Position) != 3 {
			return fmt.Errorf("角色 %s 的 position 需要 3 个分量，实际 %d 个", f.Name, len(f.Position))
		}
		names[f.Name] = true
	}
	for i, s := range a.Script {
		if !names[s.Fighter] {
			return fmt.Errorf("脚本第 %d 步引用了不存在的角色 %s", i, s.Fighter)
		}
		if s.Combo == "" {
			return fmt.Errorf("脚本第 %d 步缺少 'combo' 字段", i)
		}
		if s.At < 0 {
			return fmt.Errorf("脚本第 %d 步的时间不能为负数", i)
		}
	}
	sort.SliceStable(a.Script, func(i, j int) bool { return a.Script[i].At < a.Script[j].At })
	return nil
}

// Spec 转换为战斗世界使用的角色描述
func (f *FighterConfig) Spec() game.FighterSpec {
	var pos geom.Vec3
	if len(f.Position) == 3 {
		pos = geom.V(f.Position[0], f.Position[1], f.Position[2])
	}
	return game.FighterSpec{
		Name:         f.Name,
		Faction:      f.Faction,
		Position:     pos,
		Yaw:          f.Yaw,
		Health:       f.Health,
		Poise:        f.Poise,
		AttackPower:  f.AttackPower,
		CritRate:     f.CritRate,
		Primary:      f.Primary,
		WeaponMethod: f.WeaponMethod,
		BodyRadius:   f.BodyRadius,
		CenterHeight: f.CenterHeight,
		WeaponLength: f.WeaponLength,
	}
}

// Step 转换为战斗世界使用的脚本步骤
func (s *ScriptStepConfig) Step() game.ScriptStep {
	return game.ScriptStep{At: s.At, Fighter: s.Fighter, Combo: s.Combo, Queue: s.Queue}
}

// Steps 返回全部脚本步骤
func (a *ArenaConfig) Steps() []game.ScriptStep {
	steps := make([]game.ScriptStep, len(a.Script))
	for i := range a.Script {
		steps[i] = a.Script[i].Step()
	}
	return steps
}

// RunTime 返回演示需要运行的时长：未配置 duration 时为最后一步之后再留 2 秒
func (a *ArenaConfig) RunTime() float64 {
	if a.Duration > 0 {
		return a.Duration
	}
	last := 0.0
	for _, s := range a.Script {
		last = max(last, s.At)
	}
	return last + 2
}
