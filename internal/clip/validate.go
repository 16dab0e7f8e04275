package clip

import "fmt"

// Validate 检查片段的结构约束:
//   - 帧率和时长为正数
//   - 区间条目位于 [0, DurationTicks] 内
//   - 事件 tick 位于 [0, DurationTicks] 内
//   - 音频条目只引用音效或随机器之一
//   - 形状尺寸对其类型有效
//
// 只在制作和加载阶段使用，运行时播放器不会调用，
// 无法通过校验的数据依然可以播放。
func Validate(c *Clip) error {
	if c == nil {
		return fmt.Errorf("clip is nil")
	}
	if c.FrameRate <= 0 {
		return fmt.Errorf("frame_rate must be positive, got %d", c.FrameRate)
	}
	if c.DurationTicks <= 0 {
		return fmt.Errorf("duration_ticks must be positive, got %d", c.DurationTicks)
	}

	checkWindow := func(kind TrackKind, i int, w Window) error {
		if w.StartTick < 0 || w.DurationTicks < 0 || w.StartTick+w.DurationTicks > c.DurationTicks {
			return fmt.Errorf("%s entry #%d window [%d, %d] is outside [0, %d]",
				kind, i, w.StartTick, w.StartTick+w.DurationTicks, c.DurationTicks)
		}
		return nil
	}

	for i, e := range c.AnimationTrack {
		if err := checkWindow(TrackAnimation, i, e.Window); err != nil {
			return err
		}
		if e.Transition == "" {
			return fmt.Errorf("animation entry #%d is missing 'transition'", i)
		}
	}
	for i, e := range c.AudioTrack {
		if err := checkWindow(TrackAudio, i, e.Window); err != nil {
			return err
		}
		if (e.Clip == "") == (e.Randomizer == nil) {
			return fmt.Errorf("audio entry #%d must reference exactly one of 'clip' or 'randomizer'", i)
		}
	}
	for i, e := range c.EffectTrack {
		if err := checkWindow(TrackEffect, i, e.Window); err != nil {
			return err
		}
		if e.Prefab == "" {
			return fmt.Errorf("effect entry #%d is missing 'prefab'", i)
		}
	}
	for i, e := range c.CollisionTrack {
		if err := checkWindow(TrackCollision, i, e.Window); err != nil {
			return err
		}
		if err := validateShape(e.Shape); err != nil {
			return fmt.Errorf("collision entry #%d: %w", i, err)
		}
	}
	for i, e := range c.EventTrack {
		if e.Tick < 0 || e.Tick > c.DurationTicks {
			return fmt.Errorf("event entry #%d tick %d is outside [0, %d]", i, e.Tick, c.DurationTicks)
		}
		if e.Name == "" {
			return fmt.Errorf("event entry #%d is missing 'name'", i)
		}
	}
	return nil
}

func validateShape(s CollisionShape) error {
	switch s.Kind {
	case ShapeNone, ShapeBindToOwner:
		return nil
	case ShapeBox:
		if s.Size.X <= 0 || s.Size.Y <= 0 || s.Size.Z <= 0 {
			return fmt.Errorf("box size must be positive, got %+v", s.Size)
		}
	case ShapeSphere:
		if s.Radius <= 0 {
			return fmt.Errorf("sphere radius must be positive, got %v", s.Radius)
		}
	case ShapeSector:
		if s.OuterRadius <= 0 || s.InnerRadius < 0 || s.InnerRadius > s.OuterRadius {
			return fmt.Errorf("sector radii invalid: inner=%v outer=%v", s.InnerRadius, s.OuterRadius)
		}
		if s.Height <= 0 {
			return fmt.Errorf("sector height must be positive, got %v", s.Height)
		}
		if s.ArcAngle <= 0 || s.ArcAngle > 360 {
			return fmt.Errorf("sector arc_angle must be in (0, 360], got %v", s.ArcAngle)
		}
	default:
		return fmt.Errorf("unknown shape kind %v", s.Kind)
	}
	return nil
}
