package game

import "math"

// timeScaleCommand 是一条带时限的时间缩放命令
type timeScaleCommand struct {
	scale     float64
	remaining float64
}

// TimeScaleRegistry 管理按 id 注册的时间缩放命令（例如命中顿帧）
//
// 同一 id 重复添加会刷新命令而不是叠加；生效的缩放取所有命令的最小值。
// 命令时长按真实时间计算，不受缩放本身影响。
type TimeScaleRegistry struct {
	commands map[string]*timeScaleCommand
}

// NewTimeScaleRegistry 创建时间缩放注册表
func NewTimeScaleRegistry() *TimeScaleRegistry {
	return &TimeScaleRegistry{commands: make(map[string]*timeScaleCommand)}
}

// AddTimeScale 添加或刷新命令，duration 为真实时间秒数
func (r *TimeScaleRegistry) AddTimeScale(id string, scale, duration float64) {
	if duration <= 0 {
		return
	}
	r.commands[id] = &timeScaleCommand{scale: math.Max(0, scale), remaining: duration}
}

// RemoveTimeScale 移除命令，id 不存在时无副作用
func (r *TimeScaleRegistry) RemoveTimeScale(id string) {
	delete(r.commands, id)
}

// Active 判断命令是否仍然生效
func (r *TimeScaleRegistry) Active(id string) bool {
	_, ok := r.commands[id]
	return ok
}

// Len 返回生效的命令数
func (r *TimeScaleRegistry) Len() int { return len(r.commands) }

// Scale 返回当前生效的时间缩放，没有命令时为 1
func (r *TimeScaleRegistry) Scale() float64 {
	scale := 1.0
	for _, c := range r.commands {
		scale = math.Min(scale, c.scale)
	}
	return scale
}

// Update 按真实时间推进命令，移除到期的命令
func (r *TimeScaleRegistry) Update(realDt float64) {
	for id, c := range r.commands {
		c.remaining -= realDt
		if c.remaining <= 0 {
			delete(r.commands, id)
		}
	}
}
