package combo

import "github.com/decker502/actioncombo/pkg/probe"

type claimKey struct {
	group    int
	collider uint64
}

// GroupArbiter 在所有者播放的全部连招之间仲裁共享碰撞组。
// 同一 (组, 碰撞体) 先申请者胜出，本帧剩余时间以及随后的组冷却内都保持占用。
//
// 所有者每帧在连招 Tick 之前调用一次 BeginFrame 和 Update。
type GroupArbiter struct {
	cooldowns map[int]float64
	frame     map[claimKey]bool
	held      map[claimKey]float64
}

func NewGroupArbiter() *GroupArbiter {
	return &GroupArbiter{
		cooldowns: make(map[int]float64),
		frame:     make(map[claimKey]bool),
		held:      make(map[claimKey]float64),
	}
}

// SetCooldown 设置碰撞体被占用的那一帧之后在 group 中继续占用的秒数
func (a *GroupArbiter) SetCooldown(group int, seconds float64) {
	a.cooldowns[group] = seconds
}

// BeginFrame 清除上一帧的占用记录
func (a *GroupArbiter) BeginFrame() {
	clear(a.frame)
}

// Update 按 dt 推进冷却中的占用
func (a *GroupArbiter) Update(dt float64) {
	for k, remaining := range a.held {
		remaining -= dt
		if remaining <= cooldownEpsilon {
			delete(a.held, k)
			continue
		}
		a.held[k] = remaining
	}
}

// TryClaim 实现 SharedGroupArbiter
func (a *GroupArbiter) TryClaim(group int, c probe.Collider) bool {
	if c == nil {
		return false
	}
	k := claimKey{group: group, collider: c.ColliderID()}
	if a.frame[k] {
		return false
	}
	if _, ok := a.held[k]; ok {
		return false
	}
	a.frame[k] = true
	if cd := a.cooldowns[group]; cd > 0 {
		a.held[k] = cd
	}
	return true
}

// Claimed 判断该组合当前是否被占用
func (a *GroupArbiter) Claimed(group int, id uint64) bool {
	k := claimKey{group: group, collider: id}
	_, held := a.held[k]
	return a.frame[k] || held
}
