package components

// AnimationComponent 记录角色当前播放的动作
// 动作片段通过动画能力切换 Transition，动画系统推进播放时间
type AnimationComponent struct {
	Transition string  // 当前过渡/动作名，空表示待机
	Speed      float64 // 播放速度倍率
	Time       float64 // 当前动作已播放时间（秒）
	Serial     int     // 每次切换动作递增，用于识别过期的动画句柄
}
