package components

// FlashEffectComponent 受击闪白效果
// 伤害系统在命中时添加或刷新，显示层据此绘制
type FlashEffectComponent struct {
	// Duration 闪烁持续时间（秒）
	Duration float64

	// Elapsed 已经过的时间（秒）
	Elapsed float64

	// Intensity 闪烁强度（0.0 - 1.0），暴击时为 1.0
	Intensity float64
}
