package components

// HealthComponent 存储角色的生命值
type HealthComponent struct {
	Current float64
	Max     float64
	Dead    bool // 生命值归零后置为 true，之后不再受到伤害
}

// PoiseComponent 存储角色的韧性
// 韧性被打空时角色进入硬直，随后回满
type PoiseComponent struct {
	Current       float64
	Max           float64
	RecoveryDelay float64 // 受击后多久开始恢复（秒）
	RecoveryRate  float64 // 每秒恢复量
	SinceHit      float64 // 距离上次受击的时间（秒）
}
