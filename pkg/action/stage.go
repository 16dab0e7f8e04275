// Package action 实现动作片段播放器：确定性的、支持补帧的 tick 调度器，
// 驱动片段的五类轨道和单调递增的阶段状态机。
package action

import "fmt"

// Stage 一次播放所处的生命周期阶段
type Stage int

const (
	StageIdle Stage = iota
	StageStart
	StageAnticipation
	StageJudgment
	StageRecovery
	// StageEnd 片段自然播放完毕
	StageEnd
	// StageStop 播放被外部打断
	StageStop
)

var stageNames = [...]string{"Idle", "Start", "Anticipation", "Judgment", "Recovery", "End", "Stop"}

func (s Stage) String() string {
	if s >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// ParseStage 把配置文件中的小写阶段名转换为 Stage
func ParseStage(s string) (Stage, error) {
	switch s {
	case "idle":
		return StageIdle, nil
	case "start":
		return StageStart, nil
	case "anticipation":
		return StageAnticipation, nil
	case "judgment", "judgement":
		return StageJudgment, nil
	case "recovery":
		return StageRecovery, nil
	case "end":
		return StageEnd, nil
	case "stop":
		return StageStop, nil
	}
	return StageIdle, fmt.Errorf("unknown stage %q", s)
}

// Terminal 判断 s 是否为终止阶段
func (s Stage) Terminal() bool {
	return s == StageEnd || s == StageStop
}

// CanTransition 判断阶段能否从 cur 切换到 next
// 阶段只能递增，唯一的例外是循环播放可以从 End 回到 Start，原地切换同样被拒绝。
func CanTransition(cur, next Stage, loop bool) bool {
	if next > cur {
		return true
	}
	return loop && cur == StageEnd && next == StageStart
}
