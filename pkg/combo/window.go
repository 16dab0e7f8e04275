package combo

import (
	"log"
	"math"

	"github.com/decker502/actioncombo/internal/clip"
	"github.com/decker502/actioncombo/pkg/action"
)

// buffWindow 校验后的霸体或不破窗口
type buffWindow struct {
	kind string
	mode WindowMode

	startStage action.Stage
	endStage   action.Stage

	startEvent string
	endEvent   string

	begin  func()
	finish func()
}

// resolveWindow 根据片段 c 校验 cfg 并返回要驱动的窗口
//
// 阶段窗口的结束早于开始时收缩为零宽度。事件窗口缺少任一事件时禁用，
// 结束事件先触发（更早的 tick，或同一 tick 中排在前面）时交换两个事件。
// 配置错误不会导致播放失败。
func resolveWindow(kind, comboName string, cfg WindowConfig, c *clip.Clip, begin, finish func()) buffWindow {
	w := buffWindow{kind: kind, mode: cfg.Mode, begin: begin, finish: finish}

	switch cfg.Mode {
	case WindowProcess:
		if !windowStage(cfg.StartStage) || !windowStage(cfg.EndStage) {
			log.Printf("[ComboPlayer] Warning: %s %s window uses stages %v..%v, disabled",
				comboName, kind, cfg.StartStage, cfg.EndStage)
			w.mode = WindowNone
			return w
		}
		w.startStage, w.endStage = cfg.StartStage, cfg.EndStage
		if w.endStage < w.startStage {
			log.Printf("[ComboPlayer] Warning: %s %s window ends at %v before it starts at %v, clamped",
				comboName, kind, w.endStage, w.startStage)
			w.endStage = w.startStage
		}

	case WindowEvent:
		startTick, startIdx, okStart := eventPosition(c, cfg.StartEvent)
		endTick, endIdx, okEnd := eventPosition(c, cfg.EndEvent)
		if !okStart || !okEnd {
			log.Printf("[ComboPlayer] Warning: %s %s window events %q/%q not found in clip, disabled",
				comboName, kind, cfg.StartEvent, cfg.EndEvent)
			w.mode = WindowNone
			return w
		}
		w.startEvent, w.endEvent = cfg.StartEvent, cfg.EndEvent
		// 同一帧的事件按轨道顺序触发
		if endTick < startTick || (endTick == startTick && endIdx < startIdx) {
			w.startEvent, w.endEvent = w.endEvent, w.startEvent
		}
	}
	return w
}

// onStage 连招进入 stage 时打开或关闭窗口
func (w *buffWindow) onStage(stage action.Stage) {
	if w.mode != WindowProcess {
		return
	}
	if stage == w.startStage {
		w.begin()
	}
	if stage == w.endStage {
		w.finish()
	}
}

// bind 让事件窗口订阅播放器的事件
func (w *buffWindow) bind(p *action.Player) {
	if w.mode != WindowEvent {
		return
	}
	p.OnEvent(w.startEvent, func(*clip.EventEntry) { w.begin() })
	p.OnEvent(w.endEvent, func(*clip.EventEntry) { w.finish() })
}

func windowStage(s action.Stage) bool {
	return s >= action.StageStart && s <= action.StageEnd
}

// eventPosition 返回事件首次出现的 tick 和它在事件轨道中的下标
func eventPosition(c *clip.Clip, name string) (tick, index int, ok bool) {
	if c == nil || name == "" {
		return 0, 0, false
	}
	for i, ev := range c.EventTrack {
		if ev.Name == name {
			return ev.Tick, i, true
		}
	}
	return 0, 0, false
}

// infinite 窗口打开的状态时长，由窗口负责关闭
var infinite = math.Inf(1)
