package action

import (
	"github.com/decker502/actioncombo/internal/clip"
	"github.com/decker502/actioncombo/pkg/probe"
)

// trackState 记录本次播放中已实例化的轨道条目，以条目指针为键，不使用下标
type trackState struct {
	animation       *clip.AnimationEntry
	animationHandle AnimationHandle

	sounds  map[*clip.AudioEntry]int
	effects map[*clip.EffectEntry]int
	probes  map[*clip.CollisionEntry]*probe.Probe
}

func newTrackState() trackState {
	return trackState{
		sounds:  make(map[*clip.AudioEntry]int),
		effects: make(map[*clip.EffectEntry]int),
		probes:  make(map[*clip.CollisionEntry]*probe.Probe),
	}
}

// windowed 对一条多槽轨道执行创建与销毁
//
// 按片段顺序遍历条目，创建和销毁的顺序是确定的。
// 区间包含 tick 且尚未创建的条目调用 create，区间已结束的存活条目调用 destroy。
func windowed[E any, H any](
	entries []*E,
	window func(*E) clip.Window,
	live map[*E]H,
	tick int,
	create func(*E) H,
	destroy func(*E, H),
) {
	for _, e := range entries {
		w := window(e)
		h, ok := live[e]
		switch {
		case !ok && w.Contains(tick):
			live[e] = create(e)
		case ok && w.Expired(tick):
			destroy(e, h)
			delete(live, e)
		}
	}
}
