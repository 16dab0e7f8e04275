package action

import (
	"fmt"

	"github.com/decker502/actioncombo/internal/clip"
	"github.com/decker502/actioncombo/internal/geom"
	"github.com/decker502/actioncombo/pkg/probe"
)

// recorder 记录所有协作者调用，按发生顺序保存
type recorder struct {
	calls []string
}

func (r *recorder) add(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

type fakeHandle struct {
	r    *recorder
	name string
}

func (h *fakeHandle) SetSpeed(speed float64) { h.r.add("speed %s %.2f", h.name, speed) }

type fakeAnimation struct{ r *recorder }

func (a *fakeAnimation) PlayAction(transition string) AnimationHandle {
	a.r.add("play %s", transition)
	return &fakeHandle{r: a.r, name: transition}
}

func (a *fakeAnimation) StopAction(h AnimationHandle) {
	a.r.add("stopanim %s", h.(*fakeHandle).name)
}

type fakeAudio struct {
	r      *recorder
	nextID int
}

func (a *fakeAudio) PlaySound(name string, loop bool, volume float64) int {
	a.nextID++
	a.r.add("sound %s #%d", name, a.nextID)
	return a.nextID
}

func (a *fakeAudio) StopSound(id int) { a.r.add("stopsound #%d", id) }

type fakeEffect struct {
	r      *recorder
	nextID int
	last   EffectLifetime
}

func (f *fakeEffect) AddEffect(prefab string, local geom.Transform, lifetime EffectLifetime) int {
	f.nextID++
	f.last = lifetime
	f.r.add("fx %s #%d", prefab, f.nextID)
	return f.nextID
}

func (f *fakeEffect) RemoveEffect(id int) { f.r.add("rmfx #%d", id) }

type testCollider struct{ id uint64 }

func (c testCollider) ColliderID() uint64               { return c.id }
func (c testCollider) ClosestPoint(geom.Vec3) geom.Vec3 { return geom.Vec3{} }

// fakeHost 让每次查询都命中同一组碰撞体
type fakeHost struct {
	hits    []probe.Collider
	queries int
}

func (h *fakeHost) Overlap(probe.Query) []probe.Collider {
	h.queries++
	return h.hits
}

func (h *fakeHost) Attach(probe.Collider, probe.LayerMask, func(probe.Collider)) func() {
	return func() {}
}

type fakeOwner struct{}

func (fakeOwner) WorldTransform() geom.Transform { return geom.NewTransform(geom.Vec3{}) }
func (fakeOwner) HitVolume(probe.VolumeKind) (probe.Collider, bool) {
	return nil, false
}

// newTestClip 创建 60 帧/秒、共 60 帧的测试片段
func newTestClip() *clip.Clip {
	return &clip.Clip{
		Name:          "test",
		FrameRate:     60,
		DurationTicks: 60,
		Process:       clip.Process{AnticipationTick: 10, JudgmentTick: 30, RecoveryTick: 45},
	}
}

// trace 记录阶段切换与事件，用于比较不同 dt 序列的结果
func trace(p *Player) *[]string {
	var out []string
	p.OnStageChanged(func(prev, next Stage) {
		out = append(out, fmt.Sprintf("stage %v->%v @%d", prev, next, p.CurrentTick()))
	})
	p.OnEvents(func(ev *clip.EventEntry) {
		out = append(out, fmt.Sprintf("event %s @%d", ev.Name, p.CurrentTick()))
	})
	return &out
}
